package cache

import (
	"testing"
	"time"
)

func TestSameDayPolicy(t *testing.T) {
	policy := SameDayPolicy{Location: time.UTC}
	fetched := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	berlin := time.FixedZone("CEST", 2*60*60)

	tests := []struct {
		name  string
		entry *CacheEntry
		now   time.Time
		want  bool
	}{
		{"absent entry", nil, fetched, false},
		{"zero fetched_at", &CacheEntry{}, fetched, false},
		{"same instant", &CacheEntry{FetchedAt: fetched}, fetched, true},
		{"later same day", &CacheEntry{FetchedAt: fetched}, time.Date(2024, 7, 15, 23, 59, 59, 0, time.UTC), true},
		{"next day", &CacheEntry{FetchedAt: fetched}, time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC), false},
		{"previous year same date", &CacheEntry{FetchedAt: fetched.AddDate(-1, 0, 0)}, fetched, false},
		// 01:30 in Berlin is still the previous day in UTC
		{"judged in UTC", &CacheEntry{FetchedAt: fetched}, time.Date(2024, 7, 16, 1, 30, 0, 0, berlin), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.IsFresh(tt.entry, tt.now); got != tt.want {
				t.Errorf("IsFresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameDayPolicyDefaultsToUTC(t *testing.T) {
	fetched := time.Date(2024, 7, 15, 23, 0, 0, 0, time.UTC)
	now := time.Date(2024, 7, 16, 0, 30, 0, 0, time.UTC)
	if (SameDayPolicy{}).IsFresh(&CacheEntry{FetchedAt: fetched}, now) {
		t.Error("Expected entry from previous UTC day to be stale")
	}
}

func TestAlwaysAndNeverFresh(t *testing.T) {
	entry := &CacheEntry{FetchedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}
	now := time.Now()

	if !(AlwaysFresh{}).IsFresh(entry, now) {
		t.Error("AlwaysFresh should accept any entry")
	}
	if (AlwaysFresh{}).IsFresh(nil, now) {
		t.Error("AlwaysFresh should reject absent entries")
	}
	if (NeverFresh{}).IsFresh(&CacheEntry{FetchedAt: now}, now) {
		t.Error("NeverFresh should reject every entry")
	}
}
