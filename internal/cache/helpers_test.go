package cache

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/colthorp/holidate/internal/api"
)

func intPtr(v int) *int { return &v }

func holiday(country, date, name string) api.Holiday {
	return api.Holiday{
		Date:        date,
		LocalName:   name,
		Name:        name,
		CountryCode: country,
		Fixed:       true,
		Global:      true,
		Types:       []api.HolidayType{api.HolidayTypePublic},
	}
}

func sampleEntry() *CacheEntry {
	regional := holiday("DE", "2024-01-06", "Epiphany")
	regional.Global = false
	regional.Fixed = false
	regional.Counties = []string{"DE-BW", "DE-BY", "DE-ST"}
	regional.LaunchYear = intPtr(1967)
	regional.Types = []api.HolidayType{api.HolidayTypePublic, api.HolidayTypeBank}

	return &CacheEntry{
		Country:   "DE",
		Year:      2024,
		FetchedAt: time.Date(2024, 7, 15, 9, 12, 44, 0, time.UTC),
		Holidays: []api.Holiday{
			holiday("DE", "2024-01-01", "New Year's Day"),
			regional,
		},
	}
}

// assertEntryEqual compares entries field for field.
func assertEntryEqual(t *testing.T, got, want *CacheEntry) {
	t.Helper()
	if got == nil {
		t.Fatal("Expected entry, got nil")
	}
	if got.Country != want.Country || got.Year != want.Year {
		t.Errorf("Expected key %s/%d, got %s/%d", want.Country, want.Year, got.Country, got.Year)
	}
	if !got.FetchedAt.Equal(want.FetchedAt) {
		t.Errorf("Expected fetched_at %v, got %v", want.FetchedAt, got.FetchedAt)
	}
	if !reflect.DeepEqual(got.Holidays, want.Holidays) {
		t.Errorf("Holidays differ after round trip:\n got: %+v\nwant: %+v", got.Holidays, want.Holidays)
	}
}

// failingBackend wraps a backend and rejects every write.
type failingBackend struct {
	Backend
	writes int
}

func (b *failingBackend) Write(entry *CacheEntry) error {
	b.writes++
	return writeFailed(entry.Key(), errors.New("no space left on device"))
}

// brokenBackend reports every read as unreadable.
type brokenBackend struct {
	*MemoryBackend
}

func (b *brokenBackend) Read(key Key) (*CacheEntry, error) {
	return nil, unreadable(key, errors.New("unexpected end of JSON input"))
}

// fixedClock returns a Now func pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
