package cache

import (
	"time"

	"github.com/colthorp/holidate/internal/core"
)

// Policy decides whether a cached entry can be used without refetching.
type Policy interface {
	IsFresh(entry *CacheEntry, now time.Time) bool
}

// SameDayPolicy treats an entry as fresh when it was fetched on the same
// calendar day as now in Location (UTC when nil). This is a per-key guideline,
// not a global rate limit: other keys are unaffected by it.
type SameDayPolicy struct {
	Location *time.Location
}

// IsFresh reports whether entry was fetched today. A nil entry is never fresh.
func (p SameDayPolicy) IsFresh(entry *CacheEntry, now time.Time) bool {
	if entry == nil || entry.FetchedAt.IsZero() {
		return false
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return core.SameDay(entry.FetchedAt, now, loc)
}

// AlwaysFresh accepts any cached entry. Manager uses it when Offline is set.
type AlwaysFresh struct{}

// IsFresh reports whether an entry exists at all.
func (AlwaysFresh) IsFresh(entry *CacheEntry, _ time.Time) bool {
	return entry != nil
}

// NeverFresh forces a refetch of every key.
type NeverFresh struct{}

// IsFresh always reports false.
func (NeverFresh) IsFresh(*CacheEntry, time.Time) bool {
	return false
}
