// Package cache provides the local response cache for holiday data.
//
// # Overview
//
// Holiday sets are cached per key, a (country code, year) pair. Each entry
// holds every holiday the API returned for that key plus the time it was
// fetched:
//
//	{
//	  "country": "DE",
//	  "year": 2024,
//	  "fetched_at": "2024-07-15T09:12:44Z",
//	  "holidays": [...]
//	}
//
// Entries for different years are never merged in storage. The Manager
// composes years at read time.
//
// # Freshness
//
// An entry is fresh when it was fetched on the same UTC calendar day as now.
// This bounds repeated requests for the same key to one per day; a different
// country or year is a different key and always fetches.
//
// # Failure handling
//
// An unreadable entry is treated as absent. A failed write is logged and the
// fetched holidays are still returned. When the API fails for a year, a stale
// entry for that year stands in.
package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/colthorp/holidate/internal/api"
	"github.com/colthorp/holidate/internal/core"
)

// Key identifies one cache slot.
type Key struct {
	Country string
	Year    int
}

// NewKey builds a key with a normalised country code.
func NewKey(country string, year int) Key {
	return Key{Country: core.NormalizeCountry(country), Year: year}
}

// String renders the key as CC:YYYY, which is also the bolt key.
func (k Key) String() string {
	return fmt.Sprintf("%s:%04d", k.Country, k.Year)
}

// ParseKey parses the CC:YYYY form produced by Key.String.
func ParseKey(s string) (Key, error) {
	country, yearStr, ok := strings.Cut(s, ":")
	if !ok || country == "" {
		return Key{}, fmt.Errorf("invalid cache key %q", s)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Key{}, fmt.Errorf("invalid cache key %q: %w", s, err)
	}
	return NewKey(country, year), nil
}

// CacheEntry is one fetched holiday set.
type CacheEntry struct {
	Country   string        `json:"country"`
	Year      int           `json:"year"`
	FetchedAt time.Time     `json:"fetched_at"`
	Holidays  []api.Holiday `json:"holidays"`
}

// Key returns the slot this entry belongs to.
func (e *CacheEntry) Key() Key {
	return NewKey(e.Country, e.Year)
}

// clone returns a copy whose holiday slice can be mutated freely.
func (e *CacheEntry) clone() *CacheEntry {
	entryCopy := *e
	if e.Holidays != nil {
		entryCopy.Holidays = make([]api.Holiday, len(e.Holidays))
		copy(entryCopy.Holidays, e.Holidays)
	}
	return &entryCopy
}

// Backend is the interface for cache storage backends.
// The default implementation is FilesystemBackend which stores JSON files on disk.
type Backend interface {
	// Read returns the entry for key, or nil, nil if absent.
	// An entry that exists but cannot be decoded is reported as a
	// *StoreError of kind StoreUnreadable.
	Read(key Key) (*CacheEntry, error)

	// Write inserts or replaces the entry atomically.
	Write(entry *CacheEntry) error

	// Keys lists every stored key in ascending order.
	Keys() ([]Key, error)

	// Clear removes every entry. Only the user triggers this.
	Clear() error

	// Path returns where the entry for key lives (for debugging).
	Path(key Key) string
}

// sortKeys orders keys by country, then year.
func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Country != keys[j].Country {
			return keys[i].Country < keys[j].Country
		}
		return keys[i].Year < keys[j].Year
	})
}
