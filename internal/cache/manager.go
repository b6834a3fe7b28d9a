package cache

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/colthorp/holidate/internal/api"
	"github.com/colthorp/holidate/internal/core"
	"github.com/colthorp/holidate/internal/logging"
)

// maxPrealloc bounds the result capacity reserved up front.
const maxPrealloc = 64

// ErrOffline is returned when an offline query needs a key that was never cached.
var ErrOffline = errors.New("no cached holidays (offline)")

// Source fetches every holiday for a country and year. *api.HolidayAPI
// satisfies it; tests substitute in-memory transports behind it.
type Source interface {
	FetchHolidays(country string, year int) ([]api.Holiday, error)
}

// Origin tells where the holidays for a year came from.
type Origin int

const (
	OriginCache Origin = iota + 1 // fresh cache hit
	OriginAPI                     // fetched and written through
	OriginStale                   // source failed, stale entry used
)

func (o Origin) String() string {
	switch o {
	case OriginCache:
		return "cache"
	case OriginAPI:
		return "api"
	case OriginStale:
		return "stale"
	}
	return "unknown"
}

// Manager orchestrates caching and fetching of holidays.
//
// # Per-year loading
//
// LoadYear consults the backend and the freshness policy. A fresh entry is
// returned as is. Otherwise the source is called once (no retries) and a
// successful result is written through with the current time as fetched_at.
// If the source fails and a stale entry exists, the stale entry is used.
//
// # Upcoming holidays
//
// NextHolidays starts at today's year and pulls following years while fewer
// than count upcoming holidays are known, up to MaxYears years.
type Manager struct {
	source  Source
	backend Backend
	logger  *logging.Logger

	// Policy decides cache freshness. Defaults to SameDayPolicy in UTC.
	Policy Policy
	// MaxYears caps how many years one query may look at.
	MaxYears int
	// Offline forbids network access; any cached entry is used regardless of age.
	Offline bool
	// Now is the clock; replaced in tests.
	Now func() time.Time
}

// NewManager creates a new cache manager with the given source and backend.
// If backend is nil, uses the default FilesystemBackend.
// If source is nil, uses the public API with default settings.
func NewManager(source Source, backend Backend, logger *logging.Logger) *Manager {
	if backend == nil {
		backend = NewFilesystemBackend("")
	}
	if source == nil {
		source = api.NewHolidayAPI(nil)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		source:   source,
		backend:  backend,
		logger:   logger.WithComponent("cache"),
		Policy:   SameDayPolicy{Location: time.UTC},
		MaxYears: core.DefaultMaxYears,
		Now:      time.Now,
	}
}

// LoadYear returns every holiday of country in year, consulting the cache
// when permissible.
//
// Lookup rules:
//   - Fresh entry (per Policy, or AlwaysFresh when Offline): use it, no request
//   - Offline and nothing cached: fail with ErrOffline, no request
//   - Otherwise fetch; on success write through, on failure fall back to a
//     stale entry or return the source error
func (m *Manager) LoadYear(country string, year int) ([]api.Holiday, Origin, error) {
	key := NewKey(country, year)
	log := m.logger.WithKey(key.Country, key.Year)
	now := m.Now()

	entry, err := m.backend.Read(key)
	if err != nil {
		// Fail open: an unreadable entry is as good as no entry
		log.Warn().Err(err).Msg("ignoring unreadable cache entry")
		entry = nil
	}

	policy := m.Policy
	if m.Offline {
		policy = AlwaysFresh{}
	}

	if policy.IsFresh(entry, now) {
		log.Debug().Time("fetched_at", entry.FetchedAt).Bool("offline", m.Offline).Msg("cache hit")
		return entry.Holidays, OriginCache, nil
	}

	if m.Offline {
		return nil, 0, fmt.Errorf("%s: %w", key, ErrOffline)
	}

	log.Debug().Bool("cached", entry != nil).Msg("fetching from API")
	holidays, err := m.source.FetchHolidays(key.Country, key.Year)
	if err != nil {
		if entry != nil {
			log.Warn().Err(err).Time("fetched_at", entry.FetchedAt).Msg("fetch failed; using stale cache entry")
			return entry.Holidays, OriginStale, nil
		}
		return nil, 0, err
	}

	m.save(key, holidays, now)
	return holidays, OriginAPI, nil
}

// save writes a fetch result through to the backend. Failures are logged
// and otherwise ignored: the caller already has the holidays in memory.
func (m *Manager) save(key Key, holidays []api.Holiday, now time.Time) {
	entry := &CacheEntry{
		Country:   key.Country,
		Year:      key.Year,
		FetchedAt: now.UTC(),
		Holidays:  holidays,
	}

	if err := m.backend.Write(entry); err != nil {
		var storeErr *StoreError
		if !errors.As(err, &storeErr) {
			err = writeFailed(key, err)
		}
		m.logger.WithKey(key.Country, key.Year).Warn().Err(err).Str("path", m.backend.Path(key)).Msg("failed to write cache")
	}
}

// NextHolidays returns up to count holidays dated on or after today,
// ascending by date with ties broken by name.
//
// Years are loaded from today's year onward until count upcoming holidays
// are known or MaxYears years were tried. A year that cannot be loaded (no
// stale entry to fall back on) ends the expansion, even when a later year
// would load: holidays from later years must not be returned while an
// earlier year's are missing. Its error is returned only when no holidays
// were collected at all, so a failing current year fails the whole query.
func (m *Manager) NextHolidays(country string, today time.Time, count int) ([]api.Holiday, error) {
	if count <= 0 {
		return []api.Holiday{}, nil
	}
	// count is caller supplied; reserve little and let append grow
	upcoming := make([]api.Holiday, 0, min(count, maxPrealloc))

	maxYears := m.MaxYears
	if maxYears < 1 {
		maxYears = 1
	}

	today = core.DateOnly(today)
	todayStr := core.FormatDate(today)

	var loadErr error
	for i := 0; i < maxYears && len(upcoming) < count; i++ {
		year := today.Year() + i

		holidays, origin, err := m.LoadYear(country, year)
		if err != nil {
			loadErr = err
			m.logger.WithKey(core.NormalizeCountry(country), year).Debug().Err(err).Msg("stopping year expansion")
			break
		}

		before := len(upcoming)
		for _, h := range holidays {
			if h.Date >= todayStr {
				upcoming = append(upcoming, h)
			}
		}
		m.logger.WithKey(core.NormalizeCountry(country), year).Debug().
			Stringer("origin", origin).
			Int("upcoming", len(upcoming)-before).
			Msg("year loaded")
	}

	if len(upcoming) == 0 && loadErr != nil {
		return nil, loadErr
	}

	SortHolidays(upcoming)
	if len(upcoming) > count {
		upcoming = upcoming[:count]
	}
	return upcoming, nil
}

// SortHolidays orders holidays by date, then name.
func SortHolidays(holidays []api.Holiday) {
	sort.SliceStable(holidays, func(i, j int) bool {
		if holidays[i].Date != holidays[j].Date {
			return holidays[i].Date < holidays[j].Date
		}
		return holidays[i].Name < holidays[j].Name
	})
}

// Entries returns every cached entry, skipping unreadable ones.
func (m *Manager) Entries() ([]*CacheEntry, error) {
	keys, err := m.backend.Keys()
	if err != nil {
		return nil, err
	}

	entries := make([]*CacheEntry, 0, len(keys))
	for _, key := range keys {
		entry, err := m.backend.Read(key)
		if err != nil {
			m.logger.Warn().Err(err).Msg("skipping unreadable cache entry")
			continue
		}
		if entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// IsFresh reports whether entry would be served without a request now.
func (m *Manager) IsFresh(entry *CacheEntry) bool {
	return m.Policy.IsFresh(entry, m.Now())
}

// GetBackend returns the cache backend (for testing).
func (m *Manager) GetBackend() Backend {
	return m.backend
}
