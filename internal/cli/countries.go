package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/colthorp/holidate/internal/api"
	"github.com/colthorp/holidate/internal/core"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// resolveCountry turns a code or a country name into a normalized code.
// Names need the country list from the API, so offline runs accept codes only.
func (a *app) resolveCountry(arg string, offline bool) (string, error) {
	arg = strings.TrimSpace(arg)
	if core.IsCountryCode(arg) {
		return core.NormalizeCountry(arg), nil
	}
	if offline {
		return "", fmt.Errorf("%q is not a country code; country names cannot be resolved offline", arg)
	}

	countries, err := a.source.AvailableCountries()
	if err != nil {
		return "", fmt.Errorf("cannot resolve country name %q: %w", arg, err)
	}

	match, ok := matchCountry(countries, arg)
	if !ok {
		return "", fmt.Errorf("unknown country %q (see `holidate countries`)", arg)
	}
	a.logger.Debug().Str("query", arg).Str("country", match.CountryCode).Str("name", match.Name).Msg("resolved country name")
	return match.CountryCode, nil
}

// matchCountry picks the best country for a name query: exact name first,
// then prefix, then the closest fuzzy match.
func matchCountry(countries []api.Country, query string) (api.Country, bool) {
	ranked := rankCountries(countries, query)
	if len(ranked) == 0 {
		return api.Country{}, false
	}
	return ranked[0], true
}

// filterCountries keeps countries whose code or name fuzzily matches query,
// best matches first.
func filterCountries(countries []api.Country, query string) []api.Country {
	query = strings.TrimSpace(query)
	if query == "" {
		return countries
	}

	ranked := rankCountries(countries, query)
	if core.IsCountryCode(query) {
		code := core.NormalizeCountry(query)
		for i, c := range countries {
			if c.CountryCode == code {
				// Exact code match leads even when the name does not match
				out := []api.Country{countries[i]}
				for _, r := range ranked {
					if r.CountryCode != code {
						out = append(out, r)
					}
				}
				return out
			}
		}
	}
	return ranked
}

func rankCountries(countries []api.Country, query string) []api.Country {
	query = strings.ToLower(strings.TrimSpace(query))

	names := make([]string, len(countries))
	for i, c := range countries {
		names[i] = c.Name
	}

	matches := fuzzy.RankFindFold(query, names)

	type scored struct {
		country api.Country
		score   int
	}
	results := make([]scored, 0, len(matches))
	for _, match := range matches {
		name := strings.ToLower(match.Target)
		score := 100 + match.Distance
		switch {
		case name == query:
			score = 0
		case strings.HasPrefix(name, query):
			score = 10 + match.Distance
		}
		results = append(results, scored{country: countries[match.OriginalIndex], score: score})
	}

	// Lower is better
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score < results[j].score
		}
		return results[i].country.Name < results[j].country.Name
	})

	out := make([]api.Country, len(results))
	for i, r := range results {
		out[i] = r.country
	}
	return out
}
