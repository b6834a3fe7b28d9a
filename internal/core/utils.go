package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	relativeSpecRegex = regexp.MustCompile(`^([dwmy])([+-])(\d+)$`)
	countryCodeRegex  = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// GetTZ returns a *time.Location for the given timezone name.
// An empty name means the machine's local zone. Falls back to UTC if the
// timezone is not found.
func GetTZ(name string) *time.Location {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Str("timezone", name).Msg("timezone not found; falling back to UTC")
		return time.UTC
	}
	return loc
}

// ParseDate parses a YYYY-MM-DD string into a time.Time (date only, at midnight UTC).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(APIDateFmt, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s' (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// ParseDateSpec returns a concrete date for flexible spec strings relative to now.
// Supports:
// 1. Exact YYYY-MM-DD
// 2. today, tomorrow, yesterday
// 3. Relative forms like d+7 (days), w-2 (weeks), m+3 (months), y-1 (years)
func ParseDateSpec(spec string, now time.Time) (time.Time, error) {
	today := DateOnly(now)
	spec = strings.ToLower(strings.TrimSpace(spec))

	if t, err := time.Parse(APIDateFmt, spec); err == nil {
		return t, nil
	}

	switch spec {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if matches := relativeSpecRegex.FindStringSubmatch(spec); matches != nil {
		num, err := strconv.Atoi(matches[3])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date specification: '%s'", spec)
		}
		if matches[2] == "-" {
			num = -num
		}
		switch matches[1] {
		case "d":
			return today.AddDate(0, 0, num), nil
		case "w":
			return today.AddDate(0, 0, num*7), nil
		case "m":
			return today.AddDate(0, num, 0), nil
		case "y":
			return today.AddDate(num, 0, 0), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date specification: '%s'", spec)
}

// IsCountryCode reports whether s looks like an ISO 3166-1 alpha-2 code.
func IsCountryCode(s string) bool {
	return countryCodeRegex.MatchString(s)
}

// NormalizeCountry upper-cases and trims a country code so "de" and " DE"
// address the same cache slot.
func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DateOnly returns a time.Time with only the date portion (midnight UTC).
// The calendar day is taken in t's own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// FormatDate formats a time.Time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(APIDateFmt)
}
