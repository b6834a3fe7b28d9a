// Package api provides the HTTP client and types for the Nager.Date public holiday API.
package api

import "strings"

// HolidayType classifies a holiday as reported by the API.
type HolidayType string

// Known holiday types. Values outside this set are kept verbatim.
const (
	HolidayTypePublic      HolidayType = "Public"
	HolidayTypeBank        HolidayType = "Bank"
	HolidayTypeSchool      HolidayType = "School"
	HolidayTypeAuthorities HolidayType = "Authorities"
	HolidayTypeOptional    HolidayType = "Optional"
	HolidayTypeObservance  HolidayType = "Observance"
)

// Holiday is a single public holiday record.
//
// Date is an ISO YYYY-MM-DD string, validated when decoded, so lexical order
// is calendar order. Counties is nil for nationwide holidays and LaunchYear is
// nil when the API does not know it.
type Holiday struct {
	Date        string        `json:"date" yaml:"date"`
	LocalName   string        `json:"localName" yaml:"localName"`
	Name        string        `json:"name" yaml:"name"`
	CountryCode string        `json:"countryCode" yaml:"countryCode"`
	Fixed       bool          `json:"fixed" yaml:"fixed"`
	Global      bool          `json:"global" yaml:"global"`
	Counties    []string      `json:"counties" yaml:"counties"`
	LaunchYear  *int          `json:"launchYear" yaml:"launchYear"`
	Types       []HolidayType `json:"types" yaml:"types"`
}

// TypeNames returns the holiday types as plain strings.
func (h Holiday) TypeNames() []string {
	names := make([]string, len(h.Types))
	for i, t := range h.Types {
		names[i] = string(t)
	}
	return names
}

// HasType reports whether the holiday carries the given type.
func (h Holiday) HasType(t HolidayType) bool {
	for _, ht := range h.Types {
		if strings.EqualFold(string(ht), string(t)) {
			return true
		}
	}
	return false
}

// Country is an entry of the AvailableCountries endpoint.
type Country struct {
	CountryCode string `json:"countryCode" yaml:"countryCode"`
	Name        string `json:"name" yaml:"name"`
}

// Transport is the interface for making API requests.
// Request returns the raw body of a successful (2xx) response. Non-2xx
// responses are reported as *APIError.
type Transport interface {
	Request(endpoint string) ([]byte, error)
}
