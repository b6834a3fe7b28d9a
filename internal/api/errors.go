package api

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is against a *SourceError.
var (
	// ErrNotFound indicates the API knows no holidays for the country/year
	ErrNotFound = errors.New("holidays not found")

	// ErrUnavailable indicates a transport failure or an unexpected HTTP status
	ErrUnavailable = errors.New("holiday API unavailable")

	// ErrMalformed indicates the response body did not match the expected shape
	ErrMalformed = errors.New("malformed holiday API response")
)

// SourceErrorKind categorises a failed fetch.
type SourceErrorKind int

const (
	SourceNotFound SourceErrorKind = iota + 1
	SourceUnavailable
	SourceMalformed
)

func (k SourceErrorKind) String() string {
	switch k {
	case SourceNotFound:
		return "not found"
	case SourceUnavailable:
		return "unavailable"
	case SourceMalformed:
		return "malformed"
	}
	return "unknown"
}

func (k SourceErrorKind) sentinel() error {
	switch k {
	case SourceNotFound:
		return ErrNotFound
	case SourceUnavailable:
		return ErrUnavailable
	case SourceMalformed:
		return ErrMalformed
	}
	return nil
}

// APIError is returned by transports when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// SourceError is returned by HolidayAPI when holidays cannot be fetched.
type SourceError struct {
	Kind    SourceErrorKind
	Country string
	Year    int
	Err     error
}

func (e *SourceError) Error() string {
	target := e.Country
	if e.Year != 0 {
		target = fmt.Sprintf("%s/%d", e.Country, e.Year)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch holidays %s: %s: %v", target, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch holidays %s: %s", target, e.Kind)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is lets errors.Is match the kind sentinels.
func (e *SourceError) Is(target error) bool {
	return target == e.Kind.sentinel()
}
