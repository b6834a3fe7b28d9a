package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// InMemoryTransport is a lightweight simulation of the Nager.Date API.
// It implements the PublicHolidays and AvailableCountries endpoints, which is
// enough for unit testing cache logic.
type InMemoryTransport struct {
	mu         sync.Mutex
	holidays   map[string][]Holiday
	countries  []Country
	failures   map[string]error
	raw        map[string][]byte
	RequestLog []RequestLogEntry
}

// RequestLogEntry records a request made to the transport.
type RequestLogEntry struct {
	Endpoint string
}

// NewInMemoryTransport creates a new in-memory transport for testing.
func NewInMemoryTransport() *InMemoryTransport {
	return &InMemoryTransport{
		holidays:   make(map[string][]Holiday),
		failures:   make(map[string]error),
		raw:        make(map[string][]byte),
		RequestLog: make([]RequestLogEntry, 0),
	}
}

func holidaysEndpoint(country string, year int) string {
	return fmt.Sprintf("PublicHolidays/%d/%s", year, strings.ToUpper(country))
}

// Seed adds holidays to the in-memory store. Each holiday is filed under its
// own country code and the year of its date.
func (t *InMemoryTransport) Seed(holidays ...Holiday) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range holidays {
		year, _ := strconv.Atoi(h.Date[:4])
		key := holidaysEndpoint(h.CountryCode, year)
		t.holidays[key] = append(t.holidays[key], h)
	}
}

// SeedEmpty registers a country/year that exists but has no holidays.
func (t *InMemoryTransport) SeedEmpty(country string, year int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := holidaysEndpoint(country, year)
	if _, ok := t.holidays[key]; !ok {
		t.holidays[key] = []Holiday{}
	}
}

// SeedCountries sets the AvailableCountries response.
func (t *InMemoryTransport) SeedCountries(countries ...Country) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.countries = append(t.countries, countries...)
}

// SeedRaw makes the endpoint for country/year answer with body verbatim.
func (t *InMemoryTransport) SeedRaw(country string, year int, body []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.raw[holidaysEndpoint(country, year)] = body
}

// Fail makes requests for country/year return err until Recover is called.
func (t *InMemoryTransport) Fail(country string, year int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		err = errors.New("connection refused")
	}
	t.failures[holidaysEndpoint(country, year)] = err
}

// FailAll makes every request return err.
func (t *InMemoryTransport) FailAll(err error) {
	t.Fail("*", 0, err)
}

// Recover clears all injected failures.
func (t *InMemoryTransport) Recover() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures = make(map[string]error)
}

// RequestsMade returns the number of requests made to this transport.
func (t *InMemoryTransport) RequestsMade() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.RequestLog)
}

// Reset clears all stored data, failures and recorded requests.
func (t *InMemoryTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.holidays = make(map[string][]Holiday)
	t.failures = make(map[string]error)
	t.raw = make(map[string][]byte)
	t.countries = nil
	t.RequestLog = make([]RequestLogEntry, 0)
}

// Request simulates a low-level API request.
func (t *InMemoryTransport) Request(endpoint string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Track the call for assertions in unit tests
	t.RequestLog = append(t.RequestLog, RequestLogEntry{Endpoint: endpoint})

	if err, ok := t.failures[holidaysEndpoint("*", 0)]; ok {
		return nil, err
	}
	if err, ok := t.failures[endpoint]; ok {
		return nil, err
	}
	if body, ok := t.raw[endpoint]; ok {
		return body, nil
	}

	switch {
	case endpoint == "AvailableCountries":
		return json.Marshal(t.countries)
	case strings.HasPrefix(endpoint, "PublicHolidays/"):
		holidays, ok := t.holidays[endpoint]
		if !ok {
			return nil, &APIError{StatusCode: 404, Message: "Not Found"}
		}
		return json.Marshal(holidays)
	}

	return nil, &APIError{StatusCode: 404, Message: "Not Found"}
}
