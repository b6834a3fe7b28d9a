package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/colthorp/holidate/internal/core"
)

// HolidayAPI provides a typed convenience layer over the Nager.Date REST API.
type HolidayAPI struct {
	transport Transport
}

// NewHolidayAPI creates a new high-level API client.
func NewHolidayAPI(transport Transport) *HolidayAPI {
	if transport == nil {
		transport = NewClient("", 0, nil)
	}
	return &HolidayAPI{transport: transport}
}

// FetchHolidays returns every public holiday of country in year, in the
// order the API sent them. Failures are reported as *SourceError.
func (a *HolidayAPI) FetchHolidays(country string, year int) ([]Holiday, error) {
	country = core.NormalizeCountry(country)

	body, err := a.transport.Request(fmt.Sprintf("PublicHolidays/%d/%s", year, country))
	if err != nil {
		return nil, &SourceError{Kind: classify(err), Country: country, Year: year, Err: err}
	}

	// Unknown country codes come back as an empty body rather than a 404.
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &SourceError{Kind: SourceNotFound, Country: country, Year: year}
	}

	holidays, err := DecodeHolidays(body)
	if err != nil {
		return nil, &SourceError{Kind: SourceMalformed, Country: country, Year: year, Err: err}
	}
	return holidays, nil
}

// AvailableCountries lists the countries the API has holiday data for.
func (a *HolidayAPI) AvailableCountries() ([]Country, error) {
	body, err := a.transport.Request("AvailableCountries")
	if err != nil {
		return nil, &SourceError{Kind: classify(err), Err: err}
	}

	var countries []Country
	if err := json.Unmarshal(body, &countries); err != nil {
		return nil, &SourceError{Kind: SourceMalformed, Err: fmt.Errorf("failed to parse JSON response: %w", err)}
	}
	return countries, nil
}

// DecodeHolidays parses a PublicHolidays response body and validates each
// record's date.
func DecodeHolidays(body []byte) ([]Holiday, error) {
	var holidays []Holiday
	if err := json.Unmarshal(body, &holidays); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if holidays == nil {
		holidays = []Holiday{}
	}
	for i, h := range holidays {
		if _, err := time.Parse(core.APIDateFmt, h.Date); err != nil {
			return nil, fmt.Errorf("record %d: invalid date %q", i, h.Date)
		}
	}
	return holidays, nil
}

// classify maps a transport error onto a SourceErrorKind. The API rejects
// badly formed country codes with 400, which is a lookup miss as well.
func classify(err error) SourceErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusNotFound, http.StatusBadRequest:
			return SourceNotFound
		}
	}
	return SourceUnavailable
}
