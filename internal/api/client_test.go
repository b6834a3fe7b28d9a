package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const germany2024 = `[
  {"date":"2024-01-01","localName":"Neujahr","name":"New Year's Day","countryCode":"DE","fixed":true,"global":true,"counties":null,"launchYear":1967,"types":["Public"]},
  {"date":"2024-01-06","localName":"Heilige Drei Könige","name":"Epiphany","countryCode":"DE","fixed":true,"global":false,"counties":["DE-BW","DE-BY","DE-ST"],"launchYear":null,"types":["Public"]}
]`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*HolidayAPI, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewHolidayAPI(NewClient(srv.URL, 5*time.Second, nil)), &hits
}

func TestClientFetchHolidays(t *testing.T) {
	var gotPath string
	holidayAPI, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(germany2024))
	})

	holidays, err := holidayAPI.FetchHolidays("de", 2024)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotPath != "/api/v3/PublicHolidays/2024/DE" {
		t.Errorf("Expected path /api/v3/PublicHolidays/2024/DE, got %s", gotPath)
	}
	if len(holidays) != 2 {
		t.Fatalf("Expected 2 holidays, got %d", len(holidays))
	}

	first := holidays[0]
	if first.Name != "New Year's Day" || first.LocalName != "Neujahr" {
		t.Errorf("Unexpected names: %q / %q", first.Name, first.LocalName)
	}
	if first.Counties != nil {
		t.Errorf("Expected nil counties for nationwide holiday, got %v", first.Counties)
	}
	if first.LaunchYear == nil || *first.LaunchYear != 1967 {
		t.Errorf("Expected launch year 1967, got %v", first.LaunchYear)
	}
	if !first.HasType(HolidayTypePublic) {
		t.Errorf("Expected Public type, got %v", first.Types)
	}

	second := holidays[1]
	if len(second.Counties) != 3 || second.Counties[1] != "DE-BY" {
		t.Errorf("Unexpected counties: %v", second.Counties)
	}
	if second.LaunchYear != nil {
		t.Errorf("Expected nil launch year, got %v", *second.LaunchYear)
	}
	if second.Global {
		t.Error("Expected Epiphany to be regional")
	}
}

func TestClientErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind SourceErrorKind
		wantIs   error
	}{
		{"not found", http.StatusNotFound, "", SourceNotFound, ErrNotFound},
		{"bad request", http.StatusBadRequest, `{"title":"invalid"}`, SourceNotFound, ErrNotFound},
		{"empty body", http.StatusNoContent, "", SourceNotFound, ErrNotFound},
		{"server error", http.StatusInternalServerError, "boom", SourceUnavailable, ErrUnavailable},
		{"rate limited", http.StatusTooManyRequests, "", SourceUnavailable, ErrUnavailable},
		{"bad json", http.StatusOK, `{"not":"an array"}`, SourceMalformed, ErrMalformed},
		{"bad date", http.StatusOK, `[{"date":"01/01/2024","name":"x","countryCode":"DE","types":[]}]`, SourceMalformed, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holidayAPI, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := holidayAPI.FetchHolidays("DE", 2024)
			if err == nil {
				t.Fatal("Expected error")
			}

			var srcErr *SourceError
			if !errors.As(err, &srcErr) {
				t.Fatalf("Expected *SourceError, got %T", err)
			}
			if srcErr.Kind != tt.wantKind {
				t.Errorf("Expected kind %v, got %v", tt.wantKind, srcErr.Kind)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("Expected errors.Is(%v)", tt.wantIs)
			}
			if srcErr.Country != "DE" || srcErr.Year != 2024 {
				t.Errorf("Expected key DE/2024 on error, got %s/%d", srcErr.Country, srcErr.Year)
			}
			if got := atomic.LoadInt32(hits); got != 1 {
				t.Errorf("Expected exactly 1 request (no retries), got %d", got)
			}
		})
	}
}

func TestClientTransportFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, nil)
	holidayAPI := NewHolidayAPI(client)

	_, err := holidayAPI.FetchHolidays("DE", 2024)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestClientBaseURL(t *testing.T) {
	client := NewClient("https://example.test/", 0, nil)
	if client.BaseURL() != "https://example.test/api/v3" {
		t.Errorf("Unexpected base URL %s", client.BaseURL())
	}
}

func TestAvailableCountries(t *testing.T) {
	holidayAPI, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/AvailableCountries" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{"countryCode":"AD","name":"Andorra"},{"countryCode":"DE","name":"Germany"}]`))
	})

	countries, err := holidayAPI.AvailableCountries()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(countries) != 2 || countries[1].CountryCode != "DE" || countries[1].Name != "Germany" {
		t.Errorf("Unexpected countries: %+v", countries)
	}
}
