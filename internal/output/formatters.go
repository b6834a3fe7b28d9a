// Package output provides output formatting utilities for the holidate CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/colthorp/holidate/internal/api"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the accepted --format values.
var Formats = []string{FormatText, FormatTable, FormatJSON, FormatYAML}

// commaSep joins items into a comma-separated list.
func commaSep(items []string) string {
	return strings.Join(items, ", ")
}

// FormatHoliday renders a holiday on one line: date, name, counties, types.
func FormatHoliday(h api.Holiday) string {
	line := fmt.Sprintf("%s %-40s %-25s %s", h.Date, h.Name, commaSep(h.Counties), commaSep(h.TypeNames()))
	return strings.TrimRight(line, " ")
}

// PrintHolidays writes holidays in the requested format.
func PrintHolidays(w io.Writer, holidays []api.Holiday, format string) error {
	switch format {
	case "", FormatText:
		for _, h := range holidays {
			fmt.Fprintln(w, FormatHoliday(h))
		}
		return nil
	case FormatTable:
		return printHolidayTable(w, holidays)
	case FormatJSON:
		return PrintJSON(w, holidays)
	case FormatYAML:
		return PrintYAML(w, holidays)
	}
	return fmt.Errorf("unknown format %q (expected one of %s)", format, commaSep(Formats))
}

func printHolidayTable(w io.Writer, holidays []api.Holiday) error {
	table := tablewriter.NewWriter(w)
	table.Header("Date", "Name", "Local Name", "Counties", "Types")
	for _, h := range holidays {
		counties := commaSep(h.Counties)
		if counties == "" {
			counties = "-"
		}
		if err := table.Append([]string{h.Date, h.Name, h.LocalName, counties, commaSep(h.TypeNames())}); err != nil {
			return err
		}
	}
	return table.Render()
}

// PrintCountries writes the available countries in the requested format.
func PrintCountries(w io.Writer, countries []api.Country, format string) error {
	switch format {
	case "", FormatText:
		for _, c := range countries {
			fmt.Fprintf(w, "%s %s\n", c.CountryCode, c.Name)
		}
		return nil
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Code", "Name")
		for _, c := range countries {
			if err := table.Append([]string{c.CountryCode, c.Name}); err != nil {
				return err
			}
		}
		return table.Render()
	case FormatJSON:
		return PrintJSON(w, countries)
	case FormatYAML:
		return PrintYAML(w, countries)
	}
	return fmt.Errorf("unknown format %q (expected one of %s)", format, commaSep(Formats))
}

// CacheRow summarises one cache entry for `cache list`.
type CacheRow struct {
	Country   string `json:"country" yaml:"country"`
	Year      int    `json:"year" yaml:"year"`
	Holidays  int    `json:"holidays" yaml:"holidays"`
	FetchedAt string `json:"fetched_at" yaml:"fetched_at"`
	Fresh     bool   `json:"fresh" yaml:"fresh"`
	Path      string `json:"path" yaml:"path"`
}

// PrintCacheRows writes cache entry summaries in the requested format.
func PrintCacheRows(w io.Writer, rows []CacheRow, format string) error {
	switch format {
	case "", FormatText, FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("Country", "Year", "Holidays", "Fetched At", "Fresh")
		for _, r := range rows {
			if err := table.Append([]string{r.Country, strconv.Itoa(r.Year), strconv.Itoa(r.Holidays), r.FetchedAt, strconv.FormatBool(r.Fresh)}); err != nil {
				return err
			}
		}
		return table.Render()
	case FormatJSON:
		return PrintJSON(w, rows)
	case FormatYAML:
		return PrintYAML(w, rows)
	}
	return fmt.Errorf("unknown format %q (expected one of %s)", format, commaSep(Formats))
}

// PrintJSON prints a single item as formatted JSON.
func PrintJSON(w io.Writer, item interface{}) error {
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintYAML prints a single item as YAML.
func PrintYAML(w io.Writer, item interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(item); err != nil {
		return fmt.Errorf("error encoding YAML: %w", err)
	}
	return enc.Close()
}
