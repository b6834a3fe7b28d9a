package cli

import (
	"fmt"
	"strings"

	"github.com/colthorp/holidate/internal/cache"
	"github.com/colthorp/holidate/internal/core"
	"github.com/colthorp/holidate/internal/output"
	"github.com/spf13/cobra"
)

// newNextCommand handles the next subcommand
func newNextCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next COUNTRY",
		Short: "Show the next upcoming public holidays for a country",
		Long: `Show the next upcoming public holidays for a country.

COUNTRY is an ISO 3166-1 alpha-2 code (DE, us) or a country name, which is
matched against the list of available countries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNext(cmd, args[0])
		},
	}

	cmd.Flags().IntP("count", "n", 0, fmt.Sprintf("Number of holidays to show (default %d)", core.DefaultCount))
	cmd.Flags().String("date", "", "Reference date instead of today (YYYY-MM-DD, tomorrow, d+30, ...)")
	cmd.Flags().StringP("format", "o", output.FormatText, fmt.Sprintf("Output format (%s)", strings.Join(output.Formats, ", ")))
	cmd.Flags().Bool("offline", false, "Use cached data only; never contact the API")
	cmd.Flags().Bool("refresh", false, "Ignore cached data and fetch again")
	cmd.MarkFlagsMutuallyExclusive("offline", "refresh")

	return cmd
}

func (a *app) runNext(cmd *cobra.Command, arg string) error {
	count := a.cfg.Query.Count
	if cmd.Flags().Changed("count") {
		count, _ = cmd.Flags().GetInt("count")
	}
	if count < 0 {
		return fmt.Errorf("--count must not be negative, got %d", count)
	}
	dateSpec, _ := cmd.Flags().GetString("date")
	format, _ := cmd.Flags().GetString("format")
	offline, _ := cmd.Flags().GetBool("offline")
	refresh, _ := cmd.Flags().GetBool("refresh")

	today := a.today()
	if dateSpec != "" {
		var err error
		today, err = core.ParseDateSpec(dateSpec, now().In(a.location()))
		if err != nil {
			return err
		}
	}

	country, err := a.resolveCountry(arg, offline)
	if err != nil {
		return err
	}

	m := a.manager()
	m.Offline = offline
	if refresh {
		m.Policy = cache.NeverFresh{}
	}

	holidays, err := m.NextHolidays(country, today, count)
	if err != nil {
		return fmt.Errorf("no holidays for %s: %w", country, err)
	}
	if len(holidays) == 0 && count > 0 {
		return fmt.Errorf("no upcoming holidays found for %s", country)
	}

	return output.PrintHolidays(cmd.OutOrStdout(), holidays, format)
}

// newCountriesCommand handles the countries subcommand
func newCountriesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "countries [FILTER]",
		Short: "List countries with holiday data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			countries, err := a.source.AvailableCountries()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				countries = filterCountries(countries, args[0])
			}
			return output.PrintCountries(cmd.OutOrStdout(), countries, format)
		},
	}
	cmd.Flags().StringP("format", "o", output.FormatText, fmt.Sprintf("Output format (%s)", strings.Join(output.Formats, ", ")))
	return cmd
}

// newCacheCommand groups the cache maintenance subcommands
func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local holiday cache",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached country/year entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			m := a.manager()
			entries, err := m.Entries()
			if err != nil {
				return err
			}

			rows := make([]output.CacheRow, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, output.CacheRow{
					Country:   e.Country,
					Year:      e.Year,
					Holidays:  len(e.Holidays),
					FetchedAt: e.FetchedAt.Format("2006-01-02T15:04:05Z07:00"),
					Fresh:     m.IsFresh(e),
					Path:      m.GetBackend().Path(e.Key()),
				})
			}
			return output.PrintCacheRows(cmd.OutOrStdout(), rows, format)
		},
	}
	listCmd.Flags().StringP("format", "o", output.FormatTable, fmt.Sprintf("Output format (%s)", strings.Join(output.Formats, ", ")))

	pathCmd := &cobra.Command{
		Use:   "path [COUNTRY YEAR]",
		Short: "Print the cache location, or the location of one entry",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or COUNTRY YEAR, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), a.cfg.Cache.Dir)
				return nil
			}
			key, err := cache.ParseKey(args[0] + ":" + args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.openBackend().Path(key))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openBackend().Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			a.logger.Info().Str("dir", a.cfg.Cache.Dir).Msg("cache cleared")
			return nil
		},
	}

	cmd.AddCommand(listCmd, pathCmd, clearCmd)
	return cmd
}

// newMCPCommand starts the MCP server
func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI integration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newMCPServer(a, cmd.InOrStdin(), cmd.OutOrStdout()).run()
		},
	}
}
