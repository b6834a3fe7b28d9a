// Package cli implements the command-line interface for holidate.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/colthorp/holidate/internal/api"
	"github.com/colthorp/holidate/internal/cache"
	"github.com/colthorp/holidate/internal/core"
	"github.com/colthorp/holidate/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Replaced in tests.
var (
	newTransport = func(cfg *core.Config, logger *logging.Logger) api.Transport {
		return api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)
	}
	now = time.Now
)

// app carries state resolved once per invocation and shared by subcommands.
type app struct {
	v          *viper.Viper
	configFile string

	cfg     *core.Config
	logger  *logging.Logger
	backend cache.Backend
	source  *api.HolidayAPI
}

// NewRootCommand builds the holidate command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "holidate",
		Short: "holidate – upcoming public holidays with a local cache",
		Long: `A command-line utility that reports the next upcoming public holidays for a
country. Responses from the holiday API are cached per country and year and
reused for the rest of the day.`,
		Version:           core.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	// Persistent flags available to all commands
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file path (default: ~/.config/holidate/config.yaml)")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-format", "", "Log format (console, json)")
	pf.String("cache-backend", "", fmt.Sprintf("Cache backend (%s, %s, %s)", core.CacheBackendFile, core.CacheBackendBolt, core.CacheBackendMemory))
	pf.String("cache-dir", "", "Cache directory")
	pf.String("timezone", "", "Timezone deciding today's date (default: local)")

	a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	a.v.BindPFlag("log.format", pf.Lookup("log-format"))
	a.v.BindPFlag("cache.backend", pf.Lookup("cache-backend"))
	a.v.BindPFlag("cache.dir", pf.Lookup("cache-dir"))
	a.v.BindPFlag("query.timezone", pf.Lookup("timezone"))

	rootCmd.AddCommand(newNextCommand(a))
	rootCmd.AddCommand(newCountriesCommand(a))
	rootCmd.AddCommand(newCacheCommand(a))
	rootCmd.AddCommand(newMCPCommand(a))

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and initializes logging before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := core.LoadConfig(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Out:    cmd.ErrOrStderr(),
	})
	a.logger.Debug().
		Str("backend", cfg.Cache.Backend).
		Str("cache_dir", cfg.Cache.Dir).
		Str("base_url", cfg.API.BaseURL).
		Msg("configuration loaded")

	a.source = api.NewHolidayAPI(newTransport(cfg, a.logger))
	return nil
}

// openBackend opens the configured cache backend once. A bolt database that
// cannot be opened degrades to an in-memory cache for this run.
func (a *app) openBackend() cache.Backend {
	if a.backend != nil {
		return a.backend
	}

	switch a.cfg.Cache.Backend {
	case core.CacheBackendBolt:
		b, err := cache.NewBoltBackend(a.cfg.Cache.Dir)
		if err != nil {
			a.logger.Warn().Err(err).Str("dir", a.cfg.Cache.Dir).Msg("cannot open bolt cache; using in-memory cache")
			a.backend = cache.NewMemoryBackend()
		} else {
			a.backend = b
		}
	case core.CacheBackendMemory:
		a.backend = cache.NewMemoryBackend()
	default:
		a.backend = cache.NewFilesystemBackend(a.cfg.Cache.Dir)
	}
	return a.backend
}

// manager builds a query engine over the configured source and backend.
func (a *app) manager() *cache.Manager {
	m := cache.NewManager(a.source, a.openBackend(), a.logger)
	m.MaxYears = a.cfg.Query.MaxYears
	m.Now = now
	return m
}

// location is the zone deciding what "today" is.
func (a *app) location() *time.Location {
	return core.GetTZ(a.cfg.Query.Timezone)
}

// today returns the current calendar date in the configured zone.
func (a *app) today() time.Time {
	return core.DateOnly(now().In(a.location()))
}

func (a *app) close() error {
	if c, ok := a.backend.(io.Closer); ok {
		a.backend = nil
		return c.Close()
	}
	return nil
}
