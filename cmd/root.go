package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/crickmetrics/internal/config"
	"github.com/pable/crickmetrics/internal/logger"
	"github.com/pable/crickmetrics/internal/storage"
	"github.com/pable/crickmetrics/internal/venue"
)

var (
	dbPath     string
	configPath string

	cfg *config.Config
	log *logger.Log
)

var rootCmd = &cobra.Command{
	Use:   "crickmetrics",
	Short: "T20 ball-by-ball phase metrics tool",
	Long: `Ingest cricsheet ball-by-ball CSV files, summarise every innings into
powerplay, middle-overs and death-overs runs and wickets, and report on
team, phase and venue trends.`,
	SilenceUsage:       true,
	PersistentPreRunE:  loadRuntime,
	PersistentPostRunE: closeRuntime,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default: ./config.yaml or ~/.crickmetrics/config.yaml)")
	pf.StringVar(&dbPath, "db", filepath.Join(config.HomeDir(), "matches.db"), "path to SQLite database")
	pf.String("data-dir", "", "directory of cricsheet ball-by-ball CSV files")
	pf.Int("workers", config.DefaultWorkers, "parallel parse workers")
	pf.String("venues", "", "YAML file of venue → city overrides")
	pf.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	pf.String("log-format", config.DefaultLogFormat, "log format: text or json")
	pf.String("log-file", "", "write logs to this file (rotated) instead of stderr")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(winlossCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(phasesCmd)
	rootCmd.AddCommand(venuesCmd)
	rootCmd.AddCommand(matchupsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(dropCmd)
}

// loadRuntime resolves configuration and builds the logger before any command runs.
func loadRuntime(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	c, err := config.LoadConfig(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = c
	dbPath = c.DB
	log = logger.New(c.Logging.LoggerOptions())
	log.WithComponent("cli").WithFields(logger.Fields{"command": cmd.Name(), "db": dbPath}).Debug("configuration loaded")
	return nil
}

func closeRuntime(_ *cobra.Command, _ []string) error {
	if log == nil {
		return nil
	}
	return log.Close()
}

// openDB opens the configured database, creating its directory if needed.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// loadVenues returns the venue directory with any configured overrides.
func loadVenues() (*venue.Directory, error) {
	return venue.Load(cfg.VenuesFile)
}
