package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepscout/matchup/internal/config"
	"github.com/deepscout/matchup/internal/ftcscout"
	"github.com/deepscout/matchup/internal/logger"
	"github.com/deepscout/matchup/internal/predictor"
	"github.com/deepscout/matchup/internal/storage"
)

var (
	dbPath  string
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "matchup",
	Short: "FTC alliance matchup predictor",
	Long: `Estimate FTC alliance win probabilities from each team's scored match
history. Match records come from the public FTCScout API and are cached
in a local SQLite database for offline use.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".matchup", "scout.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite cache database")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file (default: $MATCHUP_CONFIG)")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(serveCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// resolveDBPath lets an explicit --db flag win over the configured path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) string {
	if f := cmd.Flag("db"); f != nil && !f.Changed && cfg.DBPath != "" {
		return cfg.DBPath
	}
	return dbPath
}

// runtime bundles what most commands need once config and flags agree.
type runtime struct {
	cfg config.Config
	db  *storage.DB
	log *slog.Logger
}

// openRuntime loads config and opens the cache database.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	path := resolveDBPath(cmd, *cfg)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return &runtime{cfg: *cfg, db: db, log: logger.New(cfg.LogLevel)}, nil
}

func (rt *runtime) Close() {
	rt.db.Close()
}

func (rt *runtime) api() *ftcscout.Client {
	return ftcscout.NewClient(rt.cfg.BaseURL, time.Duration(rt.cfg.HTTPTimeoutSeconds)*time.Second)
}

// source picks the record source for the requested mode. Offline never
// touches the network; refresh forces refetches even for cached teams.
func (rt *runtime) source(offline, refresh bool) predictor.RecordSource {
	if offline {
		return &predictor.CacheOnlySource{DB: rt.db}
	}
	return &predictor.CachingSource{API: rt.api(), DB: rt.db, Log: rt.log, Refresh: refresh}
}

// seasonOrDefault falls back to the configured season when the flag is 0.
func (rt *runtime) seasonOrDefault(season int) int {
	if season == 0 {
		return rt.cfg.Season
	}
	return season
}
