package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradesync/config"
	"github.com/rustyeddy/tradesync/engine"
	"github.com/rustyeddy/tradesync/remote"
	"github.com/rustyeddy/tradesync/store"
)

var rootCmd = &cobra.Command{
	Use:   "tradesync",
	Short: "Local-first sync engine for trade records",
	Long: `Tradesync reconciles trade records held in a local SQLite store with
an authoritative remote backend.

It provides tools for:
  - Bidirectional sync (push local edits, then pull remote changes)
  - One-directional push or pull passes
  - Inspecting sync state (unsynced records, mappings, mismatches)
  - Exporting the local journal to CSV
  - Resetting a corrupted local store

Complete documentation is available at https://github.com/rustyeddy/tradesync`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgFile string
	dbPath  string
	owner   string
	baseURL string
	token   string
	verbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to local SQLite store")
	rootCmd.PersistentFlags().StringVarP(&owner, "owner", "o", "", "owner id to sync")
	rootCmd.PersistentFlags().StringVar(&baseURL, "remote", "", "base URL of the trades backend")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (overrides config and TRADESYNC_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig merges the config file (if any) with flag and environment
// overrides. Flags win over the environment, the environment wins over
// the file.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if env := os.Getenv("TRADESYNC_TOKEN"); env != "" && cfg.Remote.Token == "" {
		cfg.Remote.Token = env
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if owner != "" {
		cfg.Owner = owner
	}
	if baseURL != "" {
		cfg.Remote.BaseURL = baseURL
	}
	if token != "" {
		cfg.Remote.Token = token
	}

	if cfg.Owner == "" {
		return nil, fmt.Errorf("owner is required (--owner or config)")
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(cfg.Log.Level); err == nil && cfg.Log.Level != "" {
		level = l
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// buildEngine wires the store manager, remote client and engine from
// the merged configuration.
func buildEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg)
	stores := store.NewManager(cfg.Store.Path, logger)
	client := remote.NewClient(cfg.Remote.BaseURL, remote.StaticToken(cfg.Remote.Token))

	return engine.New(stores, client, logger), cfg, nil
}
