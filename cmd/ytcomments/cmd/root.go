package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile           string
	logLevel          string
	logFormat         string
	apiKey            string
	checkpointBackend string
	statePath         string
	metricsTextfile   string
)

var rootCmd = &cobra.Command{
	Use:   "ytcomments",
	Short: "Resumable YouTube comment collector and clusterer",
	Long: `ytcomments collects every comment and reply of a YouTube video into a
CSV file, surviving quota exhaustion and interruptions, and groups the
collected comments into clusters of similar text.

Features:
  - Two-level pagination (threads, then replies) with checkpoints
  - Clean stop on daily quota exhaustion; resume later with --resume
  - Checkpoints in a JSON file, SQLite or MySQL
  - Deduplicated output keyed by comment_id
  - DBSCAN clustering over text embeddings`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "ytcomments.yaml",
		"Path to configuration file (optional unless set explicitly)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// API and checkpoint overrides
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "",
		"Override YouTube Data API key (default from YT_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&checkpointBackend, "checkpoint-backend", "",
		"Override checkpoint backend (file, sqlite, mysql, none)")
	rootCmd.PersistentFlags().StringVar(&statePath, "save-state", "",
		"Override checkpoint path (JSON file or SQLite database)")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "",
		"Write Prometheus metrics to this file after a fetch")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// configRequired reports whether the config file was named explicitly, in
// which case a missing file is an error.
func configRequired() bool {
	f := rootCmd.PersistentFlags().Lookup("config")
	return f != nil && f.Changed
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel          string
	LogFormat         string
	APIKey            string
	CheckpointBackend string
	CheckpointPath    string
	MetricsTextfile   string
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:          logLevel,
		LogFormat:         logFormat,
		APIKey:            apiKey,
		CheckpointBackend: checkpointBackend,
		CheckpointPath:    statePath,
		MetricsTextfile:   metricsTextfile,
	}
}
