package cmd

import (
	"fmt"
	"io"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/logger"
)

// loadConfig reads the config file (or defaults), applies the persistent
// flag overrides and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(GetConfigFile(), configRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	o := GetCLIOverrides()
	cfg.ApplyOverrides(config.Overrides{
		LogLevel:          o.LogLevel,
		LogFormat:         o.LogFormat,
		APIKey:            o.APIKey,
		CheckpointBackend: o.CheckpointBackend,
		CheckpointPath:    o.CheckpointPath,
		MetricsTextfile:   o.MetricsTextfile,
	})
	return cfg, nil
}

// setup is the common prologue of every command that does work.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func printOK(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.Green.Sprintf(format, args...))
}

func printWarn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.Yellow.Sprintf(format, args...))
}

func printFail(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.Red.Sprintf(format, args...))
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
