package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/ytcomments/internal/checkpoint"
	"github.com/dbsmedya/ytcomments/internal/cluster"
	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and check the checkpoint store",
	Long: `Validate checks the configuration file and the resources it points to.

Checks performed:
  - Configuration syntax and field values
  - API key presence
  - Checkpoint store connectivity (table creation for SQL backends)
  - Embedder construction

Example:
  ytcomments validate --config ytcomments.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return validateAll(ctx, out(cmd), cfg, GetConfigFile())
}

func validateAll(ctx context.Context, w io.Writer, cfg *config.Config, source string) error {
	fmt.Fprintf(w, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(w, "Config file: %s\n\n", source)

	if err := cfg.Validate(); err != nil {
		printFail(w, "❌ Configuration invalid:\n%v", err)
		return fmt.Errorf("validation failed")
	}
	printOK(w, "✅ Configuration valid")

	hasErrors := false
	if err := cfg.ValidateAPIKey(); err != nil {
		printFail(w, "❌ %v", err)
		hasErrors = true
	} else {
		printOK(w, "✅ API key present")
	}

	log := logger.NewNop()
	backend, err := checkpoint.Open(ctx, &cfg.Checkpoint, log)
	if err != nil {
		printFail(w, "❌ Checkpoint store (%s): %v", cfg.Checkpoint.Backend, err)
		hasErrors = true
	} else {
		printOK(w, "✅ Checkpoint store: %s", backend.Location())
		backend.Close()
	}

	if _, err := cluster.NewEmbedder(&cfg.Cluster, log); err != nil {
		printFail(w, "❌ Embedder: %v", err)
		hasErrors = true
	} else {
		printOK(w, "✅ Embedder: %s", cfg.Cluster.Embedder)
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	fmt.Fprintln(w, "=== Validation Complete ===")
	return nil
}
