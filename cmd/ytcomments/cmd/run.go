package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/ytcomments/internal/logger"
)

var (
	runFetchOpts   fetchFlags
	runClusterOpts clusterFlags
	runBase        string
)

var runCmd = &cobra.Command{
	Use:   "run <video>",
	Short: "Fetch comments of a video and cluster them",
	Long: `Run executes the fetch step into <base>_raw.csv and then the cluster
step, producing <base>_clustered.csv and <base>_clusters_summary.csv.

A quota stop in the fetch step still clusters the partial results.

Example:
  ytcomments run dQw4w9WgXcQ --base out --max-total 5000`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&runBase, "base", "out", "Base name for outputs")
	addFetchFlags(runCmd, &runFetchOpts)
	addClusterFlags(runCmd, &runClusterOpts)
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runFetchOpts.apply(cmd, &cfg.Fetch)
	runClusterOpts.apply(cmd, &cfg.Cluster)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	w := out(cmd)
	rawCSV := runBase + "_raw.csv"

	fmt.Fprintln(w, ">>> Running fetch step …")
	outcome, err := fetchComments(cmd.Context(), w, cfg, log, fetchRequest{
		Video: args[0],
		CSV:   rawCSV,
		Force: runFetchOpts.force,
	})
	if err != nil {
		printFail(w, "Fetch step failed.")
		return err
	}
	if len(outcome.Rows) == 0 {
		return fmt.Errorf("no comments collected for %s; skipping cluster step", outcome.VideoID)
	}

	fmt.Fprintln(w, ">>> Running cluster step …")
	return clusterCSV(cmd.Context(), w, cfg, log, rawCSV, runBase)
}
