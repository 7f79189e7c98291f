package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/ytcomments/internal/cluster"
	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/output"
)

// clusterFlags are shared by cluster and run.
type clusterFlags struct {
	sim        float64
	minSamples int
	embedder   string
	endpoint   string
	model      string
}

var (
	clusterOpts clusterFlags
	clusterBase string
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <csv>",
	Short: "Group comments from a CSV file into clusters of similar text",
	Long: `Cluster reads a CSV with a 'text' column (and optionally 'like_count'),
embeds every non-empty comment and groups them with DBSCAN under cosine
distance. Comments that fit no group become singleton clusters.

Outputs:
  <base>_clustered.csv          input rows plus a cluster_id column
  <base>_clusters_summary.csv   cluster_id, size, top_likes, representative

Example:
  ytcomments cluster comments.csv --sim 0.9 --min-samples 3`,
	Args: cobra.ExactArgs(1),
	RunE: runCluster,
}

func init() {
	clusterCmd.Flags().StringVar(&clusterBase, "csv-base", "",
		"Base name for outputs (default: input name without extension)")
	addClusterFlags(clusterCmd, &clusterOpts)
	rootCmd.AddCommand(clusterCmd)
}

func addClusterFlags(cmd *cobra.Command, f *clusterFlags) {
	cmd.Flags().Float64Var(&f.sim, "sim", 0, "Cosine similarity threshold, higher = tighter (default from config: 0.88)")
	cmd.Flags().IntVar(&f.minSamples, "min-samples", 0, "DBSCAN min_samples (default from config: 3)")
	cmd.Flags().StringVar(&f.embedder, "embedder", "", "Embedder: hash or http")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Embedding server URL for the http embedder")
	cmd.Flags().StringVar(&f.model, "model", "", "Embedding model name")
}

func (f *clusterFlags) apply(cmd *cobra.Command, cfg *config.ClusterConfig) {
	flags := cmd.Flags()
	if flags.Changed("sim") {
		cfg.Sim = f.sim
	}
	if flags.Changed("min-samples") {
		cfg.MinSamples = f.minSamples
	}
	if flags.Changed("embedder") {
		cfg.Embedder = f.embedder
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = f.endpoint
	}
	if flags.Changed("model") {
		cfg.Model = f.model
	}
}

func runCluster(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	clusterOpts.apply(cmd, &cfg.Cluster)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	base := clusterBase
	if base == "" {
		base = trimExt(args[0])
	}
	return clusterCSV(cmd.Context(), out(cmd), cfg, log, args[0], base)
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// clusterCSV clusters csvPath and writes the two output files under base.
func clusterCSV(ctx context.Context, w io.Writer, cfg *config.Config, log *logger.Logger, csvPath, base string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	in, err := output.ReadTable(csvPath)
	if err != nil {
		return err
	}
	tbl, items, err := cluster.Prepare(in)
	if err != nil {
		return fmt.Errorf("%s: %w", csvPath, err)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No comments to cluster.")
		return nil
	}

	emb, err := cluster.NewEmbedder(&cfg.Cluster, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Clustering %d comments (sim≥%.2f, min_samples=%d) …\n", len(items), cfg.Cluster.Sim, cfg.Cluster.MinSamples)
	res, err := cluster.New(emb, log).Run(ctx, items, cluster.Options{
		Sim:        cfg.Cluster.Sim,
		MinSamples: cfg.Cluster.MinSamples,
	})
	if err != nil {
		return err
	}

	clustered, err := cluster.Annotate(tbl, res.IDs)
	if err != nil {
		return err
	}
	clusteredPath := base + "_clustered.csv"
	summaryPath := base + "_clusters_summary.csv"
	if err := output.WriteTable(clusteredPath, clustered); err != nil {
		return err
	}
	if err := output.WriteTable(summaryPath, cluster.SummaryTable(res.Summaries)); err != nil {
		return err
	}

	printOK(w, "Done. Wrote:")
	fmt.Fprintf(w, "  - %s\n  - %s\n", clusteredPath, summaryPath)
	fmt.Fprintf(w, "Clusters: %d total  |  ≥2 size: %d  |  singletons: %d\n", res.Total, res.Multi, res.Singletons)
	fmt.Fprintf(w, "\nTop %d clusters:\n", cluster.TopClusters)
	cluster.RenderTop(w, res.Summaries, cluster.TopClusters)
	return nil
}
