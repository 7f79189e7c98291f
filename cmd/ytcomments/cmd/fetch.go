package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/ytcomments/internal/checkpoint"
	"github.com/dbsmedya/ytcomments/internal/collector"
	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/database"
	"github.com/dbsmedya/ytcomments/internal/lock"
	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/metrics"
	"github.com/dbsmedya/ytcomments/internal/output"
	"github.com/dbsmedya/ytcomments/internal/sqlutil"
	"github.com/dbsmedya/ytcomments/internal/types"
	"github.com/dbsmedya/ytcomments/internal/videoid"
	"github.com/dbsmedya/ytcomments/internal/youtube"
)

// fetchFlags are shared by fetch and run.
type fetchFlags struct {
	order              string
	noReplies          bool
	maxTopLevel        int
	maxTotal           int
	checkpointInterval int
	resume             bool
	force              bool
}

var (
	fetchOpts fetchFlags
	fetchCSV  string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <video>",
	Short: "Fetch all comments and replies of a video into a CSV file",
	Long: `Fetch pages through the comment threads of a video and the replies of
each thread, writing deduplicated rows to a CSV file.

The video may be an 11-character id, a youtu.be link or a watch URL.
Progress is checkpointed; when the daily API quota runs out the command
stops cleanly with partial results. Rerun with --resume to continue.

Example:
  ytcomments fetch https://www.youtube.com/watch?v=dQw4w9WgXcQ --csv comments.csv
  ytcomments fetch dQw4w9WgXcQ --resume`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchCSV, "csv", "comments.csv", "Output CSV")
	addFetchFlags(fetchCmd, &fetchOpts)
	rootCmd.AddCommand(fetchCmd)
}

func addFetchFlags(cmd *cobra.Command, f *fetchFlags) {
	cmd.Flags().StringVar(&f.order, "order", "", "Thread order: time or relevance (default from config: time)")
	cmd.Flags().BoolVar(&f.noReplies, "no-replies", false, "Collect top-level comments only")
	cmd.Flags().IntVar(&f.maxTopLevel, "max-top-level", 0, "Stop after this many top-level comments (0 = unlimited)")
	cmd.Flags().IntVar(&f.maxTotal, "max-total", 0, "Stop after about this many rows (0 = unlimited)")
	cmd.Flags().IntVar(&f.checkpointInterval, "checkpoint-interval", 0, "Checkpoint every N rows (default from config: 500)")
	cmd.Flags().BoolVar(&f.resume, "resume", false, "Resume from the saved checkpoint if it matches video and order")
	cmd.Flags().BoolVar(&f.force, "force", false,
		"Skip the MySQL run lock (use with caution)")
}

// apply copies explicitly set flags over the fetch config section.
func (f *fetchFlags) apply(cmd *cobra.Command, cfg *config.FetchConfig) {
	flags := cmd.Flags()
	if flags.Changed("order") {
		cfg.Order = f.order
	}
	if flags.Changed("no-replies") {
		cfg.NoReplies = f.noReplies
	}
	if flags.Changed("max-top-level") {
		cfg.MaxTopLevel = f.maxTopLevel
	}
	if flags.Changed("max-total") {
		cfg.MaxTotal = f.maxTotal
	}
	if flags.Changed("checkpoint-interval") {
		cfg.CheckpointInterval = f.checkpointInterval
	}
	if flags.Changed("resume") {
		cfg.Resume = f.resume
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fetchOpts.apply(cmd, &cfg.Fetch)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	_, err = fetchComments(cmd.Context(), out(cmd), cfg, log, fetchRequest{
		Video: args[0],
		CSV:   fetchCSV,
		Force: fetchOpts.force,
	})
	return err
}

type fetchRequest struct {
	Video string
	CSV   string
	Force bool
}

type fetchOutcome struct {
	VideoID    string
	Rows       []types.Record
	StopReason collector.StopReason
}

// fetchComments runs one collection into req.CSV. Quota exhaustion is not an
// error: the partial rows are saved and the checkpoint left for --resume.
func fetchComments(ctx context.Context, w io.Writer, cfg *config.Config, log *logger.Logger, req fetchRequest) (*fetchOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	vid, err := videoid.Parse(req.Video)
	if err != nil {
		return nil, err
	}
	order, err := types.ParseOrder(cfg.Fetch.Order)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateAPIKey(); err != nil {
		return nil, err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}
	log = log.WithRun(runID.String())
	fmt.Fprintf(w, "Using videoId: %s\n", vid)

	rec, err := metrics.New()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warnf("Could not write metrics: %v", err)
		}
	}()

	ctx, stop := database.WithShutdownSignal(ctx, func(sig os.Signal) {
		log.Warnf("Received %s, saving checkpoint before exit", sig)
	})
	defer stop()

	backend, err := checkpoint.Open(ctx, &cfg.Checkpoint, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	defer backend.Close()
	log.Infof("Checkpoint store: %s", backend.Location())

	client, err := youtube.New(&cfg.API, log)
	if err != nil {
		return nil, err
	}
	col, err := collector.New(client, backend.Store, log, rec)
	if err != nil {
		return nil, err
	}

	var res *collector.Result
	collect := func() error {
		sink, err := output.OpenAppender(req.CSV, !cfg.Fetch.Resume)
		if err != nil {
			return err
		}
		res, err = col.Run(ctx, collector.Options{
			VideoID:   vid,
			Order:     order,
			NoReplies: cfg.Fetch.NoReplies,
			Limits: collector.Limits{
				MaxTopLevel: cfg.Fetch.MaxTopLevel,
				MaxTotal:    cfg.Fetch.MaxTotal,
			},
			CheckpointInterval: cfg.Fetch.CheckpointInterval,
			Resume:             cfg.Fetch.Resume,
			Sink:               sink,
		})
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	}

	if backend.Conn != nil && backend.Conn.Dialect == sqlutil.MySQL && !req.Force {
		name := lock.RunLockName(vid, string(order))
		err = lock.WithRunLock(ctx, backend.Conn.DB, name, collect)
		if errors.Is(err, lock.ErrLocked) {
			return nil, fmt.Errorf("a collection for %s (%s) is already running (use --force to override)", vid, order)
		}
	} else {
		if req.Force {
			log.Warn("Skipping run lock (--force flag used)")
		}
		err = collect()
	}

	if err != nil {
		switch {
		case errors.Is(err, youtube.ErrCommentsDisabled):
			fmt.Fprintln(w, "No comments found or comments disabled.")
			return &fetchOutcome{VideoID: vid}, nil
		case errors.Is(err, context.Canceled):
			printWarn(w, "Interrupted. Saved state; rerun with --resume to continue.")
			return nil, fmt.Errorf("collection interrupted: %w", err)
		}
		return nil, fmt.Errorf("collection failed: %w", err)
	}

	rows, err := output.Compact(req.CSV)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize %s: %w", req.CSV, err)
	}

	outcome := &fetchOutcome{VideoID: vid, Rows: rows, StopReason: res.StopReason}
	report(w, req.CSV, outcome, res)
	return outcome, nil
}

func report(w io.Writer, path string, o *fetchOutcome, res *collector.Result) {
	switch res.StopReason {
	case collector.StopQuota:
		printWarn(w, "Daily quota hit. Saved state; returning partial results. Resume later with --resume.")
	case collector.StopMaxTopLevel, collector.StopMaxTotal:
		printWarn(w, "Stopped at %s limit. Saved state; rerun with --resume and a higher limit to continue.", res.StopReason)
	}

	if len(o.Rows) == 0 {
		fmt.Fprintln(w, "No comments found or comments disabled.")
		return
	}

	top, replies := types.CountKinds(o.Rows)
	printOK(w, "Saved %d rows → %s (top-level: %d, replies: %d)", len(o.Rows), path, top, replies)
}
