package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/ytcomments/internal/checkpoint"
	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/types"
	"github.com/dbsmedya/ytcomments/internal/videoid"
)

var checkpointOrder string

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or discard saved traversal state",
	Long: `Checkpoint commands work on the state saved by fetch for one video and
order. State is never removed automatically; clear it to start over.`,
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show <video>",
	Short: "Print the saved checkpoint as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCheckpoint(cmd, args[0], showCheckpoint)
	},
}

var checkpointClearCmd = &cobra.Command{
	Use:   "clear <video>",
	Short: "Delete the saved checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCheckpoint(cmd, args[0], clearCheckpoint)
	},
}

func init() {
	checkpointCmd.PersistentFlags().StringVar(&checkpointOrder, "order", "time", "Thread order the checkpoint was saved with")
	checkpointCmd.AddCommand(checkpointShowCmd, checkpointClearCmd)
	rootCmd.AddCommand(checkpointCmd)
}

type checkpointAction func(ctx context.Context, w io.Writer, store checkpoint.Store, videoID string, order types.Order) error

func withCheckpoint(cmd *cobra.Command, video string, action checkpointAction) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return runCheckpointAction(ctx, out(cmd), cfg, log, video, checkpointOrder, action)
}

func runCheckpointAction(ctx context.Context, w io.Writer, cfg *config.Config, log *logger.Logger, video, orderName string, action checkpointAction) error {
	vid, err := videoid.Parse(video)
	if err != nil {
		return err
	}
	order, err := types.ParseOrder(orderName)
	if err != nil {
		return err
	}

	backend, err := checkpoint.Open(ctx, &cfg.Checkpoint, log)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	defer backend.Close()

	return action(ctx, w, backend.Store, vid, order)
}

func showCheckpoint(ctx context.Context, w io.Writer, store checkpoint.Store, videoID string, order types.Order) error {
	state, err := store.Load(ctx, videoID, order)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if state == nil {
		fmt.Fprintf(w, "No checkpoint for %s (%s) in %s\n", videoID, order, store.Location())
		return nil
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	fmt.Fprintln(w, string(data))

	status := "thread list in progress"
	if state.InFlight() {
		status = fmt.Sprintf("replies of %s in progress", state.CurrentTopID)
	}
	fmt.Fprintf(w, "%d threads done, %s\n", state.Processed.Len(), status)
	return nil
}

func clearCheckpoint(ctx context.Context, w io.Writer, store checkpoint.Store, videoID string, order types.Order) error {
	if err := store.Clear(ctx, videoID, order); err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	printOK(w, "Cleared checkpoint for %s (%s) in %s", videoID, order, store.Location())
	return nil
}
