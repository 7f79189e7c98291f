package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/ytcomments/internal/checkpoint"
	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/types"
)

func TestCheckpointCommandStructure(t *testing.T) {
	assert.Equal(t, "checkpoint", checkpointCmd.Use)
	names := []string{}
	for _, c := range checkpointCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"show", "clear"}, names)
	assert.Equal(t, "time", checkpointCmd.PersistentFlags().Lookup("order").DefValue)
}

func TestCheckpointShowAndClear(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir, "http://unused")
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, runCheckpointAction(ctx, &buf, cfg, logger.NewNop(), testVideo, "time", showCheckpoint))
	assert.Contains(t, buf.String(), "No checkpoint for "+testVideo+" (time)")

	state := types.NewTraversalState(testVideo, types.OrderTime)
	state.PageToken = "P2"
	state.CompleteThread("t1")
	state.BeginThread("t2")
	require.NoError(t, checkpoint.NewFileStore(cfg.Checkpoint.Path, logger.NewNop()).Save(ctx, state))

	buf.Reset()
	require.NoError(t, runCheckpointAction(ctx, &buf, cfg, logger.NewNop(), "https://www.youtube.com/watch?v="+testVideo, "time", showCheckpoint))
	text := buf.String()
	assert.Contains(t, text, `"video_id": "`+testVideo+`"`)
	assert.Contains(t, text, `"page_token": "P2"`)
	assert.Contains(t, text, "1 threads done, replies of t2 in progress")

	buf.Reset()
	require.NoError(t, runCheckpointAction(ctx, &buf, cfg, logger.NewNop(), testVideo, "relevance", showCheckpoint))
	assert.Contains(t, buf.String(), "No checkpoint", "order must match")

	buf.Reset()
	require.NoError(t, runCheckpointAction(ctx, &buf, cfg, logger.NewNop(), testVideo, "time", clearCheckpoint))
	assert.Contains(t, buf.String(), "Cleared checkpoint")

	buf.Reset()
	require.NoError(t, runCheckpointAction(ctx, &buf, cfg, logger.NewNop(), testVideo, "time", showCheckpoint))
	assert.Contains(t, buf.String(), "No checkpoint")
}

func TestCheckpointAction_BadInput(t *testing.T) {
	cfg := testConfig(t.TempDir(), "http://unused")

	err := runCheckpointAction(context.Background(), &bytes.Buffer{}, cfg, logger.NewNop(), "nope", "time", showCheckpoint)
	require.Error(t, err)

	err = runCheckpointAction(context.Background(), &bytes.Buffer{}, cfg, logger.NewNop(), testVideo, "newest", showCheckpoint)
	require.Error(t, err)
}
