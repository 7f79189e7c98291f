package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/output"
	"github.com/dbsmedya/ytcomments/internal/types"
)

func TestClusterCommandStructure(t *testing.T) {
	assert.Equal(t, "cluster <csv>", clusterCmd.Use)
	assert.NotEmpty(t, clusterCmd.Short)
	assert.NotNil(t, clusterCmd.RunE)
	for _, name := range []string{"csv-base", "sim", "min-samples", "embedder", "endpoint", "model"} {
		assert.NotNil(t, clusterCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestClusterFlagsApply(t *testing.T) {
	f := &clusterFlags{}
	cmd := &cobra.Command{Use: "test"}
	addClusterFlags(cmd, f)
	require.NoError(t, cmd.Flags().Parse([]string{"--sim", "0.95", "--embedder", "http", "--endpoint", "http://tei:8080"}))

	cfg := config.DefaultConfig().Cluster
	f.apply(cmd, &cfg)
	assert.Equal(t, 0.95, cfg.Sim)
	assert.Equal(t, "http", cfg.Embedder)
	assert.Equal(t, "http://tei:8080", cfg.Endpoint)
	assert.Equal(t, 3, cfg.MinSamples)
}

func TestTrimExt(t *testing.T) {
	assert.Equal(t, "out/comments", trimExt("out/comments.csv"))
	assert.Equal(t, "comments", trimExt("comments"))
}

func writeCommentsCSV(t *testing.T, path string, texts ...string) {
	t.Helper()
	rows := make([]types.Record, len(texts))
	for i, text := range texts {
		rows[i] = types.Record{
			VideoID:   testVideo,
			CommentID: "c" + string(rune('a'+i)),
			LikeCount: int64(i),
			Text:      text,
		}
	}
	require.NoError(t, output.WriteRecords(path, rows))
}

func TestClusterCSV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "comments.csv")
	writeCommentsCSV(t, in,
		"great video", "love this song", "great  video", "   ",
		"love this song", "great video", "love this song", "what year is it")

	cfg := config.DefaultConfig()
	base := filepath.Join(dir, "out")

	var buf bytes.Buffer
	require.NoError(t, clusterCSV(context.Background(), &buf, cfg, logger.NewNop(), in, base))

	clustered, err := output.ReadTable(base + "_clustered.csv")
	require.NoError(t, err)
	assert.Equal(t, append(append([]string{}, types.Columns...), "cluster_id"), clustered.Header)
	require.Len(t, clustered.Rows, 7, "blank text is dropped")
	assert.Equal(t, []string{"1", "2", "1", "2", "1", "2", "3"}, clustered.Column("cluster_id"))
	assert.Equal(t, "great video", clustered.Rows[2][7], "text is whitespace normalized")

	summary, err := output.ReadTable(base + "_clusters_summary.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"cluster_id", "size", "top_likes", "representative"}, summary.Header)
	assert.Equal(t, []string{"1", "3", "5", "great video"}, summary.Rows[0])
	assert.Equal(t, []string{"2", "3", "6", "love this song"}, summary.Rows[1])

	text := buf.String()
	assert.Contains(t, text, base+"_clustered.csv")
	assert.Contains(t, text, "Clusters: 3 total  |  ≥2 size: 2  |  singletons: 1")
	assert.Contains(t, text, "Top 5 clusters:")
}

func TestClusterCSV_Empty(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "comments.csv")
	writeCommentsCSV(t, in, " ", "")

	var buf bytes.Buffer
	require.NoError(t, clusterCSV(context.Background(), &buf, config.DefaultConfig(), logger.NewNop(), in, filepath.Join(dir, "out")))
	assert.Contains(t, buf.String(), "No comments to cluster.")
}

func TestClusterCSV_Errors(t *testing.T) {
	dir := t.TempDir()

	err := clusterCSV(context.Background(), &bytes.Buffer{}, config.DefaultConfig(), logger.NewNop(),
		filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out"))
	require.Error(t, err)

	in := filepath.Join(dir, "notext.csv")
	require.NoError(t, output.WriteTable(in, &output.Table{Header: []string{"a"}, Rows: [][]string{{"1"}}}))
	err = clusterCSV(context.Background(), &bytes.Buffer{}, config.DefaultConfig(), logger.NewNop(), in, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text")
}
