// Package cluster groups comment texts by semantic similarity. Texts are
// embedded into unit vectors and clustered with DBSCAN under cosine
// distance; noise points become singleton clusters.
package cluster

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/output"
	"github.com/dbsmedya/ytcomments/internal/types"
)

// Defaults used when Options leave a field at zero.
const (
	DefaultSim        = 0.88
	DefaultMinSamples = 3
)

// Item is one row to cluster.
type Item struct {
	Text      string
	LikeCount int64
}

// Options control DBSCAN.
type Options struct {
	Sim        float64 // cosine similarity threshold, eps = 1 - Sim
	MinSamples int
}

// Result holds one cluster id per input item plus per-cluster summaries
// sorted by size.
type Result struct {
	IDs        []int
	Summaries  []Summary
	Total      int
	Multi      int
	Singletons int
	Duration   time.Duration
}

// Normalize collapses runs of whitespace into single spaces and trims the
// ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Prepare normalizes a loaded CSV for clustering: text is whitespace
// normalized, rows with empty text are dropped and like_count, when
// present, is rewritten as a non-negative integer. The returned table keeps
// every original column for the clustered output.
func Prepare(t *output.Table) (*output.Table, []Item, error) {
	textIdx := t.Index("text")
	if textIdx < 0 {
		return nil, nil, fmt.Errorf("input must contain a 'text' column")
	}
	likeIdx := t.Index("like_count")

	out := &output.Table{Header: slices.Clone(t.Header)}
	var items []Item
	for _, row := range t.Rows {
		text := Normalize(row[textIdx])
		if text == "" {
			continue
		}
		row = slices.Clone(row)
		row[textIdx] = text

		var likes int64
		if likeIdx >= 0 {
			likes = types.ToLikeCount(row[likeIdx])
			row[likeIdx] = strconv.FormatInt(likes, 10)
		}

		out.Rows = append(out.Rows, row)
		items = append(items, Item{Text: text, LikeCount: likes})
	}
	return out, items, nil
}

// Clusterer embeds and clusters items.
type Clusterer struct {
	embedder Embedder
	logger   *logger.Logger
}

// New creates a Clusterer.
func New(embedder Embedder, log *logger.Logger) *Clusterer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Clusterer{embedder: embedder, logger: log}
}

// Run clusters items. An empty input yields an empty result.
func (c *Clusterer) Run(ctx context.Context, items []Item, opts Options) (*Result, error) {
	start := time.Now()
	if opts.Sim <= 0 {
		opts.Sim = DefaultSim
	}
	if opts.MinSamples <= 0 {
		opts.MinSamples = DefaultMinSamples
	}
	if opts.Sim > 1 {
		return nil, fmt.Errorf("sim must be in (0, 1], got %v", opts.Sim)
	}

	if len(items) == 0 {
		return &Result{}, nil
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}

	c.logger.Infof("Encoding %d comments", len(texts))
	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed comments: %w", err)
	}
	if len(vectors) != len(items) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(items))
	}

	c.logger.Infof("Clustering with DBSCAN (sim>=%.2f, min_samples=%d)", opts.Sim, opts.MinSamples)
	labels := DBSCAN(vectors, 1-opts.Sim, opts.MinSamples)
	ids := Relabel(labels)

	res := &Result{
		IDs:       ids,
		Summaries: Summarize(items, ids),
		Duration:  time.Since(start),
	}
	res.Total = len(res.Summaries)
	for _, s := range res.Summaries {
		if s.Size == 1 {
			res.Singletons++
		} else {
			res.Multi++
		}
	}
	c.logger.Infof("Clusters: %d total, %d with two or more members, %d singletons", res.Total, res.Multi, res.Singletons)
	return res, nil
}

// Annotate returns a copy of t with a trailing cluster_id column. ids must
// have one entry per row.
func Annotate(t *output.Table, ids []int) (*output.Table, error) {
	if len(ids) != len(t.Rows) {
		return nil, fmt.Errorf("have %d cluster ids for %d rows", len(ids), len(t.Rows))
	}
	out := &output.Table{
		Header: append(slices.Clone(t.Header), "cluster_id"),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append(slices.Clone(row), strconv.Itoa(ids[i]))
	}
	return out, nil
}
