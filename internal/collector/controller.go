package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/ytcomments/internal/checkpoint"
	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/metrics"
	"github.com/dbsmedya/ytcomments/internal/types"
)

// DefaultCheckpointInterval is the row interval between checkpoint writes.
const DefaultCheckpointInterval = 500

// StopReason says why a run ended without error.
type StopReason string

const (
	StopComplete    StopReason = "complete"
	StopMaxTopLevel StopReason = "max_top_level"
	StopMaxTotal    StopReason = "max_total"
	StopQuota       StopReason = "quota"
)

// Partial reports whether more comments remain to be collected.
func (s StopReason) Partial() bool {
	return s != StopComplete
}

// Limits are soft ceilings on a run. Zero means unlimited.
type Limits struct {
	MaxTopLevel int
	MaxTotal    int
}

// Options configure one collection run.
type Options struct {
	VideoID            string
	Order              types.Order
	NoReplies          bool
	Limits             Limits
	CheckpointInterval int
	Resume             bool
	Sink               RowSink
}

// Result is the outcome of a run. Rows are unique by comment_id.
type Result struct {
	Rows       []types.Record
	State      *types.TraversalState
	StopReason StopReason
	Resumed    bool
	TopLevel   int
	Replies    int
	Pages      int
	Duration   time.Duration
}

// Collector drives the traversal against an API and a checkpoint store.
type Collector struct {
	api     API
	store   checkpoint.Store
	logger  *logger.Logger
	metrics *metrics.Recorder
}

// New creates a Collector. The metrics recorder may be nil.
func New(api API, store checkpoint.Store, log *logger.Logger, rec *metrics.Recorder) (*Collector, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is nil")
	}
	if store == nil {
		store = checkpoint.NopStore{}
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Collector{api: api, store: store, logger: log, metrics: rec}, nil
}

// stopSignal unwinds the pagers on a clean early stop.
type stopSignal struct {
	reason StopReason
}

func (s *stopSignal) Error() string {
	return "run stopped: " + string(s.reason)
}

func stop(reason StopReason) error {
	return &stopSignal{reason: reason}
}

// run is the state owned by a single Run call.
type run struct {
	c        *Collector
	opts     Options
	log      *logger.Logger
	state    *types.TraversalState
	rows     *orderedmap.OrderedMap[string, types.Record]
	pending  []types.Record
	topLevel int
	replies  int
	pages    int
	// saved is the row count at the last checkpoint write.
	saved int
}

// Run collects comments for opts.VideoID.
//
// In-flight reply pagination from a resumed checkpoint is finished before the
// thread list advances. Reaching a limit or exhausting the quota ends the run
// without error; StopReason tells which. On every exit, including errors, the
// state is persisted and the rows gathered so far are returned.
func (c *Collector) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if opts.VideoID == "" {
		return nil, fmt.Errorf("video id is required")
	}
	if opts.Order == "" {
		opts.Order = types.OrderTime
	}
	if opts.CheckpointInterval <= 0 {
		opts.CheckpointInterval = DefaultCheckpointInterval
	}

	r := &run{
		c:     c,
		opts:  opts,
		log:   c.logger.WithVideo(opts.VideoID, string(opts.Order)),
		state: types.NewTraversalState(opts.VideoID, opts.Order),
		rows:  orderedmap.NewOrderedMap[string, types.Record](),
	}

	resumed, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	err = r.collect(ctx)

	reason := StopComplete
	var sig *stopSignal
	if errors.As(err, &sig) {
		reason = sig.reason
		err = nil
	}

	// Exit path: persist even when ctx is already canceled.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if perr := r.persist(saveCtx); perr != nil {
		if err == nil {
			err = perr
		} else {
			r.log.Errorf("Checkpoint write after failure also failed: %v", perr)
		}
	}

	res := &Result{
		Rows:       Dedup(values(r.rows)),
		State:      r.state.Clone(),
		StopReason: reason,
		Resumed:    resumed,
		TopLevel:   r.topLevel,
		Replies:    r.replies,
		Pages:      r.pages,
		Duration:   time.Since(start),
	}

	if err != nil {
		c.metrics.RunFinished("error", res.Duration)
		return res, err
	}

	c.metrics.RunFinished(string(reason), res.Duration)
	r.log.Infof("Run finished: %s (%d rows, %d pages, %s)", reason, len(res.Rows), res.Pages, res.Duration.Round(time.Millisecond))
	return res, nil
}

// load replaces the fresh state with a stored one when resuming. A corrupt
// checkpoint is logged and ignored.
func (r *run) load(ctx context.Context) (bool, error) {
	if !r.opts.Resume {
		return false, nil
	}

	prior, err := r.c.store.Load(ctx, r.opts.VideoID, r.opts.Order)
	switch {
	case errors.Is(err, checkpoint.ErrCorrupt):
		r.log.Warnf("Could not read checkpoint (%v), starting fresh", err)
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to load checkpoint: %w", err)
	case prior == nil:
		r.log.Infof("No checkpoint in %s for this video and order, starting fresh", r.c.store.Location())
		return false, nil
	}

	if prior.Processed == nil {
		prior.Processed = types.NewTopLevelSet()
	}
	r.state = prior
	r.log.Infof("Resuming from %s (%d threads done, in-flight thread %q)",
		r.c.store.Location(), prior.Processed.Len(), prior.CurrentTopID)
	return true, nil
}

func (r *run) collect(ctx context.Context) error {
	if r.state.InFlight() && !r.opts.NoReplies {
		if err := r.pageReplies(ctx, r.state.CurrentTopID); err != nil {
			return err
		}
	}
	return r.pageThreads(ctx)
}

// add appends a row unless its comment_id was already collected this run.
func (r *run) add(rec types.Record) bool {
	if _, ok := r.rows.Get(rec.CommentID); ok {
		return false
	}
	r.rows.Set(rec.CommentID, rec)
	if r.opts.Sink != nil {
		r.pending = append(r.pending, rec)
	}
	if rec.IsTopLevel() {
		r.topLevel++
		r.c.metrics.Rows("top_level", 1)
	} else {
		r.replies++
		r.c.metrics.Rows("reply", 1)
	}
	return true
}

func (r *run) total() int {
	return r.rows.Len()
}

func (r *run) totalReached() bool {
	return r.opts.Limits.MaxTotal > 0 && r.total() >= r.opts.Limits.MaxTotal
}

func (r *run) topLevelReached() bool {
	return r.opts.Limits.MaxTopLevel > 0 && r.topLevel >= r.opts.Limits.MaxTopLevel
}

// persist hands pending rows to the sink, then writes the checkpoint.
func (r *run) persist(ctx context.Context) error {
	if r.opts.Sink != nil && len(r.pending) > 0 {
		if err := r.opts.Sink.WriteRows(r.pending); err != nil {
			return fmt.Errorf("failed to write rows: %w", err)
		}
		r.pending = r.pending[:0]
	}
	if err := r.c.store.Save(ctx, r.state); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	r.saved = r.total()
	r.c.metrics.CheckpointSaved()
	return nil
}

// maybePersist persists when the row count crossed an interval boundary
// since the last write.
func (r *run) maybePersist(ctx context.Context) error {
	interval := r.opts.CheckpointInterval
	if r.total()/interval > r.saved/interval {
		r.log.Debugf("Checkpoint at %d rows", r.total())
		return r.persist(ctx)
	}
	return nil
}

// classify records a fault metric and returns the fault kind.
func (r *run) classify(err error) FaultKind {
	kind := Classify(err)
	if kind != FaultNone {
		r.c.metrics.Fault(kind.String())
	}
	return kind
}
