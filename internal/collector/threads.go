package collector

import (
	"context"
	"fmt"
)

// pageThreads pages the thread list from state.PageToken until the API
// reports no further page.
//
// state.PageToken always names the page being worked on; it advances only
// after every thread on the page is handled. A stop mid-page therefore
// re-reads that page on resume, and the processed set skips what was done.
func (r *run) pageThreads(ctx context.Context) error {
	seen := make(map[string]struct{})
	retried := false
	restarted := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.topLevelReached() {
			return stop(StopMaxTopLevel)
		}
		if r.totalReached() {
			return stop(StopMaxTotal)
		}

		token := r.state.PageToken
		page, err := r.c.api.ListThreads(ctx, r.opts.VideoID, r.opts.Order, token)
		switch r.classify(err) {
		case FaultNone:
		case FaultQuota:
			r.log.Warnf("Quota exhausted while listing threads, stopping")
			return stop(StopQuota)
		case FaultPagination:
			if retried || token == "" {
				return fmt.Errorf("failed to list threads: %w", err)
			}
			retried = true
			r.log.Warnf("Thread page token rejected (%v), restarting thread list", err)
			r.state.PageToken = ""
			clear(seen)
			continue
		default:
			return fmt.Errorf("failed to list threads: %w", err)
		}

		r.pages++
		r.c.metrics.Page("threads")

		for _, th := range page.Threads {
			id := th.TopLevel.CommentID
			if r.state.Processed.Has(id) || id == r.state.CurrentTopID {
				continue
			}
			if r.topLevelReached() {
				return stop(StopMaxTopLevel)
			}
			if r.totalReached() {
				return stop(StopMaxTotal)
			}
			if err := r.emitThread(ctx, th); err != nil {
				return err
			}
		}

		next := page.NextPageToken
		if next == "" {
			return nil
		}
		if _, dup := seen[next]; dup {
			if restarted {
				r.log.Warnf("Page token %q repeated again after restart, ending thread list", next)
				return nil
			}
			restarted = true
			r.log.Warnf("Page token %q already seen, restarting thread list from the beginning", next)
			clear(seen)
			next = ""
		} else {
			seen[next] = struct{}{}
		}

		r.state.PageToken = next
		if err := r.maybePersist(ctx); err != nil {
			return err
		}
	}
}

// emitThread adds the top-level row with its inline replies as one unit, then
// pages any remaining replies. A thread with pending replies is marked in
// flight before the reply pager can stop the run, so a resume finishes it
// first.
func (r *run) emitThread(ctx context.Context, th Thread) error {
	id := th.TopLevel.CommentID
	top := th.TopLevel
	top.ParentID = ""
	r.add(top)

	hasReplies := !r.opts.NoReplies && (th.TotalReplyCount > 0 || len(th.Replies) > 0)
	if !hasReplies {
		r.state.CompleteThread(id)
		return r.maybePersist(ctx)
	}

	r.state.BeginThread(id)
	for _, rec := range th.Replies {
		if rec.ParentID == "" {
			rec.ParentID = id
		}
		r.add(rec)
	}

	if th.TotalReplyCount <= len(th.Replies) {
		r.state.CompleteThread(id)
		return r.maybePersist(ctx)
	}

	if err := r.persist(ctx); err != nil {
		return err
	}
	return r.pageReplies(ctx, id)
}
