package collector

import (
	"context"
	"fmt"
)

// pageReplies pages topID's replies from state.ReplyPageToken until the API
// reports no further page, then completes the thread. The thread must already
// be the in-flight one.
//
// max_total is checked before each fetch, never inside a page: a fetched page
// is always consumed whole, so a stop leaves the token at the next unread
// page and the total may overshoot by up to one page.
func (r *run) pageReplies(ctx context.Context, topID string) error {
	log := r.log.WithThread(topID)
	retried := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.totalReached() {
			return stop(StopMaxTotal)
		}

		token := r.state.ReplyPageToken
		page, err := r.c.api.ListReplies(ctx, topID, token)
		switch r.classify(err) {
		case FaultNone:
		case FaultQuota:
			log.Warnf("Quota exhausted while paging replies, stopping")
			return stop(StopQuota)
		case FaultPagination:
			if retried || token == "" {
				return fmt.Errorf("failed to list replies of %s: %w", topID, err)
			}
			retried = true
			log.Warnf("Reply page token rejected (%v), restarting this thread's replies", err)
			r.state.ReplyPageToken = ""
			continue
		default:
			return fmt.Errorf("failed to list replies of %s: %w", topID, err)
		}

		r.pages++
		r.c.metrics.Page("replies")

		for _, rec := range page.Replies {
			if rec.ParentID == "" {
				rec.ParentID = topID
			}
			if rec.VideoID == "" {
				rec.VideoID = r.opts.VideoID
			}
			r.add(rec)
		}

		if page.NextPageToken == "" {
			r.state.CompleteThread(topID)
			log.Debugf("Thread complete")
			return r.persist(ctx)
		}

		r.state.ReplyPageToken = page.NextPageToken
		if err := r.maybePersist(ctx); err != nil {
			return err
		}
	}
}
