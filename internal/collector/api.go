// Package collector implements the resumable two-level comment traversal:
// thread list pages, then each thread's reply pages, checkpointed as it goes.
package collector

import (
	"context"

	"github.com/dbsmedya/ytcomments/internal/types"
)

// Thread is one entry of a thread-list page.
type Thread struct {
	TopLevel        types.Record
	TotalReplyCount int
	// Replies holds the replies the API returned inline with the thread,
	// usually a handful of the total.
	Replies []types.Record
}

// ThreadPage is one page of the thread list.
type ThreadPage struct {
	Threads       []Thread
	NextPageToken string
}

// ReplyPage is one page of a thread's replies.
type ReplyPage struct {
	Replies       []types.Record
	NextPageToken string
}

// API is the remote comment service. Implementations report quota exhaustion
// and stale page tokens by wrapping ErrQuotaExhausted and ErrInvalidPageToken.
// An empty pageToken requests the first page.
type API interface {
	ListThreads(ctx context.Context, videoID string, order types.Order, pageToken string) (*ThreadPage, error)
	ListReplies(ctx context.Context, parentID, pageToken string) (*ReplyPage, error)
}

// RowSink receives rows in collection order before each checkpoint write,
// so a persisted checkpoint never covers rows that were not handed off.
type RowSink interface {
	WriteRows(rows []types.Record) error
}
