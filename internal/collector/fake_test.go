package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dbsmedya/ytcomments/internal/types"
)

const testVideo = "dQw4w9WgXcQ"

// threadSpec describes one fake thread: its id, total replies, and how many
// of them come inline with the thread page.
type threadSpec struct {
	id      string
	replies int
	inline  int
}

// fakeAPI serves fixed pages keyed by token and records every call as
// "threads:<token>" or "replies:<parent>:<token>".
type fakeAPI struct {
	threadPages   map[string]*ThreadPage
	replyPages    map[string]map[string]*ReplyPage
	replyPageSize int
	failures      map[string][]error
	failAt        int // 1-based call index answered with a quota error
	calls         []string
}

func pageToken(i int) string {
	if i == 0 {
		return ""
	}
	return fmt.Sprintf("page-%d", i+1)
}

func record(id, parent string) types.Record {
	return types.Record{
		VideoID:     testVideo,
		CommentID:   id,
		ParentID:    parent,
		Author:      "author-" + id,
		LikeCount:   int64(len(id)),
		PublishedAt: "2024-01-01T00:00:00Z",
		UpdatedAt:   "2024-01-01T00:00:00Z",
		Text:        "text " + id,
	}
}

func newFakeAPI(pages [][]threadSpec) *fakeAPI {
	return newFakeAPIWithReplyPageSize(pages, 100)
}

func newFakeAPIWithReplyPageSize(pages [][]threadSpec, replyPageSize int) *fakeAPI {
	f := &fakeAPI{
		threadPages:   make(map[string]*ThreadPage),
		replyPages:    make(map[string]map[string]*ReplyPage),
		replyPageSize: replyPageSize,
		failures:      make(map[string][]error),
	}
	for i, threads := range pages {
		p := &ThreadPage{}
		if i+1 < len(pages) {
			p.NextPageToken = pageToken(i + 1)
		}
		for _, ts := range threads {
			replies := make([]types.Record, ts.replies)
			for j := range replies {
				replies[j] = record(fmt.Sprintf("%s.r%03d", ts.id, j), ts.id)
			}
			f.addReplies(ts.id, replies)
			p.Threads = append(p.Threads, Thread{
				TopLevel:        record(ts.id, ""),
				TotalReplyCount: ts.replies,
				Replies:         replies[:ts.inline],
			})
		}
		f.threadPages[pageToken(i)] = p
	}
	return f
}

func (f *fakeAPI) addReplies(parent string, replies []types.Record) {
	pages := make(map[string]*ReplyPage)
	n := (len(replies) + f.replyPageSize - 1) / f.replyPageSize
	if n == 0 {
		n = 1
	}
	tok := func(i int) string {
		if i == 0 {
			return ""
		}
		return fmt.Sprintf("%s-p%d", parent, i+1)
	}
	for i := 0; i < n; i++ {
		end := min((i+1)*f.replyPageSize, len(replies))
		p := &ReplyPage{Replies: replies[i*f.replyPageSize : end]}
		if i+1 < n {
			p.NextPageToken = tok(i + 1)
		}
		pages[tok(i)] = p
	}
	f.replyPages[parent] = pages
}

func (f *fakeAPI) fail(key string, errs ...error) {
	f.failures[key] = append(f.failures[key], errs...)
}

func (f *fakeAPI) call(key string) error {
	f.calls = append(f.calls, key)
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return fmt.Errorf("youtube: %w", ErrQuotaExhausted)
	}
	if q := f.failures[key]; len(q) > 0 {
		f.failures[key] = q[1:]
		return q[0]
	}
	return nil
}

func (f *fakeAPI) ListThreads(_ context.Context, _ string, _ types.Order, pageToken string) (*ThreadPage, error) {
	if err := f.call("threads:" + pageToken); err != nil {
		return nil, err
	}
	p, ok := f.threadPages[pageToken]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageToken, pageToken)
	}
	return p, nil
}

func (f *fakeAPI) ListReplies(_ context.Context, parentID, pageToken string) (*ReplyPage, error) {
	if err := f.call("replies:" + parentID + ":" + pageToken); err != nil {
		return nil, err
	}
	p, ok := f.replyPages[parentID][pageToken]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageToken, pageToken)
	}
	return p, nil
}

// memStore is an in-memory checkpoint store that round-trips through JSON.
type memStore struct {
	data    map[string][]byte
	saves   int
	loadErr error
	onSave  func(*types.TraversalState)
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func memKey(videoID string, order types.Order) string {
	return videoID + "/" + string(order)
}

func (m *memStore) Load(_ context.Context, videoID string, order types.Order) (*types.TraversalState, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	raw, ok := m.data[memKey(videoID, order)]
	if !ok {
		return nil, nil
	}
	var st types.TraversalState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (m *memStore) Save(_ context.Context, st *types.TraversalState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	m.data[memKey(st.VideoID, st.Order)] = raw
	m.saves++
	if m.onSave != nil {
		m.onSave(st)
	}
	return nil
}

func (m *memStore) Clear(_ context.Context, videoID string, order types.Order) error {
	delete(m.data, memKey(videoID, order))
	return nil
}

func (m *memStore) Location() string { return "memory" }

func (m *memStore) state(t interface{ Fatalf(string, ...any) }) *types.TraversalState {
	st, err := m.Load(context.Background(), testVideo, types.OrderTime)
	if err != nil || st == nil {
		t.Fatalf("no stored state: %v", err)
	}
	return st
}

// sliceSink collects rows handed to it.
type sliceSink struct {
	rows []types.Record
}

func (s *sliceSink) WriteRows(rows []types.Record) error {
	s.rows = append(s.rows, rows...)
	return nil
}

func ids(rows []types.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.CommentID
	}
	return out
}

func sortedIDs(rows []types.Record) []string {
	out := ids(rows)
	sort.Strings(out)
	return out
}

func countCalls(calls []string, key string) int {
	n := 0
	for _, c := range calls {
		if c == key {
			n++
		}
	}
	return n
}
