package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dbsmedya/ytcomments/internal/config"
)

const testVideo = "dQw4w9WgXcQ"

// fakeYouTube serves a two-page thread list for testVideo:
//
//	page "":   t1 (no replies), t2 (2 replies, 1 inline), next "P2"
//	page "P2": t3 (no replies)
type fakeYouTube struct {
	mu        sync.Mutex
	calls     []string
	quotaOnP2 atomic.Bool
	disabled  bool
}

func commentJSON(id, parent, text string, likes int) string {
	return fmt.Sprintf(`{"id": %q, "snippet": {"videoId": %q, "parentId": %q, "authorDisplayName": "user-%s",
		"textOriginal": %q, "likeCount": %d, "publishedAt": "2024-03-01T00:00:00Z"}}`,
		id, testVideo, parent, id, text, likes)
}

func threadJSON(id string, total int, inline ...string) string {
	return fmt.Sprintf(`{"id": %q, "snippet": {"videoId": %q, "totalReplyCount": %d, "topLevelComment": %s},
		"replies": {"comments": [%s]}}`,
		id, testVideo, total, commentJSON(id, "", "comment "+id, 1), strings.Join(inline, ","))
}

func (f *fakeYouTube) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeYouTube) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func apiError(status int, reason string) string {
	return fmt.Sprintf(`{"error": {"code": %d, "message": "%s", "errors": [{"reason": %q}]}}`, status, reason, reason)
}

func (f *fakeYouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch r.URL.Path {
	case "/commentThreads":
		token := q.Get("pageToken")
		f.record("threads:" + token)
		switch {
		case f.disabled:
			writeBody(w, http.StatusForbidden, apiError(http.StatusForbidden, "commentsDisabled"))
		case token == "":
			writeBody(w, http.StatusOK, fmt.Sprintf(`{"nextPageToken": "P2", "items": [%s, %s]}`,
				threadJSON("t1", 0),
				threadJSON("t2", 2, commentJSON("t2.r1", "t2", "reply one", 0))))
		case token == "P2" && f.quotaOnP2.Load():
			writeBody(w, http.StatusForbidden, apiError(http.StatusForbidden, "quotaExceeded"))
		case token == "P2":
			writeBody(w, http.StatusOK, fmt.Sprintf(`{"items": [%s]}`, threadJSON("t3", 0)))
		default:
			writeBody(w, http.StatusBadRequest, apiError(http.StatusBadRequest, "invalidPageToken"))
		}
	case "/comments":
		f.record("replies:" + q.Get("parentId"))
		writeBody(w, http.StatusOK, fmt.Sprintf(`{"items": [%s, %s]}`,
			commentJSON("t2.r1", "t2", "reply one", 0),
			commentJSON("t2.r2", "t2", "reply two", 5)))
	default:
		http.NotFound(w, r)
	}
}

func newFakeYouTube(t *testing.T) (*fakeYouTube, *httptest.Server) {
	t.Helper()
	f := &fakeYouTube{}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

// testConfig returns a valid config pointing at baseURL with its checkpoint
// file under dir.
func testConfig(dir, baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.API.Key = "test-key"
	cfg.API.BaseURL = baseURL
	cfg.API.RequestsPerSecond = 0
	cfg.API.MaxRetries = 0
	cfg.Checkpoint.Path = filepath.Join(dir, "state.json")
	cfg.Logging.Level = "error"
	return cfg
}
