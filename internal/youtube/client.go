// Package youtube is a YouTube Data API v3 client for comment threads and
// replies. It implements collector.API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/dbsmedya/ytcomments/internal/collector"
	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/types"
)

// Client calls commentThreads.list and comments.list. Requests are paced by
// a token bucket so a long run spreads its quota use.
type Client struct {
	http     *resty.Client
	limiter  *rate.Limiter
	key      string
	pageSize int
	logger   *logger.Logger
}

var _ collector.API = (*Client)(nil)

// New creates a Client from the api config section.
func New(cfg *config.APIConfig, log *logger.Logger) (*Client, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "ytcomments").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(retryable)

	return &Client{
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, burst),
		key:      cfg.Key,
		pageSize: pageSize,
		logger:   log,
	}, nil
}

// retryable retries transport errors and server-side failures. Quota and
// token errors are 4xx and go straight back to the caller.
func retryable(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return r.StatusCode() >= http.StatusInternalServerError
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params["key"] = c.key
	params["maxResults"] = strconv.Itoa(c.pageSize)
	params["textFormat"] = "plainText"

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		SetError(&errorEnvelope{}).
		Get(path)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}

	if resp.IsError() {
		env, _ := resp.Error().(*errorEnvelope)
		return newAPIError(resp.StatusCode(), env)
	}

	c.logger.Debugf("GET %s page=%q -> %d in %s", path, params["pageToken"], resp.StatusCode(), resp.Time())
	return nil
}

// ListThreads fetches one page of comment threads with inline replies.
func (c *Client) ListThreads(ctx context.Context, videoID string, order types.Order, pageToken string) (*collector.ThreadPage, error) {
	params := map[string]string{
		"part":    "snippet,replies",
		"videoId": videoID,
		"order":   string(order),
	}
	if pageToken != "" {
		params["pageToken"] = pageToken
	}

	var out commentThreadListResponse
	if err := c.get(ctx, "/commentThreads", params, &out); err != nil {
		return nil, err
	}

	page := &collector.ThreadPage{NextPageToken: out.NextPageToken}
	for _, item := range out.Items {
		page.Threads = append(page.Threads, item.toThread(videoID))
	}
	return page, nil
}

// ListReplies fetches one page of replies to parentID.
func (c *Client) ListReplies(ctx context.Context, parentID, pageToken string) (*collector.ReplyPage, error) {
	params := map[string]string{
		"part":     "snippet",
		"parentId": parentID,
	}
	if pageToken != "" {
		params["pageToken"] = pageToken
	}

	var out commentListResponse
	if err := c.get(ctx, "/comments", params, &out); err != nil {
		return nil, err
	}

	page := &collector.ReplyPage{NextPageToken: out.NextPageToken}
	for _, item := range out.Items {
		page.Replies = append(page.Replies, item.toRecord("", parentID))
	}
	return page, nil
}
