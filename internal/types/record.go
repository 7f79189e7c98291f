// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import "fmt"

// Order is the thread-list traversal order requested from the API.
type Order string

const (
	// OrderTime lists threads newest first (chronological).
	OrderTime Order = "time"
	// OrderRelevance lists threads in the API's relevance ranking.
	OrderRelevance Order = "relevance"
)

// ParseOrder accepts "time", "chronological" or "relevance".
func ParseOrder(s string) (Order, error) {
	switch s {
	case "time", "chronological", "":
		return OrderTime, nil
	case "relevance":
		return OrderRelevance, nil
	default:
		return "", fmt.Errorf("invalid order %q (must be 'time' or 'relevance')", s)
	}
}

// Record is one comment row. An empty ParentID marks a top-level comment.
type Record struct {
	VideoID     string `json:"video_id"`
	CommentID   string `json:"comment_id"`
	ParentID    string `json:"parent_id"`
	Author      string `json:"author"`
	LikeCount   int64  `json:"like_count"`
	PublishedAt string `json:"published_at"`
	UpdatedAt   string `json:"updated_at"`
	Text        string `json:"text"`
}

// IsTopLevel reports whether the record has no parent.
func (r Record) IsTopLevel() bool {
	return r.ParentID == ""
}

// Columns is the fixed column order of the tabular output.
var Columns = []string{
	"video_id",
	"comment_id",
	"parent_id",
	"author",
	"like_count",
	"published_at",
	"updated_at",
	"text",
}

// CountKinds returns how many records are top-level comments and how many are replies.
func CountKinds(rows []Record) (topLevel, replies int) {
	for _, r := range rows {
		if r.IsTopLevel() {
			topLevel++
		} else {
			replies++
		}
	}
	return topLevel, replies
}
