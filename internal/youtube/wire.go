package youtube

import (
	"encoding/json"

	"github.com/dbsmedya/ytcomments/internal/collector"
	"github.com/dbsmedya/ytcomments/internal/types"
)

// Response shapes of commentThreads.list and comments.list, reduced to the
// fields that end up in a Record.

type commentThreadListResponse struct {
	Items         []commentThread `json:"items"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

type commentThread struct {
	ID      string `json:"id"`
	Snippet struct {
		VideoID         string  `json:"videoId"`
		TopLevelComment comment `json:"topLevelComment"`
		TotalReplyCount int     `json:"totalReplyCount"`
	} `json:"snippet"`
	Replies struct {
		Comments []comment `json:"comments"`
	} `json:"replies"`
}

type commentListResponse struct {
	Items         []comment `json:"items"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}

type comment struct {
	ID      string         `json:"id"`
	Snippet commentSnippet `json:"snippet"`
}

type commentSnippet struct {
	VideoID           string      `json:"videoId"`
	ParentID          string      `json:"parentId"`
	AuthorDisplayName string      `json:"authorDisplayName"`
	TextOriginal      string      `json:"textOriginal"`
	TextDisplay       string      `json:"textDisplay"`
	LikeCount         json.Number `json:"likeCount"`
	PublishedAt       string      `json:"publishedAt"`
	UpdatedAt         string      `json:"updatedAt"`
}

// toRecord converts a comment. parentID is empty for top-level comments.
func (c comment) toRecord(videoID, parentID string) types.Record {
	s := c.Snippet
	text := s.TextOriginal
	if text == "" {
		text = s.TextDisplay
	}
	updated := s.UpdatedAt
	if updated == "" {
		updated = s.PublishedAt
	}
	if s.VideoID != "" {
		videoID = s.VideoID
	}
	return types.Record{
		VideoID:     videoID,
		CommentID:   c.ID,
		ParentID:    parentID,
		Author:      s.AuthorDisplayName,
		LikeCount:   types.ToLikeCount(s.LikeCount.String()),
		PublishedAt: s.PublishedAt,
		UpdatedAt:   updated,
		Text:        text,
	}
}

func (t commentThread) toThread(videoID string) collector.Thread {
	top := t.Snippet.TopLevelComment
	if top.ID == "" {
		top.ID = t.ID
	}
	th := collector.Thread{
		TopLevel:        top.toRecord(videoID, ""),
		TotalReplyCount: t.Snippet.TotalReplyCount,
	}
	for _, r := range t.Replies.Comments {
		th.Replies = append(th.Replies, r.toRecord(videoID, top.ID))
	}
	return th
}

// errorEnvelope is the Google API error body.
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}
