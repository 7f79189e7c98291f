package types

import (
	"encoding/json"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// TopLevelSet is an insertion-ordered set of top-level comment ids.
// Membership is maintained incrementally so lookups never rebuild the set.
type TopLevelSet struct {
	ids *orderedmap.OrderedMap[string, struct{}]
}

// NewTopLevelSet creates a set seeded with ids (duplicates are ignored).
func NewTopLevelSet(ids ...string) *TopLevelSet {
	s := &TopLevelSet{ids: orderedmap.NewOrderedMap[string, struct{}]()}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id. It returns false if id was already present.
func (s *TopLevelSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	s.ids.Set(id, struct{}{})
	return true
}

// Has reports whether id is in the set.
func (s *TopLevelSet) Has(id string) bool {
	if s == nil || s.ids == nil {
		return false
	}
	_, ok := s.ids.Get(id)
	return ok
}

// Len returns the number of ids. A nil set is empty.
func (s *TopLevelSet) Len() int {
	if s == nil || s.ids == nil {
		return 0
	}
	return s.ids.Len()
}

// IDs returns the ids in insertion order.
func (s *TopLevelSet) IDs() []string {
	if s == nil || s.ids == nil {
		return []string{}
	}
	out := make([]string, 0, s.ids.Len())
	for el := s.ids.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}

// MarshalJSON encodes the set as a JSON array in insertion order.
func (s *TopLevelSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes a JSON array (null is treated as empty).
func (s *TopLevelSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("processed_top_level: %w", err)
	}
	*s = *NewTopLevelSet(ids...)
	return nil
}

// TraversalState is the checkpoint of a collection run.
//
// Empty strings stand for "not set": an empty PageToken is the start of the
// thread list, an empty CurrentTopID means no reply pagination is in flight.
type TraversalState struct {
	VideoID        string
	Order          Order
	PageToken      string
	Processed      *TopLevelSet
	CurrentTopID   string
	ReplyPageToken string
}

// NewTraversalState returns a fresh state for a video and order.
func NewTraversalState(videoID string, order Order) *TraversalState {
	return &TraversalState{
		VideoID:   videoID,
		Order:     order,
		Processed: NewTopLevelSet(),
	}
}

// Matches reports whether the state belongs to the given video and order.
func (s *TraversalState) Matches(videoID string, order Order) bool {
	return s.VideoID == videoID && s.Order == order
}

// BeginThread marks topID as the thread whose replies are being paged, starting
// from the first reply page.
func (s *TraversalState) BeginThread(topID string) {
	s.CurrentTopID = topID
	s.ReplyPageToken = ""
}

// CompleteThread records topID as fully collected. If topID is the in-flight
// thread, the reply cursor is cleared in the same step.
func (s *TraversalState) CompleteThread(topID string) {
	if s.CurrentTopID == topID {
		s.CurrentTopID = ""
		s.ReplyPageToken = ""
	}
	s.Processed.Add(topID)
}

// InFlight reports whether a thread's reply pagination is unfinished.
func (s *TraversalState) InFlight() bool {
	return s.CurrentTopID != ""
}

// Clone returns a deep copy.
func (s *TraversalState) Clone() *TraversalState {
	c := *s
	c.Processed = NewTopLevelSet(s.Processed.IDs()...)
	return &c
}

// stateJSON fixes the on-disk key order and null encoding.
type stateJSON struct {
	VideoID           string       `json:"video_id"`
	Order             Order        `json:"order"`
	PageToken         *string      `json:"page_token"`
	ProcessedTopLevel *TopLevelSet `json:"processed_top_level"`
	CurrentTopID      *string      `json:"current_top_id"`
	ReplyPageToken    *string      `json:"reply_page_token"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MarshalJSON encodes the state with stable keys; unset fields become null.
func (s *TraversalState) MarshalJSON() ([]byte, error) {
	processed := s.Processed
	if processed == nil {
		processed = NewTopLevelSet()
	}
	return json.Marshal(stateJSON{
		VideoID:           s.VideoID,
		Order:             s.Order,
		PageToken:         nullable(s.PageToken),
		ProcessedTopLevel: processed,
		CurrentTopID:      nullable(s.CurrentTopID),
		ReplyPageToken:    nullable(s.ReplyPageToken),
	})
}

// UnmarshalJSON decodes a checkpoint document.
func (s *TraversalState) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.VideoID = raw.VideoID
	s.Order = raw.Order
	s.PageToken = deref(raw.PageToken)
	s.Processed = raw.ProcessedTopLevel
	if s.Processed == nil {
		s.Processed = NewTopLevelSet()
	}
	s.CurrentTopID = deref(raw.CurrentTopID)
	s.ReplyPageToken = deref(raw.ReplyPageToken)
	return nil
}
