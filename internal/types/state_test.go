package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopLevelSet(t *testing.T) {
	s := NewTopLevelSet("b", "a", "b")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))

	assert.True(t, s.Add("c"))
	assert.False(t, s.Add("a"))
	assert.Equal(t, []string{"b", "a", "c"}, s.IDs())
}

func TestTraversalState_CompleteThread(t *testing.T) {
	s := NewTraversalState("dQw4w9WgXcQ", OrderTime)
	s.BeginThread("t1")
	s.ReplyPageToken = "r2"
	assert.True(t, s.InFlight())

	s.CompleteThread("t1")
	assert.False(t, s.InFlight())
	assert.Empty(t, s.ReplyPageToken)
	assert.True(t, s.Processed.Has("t1"))
}

func TestTraversalState_CompleteOtherThreadKeepsCursor(t *testing.T) {
	s := NewTraversalState("dQw4w9WgXcQ", OrderTime)
	s.BeginThread("t1")
	s.ReplyPageToken = "r2"

	s.CompleteThread("t0")
	assert.Equal(t, "t1", s.CurrentTopID)
	assert.Equal(t, "r2", s.ReplyPageToken)
	assert.True(t, s.Processed.Has("t0"))
}

func TestTraversalState_JSONKeyOrderAndNulls(t *testing.T) {
	s := NewTraversalState("dQw4w9WgXcQ", OrderRelevance)
	s.Processed.Add("t2")
	s.Processed.Add("t1")

	data, err := json.Marshal(s)
	require.NoError(t, err)

	expected := `{"video_id":"dQw4w9WgXcQ","order":"relevance","page_token":null,` +
		`"processed_top_level":["t2","t1"],"current_top_id":null,"reply_page_token":null}`
	assert.Equal(t, expected, string(data))
}

func TestTraversalState_JSONRoundTrip(t *testing.T) {
	s := NewTraversalState("dQw4w9WgXcQ", OrderTime)
	s.PageToken = "p3"
	s.Processed.Add("t1")
	s.BeginThread("t2")
	s.ReplyPageToken = "r5"

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got TraversalState
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "p3", got.PageToken)
	assert.Equal(t, "t2", got.CurrentTopID)
	assert.Equal(t, "r5", got.ReplyPageToken)
	assert.Equal(t, []string{"t1"}, got.Processed.IDs())
	assert.True(t, got.Matches("dQw4w9WgXcQ", OrderTime))
	assert.False(t, got.Matches("dQw4w9WgXcQ", OrderRelevance))
}

func TestTraversalState_UnmarshalNullProcessed(t *testing.T) {
	doc := `{"video_id":"x","order":"time","page_token":null,"processed_top_level":null}`
	var got TraversalState
	require.NoError(t, json.NewDecoder(strings.NewReader(doc)).Decode(&got))
	require.NotNil(t, got.Processed)
	assert.Equal(t, 0, got.Processed.Len())
}

func TestTraversalState_Clone(t *testing.T) {
	s := NewTraversalState("x", OrderTime)
	s.Processed.Add("t1")
	c := s.Clone()
	c.Processed.Add("t2")
	assert.Equal(t, 1, s.Processed.Len())
	assert.Equal(t, 2, c.Processed.Len())
}
