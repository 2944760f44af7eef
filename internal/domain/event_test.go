package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEvent_FrameShape(t *testing.T) {
	postID := uuid.New()
	raw, err := EncodeEvent(NewCommunityPost{
		PostID:     postID,
		AuthorName: "anna",
		Content:    "fresh bread",
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var frame map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.JSONEq(t, `"NewCommunityPost"`, string(frame["type"]))

	var payload NewCommunityPost
	require.NoError(t, json.Unmarshal(frame["data"], &payload))
	assert.Equal(t, postID, payload.PostID)
	assert.Equal(t, "anna", payload.AuthorName)
}

func TestEncodeEvent_RoundTripThroughFrame(t *testing.T) {
	raw, err := EncodeEvent(SystemNotification{
		Title:   "Maintenance",
		Message: "Back in five minutes",
		Level:   LevelWarning,
	})
	require.NoError(t, err)

	var frame EventFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	require.Equal(t, KindSystemNotification, frame.Type)

	var payload SystemNotification
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.Equal(t, LevelWarning, payload.Level)
	assert.Equal(t, "Maintenance", payload.Title)
}

func TestScope_String(t *testing.T) {
	userID := uuid.New()
	assert.Equal(t, "all", ScopeAll().String())
	assert.Equal(t, "user:"+userID.String(), ScopeUser(userID).String())
	assert.Equal(t, "channel:community", ScopeChannel("community").String())
}
