package hub

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Fodi999/ai-cook-beckend/internal/domain"
)

// CommunityChannel is the channel community events are published to and
// typing indicators are scoped to.
const CommunityChannel = "community"

// Inbound control frame types.
const (
	frameSubscribe   = "Subscribe"
	frameUnsubscribe = "Unsubscribe"
	frameHeartbeat   = "Heartbeat"
	frameTypingStart = "TypingStart"
	frameTypingStop  = "TypingStop"
)

type inboundFrame struct {
	Type     string    `json:"type"`
	Channels []string  `json:"channels"`
	PostID   uuid.UUID `json:"post_id"`
}

// dispatch applies one inbound control frame against the registry.
// A malformed or unknown frame is a protocol error.
func (h *Handler) dispatch(conn *Connection, raw []byte) error {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}

	switch frame.Type {
	case frameSubscribe:
		for _, channel := range frame.Channels {
			h.registry.Subscribe(conn.ID(), channel)
		}
	case frameUnsubscribe:
		for _, channel := range frame.Channels {
			h.registry.Unsubscribe(conn.ID(), channel)
		}
	case frameHeartbeat:
		// Liveness already refreshed for every inbound frame.
	case frameTypingStart:
		h.broadcaster.Publish(domain.SystemNotification{
			Title:   "Typing",
			Message: fmt.Sprintf("Someone is typing a comment on post %s", frame.PostID),
			Level:   domain.LevelInfo,
		}, domain.ScopeChannel(CommunityChannel))
	case frameTypingStop:
		// Acknowledged, no event.
	default:
		return fmt.Errorf("unknown frame type %q", frame.Type)
	}
	return nil
}
