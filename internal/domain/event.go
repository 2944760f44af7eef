package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies one variant of the Event union. The values are the
// wire-format type tags.
type EventKind string

const (
	KindNewCommunityPost   EventKind = "NewCommunityPost"
	KindPostLiked          EventKind = "PostLiked"
	KindNewComment         EventKind = "NewComment"
	KindExpiringItems      EventKind = "ExpiringItems"
	KindGoalAchieved       EventKind = "GoalAchieved"
	KindNewFollower        EventKind = "NewFollower"
	KindRecipeGenerated    EventKind = "RecipeGenerated"
	KindSystemNotification EventKind = "SystemNotification"
	KindHeartbeat          EventKind = "Heartbeat"
)

// Event is the closed union of everything the hub can deliver to a client.
// Each variant is a payload struct; the set is sealed so dispatch and
// serialization are checked at compile time when a kind is added.
type Event interface {
	Kind() EventKind
	sealedEvent()
}

// NotificationLevel grades a SystemNotification.
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
	LevelSuccess NotificationLevel = "success"
)

type NewCommunityPost struct {
	PostID     uuid.UUID `json:"post_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

type PostLiked struct {
	PostID     uuid.UUID `json:"post_id"`
	LikerName  string    `json:"liker_name"`
	TotalLikes int       `json:"total_likes"`
}

type NewComment struct {
	PostID     uuid.UUID `json:"post_id"`
	CommentID  uuid.UUID `json:"comment_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
}

type ExpiringItem struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	DaysLeft int       `json:"days_left"`
}

type ExpiringItems struct {
	Items    []ExpiringItem `json:"items"`
	DaysLeft int            `json:"days_left"`
}

type GoalAchieved struct {
	GoalID          uuid.UUID `json:"goal_id"`
	Title           string    `json:"title"`
	AchievementType string    `json:"achievement_type"`
}

type NewFollower struct {
	FollowerID   uuid.UUID `json:"follower_id"`
	FollowerName string    `json:"follower_name"`
}

type RecipeGenerated struct {
	RecipeID         uuid.UUID `json:"recipe_id"`
	Title            string    `json:"title"`
	IngredientsCount int       `json:"ingredients_count"`
}

type SystemNotification struct {
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Level   NotificationLevel `json:"level"`
}

type Heartbeat struct {
	Timestamp time.Time `json:"timestamp"`
}

func (NewCommunityPost) Kind() EventKind   { return KindNewCommunityPost }
func (PostLiked) Kind() EventKind          { return KindPostLiked }
func (NewComment) Kind() EventKind         { return KindNewComment }
func (ExpiringItems) Kind() EventKind      { return KindExpiringItems }
func (GoalAchieved) Kind() EventKind       { return KindGoalAchieved }
func (NewFollower) Kind() EventKind        { return KindNewFollower }
func (RecipeGenerated) Kind() EventKind    { return KindRecipeGenerated }
func (SystemNotification) Kind() EventKind { return KindSystemNotification }
func (Heartbeat) Kind() EventKind          { return KindHeartbeat }

func (NewCommunityPost) sealedEvent()   {}
func (PostLiked) sealedEvent()          {}
func (NewComment) sealedEvent()         {}
func (ExpiringItems) sealedEvent()      {}
func (GoalAchieved) sealedEvent()       {}
func (NewFollower) sealedEvent()        {}
func (RecipeGenerated) sealedEvent()    {}
func (SystemNotification) sealedEvent() {}
func (Heartbeat) sealedEvent()          {}

// EventFrame is the outbound wire format: the kind as the type tag with the
// variant payload nested under data.
type EventFrame struct {
	Type EventKind       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodeEvent serializes an event into its wire frame.
func EncodeEvent(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Kind(), err)
	}
	frame, err := json.Marshal(EventFrame{Type: e.Kind(), Data: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s frame: %w", e.Kind(), err)
	}
	return frame, nil
}
