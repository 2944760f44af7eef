// Package eventpublisher is the facade domain services use to emit
// real-time notifications after committing their own state changes.
// Every method resolves to a single hub publish with the right scope;
// none of them can fail the calling service.
package eventpublisher

import (
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Fodi999/ai-cook-beckend/internal/domain"
	"github.com/Fodi999/ai-cook-beckend/internal/hub"
)

type Notifier struct {
	publisher domain.Publisher
	clock     clockwork.Clock
}

func New(publisher domain.Publisher, clock clockwork.Clock) *Notifier {
	return &Notifier{publisher: publisher, clock: clock}
}

// NotifyNewPost announces a persisted community post to the community channel.
func (n *Notifier) NotifyNewPost(postID uuid.UUID, authorName, content string) {
	n.publisher.Publish(domain.NewCommunityPost{
		PostID:     postID,
		AuthorName: authorName,
		Content:    content,
		Timestamp:  n.clock.Now(),
	}, domain.ScopeChannel(hub.CommunityChannel))
}

// NotifyPostLiked announces a like to the community channel.
func (n *Notifier) NotifyPostLiked(postID uuid.UUID, likerName string, totalLikes int) {
	n.publisher.Publish(domain.PostLiked{
		PostID:     postID,
		LikerName:  likerName,
		TotalLikes: totalLikes,
	}, domain.ScopeChannel(hub.CommunityChannel))
}

// NotifyNewComment announces a comment to the community channel.
func (n *Notifier) NotifyNewComment(postID, commentID uuid.UUID, authorName, content string) {
	n.publisher.Publish(domain.NewComment{
		PostID:     postID,
		CommentID:  commentID,
		AuthorName: authorName,
		Content:    content,
	}, domain.ScopeChannel(hub.CommunityChannel))
}

// NotifyExpiringItems warns one user about soon-to-expire fridge items.
// An empty list produces no event.
func (n *Notifier) NotifyExpiringItems(userID uuid.UUID, items []domain.ExpiringItem) {
	if len(items) == 0 {
		return
	}
	daysLeft := items[0].DaysLeft
	for _, item := range items[1:] {
		if item.DaysLeft < daysLeft {
			daysLeft = item.DaysLeft
		}
	}
	n.publisher.Publish(domain.ExpiringItems{
		Items:    items,
		DaysLeft: daysLeft,
	}, domain.ScopeUser(userID))
}

// NotifyGoalAchieved congratulates one user on a completed goal.
func (n *Notifier) NotifyGoalAchieved(userID, goalID uuid.UUID, title string) {
	n.publisher.Publish(domain.GoalAchieved{
		GoalID:          goalID,
		Title:           title,
		AchievementType: "goal_completed",
	}, domain.ScopeUser(userID))
}

// NotifyNewFollower tells one user about a new follower.
func (n *Notifier) NotifyNewFollower(userID, followerID uuid.UUID, followerName string) {
	n.publisher.Publish(domain.NewFollower{
		FollowerID:   followerID,
		FollowerName: followerName,
	}, domain.ScopeUser(userID))
}

// NotifyRecipeGenerated tells one user their AI recipe is ready.
func (n *Notifier) NotifyRecipeGenerated(userID, recipeID uuid.UUID, title string, ingredientsCount int) {
	n.publisher.Publish(domain.RecipeGenerated{
		RecipeID:         recipeID,
		Title:            title,
		IngredientsCount: ingredientsCount,
	}, domain.ScopeUser(userID))
}

// SendSystemNotification broadcasts an operational notice to every client.
func (n *Notifier) SendSystemNotification(title, message string, level domain.NotificationLevel) {
	n.publisher.Publish(domain.SystemNotification{
		Title:   title,
		Message: message,
		Level:   level,
	}, domain.ScopeAll())
}
