package cli

import (
	"context"

	"github.com/iudanet/communitysync/internal/models"
)

// runDM отправляет личное сообщение
func (c *Cli) runDM(ctx context.Context, recipientID string, args []string) error {
	text, err := c.content(args, "Message: ")
	if err != nil {
		return err
	}
	userID, userName, err := c.author()
	if err != nil {
		return err
	}

	draft := map[string]any{
		"senderId":    userID,
		"senderName":  userName,
		"recipientId": recipientID,
		"content":     text,
	}
	return c.submit(ctx, models.CollectionDirectMessages, draft, "Direct message sent")
}

func (c *Cli) runFriendRequest(ctx context.Context, addresseeID string) error {
	userID, _, err := c.author()
	if err != nil {
		return err
	}
	if userID == addresseeID {
		return ErrSelfFriendship
	}

	draft := map[string]any{
		"requesterId": userID,
		"addresseeId": addresseeID,
		"status":      string(models.FriendshipPending),
	}
	return c.submit(ctx, models.CollectionFriendships, draft, "Friend request sent")
}

func (c *Cli) runFriendAccept(ctx context.Context, friendshipID string) error {
	changes := map[string]any{"status": string(models.FriendshipAccepted)}
	return c.update(ctx, models.CollectionFriendships, friendshipID, changes, "Friend request accepted")
}

// runFriendCancel отзывает заявку или удаляет из друзей
func (c *Cli) runFriendCancel(ctx context.Context, friendshipID string) error {
	return c.runDelete(ctx, models.CollectionFriendships, friendshipID)
}

// runJoin вступает в группу
func (c *Cli) runJoin(ctx context.Context, groupID string) error {
	userID, _, err := c.author()
	if err != nil {
		return err
	}

	draft := map[string]any{
		"groupId": groupID,
		"userId":  userID,
	}
	return c.submit(ctx, models.CollectionMemberships, draft, "Joined group")
}

// runEdit меняет текст поста
func (c *Cli) runEdit(ctx context.Context, postID string, args []string) error {
	text, err := c.content(args, "New text: ")
	if err != nil {
		return err
	}
	return c.update(ctx, models.CollectionPosts, postID, map[string]any{"content": text}, "Post updated")
}
