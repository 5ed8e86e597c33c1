package cli

import (
	"context"
	"time"

	"github.com/iudanet/communitysync/internal/models"
)

// runSend отправляет сообщение в общий чат
func (c *Cli) runSend(ctx context.Context, args []string) error {
	text, err := c.content(args, "Message: ")
	if err != nil {
		return err
	}
	userID, userName, err := c.author()
	if err != nil {
		return err
	}

	draft := map[string]any{
		"content":             text,
		"userId":              userID,
		"userName":            userName,
		models.FieldTimestamp: c.now().UTC().Format(time.RFC3339),
	}
	return c.submit(ctx, models.CollectionMessages, draft, "Message sent")
}

// runPost публикует пост в ленте или в группе
func (c *Cli) runPost(ctx context.Context, args []string, groupID, imageURL string) error {
	text, err := c.content(args, "Post: ")
	if err != nil {
		return err
	}
	userID, userName, err := c.author()
	if err != nil {
		return err
	}

	draft := map[string]any{
		"content":  text,
		"userId":   userID,
		"userName": userName,
	}
	if groupID != "" {
		draft["groupId"] = groupID
	}
	if imageURL != "" {
		draft["imageUrl"] = imageURL
	}
	return c.submit(ctx, models.CollectionPosts, draft, "Post published")
}

// runComment комментирует пост
func (c *Cli) runComment(ctx context.Context, postID string, args []string) error {
	text, err := c.content(args, "Comment: ")
	if err != nil {
		return err
	}
	userID, userName, err := c.author()
	if err != nil {
		return err
	}

	draft := map[string]any{
		"postId":   postID,
		"content":  text,
		"userId":   userID,
		"userName": userName,
	}
	return c.submit(ctx, models.CollectionComments, draft, "Comment added")
}

// runLike ставит отметку "нравится" на пост
func (c *Cli) runLike(ctx context.Context, postID string) error {
	userID, _, err := c.author()
	if err != nil {
		return err
	}

	draft := map[string]any{
		"postId": postID,
		"userId": userID,
	}
	return c.submit(ctx, models.CollectionLikes, draft, "Liked")
}
