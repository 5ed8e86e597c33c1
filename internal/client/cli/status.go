package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/communitysync/internal/client/session"
	"github.com/iudanet/communitysync/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session ===")
	c.io.Println()
	c.printSession()

	c.io.Println()
	c.io.Println("=== Server ===")
	c.io.Println()

	stats, err := c.stats.Stats(ctx)
	if err != nil {
		// Не прерываем выполнение: локальные данные все равно доступны
		c.io.Printf("Server unreachable: %v\n", err)
	} else {
		c.io.Printf("Users:       %d\n", stats.Users)
		c.io.Printf("Collections: %d\n", stats.Collections)
	}

	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	c.io.Println()
	c.io.Println("=== Local store ===")
	c.io.Println()

	for _, collection := range models.Collections() {
		records, _ := c.engine.Snapshot(collection)
		line := fmt.Sprintf("%-16s %5d record(s)", collection, len(records))
		if last := c.lastSync(ctx, collection); !last.IsZero() {
			line += fmt.Sprintf(", synced %s", last.UTC().Format(time.RFC3339))
		} else {
			line += ", never synced"
		}
		c.io.Println(line)
	}

	return nil
}

func (c *Cli) printSession() {
	switch {
	case c.session != nil:
		name := c.session.Username
		if name == "" {
			name = "(unknown)"
		}
		c.io.Printf("User:    %s (%s)\n", name, c.session.UserID)
		if c.session.ExpiresAt.IsZero() {
			c.io.Println("Token does not expire")
			return
		}
		c.io.Printf("Token expires: %s\n", c.session.ExpiresAt.UTC().Format(time.RFC3339))
		now := c.now()
		if c.session.Expired(now) {
			c.io.Println("⚠️  Token has expired. Requests will be rejected by the server.")
		} else {
			c.io.Printf("Time remaining: %s\n", c.session.Remaining(now).Round(time.Second))
		}
	case errors.Is(c.sessionErr, session.ErrNoToken):
		c.io.Println("Status: anonymous (no token)")
		if c.userID != "" {
			c.io.Printf("User:   %s\n", c.userID)
		}
	default:
		c.io.Printf("Status: token cannot be read: %v\n", c.sessionErr)
	}
}

func (c *Cli) lastSync(ctx context.Context, collection string) time.Time {
	if c.metadata == nil {
		return time.Time{}
	}
	t, err := c.metadata.GetLastSyncTime(ctx, collection)
	if err != nil {
		return time.Time{}
	}
	return t
}
