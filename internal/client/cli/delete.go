package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runDelete(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	if err := c.engine.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}

	c.io.Printf("✓ Deleted %s/%s\n", collection, id)
	return nil
}
