package cli

import (
	"context"
	"fmt"
	"slices"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	c.io.Println("Fetching collections from server...")

	result, err := c.engine.Sync(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Synchronization completed")
	c.io.Println()
	c.io.Printf("Pulled from server: %d entries\n", result.PulledEntries)
	c.io.Printf("Collections:        %d synced, %d failed\n", result.SyncedCollections, len(result.Failed))

	if len(result.Failed) > 0 {
		failed := make([]string, 0, len(result.Failed))
		for collection := range result.Failed {
			failed = append(failed, collection)
		}
		slices.Sort(failed)

		c.io.Println()
		c.io.Println("Failed collections (local copy kept):")
		for _, collection := range failed {
			c.io.Printf("  %s: %v\n", collection, result.Failed[collection])
		}
	}
	return nil
}
