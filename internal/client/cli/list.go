package cli

import (
	"context"
	"fmt"
)

// DefaultListLimit количество последних записей, которое показывает list
const DefaultListLimit = 20

func (c *Cli) runList(ctx context.Context, collection string, limit int) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	// Ошибка загрузки не фатальна: показываем локальную копию
	if err := c.engine.Refresh(ctx, collection); err != nil {
		c.io.Printf("Warning: failed to fetch %s, showing local copy: %v\n", collection, err)
	}

	records, _ := c.engine.Snapshot(collection)

	c.io.Printf("=== %s ===\n", collection)
	c.io.Println()

	if len(records) == 0 {
		c.io.Println("No records found.")
		return nil
	}

	total := len(records)
	if limit > 0 && total > limit {
		records = records[total-limit:]
		c.io.Printf("Showing last %d of %d record(s):\n", limit, total)
	} else {
		c.io.Printf("Found %d record(s):\n", total)
	}
	c.io.Println()

	for _, rec := range records {
		c.io.Println(renderLine(rec))
	}
	return nil
}
