package cli

import (
	"context"
	"errors"
	"fmt"
)

// ErrRecordNotFound запись отсутствует в коллекции
var ErrRecordNotFound = errors.New("record not found")

func (c *Cli) runGet(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	if err := c.engine.Refresh(ctx, collection); err != nil {
		c.io.Printf("Warning: failed to fetch %s, showing local copy: %v\n", collection, err)
	}

	records, _ := c.engine.Snapshot(collection)
	for _, rec := range records {
		if rec.ID != id {
			continue
		}
		text, err := renderDetails(rec)
		if err != nil {
			return err
		}
		_, err = c.io.Write([]byte(text))
		return err
	}

	return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, collection, id)
}
