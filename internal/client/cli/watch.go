package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/communitysync/internal/models"
)

// watchBacklog сколько последних записей каждой коллекции показать перед наблюдением
const watchBacklog = 10

func (c *Cli) runWatch(ctx context.Context, collections []string) error {
	for _, collection := range collections {
		if err := checkCollection(collection); err != nil {
			return err
		}
	}
	selected := collections
	if len(selected) == 0 {
		selected = models.Collections()
	}
	filter := make(map[string]bool, len(selected))
	for _, collection := range selected {
		filter[collection] = true
	}

	// Обработчики вызываются на горутине цикла движка, печатаем только отсюда
	events := make(chan *models.ChangeEvent, 256)
	states := make(chan models.ConnectionState, 16)
	c.engine.OnEvent(func(e *models.ChangeEvent) {
		select {
		case events <- e:
		default:
		}
	})
	c.engine.OnState(func(s models.ConnectionState) {
		select {
		case states <- s:
		default:
		}
	})

	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	if err := c.engine.Prime(ctx); err != nil {
		c.io.Printf("Warning: initial load incomplete: %v\n", err)
	}

	for _, collection := range selected {
		records, _ := c.engine.Snapshot(collection)
		if len(records) == 0 {
			continue
		}
		if len(records) > watchBacklog {
			records = records[len(records)-watchBacklog:]
		}
		c.io.Printf("=== %s ===\n", collection)
		for _, rec := range records {
			c.io.Println(renderLine(rec))
		}
		c.io.Println()
	}

	c.io.Println("Watching for changes. Press Ctrl+C to stop.")

	for {
		select {
		case <-ctx.Done():
			c.io.Println()
			c.io.Println("Stopped.")
			return nil
		case s := <-states:
			c.io.Printf("* connection %s\n", s)
		case e := <-events:
			if !filter[e.Collection] {
				continue
			}
			c.printEvent(e)
		}
	}
}

func (c *Cli) printEvent(e *models.ChangeEvent) {
	switch {
	case e.Operation == models.OperationDelete:
		c.io.Printf("- %s %s\n", e.Collection, e.RecordID())
	case e.Record == nil:
		c.io.Printf("~ %s changed\n", e.Collection)
	case e.Operation == models.OperationUpdate:
		c.io.Printf("~ %s: %s\n", e.Collection, renderLine(e.Record))
	default:
		c.io.Printf("+ %s: %s\n", e.Collection, renderLine(e.Record))
	}
}
