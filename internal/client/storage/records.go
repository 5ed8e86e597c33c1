package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iudanet/communitysync/internal/models"
)

//go:generate moq -out recordstorage_mock.go . RecordStorage

// RecordStorage defines interface for persisting confirmed collection records on client.
// Optimistic (pending) records are never persisted.
type RecordStorage interface {
	// SaveRecord stores or replaces a record in its collection
	SaveRecord(ctx context.Context, record *models.Record) error

	// GetRecord retrieves a record by collection and ID
	// Returns ErrRecordNotFound if record doesn't exist
	GetRecord(ctx context.Context, collection, id string) (*models.Record, error)

	// ListRecords returns all records of the collection (order is not guaranteed)
	ListRecords(ctx context.Context, collection string) ([]*models.Record, error)

	// DeleteRecord removes a record. Deleting a missing record is not an error.
	DeleteRecord(ctx context.Context, collection, id string) error

	// ReplaceRecords atomically replaces the whole collection content
	// Used after a full refetch from server
	ReplaceRecords(ctx context.Context, collection string, records []*models.Record) error

	// Clear removes all records of all collections
	Clear(ctx context.Context) error
}

// persistedRecord формат записи на диске
type persistedRecord struct {
	ReceivedAt time.Time      `json:"received_at"`
	Fields     map[string]any `json:"fields"`
	ID         string         `json:"id"`
}

// EncodeRecord сериализует запись для хранения
func EncodeRecord(record *models.Record) ([]byte, error) {
	if record.ID == "" {
		return nil, ErrEmptyRecordID
	}

	data, err := json.Marshal(persistedRecord{
		ID:         record.ID,
		Fields:     record.Fields,
		ReceivedAt: record.ReceivedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return data, nil
}

// DecodeRecord восстанавливает запись коллекции из сохраненных данных
func DecodeRecord(collection string, data []byte) (*models.Record, error) {
	var p persistedRecord
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	record := models.NewRecord(collection, p.Fields)
	if record.ID == "" {
		record.ID = p.ID
	}
	record.ReceivedAt = p.ReceivedAt
	return record, nil
}
