package storage

import (
	"context"
	"time"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client sync metadata
type MetadataStorage interface {
	// SaveLastSyncTime saves the time of the last successful fetch of the collection
	SaveLastSyncTime(ctx context.Context, collection string, t time.Time) error

	// GetLastSyncTime retrieves the time of the last successful fetch of the collection
	// Returns zero time if the collection was never fetched
	GetLastSyncTime(ctx context.Context, collection string) (time.Time, error)
}

// Storage объединяет хранилище записей и метаданных.
// Реализуется backend'ами boltdb и sqlite.
type Storage interface {
	RecordStorage
	MetadataStorage
	Close() error
}
