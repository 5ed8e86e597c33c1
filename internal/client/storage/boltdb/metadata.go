package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/communitysync/internal/client/storage"
)

const keyLastSyncPrefix = "last_sync:"

// SaveLastSyncTime saves the time of the last successful fetch of the collection
func (s *Storage) SaveLastSyncTime(ctx context.Context, collection string, t time.Time) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// Конвертируем unix nano в bytes
		timestampBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(timestampBytes, uint64(t.UnixNano()))

		if err := bucket.Put([]byte(keyLastSyncPrefix+collection), timestampBytes); err != nil {
			return fmt.Errorf("failed to save last sync time: %w", err)
		}

		return nil
	})
}

// GetLastSyncTime retrieves the time of the last successful fetch of the collection
// Returns zero time if the collection was never fetched
func (s *Storage) GetLastSyncTime(ctx context.Context, collection string) (time.Time, error) {
	if s.db == nil {
		return time.Time{}, storage.ErrStorageClosed
	}

	var result time.Time

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		timestampBytes := bucket.Get([]byte(keyLastSyncPrefix + collection))
		if timestampBytes == nil {
			// Коллекция еще ни разу не загружалась
			return nil
		}

		// Конвертируем bytes обратно во время
		result = time.Unix(0, int64(binary.BigEndian.Uint64(timestampBytes)))
		return nil
	})

	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}

	return result, nil
}
