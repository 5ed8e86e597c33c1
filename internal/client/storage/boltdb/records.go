package boltdb

import (
	"context"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/communitysync/internal/client/storage"
	"github.com/iudanet/communitysync/internal/models"
)

// collectionBucket возвращает вложенный bucket коллекции или nil, если его еще нет
func collectionBucket(tx *bbolt.Tx, collection string) *bbolt.Bucket {
	root := tx.Bucket(bucketRecords)
	if root == nil {
		return nil
	}
	return root.Bucket([]byte(collection))
}

// SaveRecord stores or replaces a record in its collection bucket
func (s *Storage) SaveRecord(ctx context.Context, record *models.Record) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	// Сериализуем запись в JSON
	data, err := storage.EncodeRecord(record)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketRecords)
		if err != nil {
			return fmt.Errorf("failed to create records bucket: %w", err)
		}

		bucket, err := root.CreateBucketIfNotExists([]byte(record.Collection))
		if err != nil {
			return fmt.Errorf("failed to create collection bucket: %w", err)
		}

		// Сохраняем по ключу ID
		if err := bucket.Put([]byte(record.ID), data); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// GetRecord retrieves a record by collection and ID
func (s *Storage) GetRecord(ctx context.Context, collection, id string) (*models.Record, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var record *models.Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := collectionBucket(tx, collection)
		if bucket == nil {
			return storage.ErrRecordNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrRecordNotFound
		}

		// Десериализуем
		r, err := storage.DecodeRecord(collection, data)
		if err != nil {
			return err
		}
		record = r
		return nil
	})

	if err != nil {
		return nil, err
	}

	return record, nil
}

// ListRecords returns all records of the collection
func (s *Storage) ListRecords(ctx context.Context, collection string) ([]*models.Record, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var records []*models.Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := collectionBucket(tx, collection)
		if bucket == nil {
			// Нет bucket - возвращаем пустой список
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			r, err := storage.DecodeRecord(collection, v)
			if err != nil {
				return err
			}
			records = append(records, r)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return records, nil
}

// DeleteRecord removes a record from its collection bucket
func (s *Storage) DeleteRecord(ctx context.Context, collection, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := collectionBucket(tx, collection)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(id))
	})

	if err != nil {
		return fmt.Errorf("delete transaction failed: %w", err)
	}

	return nil
}

// ReplaceRecords atomically replaces the collection content
func (s *Storage) ReplaceRecords(ctx context.Context, collection string, records []*models.Record) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	// Сериализуем заранее, чтобы не держать транзакцию на ошибках маршалинга
	encoded := make(map[string][]byte, len(records))
	for _, r := range records {
		data, err := storage.EncodeRecord(r)
		if err != nil {
			return fmt.Errorf("failed to encode record %q: %w", r.ID, err)
		}
		encoded[r.ID] = data
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketRecords)
		if err != nil {
			return fmt.Errorf("failed to create records bucket: %w", err)
		}

		// Удаляем bucket коллекции полностью и создаем заново
		if err := root.DeleteBucket([]byte(collection)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to delete collection bucket: %w", err)
		}

		bucket, err := root.CreateBucket([]byte(collection))
		if err != nil {
			return fmt.Errorf("failed to create collection bucket: %w", err)
		}

		for id, data := range encoded {
			if err := bucket.Put([]byte(id), data); err != nil {
				return fmt.Errorf("failed to save record: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("replace transaction failed: %w", err)
	}

	return nil
}

// Clear removes all records from storage
func (s *Storage) Clear(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		// Удаляем bucket полностью
		if err := tx.DeleteBucket(bucketRecords); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to delete bucket: %w", err)
		}

		// Создаем заново пустой bucket
		if _, err := tx.CreateBucket(bucketRecords); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("clear transaction failed: %w", err)
	}

	return nil
}
