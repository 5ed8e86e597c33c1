package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/communitysync/internal/client/storage"
	"github.com/iudanet/communitysync/internal/models"
)

// SaveRecord stores or replaces a record in its collection
func (s *Storage) SaveRecord(ctx context.Context, record *models.Record) error {
	payload, err := storage.EncodeRecord(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO records (collection, id, payload, received_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE
		SET payload = excluded.payload, received_at = excluded.received_at
	`

	if _, err := s.db.ExecContext(ctx, query, record.Collection, record.ID, payload, record.ReceivedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

// GetRecord retrieves a record by collection and ID
// Returns ErrRecordNotFound if record doesn't exist
func (s *Storage) GetRecord(ctx context.Context, collection, id string) (*models.Record, error) {
	query := `SELECT payload FROM records WHERE collection = ? AND id = ?`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return storage.DecodeRecord(collection, payload)
}

// ListRecords returns all records of the collection ordered by receive time
func (s *Storage) ListRecords(ctx context.Context, collection string) (records []*models.Record, err error) {
	query := `SELECT payload FROM records WHERE collection = ? ORDER BY received_at ASC`

	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		record, err := storage.DecodeRecord(collection, payload)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// DeleteRecord removes a record. Deleting a missing record is not an error.
func (s *Storage) DeleteRecord(ctx context.Context, collection, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// ReplaceRecords atomically replaces the collection content in one transaction
func (s *Storage) ReplaceRecords(ctx context.Context, collection string, records []*models.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (collection, id, payload, received_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, r := range records {
		payload, encErr := storage.EncodeRecord(r)
		if encErr != nil {
			err = fmt.Errorf("failed to encode record %q: %w", r.ID, encErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, collection, r.ID, payload, r.ReceivedAt.UnixNano()); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Clear removes all records of all collections
func (s *Storage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}

// SaveLastSyncTime saves the time of the last successful fetch of the collection
func (s *Storage) SaveLastSyncTime(ctx context.Context, collection string, t time.Time) error {
	query := `
		INSERT INTO sync_metadata (collection, last_sync_at) VALUES (?, ?)
		ON CONFLICT (collection) DO UPDATE SET last_sync_at = excluded.last_sync_at
	`
	if _, err := s.db.ExecContext(ctx, query, collection, t.UnixNano()); err != nil {
		return fmt.Errorf("failed to save last sync time: %w", err)
	}
	return nil
}

// GetLastSyncTime retrieves the time of the last successful fetch of the collection
func (s *Storage) GetLastSyncTime(ctx context.Context, collection string) (time.Time, error) {
	var nanos int64
	err := s.db.QueryRowContext(ctx, `SELECT last_sync_at FROM sync_metadata WHERE collection = ?`, collection).Scan(&nanos)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}
	return time.Unix(0, nanos), nil
}
