package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/communitysync/internal/models"
)

func bucketsExist(db *bbolt.DB) error {
	return db.View(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRecords, bucketMetadata} {
			if tx.Bucket(b) == nil {
				return os.ErrNotExist
			}
		}
		return nil
	})
}

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "client.db")

	s, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	require.NoError(t, bucketsExist(s.db))
}

func TestNew_InvalidPath(t *testing.T) {
	// путь с нулевым байтом не открывается ни на одной платформе
	s, err := New(context.Background(), string([]byte{0}))
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestClose_Idempotent(t *testing.T) {
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.Nil(t, s.db)
	assert.NoError(t, s.Close())
}

func TestInitBuckets_RecreatesMissing(t *testing.T) {
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "client.db"), 0600, nil)
	require.NoError(t, err)
	defer db.Close()

	require.Error(t, bucketsExist(db))

	s := &Storage{db: db}
	require.NoError(t, s.initBuckets())
	assert.NoError(t, bucketsExist(db))

	// повторная инициализация не трогает существующие бакеты
	assert.NoError(t, s.initBuckets())
}

func TestStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "client.db")
	syncedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, s.SaveRecord(ctx, models.NewRecord(models.CollectionPosts, map[string]any{
		"id": "p1", "content": "kept",
	})))
	require.NoError(t, s.SaveLastSyncTime(ctx, models.CollectionPosts, syncedAt))
	require.NoError(t, s.Close())

	s, err = New(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	rec, err := s.GetRecord(ctx, models.CollectionPosts, "p1")
	require.NoError(t, err)
	assert.Equal(t, "kept", rec.String("content"))
	assert.Equal(t, models.CollectionPosts, rec.Collection)

	got, err := s.GetLastSyncTime(ctx, models.CollectionPosts)
	require.NoError(t, err)
	assert.True(t, syncedAt.Equal(got))
}
