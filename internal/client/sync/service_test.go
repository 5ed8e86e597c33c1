package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/communitysync/internal/client/api"
	"github.com/iudanet/communitysync/internal/client/storage"
	"github.com/iudanet/communitysync/internal/client/store"
	"github.com/iudanet/communitysync/internal/models"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

type fixture struct {
	stores map[string]*store.RecordStore
	lookup StoreLookup
}

func newFixture(collections ...string) *fixture {
	f := &fixture{stores: make(map[string]*store.RecordStore)}
	for _, c := range collections {
		f.stores[c] = store.New(c, nil, testLogger)
	}
	f.lookup = func(collection string) (RecordStore, bool) {
		s, ok := f.stores[collection]
		if !ok {
			return nil, false
		}
		return s, true
	}
	return f
}

func records(collection string, ids ...string) []*models.Record {
	out := make([]*models.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.NewRecord(collection, map[string]any{"id": id}))
	}
	return out
}

func TestNewService(t *testing.T) {
	mockAPI := &api.ClientAPIMock{}
	mockMetadata := &storage.MetadataStorageMock{}
	f := newFixture(models.CollectionPosts)

	svc := NewService(mockAPI, f.lookup, []string{models.CollectionPosts}, mockMetadata, nil, testLogger)

	s, ok := svc.(*service)
	require.True(t, ok)
	assert.Equal(t, mockAPI, s.apiClient)
	assert.Equal(t, mockMetadata, s.metadataStorage)
	assert.Equal(t, []string{models.CollectionPosts}, s.collections)
	assert.NotNil(t, s.exec)
}

func TestSync_PullsAllCollections(t *testing.T) {
	mockAPI := &api.ClientAPIMock{
		ListFunc: func(ctx context.Context, collection string) ([]*models.Record, error) {
			switch collection {
			case models.CollectionPosts:
				return records(collection, "p1", "p2"), nil
			case models.CollectionComments:
				return records(collection, "c1"), nil
			}
			return nil, nil
		},
	}

	saved := make(map[string]time.Time)
	mockMetadata := &storage.MetadataStorageMock{
		SaveLastSyncTimeFunc: func(ctx context.Context, collection string, t time.Time) error {
			saved[collection] = t
			return nil
		},
	}

	f := newFixture(models.CollectionPosts, models.CollectionComments)
	svc := NewService(mockAPI, f.lookup, []string{models.CollectionPosts, models.CollectionComments}, mockMetadata, nil, testLogger)

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.PulledEntries)
	assert.Equal(t, 2, result.SyncedCollections)
	assert.Equal(t, map[string]int{"posts": 2, "comments": 1}, result.Pulled)
	assert.Empty(t, result.Failed)

	assert.Equal(t, 2, f.stores[models.CollectionPosts].Len())
	assert.Equal(t, 1, f.stores[models.CollectionComments].Len())
	assert.Len(t, saved, 2)
}

func TestSync_PartialFailureKeepsLocalRecords(t *testing.T) {
	mockAPI := &api.ClientAPIMock{
		ListFunc: func(ctx context.Context, collection string) ([]*models.Record, error) {
			if collection == models.CollectionLikes {
				return nil, &api.FetchError{Collection: collection, Err: errors.New("status 500")}
			}
			return records(collection, "p1"), nil
		},
	}

	f := newFixture(models.CollectionPosts, models.CollectionLikes)
	f.stores[models.CollectionLikes].Merge(models.NewRecord(models.CollectionLikes, map[string]any{"id": "l1"}))

	svc := NewService(mockAPI, f.lookup, []string{models.CollectionPosts, models.CollectionLikes}, nil, nil, testLogger)

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.SyncedCollections)
	require.Contains(t, result.Failed, models.CollectionLikes)

	var fetchErr *api.FetchError
	assert.ErrorAs(t, result.Failed[models.CollectionLikes], &fetchErr)
	// неудачная загрузка не стирает локальные записи
	assert.NotNil(t, f.stores[models.CollectionLikes].Get("l1"))
}

func TestSync_AllFailed(t *testing.T) {
	mockAPI := &api.ClientAPIMock{
		ListFunc: func(ctx context.Context, collection string) ([]*models.Record, error) {
			return nil, &api.FetchError{Collection: collection, Err: errors.New("offline")}
		},
	}

	f := newFixture(models.CollectionPosts)
	svc := NewService(mockAPI, f.lookup, []string{models.CollectionPosts}, nil, nil, testLogger)

	result, err := svc.Sync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all collections failed")
	assert.Len(t, result.Failed, 1)
}

func TestSync_ContextCanceled(t *testing.T) {
	mockAPI := &api.ClientAPIMock{}
	f := newFixture(models.CollectionPosts)
	svc := NewService(mockAPI, f.lookup, []string{models.CollectionPosts}, nil, nil, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Sync(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mockAPI.ListCalls())
}

func TestSyncCollection_SaveMetadataError(t *testing.T) {
	mockAPI := &api.ClientAPIMock{
		ListFunc: func(ctx context.Context, collection string) ([]*models.Record, error) {
			return records(collection, "m1"), nil
		},
	}
	mockMetadata := &storage.MetadataStorageMock{
		SaveLastSyncTimeFunc: func(ctx context.Context, collection string, t time.Time) error {
			return storage.ErrStorageClosed
		},
	}

	f := newFixture(models.CollectionMessages)
	svc := NewService(mockAPI, f.lookup, []string{models.CollectionMessages}, mockMetadata, nil, testLogger)

	n, err := svc.SyncCollection(context.Background(), models.CollectionMessages)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.stores[models.CollectionMessages].Len())
}

func TestSyncCollection_UnknownCollection(t *testing.T) {
	f := newFixture()
	svc := NewService(&api.ClientAPIMock{}, f.lookup, nil, nil, nil, testLogger)

	_, err := svc.SyncCollection(context.Background(), "widgets")
	assert.Error(t, err)
}

func TestSyncCollection_ExecutorStopped(t *testing.T) {
	mockAPI := &api.ClientAPIMock{
		ListFunc: func(ctx context.Context, collection string) ([]*models.Record, error) {
			return records(collection, "m1"), nil
		},
	}
	mockMetadata := &storage.MetadataStorageMock{}

	f := newFixture(models.CollectionMessages)
	stopped := func(fn func()) bool { return false }
	svc := NewService(mockAPI, f.lookup, []string{models.CollectionMessages}, mockMetadata, stopped, testLogger)

	n, err := svc.SyncCollection(context.Background(), models.CollectionMessages)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, f.stores[models.CollectionMessages].Len())
	assert.Empty(t, mockMetadata.SaveLastSyncTimeCalls())
}

func TestGetPendingSyncCount(t *testing.T) {
	f := newFixture(models.CollectionMessages, models.CollectionPosts)

	pending := models.NewRecord(models.CollectionMessages, map[string]any{"id": "01HX", "clientToken": "tok"})
	pending.Pending = true
	f.stores[models.CollectionMessages].Merge(pending)
	f.stores[models.CollectionPosts].Merge(models.NewRecord(models.CollectionPosts, map[string]any{"id": "p1"}))

	svc := NewService(&api.ClientAPIMock{}, f.lookup, []string{models.CollectionMessages, models.CollectionPosts}, nil, nil, testLogger)

	count, err := svc.GetPendingSyncCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
