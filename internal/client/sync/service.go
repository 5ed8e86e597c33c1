package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpClient "github.com/iudanet/communitysync/internal/client/api"
	"github.com/iudanet/communitysync/internal/client/storage"
	"github.com/iudanet/communitysync/internal/models"
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс для sync.Service
type Service interface {
	// Sync выполняет полную загрузку всех коллекций с сервера
	Sync(ctx context.Context) (*SyncResult, error)

	// SyncCollection загружает одну коллекцию и заменяет ею содержимое локального хранилища
	SyncCollection(ctx context.Context, collection string) (int, error)

	// GetPendingSyncCount возвращает количество записей, ожидающих подтверждения сервером
	GetPendingSyncCount(ctx context.Context) (int, error)
}

// RecordStore операции хранилища коллекции, нужные синхронизации
type RecordStore interface {
	ReplaceAll(records []*models.Record, fetchedAt time.Time)
	PendingCount() int
}

// StoreLookup возвращает хранилище коллекции
type StoreLookup func(collection string) (RecordStore, bool)

// Executor выполняет мутацию хранилища в контексте владельца
type Executor func(fn func()) bool

// service загружает коллекции через REST и применяет их к локальным хранилищам
type service struct {
	apiClient       httpClient.ClientAPI
	metadataStorage storage.MetadataStorage
	stores          StoreLookup
	exec            Executor
	logger          *slog.Logger
	now             func() time.Time
	collections     []string
}

// NewService creates a new sync service.
// metadataStorage может быть nil: время последней синхронизации тогда не сохраняется.
func NewService(
	apiClient httpClient.ClientAPI,
	stores StoreLookup,
	collections []string,
	metadataStorage storage.MetadataStorage,
	exec Executor,
	logger *slog.Logger,
) Service {
	if exec == nil {
		exec = func(fn func()) bool {
			fn()
			return true
		}
	}
	return &service{
		apiClient:       apiClient,
		metadataStorage: metadataStorage,
		stores:          stores,
		exec:            exec,
		logger:          logger,
		now:             time.Now,
		collections:     collections,
	}
}

// SyncResult contains sync operation results
type SyncResult struct {
	Pulled            map[string]int // количество полученных записей по коллекциям
	Failed            map[string]error
	PulledEntries     int // всего получено записей
	SyncedCollections int // количество успешно загруженных коллекций
}

// Sync загружает все коллекции последовательно.
// Ошибка одной коллекции не прерывает остальные: ее содержимое остается прежним.
func (s *service) Sync(ctx context.Context) (*SyncResult, error) {
	s.logger.Info("Starting synchronization", "collections", len(s.collections))

	result := &SyncResult{
		Pulled: make(map[string]int, len(s.collections)),
		Failed: make(map[string]error),
	}

	for _, collection := range s.collections {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		n, err := s.SyncCollection(ctx, collection)
		if err != nil {
			result.Failed[collection] = err
			continue
		}
		result.Pulled[collection] = n
		result.PulledEntries += n
		result.SyncedCollections++
	}

	s.logger.Info("Synchronization completed",
		"pulled", result.PulledEntries,
		"synced_collections", result.SyncedCollections,
		"failed_collections", len(result.Failed))

	if result.SyncedCollections == 0 && len(result.Failed) > 0 {
		errs := make([]error, 0, len(result.Failed))
		for _, err := range result.Failed {
			errs = append(errs, err)
		}
		return result, fmt.Errorf("all collections failed: %w", errors.Join(errs...))
	}
	return result, nil
}

// SyncCollection загружает коллекцию и заменяет содержимое хранилища.
// FetchError трактуется как пустой результат: хранилище не меняется, ошибка возвращается для учета.
func (s *service) SyncCollection(ctx context.Context, collection string) (int, error) {
	st, ok := s.stores(collection)
	if !ok {
		return 0, fmt.Errorf("sync %s: no local store", collection)
	}

	fetchedAt := s.now()
	records, err := s.apiClient.List(ctx, collection)
	if err != nil {
		var fetchErr *httpClient.FetchError
		if errors.As(err, &fetchErr) {
			s.logger.Warn("Fetch failed, keeping local records", "collection", collection, "error", err)
		}
		return 0, err
	}

	if !s.exec(func() { st.ReplaceAll(records, fetchedAt) }) {
		s.logger.Debug("Refetch result dropped, store owner stopped", "collection", collection)
		return 0, nil
	}

	s.logger.Debug("Collection synchronized", "collection", collection, "count", len(records))

	if s.metadataStorage != nil {
		if err := s.metadataStorage.SaveLastSyncTime(ctx, collection, fetchedAt); err != nil {
			s.logger.Warn("Failed to save last sync time", "collection", collection, "error", err)
			// Не прерываем синхронизацию из-за ошибки сохранения времени
		}
	}

	return len(records), nil
}

// GetPendingSyncCount возвращает количество optimistic записей, еще не подтвержденных сервером
func (s *service) GetPendingSyncCount(ctx context.Context) (int, error) {
	total := 0
	for _, collection := range s.collections {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		st, ok := s.stores(collection)
		if !ok {
			continue
		}
		total += st.PendingCount()
	}
	return total, nil
}
