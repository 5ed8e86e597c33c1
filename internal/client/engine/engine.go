// Package engine связывает push-канал, локальные хранилища коллекций, роутер инвалидаций,
// кэш запросов и reconciler исходящих записей в один движок синхронизации.
//
// Все обработчики (фреймы, смены состояния канала, применение результатов REST)
// выполняются на одной горутине цикла событий до завершения, в порядке поступления.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/iudanet/communitysync/internal/client/api"
	"github.com/iudanet/communitysync/internal/client/cache"
	"github.com/iudanet/communitysync/internal/client/reconcile"
	"github.com/iudanet/communitysync/internal/client/storage"
	"github.com/iudanet/communitysync/internal/client/store"
	"github.com/iudanet/communitysync/internal/client/sync"
	"github.com/iudanet/communitysync/internal/feed"
	"github.com/iudanet/communitysync/internal/models"
)

const defaultQueueSize = 256

var (
	// ErrNotStarted движок еще не запущен
	ErrNotStarted = errors.New("engine is not started")
	// ErrStopped движок остановлен
	ErrStopped = errors.New("engine is stopped")
	// ErrAlreadyStarted повторный Start
	ErrAlreadyStarted = errors.New("engine is already started")
)

// Connection push-канал сессии. Реализуется realtime.Manager.
type Connection interface {
	Open(url string) error
	Close()
	OnStateChange(fn func(models.ConnectionState))
	OnMessage(fn func([]byte))
	State() models.ConnectionState
}

// Config параметры движка
type Config struct {
	URL         string   // URL push-канала; пустой URL - работа только через REST
	Collections []string // коллекции, которые ведет движок; по умолчанию все известные
	QueueSize   int
}

// Engine движок синхронизации одной сессии
type Engine struct {
	conn       Connection
	client     api.ClientAPI
	cache      *cache.QueryCache
	router     *cache.Router
	reconciler *reconcile.Reconciler
	syncer     sync.Service
	logger     *slog.Logger
	now        func() time.Time
	cancel     context.CancelFunc
	stores     map[string]*store.RecordStore
	tasks      chan func()
	done       chan struct{}
	loopDone   chan struct{}

	stateObservers []func(models.ConnectionState)
	eventObservers []func(*models.ChangeEvent)

	cfg Config

	// принадлежат горутине цикла
	lastState    models.ConnectionState
	reconnecting bool

	mu       gosync.Mutex
	started  bool
	stopped  bool
	stopOnce gosync.Once
}

// Option настраивает Engine
type Option func(*Engine)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New создает движок. persist может быть nil: тогда записи живут только в памяти.
func New(cfg Config, conn Connection, client api.ClientAPI, persist storage.Storage, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Collections) == 0 {
		cfg.Collections = models.Collections()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		cfg:      cfg,
		conn:     conn,
		client:   client,
		logger:   logger,
		now:      time.Now,
		cancel:   cancel,
		stores:   make(map[string]*store.RecordStore, len(cfg.Collections)),
		tasks:    make(chan func(), cfg.QueueSize),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	var records storage.RecordStorage
	var metadata storage.MetadataStorage
	if persist != nil {
		records = persist
		metadata = persist
	}
	for _, c := range cfg.Collections {
		e.stores[c] = store.New(c, records, logger)
	}

	e.cache = cache.NewQueryCache(ctx, logger)
	e.router = cache.NewRouter(e.cache, logger)
	e.syncer = sync.NewService(client, e.syncStore, cfg.Collections, metadata, e.execute, logger)
	e.reconciler = reconcile.New(client, e.reconcileStore, logger,
		reconcile.WithExecutor(e.execute),
		reconcile.WithClock(e.now),
	)

	for _, c := range cfg.Collections {
		collection := c
		e.cache.Register(cache.CollectionKey(collection), func(ctx context.Context) error {
			_, err := e.syncer.SyncCollection(ctx, collection)
			return err
		})
	}

	return e
}

// OnState регистрирует наблюдателя состояния канала. Вызывается на горутине цикла.
func (e *Engine) OnState(fn func(models.ConnectionState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stateObservers = append(e.stateObservers, fn)
}

// OnEvent регистрирует наблюдателя примененных change-событий. Вызывается на горутине цикла.
// Наблюдатель не должен синхронно вызывать Submit/Update/Delete.
func (e *Engine) OnEvent(fn func(*models.ChangeEvent)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eventObservers = append(e.eventObservers, fn)
}

// OnChange регистрирует наблюдателя изменений всех хранилищ
func (e *Engine) OnChange(fn func(collection string)) {
	for _, s := range e.stores {
		s.OnChange(fn)
	}
}

// Start загружает сохраненные записи, запускает цикл событий и открывает push-канал
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return ErrStopped
	}
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.started = true
	e.mu.Unlock()

	for c, s := range e.stores {
		if err := s.Load(ctx); err != nil {
			e.logger.Warn("Failed to load persisted records", "collection", c, "error", err)
		}
	}

	go e.run()

	e.conn.OnStateChange(func(state models.ConnectionState) {
		e.post(func() { e.handleState(state) })
	})
	e.conn.OnMessage(func(raw []byte) {
		received := e.now()
		e.post(func() { e.handleFrame(raw, received) })
	})

	if e.cfg.URL == "" {
		e.logger.Info("Engine started without push channel")
		return nil
	}
	if err := e.conn.Open(e.cfg.URL); err != nil {
		return fmt.Errorf("failed to open push channel: %w", err)
	}
	e.logger.Info("Engine started", "url", e.cfg.URL, "collections", len(e.stores))
	return nil
}

// Stop закрывает канал и останавливает цикл. Ответы REST, пришедшие после остановки,
// игнорируются. Повторный вызов ничего не делает.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		started := e.started
		e.stopped = true
		e.mu.Unlock()

		e.reconciler.Stop()
		if started {
			e.conn.Close()
		}
		e.cancel()
		close(e.done)
		if started {
			<-e.loopDone
		}
		e.cache.Wait()

		for _, s := range e.stores {
			s.Close()
		}
		e.logger.Info("Engine stopped")
	})
}

// State возвращает текущее состояние push-канала
func (e *Engine) State() models.ConnectionState {
	return e.conn.State()
}

// Store возвращает хранилище коллекции
func (e *Engine) Store(collection string) (*store.RecordStore, bool) {
	s, ok := e.stores[collection]
	return s, ok
}

// Snapshot возвращает упорядоченную копию записей коллекции
func (e *Engine) Snapshot(collection string) ([]*models.Record, bool) {
	s, ok := e.stores[collection]
	if !ok {
		return nil, false
	}
	return s.Snapshot(), true
}

// Cache возвращает кэш запросов движка
func (e *Engine) Cache() *cache.QueryCache {
	return e.cache
}

// Sync последовательно загружает все коллекции через REST
func (e *Engine) Sync(ctx context.Context) (*sync.SyncResult, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}
	return e.syncer.Sync(ctx)
}

// Prime параллельно загружает все коллекции через кэш запросов
func (e *Engine) Prime(ctx context.Context) error {
	if err := e.checkRunning(); err != nil {
		return err
	}
	return e.cache.Prime(ctx)
}

// Refresh синхронно перезагружает одну коллекцию. Параллельная инвалидация того же ключа
// разделяет с ним одну загрузку.
func (e *Engine) Refresh(ctx context.Context, collection string) error {
	if err := e.checkRunning(); err != nil {
		return err
	}
	if _, ok := e.stores[collection]; !ok {
		return fmt.Errorf("refresh %s: %w", collection, reconcile.ErrUnknownCollection)
	}
	return e.cache.Refresh(ctx, cache.CollectionKey(collection))
}

// PendingCount возвращает количество неподтвержденных optimistic записей
func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	return e.syncer.GetPendingSyncCount(ctx)
}

// Submit отправляет новую запись через reconciler
func (e *Engine) Submit(ctx context.Context, collection string, draft map[string]any) (*models.Record, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}
	return e.reconciler.Submit(ctx, collection, draft)
}

// Update изменяет запись через reconciler
func (e *Engine) Update(ctx context.Context, collection, id string, changes map[string]any) (*models.Record, error) {
	if err := e.checkRunning(); err != nil {
		return nil, err
	}
	return e.reconciler.Update(ctx, collection, id, changes)
}

// Delete удаляет запись через reconciler
func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	if err := e.checkRunning(); err != nil {
		return err
	}
	return e.reconciler.Delete(ctx, collection, id)
}

func (e *Engine) checkRunning() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	if !e.started {
		return ErrNotStarted
	}
	return nil
}

// run цикл событий
func (e *Engine) run() {
	defer close(e.loopDone)
	for {
		select {
		case fn := <-e.tasks:
			fn()
		case <-e.done:
			return
		}
	}
}

// post ставит обработчик в очередь цикла. false если движок остановлен.
func (e *Engine) post(fn func()) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.tasks <- fn:
		return true
	case <-e.done:
		return false
	}
}

// execute выполняет fn на горутине цикла и ждет завершения.
// Нельзя вызывать с самой горутины цикла.
func (e *Engine) execute(fn func()) bool {
	e.mu.Lock()
	running := e.started && !e.stopped
	e.mu.Unlock()
	if !running {
		return false
	}

	finished := make(chan struct{})
	if !e.post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-e.loopDone:
		// цикл мог успеть выполнить задачу перед выходом
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

func (e *Engine) handleFrame(raw []byte, received time.Time) {
	event, err := feed.DecodeAt(raw, received)
	if err != nil {
		var decodeErr *feed.DecodeError
		if errors.As(err, &decodeErr) {
			e.logger.Warn("Dropping malformed frame", "error", err)
		}
		return
	}

	if s, ok := e.stores[event.Collection]; ok && event.Record != nil {
		switch event.Operation {
		case models.OperationCreate, models.OperationUpdate:
			s.Merge(event.Record)
		case models.OperationDelete:
			s.RemoveByID(event.Record.ID)
		}
	}

	keys := e.router.Dispatch(event)
	e.logger.Debug("Change event applied",
		"collection", event.Collection,
		"operation", event.Operation,
		"id", event.RecordID(),
		"keys", len(keys),
	)

	e.mu.Lock()
	observers := e.eventObservers
	e.mu.Unlock()
	for _, fn := range observers {
		fn(event)
	}
}

func (e *Engine) handleState(state models.ConnectionState) {
	previous := e.lastState
	e.lastState = state

	switch state {
	case models.StateReconnecting:
		e.reconnecting = true
	case models.StateOpen:
		if e.reconnecting {
			e.reconnecting = false
			e.logger.Info("Push channel restored, refetching all collections")
			e.cache.InvalidateAll()
		}
	case models.StateClosed:
		e.reconnecting = false
	}

	e.logger.Debug("Connection state changed", "from", previous, "to", state)

	e.mu.Lock()
	observers := e.stateObservers
	e.mu.Unlock()
	for _, fn := range observers {
		fn(state)
	}
}

func (e *Engine) syncStore(collection string) (sync.RecordStore, bool) {
	s, ok := e.stores[collection]
	if !ok {
		return nil, false
	}
	return s, true
}

func (e *Engine) reconcileStore(collection string) (reconcile.RecordStore, bool) {
	s, ok := e.stores[collection]
	if !ok {
		return nil, false
	}
	return s, true
}
