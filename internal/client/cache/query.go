package cache

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// maxRefetchRounds ограничивает повторные загрузки ключа, инвалидированного во время загрузки
const maxRefetchRounds = 3

// FetchFunc загружает данные ключа. Результат сохраняет сам fetcher (например, в store).
type FetchFunc func(ctx context.Context) error

// KeyStatus состояние ключа кэша
type KeyStatus struct {
	FetchedAt time.Time
	Err       error
	Version   uint64
	Stale     bool
}

type queryEntry struct {
	fetch     FetchFunc
	fetchedAt time.Time
	lastErr   error
	version   uint64
	stale     bool
}

// QueryCache кэш запросов с версионированием ключей.
// Инвалидация помечает ключ устаревшим и запускает фоновую перезагрузку,
// параллельные инвалидации одного ключа схлопываются в одну загрузку.
type QueryCache struct {
	ctx         context.Context
	logger      *slog.Logger
	entries     map[CacheKey]*queryEntry
	versions    map[CacheKey]uint64 // версии ключей без загрузчика (производные счетчики)
	group       singleflight.Group
	subscribers []func(CacheKey)
	wg          sync.WaitGroup
	mu          sync.Mutex
}

var _ Invalidator = (*QueryCache)(nil)

// NewQueryCache создает кэш. ctx ограничивает время жизни фоновых загрузок.
func NewQueryCache(ctx context.Context, logger *slog.Logger) *QueryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryCache{
		ctx:     ctx,
		logger:  logger,
		entries:  make(map[CacheKey]*queryEntry),
		versions: make(map[CacheKey]uint64),
	}
}

// Register регистрирует загрузчик для ключа. Новый ключ считается устаревшим до первой загрузки.
func (c *QueryCache) Register(key CacheKey, fetch FetchFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &queryEntry{version: c.versions[key]}
		delete(c.versions, key)
		c.entries[key] = e
	}
	e.fetch = fetch
	if e.fetchedAt.IsZero() {
		e.stale = true
	}
}

// Subscribe регистрирует наблюдателя инвалидаций
func (c *QueryCache) Subscribe(fn func(CacheKey)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Invalidate увеличивает версию ключа и уведомляет наблюдателей.
// Зарегистрированный ключ помечается устаревшим и перезагружается в фоне,
// для ключа без загрузчика запись в кэше не создается.
func (c *QueryCache) Invalidate(key CacheKey) {
	c.mu.Lock()
	hasFetcher := false
	if e, ok := c.entries[key]; ok {
		e.version++
		e.stale = true
		hasFetcher = e.fetch != nil
	} else {
		c.versions[key]++
	}
	subscribers := slices.Clone(c.subscribers)
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(key)
	}

	if !hasFetcher || c.ctx.Err() != nil {
		return
	}

	c.wg.Add(1)
	go c.refetch(key)
}

// InvalidateAll инвалидирует все зарегистрированные ключи (catch-up после переподключения)
func (c *QueryCache) InvalidateAll() {
	for _, key := range c.Keys() {
		c.Invalidate(key)
	}
}

// Refresh синхронно загружает ключ. Параллельные вызовы для одного ключа разделяют одну загрузку.
func (c *QueryCache) Refresh(ctx context.Context, key CacheKey) error {
	_, err, _ := c.group.Do(string(key), func() (any, error) {
		return nil, c.fetchOnce(ctx, key)
	})
	return err
}

// Prime параллельно загружает все зарегистрированные ключи
func (c *QueryCache) Prime(ctx context.Context) error {
	c.mu.Lock()
	keys := make([]CacheKey, 0, len(c.entries))
	for key, e := range c.entries {
		if e.fetch != nil {
			keys = append(keys, key)
		}
	}
	c.mu.Unlock()
	slices.Sort(keys)

	g, gctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			if err := c.Refresh(gctx, key); err != nil {
				return fmt.Errorf("prime %s: %w", key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Version возвращает текущую версию ключа (0 для неизвестного)
func (c *QueryCache) Version(key CacheKey) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.version
	}
	return c.versions[key]
}

// Status возвращает состояние ключа
func (c *QueryCache) Status(key CacheKey) KeyStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return KeyStatus{Version: c.versions[key]}
	}
	return KeyStatus{
		FetchedAt: e.fetchedAt,
		Err:       e.lastErr,
		Version:   e.version,
		Stale:     e.stale,
	}
}

// Keys возвращает зарегистрированные ключи в отсортированном порядке
func (c *QueryCache) Keys() []CacheKey {
	c.mu.Lock()
	keys := make([]CacheKey, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.mu.Unlock()
	slices.Sort(keys)
	return keys
}

// Wait ожидает завершения фоновых загрузок
func (c *QueryCache) Wait() {
	c.wg.Wait()
}

func (c *QueryCache) refetch(key CacheKey) {
	defer c.wg.Done()

	for round := 0; round < maxRefetchRounds; round++ {
		// Другая загрузка, начатая после инвалидации, уже обновила ключ.
		// Ключ мог быть инвалидирован, пока шла загрузка, к которой мы присоединились.
		if !c.Status(key).Stale {
			return
		}
		if err := c.Refresh(c.ctx, key); err != nil {
			if c.ctx.Err() == nil {
				c.logger.Warn("Refetch failed", "key", string(key), "error", err)
			}
			return
		}
	}
}

func (c *QueryCache) fetchOnce(ctx context.Context, key CacheKey) error {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.fetch == nil {
		c.mu.Unlock()
		return nil
	}
	fetch := e.fetch
	version := e.version
	c.mu.Unlock()

	err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	e.lastErr = err
	if err != nil {
		return err
	}
	e.fetchedAt = time.Now()
	// Если ключ инвалидировали во время загрузки, он остается устаревшим
	if e.version == version {
		e.stale = false
	}
	return nil
}
