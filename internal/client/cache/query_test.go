package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCache_InvalidateBumpsVersionAndNotifies(t *testing.T) {
	c := NewQueryCache(context.Background(), testLogger)

	var mu sync.Mutex
	var notified []CacheKey
	c.Subscribe(func(key CacheKey) {
		mu.Lock()
		defer mu.Unlock()
		notified = append(notified, key)
	})

	assert.Equal(t, uint64(0), c.Version("posts"))

	c.Invalidate("posts")
	c.Invalidate("posts")
	c.Invalidate(LikeCountKey("p1"))

	assert.Equal(t, uint64(2), c.Version("posts"))
	assert.Equal(t, uint64(1), c.Version(LikeCountKey("p1")))
	assert.Equal(t, uint64(2), c.Status("posts").Version)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []CacheKey{"posts", "posts", "posts/p1/like_count"}, notified)
}

func TestQueryCache_InvalidateTriggersRefetch(t *testing.T) {
	c := NewQueryCache(context.Background(), testLogger)

	var calls atomic.Int32
	c.Register("messages", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	c.Invalidate("messages")
	c.Wait()

	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	status := c.Status("messages")
	assert.False(t, status.Stale)
	assert.False(t, status.FetchedAt.IsZero())
	assert.NoError(t, status.Err)
}

func TestQueryCache_ConcurrentInvalidationsCollapse(t *testing.T) {
	c := NewQueryCache(context.Background(), testLogger)

	release := make(chan struct{})
	started := make(chan struct{}, 16)
	var calls atomic.Int32
	c.Register("posts", func(ctx context.Context) error {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return nil
	})

	c.Invalidate("posts")
	<-started

	// Пока первая загрузка висит, приходят еще инвалидации
	for i := 0; i < 10; i++ {
		c.Invalidate("posts")
	}
	// даем горутинам присоединиться к загрузке
	time.Sleep(50 * time.Millisecond)
	close(release)
	c.Wait()

	// Одна загрузка до инвалидаций и не больше нескольких догоняющих после них
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
	assert.Less(t, calls.Load(), int32(11))
	assert.False(t, c.Status("posts").Stale)
}

func TestQueryCache_RefetchError(t *testing.T) {
	c := NewQueryCache(context.Background(), testLogger)
	fetchErr := errors.New("network down")

	c.Register("likes", func(ctx context.Context) error {
		return fetchErr
	})

	c.Invalidate("likes")
	c.Wait()

	status := c.Status("likes")
	assert.True(t, status.Stale)
	assert.ErrorIs(t, status.Err, fetchErr)
}

func TestQueryCache_NoRefetchAfterContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewQueryCache(ctx, testLogger)

	var calls atomic.Int32
	c.Register("users", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	cancel()
	c.Invalidate("users")
	c.Wait()

	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, uint64(1), c.Version("users"))
}

func TestQueryCache_Prime(t *testing.T) {
	c := NewQueryCache(context.Background(), testLogger)

	var mu sync.Mutex
	loaded := make(map[CacheKey]bool)
	for _, key := range []CacheKey{"users", "posts", "comments"} {
		c.Register(key, func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			loaded[key] = true
			return nil
		})
	}
	// ключ без загрузчика не мешает prime
	c.Invalidate(LikeCountKey("p1"))

	require.NoError(t, c.Prime(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, loaded, 3)
	for _, key := range []CacheKey{"users", "posts", "comments"} {
		assert.False(t, c.Status(key).Stale, "key %s", key)
	}
}

func TestQueryCache_PrimeError(t *testing.T) {
	c := NewQueryCache(context.Background(), testLogger)
	c.Register("users", func(ctx context.Context) error { return nil })
	c.Register("posts", func(ctx context.Context) error { return errors.New("boom") })

	err := c.Prime(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prime posts")
}

func TestQueryCache_InvalidateAll(t *testing.T) {
	c := NewQueryCache(context.Background(), testLogger)

	var calls atomic.Int32
	fetch := func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}
	c.Register("users", fetch)
	c.Register("posts", fetch)
	require.NoError(t, c.Prime(context.Background()))
	calls.Store(0)

	c.InvalidateAll()
	c.Wait()

	assert.Equal(t, []CacheKey{"posts", "users"}, c.Keys())
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, uint64(1), c.Version("users"))
}

func TestQueryCache_RefreshWithoutFetcher(t *testing.T) {
	c := NewQueryCache(context.Background(), testLogger)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, c.Refresh(ctx, "unknown"))
}

func TestQueryCache_DerivedKeysAreNotRetained(t *testing.T) {
	c := NewQueryCache(context.Background(), testLogger)

	var calls atomic.Int32
	c.Register("posts", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, c.Prime(context.Background()))
	calls.Store(0)

	for _, id := range []string{"p1", "p2", "p3"} {
		c.Invalidate(LikeCountKey(id))
		c.Invalidate(CommentCountKey(id))
	}
	c.Wait()

	assert.Equal(t, []CacheKey{"posts"}, c.Keys())
	assert.Equal(t, uint64(1), c.Version(LikeCountKey("p2")))
	assert.False(t, c.Status(LikeCountKey("p2")).Stale)

	// InvalidateAll перезагружает только ключи с загрузчиком
	c.InvalidateAll()
	c.Wait()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, uint64(1), c.Version(LikeCountKey("p2")))

	// версия производного ключа сохраняется при последующей регистрации
	c.Register(LikeCountKey("p2"), func(ctx context.Context) error { return nil })
	assert.Equal(t, uint64(1), c.Version(LikeCountKey("p2")))
	assert.True(t, c.Status(LikeCountKey("p2")).Stale)
	assert.Len(t, c.Keys(), 2)
}
