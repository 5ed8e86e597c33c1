package cache

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/communitysync/internal/models"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

type recordingInvalidator struct {
	keys []CacheKey
	mu   sync.Mutex
}

func (r *recordingInvalidator) Invalidate(key CacheKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
}

func event(collection string, fields map[string]any) *models.ChangeEvent {
	return &models.ChangeEvent{
		Collection: collection,
		Operation:  models.OperationCreate,
		Record:     models.NewRecord(collection, fields),
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		event *models.ChangeEvent
		name  string
		want  []CacheKey
	}{
		{
			name:  "users",
			event: event(models.CollectionUsers, map[string]any{"id": "u1"}),
			want:  []CacheKey{"users"},
		},
		{
			name:  "groups",
			event: event(models.CollectionGroups, map[string]any{"id": "g1"}),
			want:  []CacheKey{"groups"},
		},
		{
			name:  "posts",
			event: event(models.CollectionPosts, map[string]any{"id": "p1"}),
			want:  []CacheKey{"posts"},
		},
		{
			name:  "comments with post",
			event: event(models.CollectionComments, map[string]any{"id": "c1", "postId": "p1"}),
			want:  []CacheKey{"comments", "posts/p1/comment_count"},
		},
		{
			name:  "comments without post",
			event: event(models.CollectionComments, map[string]any{"id": "c1"}),
			want:  []CacheKey{"comments"},
		},
		{
			name:  "profiles",
			event: event(models.CollectionProfiles, map[string]any{"id": "u1"}),
			want:  []CacheKey{"profiles"},
		},
		{
			name:  "memberships",
			event: event(models.CollectionMemberships, map[string]any{"id": "m1", "groupId": "g1"}),
			want:  []CacheKey{"memberships", "groups/g1/member_count"},
		},
		{
			name:  "likes",
			event: event(models.CollectionLikes, map[string]any{"id": "l1", "postId": "p9"}),
			want:  []CacheKey{"likes", "posts/p9/like_count"},
		},
		{
			name:  "friendships",
			event: event(models.CollectionFriendships, map[string]any{"id": "f1"}),
			want:  []CacheKey{"friendships"},
		},
		{
			name:  "direct messages",
			event: event(models.CollectionDirectMessages, map[string]any{"id": "d1"}),
			want:  []CacheKey{"direct_messages"},
		},
		{
			name:  "messages",
			event: event(models.CollectionMessages, map[string]any{"id": "m1"}),
			want:  []CacheKey{"messages"},
		},
		{
			name:  "delete without payload",
			event: &models.ChangeEvent{Collection: models.CollectionLikes, Operation: models.OperationDelete},
			want:  []CacheKey{"likes"},
		},
		{
			name:  "unknown collection",
			event: event("widgets", map[string]any{"id": "w1"}),
			want:  nil,
		},
		{
			name:  "nil event",
			event: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.event)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoute_CoversAllKnownCollections(t *testing.T) {
	for _, c := range models.Collections() {
		keys := Route(event(c, map[string]any{"id": "x"}))
		assert.Contains(t, keys, CollectionKey(c), "collection %s", c)
	}
}

func TestRoute_Deterministic(t *testing.T) {
	ev := event(models.CollectionComments, map[string]any{"id": "c1", "postId": "p1"})
	first := Route(ev)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Route(ev))
	}
}

func TestRouter_Dispatch(t *testing.T) {
	inv := &recordingInvalidator{}
	router := NewRouter(inv, testLogger)

	keys := router.Dispatch(event(models.CollectionLikes, map[string]any{"id": "l1", "postId": "p1"}))
	assert.Equal(t, []CacheKey{"likes", "posts/p1/like_count"}, keys)
	assert.Equal(t, keys, inv.keys)

	// неизвестная коллекция ничего не инвалидирует и не паникует
	assert.NotPanics(t, func() {
		assert.Empty(t, router.Dispatch(event("unknown", nil)))
	})
	assert.Len(t, inv.keys, 2)
}

func TestCacheKey_Collection(t *testing.T) {
	c, ok := CollectionKey(models.CollectionPosts).Collection()
	assert.True(t, ok)
	assert.Equal(t, models.CollectionPosts, c)

	_, ok = LikeCountKey("p1").Collection()
	assert.False(t, ok)

	_, ok = CacheKey("").Collection()
	assert.False(t, ok)

	assert.Equal(t, CacheKey("groups/g1/member_count"), MemberCountKey("g1"))
	assert.Equal(t, CacheKey("posts/p1/comment_count"), CommentCountKey("p1"))
}
