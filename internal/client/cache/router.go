// Package cache переводит change-события в инвалидацию ключей кэша запросов.
package cache

import (
	"log/slog"
	"strings"

	"github.com/iudanet/communitysync/internal/models"
)

// CacheKey идентификатор кэшированного запроса: имя коллекции
// или производный ключ вида posts/<postId>/like_count
type CacheKey string

const (
	suffixCommentCount = "comment_count"
	suffixMemberCount  = "member_count"
	suffixLikeCount    = "like_count"
)

// CollectionKey ключ списка коллекции
func CollectionKey(collection string) CacheKey {
	return CacheKey(collection)
}

// CommentCountKey производный ключ счетчика комментариев поста
func CommentCountKey(postID string) CacheKey {
	return derivedKey(models.CollectionPosts, postID, suffixCommentCount)
}

// LikeCountKey производный ключ счетчика лайков поста
func LikeCountKey(postID string) CacheKey {
	return derivedKey(models.CollectionPosts, postID, suffixLikeCount)
}

// MemberCountKey производный ключ счетчика участников группы
func MemberCountKey(groupID string) CacheKey {
	return derivedKey(models.CollectionGroups, groupID, suffixMemberCount)
}

func derivedKey(collection, id, suffix string) CacheKey {
	return CacheKey(collection + "/" + id + "/" + suffix)
}

// Collection возвращает имя коллекции, если ключ является ключом списка коллекции
func (k CacheKey) Collection() (string, bool) {
	s := string(k)
	if s == "" || strings.Contains(s, "/") {
		return "", false
	}
	return s, true
}

// derivation описывает производный ключ: поле записи с родительским id и шаблон ключа
type derivation struct {
	key         func(parentID string) CacheKey
	parentField string
}

type route struct {
	derived []derivation
	keys    []CacheKey
}

// routingTable статическая таблица: коллекция -> ключи кэша.
// Порядок ключей детерминирован: сначала ключ коллекции, затем производные.
var routingTable = map[string]route{
	models.CollectionUsers:    {keys: []CacheKey{models.CollectionUsers}},
	models.CollectionGroups:   {keys: []CacheKey{models.CollectionGroups}},
	models.CollectionPosts:    {keys: []CacheKey{models.CollectionPosts}},
	models.CollectionProfiles: {keys: []CacheKey{models.CollectionProfiles}},
	models.CollectionComments: {
		keys:    []CacheKey{models.CollectionComments},
		derived: []derivation{{parentField: "postId", key: CommentCountKey}},
	},
	models.CollectionMemberships: {
		keys:    []CacheKey{models.CollectionMemberships},
		derived: []derivation{{parentField: "groupId", key: MemberCountKey}},
	},
	models.CollectionLikes: {
		keys:    []CacheKey{models.CollectionLikes},
		derived: []derivation{{parentField: "postId", key: LikeCountKey}},
	},
	models.CollectionFriendships:    {keys: []CacheKey{models.CollectionFriendships}},
	models.CollectionDirectMessages: {keys: []CacheKey{models.CollectionDirectMessages}},
	models.CollectionMessages:       {keys: []CacheKey{models.CollectionMessages}},
}

// Invalidator помечает ключ кэша устаревшим
type Invalidator interface {
	Invalidate(key CacheKey)
}

// Router направляет change-события в инвалидацию кэша
type Router struct {
	invalidator Invalidator
	logger      *slog.Logger
}

// NewRouter создает роутер инвалидаций
func NewRouter(invalidator Invalidator, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{invalidator: invalidator, logger: logger}
}

// Route возвращает множество ключей, затронутых событием.
// Неизвестная коллекция дает пустое множество.
func Route(event *models.ChangeEvent) []CacheKey {
	if event == nil {
		return nil
	}

	r, ok := routingTable[event.Collection]
	if !ok {
		return nil
	}

	keys := make([]CacheKey, 0, len(r.keys)+len(r.derived))
	keys = append(keys, r.keys...)

	if event.Record == nil {
		return keys
	}
	for _, d := range r.derived {
		parentID := event.Record.String(d.parentField)
		if parentID == "" {
			continue
		}
		keys = append(keys, d.key(parentID))
	}
	return keys
}

// Route возвращает ключи, затронутые событием
func (r *Router) Route(event *models.ChangeEvent) []CacheKey {
	return Route(event)
}

// Dispatch инвалидирует все ключи, затронутые событием, и возвращает их
func (r *Router) Dispatch(event *models.ChangeEvent) []CacheKey {
	keys := Route(event)
	if len(keys) == 0 {
		if event != nil {
			r.logger.Debug("No cache keys for collection", "collection", event.Collection)
		}
		return nil
	}

	for _, key := range keys {
		r.invalidator.Invalidate(key)
	}
	r.logger.Debug("Cache keys invalidated",
		"collection", event.Collection,
		"operation", event.Operation,
		"keys", keys,
	)
	return keys
}
