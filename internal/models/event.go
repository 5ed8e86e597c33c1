package models

import "time"

// Operation тип изменения, пришедшего по push-каналу
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid проверяет, что операция входит в известный набор
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// Имена коллекций, которые публикует сервер
const (
	CollectionUsers          = "users"
	CollectionGroups         = "groups"
	CollectionPosts          = "posts"
	CollectionComments       = "comments"
	CollectionProfiles       = "profiles"
	CollectionMemberships    = "memberships"
	CollectionLikes          = "likes"
	CollectionFriendships    = "friendships"
	CollectionDirectMessages = "direct_messages"
	CollectionMessages       = "messages"
)

// Collections возвращает все известные коллекции в фиксированном порядке
func Collections() []string {
	return []string{
		CollectionUsers,
		CollectionGroups,
		CollectionPosts,
		CollectionComments,
		CollectionProfiles,
		CollectionMemberships,
		CollectionLikes,
		CollectionFriendships,
		CollectionDirectMessages,
		CollectionMessages,
	}
}

// IsKnownCollection проверяет, что имя коллекции известно клиенту
func IsKnownCollection(name string) bool {
	for _, c := range Collections() {
		if c == name {
			return true
		}
	}
	return false
}

// ChangeEvent представляет одно уведомление об изменении, полученное по push-каналу.
// Событие неизменяемо и живет только во время обработки фрейма.
type ChangeEvent struct {
	ReceivedAt time.Time
	Record     *Record
	Collection string
	Operation  Operation
}

// RecordID возвращает ID затронутой записи или пустую строку
func (e *ChangeEvent) RecordID() string {
	if e.Record == nil {
		return ""
	}
	return e.Record.ID
}
