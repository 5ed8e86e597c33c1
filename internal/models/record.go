package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"time"
)

// Имена полей, которые сервер и клиент используют в JSON записях
const (
	FieldID          = "id"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldTimestamp   = "timestamp"
	FieldClientToken = "clientToken"
)

// Record представляет доменную запись коллекции (сообщение, пост, комментарий, дружба и т.д.).
// Сервер присылает записи как произвольные JSON объекты, поэтому полный payload хранится в Fields,
// а поля, нужные для синхронизации, продублированы в типизированном виде.
type Record struct {
	CreatedAt  time.Time      // CreatedAt серверное время создания (zero если отсутствует или не парсится)
	UpdatedAt  time.Time      // UpdatedAt время последнего изменения, используется для LWW
	ReceivedAt time.Time      // ReceivedAt локальное время получения записи, вторичный ключ сортировки
	Fields     map[string]any // Fields полный JSON объект записи
	ID         string         // ID серверный идентификатор (или placeholder для optimistic записи)
	Collection string         // Collection имя коллекции, которой принадлежит запись
	Token      string         // Token correlation token, выданный клиентом при отправке
	Pending    bool           // Pending true для optimistic записи, еще не подтвержденной сервером
}

// NewRecord создает запись из JSON объекта и извлекает служебные поля.
// Некорректные даты не приводят к ошибке: соответствующее поле остается нулевым.
func NewRecord(collection string, fields map[string]any) *Record {
	if fields == nil {
		fields = make(map[string]any)
	}

	r := &Record{
		Collection: collection,
		Fields:     fields,
		ID:         stringField(fields, FieldID),
		Token:      stringField(fields, FieldClientToken),
		UpdatedAt:  ParseTime(fields[FieldUpdatedAt]),
	}

	// Чат-сообщения присылают timestamp вместо createdAt
	r.CreatedAt = ParseTime(fields[FieldCreatedAt])
	if r.CreatedAt.IsZero() {
		r.CreatedAt = ParseTime(fields[FieldTimestamp])
	}

	return r
}

// SortTime возвращает время, по которому запись упорядочивается в хранилище:
// CreatedAt, а если его нет - ReceivedAt. Запись без обоих времен считается самой ранней.
func (r *Record) SortTime() time.Time {
	if !r.CreatedAt.IsZero() {
		return r.CreatedAt
	}
	return r.ReceivedAt
}

// Supersedes определяет, должна ли запись r заменить existing с тем же ID.
// Last-Write-Wins по UpdatedAt: запись отклоняется только если она строго старее.
// Если у одной из записей нет UpdatedAt, побеждает более поздняя по прибытию (r).
func (r *Record) Supersedes(existing *Record) bool {
	if existing == nil {
		return true
	}
	if r.UpdatedAt.IsZero() || existing.UpdatedAt.IsZero() {
		return true
	}
	return !r.UpdatedAt.Before(existing.UpdatedAt)
}

// String возвращает строковое поле записи или пустую строку
func (r *Record) String(key string) string {
	return stringField(r.Fields, key)
}

// Decode декодирует поля записи в типизированную структуру (Post, Comment, ...)
func (r *Record) Decode(v any) error {
	data, err := json.Marshal(r.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal record fields: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode record %s: %w", r.ID, err)
	}
	return nil
}

// Clone создает глубокую копию записи
func (r *Record) Clone() *Record {
	return &Record{
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		ReceivedAt: r.ReceivedAt,
		Fields:     cloneMap(r.Fields),
		ID:         r.ID,
		Collection: r.Collection,
		Token:      r.Token,
		Pending:    r.Pending,
	}
}

// MarshalJSON сериализует запись как исходный JSON объект
func (r *Record) MarshalJSON() ([]byte, error) {
	fields := maps.Clone(r.Fields)
	if fields == nil {
		fields = make(map[string]any)
	}
	if r.ID != "" {
		fields[FieldID] = r.ID
	}
	return json.Marshal(fields)
}

// UnmarshalJSON заполняет запись из JSON объекта.
// Collection не входит в payload и должна быть установлена вызывающим кодом.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	collection := r.Collection
	*r = *NewRecord(collection, fields)
	return nil
}

// ParseTime разбирает время из JSON значения.
// Поддерживает ISO-8601 строки и числовые unix-миллисекунды (Date.now() на стороне клиента).
// Возвращает zero time для всего, что не удалось разобрать.
func ParseTime(v any) time.Time {
	switch t := v.(type) {
	case string:
		if t == "" {
			return time.Time{}
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
		if ms, err := strconv.ParseInt(t, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
	case float64:
		if t > 0 {
			return time.UnixMilli(int64(t))
		}
	case json.Number:
		if ms, err := t.Int64(); err == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
	}
	return time.Time{}
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		// некоторые коллекции используют числовые id
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
