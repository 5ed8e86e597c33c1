// Package store содержит локальное хранилище записей коллекции: упорядоченное,
// без дубликатов по ID, единственный источник данных для рендеринга.
package store

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/iudanet/communitysync/internal/client/storage"
	"github.com/iudanet/communitysync/internal/models"
)

// entry элемент хранилища. seq - порядковый номер первого прибытия записи,
// сохраняется при замене и разрешает равенство времен в пользу более раннего прибытия.
type entry struct {
	record *models.Record
	seq    uint64
}

// RecordStore упорядоченная коллекция записей одной коллекции сервера.
// Мутации выполняются только через Merge/RemoveByID/Supersede/RemoveByToken/ReplaceAll.
// После любой мутации записи отсортированы по возрастанию SortTime.
type RecordStore struct {
	persist    storage.RecordStorage
	logger     *slog.Logger
	now        func() time.Time
	byID       map[string]*entry
	byToken    map[string]*entry // только pending записи
	collection string
	entries    []*entry
	observers  []func(collection string)
	seq        uint64
	mu         sync.RWMutex
	closed     bool
}

// New создает хранилище для коллекции.
// persist может быть nil - тогда записи живут только в памяти.
func New(collection string, persist storage.RecordStorage, logger *slog.Logger) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{
		collection: collection,
		persist:    persist,
		logger:     logger.With("collection", collection),
		now:        time.Now,
		byID:       make(map[string]*entry),
		byToken:    make(map[string]*entry),
	}
}

// Collection возвращает имя коллекции хранилища
func (s *RecordStore) Collection() string {
	return s.collection
}

// Load загружает ранее сохраненные записи из persistence слоя.
// Ошибка загрузки не мешает работе: хранилище останется пустым до первого refetch.
func (s *RecordStore) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	records, err := s.persist.ListRecords(ctx, s.collection)
	if err != nil {
		return err
	}

	// Порядок загрузки определяет порядок прибытия для равных времен
	slices.SortStableFunc(records, func(a, b *models.Record) int {
		return a.ReceivedAt.Compare(b.ReceivedAt)
	})

	s.mu.Lock()
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		s.putLocked(r.Clone())
	}
	s.sortLocked()
	s.mu.Unlock()

	s.logger.Debug("Loaded persisted records", "count", len(records))
	return nil
}

// OnChange регистрирует наблюдателя, вызываемого после каждой мутации
func (s *RecordStore) OnChange(fn func(collection string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Merge вставляет запись, если ее ID отсутствует, или заменяет существующую.
// Подтвержденная запись, несущая Token ожидающей optimistic записи, вытесняет ее.
// Запись, которая строго старее хранимой по UpdatedAt, игнорируется (LWW).
// Возвращает true, если содержимое хранилища изменилось.
func (s *RecordStore) Merge(record *models.Record) bool {
	if record == nil || record.ID == "" {
		s.logger.Warn("Skipping record without id")
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	r := record.Clone()
	stored, superseded := s.mergeLocked(r)
	s.mu.Unlock()

	if !stored && superseded == "" {
		return false
	}

	if superseded != "" {
		s.logger.Debug("Optimistic record superseded", "placeholder_id", superseded, "id", r.ID)
	}
	// отклоненная по LWW версия не должна попасть на диск, даже если она вытеснила placeholder
	if stored && !r.Pending {
		s.save(r)
	}
	s.notify()
	return true
}

// Supersede заменяет optimistic запись с токеном token подтвержденной записью.
// Если optimistic записи уже нет (например, ее вытеснило push-событие), запись просто мержится.
func (s *RecordStore) Supersede(token string, confirmed *models.Record) bool {
	if confirmed == nil || confirmed.ID == "" {
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	removed := s.removeTokenLocked(token)
	record := confirmed.Clone()
	record.Pending = false
	stored, _ := s.mergeLocked(record)
	s.mu.Unlock()

	if !stored && removed == nil {
		return false
	}

	if stored {
		s.save(record)
	}
	s.notify()
	return true
}

// RemoveByID удаляет запись по ID. Отсутствие записи не ошибка.
func (s *RecordStore) RemoveByID(id string) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	e, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.deleteLocked(e)
	pending := e.record.Pending
	s.mu.Unlock()

	if !pending {
		s.delete(id)
	}
	s.notify()
	return true
}

// RemoveByToken удаляет optimistic запись по correlation token (откат неудачной записи)
func (s *RecordStore) RemoveByToken(token string) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	removed := s.removeTokenLocked(token)
	s.mu.Unlock()

	if removed == nil {
		return false
	}
	s.notify()
	return true
}

// ReplaceAll заменяет содержимое хранилища результатом полного refetch.
// Сохраняются optimistic записи, еще не подтвержденные сервером, и записи,
// полученные после fetchedAt (push-события, пришедшие пока запрос был в полете).
func (s *RecordStore) ReplaceAll(records []*models.Record, fetchedAt time.Time) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	incoming := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ID != "" {
			incoming[r.ID] = true
		}
	}

	// Убираем записи, которых больше нет на сервере
	for _, e := range slices.Clone(s.entries) {
		if incoming[e.record.ID] || e.record.Pending || e.record.ReceivedAt.After(fetchedAt) {
			continue
		}
		s.deleteLocked(e)
	}

	for _, r := range records {
		if r.ID == "" {
			continue
		}
		s.mergeLocked(r.Clone())
	}

	confirmed := make([]*models.Record, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.record.Pending {
			confirmed = append(confirmed, e.record.Clone())
		}
	}
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.ReplaceRecords(context.Background(), s.collection, confirmed); err != nil {
			s.logger.Warn("Failed to persist refetched records", "error", err)
		}
	}
	s.notify()
}

// Snapshot возвращает упорядоченную копию записей на текущий момент.
// Снимок не обновляется: после каждой мутации нужен новый вызов.
func (s *RecordStore) Snapshot() []*models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Record, 0, len(s.entries))
	for _, e := range s.entries {
		result = append(result, e.record.Clone())
	}
	return result
}

// Get возвращает копию записи по ID или nil
func (s *RecordStore) Get(id string) *models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil
	}
	return e.record.Clone()
}

// Len возвращает количество записей, включая optimistic
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// PendingCount возвращает количество неподтвержденных optimistic записей
func (s *RecordStore) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}

// Close отключает хранилище: последующие мутации молча игнорируются.
// Это позволяет безопасно получать ответы REST после остановки движка.
func (s *RecordStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.observers = nil
}

// mergeLocked возвращает (запись сохранена, id вытесненной optimistic записи).
// Placeholder может быть вытеснен и тогда, когда сама запись отклонена по LWW.
func (s *RecordStore) mergeLocked(record *models.Record) (bool, string) {
	if record.ReceivedAt.IsZero() {
		record.ReceivedAt = s.now()
	}
	record.Collection = s.collection

	var superseded string
	if record.Token != "" && !record.Pending {
		if placeholder, ok := s.byToken[record.Token]; ok && placeholder.record.ID != record.ID {
			superseded = placeholder.record.ID
			s.deleteLocked(placeholder)
		}
	}

	if existing, ok := s.byID[record.ID]; ok {
		// Повторное подтверждение не должно возвращать запись в pending
		if existing.record.Pending && existing.record.Token != "" {
			delete(s.byToken, existing.record.Token)
		}
		if !existing.record.Pending && !record.Pending && !record.Supersedes(existing.record) {
			return false, superseded
		}
		// Время получения первой версии сохраняется, чтобы записи без даты не прыгали
		if !existing.record.ReceivedAt.IsZero() && existing.record.ReceivedAt.Before(record.ReceivedAt) {
			record.ReceivedAt = existing.record.ReceivedAt
		}
		existing.record = record
		if record.Pending && record.Token != "" {
			s.byToken[record.Token] = existing
		}
		s.sortLocked()
		return true, superseded
	}

	s.putLocked(record)
	s.sortLocked()
	return true, superseded
}

// putLocked добавляет новую запись в конец порядка прибытия
func (s *RecordStore) putLocked(record *models.Record) {
	s.seq++
	e := &entry{record: record, seq: s.seq}
	s.entries = append(s.entries, e)
	s.byID[record.ID] = e
	if record.Pending && record.Token != "" {
		s.byToken[record.Token] = e
	}
}

func (s *RecordStore) removeTokenLocked(token string) *entry {
	if token == "" {
		return nil
	}
	e, ok := s.byToken[token]
	if !ok {
		return nil
	}
	s.deleteLocked(e)
	return e
}

func (s *RecordStore) deleteLocked(e *entry) {
	delete(s.byID, e.record.ID)
	if e.record.Token != "" {
		if cur, ok := s.byToken[e.record.Token]; ok && cur == e {
			delete(s.byToken, e.record.Token)
		}
	}
	s.entries = slices.DeleteFunc(s.entries, func(x *entry) bool { return x == e })
}

// sortLocked упорядочивает по SortTime, при равенстве - по порядку первого прибытия
func (s *RecordStore) sortLocked() {
	slices.SortFunc(s.entries, func(a, b *entry) int {
		if c := a.record.SortTime().Compare(b.record.SortTime()); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

func (s *RecordStore) save(record *models.Record) {
	if s.persist == nil {
		return
	}
	r := record.Clone()
	if err := s.persist.SaveRecord(context.Background(), r); err != nil {
		s.logger.Warn("Failed to persist record", "id", r.ID, "error", err)
	}
}

func (s *RecordStore) delete(id string) {
	if s.persist == nil {
		return
	}
	if err := s.persist.DeleteRecord(context.Background(), s.collection, id); err != nil {
		s.logger.Warn("Failed to delete persisted record", "id", id, "error", err)
	}
}

func (s *RecordStore) notify() {
	s.mu.RLock()
	observers := slices.Clone(s.observers)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn(s.collection)
	}
}
