// Package reconcile выполняет локальные записи оптимистично и сводит их
// с подтвержденным сервером состоянием.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/iudanet/communitysync/internal/client/api"
	"github.com/iudanet/communitysync/internal/models"
)

var (
	// ErrStopped reconciler остановлен, запись не выполнена
	ErrStopped = errors.New("reconciler stopped")
	// ErrUnknownCollection для коллекции нет локального хранилища
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrMissingID сервер подтвердил запись без id
	ErrMissingID = errors.New("server response has no id")
)

// WriteError ошибка исходящей записи. Локальное оптимистичное изменение уже откачено.
type WriteError struct {
	Cause      error
	Collection string
	Op         string
	ID         string
}

func (e *WriteError) Error() string {
	target := e.Collection
	if e.ID != "" {
		target += "/" + e.ID
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, target, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// RecordStore операции локального хранилища, нужные reconciler
type RecordStore interface {
	Merge(record *models.Record) bool
	Supersede(token string, confirmed *models.Record) bool
	RemoveByToken(token string) bool
	RemoveByID(id string) bool
	Get(id string) *models.Record
}

// StoreLookup возвращает хранилище коллекции
type StoreLookup func(collection string) (RecordStore, bool)

// Executor выполняет мутацию хранилища в контексте владельца (event loop движка).
// Возвращает false, если мутация не была выполнена (владелец остановлен).
type Executor func(fn func()) bool

// Reconciler выполняет create/update/delete оптимистично: изменение сразу видно
// в хранилище, а после ответа сервера подтверждается или откатывается.
// Автоматических повторов нет.
type Reconciler struct {
	client  api.ClientAPI
	stores  StoreLookup
	exec    Executor
	logger  *slog.Logger
	now     func() time.Time
	stopped atomic.Bool
}

// Option настраивает Reconciler
type Option func(*Reconciler)

// WithExecutor задает исполнителя мутаций хранилища
func WithExecutor(exec Executor) Option {
	return func(r *Reconciler) {
		r.exec = exec
	}
}

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// New создает reconciler
func New(client api.ClientAPI, stores StoreLookup, logger *slog.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reconciler{
		client: client,
		stores: stores,
		logger: logger,
		now:    time.Now,
		exec: func(fn func()) bool {
			fn()
			return true
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stop запрещает новые записи. Ответы на уже отправленные запросы
// применяются через хранилище, которое после остановки игнорирует мутации.
func (r *Reconciler) Stop() {
	r.stopped.Store(true)
}

// Submit создает запись. Оптимистичная запись с placeholder id появляется в хранилище сразу,
// на сервер уходит черновик с correlation token в поле clientToken.
// Возвращает подтвержденную сервером запись или *WriteError.
func (r *Reconciler) Submit(ctx context.Context, collection string, draft map[string]any) (*models.Record, error) {
	s, err := r.lookup(collection)
	if err != nil {
		return nil, &WriteError{Collection: collection, Op: "create", Cause: err}
	}

	now := r.now()
	token := uuid.NewString()
	placeholder := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()

	body := maps.Clone(draft)
	if body == nil {
		body = make(map[string]any)
	}
	body[models.FieldClientToken] = token

	fields := maps.Clone(body)
	fields[models.FieldID] = placeholder
	if _, ok := fields[models.FieldCreatedAt]; !ok {
		fields[models.FieldCreatedAt] = now.UTC().Format(time.RFC3339Nano)
	}

	optimistic := models.NewRecord(collection, fields)
	optimistic.Pending = true
	optimistic.ReceivedAt = now

	r.exec(func() { s.Merge(optimistic) })
	r.logger.Debug("Optimistic record inserted",
		"collection", collection,
		"placeholder_id", placeholder,
		"token", token,
	)

	confirmed, err := r.client.Create(ctx, collection, body)
	if err == nil && confirmed.ID == "" {
		err = ErrMissingID
	}
	if err != nil {
		r.exec(func() { s.RemoveByToken(token) })
		r.logger.Warn("Write failed, optimistic record rolled back",
			"collection", collection,
			"placeholder_id", placeholder,
			"error", err,
		)
		return nil, &WriteError{Collection: collection, Op: "create", Cause: err}
	}

	confirmed.Token = token
	r.exec(func() { s.Supersede(token, confirmed) })
	r.logger.Debug("Write confirmed",
		"collection", collection,
		"placeholder_id", placeholder,
		"id", confirmed.ID,
	)
	return confirmed, nil
}

// Update применяет изменения полей записи оптимистично.
// При ошибке запись возвращается к предыдущей версии.
func (r *Reconciler) Update(ctx context.Context, collection, id string, changes map[string]any) (*models.Record, error) {
	s, err := r.lookup(collection)
	if err != nil {
		return nil, &WriteError{Collection: collection, ID: id, Op: "update", Cause: err}
	}

	var previous *models.Record
	r.exec(func() {
		previous = s.Get(id)
		if previous == nil {
			return
		}
		optimistic := previous.Clone()
		maps.Copy(optimistic.Fields, changes)
		optimistic.Fields[models.FieldUpdatedAt] = r.now().UTC().Format(time.RFC3339Nano)
		updated := models.NewRecord(collection, optimistic.Fields)
		updated.ReceivedAt = previous.ReceivedAt
		s.Merge(updated)
	})

	confirmed, err := r.client.Update(ctx, collection, id, changes)
	if err == nil && confirmed.ID == "" {
		err = ErrMissingID
	}
	if err != nil {
		if previous != nil {
			r.exec(func() { r.restore(s, previous) })
		}
		r.logger.Warn("Update failed, record restored", "collection", collection, "id", id, "error", err)
		return nil, &WriteError{Collection: collection, ID: id, Op: "update", Cause: err}
	}

	// ответ может быть неполным (204 или fallback create): поля сервера
	// накладываются на текущую версию записи, а не заменяют ее
	var merged *models.Record
	r.exec(func() {
		merged = overlay(collection, s.Get(id), previous, confirmed)
		s.Merge(merged)
	})
	return merged, nil
}

func overlay(collection string, current, previous, confirmed *models.Record) *models.Record {
	base := current
	if base == nil {
		base = previous
	}
	if base == nil {
		return confirmed
	}

	fields := base.Clone().Fields
	maps.Copy(fields, confirmed.Fields)
	merged := models.NewRecord(collection, fields)
	merged.ReceivedAt = base.ReceivedAt
	return merged
}

// Delete удаляет запись оптимистично. При ошибке запись возвращается в хранилище.
func (r *Reconciler) Delete(ctx context.Context, collection, id string) error {
	s, err := r.lookup(collection)
	if err != nil {
		return &WriteError{Collection: collection, ID: id, Op: "delete", Cause: err}
	}

	var previous *models.Record
	r.exec(func() {
		previous = s.Get(id)
		s.RemoveByID(id)
	})

	if err := r.client.Delete(ctx, collection, id); err != nil {
		if previous != nil {
			r.exec(func() { s.Merge(previous) })
		}
		r.logger.Warn("Delete failed, record restored", "collection", collection, "id", id, "error", err)
		return &WriteError{Collection: collection, ID: id, Op: "delete", Cause: err}
	}
	return nil
}

// restore возвращает предыдущую версию записи в обход LWW:
// оптимистичная версия новее по updatedAt и иначе не была бы заменена
func (r *Reconciler) restore(s RecordStore, previous *models.Record) {
	s.RemoveByID(previous.ID)
	s.Merge(previous)
}

func (r *Reconciler) lookup(collection string) (RecordStore, error) {
	if r.stopped.Load() {
		return nil, ErrStopped
	}
	s, ok := r.stores(collection)
	if !ok {
		return nil, ErrUnknownCollection
	}
	return s, nil
}
