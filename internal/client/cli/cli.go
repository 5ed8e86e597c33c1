package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/communitysync/internal/client/api"
	"github.com/iudanet/communitysync/internal/client/iocli"
	"github.com/iudanet/communitysync/internal/client/reconcile"
	"github.com/iudanet/communitysync/internal/client/session"
	"github.com/iudanet/communitysync/internal/client/storage"
	"github.com/iudanet/communitysync/internal/client/sync"
	"github.com/iudanet/communitysync/internal/models"
)

var (
	// ErrUnknownUser автор новой записи неизвестен
	ErrUnknownUser = errors.New("user id is unknown: pass --user or a token with a user id")
	// ErrEmptyContent пустой текст сообщения
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrUnknownCollection коллекция не публикуется сервером
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrSelfFriendship заявка в друзья самому себе
	ErrSelfFriendship = errors.New("cannot send a friend request to yourself")
)

//go:generate moq -out engine_mock.go . Engine

// Engine операции движка синхронизации, которые используют команды
type Engine interface {
	Start(ctx context.Context) error
	OnEvent(fn func(*models.ChangeEvent))
	OnState(fn func(models.ConnectionState))
	Prime(ctx context.Context) error
	Refresh(ctx context.Context, collection string) error
	Sync(ctx context.Context) (*sync.SyncResult, error)
	Snapshot(collection string) ([]*models.Record, bool)
	Submit(ctx context.Context, collection string, draft map[string]any) (*models.Record, error)
	Update(ctx context.Context, collection, id string, changes map[string]any) (*models.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

//go:generate moq -out stats_mock.go . StatsFetcher

// StatsFetcher источник сводки по серверу
type StatsFetcher interface {
	Stats(ctx context.Context) (*api.Stats, error)
}

type Cli struct {
	io         iocli.IO
	engine     Engine
	stats      StatsFetcher
	metadata   storage.MetadataStorage
	session    *session.Session
	sessionErr error
	now        func() time.Time
	userID     string
}

// New создает CLI. metadata может быть nil (хранилище в памяти).
// userID задает автора новых записей; если пуст, берется из токена.
func New(io iocli.IO, engine Engine, stats StatsFetcher, metadata storage.MetadataStorage, token, userID string) *Cli {
	c := &Cli{
		io:       io,
		engine:   engine,
		stats:    stats,
		metadata: metadata,
		now:      time.Now,
		userID:   userID,
	}
	c.session, c.sessionErr = session.Parse(token)
	if c.userID == "" && c.session != nil {
		c.userID = c.session.UserID
	}
	return c
}

// author возвращает ID и имя автора новых записей
func (c *Cli) author() (string, string, error) {
	if c.userID == "" {
		return "", "", ErrUnknownUser
	}
	name := c.userID
	if c.session != nil && c.session.Username != "" {
		name = c.session.Username
	}
	return c.userID, name, nil
}

// content собирает текст из аргументов, а если их нет - читает строку ввода
func (c *Cli) content(args []string, prompt string) (string, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		input, err := c.io.ReadInput(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		text = input
	}
	if text == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}

func (c *Cli) submit(ctx context.Context, collection string, draft map[string]any, done string) error {
	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	rec, err := c.engine.Submit(ctx, collection, draft)
	if err != nil {
		var writeErr *reconcile.WriteError
		if errors.As(err, &writeErr) {
			return fmt.Errorf("not saved, please try again: %w", err)
		}
		return err
	}

	c.io.Printf("✓ %s (id %s)\n", done, rec.ID)
	return nil
}

func (c *Cli) update(ctx context.Context, collection, id string, changes map[string]any, done string) error {
	if err := c.engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	if _, err := c.engine.Update(ctx, collection, id, changes); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}

	c.io.Printf("✓ %s (id %s)\n", done, id)
	return nil
}

func checkCollection(collection string) error {
	if !models.IsKnownCollection(collection) {
		return fmt.Errorf("%w: %s. Use one of: %s", ErrUnknownCollection, collection, strings.Join(models.Collections(), ", "))
	}
	return nil
}
