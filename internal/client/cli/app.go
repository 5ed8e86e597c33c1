package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iudanet/communitysync/internal/client/api"
	"github.com/iudanet/communitysync/internal/client/engine"
	"github.com/iudanet/communitysync/internal/client/realtime"
	"github.com/iudanet/communitysync/internal/client/storage"
	"github.com/iudanet/communitysync/internal/client/storage/boltdb"
	"github.com/iudanet/communitysync/internal/client/storage/sqlite"
	"github.com/iudanet/communitysync/internal/config"
)

// app собранные зависимости одной команды
type app struct {
	engine  *engine.Engine
	client  *api.Client
	storage storage.Storage // nil для backend'а memory
	logger  *slog.Logger
}

// newApp открывает локальное хранилище и собирает движок.
// push=false: движок работает только через REST, push-канал не открывается.
func newApp(ctx context.Context, cfg *config.Config, push bool, logger *slog.Logger) (*app, error) {
	st, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.ServerURL, api.WithToken(cfg.Token))

	manager := realtime.NewManager(realtime.Config{
		Token:            cfg.Token,
		ReconnectDelay:   cfg.ReconnectDelay,
		PingInterval:     cfg.PingInterval,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}, logger)

	engineCfg := engine.Config{}
	if push {
		engineCfg.URL = cfg.PushURL()
	}

	return &app{
		engine:  engine.New(engineCfg, manager, client, st, logger),
		client:  client,
		storage: st,
		logger:  logger,
	}, nil
}

// metadata возвращает хранилище метаданных синхронизации или nil
func (a *app) metadata() storage.MetadataStorage {
	if a.storage == nil {
		return nil
	}
	return a.storage
}

// Close останавливает движок и закрывает базу
func (a *app) Close() {
	a.engine.Stop()
	if a.storage == nil {
		return
	}
	if err := a.storage.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
	}
}

// openStorage открывает backend локального хранилища из конфигурации
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StoreBackend {
	case config.BackendBolt:
		s, err := boltdb.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return s, nil
	case config.BackendSQLite:
		s, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return s, nil
	case config.BackendMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidBackend, cfg.StoreBackend)
	}
}
