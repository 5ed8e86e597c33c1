// Package config собирает настройки клиента из флагов, переменных окружения,
// файла конфигурации и значений по умолчанию (в порядке убывания приоритета).
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix префикс переменных окружения: COMMUNITYSYNC_SERVER, COMMUNITYSYNC_STORE_BACKEND и т.д.
const EnvPrefix = "COMMUNITYSYNC"

// Имена ключей (совпадают с именами флагов)
const (
	KeyConfig           = "config"
	KeyServer           = "server"
	KeyWS               = "ws"
	KeyDB               = "db"
	KeyStoreBackend     = "store-backend"
	KeyToken            = "token"
	KeyUser             = "user"
	KeyReconnectDelay   = "reconnect-delay"
	KeyPingInterval     = "ping-interval"
	KeyHandshakeTimeout = "handshake-timeout"
	KeyLogLevel         = "log-level"
)

// Backend'ы локального хранилища
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Значения по умолчанию
const (
	DefaultServer         = "http://localhost:3001"
	DefaultDB             = "communitysync.db"
	DefaultReconnectDelay = 3 * time.Second
	DefaultLogLevel       = "info"
)

var (
	ErrInvalidServer   = errors.New("invalid server url")
	ErrInvalidBackend  = errors.New("invalid store backend")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidDuration = errors.New("invalid duration")
)

// Config настройки клиента
type Config struct {
	ServerURL        string
	WSURL            string
	DBPath           string
	StoreBackend     string
	Token            string
	UserID           string
	LogLevel         string
	ReconnectDelay   time.Duration
	PingInterval     time.Duration
	HandshakeTimeout time.Duration
}

// BindFlags регистрирует флаги конфигурации (обычно persistent флаги корневой команды)
func BindFlags(flags *pflag.FlagSet) {
	flags.String(KeyConfig, "", "Path to config file (yaml, json or toml)")
	flags.String(KeyServer, DefaultServer, "Server base URL")
	flags.String(KeyWS, "", "Push channel URL (default: derived from --server)")
	flags.String(KeyDB, DefaultDB, "Path to local database")
	flags.String(KeyStoreBackend, BackendBolt, "Local store backend: bolt, sqlite or memory")
	flags.String(KeyToken, "", "Bearer token for REST and push channel")
	flags.String(KeyUser, "", "User ID used as author of new records (default: from token)")
	flags.Duration(KeyReconnectDelay, DefaultReconnectDelay, "Delay before reconnecting the push channel")
	flags.Duration(KeyPingInterval, 0, "Push channel keepalive interval (0 disables)")
	flags.Duration(KeyHandshakeTimeout, 0, "Push channel handshake timeout (0 means none)")
	flags.String(KeyLogLevel, DefaultLogLevel, "Log level: debug, info, warn, error")
}

// Load читает конфигурацию. flags должны быть зарегистрированы через BindFlags.
func Load(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		ServerURL:        strings.TrimRight(v.GetString(KeyServer), "/"),
		WSURL:            v.GetString(KeyWS),
		DBPath:           v.GetString(KeyDB),
		StoreBackend:     strings.ToLower(v.GetString(KeyStoreBackend)),
		Token:            v.GetString(KeyToken),
		UserID:           v.GetString(KeyUser),
		LogLevel:         strings.ToLower(v.GetString(KeyLogLevel)),
		ReconnectDelay:   v.GetDuration(KeyReconnectDelay),
		PingInterval:     v.GetDuration(KeyPingInterval),
		HandshakeTimeout: v.GetDuration(KeyHandshakeTimeout),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidServer, c.ServerURL)
	}

	switch c.StoreBackend {
	case BackendBolt, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: %q (use bolt, sqlite or memory)", ErrInvalidBackend, c.StoreBackend)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("%w: reconnect delay must be positive, got %s", ErrInvalidDuration, c.ReconnectDelay)
	}
	if c.PingInterval < 0 || c.HandshakeTimeout < 0 {
		return fmt.Errorf("%w: ping interval and handshake timeout must not be negative", ErrInvalidDuration)
	}
	return nil
}

// PushURL возвращает URL push-канала. Если он не задан явно,
// выводится из адреса сервера: http -> ws, https -> wss, путь /ws.
func (c *Config) PushURL() string {
	if c.WSURL != "" {
		return c.WSURL
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

// ParseLevel переводит имя уровня логирования в slog.Level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}
}

// NewLogger создает текстовый slog логгер с уровнем из конфигурации
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
