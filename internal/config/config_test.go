package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse(args))
	return Load(viper.New(), flags)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, DefaultServer, cfg.ServerURL)
	assert.Equal(t, DefaultDB, cfg.DBPath)
	assert.Equal(t, BackendBolt, cfg.StoreBackend)
	assert.Equal(t, DefaultReconnectDelay, cfg.ReconnectDelay)
	assert.Equal(t, time.Duration(0), cfg.PingInterval)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "ws://localhost:3001/ws", cfg.PushURL())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("COMMUNITYSYNC_SERVER", "https://community.example.com/")
	t.Setenv("COMMUNITYSYNC_STORE_BACKEND", "sqlite")
	t.Setenv("COMMUNITYSYNC_RECONNECT_DELAY", "5s")
	t.Setenv("COMMUNITYSYNC_TOKEN", "secret")

	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "https://community.example.com", cfg.ServerURL)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, "wss://community.example.com/ws", cfg.PushURL())
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("COMMUNITYSYNC_STORE_BACKEND", "sqlite")

	cfg, err := load(t, "--store-backend", "memory", "--ws", "ws://push.example.com/feed", "--log-level", "DEBUG")
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "ws://push.example.com/feed", cfg.PushURL())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "communitysync.yaml")
	content := "server: http://10.0.0.5:8080\nstore-backend: sqlite\nping-interval: 30s\nuser: u42\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := load(t, "--config", path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8080", cfg.ServerURL)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, 30*time.Second, cfg.PingInterval)
	assert.Equal(t, "u42", cfg.UserID)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := load(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ServerURL:      "http://localhost:3001",
			StoreBackend:   BackendBolt,
			LogLevel:       "info",
			ReconnectDelay: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.ServerURL = "ftp://x" }, wantErr: ErrInvalidServer},
		{name: "no host", mutate: func(c *Config) { c.ServerURL = "http://" }, wantErr: ErrInvalidServer},
		{name: "bad backend", mutate: func(c *Config) { c.StoreBackend = "redis" }, wantErr: ErrInvalidBackend},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: ErrInvalidLogLevel},
		{name: "zero delay", mutate: func(c *Config) { c.ReconnectDelay = 0 }, wantErr: ErrInvalidDuration},
		{name: "negative ping", mutate: func(c *Config) { c.PingInterval = -time.Second }, wantErr: ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn"}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "collection", "posts")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "collection=posts")
}
