package di

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"microblog-account-service/internal/config"
	"microblog-account-service/internal/usecase/auth"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store:  config.StoreConfig{Driver: config.DriverSQLite},
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
		Auth:   config.AuthConfig{BcryptCost: bcrypt.MinCost},
		App:    config.AppConfig{HTTPPort: "8000", ShutdownTimeoutSeconds: 1},
		Logger: config.LoggerConfig{Level: "info", SlowQuerySeconds: 0.2},
	}
}

func TestNewContainer_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.NotNil(t, c.DB)
	assert.Nil(t, c.Mongo)
	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.RateLimiter)
	assert.NotNil(t, c.GinHandler)

	ctx := context.Background()
	created, err := c.AuthUC.Signup(ctx, auth.SignupRequest{Username: "alice", Email: "a@x.io", Password: "pw1"})
	require.NoError(t, err)

	token, err := c.AuthUC.Login(ctx, auth.LoginRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, token.AccessToken)
}

func TestNewContainer_WithRedisFeatures(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := sqliteConfig(t)
	cfg.Redis = config.RedisConfig{Host: host, Port: port, PoolSize: 2}
	cfg.Cache = config.CacheConfig{Enabled: true, TTLSeconds: 60}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 5, BurstCapacity: 5}

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.NotNil(t, c.RedisClient)
	assert.NotNil(t, c.RateLimiter)

	ctx := context.Background()
	created, err := c.AuthUC.Signup(ctx, auth.SignupRequest{Username: "alice", Email: "a@x.io", Password: "pw1"})
	require.NoError(t, err)

	profile, err := c.AuthUC.GetProfile(ctx, created.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, profile)
	assert.True(t, mr.Exists("user:"+created.ID))
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Store.Driver = "cassandra"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestNewContainer_RedisUnreachable(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: "1"}
	cfg.Cache = config.CacheConfig{Enabled: true, TTLSeconds: 60}

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis")
}
