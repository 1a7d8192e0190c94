package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/token-auth-service/internal/config"
)

func TestNewPostgresWithoutDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, pg.Enabled())
	assert.Nil(t, pg.PoolHandle())
	assert.ErrorIs(t, pg.Ping(context.Background()), ErrNotConfigured)
	assert.NoError(t, RunMigrations(context.Background(), pg.PoolHandle(), "migrations", zap.NewNop()))
	pg.Close()
}

func TestRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	defer r.Close()
	assert.NoError(t, r.Ping(context.Background()))

	mr.Close()
	assert.Error(t, r.Ping(context.Background()))

	var missing *Redis
	assert.Error(t, missing.Ping(context.Background()))
}

func TestPendingMigrationsSkipsAppliedAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_tokens.sql", "001_principals.sql", "003_audit.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "004_nested.sql"), 0o700))

	pending, err := pendingMigrations(dir, map[string]bool{"002_tokens.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_principals.sql", "003_audit.sql"}, pending)

	_, err = pendingMigrations(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}
