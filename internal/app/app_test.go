package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/config"
	"serotonyl.ru/points-bot/internal/features/accounts"
)

// roundTrip сохраняет снапшот через бэкенд и читает его обратно.
func roundTrip(t *testing.T, backend accounts.Backend) {
	t.Helper()
	ctx := context.Background()
	p := accounts.NewPersistenceStore(backend, accounts.NewCodec(common.PeriodWeekly))

	snap := accounts.NewSnapshot()
	snap.Account(7).Points = 380
	require.NoError(t, p.Save(ctx, snap))

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(380), got.Peek(7).Points)
}

func TestOpenBackend_File(t *testing.T) {
	cfg := &config.Config{
		StorageBackend:  config.StorageFile,
		StorageFilePath: filepath.Join(t.TempDir(), "data", "user_data.json"),
	}
	a := &App{}
	backend, err := a.openBackend(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	roundTrip(t, backend)
}

func TestOpenBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		StorageBackend: config.StorageRedis,
		RedisAddr:      mr.Addr(),
		RedisKey:       "points_bot:snapshot",
	}
	a := &App{}
	backend, err := a.openBackend(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	roundTrip(t, backend)
	assert.True(t, mr.Exists("points_bot:snapshot"))
}

func TestOpenBackend_RedisDown(t *testing.T) {
	cfg := &config.Config{
		StorageBackend: config.StorageRedis,
		RedisAddr:      "127.0.0.1:1",
		RedisKey:       "k",
	}
	a := &App{}
	_, err := a.openBackend(context.Background(), cfg)
	assert.Error(t, err)
	a.Close()
}
