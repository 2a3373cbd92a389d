package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/points-bot/internal/config"
)

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewSnapshotStore(client, "points_bot:snapshot")

	data, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, store.Save(ctx, []byte(`{"user_points":{"1":260}}`)))
	got, err := mr.Get("points_bot:snapshot")
	require.NoError(t, err)
	assert.Equal(t, `{"user_points":{"1":260}}`, got)
	assert.Equal(t, 0, int(mr.TTL("points_bot:snapshot")))

	data, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"user_points":{"1":260}}`, string(data))
}

func TestSnapshotStore_ServerDown(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewSnapshotStore(client, "k")

	mr.Close()
	_, err := store.Load(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Save(ctx, []byte("{}")))
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisAddr: mr.Addr()}

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	_, err = NewClient(context.Background(), cfg)
	assert.Error(t, err)
}
