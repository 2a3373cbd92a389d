// Package redis хранит снапшот состояния под одним ключом Redis.
// Документ записывается одной командой SET, поэтому запись атомарна.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/config"
)

// NewClient создаёт клиента Redis и проверяет соединение.
func NewClient(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis недоступен: %w", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("Подключение к Redis установлено")
	return client, nil
}

// SnapshotStore — хранилище снапшота в Redis.
type SnapshotStore struct {
	client goredis.Cmdable
	key    string
}

// NewSnapshotStore создаёт хранилище под ключом key.
func NewSnapshotStore(client goredis.Cmdable, key string) *SnapshotStore {
	return &SnapshotStore{client: client, key: key}
}

// Load возвращает документ или nil, если ключа нет.
func (s *SnapshotStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", s.key, err)
	}
	return data, nil
}

// Save перезаписывает документ без срока жизни.
func (s *SnapshotStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", s.key, err)
	}
	return nil
}
