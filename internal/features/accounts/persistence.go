package accounts

import (
	"context"
	"fmt"
)

// Backend хранит сериализованный снапшот целиком.
// Load возвращает nil, nil, если ничего ещё не сохранено.
// Save должен заменять прежнее значение атомарно.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// PersistenceStore связывает кодек и бэкенд хранения.
type PersistenceStore struct {
	backend Backend
	codec   *Codec
}

// NewPersistenceStore создаёт хранилище снапшотов.
func NewPersistenceStore(backend Backend, codec *Codec) *PersistenceStore {
	return &PersistenceStore{backend: backend, codec: codec}
}

// Save сериализует и записывает снапшот, перезаписывая прежний.
func (p *PersistenceStore) Save(ctx context.Context, s *Snapshot) error {
	data, err := p.codec.Encode(s)
	if err != nil {
		return err
	}
	if err := p.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load читает снапшот. Если ничего не сохранено — возвращает пустой снапшот.
// Нечитаемые данные дают ошибку, оборачивающую common.ErrCorruptData.
func (p *PersistenceStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := p.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return p.codec.Decode(data)
}
