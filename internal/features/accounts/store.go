package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
)

// Saver записывает снапшот в долговременное хранилище.
type Saver interface {
	Save(ctx context.Context, s *Snapshot) error
}

// Store владеет текущим состоянием в памяти.
// Все изменения проходят через Update: функция работает с копией,
// копия сохраняется, и только после успешной записи подменяет текущее состояние.
type Store struct {
	mu    sync.RWMutex
	snap  *Snapshot
	saver Saver
}

// NewStore создаёт хранилище с уже загруженным снапшотом.
func NewStore(snap *Snapshot, saver Saver) *Store {
	if snap == nil {
		snap = NewSnapshot()
	}
	return &Store{snap: snap, saver: saver}
}

// Open загружает снапшот из хранилища.
// Повреждённые данные не роняют бота: ошибка логируется, работа начинается с пустого состояния.
func Open(ctx context.Context, p *PersistenceStore) (*Store, error) {
	snap, err := p.Load(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrCorruptData) {
			return nil, err
		}
		log.WithError(err).Error("Снапшот повреждён, начинаем с пустого состояния")
		snap = NewSnapshot()
	}

	log.WithFields(log.Fields{
		"users": len(snap.Accounts),
	}).Info("Состояние загружено")

	return NewStore(snap, p), nil
}

// Update выполняет транзакцию над состоянием.
// Если fn вернула ошибку или запись не удалась — состояние в памяти не меняется.
func (s *Store) Update(ctx context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.saver.Save(ctx, next); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	s.snap = next
	return nil
}

// View даёт доступ к состоянию только для чтения.
// fn не должна менять снапшот и сохранять ссылки на него.
func (s *Store) View(fn func(*Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.snap)
}

// Account возвращает копию аккаунта (нулевой аккаунт для незнакомого пользователя).
func (s *Store) Account(userID int64) Account {
	var acc Account
	s.View(func(snap *Snapshot) { acc = snap.Peek(userID) })
	return acc
}
