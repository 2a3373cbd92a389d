// Package members — service.go обновляет имена участников в хранилище.
package members

import (
	"context"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/accounts"
)

// Service управляет именами участников.
type Service struct {
	store *accounts.Store
	queue common.Runner
}

// NewService создаёт новый сервис участников.
func NewService(store *accounts.Store, queue common.Runner) *Service {
	return &Service{store: store, queue: queue}
}

// Observe запоминает имя участника.
// Запись в хранилище происходит только если имя изменилось.
func (s *Service) Observe(ctx context.Context, m Member) error {
	name := m.DisplayName()
	return s.queue.Do(ctx, func(ctx context.Context) error {
		if s.store.Account(m.UserID).DisplayName == name {
			return nil
		}
		err := s.store.Update(ctx, func(snap *accounts.Snapshot) error {
			snap.Account(m.UserID).DisplayName = name
			return nil
		})
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"user_id": m.UserID,
			"name":    name,
		}).Debug("Имя участника обновлено")
		return nil
	})
}

// Name возвращает сохранённое имя аккаунта или запасное "id<число>".
func Name(acc accounts.Account) string {
	if acc.DisplayName != "" {
		return acc.DisplayName
	}
	return FallbackName(acc.UserID)
}
