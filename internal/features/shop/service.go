package shop

import (
	"context"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/accounts"
	"serotonyl.ru/points-bot/internal/features/economy"
)

// Purchase — результат покупки.
type Purchase struct {
	Item    Item
	Balance int64 // Баланс после списания
}

// Service продаёт товары за очки.
type Service struct {
	store   *accounts.Store
	queue   common.Runner
	catalog Catalog
}

// NewService создаёт сервис магазина.
func NewService(store *accounts.Store, queue common.Runner, catalog Catalog) *Service {
	return &Service{store: store, queue: queue, catalog: catalog}
}

// Catalog возвращает каталог товаров.
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// Redeem покупает товар: списание без ухода в минус.
// Неизвестный товар — ErrItemNotFound, нехватка очков — ErrInsufficientFunds.
func (s *Service) Redeem(ctx context.Context, userID int64, itemID string) (Purchase, error) {
	item, ok := s.catalog.Find(itemID)
	if !ok {
		return Purchase{}, common.ErrItemNotFound
	}

	p := Purchase{Item: item}
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.Update(ctx, func(snap *accounts.Snapshot) error {
			if err := economy.Debit(snap, userID, item.Price, economy.FloorZero); err != nil {
				return err
			}
			p.Balance = snap.Peek(userID).Points
			return nil
		})
	})
	if err != nil {
		return Purchase{}, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"item":    item.ID,
		"price":   item.Price,
	}).Info("Покупка в магазине")

	return p, nil
}
