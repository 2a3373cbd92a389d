// Package economy — service.go содержит бизнес-логику экономики:
// начисления, списания, подарки и админские корректировки.
package economy

import (
	"context"
	"math"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/accounts"
)

// AdminChecker проверяет права администратора.
type AdminChecker interface {
	Require(userID int64) error
}

// Service управляет балансами пользователей.
// Каждая операция — одна транзакция над хранилищем с синхронной записью.
type Service struct {
	store  *accounts.Store
	queue  common.Runner
	admins AdminChecker
	opts   Options
}

// NewService создаёт новый сервис экономики.
func NewService(store *accounts.Store, queue common.Runner, admins AdminChecker, opts Options) *Service {
	return &Service{
		store:  store,
		queue:  queue,
		admins: admins,
		opts:   opts,
	}
}

// Balance возвращает текущий баланс. Для незнакомого пользователя — 0.
func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		balance = s.store.Account(userID).Points
		return nil
	})
	return balance, err
}

// Credit начисляет очки. amount должен быть >= 0.
func (s *Service) Credit(ctx context.Context, userID, amount int64) error {
	if amount < 0 {
		return common.ErrInvalidAmount
	}
	return s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.Update(ctx, func(snap *accounts.Snapshot) error {
			return Credit(snap, userID, amount)
		})
	})
}

// Debit списывает очки по выбранной политике.
func (s *Service) Debit(ctx context.Context, userID, amount int64, policy DebitPolicy) error {
	if amount < 0 {
		return common.ErrInvalidAmount
	}
	return s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.Update(ctx, func(snap *accounts.Snapshot) error {
			return Debit(snap, userID, amount, policy)
		})
	})
}

// Gift дарит очки другому пользователю.
// Проверки:
//   - нельзя дарить самому себе
//   - сумма должна быть положительной
//   - при GiftRequiresAdmin дарить могут только админы
//   - при GiftDeductsGiver у дарителя должно хватать очков
func (s *Service) Gift(ctx context.Context, fromUserID, toUserID, amount int64) (GiftResult, error) {
	var res GiftResult
	if fromUserID == toUserID {
		return res, common.ErrSelfGift
	}
	if amount <= 0 {
		return res, common.ErrInvalidAmount
	}
	if s.opts.GiftRequiresAdmin {
		if err := s.admins.Require(fromUserID); err != nil {
			return res, err
		}
	}

	err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.Update(ctx, func(snap *accounts.Snapshot) error {
			if s.opts.GiftDeductsGiver {
				if err := Debit(snap, fromUserID, amount, FloorZero); err != nil {
					return err
				}
			}
			if err := Credit(snap, toUserID, amount); err != nil {
				return err
			}
			res.FromBalance = snap.Peek(fromUserID).Points
			res.ToBalance = snap.Peek(toUserID).Points
			return nil
		})
	})
	if err != nil {
		return GiftResult{}, err
	}

	log.WithFields(log.Fields{
		"from":   fromUserID,
		"to":     toUserID,
		"amount": amount,
	}).Info("Подарок выполнен")

	return res, nil
}

// AdminAdjust меняет баланс на delta от имени администратора.
// Положительная delta — начисление, отрицательная — списание.
// Возвращает новый баланс.
func (s *Service) AdminAdjust(ctx context.Context, actorID, targetID, delta int64) (int64, error) {
	if err := s.admins.Require(actorID); err != nil {
		return 0, err
	}
	if delta == 0 {
		return 0, common.ErrInvalidAmount
	}
	// -MinInt64 не помещается в int64
	if delta == math.MinInt64 {
		return 0, common.ErrBalanceOverflow
	}

	policy := FloorZero
	if s.opts.AllowNegative {
		policy = AllowNegative
	}

	var balance int64
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.Update(ctx, func(snap *accounts.Snapshot) error {
			var err error
			if delta > 0 {
				err = Credit(snap, targetID, delta)
			} else {
				err = Debit(snap, targetID, -delta, policy)
			}
			if err != nil {
				return err
			}
			balance = snap.Peek(targetID).Points
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"admin":   actorID,
		"target":  targetID,
		"delta":   delta,
		"balance": balance,
		"policy":  policy.String(),
	}).Info("Админская корректировка баланса")

	return balance, nil
}
