package economy

import (
	"math"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/accounts"
)

// Credit начисляет amount очков внутри транзакции снапшота.
// Используется и сервисом экономики, и начислением наград за активность.
// Если баланс переполнил бы int64, снапшот не меняется.
func Credit(s *accounts.Snapshot, userID, amount int64) error {
	if amount < 0 {
		return common.ErrInvalidAmount
	}
	if balance := s.Peek(userID).Points; balance > 0 && amount > math.MaxInt64-balance {
		return common.ErrBalanceOverflow
	}
	s.Account(userID).Points += amount
	return nil
}

// Debit списывает amount очков внутри транзакции снапшота.
// При FloorZero и нехватке средств снапшот не меняется.
func Debit(s *accounts.Snapshot, userID, amount int64, policy DebitPolicy) error {
	if amount < 0 {
		return common.ErrInvalidAmount
	}
	balance := s.Peek(userID).Points
	if policy == FloorZero && amount > 0 && amount > balance {
		return common.ErrInsufficientFunds
	}
	if balance < math.MinInt64+amount {
		return common.ErrBalanceOverflow
	}
	s.Account(userID).Points -= amount
	return nil
}
