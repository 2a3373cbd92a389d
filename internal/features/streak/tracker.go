// Package streak — tracker.go применяет результат политики к снапшоту.
// Функции вызываются внутри транзакции accounts.Store.Update.
package streak

import (
	"time"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/accounts"
	"serotonyl.ru/points-bot/internal/features/economy"
)

// RollPeriod обнуляет счётчики сообщений, если today попал в новый период.
func RollPeriod(snap *accounts.Snapshot, period common.Period, today time.Time) bool {
	return snap.RollPeriod(period.Start(today))
}

// NeedsRoll проверяет, устарели ли счётчики сообщений для даты today.
func NeedsRoll(snap *accounts.Snapshot, period common.Period, today time.Time) bool {
	return snap.LastResetDate == nil || !snap.LastResetDate.Equal(period.Start(today))
}

// Apply оценивает событие и применяет результат к снапшоту:
// сбрасывает устаревший период, считает сообщение, начисляет очки
// и обновляет серию. Возвращает результат оценки.
func Apply(snap *accounts.Snapshot, p Policy, period common.Period, userID int64, kind Kind, today time.Time) (Outcome, error) {
	RollPeriod(snap, period, today)

	acc := snap.Account(userID)
	out := p.Evaluate(State{
		LastActivityDate: acc.LastActivityDate,
		LoginStreak:      acc.LoginStreak,
	}, kind, today)

	if kind == KindMessage {
		acc.PeriodMessageCount++
	}
	if err := economy.Credit(snap, userID, out.Total()); err != nil {
		return out, err
	}
	if out.NewDay {
		acc.LoginStreak = out.Streak
		acc.LastActivityDate = out.Date
	}
	return out, nil
}
