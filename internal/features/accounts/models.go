// Package accounts хранит состояние всех пользователей в памяти
// и сохраняет его в выбранное хранилище после каждого изменения.
// models.go описывает аккаунт пользователя и снапшот состояния.
package accounts

import (
	"sort"
	"time"
)

// Account — данные одного пользователя.
// Аккаунт создаётся неявно (нулевые значения) при первой активности
// или первом запросе и никогда не удаляется.
type Account struct {
	UserID             int64
	Points             int64      // Баланс очков, может уйти в минус только после админского списания
	LastActivityDate   *time.Time // Дата последней активности, засчитанной для серии
	LoginStreak        int        // Серия дней подряд
	PeriodMessageCount int        // Сообщений за текущий период (неделя или месяц)
	DisplayName        string     // Последнее увиденное имя
}

// Snapshot — всё сохраняемое состояние бота.
type Snapshot struct {
	Accounts map[int64]*Account
	// LastResetDate — первая дата периода, к которому относятся счётчики сообщений.
	LastResetDate *time.Time
}

// NewSnapshot создаёт пустой снапшот.
func NewSnapshot() *Snapshot {
	return &Snapshot{Accounts: make(map[int64]*Account)}
}

// Account возвращает аккаунт пользователя, создавая его при необходимости.
func (s *Snapshot) Account(userID int64) *Account {
	acc, ok := s.Accounts[userID]
	if !ok {
		acc = &Account{UserID: userID}
		s.Accounts[userID] = acc
	}
	return acc
}

// Peek возвращает копию аккаунта без создания записи.
// Для незнакомого пользователя возвращается аккаунт с нулевыми значениями.
func (s *Snapshot) Peek(userID int64) Account {
	if acc, ok := s.Accounts[userID]; ok {
		return acc.clone()
	}
	return Account{UserID: userID}
}

// UserIDs возвращает id всех пользователей по возрастанию.
func (s *Snapshot) UserIDs() []int64 {
	ids := make([]int64, 0, len(s.Accounts))
	for id := range s.Accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RollPeriod обнуляет счётчики сообщений, если periodStart отличается
// от сохранённой даты сброса. Возвращает true, если сброс произошёл.
func (s *Snapshot) RollPeriod(periodStart time.Time) bool {
	if s.LastResetDate != nil && s.LastResetDate.Equal(periodStart) {
		return false
	}
	for _, acc := range s.Accounts {
		acc.PeriodMessageCount = 0
	}
	start := periodStart
	s.LastResetDate = &start
	return true
}

// Clone делает глубокую копию снапшота.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{Accounts: make(map[int64]*Account, len(s.Accounts))}
	for id, acc := range s.Accounts {
		c := acc.clone()
		out.Accounts[id] = &c
	}
	if s.LastResetDate != nil {
		d := *s.LastResetDate
		out.LastResetDate = &d
	}
	return out
}

func (a *Account) clone() Account {
	c := *a
	if a.LastActivityDate != nil {
		d := *a.LastActivityDate
		c.LastActivityDate = &d
	}
	return c
}
