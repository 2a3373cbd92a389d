// Package streak управляет активностью пользователей: ежедневным бонусом,
// сериями дней подряд и счётчиком сообщений за период.
// models.go описывает события активности и результаты их оценки.
package streak

import (
	"time"

	"github.com/google/uuid"
)

// Kind — тип события активности.
type Kind int

const (
	KindMessage Kind = iota
	KindReaction
)

func (k Kind) String() string {
	if k == KindReaction {
		return "reaction"
	}
	return "message"
}

// ActivityEvent — входящее событие активности от шлюза.
type ActivityEvent struct {
	ID     uuid.UUID // Для связки логов одного события
	UserID int64
	Kind   Kind
	At     time.Time
}

// NewEvent создаёт событие с новым ID.
func NewEvent(userID int64, kind Kind, at time.Time) ActivityEvent {
	return ActivityEvent{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   kind,
		At:     at,
	}
}

// State — состояние серии пользователя до события.
type State struct {
	LastActivityDate *time.Time
	LoginStreak      int
}

// Outcome — результат оценки события политикой наград.
type Outcome struct {
	Flat      int64 // Очки за само событие
	Daily     int64 // Ежедневный бонус (0, если день уже засчитан)
	TierBonus int64 // Бонус за ступень серии
	Tier      int   // Номер ступени, 0 — без ступени

	NewDay      bool       // Событие открыло новый день серии
	Streak      int        // Серия после события
	StreakReset bool       // Ступень обнулила серию
	Date        *time.Time // Новая дата последней активности (nil — без изменений)
}

// Total — сколько всего очков начисляется за событие.
func (o Outcome) Total() int64 {
	return o.Flat + o.Daily + o.TierBonus
}

// Status — сводка по серии пользователя для команды !серия.
type Status struct {
	UserID           int64
	Streak           int
	LastActivityDate *time.Time
	ActiveToday      bool // Сегодняшний день уже засчитан
	PeriodMessages   int
	Points           int64

	NextTier   *Tier // Ближайшая ступень, nil если ступеней нет
	DaysToNext int   // Сколько дней подряд осталось до неё
}
