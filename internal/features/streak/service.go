// Package streak — service.go содержит основную бизнес-логику активности:
// начисление наград за события, сводку по серии, сброс периода и напоминания.
package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/accounts"
)

// Result — итог обработки события.
type Result struct {
	Outcome
	EventID        uuid.UUID
	UserID         int64
	Balance        int64 // Баланс после начисления
	PeriodMessages int
}

// Options — настройки сервиса, не связанные с размерами наград.
type Options struct {
	Period            common.Period
	Location          *time.Location // Часовой пояс календарных дней
	ReminderThreshold int            // Минимальная серия для напоминания
}

// Service управляет активностью пользователей.
type Service struct {
	store  *accounts.Store
	queue  common.Runner
	policy Policy
	opts   Options
	now    common.Clock

	// Кому уже напомнили и в какой день. Меняется только внутри очереди.
	reminded map[int64]time.Time
}

// NewService создаёт новый сервис активности.
func NewService(store *accounts.Store, queue common.Runner, policy Policy, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Period == "" {
		opts.Period = common.PeriodWeekly
	}
	return &Service{
		store:    store,
		queue:    queue,
		policy:   policy,
		opts:     opts,
		now:      time.Now,
		reminded: make(map[int64]time.Time),
	}
}

// Policy возвращает действующую политику наград.
func (s *Service) Policy() Policy {
	return s.policy
}

// Period возвращает отчётный период счётчика сообщений.
func (s *Service) Period() common.Period {
	return s.opts.Period
}

// Today возвращает текущую календарную дату в часовом поясе бота.
func (s *Service) Today() time.Time {
	return common.DateIn(s.now(), s.opts.Location)
}

// ApplyActivity обрабатывает событие: одна транзакция с записью в хранилище.
// Если запись не удалась — ни очки, ни серия не меняются.
func (s *Service) ApplyActivity(ctx context.Context, ev ActivityEvent) (Result, error) {
	res := Result{EventID: ev.ID, UserID: ev.UserID}
	today := common.DateIn(ev.At, s.opts.Location)

	err := s.queue.Do(ctx, func(ctx context.Context) error {
		return s.store.Update(ctx, func(snap *accounts.Snapshot) error {
			out, err := Apply(snap, s.policy, s.opts.Period, ev.UserID, ev.Kind, today)
			if err != nil {
				return err
			}
			acc := snap.Peek(ev.UserID)
			res.Outcome = out
			res.Balance = acc.Points
			res.PeriodMessages = acc.PeriodMessageCount
			return nil
		})
	})
	if err != nil {
		return Result{}, fmt.Errorf("событие %s: %w", ev.ID, err)
	}

	fields := log.Fields{
		"event_id": ev.ID.String(),
		"user_id":  ev.UserID,
		"kind":     ev.Kind.String(),
		"points":   res.Total(),
		"streak":   res.Streak,
	}
	if res.NewDay {
		log.WithFields(fields).Info("Новый день активности")
	} else {
		log.WithFields(fields).Debug("Активность засчитана")
	}
	return res, nil
}

// Status возвращает сводку по серии пользователя на сегодня.
func (s *Service) Status(ctx context.Context, userID int64) (Status, error) {
	today := s.Today()
	var st Status

	err := s.queue.Do(ctx, func(ctx context.Context) error {
		s.store.View(func(snap *accounts.Snapshot) {
			acc := snap.Peek(userID)
			st = Status{
				UserID:           userID,
				Streak:           acc.LoginStreak,
				LastActivityDate: acc.LastActivityDate,
				PeriodMessages:   acc.PeriodMessageCount,
				Points:           acc.Points,
			}
			if NeedsRoll(snap, s.opts.Period, today) {
				st.PeriodMessages = 0
			}
		})
		return nil
	})
	if err != nil {
		return Status{}, err
	}

	if st.LastActivityDate != nil {
		gap := common.DaysBetween(*st.LastActivityDate, today)
		st.ActiveToday = gap <= 0
		if gap > 1 {
			// Серия прервана, при следующей активности начнётся с 1
			st.Streak = 0
		}
	} else {
		st.Streak = 0
	}

	if t, ok := s.policy.NextTier(st.Streak); ok {
		st.NextTier = &t
		st.DaysToNext = t.Streak - st.Streak
	}
	return st, nil
}

// SweepPeriod сбрасывает счётчики сообщений, если начался новый период.
// Правило то же, что при обработке события, так что рейтинг обнуляется
// даже без сообщений в чате. Возвращает true, если сброс произошёл.
func (s *Service) SweepPeriod(ctx context.Context) (bool, error) {
	today := s.Today()
	rolled := false

	err := s.queue.Do(ctx, func(ctx context.Context) error {
		var needs bool
		s.store.View(func(snap *accounts.Snapshot) {
			needs = NeedsRoll(snap, s.opts.Period, today)
		})
		if !needs {
			return nil
		}
		return s.store.Update(ctx, func(snap *accounts.Snapshot) error {
			rolled = RollPeriod(snap, s.opts.Period, today)
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("ошибка сброса периода: %w", err)
	}

	if rolled {
		log.WithFields(log.Fields{
			"period": string(s.opts.Period),
			"start":  common.FormatDate(s.opts.Period.Start(today)),
		}).Info("Начался новый период, счётчики сообщений сброшены")
	}
	return rolled, nil
}

// SendReminders напоминает пользователям с длинной серией, что сегодня
// они ещё не были активны. Кандидаты: серия >= порога и последняя активность вчера.
// Каждому — не больше одного напоминания в день. Возвращает число отправленных.
func (s *Service) SendReminders(ctx context.Context, sendFunc func(userID int64, text string)) (int, error) {
	if s.opts.ReminderThreshold <= 0 {
		return 0, nil
	}
	today := s.Today()
	yesterday := today.AddDate(0, 0, -1)

	type target struct {
		userID int64
		streak int
	}
	var targets []target

	err := s.queue.Do(ctx, func(ctx context.Context) error {
		s.store.View(func(snap *accounts.Snapshot) {
			for _, id := range snap.UserIDs() {
				acc := snap.Accounts[id]
				if acc.LoginStreak < s.opts.ReminderThreshold || acc.LastActivityDate == nil {
					continue
				}
				if !acc.LastActivityDate.Equal(yesterday) {
					continue
				}
				if day, ok := s.reminded[id]; ok && day.Equal(today) {
					continue
				}
				s.reminded[id] = today
				targets = append(targets, target{userID: id, streak: acc.LoginStreak})
			}
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, t := range targets {
		msg := fmt.Sprintf("⚠️ У тебя серия %d %s подряд! Напиши сегодня в чат, чтобы не потерять её.",
			t.streak, common.PluralizeDays(t.streak))
		sendFunc(t.userID, msg)
	}

	if len(targets) > 0 {
		log.WithField("count", len(targets)).Info("Напоминания о серии отправлены")
	}
	return len(targets), nil
}
