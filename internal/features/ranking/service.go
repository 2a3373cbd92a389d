package ranking

import (
	"context"
	"sort"
	"time"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/accounts"
	"serotonyl.ru/points-bot/internal/features/members"
	"serotonyl.ru/points-bot/internal/features/streak"
)

// AdminLister сообщает, является ли пользователь администратором.
type AdminLister interface {
	IsAdmin(userID int64) bool
}

// Options — настройки рейтинга.
type Options struct {
	ExcludeAdmins bool
	Period        common.Period
}

// Service строит рейтинги по текущему состоянию.
type Service struct {
	store  *accounts.Store
	queue  common.Runner
	admins AdminLister
	opts   Options
	today  func() time.Time
}

// NewService создаёт сервис рейтингов.
// today возвращает текущую календарную дату в часовом поясе бота.
func NewService(store *accounts.Store, queue common.Runner, admins AdminLister, opts Options, today func() time.Time) *Service {
	if opts.Period == "" {
		opts.Period = common.PeriodWeekly
	}
	return &Service{
		store:  store,
		queue:  queue,
		admins: admins,
		opts:   opts,
		today:  today,
	}
}

// TopN возвращает n лучших пользователей по метрике.
// Сортировка: значение по убыванию, при равенстве — id по возрастанию.
// Пользователи с нулевым значением в рейтинг не попадают.
func (s *Service) TopN(ctx context.Context, metric Metric, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	today := s.today()

	var entries []Entry
	err := s.queue.Do(ctx, func(ctx context.Context) error {
		s.store.View(func(snap *accounts.Snapshot) {
			stalePeriod := streak.NeedsRoll(snap, s.opts.Period, today)
			for _, id := range snap.UserIDs() {
				if s.opts.ExcludeAdmins && s.admins != nil && s.admins.IsAdmin(id) {
					continue
				}
				acc := snap.Accounts[id]
				value := metricValue(acc, metric, today, stalePeriod)
				if value == 0 {
					continue
				}
				entries = append(entries, Entry{
					UserID: id,
					Name:   members.Name(*acc),
					Value:  value,
				})
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// metricValue возвращает значение метрики аккаунта на дату today.
// Счётчик прошлого периода и прерванная серия считаются нулём.
func metricValue(acc *accounts.Account, metric Metric, today time.Time, stalePeriod bool) int64 {
	switch metric {
	case MetricMessages:
		if stalePeriod {
			return 0
		}
		return int64(acc.PeriodMessageCount)
	case MetricStreak:
		if acc.LastActivityDate == nil || common.DaysBetween(*acc.LastActivityDate, today) > 1 {
			return 0
		}
		return int64(acc.LoginStreak)
	default:
		return acc.Points
	}
}
