// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: сброс счётчиков периода
// и напоминания о серии.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// StreakJobs — операции, которые планировщик вызывает по расписанию.
// Реализуется streak.Service.
type StreakJobs interface {
	SweepPeriod(ctx context.Context) (bool, error)
	SendReminders(ctx context.Context, sendFunc func(userID int64, text string)) (int, error)
}

// Schedule — cron-выражения задач.
type Schedule struct {
	PeriodSweep string // Проверка начала нового периода
	Reminders   string // Напоминания о серии, пусто — выключены
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	streak   StreakJobs
	sendFunc func(userID int64, text string)
	schedule Schedule
	loc      *time.Location
}

// NewScheduler создаёт планировщик в часовом поясе, где считаются календарные дни.
func NewScheduler(streak StreakJobs, sendFunc func(userID int64, text string), schedule Schedule, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		streak:   streak,
		sendFunc: sendFunc,
		schedule: schedule,
		loc:      loc,
	}
}

// Start регистрирует задачи и запускает cron.
// Ошибка означает некорректное выражение в конфигурации.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule.PeriodSweep, func() { s.sweepPeriod(ctx) }); err != nil {
		return fmt.Errorf("PERIOD_SWEEP_CRON %q: %w", s.schedule.PeriodSweep, err)
	}

	if s.schedule.Reminders != "" {
		if _, err := s.cron.AddFunc(s.schedule.Reminders, func() { s.sendReminders(ctx) }); err != nil {
			return fmt.Errorf("REMINDER_CRON %q: %w", s.schedule.Reminders, err)
		}
	}

	s.cron.Start()
	log.WithField("timezone", s.loc.String()).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

func (s *Scheduler) sweepPeriod(ctx context.Context) {
	log.Debug("[CRON] Проверка периода")
	if _, err := s.streak.SweepPeriod(ctx); err != nil {
		log.WithError(err).Error("[CRON] Ошибка сброса периода")
	}
}

func (s *Scheduler) sendReminders(ctx context.Context) {
	log.Debug("[CRON] Проверка напоминаний")
	if _, err := s.streak.SendReminders(ctx, s.sendFunc); err != nil {
		log.WithError(err).Error("[CRON] Ошибка напоминаний")
	}
}
