package common

import (
	"fmt"
	"time"
)

// Period — отчётный период для счётчика сообщений.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod проверяет значение POINTS_PERIOD.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeekly, PeriodMonthly:
		return Period(s), nil
	}
	return "", fmt.Errorf("неизвестный период %q", s)
}

// Start возвращает первую дату периода, в который попадает дата d.
// Неделя начинается с понедельника.
func (p Period) Start(d time.Time) time.Time {
	switch p {
	case PeriodMonthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		weekday := d.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		start := d.AddDate(0, 0, -(int(weekday) - int(time.Monday)))
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// CounterKey — имя поля счётчика сообщений в снапшоте.
func (p Period) CounterKey() string {
	if p == PeriodMonthly {
		return "monthly_message_count"
	}
	return "weekly_message_count"
}

// Title — название периода для сообщений пользователю.
func (p Period) Title() string {
	if p == PeriodMonthly {
		return "месяц"
	}
	return "неделю"
}
