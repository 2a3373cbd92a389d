// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с датами.
package common

import (
	"fmt"
	"time"
)

// DateLayout — формат календарной даты в снапшоте и в ответах бота.
const DateLayout = "2006-01-02"

// Day — сутки. Календарные даты хранятся как полночь UTC,
// поэтому разница двух дат всегда кратна Day.
const Day = 24 * time.Hour

// DateIn возвращает календарную дату момента t в часовом поясе loc.
// Результат — полночь UTC с теми же годом, месяцем и днём.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween возвращает число календарных дней от from до to.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / Day)
}

// FormatDate форматирует дату в "YYYY-MM-DD".
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// ParseDate разбирает дату формата "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// FormatDateRU форматирует дату в "02.01.2006" для сообщений пользователю.
func FormatDateRU(d time.Time) string {
	return d.Format("02.01.2006")
}

// Clock возвращает текущее время. Подменяется в тестах.
type Clock func() time.Time
