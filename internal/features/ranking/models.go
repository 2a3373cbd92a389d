// Package ranking строит рейтинги пользователей по очкам,
// сообщениям за период и длине серии.
package ranking

import "fmt"

// Metric — показатель, по которому строится рейтинг.
type Metric string

const (
	MetricPoints   Metric = "points"
	MetricMessages Metric = "messages"
	MetricStreak   Metric = "streak"
)

// ParseMetric понимает и английские имена, и русские аргументы команды !топ.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "", "points", "очки":
		return MetricPoints, nil
	case "messages", "сообщения":
		return MetricMessages, nil
	case "streak", "серия":
		return MetricStreak, nil
	}
	return "", fmt.Errorf("неизвестный рейтинг %q", s)
}

// Entry — строка рейтинга.
type Entry struct {
	UserID int64
	Name   string
	Value  int64
}
