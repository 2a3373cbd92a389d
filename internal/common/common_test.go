package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluralizePoints(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "очков"},
		{1, "очко"},
		{2, "очка"},
		{4, "очка"},
		{5, "очков"},
		{11, "очков"},
		{12, "очков"},
		{21, "очко"},
		{22, "очка"},
		{111, "очков"},
		{-1, "очко"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizePoints(tt.n), "n=%d", tt.n)
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "2 350", FormatNumber(2350))
	assert.Equal(t, "1 000 000", FormatNumber(1000000))
	assert.Equal(t, "-1 005", FormatNumber(-1005))
	assert.Equal(t, "150 очков", FormatBalance(150))
	assert.Equal(t, "+1 очко", FormatPointsAmount(1))
	assert.Equal(t, "-50 очков", FormatPointsAmount(-50))
	assert.Equal(t, "3 дня", "3 "+PluralizeDays(3))
	assert.Equal(t, "сообщений", PluralizeMessages(11))
}

func TestDateIn(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	// 22:30 UTC 1 января — это уже 2 января по Москве
	ts := time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DateIn(ts, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), DateIn(ts, moscow))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DateIn(ts, nil))
}

func TestDaysBetweenAcrossMonths(t *testing.T) {
	a, err := ParseDate("2024-02-28")
	require.NoError(t, err)
	b, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, "2024-03-01", FormatDate(b))

	_, err = ParseDate("01.03.2024")
	assert.Error(t, err)
}

func TestPeriodStart(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		date   string
		want   string
	}{
		{"понедельник", PeriodWeekly, "2024-01-01", "2024-01-01"},
		{"среда", PeriodWeekly, "2024-01-03", "2024-01-01"},
		{"воскресенье", PeriodWeekly, "2024-01-07", "2024-01-01"},
		{"через границу года", PeriodWeekly, "2025-01-01", "2024-12-30"},
		{"месяц", PeriodMonthly, "2024-02-29", "2024-02-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatDate(tt.period.Start(d)))
		})
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("monthly")
	require.NoError(t, err)
	assert.Equal(t, "monthly_message_count", p.CounterKey())

	p, err = ParsePeriod("weekly")
	require.NoError(t, err)
	assert.Equal(t, "weekly_message_count", p.CounterKey())

	_, err = ParsePeriod("daily")
	assert.Error(t, err)
}
