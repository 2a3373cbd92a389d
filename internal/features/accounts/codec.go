package accounts

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
)

// document — JSON-представление снапшота.
// Ключи словарей — id пользователей в десятичной записи.
type document struct {
	UserPoints          map[string]int64  `json:"user_points"`
	LastLoginDate       map[string]string `json:"last_login_date"`
	LoginStreaks        map[string]int    `json:"login_streaks"`
	WeeklyMessageCount  map[string]int    `json:"weekly_message_count,omitempty"`
	MonthlyMessageCount map[string]int    `json:"monthly_message_count,omitempty"`
	LastResetDate       *string           `json:"last_reset_date,omitempty"`
	UserNames           map[string]string `json:"user_names,omitempty"`
}

// Codec переводит снапшот в JSON-документ и обратно.
// Период определяет, под каким ключом лежат счётчики сообщений.
type Codec struct {
	period common.Period
}

// NewCodec создаёт кодек для заданного периода.
func NewCodec(period common.Period) *Codec {
	return &Codec{period: period}
}

// Encode сериализует снапшот.
func (c *Codec) Encode(s *Snapshot) ([]byte, error) {
	doc := document{
		UserPoints:    make(map[string]int64, len(s.Accounts)),
		LastLoginDate: make(map[string]string),
		LoginStreaks:  make(map[string]int),
		UserNames:     make(map[string]string),
	}
	counters := make(map[string]int)

	for id, acc := range s.Accounts {
		key := strconv.FormatInt(id, 10)
		doc.UserPoints[key] = acc.Points
		doc.LoginStreaks[key] = acc.LoginStreak
		counters[key] = acc.PeriodMessageCount
		if acc.LastActivityDate != nil {
			doc.LastLoginDate[key] = common.FormatDate(*acc.LastActivityDate)
		}
		if acc.DisplayName != "" {
			doc.UserNames[key] = acc.DisplayName
		}
	}

	if c.period == common.PeriodMonthly {
		doc.MonthlyMessageCount = counters
	} else {
		doc.WeeklyMessageCount = counters
	}
	if s.LastResetDate != nil {
		d := common.FormatDate(*s.LastResetDate)
		doc.LastResetDate = &d
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode разбирает документ. Любая ошибка разбора оборачивает common.ErrCorruptData.
// Пустые данные дают пустой снапшот. Счётчики сообщений читаются только
// под ключом текущего периода.
func (c *Codec) Decode(data []byte) (*Snapshot, error) {
	snap := NewSnapshot()
	if len(data) == 0 {
		return snap, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptData, err)
	}

	counters, other := doc.WeeklyMessageCount, doc.MonthlyMessageCount
	if c.period == common.PeriodMonthly {
		counters, other = doc.MonthlyMessageCount, doc.WeeklyMessageCount
	}
	// Счётчики другого периода не переносятся: при следующей записи они пропадут
	if len(other) > 0 {
		log.WithFields(log.Fields{
			"period":        c.period,
			"dropped_users": len(other),
		}).Warn("В данных есть счётчики сообщений другого периода, они будут отброшены")
	}

	get := func(key string) (*Account, error) {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad user id %q", common.ErrCorruptData, key)
		}
		return snap.Account(id), nil
	}

	for key, points := range doc.UserPoints {
		acc, err := get(key)
		if err != nil {
			return nil, err
		}
		acc.Points = points
	}
	for key, raw := range doc.LastLoginDate {
		acc, err := get(key)
		if err != nil {
			return nil, err
		}
		d, err := common.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCorruptData, err)
		}
		acc.LastActivityDate = &d
	}
	for key, streak := range doc.LoginStreaks {
		if streak < 0 {
			return nil, fmt.Errorf("%w: negative streak for %s", common.ErrCorruptData, key)
		}
		acc, err := get(key)
		if err != nil {
			return nil, err
		}
		acc.LoginStreak = streak
	}
	for key, count := range counters {
		if count < 0 {
			return nil, fmt.Errorf("%w: negative message count for %s", common.ErrCorruptData, key)
		}
		acc, err := get(key)
		if err != nil {
			return nil, err
		}
		acc.PeriodMessageCount = count
	}
	for key, name := range doc.UserNames {
		acc, err := get(key)
		if err != nil {
			return nil, err
		}
		acc.DisplayName = name
	}

	if doc.LastResetDate != nil && *doc.LastResetDate != "" {
		d, err := common.ParseDate(*doc.LastResetDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCorruptData, err)
		}
		snap.LastResetDate = &d
	}
	return snap, nil
}
