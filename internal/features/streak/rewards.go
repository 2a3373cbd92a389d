// Package streak — rewards.go содержит политику наград.
// Evaluate — чистая функция: по состоянию, типу события и дате
// она вычисляет начисления и новую серию, ничего не изменяя.
package streak

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/config"
)

// Tier — ступень серии. Бонус выдаётся при точном совпадении длины серии.
type Tier struct {
	Streak int
	Bonus  int64
	Reset  bool // После бонуса серия обнуляется
}

// Policy — размеры наград.
type Policy struct {
	MessagePoints  int64
	ReactionPoints int64
	DailyBonus     int64
	Tiers          []Tier // По возрастанию Streak
	// CountReactions — засчитываются ли реакции в серию и ежедневный бонус
	CountReactions bool
}

// DefaultPolicy — награды по умолчанию:
//
//	сообщение: 20, реакция: 5, первый раз за день: 100
//	3 дня подряд: +100, 5 дней: +200, 10 дней: +400 и серия начинается заново
func DefaultPolicy() Policy {
	return Policy{
		MessagePoints:  20,
		ReactionPoints: 5,
		DailyBonus:     100,
		Tiers: []Tier{
			{Streak: 3, Bonus: 100},
			{Streak: 5, Bonus: 200},
			{Streak: 10, Bonus: 400, Reset: true},
		},
		CountReactions: true,
	}
}

// PolicyFromConfig собирает политику из конфигурации.
func PolicyFromConfig(cfg *config.Config) (Policy, error) {
	tiers, err := ParseTiers(cfg.RewardTiersRaw)
	if err != nil {
		return Policy{}, fmt.Errorf("REWARD_TIERS: %w", err)
	}
	return Policy{
		MessagePoints:  cfg.RewardMessagePoints,
		ReactionPoints: cfg.RewardReactionPoints,
		DailyBonus:     cfg.RewardDailyBonus,
		Tiers:          tiers,
		CountReactions: cfg.StreakCountReactions,
	}, nil
}

// ParseTiers разбирает строку вида "3:100,5:200,10:400!".
// Восклицательный знак после бонуса означает сброс серии.
func ParseTiers(raw string) ([]Tier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var tiers []Tier
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		streakRaw, bonusRaw, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("ожидается streak:bonus, получено %q", part)
		}

		var t Tier
		if strings.HasSuffix(bonusRaw, "!") {
			t.Reset = true
			bonusRaw = strings.TrimSuffix(bonusRaw, "!")
		}

		streak, err := strconv.Atoi(strings.TrimSpace(streakRaw))
		if err != nil || streak <= 0 {
			return nil, fmt.Errorf("некорректная длина серии %q", streakRaw)
		}
		bonus, err := strconv.ParseInt(strings.TrimSpace(bonusRaw), 10, 64)
		if err != nil || bonus < 0 {
			return nil, fmt.Errorf("некорректный бонус %q", bonusRaw)
		}
		if seen[streak] {
			return nil, fmt.Errorf("ступень %d указана дважды", streak)
		}
		seen[streak] = true

		t.Streak = streak
		t.Bonus = bonus
		tiers = append(tiers, t)
	}

	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Streak < tiers[j].Streak })
	return tiers, nil
}

// Evaluate вычисляет результат события kind, случившегося в день today.
//
// Правила:
//  1. Последняя активность сегодня (или позже) — только очки за событие.
//  2. Иначе — ежедневный бонус; серия = 1, если активности не было или перерыв больше дня,
//     иначе серия + 1; бонус ступени при точном совпадении длины серии;
//     ступень со сбросом обнуляет серию; дата активности = today.
func (p Policy) Evaluate(st State, kind Kind, today time.Time) Outcome {
	var out Outcome
	out.Streak = st.LoginStreak

	switch kind {
	case KindReaction:
		out.Flat = p.ReactionPoints
		if !p.CountReactions {
			return out
		}
	default:
		out.Flat = p.MessagePoints
	}

	if st.LastActivityDate != nil && common.DaysBetween(*st.LastActivityDate, today) <= 0 {
		return out
	}

	out.NewDay = true
	out.Daily = p.DailyBonus
	if st.LastActivityDate == nil || common.DaysBetween(*st.LastActivityDate, today) > 1 {
		out.Streak = 1
	} else {
		out.Streak = st.LoginStreak + 1
	}

	for i, t := range p.Tiers {
		if t.Streak != out.Streak {
			continue
		}
		out.Tier = i + 1
		out.TierBonus = t.Bonus
		if t.Reset {
			out.Streak = 0
			out.StreakReset = true
		}
		break
	}

	d := today
	out.Date = &d
	return out
}

// NextTier возвращает ближайшую ступень после серии streak.
func (p Policy) NextTier(streak int) (Tier, bool) {
	for _, t := range p.Tiers {
		if t.Streak > streak {
			return t, true
		}
	}
	return Tier{}, false
}
