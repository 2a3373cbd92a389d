// Package economy управляет очками пользователей.
// models.go описывает политики списания и настройки экономики.
package economy

import "serotonyl.ru/points-bot/internal/config"

// DebitPolicy определяет, можно ли уйти в минус при списании.
type DebitPolicy int

const (
	// FloorZero — списание больше баланса отклоняется с ErrInsufficientFunds
	FloorZero DebitPolicy = iota
	// AllowNegative — баланс может стать отрицательным
	AllowNegative
)

func (p DebitPolicy) String() string {
	if p == AllowNegative {
		return "allow_negative"
	}
	return "floor_zero"
}

// Options — флаги политики экономики.
type Options struct {
	GiftRequiresAdmin bool // Дарить очки могут только админы
	GiftDeductsGiver  bool // Подарок списывается со счёта дарителя
	AllowNegative     bool // Админское списание может увести баланс в минус
}

// OptionsFromConfig собирает Options из конфигурации.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		GiftRequiresAdmin: cfg.GiftRequiresAdmin,
		GiftDeductsGiver:  cfg.GiftDeductsGiver,
		AllowNegative:     cfg.EconomyAllowNegative,
	}
}

// GiftResult — балансы участников после подарка.
type GiftResult struct {
	FromBalance int64
	ToBalance   int64
}
