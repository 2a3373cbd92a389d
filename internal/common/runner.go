package common

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Runner выполняет fn в единой очереди, через которую проходят
// все чтения и изменения состояния. Реализуется jobs.Queue.
type Runner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Sender — часть API Telegram, через которую обработчики отправляют ответы.
// Её реализует *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
