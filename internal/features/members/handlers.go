// Package members — handlers.go обрабатывает события, связанные с участниками.
package members

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает события участников.
type Handler struct {
	service *Service
}

// NewHandler создаёт новый обработчик событий участников.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleUser запоминает имя автора апдейта.
func (h *Handler) HandleUser(ctx context.Context, user *tgbotapi.User) {
	if user == nil || user.IsBot {
		return
	}
	if err := h.service.Observe(ctx, FromUser(user)); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Не удалось сохранить имя участника")
	}
}

// HandleNewChatMembers обрабатывает вступление новых пользователей.
// Аккаунт с нулевым балансом появляется сразу, вместе с именем.
func (h *Handler) HandleNewChatMembers(ctx context.Context, newMembers []tgbotapi.User) {
	for i := range newMembers {
		h.HandleUser(ctx, &newMembers[i])
		log.WithField("user_id", newMembers[i].ID).Info("Новый участник обработан")
	}
}
