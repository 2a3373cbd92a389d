// Package admin — handlers.go обрабатывает вход в админку в личных сообщениях:
// /login <пароль>, /login с паролем следующим сообщением, /logout.
package admin

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
)

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	bot     common.Sender
}

// NewHandler создаёт обработчик админки.
func NewHandler(service *Service, bot common.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleAdminMessage перехватывает сообщение в DM, если бот ждёт пароль.
// Возвращает true, если сообщение обработано.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID, userID int64, text string) bool {
	state := h.service.GetState(userID)
	if state == nil || state.State != StateAwaitingPassword {
		return false
	}
	h.service.ClearState(userID)
	h.handlePasswordInput(ctx, chatID, userID, strings.TrimSpace(text))
	return true
}

// HandleLogin обрабатывает /login [пароль]. Только в личке.
func (h *Handler) HandleLogin(ctx context.Context, chatID, userID int64, args []string) {
	if !h.service.LoginEnabled() {
		h.sendMessage(chatID, "🔒 Вход по паролю отключён")
		return
	}
	if h.service.IsAdmin(userID) {
		h.sendMessage(chatID, "✅ Вы уже администратор")
		return
	}
	if len(args) == 0 {
		h.service.SetState(userID, StateAwaitingPassword)
		h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-командам:")
		return
	}
	h.handlePasswordInput(ctx, chatID, userID, strings.Join(args, " "))
}

// HandleLogout обрабатывает /logout.
func (h *Handler) HandleLogout(ctx context.Context, chatID, userID int64) {
	if h.service.Logout(userID) {
		h.sendMessage(chatID, "👋 Сессия администратора закрыта")
		return
	}
	h.sendMessage(chatID, "Активной сессии нет")
}

// handlePasswordInput проверяет введённый пароль.
func (h *Handler) handlePasswordInput(ctx context.Context, chatID, userID int64, password string) {
	_, err := h.service.Login(userID, password)
	switch {
	case err == nil:
		h.sendMessage(chatID, "✅ Аутентификация успешна! Доступны !начислить и !списать")
	case errors.Is(err, common.ErrTooManyAttempts):
		h.sendMessage(chatID, "❌ Слишком много попыток, подождите 1 час")
	case errors.Is(err, common.ErrWrongPassword):
		h.sendMessage(chatID, "❌ Неверный пароль")
	default:
		log.WithError(err).WithField("user_id", userID).Error("Ошибка входа в админку")
		h.sendMessage(chatID, "❌ Вход недоступен")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
