// Package shop — handlers.go обрабатывает команды !магазин и !купить <id>.
package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/members"
)

// Handler обрабатывает команды магазина.
type Handler struct {
	service *Service
	bot     common.Sender
	// ID чата, куда уходят уведомления о покупках (0 — не отправлять)
	notifyChatID int64
}

// NewHandler создаёт обработчик магазина.
func NewHandler(service *Service, bot common.Sender, notifyChatID int64) *Handler {
	return &Handler{service: service, bot: bot, notifyChatID: notifyChatID}
}

// HandleShop показывает каталог и ссылку на форму обмена.
func (h *Handler) HandleShop(ctx context.Context, chatID int64) {
	h.sendMessage(chatID, FormatCatalog(h.service.Catalog()))
}

// FormatCatalog формирует текст каталога.
func FormatCatalog(c Catalog) string {
	var sb strings.Builder
	sb.WriteString("🛒 Магазин")
	if len(c.Items) == 0 && c.URL == "" {
		sb.WriteString("\nПока ничего нет")
		return sb.String()
	}
	for _, it := range c.Items {
		sb.WriteString(fmt.Sprintf("\n• %s — %s (!купить %s)", it.Name, common.FormatBalance(it.Price), it.ID))
	}
	if c.URL != "" {
		sb.WriteString("\n\nПолный список товаров для обмена по ссылке:\n")
		sb.WriteString(c.URL)
	}
	return sb.String()
}

// HandleBuy обрабатывает !купить <id>.
func (h *Handler) HandleBuy(ctx context.Context, chatID int64, user *tgbotapi.User, args []string) {
	if len(args) == 0 {
		h.sendMessage(chatID, "❌ Формат: !купить id_товара (список — !магазин)")
		return
	}

	p, err := h.service.Redeem(ctx, user.ID, args[0])
	switch {
	case errors.Is(err, common.ErrItemNotFound):
		h.sendMessage(chatID, "❌ Такого товара нет, список — !магазин")
		return
	case errors.Is(err, common.ErrInsufficientFunds):
		h.sendMessage(chatID, "❌ Недостаточно очков на счёте")
		return
	case err != nil:
		log.WithError(err).WithField("user_id", user.ID).Error("Ошибка покупки")
		h.sendMessage(chatID, "❌ Не удалось выполнить покупку, попробуйте позже")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Куплено: %s за %s\nОстаток: %s",
		p.Item.Name, common.FormatBalance(p.Item.Price), common.FormatBalance(p.Balance)))

	if h.notifyChatID != 0 && h.notifyChatID != chatID {
		h.sendMessage(h.notifyChatID, fmt.Sprintf("🛍 %s купил(а) «%s»",
			members.FromUser(user).DisplayName(), p.Item.Name))
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
