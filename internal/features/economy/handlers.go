// Package economy — handlers.go обрабатывает команды:
// !баланс, !подарить (ответом на сообщение), !начислить и !списать (админ).
package economy

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/features/members"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service *Service
	bot     common.Sender
}

// NewHandler создаёт новый обработчик экономических команд.
func NewHandler(service *Service, bot common.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleBalance обрабатывает команду !баланс.
// Ответом на чужое сообщение показывает баланс автора того сообщения.
//
// Формат ответа:
//
//	💰 Баланс: 150 очков
func (h *Handler) HandleBalance(ctx context.Context, chatID, userID int64, target *tgbotapi.User) {
	who := userID
	if target != nil && !target.IsBot {
		who = target.ID
	}

	balance, err := h.service.Balance(ctx, who)
	if err != nil {
		log.WithError(err).WithField("user_id", who).Error("Ошибка получения баланса")
		h.sendMessage(chatID, "❌ Ошибка получения баланса")
		return
	}

	if who != userID {
		h.sendMessage(chatID, fmt.Sprintf("💰 Баланс %s: %s",
			members.FromUser(target).DisplayName(), common.FormatBalance(balance)))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("💰 Баланс: %s", common.FormatBalance(balance)))
}

// HandleGift обрабатывает команду !подарить 100 (ответом на сообщение получателя).
//
// Ответ при успехе:
//
//	🎁 @vasya получает 100 очков
//	Баланс получателя: 250 очков
func (h *Handler) HandleGift(ctx context.Context, chatID, fromUserID int64, target *tgbotapi.User, args []string) {
	if target == nil || target.IsBot {
		h.sendMessage(chatID, "❌ Ответьте этой командой на сообщение получателя: !подарить сумма")
		return
	}
	amount, ok := parseAmount(args)
	if !ok {
		h.sendMessage(chatID, "❌ Формат: !подарить сумма (положительное число)")
		return
	}

	res, err := h.service.Gift(ctx, fromUserID, target.ID, amount)
	if err != nil {
		h.replyError(chatID, err, "Ошибка подарка")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("🎁 %s получает %s\nБаланс получателя: %s",
		members.FromUser(target).DisplayName(),
		common.FormatBalance(amount),
		common.FormatBalance(res.ToBalance)))
}

// HandleAdjust обрабатывает админские команды !начислить и !списать.
// sign = +1 для начисления, -1 для списания.
func (h *Handler) HandleAdjust(ctx context.Context, chatID, actorID int64, target *tgbotapi.User, args []string, sign int64) {
	if target == nil || target.IsBot {
		h.sendMessage(chatID, "❌ Ответьте этой командой на сообщение пользователя")
		return
	}
	amount, ok := parseAmount(args)
	if !ok {
		h.sendMessage(chatID, "❌ Сумма должна быть положительным числом")
		return
	}

	balance, err := h.service.AdminAdjust(ctx, actorID, target.ID, sign*amount)
	if err != nil {
		h.replyError(chatID, err, "Ошибка корректировки баланса")
		return
	}

	// Уведомление в личку: пользователь мог не писать боту, поэтому ошибка не критична
	h.notify(target.ID, fmt.Sprintf("ℹ️ Администратор изменил ваш баланс: %s\nТеперь у вас %s",
		common.FormatPointsAmount(sign*amount), common.FormatBalance(balance)))

	h.sendMessage(chatID, fmt.Sprintf("✅ %s: %s\nНовый баланс: %s",
		members.FromUser(target).DisplayName(),
		common.FormatPointsAmount(sign*amount),
		common.FormatBalance(balance)))
}

// replyError переводит ошибку сервиса в понятный ответ.
func (h *Handler) replyError(chatID int64, err error, logMsg string) {
	switch {
	case errors.Is(err, common.ErrSelfGift):
		h.sendMessage(chatID, "❌ Нельзя дарить очки самому себе")
	case errors.Is(err, common.ErrInsufficientFunds):
		h.sendMessage(chatID, "❌ Недостаточно очков на счёте")
	case errors.Is(err, common.ErrBalanceOverflow):
		h.sendMessage(chatID, "❌ Сумма слишком большая")
	case errors.Is(err, common.ErrInvalidAmount):
		h.sendMessage(chatID, "❌ Сумма должна быть положительной")
	case errors.Is(err, common.ErrPermissionDenied):
		h.sendMessage(chatID, "⛔ Эта команда только для администраторов")
	default:
		log.WithError(err).Error(logMsg)
		h.sendMessage(chatID, "❌ Не удалось выполнить операцию, попробуйте позже")
	}
}

// parseAmount разбирает первый аргумент как положительное число.
func parseAmount(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// notify отправляет личное сообщение, ошибки только логируются.
func (h *Handler) notify(userID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить личное сообщение")
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
