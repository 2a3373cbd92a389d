// Package streak — handlers.go превращает сообщения чата в события активности,
// отправляет уведомление о бонусе в личку и обрабатывает команду !серия.
package streak

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
)

// Handler обрабатывает активность и команды серии.
type Handler struct {
	service *Service
	bot     common.Sender
}

// NewHandler создаёт новый обработчик активности.
func NewHandler(service *Service, bot common.Sender) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleActivity засчитывает событие. Если начался новый день активности,
// автору отправляется сообщение о бонусе в личку.
func (h *Handler) HandleActivity(ctx context.Context, userID int64, kind Kind, at time.Time) {
	res, err := h.service.ApplyActivity(ctx, NewEvent(userID, kind, at))
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка начисления за активность")
		return
	}

	text, ok := BonusMessage(res)
	if !ok {
		return
	}
	// Личка может быть закрыта, это не ошибка обработки события
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":  userID,
			"event_id": res.EventID.String(),
		}).Debug("Не удалось отправить уведомление о бонусе")
	}
}

// BonusMessage формирует уведомление о ежедневном бонусе.
// Возвращает false, если событие не открыло новый день.
//
// Пример:
//
//	🎉 Бонус за первое сообщение сегодня: +100 очков
//	🏆 3 дня подряд! Дополнительно: +100 очков
//	🔥 Серия: 3 дня
//	💰 Баланс: 380 очков
func BonusMessage(res Result) (string, bool) {
	if !res.NewDay {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎉 Бонус за первое сообщение сегодня: %s\n", common.FormatPointsAmount(res.Daily)))
	switch {
	case res.Tier > 0 && res.StreakReset:
		sb.WriteString(fmt.Sprintf("🏆 Серия завершена! Дополнительно: %s\n", common.FormatPointsAmount(res.TierBonus)))
		sb.WriteString("🔁 Завтра начнётся новая серия\n")
	case res.Tier > 0:
		sb.WriteString(fmt.Sprintf("🏆 %d %s подряд! Дополнительно: %s\n",
			res.Streak, common.PluralizeDays(res.Streak), common.FormatPointsAmount(res.TierBonus)))
	}
	if !res.StreakReset {
		sb.WriteString(fmt.Sprintf("🔥 Серия: %d %s\n", res.Streak, common.PluralizeDays(res.Streak)))
	}
	sb.WriteString(fmt.Sprintf("💰 Баланс: %s", common.FormatBalance(res.Balance)))
	return sb.String(), true
}

// HandleStatus обрабатывает команду !серия — показывает прогресс.
//
// Формат ответа:
//
//	🔥 Твоя серия: 4 дня
//	✅ Сегодня уже засчитано
//	📊 Сообщений за неделю: 12
//	🎯 До бонуса +200 очков: 1 день
func (h *Handler) HandleStatus(ctx context.Context, chatID, userID int64) {
	st, err := h.service.Status(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения серии")
		h.sendMessage(chatID, "❌ Ошибка получения данных серии")
		return
	}
	h.sendMessage(chatID, FormatStatus(st, h.service.Period()))
}

// FormatStatus формирует текст ответа на !серия.
func FormatStatus(st Status, period common.Period) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔥 Твоя серия: %d %s\n", st.Streak, common.PluralizeDays(st.Streak)))
	switch {
	case st.ActiveToday:
		sb.WriteString("✅ Сегодня уже засчитано\n")
	case st.LastActivityDate != nil:
		sb.WriteString(fmt.Sprintf("⏳ Последняя активность: %s\n", common.FormatDateRU(*st.LastActivityDate)))
	default:
		sb.WriteString("⏳ Напиши в чат, чтобы начать серию\n")
	}
	sb.WriteString(fmt.Sprintf("📊 Сообщений за %s: %d", period.Title(), st.PeriodMessages))
	if st.NextTier != nil {
		sb.WriteString(fmt.Sprintf("\n🎯 До бонуса %s: %d %s",
			common.FormatPointsAmount(st.NextTier.Bonus), st.DaysToNext, common.PluralizeDays(st.DaysToNext)))
	}
	return sb.String()
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
