// Package ranking — handlers.go обрабатывает команду !топ [очки|сообщения|серия].
package ranking

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
)

// Handler обрабатывает команды рейтинга.
type Handler struct {
	service *Service
	bot     common.Sender
	size    int
}

// NewHandler создаёт обработчик. size — сколько строк показывать.
func NewHandler(service *Service, bot common.Sender, size int) *Handler {
	return &Handler{service: service, bot: bot, size: size}
}

// HandleTop обрабатывает !топ. Без аргумента показывает рейтинг по очкам
// и по сообщениям за период.
func (h *Handler) HandleTop(ctx context.Context, chatID int64, args []string) {
	var arg string
	if len(args) > 0 {
		arg = strings.ToLower(args[0])
	}
	metric, err := ParseMetric(arg)
	if err != nil {
		h.sendMessage(chatID, "❌ Формат: !топ [очки|сообщения|серия]")
		return
	}

	metrics := []Metric{metric}
	if arg == "" {
		metrics = []Metric{MetricPoints, MetricMessages}
	}

	var blocks []string
	for _, m := range metrics {
		entries, err := h.service.TopN(ctx, m, h.size)
		if err != nil {
			log.WithError(err).WithField("metric", string(m)).Error("Ошибка построения рейтинга")
			h.sendMessage(chatID, "❌ Ошибка получения рейтинга")
			return
		}
		blocks = append(blocks, FormatTop(m, entries, h.service.opts.Period))
	}
	h.sendMessage(chatID, strings.Join(blocks, "\n\n"))
}

// FormatTop формирует текст одного рейтинга.
//
// Пример:
//
//	🏆 Топ по очкам
//	1. @vasya: 2 350 очков
//	2. Петя: 1 200 очков
func FormatTop(metric Metric, entries []Entry, period common.Period) string {
	var sb strings.Builder
	switch metric {
	case MetricMessages:
		sb.WriteString(fmt.Sprintf("💬 Топ по сообщениям за %s", period.Title()))
	case MetricStreak:
		sb.WriteString("🔥 Топ по серии")
	default:
		sb.WriteString("🏆 Топ по очкам")
	}

	if len(entries) == 0 {
		sb.WriteString("\nПока пусто")
		return sb.String()
	}

	for i, e := range entries {
		var value string
		switch metric {
		case MetricMessages:
			value = fmt.Sprintf("%d %s", e.Value, common.PluralizeMessages(int(e.Value)))
		case MetricStreak:
			value = fmt.Sprintf("%d %s", e.Value, common.PluralizeDays(int(e.Value)))
		default:
			value = common.FormatBalance(e.Value)
		}
		sb.WriteString(fmt.Sprintf("\n%d. %s: %s", i+1, e.Name, value))
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
