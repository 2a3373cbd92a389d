// Package filters решает, какие сообщения бот обрабатывает.
// Активность засчитывается только в основном чате, команды принимаются
// ещё и в личке от участников этого чата.
package filters

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/common"
)

// MemberChecker — часть API Telegram для проверки членства. Её реализует *tgbotapi.BotAPI.
type MemberChecker interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// memberCacheTTL — сколько помним подтверждённое членство.
const memberCacheTTL = time.Hour

type ChatFilter struct {
	activityChatID int64
	checker        MemberChecker
	bot            common.Sender
	now            common.Clock

	mu       sync.Mutex
	verified map[int64]time.Time // user_id → когда подтверждено членство
}

func NewChatFilter(activityChatID int64, checker MemberChecker, bot common.Sender) *ChatFilter {
	return &ChatFilter{
		activityChatID: activityChatID,
		checker:        checker,
		bot:            bot,
		now:            time.Now,
		verified:       make(map[int64]time.Time),
	}
}

// IsActivityChat сообщает, засчитывается ли активность в этом чате.
func (f *ChatFilter) IsActivityChat(chatID int64) bool {
	return chatID == f.activityChatID
}

// MarkMember запоминает, что пользователь состоит в основном чате.
func (f *ChatFilter) MarkMember(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified[userID] = f.now()
}

func (f *ChatFilter) isKnownMember(userID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.verified[userID]
	if !ok {
		return false
	}
	if f.now().Sub(at) >= memberCacheTTL {
		delete(f.verified, userID)
		return false
	}
	return true
}

func (f *ChatFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (service/channel message?)")
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component":        "ChatFilter",
		"chat_id":          chatID,
		"chat_type":        message.Chat.Type,
		"user_id":          userID,
		"activity_chat_id": f.activityChatID,
	})

	// 1) Основной чат
	if f.IsActivityChat(chatID) {
		f.MarkMember(userID)
		return true
	}

	// 2) Личка: сначала кеш, потом Telegram API
	if message.Chat.IsPrivate() {
		if f.isKnownMember(userID) {
			logger.Debug("allow: private (cached member)")
			return true
		}
		if f.checker == nil {
			logger.Error("member checker is nil")
			return false
		}

		cm, err := f.checker.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: f.activityChatID,
				UserID: userID,
			},
		})
		if err != nil {
			logger.WithError(err).Error("member check failed (telegram GetChatMember)")
			return false
		}

		switch cm.Status {
		case "creator", "administrator", "member", "restricted":
			f.MarkMember(userID)
			logger.WithField("tg_status", cm.Status).Info("allow: private (telegram member)")
			return true

		default:
			logger.WithField("tg_status", cm.Status).Info("deny: private (not a chat member)")
			msg := tgbotapi.NewMessage(chatID, "❌ Бот работает только для участников основного чата")
			if _, sendErr := f.bot.Send(msg); sendErr != nil {
				logger.WithError(sendErr).Warn("failed to send deny message")
			}
			return false
		}
	}

	// 3) Остальные чаты игнорируем
	logger.Debug("deny: not activity chat and not private")
	return false
}
