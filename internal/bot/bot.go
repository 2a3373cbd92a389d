// Package bot содержит главный модуль бота: приём апдейтов, фильтрацию и
// маршрутизацию команд к обработчикам фич.
package bot

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/points-bot/internal/bot/filters"
	"serotonyl.ru/points-bot/internal/bot/middleware"
	"serotonyl.ru/points-bot/internal/common"
	"serotonyl.ru/points-bot/internal/config"
	"serotonyl.ru/points-bot/internal/features/admin"
	"serotonyl.ru/points-bot/internal/features/economy"
	"serotonyl.ru/points-bot/internal/features/members"
	"serotonyl.ru/points-bot/internal/features/ranking"
	"serotonyl.ru/points-bot/internal/features/shop"
	"serotonyl.ru/points-bot/internal/features/streak"
)

// UpdatesSource — часть API Telegram для long polling. Её реализует *tgbotapi.BotAPI.
type UpdatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handlers — обработчики фич, между которыми бот распределяет апдейты.
type Handlers struct {
	Members *members.Handler
	Economy *economy.Handler
	Streak  *streak.Handler
	Ranking *ranking.Handler
	Shop    *shop.Handler
	Admin   *admin.Handler
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	updates UpdatesSource
	sender  common.Sender
	cfg     *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	handlers Handlers
	helpText string

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	updates UpdatesSource,
	sender common.Sender,
	cfg *config.Config,
	handlers Handlers,
	chatFilter *filters.ChatFilter,
	helpText string,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		updates:     updates,
		sender:      sender,
		cfg:         cfg,
		chatFilter:  chatFilter,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		handlers:    handlers,
		helpText:    helpText,
		parser:      NewCommandParser(),
		inflight:    make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram и блокируется до отмены ctx.
// Сообщения основного чата обрабатываются последовательно, команды — параллельно.
// После выхода дожидается обработки уже принятых апдейтов.
func (b *Bot) Start(ctx context.Context) {
	defer b.rateLimiter.Close()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.updates.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	defer b.waitInflight()

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.updates.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// Активность применяем здесь же, в порядке прихода: от него зависит серия
			if b.isActivity(update) {
				b.handleUpdate(ctx, update)
				continue
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// waitInflight ждёт, пока освободятся все слоты обработки.
func (b *Bot) waitInflight() {
	for i := 0; i < cap(b.inflight); i++ {
		b.inflight <- struct{}{}
	}
}

// isActivity сообщает, что апдейт — обычное сообщение человека в основном чате.
func (b *Bot) isActivity(update tgbotapi.Update) bool {
	message := update.Message
	if message == nil || message.Chat == nil || message.From == nil || message.From.IsBot {
		return false
	}
	if len(message.NewChatMembers) > 0 || !b.chatFilter.IsActivityChat(message.Chat.ID) {
		return false
	}
	_, _, isCommand := b.parser.ParseCommand(message.Text)
	return !isCommand
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic(log.Fields{"update_id": update.UpdateID})

	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}

	// Вступление новых участников: запоминаем имена
	if len(message.NewChatMembers) > 0 {
		if b.chatFilter.IsActivityChat(message.Chat.ID) {
			b.handlers.Members.HandleNewChatMembers(ctx, message.NewChatMembers)
			for _, user := range message.NewChatMembers {
				b.chatFilter.MarkMember(user.ID)
			}
		}
		return
	}

	// Обрабатываем обычные сообщения от людей
	if message.From == nil || message.From.IsBot {
		return
	}

	middleware.LogMessage(message)

	// Проверяем доступ (основной чат или DM участника)
	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	chatID := message.Chat.ID
	user := message.From

	b.handlers.Members.HandleUser(ctx, user)

	// В DM бот может ждать пароль
	if message.Chat.IsPrivate() && b.handlers.Admin.HandleAdminMessage(ctx, chatID, user.ID, message.Text) {
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		// Не команда в основном чате: событие активности
		if b.chatFilter.IsActivityChat(chatID) {
			b.handlers.Streak.HandleActivity(ctx, user.ID, streak.KindMessage, message.Time())
		}
		return
	}

	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("parsed command")

	if !b.rateLimiter.Allow(user.ID) {
		log.WithField("user_id", user.ID).Debug("rate limited")
		return
	}

	var replyTo *tgbotapi.User
	if message.ReplyToMessage != nil {
		replyTo = message.ReplyToMessage.From
	}

	b.routeCommand(ctx, message, cmd, args, replyTo)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string, replyTo *tgbotapi.User) {
	chatID := message.Chat.ID
	user := message.From

	switch cmd {
	case "start", "help", "команды", "помощь":
		b.sendMessage(chatID, b.helpText)

	case "login":
		if message.Chat.IsPrivate() {
			b.handlers.Admin.HandleLogin(ctx, chatID, user.ID, args)
		} else {
			b.sendMessage(chatID, "🔐 Вход только в личных сообщениях с ботом")
		}

	case "logout":
		if message.Chat.IsPrivate() {
			b.handlers.Admin.HandleLogout(ctx, chatID, user.ID)
		}

	case "баланс", "очки":
		b.handlers.Economy.HandleBalance(ctx, chatID, user.ID, replyTo)

	case "подарить":
		b.handlers.Economy.HandleGift(ctx, chatID, user.ID, replyTo, args)

	case "начислить":
		b.handlers.Economy.HandleAdjust(ctx, chatID, user.ID, replyTo, args, 1)

	case "списать":
		b.handlers.Economy.HandleAdjust(ctx, chatID, user.ID, replyTo, args, -1)

	case "топ", "рейтинг":
		b.handlers.Ranking.HandleTop(ctx, chatID, args)

	case "серия", "стрик":
		b.handlers.Streak.HandleStatus(ctx, chatID, user.ID)

	case "магазин":
		b.handlers.Shop.HandleShop(ctx, chatID)

	case "купить":
		b.handlers.Shop.HandleBuy(ctx, chatID, user, args)

	default:
		log.WithField("cmd", cmd).Debug("unknown command")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.sender.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	}
}

// CommandParser парсит русские команды с префиксами ! . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Суффикс @botname у команды отбрасывается: /топ@points_bot → топ.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	// Команда начинается с буквы сразу после префикса: "! привет" и "..." — обычный текст
	first, _ := utf8.DecodeRuneInString(text)
	if !unicode.IsLetter(first) {
		return "", nil, false
	}
	parts := strings.Fields(text)

	command := strings.ToLower(parts[0])
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
