// Package members запоминает отображаемые имена участников чата.
// Имена сохраняются в снапшоте (user_names) и используются в рейтингах.
package members

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Member — данные участника, которые приходят в апдейтах Telegram.
type Member struct {
	UserID    int64
	Username  string // @username (может быть пустым)
	FirstName string
	LastName  string
}

// FromUser собирает Member из пользователя Telegram.
func FromUser(u *tgbotapi.User) Member {
	return Member{
		UserID:    u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — имя + фамилию.
func (m Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	if name == "" {
		return FallbackName(m.UserID)
	}
	return name
}

// FallbackName — имя для пользователя, которого бот ещё не видел.
func FallbackName(userID int64) string {
	return "id" + strconv.FormatInt(userID, 10)
}
