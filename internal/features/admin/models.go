// Package admin определяет, кто может выполнять админские команды.
// models.go описывает сессии и состояние диалога входа.
package admin

import "time"

// Session — активная сессия администратора, открытая через /login.
type Session struct {
	ID              string
	UserID          int64
	AuthenticatedAt time.Time
	ExpiresAt       time.Time
}

// AdminState — состояние диалога с админом.
// После /login без пароля бот ждёт пароль следующим сообщением.
type AdminState struct {
	State     string
	ExpiresAt time.Time // Когда состояние истекает (5 минут)
}

// Возможные состояния админ-диалога
const (
	StateNone             = ""                  // Нет активного состояния
	StateAwaitingPassword = "awaiting_password" // Ждём пароль
)

// Ограничения входа
const (
	MaxFailedAttempts = 3
	AttemptWindow     = time.Hour
	SessionTTL        = 24 * time.Hour
	StateTTL          = 5 * time.Minute
)
