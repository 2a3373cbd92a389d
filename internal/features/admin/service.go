// Package admin — service.go содержит проверку прав, аутентификацию по паролю
// и хранение сессий в памяти процесса.
package admin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/points-bot/internal/common"
)

// Service управляет правами администратора.
// Админ — это id из ADMIN_IDS либо пользователь с активной сессией.
type Service struct {
	adminIDs     map[int64]bool
	passwordHash string
	now          common.Clock

	mu       sync.Mutex
	sessions map[int64]*Session
	attempts map[int64][]time.Time // Неудачные попытки входа
	states   map[int64]*AdminState
}

// NewService создаёт сервис. Пустой passwordHash отключает вход по паролю.
func NewService(adminIDs []int64, passwordHash string) *Service {
	ids := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = true
	}
	return &Service{
		adminIDs:     ids,
		passwordHash: strings.TrimSpace(passwordHash),
		now:          time.Now,
		sessions:     make(map[int64]*Session),
		attempts:     make(map[int64][]time.Time),
		states:       make(map[int64]*AdminState),
	}
}

// LoginEnabled сообщает, задан ли ADMIN_PASSWORD_HASH.
func (s *Service) LoginEnabled() bool {
	return s.passwordHash != ""
}

// IsAdmin проверяет права пользователя.
func (s *Service) IsAdmin(userID int64) bool {
	if s.adminIDs[userID] {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSession(userID) != nil
}

// Require возвращает ErrPermissionDenied, если пользователь не админ.
func (s *Service) Require(userID int64) error {
	if !s.IsAdmin(userID) {
		return common.ErrPermissionDenied
	}
	return nil
}

// Login проверяет пароль и открывает сессию на SessionTTL.
// 3 неудачные попытки за час блокируют вход до истечения окна.
func (s *Service) Login(userID int64, password string) (*Session, error) {
	if !s.LoginEnabled() {
		return nil, common.ErrPermissionDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	recent := s.recentFailures(userID, now)
	if len(recent) >= MaxFailedAttempts {
		return nil, common.ErrTooManyAttempts
	}

	if !verifyArgon2id(password, s.passwordHash) {
		s.attempts[userID] = append(recent, now)
		log.WithFields(log.Fields{
			"user_id":  userID,
			"attempts": len(s.attempts[userID]),
		}).Warn("Неудачная попытка входа в админку")
		return nil, common.ErrWrongPassword
	}

	delete(s.attempts, userID)
	session := &Session{
		ID:              generateSecureToken(),
		UserID:          userID,
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(SessionTTL),
	}
	s.sessions[userID] = session

	log.WithFields(log.Fields{
		"user_id":    userID,
		"expires_at": session.ExpiresAt,
	}).Info("Открыта сессия администратора")

	return session, nil
}

// Logout закрывает сессию. Возвращает false, если сессии не было.
func (s *Service) Logout(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeSession(userID) == nil {
		return false
	}
	delete(s.sessions, userID)
	return true
}

// activeSession возвращает живую сессию, протухшие удаляет. Вызывать под mu.
func (s *Service) activeSession(userID int64) *Session {
	session, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	if !s.now().Before(session.ExpiresAt) {
		delete(s.sessions, userID)
		return nil
	}
	return session
}

// recentFailures оставляет только попытки внутри окна. Вызывать под mu.
func (s *Service) recentFailures(userID int64, now time.Time) []time.Time {
	all := s.attempts[userID]
	recent := all[:0]
	for _, at := range all {
		if now.Sub(at) < AttemptWindow {
			recent = append(recent, at)
		}
	}
	if len(recent) == 0 {
		delete(s.attempts, userID)
		return nil
	}
	s.attempts[userID] = recent
	return recent
}

// GetState возвращает текущее состояние диалога.
func (s *Service) GetState(userID int64) *AdminState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[userID]
	if !ok {
		return nil
	}
	// Проверяем истечение
	if s.now().After(state.ExpiresAt) {
		delete(s.states, userID)
		return nil
	}
	return state
}

// SetState устанавливает состояние диалога с 5-минутным таймаутом.
func (s *Service) SetState(userID int64, stateName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = &AdminState{
		State:     stateName,
		ExpiresAt: s.now().Add(StateTTL),
	}
}

// ClearState сбрасывает состояние диалога.
func (s *Service) ClearState(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}

// --- Криптографические утилиты ---

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// HashPassword кодирует пароль в формат, который понимает verifyArgon2id.
func HashPassword(password string, memory, iterations uint32, parallelism uint8) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("ошибка генерации соли: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// generateSecureToken генерирует идентификатор сессии для логов.
func generateSecureToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
