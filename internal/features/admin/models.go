// Package admin реализует админ-доступ к API с парольной аутентификацией.
// models.go описывает сессии администратора.
package admin

import "time"

// Session — активная сессия администратора. Хранится только в памяти.
type Session struct {
	Token           string    `json:"token"`
	ClientKey       string    `json:"-"`
	AuthenticatedAt time.Time `json:"authenticated_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	LastActivity    time.Time `json:"-"`
}

// Expired сообщает, истекла ли сессия к моменту now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Параметры защиты входа
const (
	SessionTTL    = 24 * time.Hour // Время жизни сессии
	LockoutWindow = 1 * time.Hour  // Окно подсчёта неудачных попыток
	MaxAttempts   = 3              // Неудачных попыток до блокировки
)
