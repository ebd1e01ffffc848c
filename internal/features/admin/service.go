// Package admin — service.go содержит аутентификацию и управление сессиями.
package admin

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/socialcredit/internal/common"
)

// Service управляет админ-доступом.
// Сессии и неудачные попытки живут в памяти процесса.
type Service struct {
	passwordHash string
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	failures map[string][]time.Time // clientKey → время неудачных попыток
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService создаёт сервис. Пустой passwordHash отключает админ-доступ.
func NewService(passwordHash string, opts ...Option) *Service {
	s := &Service{
		passwordHash: passwordHash,
		now:          time.Now,
		sessions:     make(map[string]*Session),
		failures:     make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled сообщает, настроен ли пароль администратора.
func (s *Service) Enabled() bool {
	return s.passwordHash != ""
}

// Login проверяет пароль и открывает сессию на 24 часа.
// Защита от brute-force: 3 неудачные попытки с одного clientKey
// блокируют вход на 1 час.
func (s *Service) Login(clientKey, password string) (*Session, error) {
	if !s.Enabled() {
		return nil, common.ErrAdminDisabled
	}

	now := s.now()

	s.mu.Lock()
	recent := s.recentFailuresLocked(clientKey, now)
	s.mu.Unlock()
	if recent >= MaxAttempts {
		log.WithField("client", clientKey).Warn("Вход заблокирован: слишком много попыток")
		return nil, common.ErrTooManyAttempts
	}

	// Argon2 считается вне блокировки
	if !VerifyPassword(password, s.passwordHash) {
		s.mu.Lock()
		s.failures[clientKey] = append(s.failures[clientKey], now)
		s.mu.Unlock()
		log.WithField("client", clientKey).Warn("Неверный пароль администратора")
		return nil, common.ErrWrongPassword
	}

	token, err := generateSecureToken()
	if err != nil {
		return nil, err
	}
	session := &Session{
		Token:           token,
		ClientKey:       clientKey,
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(SessionTTL),
		LastActivity:    now,
	}

	s.mu.Lock()
	s.sessions[token] = session
	delete(s.failures, clientKey)
	s.mu.Unlock()

	log.WithField("client", clientKey).Info("Администратор вошёл")
	return session, nil
}

// Authorize проверяет токен сессии и продлевает отметку активности.
func (s *Service) Authorize(token string) (*Session, error) {
	if !s.Enabled() {
		return nil, common.ErrAdminDisabled
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, common.ErrSessionExpired
	}
	if session.Expired(now) {
		delete(s.sessions, token)
		return nil, common.ErrSessionExpired
	}
	session.LastActivity = now
	return session, nil
}

// Logout закрывает сессию. Возвращает false, если её не было.
func (s *Service) Logout(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return false
	}
	delete(s.sessions, token)
	return true
}

// Cleanup удаляет истёкшие сессии и устаревшие попытки входа.
// Возвращает число удалённых сессий.
func (s *Service) Cleanup() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	for key := range s.failures {
		if s.recentFailuresLocked(key, now) == 0 {
			delete(s.failures, key)
		}
	}
	return removed
}

// ActiveSessions возвращает число открытых сессий.
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// recentFailuresLocked отбрасывает попытки старше LockoutWindow и
// возвращает число оставшихся. Вызывать под s.mu.
func (s *Service) recentFailuresLocked(clientKey string, now time.Time) int {
	attempts := s.failures[clientKey]
	cutoff := now.Add(-LockoutWindow)
	kept := attempts[:0]
	for _, at := range attempts {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(s.failures, clientKey)
		return 0
	}
	s.failures[clientKey] = kept
	return len(kept)
}
