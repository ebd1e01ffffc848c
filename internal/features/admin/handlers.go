// Package admin — handlers.go обрабатывает вход администратора и
// проверяет токен сессии на админских маршрутах.
// Поток: POST /api/admin/login → токен → заголовок Authorization: Bearer <токен>.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"serotonyl.ru/socialcredit/internal/common"
)

type ctxKey struct{}

// Handler обрабатывает запросы админ-доступа.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик админ-доступа.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// LoginRequest — тело POST /api/admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// HandleLogin — POST /api/admin/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "bad_request", errors.New("некорректное тело запроса"))
		return
	}

	session, err := h.service.Login(ClientKey(r), req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, session)
}

// HandleLogout — POST /api/admin/logout (за RequireAdmin).
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

// RequireAdmin пропускает запрос только с действующим токеном сессии.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if !h.service.Enabled() {
				writeAuthError(w, common.ErrAdminDisabled)
				return
			}
			common.WriteError(w, http.StatusUnauthorized, "unauthorized", errors.New("требуется авторизация"))
			return
		}

		session, err := h.service.Authorize(token)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, session)))
	})
}

// SessionFrom возвращает сессию, положенную RequireAdmin.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}

// ClientKey — ключ клиента для лимитов: IP без порта.
// Заголовкам прокси верим, только если включён HTTP_TRUST_PROXY
// (тогда RemoteAddr уже переписан chi middleware.RealIP).
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrAdminDisabled):
		common.WriteError(w, http.StatusForbidden, "admin_disabled", err)
	case errors.Is(err, common.ErrTooManyAttempts):
		common.WriteError(w, http.StatusTooManyRequests, "too_many_attempts", err)
	case errors.Is(err, common.ErrWrongPassword), errors.Is(err, common.ErrSessionExpired):
		common.WriteError(w, http.StatusUnauthorized, "unauthorized", err)
	default:
		common.WriteError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
