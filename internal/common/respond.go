// Package common — respond.go содержит помощники JSON-ответов HTTP API.
package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// DefaultLimit — размер выборки по умолчанию для лидербордов и истории.
const DefaultLimit = 10

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON пишет v как JSON с указанным статусом.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("Ошибка записи JSON-ответа")
	}
}

// WriteError пишет ошибку в формате {code, message}.
func WriteError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	WriteJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// WriteStoreError сопоставляет ошибку хранилища со статусом ответа.
// Подробности внутренних ошибок клиенту не отдаём, только логируем.
func WriteStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEntryNotFound), errors.Is(err, ErrChannelNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrEmptyReason), errors.Is(err, ErrInvalidChannel), errors.Is(err, ErrInvalidLimit):
		WriteError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrScoreOutOfRange):
		WriteError(w, http.StatusUnprocessableEntity, "score_out_of_range", err)
	case r.Context().Err() != nil && errors.Is(err, r.Context().Err()):
		WriteError(w, http.StatusServiceUnavailable, "timeout", nil)
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error("Ошибка хранилища")
		WriteError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// ParseLimit читает ?limit=N.
// Отсутствует — DefaultLimit; не число или меньше нуля — ErrInvalidLimit;
// больше maxLimit — ErrInvalidLimit. Ноль допустим и даёт пустую выборку.
func ParseLimit(r *http.Request, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrInvalidLimit
	}
	if maxLimit > 0 && n > maxLimit {
		return 0, ErrInvalidLimit
	}
	return n, nil
}
