// Package socialcredit — handlers.go отдаёт рейтинг через HTTP API.
package socialcredit

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/socialcredit/internal/common"
)

// Handler обрабатывает HTTP-запросы рейтинга.
type Handler struct {
	service  *Service
	maxLimit int
}

// NewHandler создаёт обработчик. maxLimit — потолок ?limit=.
func NewHandler(service *Service, maxLimit int) *Handler {
	return &Handler{service: service, maxLimit: maxLimit}
}

// ScoreResponse — рейтинг пользователя вместе со званием и уровнями.
type ScoreResponse struct {
	Entry    *ScoreEntry `json:"entry" yaml:"entry"`
	Standing Standing    `json:"standing" yaml:"standing"`
}

// UpdateRequest — тело POST .../score.
type UpdateRequest struct {
	Change         int64   `json:"change"`
	Reason         string  `json:"reason"`
	Username       string  `json:"username,omitempty"`
	MessageContent *string `json:"message_content,omitempty"`
}

// UpdateResponse — результат изменения рейтинга.
type UpdateResponse struct {
	UserID   string   `json:"user_id" yaml:"user_id"`
	GuildID  string   `json:"guild_id" yaml:"guild_id"`
	Change   int64    `json:"change" yaml:"change"`
	NewScore int64    `json:"new_score" yaml:"new_score"`
	Standing Standing `json:"standing" yaml:"standing"`
}

// HandleRank — GET /api/ranks/{score}.
func (h *Handler) HandleRank(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.ParseInt(chi.URLParam(r, "score"), 10, 64)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "bad_request", errors.New("рейтинг должен быть целым числом"))
		return
	}
	common.WriteJSON(w, http.StatusOK, StandingFor(score))
}

// HandleGlobalLeaderboard — GET /api/leaderboard.
func (h *Handler) HandleGlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := common.ParseLimit(r, h.maxLimit)
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	entries, err := h.service.GlobalLeaderboard(r.Context(), limit)
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, entries)
}

// HandleServerLeaderboard — GET /api/guilds/{guildID}/leaderboard.
func (h *Handler) HandleServerLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := common.ParseLimit(r, h.maxLimit)
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	entries, err := h.service.ServerLeaderboard(r.Context(), chi.URLParam(r, "guildID"), limit)
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, entries)
}

// HandleServerStats — GET /api/guilds/{guildID}/stats.
func (h *Handler) HandleServerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.ServerStats(r.Context(), chi.URLParam(r, "guildID"))
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, stats)
}

// HandleUserScore — GET /api/guilds/{guildID}/users/{userID}/score.
// Для неизвестного пользователя — рейтинг 0, не 404.
func (h *Handler) HandleUserScore(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetUserEntry(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "guildID"))
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, ScoreResponse{Entry: entry, Standing: StandingFor(entry.Score)})
}

// HandleUserHistory — GET /api/guilds/{guildID}/users/{userID}/history.
func (h *Handler) HandleUserHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := common.ParseLimit(r, h.maxLimit)
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	history, err := h.service.UserHistory(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "guildID"), limit)
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, history)
}

// HandleUpdateScore — POST /api/guilds/{guildID}/users/{userID}/score (админ).
func (h *Handler) HandleUpdateScore(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "bad_request", errors.New("некорректное тело запроса"))
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		common.WriteStoreError(w, r, common.ErrEmptyReason)
		return
	}

	userID := chi.URLParam(r, "userID")
	guildID := chi.URLParam(r, "guildID")

	opts := []UpdateOption{WithUsername(req.Username)}
	if req.MessageContent != nil {
		opts = append(opts, WithMessageContent(*req.MessageContent))
	}

	newScore, err := h.service.UpdateScore(r.Context(), userID, guildID, req.Change, req.Reason, opts...)
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"guild_id":  guildID,
		"change":    req.Change,
		"new_score": newScore,
	}).Info("Рейтинг изменён через API")

	common.WriteJSON(w, http.StatusOK, UpdateResponse{
		UserID:   userID,
		GuildID:  guildID,
		Change:   req.Change,
		NewScore: newScore,
		Standing: StandingFor(newScore),
	})
}
