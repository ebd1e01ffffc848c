// Package monitoring — handlers.go управляет списком каналов через HTTP API.
// Все маршруты только для админа.
package monitoring

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"serotonyl.ru/socialcredit/internal/common"
)

// Handler обрабатывает HTTP-запросы каналов.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик каналов.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// AddRequest — тело PUT .../channels/{channelID}.
type AddRequest struct {
	ChannelName string `json:"channel_name"`
	AddedBy     string `json:"added_by"`
}

// HandleList — GET /api/guilds/{guildID}/channels.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.ListChannels(r.Context(), chi.URLParam(r, "guildID"))
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, channels)
}

// HandleGet — GET /api/guilds/{guildID}/channels/{channelID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetChannel(r.Context(), chi.URLParam(r, "guildID"), chi.URLParam(r, "channelID"))
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, c)
}

// HandlePut — PUT /api/guilds/{guildID}/channels/{channelID}. Тело необязательно.
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		common.WriteError(w, http.StatusBadRequest, "bad_request", errors.New("некорректное тело запроса"))
		return
	}
	if req.AddedBy == "" {
		req.AddedBy = "admin"
	}

	c, err := h.service.AddChannel(r.Context(),
		chi.URLParam(r, "guildID"), chi.URLParam(r, "channelID"), req.ChannelName, req.AddedBy)
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, c)
}

// HandleDelete — DELETE /api/guilds/{guildID}/channels/{channelID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.RemoveChannel(r.Context(), chi.URLParam(r, "guildID"), chi.URLParam(r, "channelID"))
	if err != nil {
		common.WriteStoreError(w, r, err)
		return
	}
	if !removed {
		common.WriteStoreError(w, r, common.ErrChannelNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
