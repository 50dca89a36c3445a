package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hferris/earnhub/internal/auth"
	"github.com/hferris/earnhub/internal/engine"
	"github.com/hferris/earnhub/internal/model"
)

type SupportHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewSupportHandler(eng *engine.Engine, logger *slog.Logger) *SupportHandler {
	return &SupportHandler{engine: eng, logger: logger}
}

type contactRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func (h *SupportHandler) Contact(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	msg, err := h.engine.ContactAdmin(username, req.Text, model.MessageType(req.Type))
	if err != nil {
		if errors.Is(err, engine.ErrUnknownUser) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("contact admin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
