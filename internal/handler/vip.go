package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hferris/earnhub/internal/auth"
	"github.com/hferris/earnhub/internal/engine"
	"github.com/hferris/earnhub/internal/notify"
	"github.com/hferris/earnhub/internal/tier"
)

type VipHandler struct {
	engine *engine.Engine
	hub    *notify.Hub
	logger *slog.Logger
}

func NewVipHandler(eng *engine.Engine, hub *notify.Hub, logger *slog.Logger) *VipHandler {
	return &VipHandler{engine: eng, hub: hub, logger: logger}
}

func (h *VipHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tier.All())
}

type upgradeRequest struct {
	Level int `json:"level"`
}

func (h *VipHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())

	var req upgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	entry, err := h.engine.Upgrade(username, req.Level)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnknownTier):
			writeError(w, http.StatusBadRequest, "unknown membership tier")
		case errors.Is(err, engine.ErrInsufficientFunds):
			writeError(w, http.StatusPaymentRequired, "insufficient balance")
		case errors.Is(err, engine.ErrUnknownUser):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("upgrade", "error", err)
			writeError(w, http.StatusInternalServerError, "upgrade failed")
		}
		return
	}

	user, _ := h.engine.GetUser(username)
	h.hub.Broadcast(notify.Event("user", "upgraded", username))
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"entry": entry,
	})
}
