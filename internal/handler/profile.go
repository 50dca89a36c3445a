package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hferris/earnhub/internal/auth"
	"github.com/hferris/earnhub/internal/engine"
	"github.com/hferris/earnhub/internal/store"
)

type ProfileHandler struct {
	engine    *engine.Engine
	sessions  *store.SessionStore
	pushStore *store.PushStore
	logger    *slog.Logger
}

func NewProfileHandler(eng *engine.Engine, sessions *store.SessionStore, pushStore *store.PushStore, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		engine:    eng,
		sessions:  sessions,
		pushStore: pushStore,
		logger:    logger,
	}
}

type profileUpdateRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Country  string `json:"country"`
}

// Update applies a profile edit. A username change re-keys the engine's
// collections inside the engine; the session and push-subscription rows are
// re-keyed here so the current login survives the rename.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.engine.UpdateProfile(username, strings.TrimSpace(req.Username), strings.TrimSpace(req.Name), strings.TrimSpace(req.Avatar), strings.TrimSpace(req.Country))
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		case errors.Is(err, engine.ErrUnknownUser):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("update profile", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	if user.Username != username {
		if err := h.sessions.UpdateUsername(username, user.Username); err != nil {
			h.logger.Error("rekey sessions after rename", "error", err)
		}
		if err := h.pushStore.UpdateUsername(username, user.Username); err != nil {
			h.logger.Error("rekey push subscriptions after rename", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
