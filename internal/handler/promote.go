package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hferris/earnhub/internal/auth"
	"github.com/hferris/earnhub/internal/engine"
	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/notify"
)

// PromoteHandler covers user-submitted ads: submission and the submitter's
// own request list. Moderation lives in the admin handler.
type PromoteHandler struct {
	engine *engine.Engine
	hub    *notify.Hub
	logger *slog.Logger
}

func NewPromoteHandler(eng *engine.Engine, hub *notify.Hub, logger *slog.Logger) *PromoteHandler {
	return &PromoteHandler{engine: eng, hub: hub, logger: logger}
}

type submitAdRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (h *PromoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())

	var req submitAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.URL = strings.TrimSpace(req.URL)
	if req.Title == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, "title and url are required")
		return
	}
	if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "url must be http or https")
		return
	}

	ad, err := h.engine.SubmitAd(username, req.Title, req.URL)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownUser) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("submit ad", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit ad")
		return
	}

	h.hub.Broadcast(notify.Event("ad_request", "created", ad.ID))
	writeJSON(w, http.StatusCreated, ad)
}

func (h *PromoteHandler) Mine(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())

	ads := h.engine.AdRequestsFor(username)
	if ads == nil {
		ads = []model.UserAd{}
	}
	writeJSON(w, http.StatusOK, ads)
}
