package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hferris/earnhub/internal/auth"
	"github.com/hferris/earnhub/internal/engine"
	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/notify"
)

type TaskHandler struct {
	engine *engine.Engine
	hub    *notify.Hub
	logger *slog.Logger
}

func NewTaskHandler(eng *engine.Engine, hub *notify.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{engine: eng, hub: hub, logger: logger}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks := h.engine.Tasks()
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Complete credits the task's reward, scaled by the user's tier multiplier.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())

	id := r.PathValue("id")
	task, ok := h.engine.GetTask(id)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	entry, err := h.engine.RecordEarn(username, task.Reward)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownUser) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("record earn", "task", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record reward")
		return
	}

	h.hub.Broadcast(notify.Event("history", "created", entry.ID))
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

// Banners returns the banner ads currently enabled for display.
func (h *TaskHandler) Banners(w http.ResponseWriter, r *http.Request) {
	banners := h.engine.ActiveBanners()
	if banners == nil {
		banners = []model.BannerAd{}
	}
	writeJSON(w, http.StatusOK, banners)
}
