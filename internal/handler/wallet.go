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
	"github.com/hferris/earnhub/internal/notify"
)

type WalletHandler struct {
	engine *engine.Engine
	hub    *notify.Hub
	logger *slog.Logger
}

func NewWalletHandler(eng *engine.Engine, hub *notify.Hub, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{engine: eng, hub: hub, logger: logger}
}

type transactionRequest struct {
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
	Method string  `json:"method"`
	Fee    float64 `json:"fee"`
}

func (h *WalletHandler) RequestTransaction(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	kind := model.EntryType(req.Type)
	if kind != model.EntryDeposit && kind != model.EntryWithdraw {
		writeError(w, http.StatusBadRequest, "type must be deposit or withdraw")
		return
	}
	if req.Fee < 0 {
		writeError(w, http.StatusBadRequest, "fee must not be negative")
		return
	}
	if strings.TrimSpace(req.Method) == "" {
		writeError(w, http.StatusBadRequest, "method is required")
		return
	}

	entry, err := h.engine.RequestTransaction(username, req.Amount, kind, req.Method, req.Fee)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "amount must be positive")
		case errors.Is(err, engine.ErrUnknownUser):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("request transaction", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to request transaction")
		}
		return
	}

	h.hub.Broadcast(notify.Event("history", "created", entry.ID))
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry})
}

func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())

	history := h.engine.HistoryFor(username)
	if history == nil {
		history = []model.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, history)
}
