package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hferris/earnhub/internal/auth"
	"github.com/hferris/earnhub/internal/backup"
	"github.com/hferris/earnhub/internal/email"
	"github.com/hferris/earnhub/internal/engine"
	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/notify"
	"github.com/hferris/earnhub/internal/push"
	"github.com/hferris/earnhub/internal/store"
	"github.com/hferris/earnhub/internal/tier"
)

type AdminHandler struct {
	engine   *engine.Engine
	sessions *store.SessionStore
	hub      *notify.Hub
	notifier *push.Notifier
	email    *email.Client
	backups  *backup.Manager
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewAdminHandler(eng *engine.Engine, sessions *store.SessionStore, hub *notify.Hub, notifier *push.Notifier, emailClient *email.Client, backups *backup.Manager, settings *store.SettingsStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		engine:   eng,
		sessions: sessions,
		hub:      hub,
		notifier: notifier,
		email:    emailClient,
		backups:  backups,
		settings: settings,
		logger:   logger,
	}
}

type gateRequest struct {
	Secret string `json:"secret"`
}

// Gate elevates the current session after checking the shared admin secret.
func (h *AdminHandler) Gate(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req gateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.engine.CheckAdminSecret(req.Secret); err != nil {
		if errors.Is(err, engine.ErrAdminSecret) {
			writeError(w, http.StatusForbidden, "invalid admin secret")
			return
		}
		h.logger.Error("admin gate", "error", err)
		writeError(w, http.StatusInternalServerError, "gate check failed")
		return
	}

	if err := h.sessions.SetAdmin(ac.SessionToken, true); err != nil {
		h.logger.Error("elevate session", "error", err)
		writeError(w, http.StatusInternalServerError, "gate check failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"admin": true})
}

// Lock drops the session's admin capability.
func (h *AdminHandler) Lock(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if err := h.sessions.SetAdmin(ac.SessionToken, false); err != nil {
		h.logger.Error("demote session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to lock")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"admin": false})
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Reward      float64 `json:"reward"`
	Category    string  `json:"category"`
	Icon        string  `json:"icon"`
	AdURL       string  `json:"ad_url"`
}

func (h *AdminHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	category := model.TaskCategory(req.Category)
	if !model.ValidCategory(category) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	task, err := h.engine.AddTask(req.Title, req.Description, req.Reward, category, req.Icon, req.AdURL)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, "reward must not be negative")
			return
		}
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.hub.Broadcast(notify.Event("task", "created", task.ID))
	writeJSON(w, http.StatusCreated, task)
}

func (h *AdminHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.engine.DeleteTask(id) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	h.hub.Broadcast(notify.Event("task", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

type createBannerRequest struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

func (h *AdminHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req createBannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "name and code are required")
		return
	}

	banner := h.engine.AddBanner(req.Name, req.Code, req.Active)
	h.hub.Broadcast(notify.Event("banner", "created", banner.ID))
	writeJSON(w, http.StatusCreated, banner)
}

func (h *AdminHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners := h.engine.Banners()
	if banners == nil {
		banners = []model.BannerAd{}
	}
	writeJSON(w, http.StatusOK, banners)
}

func (h *AdminHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.engine.DeleteBanner(id) {
		writeError(w, http.StatusNotFound, "banner not found")
		return
	}
	h.hub.Broadcast(notify.Event("banner", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.engine.Users()
	if users == nil {
		users = []model.UserState{}
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateUser applies a partial admin edit to a roster entry. The change is
// classified so connected clients can show the right toast, and the affected
// user gets a push notification.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var update model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, kind, err := h.engine.AdminUpdateUser(username, update)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnknownUser):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, engine.ErrUnknownTier):
			writeError(w, http.StatusBadRequest, "unknown membership tier")
		default:
			h.logger.Error("update user", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	h.hub.Broadcast(notify.Event("user", "updated", username))
	switch kind {
	case engine.UpdateBanned:
		h.hub.Broadcast(notify.Toast(notify.LevelError, fmt.Sprintf("Account @%s has been banned", username)))
		h.notifier.NotifyAccountUpdated(username, "Your account has been suspended.")
	case engine.UpdateUnbanned:
		h.hub.Broadcast(notify.Toast(notify.LevelSuccess, fmt.Sprintf("Account @%s has been unbanned", username)))
		h.notifier.NotifyAccountUpdated(username, "Your account has been reinstated.")
	case engine.UpdateTier:
		tierName := fmt.Sprintf("tier %d", user.Level)
		if t, ok := tier.ByID(user.Level); ok {
			tierName = t.Name
		}
		h.hub.Broadcast(notify.Toast(notify.LevelSuccess, fmt.Sprintf("Membership for @%s set to %s", username, tierName)))
		h.notifier.NotifyAccountUpdated(username, "Your membership tier was changed by an administrator.")
	default:
		h.notifier.NotifyAccountUpdated(username, "Your account details were updated by an administrator.")
	}

	writeJSON(w, http.StatusOK, user)
}

// ListTransactions returns the full ledger; ?status=pending narrows it to
// entries awaiting approval.
func (h *AdminHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	history := h.engine.History()

	if r.URL.Query().Get("status") == "pending" {
		pending := history[:0]
		for _, item := range history {
			if item.Status == model.EntryPending {
				pending = append(pending, item)
			}
		}
		history = pending
	}

	if history == nil {
		history = []model.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *AdminHandler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	entry, changed := h.engine.ApproveTransaction(id)
	if !changed {
		// Unknown id and already-completed entries look the same to the
		// caller: nothing to do.
		writeJSON(w, http.StatusOK, map[string]any{"changed": false})
		return
	}

	h.hub.Broadcast(notify.Event("history", "updated", entry.ID))
	if entry.Type == model.EntryDeposit {
		h.notifier.NotifyDepositApproved(entry.Username, entry.Amount)
	}

	writeJSON(w, http.StatusOK, map[string]any{"changed": true, "entry": entry})
}

func (h *AdminHandler) ListAdRequests(w http.ResponseWriter, r *http.Request) {
	ads := h.engine.AdRequests()
	if ads == nil {
		ads = []model.UserAd{}
	}
	writeJSON(w, http.StatusOK, ads)
}

func (h *AdminHandler) ApproveAd(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ad, task, changed := h.engine.ApproveAd(id)
	if !changed {
		if ad.ID == "" {
			writeError(w, http.StatusNotFound, "ad request not found")
			return
		}
		writeError(w, http.StatusConflict, "ad request already reviewed")
		return
	}

	h.hub.Broadcast(notify.Event("ad_request", "approved", id))
	h.hub.Broadcast(notify.Event("task", "created", task.ID))
	h.notifyModeration(ad, true)

	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

func (h *AdminHandler) RejectAd(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ad, changed := h.engine.RejectAd(id)
	if !changed {
		if ad.ID == "" {
			writeError(w, http.StatusNotFound, "ad request not found")
			return
		}
		writeError(w, http.StatusConflict, "ad request already reviewed")
		return
	}

	h.hub.Broadcast(notify.Event("ad_request", "rejected", id))
	h.notifyModeration(ad, false)

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) notifyModeration(ad model.UserAd, approved bool) {
	h.notifier.NotifyAdReviewed(ad.SubmittedBy, ad.Title, approved)

	if !h.email.Configured() {
		return
	}
	user, ok := h.engine.GetUser(ad.SubmittedBy)
	if !ok {
		return
	}
	go func() {
		if err := h.email.SendModerationResult(user.Email, user.Name, ad.Title, approved); err != nil {
			h.logger.Error("send moderation email", "user", user.Username, "error", err)
		}
	}()
}

func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages := h.engine.Messages()
	if messages == nil {
		messages = []model.SupportMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *AdminHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.engine.DeleteMessage(id) {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	h.hub.Broadcast(notify.Event("message", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

var backupSettingKeys = map[string]bool{
	"backup_enabled":       true,
	"backup_s3_endpoint":   true,
	"backup_s3_bucket":     true,
	"backup_s3_region":     true,
	"backup_s3_access_key": true,
	"backup_s3_secret_key": true,
}

func (h *AdminHandler) GetBackupSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetBackupSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	// The secret key never leaves the server.
	if _, ok := settings["backup_s3_secret_key"]; ok {
		settings["backup_s3_secret_key"] = "********"
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) UpdateBackupSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	for key := range req {
		if !backupSettingKeys[key] {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown setting: %s", key))
			return
		}
	}

	for key, value := range req {
		if err := h.settings.Set(key, value); err != nil {
			h.logger.Error("save backup setting", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	settings, err := h.settings.GetBackupSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	h.backups.UpdateS3Config(backup.S3Config{
		Endpoint:  settings["backup_s3_endpoint"],
		Bucket:    settings["backup_s3_bucket"],
		Region:    settings["backup_s3_region"],
		AccessKey: settings["backup_s3_access_key"],
		SecretKey: settings["backup_s3_secret_key"],
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *AdminHandler) BackupStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backups.Status())
}

func (h *AdminHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backups.List(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

type runBackupRequest struct {
	Passphrase string `json:"passphrase"`
}

func (h *AdminHandler) RunBackup(w http.ResponseWriter, r *http.Request) {
	var req runBackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Passphrase) < 8 {
		writeError(w, http.StatusBadRequest, "passphrase must be at least 8 characters")
		return
	}

	id, err := h.backups.RunNow(r.Context(), req.Passphrase)
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]int64{"backup_id": id})
}

func (h *AdminHandler) DownloadBackup(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	body, size, err := h.backups.Download(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "backup not available")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("stream backup download", "error", err)
	}
}
