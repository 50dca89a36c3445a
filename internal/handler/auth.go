package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hferris/earnhub/internal/auth"
	"github.com/hferris/earnhub/internal/email"
	"github.com/hferris/earnhub/internal/engine"
	"github.com/hferris/earnhub/internal/store"
)

type AuthHandler struct {
	engine   *engine.Engine
	sessions *store.SessionStore
	email    *email.Client
	logger   *slog.Logger
}

func NewAuthHandler(eng *engine.Engine, sessions *store.SessionStore, emailClient *email.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		engine:   eng,
		sessions: sessions,
		email:    emailClient,
		logger:   logger,
	}
}

type registerRequest struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Country    string `json:"country"`
	ReferredBy string `json:"referred_by"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "username, name, and email are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, code, err := h.engine.Register(req.Username, req.Name, req.Email, req.Password, req.Country, req.ReferredBy)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		case errors.Is(err, engine.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			h.logger.Error("register", "error", err)
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	if h.email.Configured() {
		go func() {
			if err := h.email.SendVerificationCode(user.Email, user.Name, code); err != nil {
				h.logger.Error("send verification email", "user", user.Username, "error", err)
			}
		}()
	}

	sess, err := h.sessions.Create(user.Username)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	setSessionCookie(w, r, sess.Token)

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":       user,
		"email_sent": h.email.Configured(),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.engine.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrAccountBanned):
			writeError(w, http.StatusForbidden, "account banned")
		case errors.Is(err, engine.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid username or password")
		default:
			h.logger.Error("login", "error", err)
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	sess, err := h.sessions.Create(user.Username)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	setSessionCookie(w, r, sess.Token)

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if username := auth.Username(r.Context()); username != "" {
		h.engine.Logout(username)
	}
	if token := auth.SessionToken(r.Context()); token != "" {
		if err := h.sessions.Delete(token); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}
	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

type verifyRequest struct {
	Code string `json:"code"`
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	username := auth.Username(r.Context())

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.engine.VerifyCode(username, strings.TrimSpace(req.Code)); err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidCode):
			writeError(w, http.StatusBadRequest, "invalid verification code")
		case errors.Is(err, engine.ErrUnknownUser):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("verify code", "error", err)
			writeError(w, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	user, _ := h.engine.GetUser(username)
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	user, ok := h.engine.GetUser(ac.Username)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"admin": ac.Admin,
	})
}
