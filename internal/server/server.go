// Package server wires stores, the engine, handlers and middleware into a
// single HTTP server.
package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hferris/earnhub/internal/backup"
	"github.com/hferris/earnhub/internal/email"
	"github.com/hferris/earnhub/internal/engine"
	"github.com/hferris/earnhub/internal/handler"
	"github.com/hferris/earnhub/internal/middleware"
	"github.com/hferris/earnhub/internal/notify"
	"github.com/hferris/earnhub/internal/push"
	"github.com/hferris/earnhub/internal/store"
)

// Config carries everything New needs beyond the database handle.
type Config struct {
	AdminSecret string

	PostmarkToken string
	FromEmail     string

	VAPIDPublicKey  string
	VAPIDPrivateKey string

	Backup backup.Config
}

type Server struct {
	db            *sql.DB
	hub           *notify.Hub
	engine        *engine.Engine
	authH         *handler.AuthHandler
	profileH      *handler.ProfileHandler
	taskH         *handler.TaskHandler
	walletH       *handler.WalletHandler
	vipH          *handler.VipHandler
	promoteH      *handler.PromoteHandler
	supportH      *handler.SupportHandler
	pushH         *handler.PushHandler
	adminH        *handler.AdminHandler
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	hub := notify.NewHub(logger.With("component", "notify"))

	blobStore := store.NewBlobStore(db)
	sessionStore := store.NewSessionStore(db)
	settingsStore := store.NewSettingsStore(db)
	backupStore := store.NewBackupStore(db)
	pushStore := store.NewPushStore(db)

	eng, err := engine.New(blobStore, cfg.AdminSecret, logger.With("component", "engine"))
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}

	emailClient := email.NewClient(cfg.PostmarkToken, cfg.FromEmail)

	pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	notifier := push.NewNotifier(pushSvc, pushStore, logger.With("component", "push"))

	backupMgr := backup.NewManager(cfg.Backup, db, backupStore, settingsStore,
		logger.With("component", "backup"),
		func(s backup.Status) {
			hub.Broadcast(notify.Message{
				Type:   "backup_status",
				Entity: "backup",
				Action: string(s.State),
				Extra: map[string]any{
					"in_progress": s.InProgress,
					"error":       s.Error,
				},
			})
		})

	return &Server{
		db:            db,
		hub:           hub,
		engine:        eng,
		authH:         handler.NewAuthHandler(eng, sessionStore, emailClient, logger.With("component", "auth")),
		profileH:      handler.NewProfileHandler(eng, sessionStore, pushStore, logger.With("component", "profile")),
		taskH:         handler.NewTaskHandler(eng, hub, logger.With("component", "task")),
		walletH:       handler.NewWalletHandler(eng, hub, logger.With("component", "wallet")),
		vipH:          handler.NewVipHandler(eng, hub, logger.With("component", "vip")),
		promoteH:      handler.NewPromoteHandler(eng, hub, logger.With("component", "promote")),
		supportH:      handler.NewSupportHandler(eng, logger.With("component", "support")),
		pushH:         handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
		adminH:        handler.NewAdminHandler(eng, sessionStore, hub, notifier, emailClient, backupMgr, settingsStore, logger.With("component", "admin")),
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		logger:        logger,
	}, nil
}

// SessionStore exposes the session store for periodic cleanup.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter exposes the rate limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Router builds the full route table. Login and register stay outside the
// auth wall and are rate limited per client IP; everything else requires a
// session, and /api/admin/ additionally requires an unlocked admin session.
func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	rateLimited := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	outerMux.Handle("POST /api/auth/register", rateLimited(http.HandlerFunc(s.authH.Register)))
	outerMux.Handle("POST /api/auth/login", rateLimited(http.HandlerFunc(s.authH.Login)))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()

	// Session
	protectedMux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	protectedMux.HandleFunc("POST /api/auth/verify", s.authH.Verify)
	protectedMux.HandleFunc("GET /api/auth/me", s.authH.Me)
	protectedMux.HandleFunc("PUT /api/profile", s.profileH.Update)

	// Earning
	protectedMux.HandleFunc("GET /api/tasks", s.taskH.List)
	protectedMux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	protectedMux.HandleFunc("GET /api/banners", s.taskH.Banners)

	// Wallet
	protectedMux.HandleFunc("POST /api/wallet/transactions", s.walletH.RequestTransaction)
	protectedMux.HandleFunc("GET /api/wallet/history", s.walletH.History)

	// VIP tiers
	protectedMux.HandleFunc("GET /api/vip/tiers", s.vipH.ListTiers)
	protectedMux.HandleFunc("POST /api/vip/upgrade", s.vipH.Upgrade)

	// Ad promotion
	protectedMux.HandleFunc("POST /api/ads", s.promoteH.Submit)
	protectedMux.HandleFunc("GET /api/ads/mine", s.promoteH.Mine)

	// Support
	protectedMux.HandleFunc("POST /api/support/contact", s.supportH.Contact)

	// Web push
	protectedMux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	protectedMux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	protectedMux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	protectedMux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	protectedMux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)

	// WebSocket
	protectedMux.Handle("GET /ws", notify.Handler(s.hub, s.logger.With("component", "notify")))

	// Admin gate only needs a session; it is what unlocks the rest.
	protectedMux.HandleFunc("POST /api/admin/gate", s.adminH.Gate)
	protectedMux.Handle("/api/admin/", middleware.RequireAdmin(s.adminRouter()))

	authed := middleware.RequireAuth(s.sessionStore, s.engine)
	outerMux.Handle("/", authed(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) adminRouter() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/admin/lock", s.adminH.Lock)

	mux.HandleFunc("POST /api/admin/tasks", s.adminH.CreateTask)
	mux.HandleFunc("DELETE /api/admin/tasks/{id}", s.adminH.DeleteTask)

	mux.HandleFunc("GET /api/admin/banners", s.adminH.ListBanners)
	mux.HandleFunc("POST /api/admin/banners", s.adminH.CreateBanner)
	mux.HandleFunc("DELETE /api/admin/banners/{id}", s.adminH.DeleteBanner)

	mux.HandleFunc("GET /api/admin/users", s.adminH.ListUsers)
	mux.HandleFunc("PUT /api/admin/users/{username}", s.adminH.UpdateUser)

	mux.HandleFunc("GET /api/admin/transactions", s.adminH.ListTransactions)
	mux.HandleFunc("POST /api/admin/transactions/{id}/approve", s.adminH.ApproveTransaction)

	mux.HandleFunc("GET /api/admin/ads", s.adminH.ListAdRequests)
	mux.HandleFunc("POST /api/admin/ads/{id}/approve", s.adminH.ApproveAd)
	mux.HandleFunc("POST /api/admin/ads/{id}/reject", s.adminH.RejectAd)

	mux.HandleFunc("GET /api/admin/messages", s.adminH.ListMessages)
	mux.HandleFunc("DELETE /api/admin/messages/{id}", s.adminH.DeleteMessage)

	mux.HandleFunc("GET /api/admin/backup/settings", s.adminH.GetBackupSettings)
	mux.HandleFunc("PUT /api/admin/backup/settings", s.adminH.UpdateBackupSettings)
	mux.HandleFunc("GET /api/admin/backup/status", s.adminH.BackupStatus)
	mux.HandleFunc("GET /api/admin/backups", s.adminH.ListBackups)
	mux.HandleFunc("POST /api/admin/backups/run", s.adminH.RunBackup)
	mux.HandleFunc("GET /api/admin/backups/{id}/download", s.adminH.DownloadBackup)

	return mux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
