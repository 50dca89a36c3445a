// Package engine holds the in-memory state tree and every balance, roster,
// catalog, and moderation rule that mutates it. All collections are loaded
// from the persistence adapter at startup and written back after each
// mutation (write-through). Operations are serialized behind one mutex: the
// model is single-session, but the HTTP surface above it is not.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/store"
)

var (
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountBanned      = errors.New("account banned")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAdminSecret        = errors.New("incorrect admin password")
	ErrUnknownUser        = errors.New("unknown user")
	ErrUnknownTier        = errors.New("unknown tier")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidCode        = errors.New("incorrect verification code")
)

// Persister is the durable blob store the engine writes through to.
// Load returning (nil, nil) means the key is absent and the collection
// starts empty.
type Persister interface {
	Load(key string) ([]byte, error)
	Save(key string, blob []byte) error
	Remove(key string) error
}

type Engine struct {
	mu     sync.Mutex
	store  Persister
	logger *slog.Logger

	// adminHash is the bcrypt hash of the shared admin secret. The gate
	// compares against the hash so the plaintext never sits in memory
	// longer than startup.
	adminHash []byte

	// users is the roster: the single source of truth for every account.
	// active names the logged-in session user; it is an index into the
	// roster, never a second copy.
	users      []model.UserState
	active     string
	tasks      []model.Task
	banners    []model.BannerAd
	history    []model.HistoryItem
	messages   []model.SupportMessage
	adRequests []model.UserAd
}

// New loads every collection from the persistence adapter. Absent blobs
// initialize empty.
func New(p Persister, adminSecret string, logger *slog.Logger) (*Engine, error) {
	e := &Engine{store: p, logger: logger}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin secret: %w", err)
	}
	e.adminHash = hash

	if err := loadInto(p, store.KeyUsers, &e.users); err != nil {
		return nil, err
	}
	if err := loadInto(p, store.KeyTasks, &e.tasks); err != nil {
		return nil, err
	}
	if err := loadInto(p, store.KeyBanners, &e.banners); err != nil {
		return nil, err
	}
	if err := loadInto(p, store.KeyHistory, &e.history); err != nil {
		return nil, err
	}
	if err := loadInto(p, store.KeyMessages, &e.messages); err != nil {
		return nil, err
	}
	if err := loadInto(p, store.KeyAdRequests, &e.adRequests); err != nil {
		return nil, err
	}

	// The active-user key is a snapshot; the roster stays authoritative.
	// Only the username survives a restart.
	var snapshot model.UserState
	blob, err := p.Load(store.KeyActiveUser)
	if err != nil {
		return nil, err
	}
	if blob != nil {
		if err := json.Unmarshal(blob, &snapshot); err != nil {
			return nil, fmt.Errorf("decode %s: %w", store.KeyActiveUser, err)
		}
		if e.findUser(snapshot.Username) != nil {
			e.active = snapshot.Username
		}
	}

	return e, nil
}

func loadInto(p Persister, key string, v any) error {
	blob, err := p.Load(key)
	if err != nil {
		return err
	}
	if blob == nil {
		return nil
	}
	if err := json.Unmarshal(blob, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// persist writes a collection back through the adapter. Durability is
// best-effort: a failed save is logged and the in-memory state stands.
func (e *Engine) persist(key string, v any) {
	blob, err := json.Marshal(v)
	if err != nil {
		e.logger.Error("encode collection", "key", key, "error", err)
		return
	}
	if err := e.store.Save(key, blob); err != nil {
		e.logger.Error("save collection", "key", key, "error", err)
	}
}

// persistUsers saves the roster and, when the active session user was
// touched, its snapshot as well.
func (e *Engine) persistUsers() {
	e.persist(store.KeyUsers, e.users)
	if u := e.findUser(e.active); u != nil {
		e.persist(store.KeyActiveUser, *u)
	}
}

// findUser returns a pointer into the roster, or nil. Callers hold e.mu.
func (e *Engine) findUser(username string) *model.UserState {
	for i := range e.users {
		if e.users[i].Username == username {
			return &e.users[i]
		}
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

// CheckAdminSecret compares the supplied secret against the configured one.
// Every attempt is logged; there is no lockout, the caller just re-prompts.
func (e *Engine) CheckAdminSecret(secret string) error {
	err := bcrypt.CompareHashAndPassword(e.adminHash, []byte(secret))
	if err != nil {
		e.logger.Warn("admin gate", "result", "denied")
		return ErrAdminSecret
	}
	e.logger.Info("admin gate", "result", "granted")
	return nil
}
