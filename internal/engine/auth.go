package engine

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/store"
	"github.com/hferris/earnhub/internal/tier"
)

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(alphabet string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			// crypto/rand failing means the platform is broken
			panic(fmt.Sprintf("random code: %v", err))
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String()
}

// Register creates a roster entry at the default tier with a fresh referral
// code and a pending verification code. The verification code is returned so
// the caller can deliver it out of band; it is never exposed through the
// public user view. A referral code belonging to an existing user credits
// that user's referral counter.
func (e *Engine) Register(username, name, email, password, country, referredBy string) (model.UserState, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if e.findUser(username) != nil {
		return model.UserState{}, "", ErrUsernameTaken
	}
	for i := range e.users {
		if e.users[i].Email == email {
			return model.UserState{}, "", ErrEmailTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.UserState{}, "", fmt.Errorf("hash password: %w", err)
	}

	code := randomCode("0123456789", 6)
	u := model.UserState{
		Username:         username,
		Name:             name,
		Email:            email,
		PasswordHash:     string(hash),
		VerificationCode: code,
		Level:            tier.DefaultID,
		Avatar:           "https://api.dicebear.com/7.x/thumbs/svg?seed=" + username,
		Country:          country,
		ReferralCode:     "EARN-" + randomCode(referralAlphabet, 6),
		CreatedAt:        now(),
	}

	if referredBy != "" {
		for i := range e.users {
			if e.users[i].ReferralCode == referredBy {
				e.users[i].TotalReferrals++
				break
			}
		}
	}

	e.users = append(e.users, u)
	e.persistUsers()

	e.logger.Info("user registered", "username", username)
	return u.Public(), code, nil
}

// VerifyCode marks the account verified when the submitted code matches.
func (e *Engine) VerifyCode(username, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.findUser(username)
	if u == nil {
		return ErrUnknownUser
	}
	if u.IsVerified {
		return nil
	}
	if code == "" || code != u.VerificationCode {
		return ErrInvalidCode
	}
	u.IsVerified = true
	u.VerificationCode = ""
	e.persistUsers()
	return nil
}

// Login authenticates a user and makes them the active session user. A
// banned account is reported distinctly from bad credentials so the caller
// can render a dedicated denial.
func (e *Engine) Login(username, password string) (model.UserState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.findUser(strings.ToLower(strings.TrimSpace(username)))
	if u == nil {
		return model.UserState{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return model.UserState{}, ErrInvalidCredentials
	}
	if u.IsBanned {
		return model.UserState{}, ErrAccountBanned
	}

	e.active = u.Username
	e.persist(store.KeyActiveUser, *u)
	e.logger.Info("user logged in", "username", u.Username)
	return u.Public(), nil
}

// Logout clears the active session user. The roster entry is untouched.
func (e *Engine) Logout(username string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != username {
		return
	}
	e.active = ""
	if err := e.store.Remove(store.KeyActiveUser); err != nil {
		e.logger.Error("remove active user", "error", err)
	}
	e.logger.Info("user logged out", "username", username)
}

// ActiveUser returns the logged-in session user resolved through the roster.
func (e *Engine) ActiveUser() (model.UserState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.findUser(e.active)
	if u == nil {
		return model.UserState{}, false
	}
	return u.Public(), true
}
