package model

import "time"

// UserState is a roster entry. The roster is the single source of truth for
// every user; the logged-in session resolves its user from the roster by
// username rather than holding a second copy.
type UserState struct {
	Username         string    `json:"username"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"password_hash,omitempty"`
	IsVerified       bool      `json:"is_verified"`
	IsBanned         bool      `json:"is_banned"`
	VerificationCode string    `json:"verification_code,omitempty"`
	Balance          float64   `json:"balance"`
	TasksCompleted   int       `json:"tasks_completed"`
	Level            int       `json:"level"`
	Avatar           string    `json:"avatar"`
	Country          string    `json:"country"`
	ReferralCode     string    `json:"referral_code"`
	TotalReferrals   int       `json:"total_referrals"`
	CreatedAt        time.Time `json:"created_at"`
}

// Public returns a copy safe to send to clients, with credential material
// stripped.
func (u UserState) Public() UserState {
	u.PasswordHash = ""
	u.VerificationCode = ""
	return u
}

// UserUpdate is a partial update applied to a roster entry. Nil fields are
// left untouched.
type UserUpdate struct {
	Name       *string  `json:"name,omitempty"`
	Avatar     *string  `json:"avatar,omitempty"`
	Country    *string  `json:"country,omitempty"`
	IsBanned   *bool    `json:"is_banned,omitempty"`
	IsVerified *bool    `json:"is_verified,omitempty"`
	Level      *int     `json:"level,omitempty"`
	Balance    *float64 `json:"balance,omitempty"`
}
