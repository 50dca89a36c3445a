package model

import "time"

// Session is a logged-in browser session. The admin flag is session-local
// capability state: it is set by the admin gate and resets on logout.
type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Admin     bool      `json:"admin"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
