package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hferris/earnhub/internal/model"
)

const sessionTTL = 30 * 24 * time.Hour

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create issues a new session for the given username. Sessions always start
// without the admin capability; the admin gate grants it separately.
func (s *SessionStore) Create(username string) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(sessionTTL)
	result, err := s.db.Exec(
		`INSERT INTO sessions (token, username, admin, expires_at) VALUES (?, ?, 0, ?)`,
		token, username, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getByID(id)
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var sess model.Session
	var admin int
	err := scanner.Scan(&sess.ID, &sess.Token, &sess.Username, &admin, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		return nil, err
	}
	sess.Admin = admin != 0
	return &sess, nil
}

const sessionCols = `id, token, username, admin, expires_at, created_at`

func (s *SessionStore) getByID(id int64) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// GetByToken returns the session for a token, or nil if the token is unknown
// or expired.
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE token = ?`, token)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		return nil, nil
	}
	return sess, nil
}

// SetAdmin grants or revokes the session-local admin capability.
func (s *SessionStore) SetAdmin(token string, admin bool) error {
	var a int
	if admin {
		a = 1
	}
	_, err := s.db.Exec(`UPDATE sessions SET admin = ? WHERE token = ?`, a, token)
	if err != nil {
		return fmt.Errorf("set session admin: %w", err)
	}
	return nil
}

// UpdateUsername re-keys every session for a renamed user so logged-in
// sessions survive the rename.
func (s *SessionStore) UpdateUsername(oldUsername, newUsername string) error {
	_, err := s.db.Exec(`UPDATE sessions SET username = ? WHERE username = ?`, newUsername, oldUsername)
	if err != nil {
		return fmt.Errorf("update session username: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(token string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes expired sessions and returns how many were deleted.
func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
