package store

import (
	"testing"
	"time"

	"github.com/hferris/earnhub/internal/database"
)

func setupSessionTestDB(t *testing.T) *SessionStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db)
}

func TestSessionCreate(t *testing.T) {
	ss := setupSessionTestDB(t)

	sess, err := ss.Create("alice")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.Token == "" {
		t.Error("expected non-empty token")
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.Username != "alice" {
		t.Errorf("username = %q, want %q", sess.Username, "alice")
	}
	if sess.Admin {
		t.Error("new session should not be admin")
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	ss := setupSessionTestDB(t)

	first, err := ss.Create("alice")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := ss.Create("alice")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.Token == second.Token {
		t.Error("two sessions share a token")
	}
}

func TestSessionGetByToken(t *testing.T) {
	ss := setupSessionTestDB(t)

	created, err := ss.Create("alice")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.ID != created.ID {
		t.Errorf("id = %d, want %d", sess.ID, created.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss := setupSessionTestDB(t)

	sess, err := ss.GetByToken("nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for nonexistent token")
	}
}

func TestSessionSetAdmin(t *testing.T) {
	ss := setupSessionTestDB(t)

	created, err := ss.Create("alice")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := ss.SetAdmin(created.Token, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get after elevate: %v", err)
	}
	if !sess.Admin {
		t.Error("expected admin = true after SetAdmin")
	}

	if err := ss.SetAdmin(created.Token, false); err != nil {
		t.Fatalf("clear admin: %v", err)
	}
	sess, err = ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get after demote: %v", err)
	}
	if sess.Admin {
		t.Error("expected admin = false after clearing")
	}
}

func TestSessionUpdateUsername(t *testing.T) {
	ss := setupSessionTestDB(t)

	first, err := ss.Create("alice")
	if err != nil {
		t.Fatalf("create first session: %v", err)
	}
	second, err := ss.Create("alice")
	if err != nil {
		t.Fatalf("create second session: %v", err)
	}
	other, err := ss.Create("bob")
	if err != nil {
		t.Fatalf("create bob session: %v", err)
	}

	if err := ss.UpdateUsername("alice", "alicia"); err != nil {
		t.Fatalf("update username: %v", err)
	}

	// Every session for the renamed user follows; other users are untouched.
	for _, token := range []string{first.Token, second.Token} {
		sess, err := ss.GetByToken(token)
		if err != nil {
			t.Fatalf("get after rename: %v", err)
		}
		if sess.Username != "alicia" {
			t.Errorf("session username = %q, want alicia", sess.Username)
		}
	}
	sess, err := ss.GetByToken(other.Token)
	if err != nil {
		t.Fatalf("get bob session: %v", err)
	}
	if sess.Username != "bob" {
		t.Errorf("bob session username = %q, want bob", sess.Username)
	}
}

func TestSessionDelete(t *testing.T) {
	ss := setupSessionTestDB(t)

	created, err := ss.Create("alice")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := ss.Delete(created.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	ss := setupSessionTestDB(t)

	created, err := ss.Create("alice")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Force the session into the past.
	if _, err := ss.db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, time.Now().UTC().Add(-24*time.Hour), created.ID); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	n, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get after cleanup: %v", err)
	}
	if sess != nil {
		t.Error("expected expired session to be gone")
	}
}
