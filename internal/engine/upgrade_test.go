package engine

import (
	"strings"
	"testing"

	"github.com/hferris/earnhub/internal/model"
)

func TestUpgradeExactBalanceSucceeds(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")
	balance := 5.0
	e.AdminUpdateUser("alice", model.UserUpdate{Balance: &balance})

	// Equality is sufficient, not exclusive.
	entry, err := e.Upgrade("alice", 2)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if !closeTo(entry.Amount, -5) {
		t.Errorf("entry amount = %v, want -5", entry.Amount)
	}
	if entry.Type != model.EntryWithdraw {
		t.Errorf("entry type = %q, want withdraw", entry.Type)
	}
	if entry.Status != model.EntryCompleted {
		t.Errorf("entry status = %q, want completed", entry.Status)
	}
	if !strings.Contains(entry.Action, "VIP Basic") {
		t.Errorf("entry action = %q, want tier name", entry.Action)
	}

	u, _ := e.GetUser("alice")
	if !closeTo(u.Balance, 0) {
		t.Errorf("balance = %v, want 0", u.Balance)
	}
	if u.Level != 2 {
		t.Errorf("level = %d, want 2", u.Level)
	}
}

func TestUpgradeInsufficientFunds(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")
	balance := 4.999
	e.AdminUpdateUser("alice", model.UserUpdate{Balance: &balance})

	if _, err := e.Upgrade("alice", 2); err != ErrInsufficientFunds {
		t.Fatalf("error = %v, want ErrInsufficientFunds", err)
	}

	// State untouched on failure.
	u, _ := e.GetUser("alice")
	if !closeTo(u.Balance, 4.999) {
		t.Errorf("balance = %v, want 4.999", u.Balance)
	}
	if u.Level != 1 {
		t.Errorf("level = %d, want 1", u.Level)
	}
	if n := len(e.HistoryFor("alice")); n != 0 {
		t.Errorf("history length = %d, want 0", n)
	}
}

func TestUpgradeUnknownTier(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")

	if _, err := e.Upgrade("alice", 99); err != ErrUnknownTier {
		t.Errorf("error = %v, want ErrUnknownTier", err)
	}
}

func TestUpgradeUnknownUser(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.Upgrade("ghost", 2); err != ErrUnknownUser {
		t.Errorf("error = %v, want ErrUnknownUser", err)
	}
}
