package engine

import (
	"testing"

	"github.com/hferris/earnhub/internal/model"
)

func TestAdminBanReachesActiveSessionImmediately(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")
	login(t, e, "alice")

	banned := true
	_, kind, err := e.AdminUpdateUser("alice", model.UserUpdate{IsBanned: &banned})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if kind != UpdateBanned {
		t.Errorf("kind = %v, want UpdateBanned", kind)
	}

	// The active session resolves through the roster: no stale window.
	active, ok := e.ActiveUser()
	if !ok {
		t.Fatal("expected active user")
	}
	if !active.IsBanned {
		t.Error("active session user not banned in the same call")
	}
}

func TestAdminUpdateClassification(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")

	level := 2
	if _, kind, _ := e.AdminUpdateUser("alice", model.UserUpdate{Level: &level}); kind != UpdateTier {
		t.Errorf("tier change kind = %v, want UpdateTier", kind)
	}

	name := "Alice B"
	if _, kind, _ := e.AdminUpdateUser("alice", model.UserUpdate{Name: &name}); kind != UpdateGeneric {
		t.Errorf("name change kind = %v, want UpdateGeneric", kind)
	}

	unban := false
	if _, kind, _ := e.AdminUpdateUser("alice", model.UserUpdate{IsBanned: &unban}); kind != UpdateUnbanned {
		t.Errorf("unban kind = %v, want UpdateUnbanned", kind)
	}

	// Ban state outranks a simultaneous tier change for classification.
	ban := true
	level = 3
	_, kind, err := e.AdminUpdateUser("alice", model.UserUpdate{IsBanned: &ban, Level: &level})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if kind != UpdateBanned {
		t.Errorf("combined update kind = %v, want UpdateBanned", kind)
	}
	u, _ := e.GetUser("alice")
	if u.Level != 3 {
		t.Errorf("level = %d, want 3", u.Level)
	}
}

func TestAdminUpdateUnknownUserOrTier(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")

	if _, _, err := e.AdminUpdateUser("ghost", model.UserUpdate{}); err != ErrUnknownUser {
		t.Errorf("unknown user error = %v, want ErrUnknownUser", err)
	}

	level := 42
	if _, _, err := e.AdminUpdateUser("alice", model.UserUpdate{Level: &level}); err != ErrUnknownTier {
		t.Errorf("unknown tier error = %v, want ErrUnknownTier", err)
	}
	u, _ := e.GetUser("alice")
	if u.Level != 1 {
		t.Errorf("level = %d, want 1 (state untouched on bad update)", u.Level)
	}
}

func TestAdminBalanceEdit(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")

	balance := 3.5
	if _, _, err := e.AdminUpdateUser("alice", model.UserUpdate{Balance: &balance}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if got := balanceOf(t, e, "alice"); !closeTo(got, 3.5) {
		t.Errorf("balance = %v, want 3.5", got)
	}
}

func TestUpdateProfile(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")

	u, err := e.UpdateProfile("alice", "", "Alice Smith", "https://example.com/a.png", "")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if u.Name != "Alice Smith" {
		t.Errorf("name = %q, want %q", u.Name, "Alice Smith")
	}
	if u.Avatar != "https://example.com/a.png" {
		t.Errorf("avatar = %q", u.Avatar)
	}
	// Empty fields are left untouched.
	if u.Country != "US" {
		t.Errorf("country = %q, want US", u.Country)
	}
	if u.Username != "alice" {
		t.Errorf("username = %q, want alice (empty username leaves it untouched)", u.Username)
	}
}

func TestUpdateProfileRenamesUser(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")
	login(t, e, "alice")
	e.RecordEarn("alice", 0.01)
	e.SubmitAd("alice", "My ad", "https://example.com")

	u, err := e.UpdateProfile("alice", "Alicia", "", "", "")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if u.Username != "alicia" {
		t.Errorf("username = %q, want alicia (normalized)", u.Username)
	}

	// The roster holds exactly one entry, under the new name.
	if _, ok := e.GetUser("alice"); ok {
		t.Error("old username still resolves")
	}
	if _, ok := e.GetUser("alicia"); !ok {
		t.Fatal("new username does not resolve")
	}

	// The active session follows the rename in the same call.
	active, ok := e.ActiveUser()
	if !ok || active.Username != "alicia" {
		t.Errorf("active user = %+v, want alicia", active)
	}

	// Ledger entries and ad requests are re-keyed to the new name.
	if n := len(e.HistoryFor("alicia")); n != 1 {
		t.Errorf("history entries for alicia = %d, want 1", n)
	}
	if n := len(e.HistoryFor("alice")); n != 0 {
		t.Errorf("history entries for alice = %d, want 0", n)
	}
	if n := len(e.AdRequestsFor("alicia")); n != 1 {
		t.Errorf("ad requests for alicia = %d, want 1", n)
	}
}

func TestUpdateProfileRenameCollision(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")
	register(t, e, "bob")

	if _, err := e.UpdateProfile("alice", "bob", "New Name", "", ""); err != ErrUsernameTaken {
		t.Fatalf("error = %v, want ErrUsernameTaken", err)
	}

	// A rejected rename leaves everything untouched, including the other
	// fields of the same request.
	u, _ := e.GetUser("alice")
	if u.Username != "alice" || u.Name == "New Name" {
		t.Errorf("state changed on rejected rename: %+v", u)
	}
}

func TestUsersStripsCredentials(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")

	users := e.Users()
	if len(users) != 1 {
		t.Fatalf("roster length = %d, want 1", len(users))
	}
	if users[0].PasswordHash != "" {
		t.Error("password hash leaked through roster view")
	}
	if users[0].VerificationCode != "" {
		t.Error("verification code leaked through roster view")
	}
}

func TestOneRosterEntryPerUsername(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")
	login(t, e, "alice")
	e.RecordEarn("alice", 0.01)
	e.UpdateProfile("alice", "", "Alice Prime", "", "")

	count := 0
	for _, u := range e.Users() {
		if u.Username == "alice" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("roster entries for alice = %d, want 1", count)
	}

	// The session view and the roster view agree after mutations to both.
	active, _ := e.ActiveUser()
	roster, _ := e.GetUser("alice")
	if active != roster {
		t.Errorf("active %+v diverged from roster %+v", active, roster)
	}
}
