package engine

import (
	"strings"

	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/store"
	"github.com/hferris/earnhub/internal/tier"
)

// UpdateKind classifies an admin user update so the notification layer can
// pick a message.
type UpdateKind int

const (
	UpdateGeneric UpdateKind = iota
	UpdateBanned
	UpdateUnbanned
	UpdateTier
)

// Users returns the roster with credential material stripped.
func (e *Engine) Users() []model.UserState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.UserState, len(e.users))
	for i, u := range e.users {
		out[i] = u.Public()
	}
	return out
}

// GetUser looks up one roster entry.
func (e *Engine) GetUser(username string) (model.UserState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.findUser(username)
	if u == nil {
		return model.UserState{}, false
	}
	return u.Public(), true
}

// UpdateProfile applies a user's own profile edit (username, name, avatar,
// country). A username change re-keys every collection that references the
// old name — roster, active-user index, ledger entries, ad requests — in the
// same operation, so no record is left pointing at a name that no longer
// exists. The new username must be free.
func (e *Engine) UpdateProfile(username, newUsername, name, avatar, country string) (model.UserState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.findUser(username)
	if u == nil {
		return model.UserState{}, ErrUnknownUser
	}

	renamed := false
	newUsername = strings.ToLower(strings.TrimSpace(newUsername))
	if newUsername != "" && newUsername != u.Username {
		if e.findUser(newUsername) != nil {
			return model.UserState{}, ErrUsernameTaken
		}
		old := u.Username
		u.Username = newUsername
		for i := range e.history {
			if e.history[i].Username == old {
				e.history[i].Username = newUsername
			}
		}
		for i := range e.adRequests {
			if e.adRequests[i].SubmittedBy == old {
				e.adRequests[i].SubmittedBy = newUsername
			}
		}
		if e.active == old {
			e.active = newUsername
		}
		renamed = true
	}

	if name != "" {
		u.Name = name
	}
	if avatar != "" {
		u.Avatar = avatar
	}
	if country != "" {
		u.Country = country
	}

	e.persistUsers()
	if renamed {
		e.persist(store.KeyHistory, e.history)
		e.persist(store.KeyAdRequests, e.adRequests)
		e.logger.Info("username changed", "from", username, "to", u.Username)
	}
	return u.Public(), nil
}

// AdminUpdateUser merges a partial update into the matching roster entry.
// The active session resolves its user through the roster, so a ban or tier
// change is visible to a logged-in session in this same call — there is no
// stale-session window. The returned kind classifies what changed, with ban
// state taking precedence over tier, for the notification layer.
func (e *Engine) AdminUpdateUser(username string, update model.UserUpdate) (model.UserState, UpdateKind, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.findUser(username)
	if u == nil {
		return model.UserState{}, UpdateGeneric, ErrUnknownUser
	}

	if update.Level != nil {
		if _, ok := tier.ByID(*update.Level); !ok {
			return model.UserState{}, UpdateGeneric, ErrUnknownTier
		}
	}

	kind := UpdateGeneric
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	if update.Country != nil {
		u.Country = *update.Country
	}
	if update.IsVerified != nil {
		u.IsVerified = *update.IsVerified
	}
	if update.Balance != nil {
		u.Balance = *update.Balance
	}
	if update.Level != nil {
		u.Level = *update.Level
		kind = UpdateTier
	}
	if update.IsBanned != nil {
		u.IsBanned = *update.IsBanned
		if u.IsBanned {
			kind = UpdateBanned
		} else {
			kind = UpdateUnbanned
		}
	}

	e.persistUsers()
	e.logger.Info("admin updated user", "username", username, "kind", int(kind))
	return u.Public(), kind, nil
}
