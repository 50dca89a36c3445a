package engine

import (
	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/store"
	"github.com/hferris/earnhub/internal/tier"
)

// Upgrade purchases a membership level. A balance exactly equal to the price
// is sufficient. On success the price is debited, the level set, and a
// completed withdraw entry appended with the negated price to denote the
// outflow. Insufficient funds leave state untouched.
func (e *Engine) Upgrade(username string, levelID int) (model.HistoryItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := tier.ByID(levelID)
	if !ok {
		// The tier table is a closed static set; an unknown id means a
		// caller bug, not user input.
		return model.HistoryItem{}, ErrUnknownTier
	}

	u := e.findUser(username)
	if u == nil {
		return model.HistoryItem{}, ErrUnknownUser
	}
	if u.Balance < t.Price {
		return model.HistoryItem{}, ErrInsufficientFunds
	}

	u.Balance -= t.Price
	u.Level = t.ID

	entry := model.HistoryItem{
		ID:        newID(),
		Username:  username,
		Action:    "Upgrade: " + t.Name,
		Amount:    -t.Price,
		Type:      model.EntryWithdraw,
		Status:    model.EntryCompleted,
		Timestamp: now(),
	}
	e.history = append([]model.HistoryItem{entry}, e.history...)

	e.persistUsers()
	e.persist(store.KeyHistory, e.history)

	e.logger.Info("tier upgraded", "username", username, "level", t.ID)
	return entry, nil
}
