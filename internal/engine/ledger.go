package engine

import (
	"fmt"

	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/store"
	"github.com/hferris/earnhub/internal/tier"
)

// RecordEarn credits a task reward. The nominal reward is scaled by the
// user's tier multiplier, the balance and completion counter move together,
// and the appended entry carries the post-multiplier amount so it matches
// the balance delta exactly.
func (e *Engine) RecordEarn(username string, nominalReward float64) (model.HistoryItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.findUser(username)
	if u == nil {
		return model.HistoryItem{}, ErrUnknownUser
	}

	actual := nominalReward * tier.MultiplierFor(u.Level)
	u.Balance += actual
	u.TasksCompleted++

	entry := model.HistoryItem{
		ID:        newID(),
		Username:  username,
		Action:    "Ad Reward",
		Amount:    actual,
		Type:      model.EntryEarn,
		Status:    model.EntryCompleted,
		Timestamp: now(),
	}
	e.history = append([]model.HistoryItem{entry}, e.history...)

	e.persistUsers()
	e.persist(store.KeyHistory, e.history)

	e.logger.Info("earn recorded", "username", username, "amount", actual)
	return entry, nil
}

// RequestTransaction appends a pending ledger entry. Withdrawals reserve the
// funds immediately (balance -= amount+fee, no floor check) so the same
// balance cannot be withdrawn twice; deposits leave the balance untouched
// until an admin approves them. The pending status on a withdrawal is
// bookkeeping only.
func (e *Engine) RequestTransaction(username string, amount float64, kind model.EntryType, method string, fee float64) (model.HistoryItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if kind != model.EntryDeposit && kind != model.EntryWithdraw {
		return model.HistoryItem{}, fmt.Errorf("transaction kind %q not allowed", kind)
	}
	if amount <= 0 {
		return model.HistoryItem{}, ErrInvalidAmount
	}

	u := e.findUser(username)
	if u == nil {
		return model.HistoryItem{}, ErrUnknownUser
	}

	label := "Deposit"
	if kind == model.EntryWithdraw {
		label = "Withdrawal"
	}
	entry := model.HistoryItem{
		ID:        newID(),
		Username:  username,
		Action:    fmt.Sprintf("%s (%s)", label, method),
		Amount:    amount,
		Fee:       fee,
		Type:      kind,
		Status:    model.EntryPending,
		Timestamp: now(),
	}
	e.history = append([]model.HistoryItem{entry}, e.history...)

	if kind == model.EntryWithdraw {
		u.Balance -= amount + fee
		e.persistUsers()
	}
	e.persist(store.KeyHistory, e.history)

	e.logger.Info("transaction requested", "username", username, "kind", kind, "amount", amount, "fee", fee)
	return entry, nil
}

// ApproveTransaction moves a pending entry to completed. Crediting happens
// here for deposits and only here; withdrawals were already debited at
// request time. Unknown ids and already-completed entries are no-ops, which
// keeps double-clicked approvals harmless. The returned bool reports whether
// anything changed.
func (e *Engine) ApproveTransaction(entryID string) (model.HistoryItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.history {
		if e.history[i].ID != entryID {
			continue
		}
		if e.history[i].Status != model.EntryPending {
			return e.history[i], false
		}
		e.history[i].Status = model.EntryCompleted
		if e.history[i].Type == model.EntryDeposit {
			if u := e.findUser(e.history[i].Username); u != nil {
				u.Balance += e.history[i].Amount
				e.persistUsers()
			}
		}
		e.persist(store.KeyHistory, e.history)
		e.logger.Info("transaction approved", "entry_id", entryID, "type", e.history[i].Type)
		return e.history[i], true
	}
	return model.HistoryItem{}, false
}

// History returns the full ledger, newest first.
func (e *Engine) History() []model.HistoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.HistoryItem, len(e.history))
	copy(out, e.history)
	return out
}

// HistoryFor returns one user's ledger entries, newest first.
func (e *Engine) HistoryFor(username string) []model.HistoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.HistoryItem
	for _, item := range e.history {
		if item.Username == username {
			out = append(out, item)
		}
	}
	return out
}
