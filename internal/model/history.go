package model

import "time"

type EntryType string

const (
	EntryEarn     EntryType = "earn"
	EntryDeposit  EntryType = "deposit"
	EntryWithdraw EntryType = "withdraw"
)

type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntryCompleted EntryStatus = "completed"
)

// HistoryItem is a ledger entry. Entries are append-only; the only mutation
// ever applied after creation is the pending→completed status transition.
type HistoryItem struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Action    string      `json:"action"`
	Amount    float64     `json:"amount"`
	Fee       float64     `json:"fee,omitempty"`
	Type      EntryType   `json:"type"`
	Status    EntryStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}
