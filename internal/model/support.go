package model

import "time"

type MessageType string

const (
	MessageSupport  MessageType = "support"
	MessageFeedback MessageType = "feedback"
)

// SupportMessage is a message sent to the admin inbox. Append-only; deletable
// only by an admin.
type SupportMessage struct {
	ID         string      `json:"id"`
	SenderName string      `json:"sender_name"`
	Text       string      `json:"text"`
	Type       MessageType `json:"type"`
	Timestamp  time.Time   `json:"timestamp"`
}
