package model

import "time"

type AdStatus string

const (
	AdPending  AdStatus = "pending"
	AdApproved AdStatus = "approved"
	AdRejected AdStatus = "rejected"
)

// UserAd is a user-submitted ad request awaiting moderation. Approved and
// rejected are terminal states.
type UserAd struct {
	ID          string    `json:"id"`
	SubmittedBy string    `json:"submitted_by"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Status      AdStatus  `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}
