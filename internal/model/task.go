package model

import "time"

type TaskCategory string

const (
	CategoryAd    TaskCategory = "ad"
	CategoryVideo TaskCategory = "video"
	CategoryClick TaskCategory = "click"
	CategoryPopup TaskCategory = "popup"
)

// ValidCategory reports whether c is one of the known task categories.
func ValidCategory(c TaskCategory) bool {
	switch c {
	case CategoryAd, CategoryVideo, CategoryClick, CategoryPopup:
		return true
	}
	return false
}

// Task is a completable catalog entry. Tasks are created by an admin or by
// ad-request approval and are never mutated afterward, only deleted.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Reward      float64      `json:"reward"`
	Category    TaskCategory `json:"category"`
	Icon        string       `json:"icon"`
	AdURL       string       `json:"ad_url"`
	CreatedAt   time.Time    `json:"created_at"`
}
