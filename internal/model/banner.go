package model

// BannerAd is an admin-managed embeddable ad slot, independent of the task
// catalog.
type BannerAd struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active bool   `json:"active"`
}
