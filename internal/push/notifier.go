package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hferris/earnhub/internal/store"
)

// Notifier fans a notification out to every subscription a user has
// registered. Delivery is best effort: failures are logged, expired
// subscriptions are pruned, and callers never block on the push service.
type Notifier struct {
	service *Service
	push    *store.PushStore
	logger  *slog.Logger
}

func NewNotifier(svc *Service, pushStore *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		service: svc,
		push:    pushStore,
		logger:  logger,
	}
}

// NotifyDepositApproved tells the user their pending deposit was credited.
func (n *Notifier) NotifyDepositApproved(username string, amount float64) {
	n.send(username, Payload{
		Title: "Deposit approved",
		Body:  fmt.Sprintf("Your deposit of $%.2f has been credited to your balance.", amount),
		URL:   "/wallet",
		Tag:   "deposit-approved",
	})
}

// NotifyAdReviewed tells the submitter the outcome of ad moderation.
func (n *Notifier) NotifyAdReviewed(username, adTitle string, approved bool) {
	body := fmt.Sprintf("Your ad %q was not approved.", adTitle)
	if approved {
		body = fmt.Sprintf("Your ad %q is now live in the task feed.", adTitle)
	}
	n.send(username, Payload{
		Title: "Ad reviewed",
		Body:  body,
		URL:   "/promote",
		Tag:   "ad-reviewed",
	})
}

// NotifyAccountUpdated tells the user an administrator changed their account.
func (n *Notifier) NotifyAccountUpdated(username, change string) {
	n.send(username, Payload{
		Title: "Account updated",
		Body:  change,
		URL:   "/profile",
		Tag:   "account-updated",
	})
}

func (n *Notifier) send(username string, payload Payload) {
	if !n.service.Configured() {
		return
	}

	subs, err := n.push.ListByUser(username)
	if err != nil {
		n.logger.Error("push: list subscriptions", "user", username, "error", err)
		return
	}

	for _, sub := range subs {
		if err := n.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := n.push.DeleteByEndpoint(sub.Endpoint); err != nil {
					n.logger.Error("push: prune expired subscription", "error", err)
				}
				continue
			}
			n.logger.Error("push: send notification", "user", username, "tag", payload.Tag, "error", err)
		}
	}
}
