package engine

import (
	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/store"
)

// adTaskReward is the fixed nominal reward for tasks materialized from
// approved user ads.
const adTaskReward = 0.001

// SubmitAd files a user's ad for moderation.
func (e *Engine) SubmitAd(username, title, url string) (model.UserAd, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.findUser(username) == nil {
		return model.UserAd{}, ErrUnknownUser
	}

	req := model.UserAd{
		ID:          newID(),
		SubmittedBy: username,
		Title:       title,
		URL:         url,
		Status:      model.AdPending,
		Timestamp:   now(),
	}
	e.adRequests = append([]model.UserAd{req}, e.adRequests...)
	e.persist(store.KeyAdRequests, e.adRequests)

	e.logger.Info("ad submitted", "username", username, "ad_id", req.ID)
	return req, nil
}

// ApproveAd materializes exactly one catalog task from a pending request and
// marks it approved. Unknown ids and requests already in a terminal state
// are no-ops: re-approving never duplicates the task. The returned request
// reflects the post-transition record (zero-valued when the id is unknown)
// so callers can notify the submitter without a second lookup.
func (e *Engine) ApproveAd(adID string) (model.UserAd, *model.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req := e.findAdRequest(adID)
	if req == nil {
		return model.UserAd{}, nil, false
	}
	if req.Status != model.AdPending {
		return *req, nil, false
	}

	task := model.Task{
		ID:          newID(),
		Title:       req.Title,
		Description: "User-submitted ad from @" + req.SubmittedBy,
		Reward:      adTaskReward,
		Category:    model.CategoryClick,
		Icon:        "🔗",
		AdURL:       req.URL,
		CreatedAt:   now(),
	}
	e.tasks = append([]model.Task{task}, e.tasks...)
	req.Status = model.AdApproved

	e.persist(store.KeyTasks, e.tasks)
	e.persist(store.KeyAdRequests, e.adRequests)

	e.logger.Info("ad approved", "ad_id", adID, "task_id", task.ID)
	return *req, &task, true
}

// RejectAd marks a pending request rejected with no further side effect.
// Idempotent past the first terminal transition; like ApproveAd it returns
// the post-transition record.
func (e *Engine) RejectAd(adID string) (model.UserAd, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req := e.findAdRequest(adID)
	if req == nil {
		return model.UserAd{}, false
	}
	if req.Status != model.AdPending {
		return *req, false
	}
	req.Status = model.AdRejected
	e.persist(store.KeyAdRequests, e.adRequests)

	e.logger.Info("ad rejected", "ad_id", adID)
	return *req, true
}

// AdRequests returns the moderation queue, newest first.
func (e *Engine) AdRequests() []model.UserAd {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.UserAd, len(e.adRequests))
	copy(out, e.adRequests)
	return out
}

// AdRequestsFor returns one user's submissions, newest first.
func (e *Engine) AdRequestsFor(username string) []model.UserAd {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.UserAd
	for _, req := range e.adRequests {
		if req.SubmittedBy == username {
			out = append(out, req)
		}
	}
	return out
}

func (e *Engine) findAdRequest(id string) *model.UserAd {
	for i := range e.adRequests {
		if e.adRequests[i].ID == id {
			return &e.adRequests[i]
		}
	}
	return nil
}
