package engine

import (
	"testing"

	"github.com/hferris/earnhub/internal/model"
)

func TestSubmitAndApproveAd(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")

	req, err := e.SubmitAd("alice", "Visit my shop", "https://shop.example.com")
	if err != nil {
		t.Fatalf("submit ad: %v", err)
	}
	if req.Status != model.AdPending {
		t.Errorf("status = %q, want pending", req.Status)
	}

	ad, task, ok := e.ApproveAd(req.ID)
	if !ok {
		t.Fatal("expected approval to take effect")
	}
	if ad.Status != model.AdApproved {
		t.Errorf("returned request status = %q, want approved", ad.Status)
	}
	if ad.SubmittedBy != "alice" {
		t.Errorf("returned request submitter = %q, want alice", ad.SubmittedBy)
	}
	if task.Title != "Visit my shop" {
		t.Errorf("task title = %q", task.Title)
	}
	if task.AdURL != "https://shop.example.com" {
		t.Errorf("task url = %q", task.AdURL)
	}
	if task.Category != model.CategoryClick {
		t.Errorf("task category = %q, want click", task.Category)
	}
	if !closeTo(task.Reward, 0.001) {
		t.Errorf("task reward = %v, want 0.001", task.Reward)
	}

	reqs := e.AdRequests()
	if len(reqs) != 1 || reqs[0].Status != model.AdApproved {
		t.Errorf("request state = %+v, want approved", reqs)
	}
}

func TestApproveAdIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")
	req, _ := e.SubmitAd("alice", "Ad", "https://example.com")

	if _, _, ok := e.ApproveAd(req.ID); !ok {
		t.Fatal("first approval should take effect")
	}
	// Re-approving a terminal request never duplicates the task, but the
	// record is still returned so callers can see its terminal status.
	ad, _, ok := e.ApproveAd(req.ID)
	if ok {
		t.Error("second approval should be a no-op")
	}
	if ad.ID != req.ID || ad.Status != model.AdApproved {
		t.Errorf("no-op approval returned %+v, want the approved record", ad)
	}
	if n := len(e.Tasks()); n != 1 {
		t.Errorf("task count = %d, want 1", n)
	}
}

func TestRejectAdIsTerminal(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")
	req, _ := e.SubmitAd("alice", "Ad", "https://example.com")

	ad, ok := e.RejectAd(req.ID)
	if !ok {
		t.Fatal("expected rejection to take effect")
	}
	if ad.Status != model.AdRejected {
		t.Errorf("returned request status = %q, want rejected", ad.Status)
	}
	reqs := e.AdRequests()
	if reqs[0].Status != model.AdRejected {
		t.Errorf("status = %q, want rejected", reqs[0].Status)
	}

	// Approving an already-rejected request never creates a task and never
	// changes the status.
	if _, _, ok := e.ApproveAd(req.ID); ok {
		t.Error("approval of rejected request should be a no-op")
	}
	if n := len(e.Tasks()); n != 0 {
		t.Errorf("task count = %d, want 0", n)
	}
	if e.AdRequests()[0].Status != model.AdRejected {
		t.Error("status changed after terminal transition")
	}

	if _, ok := e.RejectAd(req.ID); ok {
		t.Error("second rejection should be a no-op")
	}
}

func TestModerateUnknownAdIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)

	ad, _, ok := e.ApproveAd("nope")
	if ok {
		t.Error("approving unknown id should be a no-op")
	}
	if ad.ID != "" {
		t.Errorf("unknown id returned record %+v, want zero value", ad)
	}
	if _, ok := e.RejectAd("nope"); ok {
		t.Error("rejecting unknown id should be a no-op")
	}
}

func TestAdRequestsFor(t *testing.T) {
	e, _ := newTestEngine(t)
	register(t, e, "alice")
	register(t, e, "bob")
	e.SubmitAd("alice", "A1", "https://a.example.com")
	e.SubmitAd("bob", "B1", "https://b.example.com")
	e.SubmitAd("alice", "A2", "https://a2.example.com")

	mine := e.AdRequestsFor("alice")
	if len(mine) != 2 {
		t.Fatalf("alice requests = %d, want 2", len(mine))
	}
	// Newest first.
	if mine[0].Title != "A2" {
		t.Errorf("first request = %q, want A2", mine[0].Title)
	}
}

func TestSubmitAdUnknownUser(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, err := e.SubmitAd("ghost", "Ad", "https://example.com"); err != ErrUnknownUser {
		t.Errorf("error = %v, want ErrUnknownUser", err)
	}
}
