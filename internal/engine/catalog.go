package engine

import (
	"github.com/hferris/earnhub/internal/model"
	"github.com/hferris/earnhub/internal/store"
)

// Tasks returns the task catalog, newest first.
func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// GetTask looks up one catalog task.
func (e *Engine) GetTask(id string) (model.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// AddTask appends an admin-created task to the catalog.
func (e *Engine) AddTask(title, description string, reward float64, category model.TaskCategory, icon, adURL string) (model.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if reward < 0 {
		return model.Task{}, ErrInvalidAmount
	}

	task := model.Task{
		ID:          newID(),
		Title:       title,
		Description: description,
		Reward:      reward,
		Category:    category,
		Icon:        icon,
		AdURL:       adURL,
		CreatedAt:   now(),
	}
	e.tasks = append(e.tasks, task)
	e.persist(store.KeyTasks, e.tasks)

	e.logger.Info("task added", "task_id", task.ID)
	return task, nil
}

// DeleteTask removes a task from the catalog. Unknown ids are a no-op.
func (e *Engine) DeleteTask(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.tasks {
		if e.tasks[i].ID == id {
			e.tasks = append(e.tasks[:i], e.tasks[i+1:]...)
			e.persist(store.KeyTasks, e.tasks)
			e.logger.Info("task deleted", "task_id", id)
			return true
		}
	}
	return false
}

// Banners returns the banner catalog.
func (e *Engine) Banners() []model.BannerAd {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.BannerAd, len(e.banners))
	copy(out, e.banners)
	return out
}

// ActiveBanners returns only banners flagged active, in catalog order.
func (e *Engine) ActiveBanners() []model.BannerAd {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.BannerAd
	for _, b := range e.banners {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

// AddBanner appends a banner ad to the catalog.
func (e *Engine) AddBanner(name, code string, active bool) model.BannerAd {
	e.mu.Lock()
	defer e.mu.Unlock()

	banner := model.BannerAd{
		ID:     newID(),
		Name:   name,
		Code:   code,
		Active: active,
	}
	e.banners = append(e.banners, banner)
	e.persist(store.KeyBanners, e.banners)

	e.logger.Info("banner added", "banner_id", banner.ID)
	return banner
}

// DeleteBanner removes a banner. Unknown ids are a no-op.
func (e *Engine) DeleteBanner(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.banners {
		if e.banners[i].ID == id {
			e.banners = append(e.banners[:i], e.banners[i+1:]...)
			e.persist(store.KeyBanners, e.banners)
			e.logger.Info("banner deleted", "banner_id", id)
			return true
		}
	}
	return false
}
