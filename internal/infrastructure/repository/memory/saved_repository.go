package memory

import (
	"context"
	"sync"

	"github.com/yangyang7755/activityhub/internal/domain/saved"
)

type SavedRepository struct {
	mu    sync.RWMutex
	items map[string]saved.SavedActivity
	order []string
}

func NewSavedRepository() *SavedRepository {
	return &SavedRepository{items: make(map[string]saved.SavedActivity)}
}

func (r *SavedRepository) ListByUser(_ context.Context, userID string) ([]saved.SavedActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]saved.SavedActivity, 0, len(r.order))
	for _, key := range r.order {
		s, ok := r.items[key]
		if ok && s.UserID == userID {
			out = append(out, s)
		}
	}

	return out, nil
}

func (r *SavedRepository) Get(_ context.Context, userID, activityID string) (saved.SavedActivity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[savedKey(userID, activityID)]
	if !ok {
		return saved.SavedActivity{}, false, nil
	}

	return s, true, nil
}

func (r *SavedRepository) Put(_ context.Context, s saved.SavedActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := savedKey(s.UserID, s.Activity.ID)
	if _, ok := r.items[key]; !ok {
		r.order = append(r.order, key)
	}
	r.items[key] = s

	return nil
}

func (r *SavedRepository) Delete(_ context.Context, userID, activityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := savedKey(userID, activityID)
	if _, ok := r.items[key]; !ok {
		return nil
	}
	delete(r.items, key)
	for i, existing := range r.order {
		if existing == key {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func savedKey(userID, activityID string) string {
	return userID + "::" + activityID
}
