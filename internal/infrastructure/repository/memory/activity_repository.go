package memory

import (
	"context"
	"sync"

	"github.com/yangyang7755/activityhub/internal/domain/activity"
)

type ActivityRepository struct {
	mu    sync.RWMutex
	items map[string]activity.Activity
	order []string
}

func NewActivityRepository(activities []activity.Activity) *ActivityRepository {
	r := &ActivityRepository{
		items: make(map[string]activity.Activity, len(activities)),
		order: make([]string, 0, len(activities)),
	}
	for _, a := range activities {
		r.items[a.ID] = a
		r.order = append(r.order, a.ID)
	}

	return r
}

func (r *ActivityRepository) List(_ context.Context) ([]activity.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]activity.Activity, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *ActivityRepository) GetByID(_ context.Context, activityID string) (activity.Activity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[activityID]
	if !ok {
		return activity.Activity{}, false, nil
	}

	return a, true, nil
}

func (r *ActivityRepository) Upsert(_ context.Context, a activity.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[a.ID]; !ok {
		r.order = append(r.order, a.ID)
	}
	r.items[a.ID] = a

	return nil
}

func (r *ActivityRepository) ReplaceAll(_ context.Context, activities []activity.Activity) error {
	items := make(map[string]activity.Activity, len(activities))
	order := make([]string, 0, len(activities))
	for _, a := range activities {
		if _, ok := items[a.ID]; !ok {
			order = append(order, a.ID)
		}
		items[a.ID] = a
	}

	r.mu.Lock()
	r.items = items
	r.order = order
	r.mu.Unlock()

	return nil
}
