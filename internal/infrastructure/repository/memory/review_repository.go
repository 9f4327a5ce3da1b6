package memory

import (
	"context"
	"sync"

	"github.com/yangyang7755/activityhub/internal/domain/review"
)

type ReviewRepository struct {
	mu    sync.RWMutex
	items map[string][]review.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[string][]review.Review)}
}

func (r *ReviewRepository) ListByActivity(_ context.Context, activityID string) ([]review.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]review.Review(nil), r.items[activityID]...), nil
}

func (r *ReviewRepository) Add(_ context.Context, rev review.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[rev.ActivityID] = append(r.items[rev.ActivityID], rev)

	return nil
}

type CompletionRepository struct {
	mu    sync.RWMutex
	items map[string]review.Completion
}

func NewCompletionRepository() *CompletionRepository {
	return &CompletionRepository{items: make(map[string]review.Completion)}
}

func (r *CompletionRepository) Exists(_ context.Context, activityID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[completionKey(activityID, userID)]

	return ok, nil
}

func (r *CompletionRepository) Add(_ context.Context, c review.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[completionKey(c.ActivityID, c.UserID)] = c

	return nil
}

func (r *CompletionRepository) ListByUser(_ context.Context, userID string) ([]review.Completion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]review.Completion, 0, 4)
	for _, c := range r.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}

	return out, nil
}

func completionKey(activityID, userID string) string {
	return activityID + "::" + userID
}
