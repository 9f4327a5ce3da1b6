package saved

import "context"

// Repository describes saved-list persistence needs from use cases.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]SavedActivity, error)
	Get(ctx context.Context, userID, activityID string) (SavedActivity, bool, error)
	Put(ctx context.Context, s SavedActivity) error
	Delete(ctx context.Context, userID, activityID string) error
}
