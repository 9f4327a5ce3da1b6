package review

import "context"

// Repository describes review persistence needs from use cases.
type Repository interface {
	ListByActivity(ctx context.Context, activityID string) ([]Review, error)
	Add(ctx context.Context, r Review) error
}

// CompletionRepository records finished activities per user.
type CompletionRepository interface {
	Exists(ctx context.Context, activityID, userID string) (bool, error)
	Add(ctx context.Context, c Completion) error
	ListByUser(ctx context.Context, userID string) ([]Completion, error)
}
