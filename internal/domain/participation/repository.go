package participation

import "context"

// Repository describes participant persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, activityID, userID string) (Participant, bool, error)
	ListActiveByActivity(ctx context.Context, activityID string) ([]Participant, error)
	ListActiveByUser(ctx context.Context, userID string) ([]Participant, error)
	Upsert(ctx context.Context, p Participant) error
}
