package activity

import "context"

// Repository describes activity persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Activity, error)
	GetByID(ctx context.Context, activityID string) (Activity, bool, error)
	Upsert(ctx context.Context, a Activity) error
	ReplaceAll(ctx context.Context, activities []Activity) error
}
