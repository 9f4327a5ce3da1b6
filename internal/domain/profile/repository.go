package profile

import "context"

// Repository holds the known-profile map used to render organizer and
// participant info for other users.
type Repository interface {
	List(ctx context.Context) ([]Profile, error)
	GetByID(ctx context.Context, profileID string) (Profile, bool, error)
	Upsert(ctx context.Context, p Profile) error
}

// SnapshotStore persists the single current-user profile across sessions.
// Implementations must be safe to substitute with in-memory fakes in tests.
type SnapshotStore interface {
	LoadCurrent(ctx context.Context) (Profile, bool, error)
	SaveCurrent(ctx context.Context, p Profile) error
}
