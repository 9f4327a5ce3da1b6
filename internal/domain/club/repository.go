package club

import "context"

// Repository describes club persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Club, error)
	GetByID(ctx context.Context, clubID string) (Club, bool, error)
	ReplaceAll(ctx context.Context, clubs []Club) error
}

// MembershipRepository is the single source of truth for club membership.
// A user's memberships and a club's member list are two reads over the same
// rows, never two collections kept in sync by hand.
type MembershipRepository interface {
	Get(ctx context.Context, userID, clubID string) (Membership, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Membership, error)
	ListByClub(ctx context.Context, clubID string) ([]Membership, error)
	Upsert(ctx context.Context, m Membership) error
}
