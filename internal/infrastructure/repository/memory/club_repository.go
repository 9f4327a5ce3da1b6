package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yangyang7755/activityhub/internal/domain/club"
)

type ClubRepository struct {
	mu    sync.RWMutex
	items map[string]club.Club
	order []string
}

func NewClubRepository(clubs []club.Club) *ClubRepository {
	r := &ClubRepository{
		items: make(map[string]club.Club, len(clubs)),
		order: make([]string, 0, len(clubs)),
	}
	for _, c := range clubs {
		r.items[c.ID] = c
		r.order = append(r.order, c.ID)
	}

	return r
}

func (r *ClubRepository) List(_ context.Context) ([]club.Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]club.Club, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *ClubRepository) ReplaceAll(_ context.Context, clubs []club.Club) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]club.Club, len(clubs))
	r.order = r.order[:0]
	for _, c := range clubs {
		r.items[c.ID] = c
		r.order = append(r.order, c.ID)
	}

	return nil
}

func (r *ClubRepository) GetByID(_ context.Context, clubID string) (club.Club, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[clubID]
	if !ok {
		return club.Club{}, false, nil
	}

	return c, true, nil
}

// MembershipRepository keeps one row per (user, club). Per-user and per-club
// listings are both computed from the same rows.
type MembershipRepository struct {
	mu    sync.RWMutex
	items map[string]club.Membership
}

func NewMembershipRepository(memberships []club.Membership) *MembershipRepository {
	r := &MembershipRepository{items: make(map[string]club.Membership, len(memberships))}
	for _, m := range memberships {
		r.items[membershipKey(m.UserID, m.ClubID)] = m
	}

	return r
}

func (r *MembershipRepository) Get(_ context.Context, userID, clubID string) (club.Membership, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[membershipKey(userID, clubID)]
	if !ok {
		return club.Membership{}, false, nil
	}

	return m, true, nil
}

func (r *MembershipRepository) ListByUser(_ context.Context, userID string) ([]club.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]club.Membership, 0, 4)
	for _, m := range r.items {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClubID < out[j].ClubID })

	return out, nil
}

func (r *MembershipRepository) ListByClub(_ context.Context, clubID string) ([]club.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]club.Membership, 0, 4)
	for _, m := range r.items {
		if m.ClubID == clubID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}

func (r *MembershipRepository) Upsert(_ context.Context, m club.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[membershipKey(m.UserID, m.ClubID)] = m

	return nil
}

func membershipKey(userID, clubID string) string {
	return userID + "::" + clubID
}
