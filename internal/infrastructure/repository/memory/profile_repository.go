package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/yangyang7755/activityhub/internal/domain/profile"
)

type ProfileRepository struct {
	mu    sync.RWMutex
	items map[string]profile.Profile
}

func NewProfileRepository(profiles []profile.Profile) *ProfileRepository {
	r := &ProfileRepository{items: make(map[string]profile.Profile, len(profiles))}
	for _, p := range profiles {
		r.items[p.ID] = p.Clone()
	}

	return r
}

func (r *ProfileRepository) List(_ context.Context) ([]profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profile.Profile, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *ProfileRepository) GetByID(_ context.Context, profileID string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[profileID]
	if !ok {
		return profile.Profile{}, false, nil
	}

	return p.Clone(), true, nil
}

func (r *ProfileRepository) Upsert(_ context.Context, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.ID] = p.Clone()

	return nil
}

// ProfileSnapshotStore is the in-memory stand-in for the sqlite snapshot
// store, used in tests and when no snapshot path is configured.
type ProfileSnapshotStore struct {
	mu      sync.RWMutex
	current profile.Profile
	loaded  bool
}

func NewProfileSnapshotStore() *ProfileSnapshotStore {
	return &ProfileSnapshotStore{}
}

func (s *ProfileSnapshotStore) LoadCurrent(_ context.Context) (profile.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return profile.Profile{}, false, nil
	}

	return s.current.Clone(), true, nil
}

func (s *ProfileSnapshotStore) SaveCurrent(_ context.Context, p profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = p.Clone()
	s.loaded = true

	return nil
}
