package memory

import (
	"context"
	"sync"

	"github.com/yangyang7755/activityhub/internal/domain/participation"
)

type ParticipationRepository struct {
	mu    sync.RWMutex
	items map[string]participation.Participant
}

func NewParticipationRepository() *ParticipationRepository {
	return &ParticipationRepository{items: make(map[string]participation.Participant)}
}

func (r *ParticipationRepository) Get(_ context.Context, activityID, userID string) (participation.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[participantKey(activityID, userID)]
	if !ok {
		return participation.Participant{}, false, nil
	}

	return p, true, nil
}

func (r *ParticipationRepository) ListActiveByActivity(_ context.Context, activityID string) ([]participation.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participation.Participant, 0, 4)
	for _, p := range r.items {
		if p.ActivityID == activityID && p.IsActive() {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *ParticipationRepository) ListActiveByUser(_ context.Context, userID string) ([]participation.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participation.Participant, 0, 4)
	for _, p := range r.items {
		if p.UserID == userID && p.IsActive() {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *ParticipationRepository) Upsert(_ context.Context, p participation.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[participantKey(p.ActivityID, p.UserID)] = p

	return nil
}

func participantKey(activityID, userID string) string {
	return activityID + "::" + userID
}
