package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/infrastructure/repository/memory"
	"github.com/yangyang7755/activityhub/internal/platform/eventbus"
)

type participationBackendStub struct {
	joinErr  error
	leaveErr error
}

func (b *participationBackendStub) JoinActivity(context.Context, string, string) error {
	return b.joinErr
}

func (b *participationBackendStub) LeaveActivity(context.Context, string, string) error {
	return b.leaveErr
}

// newParticipationFixture wires the activity and participation services over
// one bus so joins patch the activity count the way the app does.
func newParticipationFixture(t *testing.T, backend ParticipationBackend) (*ParticipationService, *memory.ActivityRepository) {
	t.Helper()

	repo := memory.NewActivityRepository(memory.SeedActivities())
	bus := eventbus.NewInMemoryBus()
	NewActivityService(repo, nil, nil, bus, staticIDGenerator{id: "act-1"}, testLogger())
	service := NewParticipationService(repo, memory.NewParticipationRepository(), backend, bus, testLogger())

	return service, repo
}

func TestParticipationService_JoinUpdatesStats(t *testing.T) {
	t.Parallel()

	service, _ := newParticipationFixture(t, &participationBackendStub{})

	if err := service.Join(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID); err != nil {
		t.Fatalf("join: %v", err)
	}

	stats, err := service.Stats(context.Background(), memory.ActivityIDWestwayClimb)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.CurrentParticipants != 9 {
		t.Fatalf("expected count 9 after join, got %d", stats.CurrentParticipants)
	}

	joined, err := service.IsParticipating(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID)
	if err != nil {
		t.Fatalf("is participating: %v", err)
	}
	if !joined {
		t.Fatalf("expected user to be participating")
	}
}

func TestParticipationService_JoinTwiceFails(t *testing.T) {
	t.Parallel()

	service, _ := newParticipationFixture(t, &participationBackendStub{})

	if err := service.Join(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID); err != nil {
		t.Fatalf("first join: %v", err)
	}
	err := service.Join(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID)
	if !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}

	stats, err := service.Stats(context.Background(), memory.ActivityIDWestwayClimb)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.CurrentParticipants != 9 {
		t.Fatalf("duplicate join must not change the count, got %d", stats.CurrentParticipants)
	}
}

func TestParticipationService_JoinFullActivityFails(t *testing.T) {
	t.Parallel()

	service, repo := newParticipationFixture(t, &participationBackendStub{})

	a, _, _ := repo.GetByID(context.Background(), memory.ActivityIDWestwayClimb)
	a.CurrentParticipants = a.MaxParticipants
	if err := repo.Upsert(context.Background(), a); err != nil {
		t.Fatalf("fill activity: %v", err)
	}

	err := service.Join(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID)
	if !errors.Is(err, ErrActivityFull) {
		t.Fatalf("expected ErrActivityFull, got %v", err)
	}
}

func TestParticipationService_JoinRollsBackOnBackendRejection(t *testing.T) {
	t.Parallel()

	service, _ := newParticipationFixture(t, &participationBackendStub{joinErr: errors.New("409 conflict")})

	if err := service.Join(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID); err == nil {
		t.Fatalf("expected error")
	}

	joined, err := service.IsParticipating(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID)
	if err != nil {
		t.Fatalf("is participating: %v", err)
	}
	if joined {
		t.Fatalf("rejected join must roll back")
	}

	stats, err := service.Stats(context.Background(), memory.ActivityIDWestwayClimb)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.CurrentParticipants != 8 {
		t.Fatalf("expected count restored to 8, got %d", stats.CurrentParticipants)
	}
}

func TestParticipationService_JoinSucceedsWhenBackendDown(t *testing.T) {
	t.Parallel()

	backend := &participationBackendStub{joinErr: fmt.Errorf("%w: connection refused", ErrDependencyUnavailable)}
	service, _ := newParticipationFixture(t, backend)

	if err := service.Join(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID); err != nil {
		t.Fatalf("join with backend down: %v", err)
	}

	joined, err := service.IsParticipating(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID)
	if err != nil {
		t.Fatalf("is participating: %v", err)
	}
	if !joined {
		t.Fatalf("local join must survive an unreachable backend")
	}
}

func TestParticipationService_LeaveRestoresCount(t *testing.T) {
	t.Parallel()

	service, _ := newParticipationFixture(t, &participationBackendStub{})

	if err := service.Join(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := service.Leave(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	stats, err := service.Stats(context.Background(), memory.ActivityIDWestwayClimb)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.CurrentParticipants != 8 {
		t.Fatalf("expected count back to 8, got %d", stats.CurrentParticipants)
	}
}

func TestParticipationService_LeaveWithoutJoinFails(t *testing.T) {
	t.Parallel()

	service, _ := newParticipationFixture(t, &participationBackendStub{})

	err := service.Leave(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParticipationService_ListJoinedActivities(t *testing.T) {
	t.Parallel()

	service, _ := newParticipationFixture(t, &participationBackendStub{})

	for _, id := range []string{memory.ActivityIDWestwayClimb, memory.ActivityIDPeakHike} {
		if err := service.Join(context.Background(), id, memory.DemoUserID); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}

	joined, err := service.ListJoinedActivities(context.Background(), memory.DemoUserID)
	if err != nil {
		t.Fatalf("list joined: %v", err)
	}
	if len(joined) != 2 {
		t.Fatalf("expected 2 joined activities, got %d", len(joined))
	}

	seen := make(map[string]bool, len(joined))
	for _, a := range joined {
		seen[a.ID] = true
	}
	if !seen[memory.ActivityIDWestwayClimb] || !seen[memory.ActivityIDPeakHike] {
		t.Fatalf("unexpected joined set: %+v", joined)
	}
}

func TestParticipationService_StatsUnknownActivity(t *testing.T) {
	t.Parallel()

	service := NewParticipationService(
		memory.NewActivityRepository([]activity.Activity{}),
		memory.NewParticipationRepository(),
		&participationBackendStub{},
		nil,
		testLogger(),
	)

	_, err := service.Stats(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
