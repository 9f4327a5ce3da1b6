package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/yangyang7755/activityhub/internal/domain/profile"
	"github.com/yangyang7755/activityhub/internal/infrastructure/repository/memory"
	"github.com/yangyang7755/activityhub/internal/platform/eventbus"
)

type profileBackendStub struct {
	updateErr error
}

func (b *profileBackendStub) UpdateProfile(context.Context, profile.Profile) error {
	return b.updateErr
}

func newProfileService(backend ProfileBackend, bus eventbus.Bus) *ProfileService {
	return NewProfileService(
		memory.NewProfileRepository(memory.SeedProfiles()),
		memory.NewProfileSnapshotStore(),
		backend,
		bus,
		memory.SeedCurrentProfile(),
		testLogger(),
	)
}

func strPtr(s string) *string { return &s }

func TestProfileService_CurrentProfile_FallsBackToSeed(t *testing.T) {
	t.Parallel()

	service := newProfileService(&profileBackendStub{}, nil)

	current, err := service.CurrentProfile(context.Background())
	if err != nil {
		t.Fatalf("current profile: %v", err)
	}
	if current.ID != memory.DemoUserID {
		t.Fatalf("expected seeded demo profile, got %+v", current)
	}
}

func TestProfileService_UpdateProfile_MergesAndPersists(t *testing.T) {
	t.Parallel()

	service := newProfileService(&profileBackendStub{}, nil)

	updated, err := service.UpdateProfile(context.Background(), UpdateProfileInput{
		Bio:        strPtr("New bio"),
		Visibility: &profile.Visibility{ShowEmail: true, ShowBio: true, ShowSkills: true},
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Bio != "New bio" {
		t.Fatalf("expected merged bio, got %q", updated.Bio)
	}
	if updated.FullName != "Maddie Wei" {
		t.Fatalf("untouched fields must survive the merge, got %q", updated.FullName)
	}
	if !updated.Visibility.ShowEmail {
		t.Fatalf("expected visibility replaced")
	}

	// The edit must survive a fresh read.
	current, err := service.CurrentProfile(context.Background())
	if err != nil {
		t.Fatalf("current profile: %v", err)
	}
	if current.Bio != "New bio" {
		t.Fatalf("expected persisted bio, got %q", current.Bio)
	}
}

func TestProfileService_UpdateProfile_FansOutToAllSubsystems(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewInMemoryBus()
	fired := make(map[eventbus.Topic]int)
	topics := []eventbus.Topic{
		eventbus.TopicProfileUpdated,
		eventbus.TopicOrganizerProfileUpdated,
		eventbus.TopicParticipantProfileUpdated,
		eventbus.TopicFollowerProfileUpdated,
		eventbus.TopicClubMemberProfileUpdated,
		eventbus.TopicReviewerProfileUpdated,
	}
	for _, topic := range topics {
		topic := topic
		bus.Subscribe(topic, func(context.Context, eventbus.Event) {
			fired[topic]++
		})
	}

	service := newProfileService(&profileBackendStub{}, bus)

	if _, err := service.UpdateProfile(context.Background(), UpdateProfileInput{FullName: strPtr("Maddie W.")}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	for _, topic := range topics {
		if fired[topic] != 1 {
			t.Fatalf("expected topic %s to fire once, got %d", topic, fired[topic])
		}
	}
}

func TestProfileService_UpdateProfile_RollsBackOnBackendRejection(t *testing.T) {
	t.Parallel()

	service := newProfileService(&profileBackendStub{updateErr: errors.New("422 unprocessable")}, nil)

	if _, err := service.UpdateProfile(context.Background(), UpdateProfileInput{Bio: strPtr("rejected bio")}); err == nil {
		t.Fatalf("expected error")
	}

	current, err := service.CurrentProfile(context.Background())
	if err != nil {
		t.Fatalf("current profile: %v", err)
	}
	if current.Bio == "rejected bio" {
		t.Fatalf("rejected edit must roll back")
	}
}

func TestProfileService_UpdateProfile_KeepsEditWhenBackendDown(t *testing.T) {
	t.Parallel()

	backend := &profileBackendStub{updateErr: fmt.Errorf("%w: connection refused", ErrDependencyUnavailable)}
	service := newProfileService(backend, nil)

	if _, err := service.UpdateProfile(context.Background(), UpdateProfileInput{Bio: strPtr("offline bio")}); err != nil {
		t.Fatalf("update with backend down: %v", err)
	}

	current, err := service.CurrentProfile(context.Background())
	if err != nil {
		t.Fatalf("current profile: %v", err)
	}
	if current.Bio != "offline bio" {
		t.Fatalf("offline edit must persist, got %q", current.Bio)
	}
}

func TestProfileService_UpdateProfile_EmptyNameRejected(t *testing.T) {
	t.Parallel()

	service := newProfileService(&profileBackendStub{}, nil)

	_, err := service.UpdateProfile(context.Background(), UpdateProfileInput{FullName: strPtr("   ")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfileService_GetProfile(t *testing.T) {
	t.Parallel()

	service := newProfileService(&profileBackendStub{}, nil)

	p, err := service.GetProfile(context.Background(), "coach-holly")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.FullName != "Coach Holly Peristiani" {
		t.Fatalf("unexpected profile: %+v", p)
	}

	if _, err := service.GetProfile(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
