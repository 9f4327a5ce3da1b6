package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/participation"
	"github.com/yangyang7755/activityhub/internal/domain/review"
	"github.com/yangyang7755/activityhub/internal/infrastructure/repository/memory"
)

type reviewBackendStub struct {
	submitErr error
}

func (b *reviewBackendStub) SubmitReview(context.Context, review.Review) error {
	return b.submitErr
}

type reviewFixture struct {
	service  *ReviewService
	partRepo *memory.ParticipationRepository
}

func newReviewFixture(t *testing.T, backend ReviewBackend) reviewFixture {
	t.Helper()

	partRepo := memory.NewParticipationRepository()
	service := NewReviewService(
		memory.NewReviewRepository(),
		memory.NewCompletionRepository(),
		memory.NewActivityRepository(memory.SeedActivities()),
		partRepo,
		backend,
		staticIDGenerator{id: "rev-1"},
		testLogger(),
	)

	return reviewFixture{service: service, partRepo: partRepo}
}

// afterAllSeeds is later than every seeded activity start time.
var afterAllSeeds = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func (f reviewFixture) join(t *testing.T, activityID, userID string) {
	t.Helper()

	err := f.partRepo.Upsert(context.Background(), participation.Participant{
		ActivityID: activityID,
		UserID:     userID,
		Status:     participation.StatusJoined,
		JoinedAt:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed participant: %v", err)
	}
}

func TestReviewService_SubmitBeforeEndFails(t *testing.T) {
	t.Parallel()

	f := newReviewFixture(t, &reviewBackendStub{})
	f.service.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }

	_, err := f.service.SubmitReview(context.Background(), SubmitReviewInput{
		ActivityID: memory.ActivityIDWestwayClimb,
		ReviewerID: memory.DemoUserID,
		Rating:     5,
	})
	if !errors.Is(err, ErrActivityNotEnded) {
		t.Fatalf("expected ErrActivityNotEnded, got %v", err)
	}
}

func TestReviewService_SubmitWithoutCompletionDenied(t *testing.T) {
	t.Parallel()

	f := newReviewFixture(t, &reviewBackendStub{})
	f.service.now = func() time.Time { return afterAllSeeds }

	_, err := f.service.SubmitReview(context.Background(), SubmitReviewInput{
		ActivityID: memory.ActivityIDWestwayClimb,
		ReviewerID: memory.DemoUserID,
		Rating:     5,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestReviewService_SweepThenReview(t *testing.T) {
	t.Parallel()

	f := newReviewFixture(t, &reviewBackendStub{})
	f.service.now = func() time.Time { return afterAllSeeds }
	f.join(t, memory.ActivityIDWestwayClimb, memory.DemoUserID)

	result, err := f.service.SweepEnded(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.EndedActivities != len(memory.SeedActivities()) {
		t.Fatalf("expected all seeded activities ended, got %d", result.EndedActivities)
	}
	if result.CompletedRecords != 1 {
		t.Fatalf("expected one completion, got %d", result.CompletedRecords)
	}

	// The participant record flips to completed, so the user no longer
	// counts as an active participant.
	p, found, err := f.partRepo.Get(context.Background(), memory.ActivityIDWestwayClimb, memory.DemoUserID)
	if err != nil || !found {
		t.Fatalf("get participant: found=%t err=%v", found, err)
	}
	if p.Status != participation.StatusCompleted {
		t.Fatalf("expected completed status, got %s", p.Status)
	}

	submitted, err := f.service.SubmitReview(context.Background(), SubmitReviewInput{
		ActivityID:   memory.ActivityIDWestwayClimb,
		ReviewerID:   memory.DemoUserID,
		ReviewerName: "Maddie Wei",
		Rating:       5,
		Comment:      "Great session, lovely group.",
	})
	if err != nil {
		t.Fatalf("submit review: %v", err)
	}
	if submitted.ID != "rev-1" {
		t.Fatalf("expected generated review id, got %s", submitted.ID)
	}

	reviews, err := f.service.ListReviews(context.Background(), memory.ActivityIDWestwayClimb)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Rating != 5 {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}
}

func TestReviewService_SweepIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newReviewFixture(t, &reviewBackendStub{})
	f.service.now = func() time.Time { return afterAllSeeds }
	f.join(t, memory.ActivityIDPeakHike, memory.DemoUserID)

	if _, err := f.service.SweepEnded(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	second, err := f.service.SweepEnded(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.CompletedRecords != 0 {
		t.Fatalf("second sweep must not re-complete, got %d", second.CompletedRecords)
	}
}

func TestReviewService_InvalidRatingRejected(t *testing.T) {
	t.Parallel()

	f := newReviewFixture(t, &reviewBackendStub{})
	f.service.now = func() time.Time { return afterAllSeeds }
	f.join(t, memory.ActivityIDWestwayClimb, memory.DemoUserID)

	if _, err := f.service.SweepEnded(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	_, err := f.service.SubmitReview(context.Background(), SubmitReviewInput{
		ActivityID: memory.ActivityIDWestwayClimb,
		ReviewerID: memory.DemoUserID,
		Rating:     6,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReviewService_BackendRejectionLeavesNoLocalReview(t *testing.T) {
	t.Parallel()

	f := newReviewFixture(t, &reviewBackendStub{submitErr: errors.New("400 bad request")})
	f.service.now = func() time.Time { return afterAllSeeds }
	f.join(t, memory.ActivityIDWestwayClimb, memory.DemoUserID)

	if _, err := f.service.SweepEnded(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if _, err := f.service.SubmitReview(context.Background(), SubmitReviewInput{
		ActivityID: memory.ActivityIDWestwayClimb,
		ReviewerID: memory.DemoUserID,
		Rating:     3,
	}); err == nil {
		t.Fatalf("expected error")
	}

	reviews, err := f.service.ListReviews(context.Background(), memory.ActivityIDWestwayClimb)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 0 {
		t.Fatalf("rejected review must not be stored, got %+v", reviews)
	}
}
