package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/domain/participation"
	"github.com/yangyang7755/activityhub/internal/domain/review"
	idgen "github.com/yangyang7755/activityhub/internal/platform/id"
)

const defaultSweepWorkers = 4

// ReviewBackend is the remote slice the review container needs.
type ReviewBackend interface {
	SubmitReview(ctx context.Context, r review.Review) error
}

// SubmitReviewInput is the incoming payload for post-activity feedback.
type SubmitReviewInput struct {
	ActivityID   string
	ReviewerID   string
	ReviewerName string
	Rating       int
	Comment      string
}

// SweepResult summarizes one end-of-activity sweep.
type SweepResult struct {
	EndedActivities  int `json:"ended_activities"`
	CompletedRecords int `json:"completed_records"`
}

// ReviewService handles post-activity reviews and the sweep that marks
// joined activities as completed once they end. Only users with a completion
// record may review.
type ReviewService struct {
	reviewRepo     review.Repository
	completionRepo review.CompletionRepository
	activityRepo   activity.Repository
	partRepo       participation.Repository
	backend        ReviewBackend
	idGen          idgen.Generator
	logger         *slog.Logger
	now            func() time.Time
	sweepWorkers   int
}

func NewReviewService(
	reviewRepo review.Repository,
	completionRepo review.CompletionRepository,
	activityRepo activity.Repository,
	partRepo participation.Repository,
	backend ReviewBackend,
	idGen idgen.Generator,
	logger *slog.Logger,
) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewService{
		reviewRepo:     reviewRepo,
		completionRepo: completionRepo,
		activityRepo:   activityRepo,
		partRepo:       partRepo,
		backend:        backend,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
		sweepWorkers:   defaultSweepWorkers,
	}
}

// SubmitReview records feedback for an ended activity. The remote call runs
// before the local write so a rejected review leaves no orphan behind.
func (s *ReviewService) SubmitReview(ctx context.Context, input SubmitReviewInput) (review.Review, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReviewService.SubmitReview")
	defer span.End()

	input.ActivityID = strings.TrimSpace(input.ActivityID)
	input.ReviewerID = strings.TrimSpace(input.ReviewerID)
	if input.ActivityID == "" {
		return review.Review{}, fmt.Errorf("%w: activity id is required", ErrInvalidInput)
	}
	if input.ReviewerID == "" {
		return review.Review{}, fmt.Errorf("%w: reviewer id is required", ErrInvalidInput)
	}

	a, exists, err := s.activityRepo.GetByID(ctx, input.ActivityID)
	if err != nil {
		return review.Review{}, fmt.Errorf("get activity: %w", err)
	}
	if !exists {
		return review.Review{}, fmt.Errorf("%w: activity=%s", ErrNotFound, input.ActivityID)
	}
	if !a.HasEnded(s.now()) {
		return review.Review{}, fmt.Errorf("%w: activity=%s", ErrActivityNotEnded, input.ActivityID)
	}

	completed, err := s.completionRepo.Exists(ctx, input.ActivityID, input.ReviewerID)
	if err != nil {
		return review.Review{}, fmt.Errorf("check completion: %w", err)
	}
	if !completed {
		return review.Review{}, fmt.Errorf("%w: user=%s did not complete activity=%s", ErrUnauthorized, input.ReviewerID, input.ActivityID)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return review.Review{}, fmt.Errorf("generate review id: %w", err)
	}

	r := review.Review{
		ID:           id,
		ActivityID:   input.ActivityID,
		ReviewerID:   input.ReviewerID,
		ReviewerName: input.ReviewerName,
		Rating:       input.Rating,
		Comment:      input.Comment,
		CreatedAt:    s.now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return review.Review{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if s.backend != nil {
		if err := s.backend.SubmitReview(ctx, r); err != nil {
			if !errors.Is(err, ErrDependencyUnavailable) {
				return review.Review{}, err
			}
			s.logger.WarnContext(ctx, "backend unreachable, keeping review locally", "activity_id", r.ActivityID)
		}
	}

	if err := s.reviewRepo.Add(ctx, r); err != nil {
		return review.Review{}, fmt.Errorf("store review: %w", err)
	}

	s.logger.InfoContext(ctx, "review submitted",
		"activity_id", r.ActivityID,
		"reviewer_id", r.ReviewerID,
		"rating", r.Rating,
	)

	return r, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, activityID string) ([]review.Review, error) {
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return nil, fmt.Errorf("%w: activity id is required", ErrInvalidInput)
	}

	reviews, err := s.reviewRepo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

func (s *ReviewService) ListCompleted(ctx context.Context, userID string) ([]review.Completion, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	completions, err := s.completionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	return completions, nil
}

// SweepEnded finds activities whose start time has passed and marks their
// active participants as completed, which unlocks reviewing. Activities are
// processed on a worker pool since each one walks its own participant list.
func (s *ReviewService) SweepEnded(ctx context.Context) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReviewService.SweepEnded")
	defer span.End()

	activities, err := s.activityRepo.List(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list activities: %w", err)
	}

	ended := make([]activity.Activity, 0, len(activities))
	now := s.now()
	for _, a := range activities {
		if a.HasEnded(now) {
			ended = append(ended, a)
		}
	}
	if len(ended) == 0 {
		return SweepResult{}, nil
	}

	workerCount := s.sweepWorkers
	if workerCount > len(ended) {
		workerCount = len(ended)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SweepResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu        sync.Mutex
		completed int
		sweepErr  error
	)

	var workers sync.WaitGroup
	for _, a := range ended {
		a := a
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			n, err := s.completeParticipants(ctx, a)
			mu.Lock()
			defer mu.Unlock()
			completed += n
			if err != nil && sweepErr == nil {
				sweepErr = err
			}
		}); err != nil {
			workers.Done()
			mu.Lock()
			if sweepErr == nil {
				sweepErr = fmt.Errorf("submit sweep task: %w", err)
			}
			mu.Unlock()
		}
	}
	workers.Wait()

	if sweepErr != nil {
		return SweepResult{}, sweepErr
	}

	s.logger.InfoContext(ctx, "end-of-activity sweep finished",
		"ended_activities", len(ended),
		"completed_records", completed,
	)

	return SweepResult{EndedActivities: len(ended), CompletedRecords: completed}, nil
}

// RunSweeper runs SweepEnded on a fixed interval until ctx is cancelled.
func (s *ReviewService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepEnded(ctx); err != nil {
				s.logger.WarnContext(ctx, "end-of-activity sweep failed", "error", err)
			}
		}
	}
}

func (s *ReviewService) completeParticipants(ctx context.Context, a activity.Activity) (int, error) {
	participants, err := s.partRepo.ListActiveByActivity(ctx, a.ID)
	if err != nil {
		return 0, fmt.Errorf("list participants for activity=%s: %w", a.ID, err)
	}

	completed := 0
	for _, p := range participants {
		exists, err := s.completionRepo.Exists(ctx, a.ID, p.UserID)
		if err != nil {
			return completed, fmt.Errorf("check completion: %w", err)
		}
		if exists {
			continue
		}

		if err := s.completionRepo.Add(ctx, review.Completion{
			ActivityID:  a.ID,
			UserID:      p.UserID,
			CompletedAt: s.now().UTC(),
		}); err != nil {
			return completed, fmt.Errorf("store completion: %w", err)
		}

		done := p
		done.Status = participation.StatusCompleted
		if err := s.partRepo.Upsert(ctx, done); err != nil {
			return completed, fmt.Errorf("store participant: %w", err)
		}
		completed++
	}

	return completed, nil
}
