package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/domain/participation"
	"github.com/yangyang7755/activityhub/internal/platform/eventbus"
)

// ParticipationBackend is the remote slice the participation container needs.
type ParticipationBackend interface {
	JoinActivity(ctx context.Context, activityID, userID string) error
	LeaveActivity(ctx context.Context, activityID, userID string) error
}

// ParticipationService tracks who joined which activity. Joins and leaves
// apply locally first and roll back if the backend rejects them; an
// unreachable backend is treated as success so the app keeps working offline.
type ParticipationService struct {
	activityRepo activity.Repository
	partRepo     participation.Repository
	backend      ParticipationBackend
	bus          eventbus.Bus
	logger       *slog.Logger
	now          func() time.Time
}

func NewParticipationService(
	activityRepo activity.Repository,
	partRepo participation.Repository,
	backend ParticipationBackend,
	bus eventbus.Bus,
	logger *slog.Logger,
) *ParticipationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParticipationService{
		activityRepo: activityRepo,
		partRepo:     partRepo,
		backend:      backend,
		bus:          bus,
		logger:       logger,
		now:          time.Now,
	}
}

// CanJoin reports whether userID may join the activity right now. A nil
// return means the join would be accepted.
func (s *ParticipationService) CanJoin(ctx context.Context, activityID, userID string) error {
	activityID, userID, err := cleanActivityUser(activityID, userID)
	if err != nil {
		return err
	}

	a, exists, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: activity=%s", ErrNotFound, activityID)
	}

	existing, found, err := s.partRepo.Get(ctx, activityID, userID)
	if err != nil {
		return fmt.Errorf("get participant: %w", err)
	}
	if found && existing.IsActive() {
		return fmt.Errorf("%w: activity=%s", ErrAlreadyJoined, activityID)
	}
	if a.IsFull() {
		return fmt.Errorf("%w: activity=%s", ErrActivityFull, activityID)
	}

	return nil
}

// Join adds userID to the activity. The local state changes before the
// backend call; a backend rejection rolls the join back, while an
// unreachable backend leaves the local join in place.
func (s *ParticipationService) Join(ctx context.Context, activityID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipationService.Join")
	defer span.End()

	if err := s.CanJoin(ctx, activityID, userID); err != nil {
		return err
	}
	activityID = strings.TrimSpace(activityID)
	userID = strings.TrimSpace(userID)

	a, _, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}
	previousCount := a.CurrentParticipants

	joined := participation.Participant{
		ActivityID: activityID,
		UserID:     userID,
		Status:     participation.StatusJoined,
		JoinedAt:   s.now().UTC(),
	}
	if err := s.partRepo.Upsert(ctx, joined); err != nil {
		return fmt.Errorf("store participant: %w", err)
	}
	s.publishChange(ctx, eventbus.TopicParticipantJoined, a, userID, previousCount+1)

	if s.backend != nil {
		if err := s.backend.JoinActivity(ctx, activityID, userID); err != nil {
			if errors.Is(err, ErrDependencyUnavailable) {
				s.logger.WarnContext(ctx, "backend unreachable, keeping local join",
					"activity_id", activityID,
					"user_id", userID,
				)
				return nil
			}

			rollback := joined
			rollback.Status = participation.StatusLeft
			if rbErr := s.partRepo.Upsert(ctx, rollback); rbErr != nil {
				s.logger.ErrorContext(ctx, "failed to roll back join", "activity_id", activityID, "error", rbErr)
			}
			s.publishChange(ctx, eventbus.TopicParticipantLeft, a, userID, previousCount)

			return err
		}
	}

	s.logger.InfoContext(ctx, "joined activity", "activity_id", activityID, "user_id", userID)

	return nil
}

// Leave removes userID from the activity by flipping the join record to
// left. The record itself stays so the join history survives.
func (s *ParticipationService) Leave(ctx context.Context, activityID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipationService.Leave")
	defer span.End()

	activityID, userID, err := cleanActivityUser(activityID, userID)
	if err != nil {
		return err
	}

	existing, found, err := s.partRepo.Get(ctx, activityID, userID)
	if err != nil {
		return fmt.Errorf("get participant: %w", err)
	}
	if !found || !existing.IsActive() {
		return fmt.Errorf("%w: not participating in activity=%s", ErrNotFound, activityID)
	}

	a, exists, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: activity=%s", ErrNotFound, activityID)
	}
	previousCount := a.CurrentParticipants

	left := existing
	left.Status = participation.StatusLeft
	if err := s.partRepo.Upsert(ctx, left); err != nil {
		return fmt.Errorf("store participant: %w", err)
	}
	newCount := previousCount - 1
	if newCount < 0 {
		newCount = 0
	}
	s.publishChange(ctx, eventbus.TopicParticipantLeft, a, userID, newCount)

	if s.backend != nil {
		if err := s.backend.LeaveActivity(ctx, activityID, userID); err != nil {
			if errors.Is(err, ErrDependencyUnavailable) {
				s.logger.WarnContext(ctx, "backend unreachable, keeping local leave",
					"activity_id", activityID,
					"user_id", userID,
				)
				return nil
			}

			if rbErr := s.partRepo.Upsert(ctx, existing); rbErr != nil {
				s.logger.ErrorContext(ctx, "failed to roll back leave", "activity_id", activityID, "error", rbErr)
			}
			s.publishChange(ctx, eventbus.TopicParticipantJoined, a, userID, previousCount)

			return err
		}
	}

	s.logger.InfoContext(ctx, "left activity", "activity_id", activityID, "user_id", userID)

	return nil
}

// Stats summarizes participation for one activity. The count comes from the
// activity record, which join/leave events keep current.
func (s *ParticipationService) Stats(ctx context.Context, activityID string) (participation.Stats, error) {
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return participation.Stats{}, fmt.Errorf("%w: activity id is required", ErrInvalidInput)
	}

	a, exists, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return participation.Stats{}, fmt.Errorf("get activity: %w", err)
	}
	if !exists {
		return participation.Stats{}, fmt.Errorf("%w: activity=%s", ErrNotFound, activityID)
	}

	return participation.Stats{
		CurrentParticipants: a.CurrentParticipants,
		MaxParticipants:     a.MaxParticipants,
		IsFull:              a.IsFull(),
	}, nil
}

func (s *ParticipationService) IsParticipating(ctx context.Context, activityID, userID string) (bool, error) {
	activityID, userID, err := cleanActivityUser(activityID, userID)
	if err != nil {
		return false, err
	}

	existing, found, err := s.partRepo.Get(ctx, activityID, userID)
	if err != nil {
		return false, fmt.Errorf("get participant: %w", err)
	}

	return found && existing.IsActive(), nil
}

// ListJoinedActivities returns the activities userID currently participates
// in. Activities no longer present locally are skipped.
func (s *ParticipationService) ListJoinedActivities(ctx context.Context, userID string) ([]activity.Activity, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	participants, err := s.partRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	out := make([]activity.Activity, 0, len(participants))
	for _, p := range participants {
		a, exists, err := s.activityRepo.GetByID(ctx, p.ActivityID)
		if err != nil {
			return nil, fmt.Errorf("get activity: %w", err)
		}
		if !exists {
			continue
		}
		out = append(out, a)
	}

	return out, nil
}

func (s *ParticipationService) publishChange(ctx context.Context, topic eventbus.Topic, a activity.Activity, userID string, newCount int) {
	if s.bus == nil {
		return
	}

	change := eventbus.ParticipantChange{
		ActivityID:    a.ID,
		ActivityTitle: a.Title,
		UserID:        userID,
		OrganizerID:   a.OrganizerID,
		NewCount:      newCount,
	}
	s.bus.Publish(ctx, topic, change)
	s.bus.Publish(ctx, eventbus.TopicActivityChatUpdate, change)
}

func cleanActivityUser(activityID, userID string) (string, string, error) {
	activityID = strings.TrimSpace(activityID)
	userID = strings.TrimSpace(userID)
	if activityID == "" {
		return "", "", fmt.Errorf("%w: activity id is required", ErrInvalidInput)
	}
	if userID == "" {
		return "", "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	return activityID, userID, nil
}
