package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/platform/cache"
	"github.com/yangyang7755/activityhub/internal/platform/eventbus"
	idgen "github.com/yangyang7755/activityhub/internal/platform/id"
	"github.com/yangyang7755/activityhub/internal/platform/resilience"
)

const activityFeedCacheKey = "activities:feed"

// ActivityBackend is the remote slice the activity container needs.
type ActivityBackend interface {
	FetchActivities(ctx context.Context) ([]activity.Activity, error)
	CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error)
}

// CreateActivityInput is the incoming payload for organizing a new activity.
type CreateActivityInput struct {
	Title           string
	Type            string
	StartsAt        time.Time
	Location        string
	Difficulty      string
	MaxParticipants int
	ClubID          string
	OrganizerID     string
	OrganizerName   string
}

// ActivityService owns the browsable activity feed. The local repository is
// the read model; the backend is refreshed through a TTL cache so repeated
// listings do not hammer the API. Participant counts are patched in place
// when join/leave events fire, so reads see the new count before the next
// remote refresh.
type ActivityService struct {
	repo    activity.Repository
	backend ActivityBackend
	cache   *cache.Store
	bus     eventbus.Bus
	idGen   idgen.Generator
	logger  *slog.Logger
	now     func() time.Time

	// createFlight collapses double-submitted creates (same organizer,
	// title and start time) into one backend call.
	createFlight resilience.SingleFlight
}

func NewActivityService(
	repo activity.Repository,
	backend ActivityBackend,
	cacheStore *cache.Store,
	bus eventbus.Bus,
	idGen idgen.Generator,
	logger *slog.Logger,
) *ActivityService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &ActivityService{
		repo:    repo,
		backend: backend,
		cache:   cacheStore,
		bus:     bus,
		idGen:   idGen,
		logger:  logger,
		now:     time.Now,
	}

	if bus != nil {
		bus.Subscribe(eventbus.TopicParticipantJoined, s.handleParticipantChange)
		bus.Subscribe(eventbus.TopicParticipantLeft, s.handleParticipantChange)
		bus.Subscribe(eventbus.TopicOrganizerProfileUpdated, s.handleOrganizerProfileUpdated)
	}

	return s
}

// ListActivities returns the feed, refreshing from the backend at most once
// per cache TTL. When the backend is unreachable the local data keeps
// serving, so the feed degrades to the seeded demo set instead of erroring.
func (s *ActivityService) ListActivities(ctx context.Context) ([]activity.Activity, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ActivityService.ListActivities")
	defer span.End()

	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}

	activities, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	return activities, nil
}

// SearchActivities filters the feed by a case-insensitive substring over
// title, location, organizer and sport. An empty query returns everything.
func (s *ActivityService) SearchActivities(ctx context.Context, query string) ([]activity.Activity, error) {
	activities, err := s.ListActivities(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]activity.Activity, 0, len(activities))
	for _, a := range activities {
		if a.Matches(query) {
			matched = append(matched, a)
		}
	}

	return matched, nil
}

func (s *ActivityService) GetActivity(ctx context.Context, activityID string) (activity.Activity, error) {
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return activity.Activity{}, fmt.Errorf("%w: activity id is required", ErrInvalidInput)
	}

	a, exists, err := s.repo.GetByID(ctx, activityID)
	if err != nil {
		return activity.Activity{}, fmt.Errorf("get activity: %w", err)
	}
	if !exists {
		return activity.Activity{}, fmt.Errorf("%w: activity=%s", ErrNotFound, activityID)
	}

	return a, nil
}

// CreateActivity registers a new activity with the backend, falling back to
// a local-only record when the backend is unreachable. The remote call runs
// before the local write so a rejected create leaves no orphan behind.
func (s *ActivityService) CreateActivity(ctx context.Context, input CreateActivityInput) (activity.Activity, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ActivityService.CreateActivity")
	defer span.End()

	input.Title = strings.TrimSpace(input.Title)
	input.Location = strings.TrimSpace(input.Location)
	input.OrganizerID = strings.TrimSpace(input.OrganizerID)

	if input.Title == "" {
		return activity.Activity{}, fmt.Errorf("%w: activity title is required", ErrInvalidInput)
	}
	if input.OrganizerID == "" {
		return activity.Activity{}, fmt.Errorf("%w: organizer id is required", ErrInvalidInput)
	}
	if input.MaxParticipants <= 0 {
		return activity.Activity{}, fmt.Errorf("%w: max participants must be greater than zero", ErrInvalidInput)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return activity.Activity{}, fmt.Errorf("generate activity id: %w", err)
	}

	a := activity.Activity{
		ID:              id,
		Title:           input.Title,
		Type:            activity.ParseType(input.Type),
		StartsAt:        input.StartsAt,
		Location:        input.Location,
		OrganizerID:     input.OrganizerID,
		OrganizerName:   input.OrganizerName,
		MaxParticipants: input.MaxParticipants,
		Difficulty:      input.Difficulty,
		ClubID:          input.ClubID,
	}
	if err := a.Validate(); err != nil {
		return activity.Activity{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	flightKey := input.OrganizerID + "|" + strings.ToLower(input.Title) + "|" + input.StartsAt.UTC().Format(time.RFC3339)
	result, err, shared := s.createFlight.Do(flightKey, func() (any, error) {
		return s.createActivity(ctx, a)
	})
	if err != nil {
		return activity.Activity{}, err
	}
	if shared {
		s.logger.InfoContext(ctx, "duplicate activity create collapsed", "organizer_id", input.OrganizerID, "title", input.Title)
	}

	return result.(activity.Activity), nil
}

func (s *ActivityService) createActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	if s.backend != nil {
		created, err := s.backend.CreateActivity(ctx, a)
		switch {
		case err == nil:
			a = created
		case errors.Is(err, ErrDependencyUnavailable):
			s.logger.WarnContext(ctx, "backend unreachable, creating activity locally", "activity_id", a.ID)
		default:
			return activity.Activity{}, err
		}
	}

	if err := s.repo.Upsert(ctx, a); err != nil {
		return activity.Activity{}, fmt.Errorf("store activity: %w", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, eventbus.TopicActivityChatCreate, eventbus.ParticipantChange{
			ActivityID:    a.ID,
			ActivityTitle: a.Title,
			UserID:        a.OrganizerID,
			OrganizerID:   a.OrganizerID,
		})
	}

	s.logger.InfoContext(ctx, "activity created",
		"activity_id", a.ID,
		"organizer_id", a.OrganizerID,
		"type", string(a.Type),
	)

	return a, nil
}

// Refresh forces a backend fetch regardless of cache freshness.
func (s *ActivityService) Refresh(ctx context.Context) error {
	if s.cache != nil {
		s.cache.Delete(ctx, activityFeedCacheKey)
	}

	return s.ensureFresh(ctx)
}

func (s *ActivityService) ensureFresh(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	load := func(ctx context.Context) (any, error) {
		fetched, err := s.backend.FetchActivities(ctx)
		if err != nil {
			if errors.Is(err, ErrDependencyUnavailable) {
				s.logger.WarnContext(ctx, "backend unreachable, serving local activities", "error", err)
				return s.now(), nil
			}
			return nil, err
		}

		// An empty result means the backend has nothing for us yet. Keep
		// whatever is local so the feed falls back to the demo set instead
		// of going blank.
		if len(fetched) == 0 {
			s.logger.WarnContext(ctx, "backend returned no activities, keeping local feed")
			return s.now(), nil
		}

		if err := s.repo.ReplaceAll(ctx, fetched); err != nil {
			return nil, fmt.Errorf("replace activities: %w", err)
		}

		return s.now(), nil
	}

	if s.cache == nil {
		_, err := load(ctx)
		return err
	}

	_, err := s.cache.GetOrLoad(ctx, activityFeedCacheKey, load)
	return err
}

// handleParticipantChange patches the cached participant count so stats read
// the new value immediately after a join or leave.
func (s *ActivityService) handleParticipantChange(ctx context.Context, evt eventbus.Event) {
	change, ok := evt.Payload.(eventbus.ParticipantChange)
	if !ok {
		return
	}

	a, exists, err := s.repo.GetByID(ctx, change.ActivityID)
	if err != nil || !exists {
		return
	}

	count := change.NewCount
	if count < 0 {
		count = 0
	}
	a.CurrentParticipants = count

	if err := s.repo.Upsert(ctx, a); err != nil {
		s.logger.WarnContext(ctx, "failed to patch participant count",
			"activity_id", change.ActivityID,
			"error", err,
		)
	}
}

// handleOrganizerProfileUpdated renames the organizer on every activity the
// profile owns. Activity cards denormalize the organizer name, so a profile
// edit has to fan out here.
func (s *ActivityService) handleOrganizerProfileUpdated(ctx context.Context, evt eventbus.Event) {
	change, ok := evt.Payload.(eventbus.ProfileChange)
	if !ok || change.ProfileID == "" {
		return
	}

	activities, err := s.repo.List(ctx)
	if err != nil {
		return
	}

	for _, a := range activities {
		if a.OrganizerID != change.ProfileID || a.OrganizerName == change.FullName {
			continue
		}
		a.OrganizerName = change.FullName
		if err := s.repo.Upsert(ctx, a); err != nil {
			s.logger.WarnContext(ctx, "failed to patch organizer name",
				"activity_id", a.ID,
				"error", err,
			)
		}
	}
}
