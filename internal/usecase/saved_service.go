package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/domain/saved"
)

// SavedBackend is the remote slice the saved-list container needs.
type SavedBackend interface {
	SaveActivity(ctx context.Context, userID, activityID string) error
	UnsaveActivity(ctx context.Context, userID, activityID string) error
}

// SavedService manages each user's saved-activity list. Saves apply locally
// first and roll back on any backend failure, including an unreachable
// backend: a bookmark that silently never synced is worse than one that
// visibly failed.
//
// A per-entry version counter guards the rollback. If a newer save or unsave
// landed while the backend call was in flight, the stale rollback is dropped
// instead of clobbering the newer state.
type SavedService struct {
	savedRepo    saved.Repository
	activityRepo activity.Repository
	backend      SavedBackend
	logger       *slog.Logger
	now          func() time.Time

	mu       sync.Mutex
	versions map[string]uint64
}

func NewSavedService(
	savedRepo saved.Repository,
	activityRepo activity.Repository,
	backend SavedBackend,
	logger *slog.Logger,
) *SavedService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SavedService{
		savedRepo:    savedRepo,
		activityRepo: activityRepo,
		backend:      backend,
		logger:       logger,
		now:          time.Now,
		versions:     make(map[string]uint64),
	}
}

// Save bookmarks the activity for userID. Saving an already-saved activity
// is a no-op.
func (s *SavedService) Save(ctx context.Context, userID, activityID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SavedService.Save")
	defer span.End()

	activityID, userID, err := cleanActivityUser(activityID, userID)
	if err != nil {
		return err
	}

	if _, found, err := s.savedRepo.Get(ctx, userID, activityID); err != nil {
		return fmt.Errorf("get saved activity: %w", err)
	} else if found {
		return nil
	}

	a, exists, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: activity=%s", ErrNotFound, activityID)
	}

	version := s.bump(userID, activityID)

	entry := saved.SavedActivity{
		UserID:   userID,
		Activity: a,
		SavedAt:  s.now().UTC(),
	}
	if err := s.savedRepo.Put(ctx, entry); err != nil {
		return fmt.Errorf("store saved activity: %w", err)
	}

	if s.backend != nil {
		if err := s.backend.SaveActivity(ctx, userID, activityID); err != nil {
			if s.current(userID, activityID) == version {
				if rbErr := s.savedRepo.Delete(ctx, userID, activityID); rbErr != nil {
					s.logger.ErrorContext(ctx, "failed to roll back save", "activity_id", activityID, "error", rbErr)
				}
			}

			return err
		}
	}

	s.logger.InfoContext(ctx, "activity saved", "activity_id", activityID, "user_id", userID)

	return nil
}

// Unsave removes the bookmark. Unsaving an activity that is not saved is a
// no-op.
func (s *SavedService) Unsave(ctx context.Context, userID, activityID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SavedService.Unsave")
	defer span.End()

	activityID, userID, err := cleanActivityUser(activityID, userID)
	if err != nil {
		return err
	}

	existing, found, err := s.savedRepo.Get(ctx, userID, activityID)
	if err != nil {
		return fmt.Errorf("get saved activity: %w", err)
	}
	if !found {
		return nil
	}

	version := s.bump(userID, activityID)

	if err := s.savedRepo.Delete(ctx, userID, activityID); err != nil {
		return fmt.Errorf("delete saved activity: %w", err)
	}

	if s.backend != nil {
		if err := s.backend.UnsaveActivity(ctx, userID, activityID); err != nil {
			if s.current(userID, activityID) == version {
				if rbErr := s.savedRepo.Put(ctx, existing); rbErr != nil {
					s.logger.ErrorContext(ctx, "failed to roll back unsave", "activity_id", activityID, "error", rbErr)
				}
			}

			return err
		}
	}

	s.logger.InfoContext(ctx, "activity unsaved", "activity_id", activityID, "user_id", userID)

	return nil
}

func (s *SavedService) IsSaved(ctx context.Context, userID, activityID string) (bool, error) {
	activityID, userID, err := cleanActivityUser(activityID, userID)
	if err != nil {
		return false, err
	}

	_, found, err := s.savedRepo.Get(ctx, userID, activityID)
	if err != nil {
		return false, fmt.Errorf("get saved activity: %w", err)
	}

	return found, nil
}

func (s *SavedService) ListSaved(ctx context.Context, userID string) ([]saved.SavedActivity, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	entries, err := s.savedRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved activities: %w", err)
	}

	return entries, nil
}

func (s *SavedService) bump(userID, activityID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userID + "::" + activityID
	s.versions[key]++

	return s.versions[key]
}

func (s *SavedService) current(userID, activityID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.versions[userID+"::"+activityID]
}
