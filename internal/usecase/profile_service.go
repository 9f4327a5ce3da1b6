package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yangyang7755/activityhub/internal/domain/profile"
	"github.com/yangyang7755/activityhub/internal/platform/eventbus"
)

// ProfileBackend is the remote slice the profile container needs.
type ProfileBackend interface {
	UpdateProfile(ctx context.Context, p profile.Profile) error
}

// UpdateProfileInput carries a partial profile edit. Nil fields keep their
// current value, so a visibility toggle does not have to resend the bio.
type UpdateProfileInput struct {
	FullName    *string
	Bio         *string
	Email       *string
	AvatarURL   *string
	Visibility  *profile.Visibility
	SkillLevels map[string]string
}

// ProfileService owns the current user's profile and the map of known
// profiles used to render other people. Edits persist to the snapshot store
// and fan out over the bus so every subsystem holding a denormalized copy
// updates in the same call.
type ProfileService struct {
	profileRepo profile.Repository
	snapshots   profile.SnapshotStore
	backend     ProfileBackend
	bus         eventbus.Bus
	fallback    profile.Profile
	logger      *slog.Logger
}

func NewProfileService(
	profileRepo profile.Repository,
	snapshots profile.SnapshotStore,
	backend ProfileBackend,
	bus eventbus.Bus,
	fallback profile.Profile,
	logger *slog.Logger,
) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProfileService{
		profileRepo: profileRepo,
		snapshots:   snapshots,
		backend:     backend,
		bus:         bus,
		fallback:    fallback,
		logger:      logger,
	}
}

// CurrentProfile returns the persisted profile for this device, or the
// seeded fallback on first run.
func (s *ProfileService) CurrentProfile(ctx context.Context) (profile.Profile, error) {
	p, found, err := s.snapshots.LoadCurrent(ctx)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load current profile: %w", err)
	}
	if !found {
		return s.fallback.Clone(), nil
	}

	return p, nil
}

// UpdateProfile merges the edit into the current profile, persists it and
// fans the change out to every subsystem caching profile data. A backend
// rejection rolls the persisted profile back; an unreachable backend keeps
// the local edit.
func (s *ProfileService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.UpdateProfile")
	defer span.End()

	current, err := s.CurrentProfile(ctx)
	if err != nil {
		return profile.Profile{}, err
	}

	updated := mergeProfile(current, input)
	if err := updated.Validate(); err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.snapshots.SaveCurrent(ctx, updated); err != nil {
		return profile.Profile{}, fmt.Errorf("save current profile: %w", err)
	}
	if err := s.profileRepo.Upsert(ctx, updated); err != nil {
		return profile.Profile{}, fmt.Errorf("store profile: %w", err)
	}

	if s.backend != nil {
		if err := s.backend.UpdateProfile(ctx, updated); err != nil {
			if !errors.Is(err, ErrDependencyUnavailable) {
				if rbErr := s.snapshots.SaveCurrent(ctx, current); rbErr != nil {
					s.logger.ErrorContext(ctx, "failed to roll back profile edit", "profile_id", current.ID, "error", rbErr)
				}
				if rbErr := s.profileRepo.Upsert(ctx, current); rbErr != nil {
					s.logger.ErrorContext(ctx, "failed to roll back known profile", "profile_id", current.ID, "error", rbErr)
				}

				return profile.Profile{}, err
			}
			s.logger.WarnContext(ctx, "backend unreachable, keeping local profile edit", "profile_id", updated.ID)
		}
	}

	s.fanOut(ctx, updated)
	s.logger.InfoContext(ctx, "profile updated", "profile_id", updated.ID)

	return updated, nil
}

// GetProfile looks up a known profile by id.
func (s *ProfileService) GetProfile(ctx context.Context, profileID string) (profile.Profile, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return profile.Profile{}, fmt.Errorf("%w: profile id is required", ErrInvalidInput)
	}

	p, exists, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return profile.Profile{}, fmt.Errorf("%w: profile=%s", ErrNotFound, profileID)
	}

	return p, nil
}

func (s *ProfileService) ListKnownProfiles(ctx context.Context) ([]profile.Profile, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	return profiles, nil
}

// fanOut notifies every subsystem holding a denormalized profile copy. All
// topics fire in the same call so the UI never shows two names for one
// person.
func (s *ProfileService) fanOut(ctx context.Context, p profile.Profile) {
	if s.bus == nil {
		return
	}

	change := eventbus.ProfileChange{
		ProfileID: p.ID,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
	}
	for _, topic := range []eventbus.Topic{
		eventbus.TopicProfileUpdated,
		eventbus.TopicOrganizerProfileUpdated,
		eventbus.TopicParticipantProfileUpdated,
		eventbus.TopicFollowerProfileUpdated,
		eventbus.TopicClubMemberProfileUpdated,
		eventbus.TopicReviewerProfileUpdated,
	} {
		s.bus.Publish(ctx, topic, change)
	}
}

func mergeProfile(current profile.Profile, input UpdateProfileInput) profile.Profile {
	updated := current.Clone()
	if input.FullName != nil {
		updated.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Bio != nil {
		updated.Bio = *input.Bio
	}
	if input.Email != nil {
		updated.Email = strings.TrimSpace(*input.Email)
	}
	if input.AvatarURL != nil {
		updated.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
	if input.Visibility != nil {
		updated.Visibility = *input.Visibility
	}
	if input.SkillLevels != nil {
		updated.SkillLevels = make(map[string]string, len(input.SkillLevels))
		for sport, level := range input.SkillLevels {
			updated.SkillLevels[sport] = level
		}
	}

	return updated
}
