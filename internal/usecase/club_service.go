package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/club"
	"github.com/yangyang7755/activityhub/internal/platform/eventbus"
)

// ClubBackend is the remote slice the club container needs.
type ClubBackend interface {
	FetchClubs(ctx context.Context) ([]club.Club, error)
	JoinClub(ctx context.Context, clubID, userID string) error
	LeaveClub(ctx context.Context, clubID, userID string) error
	UpdateClubRole(ctx context.Context, clubID, memberID string, role club.Role) error
}

// ClubService owns club discovery and membership. Membership rows are the
// single source of truth; a user's clubs and a club's members are both reads
// over the same rows.
type ClubService struct {
	clubRepo       club.Repository
	membershipRepo club.MembershipRepository
	backend        ClubBackend
	bus            eventbus.Bus
	logger         *slog.Logger
	now            func() time.Time
}

func NewClubService(
	clubRepo club.Repository,
	membershipRepo club.MembershipRepository,
	backend ClubBackend,
	bus eventbus.Bus,
	logger *slog.Logger,
) *ClubService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ClubService{
		clubRepo:       clubRepo,
		membershipRepo: membershipRepo,
		backend:        backend,
		bus:            bus,
		logger:         logger,
		now:            time.Now,
	}
}

// RefreshClubs replaces the local club list with the backend's. When the
// backend is unreachable the seeded list keeps serving.
func (s *ClubService) RefreshClubs(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	clubs, err := s.backend.FetchClubs(ctx)
	if err != nil {
		if errors.Is(err, ErrDependencyUnavailable) {
			s.logger.WarnContext(ctx, "backend unreachable, serving local clubs", "error", err)
			return nil
		}
		return fmt.Errorf("fetch clubs: %w", err)
	}

	if err := s.clubRepo.ReplaceAll(ctx, clubs); err != nil {
		return fmt.Errorf("replace clubs: %w", err)
	}

	return nil
}

func (s *ClubService) ListClubs(ctx context.Context) ([]club.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}

	return clubs, nil
}

func (s *ClubService) GetClub(ctx context.Context, clubID string) (club.Club, error) {
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return club.Club{}, fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}

	c, exists, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return club.Club{}, fmt.Errorf("get club: %w", err)
	}
	if !exists {
		return club.Club{}, fmt.Errorf("%w: club=%s", ErrNotFound, clubID)
	}

	return c, nil
}

// ListUserMemberships returns the active memberships for userID.
func (s *ClubService) ListUserMemberships(ctx context.Context, userID string) ([]club.Membership, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	memberships, err := s.membershipRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	return activeMemberships(memberships), nil
}

// ListClubMembers returns the active members of clubID.
func (s *ClubService) ListClubMembers(ctx context.Context, clubID string) ([]club.Membership, error) {
	if _, err := s.GetClub(ctx, clubID); err != nil {
		return nil, err
	}

	memberships, err := s.membershipRepo.ListByClub(ctx, strings.TrimSpace(clubID))
	if err != nil {
		return nil, fmt.Errorf("list club members: %w", err)
	}

	return activeMemberships(memberships), nil
}

// JoinClub adds userID to the club as a plain member. The membership applies
// locally first; a backend rejection rolls it back, an unreachable backend
// leaves it in place.
func (s *ClubService) JoinClub(ctx context.Context, clubID, userID string) (club.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClubService.JoinClub")
	defer span.End()

	clubID, userID, err := cleanClubUser(clubID, userID)
	if err != nil {
		return club.Membership{}, err
	}

	c, exists, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return club.Membership{}, fmt.Errorf("get club: %w", err)
	}
	if !exists {
		return club.Membership{}, fmt.Errorf("%w: club=%s", ErrNotFound, clubID)
	}

	existing, found, err := s.membershipRepo.Get(ctx, userID, clubID)
	if err != nil {
		return club.Membership{}, fmt.Errorf("get membership: %w", err)
	}
	if found && existing.IsActive() {
		return club.Membership{}, fmt.Errorf("%w: club=%s", ErrAlreadyJoined, clubID)
	}

	membership := club.Membership{
		UserID:      userID,
		ClubID:      clubID,
		Role:        club.RoleMember,
		Status:      club.StatusActive,
		JoinedAt:    s.now().UTC(),
		ClubName:    c.Name,
		ClubLogoURL: c.LogoURL,
	}
	if err := s.membershipRepo.Upsert(ctx, membership); err != nil {
		return club.Membership{}, fmt.Errorf("store membership: %w", err)
	}

	if s.backend != nil {
		if err := s.backend.JoinClub(ctx, clubID, userID); err != nil {
			if !errors.Is(err, ErrDependencyUnavailable) {
				rollback := membership
				rollback.Status = club.StatusInactive
				if rbErr := s.membershipRepo.Upsert(ctx, rollback); rbErr != nil {
					s.logger.ErrorContext(ctx, "failed to roll back club join", "club_id", clubID, "error", rbErr)
				}

				return club.Membership{}, err
			}
			s.logger.WarnContext(ctx, "backend unreachable, keeping local club join",
				"club_id", clubID,
				"user_id", userID,
			)
		}
	}

	s.publishMembershipChange(ctx, membership, true)
	s.logger.InfoContext(ctx, "joined club", "club_id", clubID, "user_id", userID)

	return membership, nil
}

// LeaveClub flips the membership to inactive. The row stays so rejoining
// keeps the original join date.
func (s *ClubService) LeaveClub(ctx context.Context, clubID, userID string) error {
	clubID, userID, err := cleanClubUser(clubID, userID)
	if err != nil {
		return err
	}

	existing, found, err := s.membershipRepo.Get(ctx, userID, clubID)
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if !found || !existing.IsActive() {
		return fmt.Errorf("%w: not a member of club=%s", ErrNotFound, clubID)
	}

	left := existing
	left.Status = club.StatusInactive
	if err := s.membershipRepo.Upsert(ctx, left); err != nil {
		return fmt.Errorf("store membership: %w", err)
	}

	if s.backend != nil {
		if err := s.backend.LeaveClub(ctx, clubID, userID); err != nil {
			if !errors.Is(err, ErrDependencyUnavailable) {
				if rbErr := s.membershipRepo.Upsert(ctx, existing); rbErr != nil {
					s.logger.ErrorContext(ctx, "failed to roll back club leave", "club_id", clubID, "error", rbErr)
				}

				return err
			}
			s.logger.WarnContext(ctx, "backend unreachable, keeping local club leave",
				"club_id", clubID,
				"user_id", userID,
			)
		}
	}

	s.publishMembershipChange(ctx, left, false)
	s.logger.InfoContext(ctx, "left club", "club_id", clubID, "user_id", userID)

	return nil
}

// UpdateMemberRole changes another member's role. Only managers and admins
// may do this; the backend re-checks on its side.
func (s *ClubService) UpdateMemberRole(ctx context.Context, clubID, actorID, memberID string, role club.Role) error {
	clubID = strings.TrimSpace(clubID)
	actorID = strings.TrimSpace(actorID)
	memberID = strings.TrimSpace(memberID)
	if clubID == "" || actorID == "" || memberID == "" {
		return fmt.Errorf("%w: club id, actor id and member id are required", ErrInvalidInput)
	}

	switch role {
	case club.RoleMember, club.RoleManager, club.RoleAdmin:
	default:
		return fmt.Errorf("%w: role %q is not valid", ErrInvalidInput, role)
	}

	actor, found, err := s.membershipRepo.Get(ctx, actorID, clubID)
	if err != nil {
		return fmt.Errorf("get actor membership: %w", err)
	}
	if !found || !actor.IsActive() || !actor.Role.CanManageMembers() {
		return fmt.Errorf("%w: user=%s cannot manage members of club=%s", ErrUnauthorized, actorID, clubID)
	}

	target, found, err := s.membershipRepo.Get(ctx, memberID, clubID)
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}
	if !found || !target.IsActive() {
		return fmt.Errorf("%w: member=%s not in club=%s", ErrNotFound, memberID, clubID)
	}
	if target.Role == role {
		return nil
	}

	updated := target
	updated.Role = role
	if err := s.membershipRepo.Upsert(ctx, updated); err != nil {
		return fmt.Errorf("store membership: %w", err)
	}

	if s.backend != nil {
		if err := s.backend.UpdateClubRole(ctx, clubID, memberID, role); err != nil {
			if !errors.Is(err, ErrDependencyUnavailable) {
				if rbErr := s.membershipRepo.Upsert(ctx, target); rbErr != nil {
					s.logger.ErrorContext(ctx, "failed to roll back role change", "club_id", clubID, "error", rbErr)
				}

				return err
			}
			s.logger.WarnContext(ctx, "backend unreachable, keeping local role change",
				"club_id", clubID,
				"member_id", memberID,
			)
		}
	}

	s.publishMembershipChange(ctx, updated, true)
	s.logger.InfoContext(ctx, "club role updated",
		"club_id", clubID,
		"member_id", memberID,
		"role", string(role),
	)

	return nil
}

func (s *ClubService) publishMembershipChange(ctx context.Context, m club.Membership, joined bool) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(ctx, eventbus.TopicClubMembershipChanged, eventbus.ClubMembershipChange{
		ClubID: m.ClubID,
		UserID: m.UserID,
		Role:   string(m.Role),
		Status: string(m.Status),
		Joined: joined,
	})
}

func activeMemberships(memberships []club.Membership) []club.Membership {
	out := make([]club.Membership, 0, len(memberships))
	for _, m := range memberships {
		if m.IsActive() {
			out = append(out, m)
		}
	}

	return out
}

func cleanClubUser(clubID, userID string) (string, string, error) {
	clubID = strings.TrimSpace(clubID)
	userID = strings.TrimSpace(userID)
	if clubID == "" {
		return "", "", fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}
	if userID == "" {
		return "", "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	return clubID, userID, nil
}
