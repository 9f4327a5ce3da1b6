package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/club"
)

type clubDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sport    string `json:"sport,omitempty"`
	Location string `json:"location,omitempty"`
	LogoURL  string `json:"logo_url,omitempty"`
}

func clubToDTO(ctx context.Context, v club.Club) clubDTO {
	ctx, span := startSpan(ctx, "httpapi.clubToDTO")
	defer span.End()

	return clubDTO{
		ID:       v.ID,
		Name:     v.Name,
		Sport:    v.Sport,
		Location: v.Location,
		LogoURL:  v.LogoURL,
	}
}

type membershipDTO struct {
	UserID      string    `json:"user_id"`
	ClubID      string    `json:"club_id"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	JoinedAt    time.Time `json:"joined_at"`
	ClubName    string    `json:"club_name,omitempty"`
	ClubLogoURL string    `json:"club_logo_url,omitempty"`
}

func membershipToDTO(ctx context.Context, v club.Membership) membershipDTO {
	ctx, span := startSpan(ctx, "httpapi.membershipToDTO")
	defer span.End()

	return membershipDTO{
		UserID:      v.UserID,
		ClubID:      v.ClubID,
		Role:        string(v.Role),
		Status:      string(v.Status),
		JoinedAt:    v.JoinedAt,
		ClubName:    v.ClubName,
		ClubLogoURL: v.ClubLogoURL,
	}
}

func membershipsToDTO(ctx context.Context, items []club.Membership) []membershipDTO {
	out := make([]membershipDTO, 0, len(items))
	for _, v := range items {
		out = append(out, membershipToDTO(ctx, v))
	}
	return out
}

type updateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=member manager admin"`
}

func (h *Handler) ListClubs(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListClubs")
	defer span.End()

	clubs, err := h.clubService.ListClubs(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list clubs failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]clubDTO, 0, len(clubs))
	for _, c := range clubs {
		items = append(items, clubToDTO(ctx, c))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetClub(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetClub")
	defer span.End()

	clubID := strings.TrimSpace(r.PathValue("clubID"))
	item, err := h.clubService.GetClub(ctx, clubID)
	if err != nil {
		h.logger.WarnContext(ctx, "get club failed", "club_id", clubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, clubToDTO(ctx, item))
}

func (h *Handler) ListClubMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListClubMembers")
	defer span.End()

	clubID := strings.TrimSpace(r.PathValue("clubID"))
	members, err := h.clubService.ListClubMembers(ctx, clubID)
	if err != nil {
		h.logger.WarnContext(ctx, "list club members failed", "club_id", clubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, membershipsToDTO(ctx, members))
}

func (h *Handler) JoinClub(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinClub")
	defer span.End()

	clubID := strings.TrimSpace(r.PathValue("clubID"))
	userID := h.userID(r)

	membership, err := h.clubService.JoinClub(ctx, clubID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "join club failed", "club_id", clubID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, membershipToDTO(ctx, membership))
}

func (h *Handler) LeaveClub(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveClub")
	defer span.End()

	clubID := strings.TrimSpace(r.PathValue("clubID"))
	userID := h.userID(r)

	if err := h.clubService.LeaveClub(ctx, clubID, userID); err != nil {
		h.logger.WarnContext(ctx, "leave club failed", "club_id", clubID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"member": false})
}

func (h *Handler) UpdateClubMemberRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateClubMemberRole")
	defer span.End()

	var req updateMemberRoleRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	clubID := strings.TrimSpace(r.PathValue("clubID"))
	memberID := strings.TrimSpace(r.PathValue("memberID"))
	actorID := h.userID(r)

	if err := h.clubService.UpdateMemberRole(ctx, clubID, actorID, memberID, club.Role(req.Role)); err != nil {
		h.logger.WarnContext(ctx, "update member role failed", "club_id", clubID, "member_id", memberID, "actor_id", actorID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"role": req.Role})
}

func (h *Handler) ListMyMemberships(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyMemberships")
	defer span.End()

	userID := h.userID(r)
	memberships, err := h.clubService.ListUserMemberships(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list memberships failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, membershipsToDTO(ctx, memberships))
}
