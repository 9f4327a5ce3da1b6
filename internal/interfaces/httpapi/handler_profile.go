package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/yangyang7755/activityhub/internal/domain/profile"
	"github.com/yangyang7755/activityhub/internal/usecase"
)

type visibilityDTO struct {
	ShowEmail  bool `json:"show_email"`
	ShowBio    bool `json:"show_bio"`
	ShowSkills bool `json:"show_skills"`
}

type profileDTO struct {
	ID          string            `json:"id"`
	FullName    string            `json:"full_name"`
	Bio         string            `json:"bio,omitempty"`
	Email       string            `json:"email,omitempty"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Visibility  visibilityDTO     `json:"visibility"`
	SkillLevels map[string]string `json:"skill_levels,omitempty"`
}

func profileToDTO(ctx context.Context, v profile.Profile) profileDTO {
	ctx, span := startSpan(ctx, "httpapi.profileToDTO")
	defer span.End()

	return profileDTO{
		ID:        v.ID,
		FullName:  v.FullName,
		Bio:       v.Bio,
		Email:     v.Email,
		AvatarURL: v.AvatarURL,
		Visibility: visibilityDTO{
			ShowEmail:  v.Visibility.ShowEmail,
			ShowBio:    v.Visibility.ShowBio,
			ShowSkills: v.Visibility.ShowSkills,
		},
		SkillLevels: v.SkillLevels,
	}
}

// publicProfileToDTO applies the profile's visibility flags before the record
// leaves the API. The owner's own reads skip this.
func publicProfileToDTO(ctx context.Context, v profile.Profile) profileDTO {
	ctx, span := startSpan(ctx, "httpapi.publicProfileToDTO")
	defer span.End()

	dto := profileToDTO(ctx, v)
	if !v.Visibility.ShowEmail {
		dto.Email = ""
	}
	if !v.Visibility.ShowBio {
		dto.Bio = ""
	}
	if !v.Visibility.ShowSkills {
		dto.SkillLevels = nil
	}

	return dto
}

type updateProfileRequest struct {
	FullName    *string           `json:"full_name" validate:"omitempty,max=100"`
	Bio         *string           `json:"bio" validate:"omitempty,max=2000"`
	Email       *string           `json:"email" validate:"omitempty,email"`
	AvatarURL   *string           `json:"avatar_url" validate:"omitempty,url"`
	Visibility  *visibilityDTO    `json:"visibility"`
	SkillLevels map[string]string `json:"skill_levels"`
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyProfile")
	defer span.End()

	current, err := h.profileService.CurrentProfile(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get current profile failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(ctx, current))
}

func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMyProfile")
	defer span.End()

	var req updateProfileRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.UpdateProfileInput{
		FullName:    req.FullName,
		Bio:         req.Bio,
		Email:       req.Email,
		AvatarURL:   req.AvatarURL,
		SkillLevels: req.SkillLevels,
	}
	if req.Visibility != nil {
		input.Visibility = &profile.Visibility{
			ShowEmail:  req.Visibility.ShowEmail,
			ShowBio:    req.Visibility.ShowBio,
			ShowSkills: req.Visibility.ShowSkills,
		}
	}

	updated, err := h.profileService.UpdateProfile(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update profile failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileToDTO(ctx, updated))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProfile")
	defer span.End()

	profileID := strings.TrimSpace(r.PathValue("profileID"))
	item, err := h.profileService.GetProfile(ctx, profileID)
	if err != nil {
		h.logger.WarnContext(ctx, "get profile failed", "profile_id", profileID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, publicProfileToDTO(ctx, item))
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListProfiles")
	defer span.End()

	profiles, err := h.profileService.ListKnownProfiles(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list profiles failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]profileDTO, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, publicProfileToDTO(ctx, p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
