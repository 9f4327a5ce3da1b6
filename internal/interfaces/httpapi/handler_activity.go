package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/usecase"
)

type activityDTO struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Type                string    `json:"type"`
	StartsAt            time.Time `json:"starts_at"`
	Location            string    `json:"location"`
	OrganizerID         string    `json:"organizer_id"`
	OrganizerName       string    `json:"organizer_name"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	Difficulty          string    `json:"difficulty,omitempty"`
	ClubID              string    `json:"club_id,omitempty"`
}

func activityToDTO(ctx context.Context, v activity.Activity) activityDTO {
	ctx, span := startSpan(ctx, "httpapi.activityToDTO")
	defer span.End()

	return activityDTO{
		ID:                  v.ID,
		Title:               v.Title,
		Type:                string(v.Type),
		StartsAt:            v.StartsAt,
		Location:            v.Location,
		OrganizerID:         v.OrganizerID,
		OrganizerName:       v.OrganizerName,
		MaxParticipants:     v.MaxParticipants,
		CurrentParticipants: v.CurrentParticipants,
		Difficulty:          v.Difficulty,
		ClubID:              v.ClubID,
	}
}

func activitiesToDTO(ctx context.Context, items []activity.Activity) []activityDTO {
	out := make([]activityDTO, 0, len(items))
	for _, v := range items {
		out = append(out, activityToDTO(ctx, v))
	}
	return out
}

type createActivityRequest struct {
	Title           string    `json:"title" validate:"required,max=200"`
	Type            string    `json:"type" validate:"required"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	Location        string    `json:"location" validate:"omitempty,max=200"`
	Difficulty      string    `json:"difficulty" validate:"omitempty,max=50"`
	MaxParticipants int       `json:"max_participants" validate:"required,gt=0"`
	ClubID          string    `json:"club_id" validate:"omitempty"`
}

func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListActivities")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		items []activity.Activity
		err   error
	)
	if query != "" {
		items, err = h.activityService.SearchActivities(ctx, query)
	} else {
		items, err = h.activityService.ListActivities(ctx)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "list activities failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, activitiesToDTO(ctx, items))
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActivity")
	defer span.End()

	activityID := strings.TrimSpace(r.PathValue("activityID"))
	item, err := h.activityService.GetActivity(ctx, activityID)
	if err != nil {
		h.logger.WarnContext(ctx, "get activity failed", "activity_id", activityID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, activityToDTO(ctx, item))
}

func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateActivity")
	defer span.End()

	var req createActivityRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	organizerID := h.userID(r)
	organizerName := organizerID
	if p, err := h.profileService.GetProfile(ctx, organizerID); err == nil {
		organizerName = p.FullName
	}

	created, err := h.activityService.CreateActivity(ctx, usecase.CreateActivityInput{
		Title:           req.Title,
		Type:            req.Type,
		StartsAt:        req.StartsAt,
		Location:        req.Location,
		Difficulty:      req.Difficulty,
		MaxParticipants: req.MaxParticipants,
		ClubID:          req.ClubID,
		OrganizerID:     organizerID,
		OrganizerName:   organizerName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create activity failed", "organizer_id", organizerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, activityToDTO(ctx, created))
}

func (h *Handler) RefreshActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshActivities")
	defer span.End()

	if err := h.activityService.Refresh(ctx); err != nil {
		h.logger.WarnContext(ctx, "refresh activities failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items, err := h.activityService.ListActivities(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list activities after refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, activitiesToDTO(ctx, items))
}
