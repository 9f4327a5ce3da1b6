package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/saved"
)

type savedActivityDTO struct {
	Activity activityDTO `json:"activity"`
	SavedAt  time.Time   `json:"saved_at"`
}

func savedToDTO(ctx context.Context, v saved.SavedActivity) savedActivityDTO {
	ctx, span := startSpan(ctx, "httpapi.savedToDTO")
	defer span.End()

	return savedActivityDTO{
		Activity: activityToDTO(ctx, v.Activity),
		SavedAt:  v.SavedAt,
	}
}

type saveActivityRequest struct {
	ActivityID string `json:"activity_id" validate:"required"`
}

func (h *Handler) ListSavedActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSavedActivities")
	defer span.End()

	userID := h.userID(r)
	entries, err := h.savedService.ListSaved(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list saved activities failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]savedActivityDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, savedToDTO(ctx, entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SaveActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SaveActivity")
	defer span.End()

	var req saveActivityRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	userID := h.userID(r)
	if err := h.savedService.Save(ctx, userID, req.ActivityID); err != nil {
		h.logger.WarnContext(ctx, "save activity failed", "activity_id", req.ActivityID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, map[string]bool{"saved": true})
}

func (h *Handler) UnsaveActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnsaveActivity")
	defer span.End()

	activityID := strings.TrimSpace(r.PathValue("activityID"))
	userID := h.userID(r)

	if err := h.savedService.Unsave(ctx, userID, activityID); err != nil {
		h.logger.WarnContext(ctx, "unsave activity failed", "activity_id", activityID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"saved": false})
}
