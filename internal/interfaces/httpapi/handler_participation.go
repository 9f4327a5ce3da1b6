package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/yangyang7755/activityhub/internal/domain/participation"
)

type participationStatsDTO struct {
	CurrentParticipants int  `json:"current_participants"`
	MaxParticipants     int  `json:"max_participants"`
	IsFull              bool `json:"is_full"`
	WaitingListCount    int  `json:"waiting_list_count"`
}

func statsToDTO(ctx context.Context, v participation.Stats) participationStatsDTO {
	ctx, span := startSpan(ctx, "httpapi.statsToDTO")
	defer span.End()

	return participationStatsDTO{
		CurrentParticipants: v.CurrentParticipants,
		MaxParticipants:     v.MaxParticipants,
		IsFull:              v.IsFull,
		WaitingListCount:    v.WaitingListCount,
	}
}

func (h *Handler) JoinActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinActivity")
	defer span.End()

	activityID := strings.TrimSpace(r.PathValue("activityID"))
	userID := h.userID(r)

	if err := h.participationService.Join(ctx, activityID, userID); err != nil {
		h.logger.WarnContext(ctx, "join activity failed", "activity_id", activityID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	stats, err := h.participationService.Stats(ctx, activityID)
	if err != nil {
		h.logger.WarnContext(ctx, "stats after join failed", "activity_id", activityID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statsToDTO(ctx, stats))
}

func (h *Handler) LeaveActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveActivity")
	defer span.End()

	activityID := strings.TrimSpace(r.PathValue("activityID"))
	userID := h.userID(r)

	if err := h.participationService.Leave(ctx, activityID, userID); err != nil {
		h.logger.WarnContext(ctx, "leave activity failed", "activity_id", activityID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	stats, err := h.participationService.Stats(ctx, activityID)
	if err != nil {
		h.logger.WarnContext(ctx, "stats after leave failed", "activity_id", activityID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statsToDTO(ctx, stats))
}

func (h *Handler) CanJoinActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CanJoinActivity")
	defer span.End()

	activityID := strings.TrimSpace(r.PathValue("activityID"))
	userID := h.userID(r)

	reason := ""
	allowed := true
	if err := h.participationService.CanJoin(ctx, activityID, userID); err != nil {
		mapped := mapError(ctx, err)
		if mapped.HTTPStatus >= http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "can-join check failed", "activity_id", activityID, "user_id", userID, "error", err)
			writeError(ctx, w, err)
			return
		}
		allowed = false
		reason = mapped.Reason
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"allowed": allowed,
		"reason":  reason,
	})
}

func (h *Handler) GetActivityStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActivityStats")
	defer span.End()

	activityID := strings.TrimSpace(r.PathValue("activityID"))
	stats, err := h.participationService.Stats(ctx, activityID)
	if err != nil {
		h.logger.WarnContext(ctx, "get activity stats failed", "activity_id", activityID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statsToDTO(ctx, stats))
}

func (h *Handler) ListJoinedActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJoinedActivities")
	defer span.End()

	userID := h.userID(r)
	items, err := h.participationService.ListJoinedActivities(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list joined activities failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, activitiesToDTO(ctx, items))
}
