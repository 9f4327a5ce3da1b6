package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/review"
	"github.com/yangyang7755/activityhub/internal/usecase"
)

type reviewDTO struct {
	ID           string    `json:"id"`
	ActivityID   string    `json:"activity_id"`
	ReviewerID   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func reviewToDTO(ctx context.Context, v review.Review) reviewDTO {
	ctx, span := startSpan(ctx, "httpapi.reviewToDTO")
	defer span.End()

	return reviewDTO{
		ID:           v.ID,
		ActivityID:   v.ActivityID,
		ReviewerID:   v.ReviewerID,
		ReviewerName: v.ReviewerName,
		Rating:       v.Rating,
		Comment:      v.Comment,
		CreatedAt:    v.CreatedAt,
	}
}

type completionDTO struct {
	ActivityID  string    `json:"activity_id"`
	UserID      string    `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type submitReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

func (h *Handler) ListActivityReviews(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListActivityReviews")
	defer span.End()

	activityID := strings.TrimSpace(r.PathValue("activityID"))
	reviews, err := h.reviewService.ListReviews(ctx, activityID)
	if err != nil {
		h.logger.WarnContext(ctx, "list reviews failed", "activity_id", activityID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]reviewDTO, 0, len(reviews))
	for _, v := range reviews {
		items = append(items, reviewToDTO(ctx, v))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) SubmitActivityReview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitActivityReview")
	defer span.End()

	var req submitReviewRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	activityID := strings.TrimSpace(r.PathValue("activityID"))
	reviewerID := h.userID(r)
	reviewerName := reviewerID
	if p, err := h.profileService.GetProfile(ctx, reviewerID); err == nil {
		reviewerName = p.FullName
	}

	submitted, err := h.reviewService.SubmitReview(ctx, usecase.SubmitReviewInput{
		ActivityID:   activityID,
		ReviewerID:   reviewerID,
		ReviewerName: reviewerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit review failed", "activity_id", activityID, "reviewer_id", reviewerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, reviewToDTO(ctx, submitted))
}

func (h *Handler) ListCompletedActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompletedActivities")
	defer span.End()

	userID := h.userID(r)
	completions, err := h.reviewService.ListCompleted(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list completed activities failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]completionDTO, 0, len(completions))
	for _, c := range completions {
		items = append(items, completionDTO{
			ActivityID:  c.ActivityID,
			UserID:      c.UserID,
			CompletedAt: c.CompletedAt,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) TriggerCompletionSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerCompletionSweep")
	defer span.End()

	result, err := h.reviewService.SweepEnded(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "completion sweep failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
