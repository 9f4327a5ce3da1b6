package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/yangyang7755/activityhub/internal/platform/logging"
	"github.com/yangyang7755/activityhub/internal/usecase"
)

type Handler struct {
	activityService      *usecase.ActivityService
	participationService *usecase.ParticipationService
	savedService         *usecase.SavedService
	clubService          *usecase.ClubService
	profileService       *usecase.ProfileService
	reviewService        *usecase.ReviewService
	defaultUserID        string
	logger               *logging.Logger
	validator            *validator.Validate
}

func NewHandler(
	activityService *usecase.ActivityService,
	participationService *usecase.ParticipationService,
	savedService *usecase.SavedService,
	clubService *usecase.ClubService,
	profileService *usecase.ProfileService,
	reviewService *usecase.ReviewService,
	defaultUserID string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		activityService:      activityService,
		participationService: participationService,
		savedService:         savedService,
		clubService:          clubService,
		profileService:       profileService,
		reviewService:        reviewService,
		defaultUserID:        strings.TrimSpace(defaultUserID),
		logger:               logger,
		validator:            validator.New(),
	}
}

// userID resolves the acting user. Mobile clients send their identity in the
// X-User-ID header; without one the configured demo user is assumed.
func (h *Handler) userID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return id
	}
	return h.defaultUserID
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.decodeRequest")
	defer span.End()

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
