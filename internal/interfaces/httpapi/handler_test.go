package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/domain/club"
	"github.com/yangyang7755/activityhub/internal/domain/profile"
	"github.com/yangyang7755/activityhub/internal/domain/review"
	"github.com/yangyang7755/activityhub/internal/infrastructure/repository/memory"
	"github.com/yangyang7755/activityhub/internal/platform/eventbus"
	idgen "github.com/yangyang7755/activityhub/internal/platform/id"
	"github.com/yangyang7755/activityhub/internal/platform/logging"
	"github.com/yangyang7755/activityhub/internal/usecase"
)

// okBackend accepts every remote call so handler tests exercise the
// optimistic happy path.
type okBackend struct{}

func (okBackend) FetchActivities(context.Context) ([]activity.Activity, error) {
	return memory.SeedActivities(), nil
}

func (okBackend) CreateActivity(_ context.Context, a activity.Activity) (activity.Activity, error) {
	return a, nil
}

func (okBackend) JoinActivity(context.Context, string, string) error  { return nil }
func (okBackend) LeaveActivity(context.Context, string, string) error { return nil }

func (okBackend) SaveActivity(context.Context, string, string) error   { return nil }
func (okBackend) UnsaveActivity(context.Context, string, string) error { return nil }

func (okBackend) FetchClubs(context.Context) ([]club.Club, error)          { return memory.SeedClubs(), nil }
func (okBackend) JoinClub(context.Context, string, string) error           { return nil }
func (okBackend) LeaveClub(context.Context, string, string) error          { return nil }
func (okBackend) UpdateClubRole(context.Context, string, string, club.Role) error {
	return nil
}

func (okBackend) UpdateProfile(context.Context, profile.Profile) error { return nil }
func (okBackend) SubmitReview(context.Context, review.Review) error    { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	serviceLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewInMemoryBus()
	backend := okBackend{}
	activityRepo := memory.NewActivityRepository(memory.SeedActivities())

	activityService := usecase.NewActivityService(activityRepo, backend, nil, bus, idgen.NewRandomGenerator(), serviceLogger)
	participationService := usecase.NewParticipationService(activityRepo, memory.NewParticipationRepository(), backend, bus, serviceLogger)
	savedService := usecase.NewSavedService(memory.NewSavedRepository(), activityRepo, backend, serviceLogger)
	clubService := usecase.NewClubService(memory.NewClubRepository(memory.SeedClubs()), memory.NewMembershipRepository(memory.SeedMemberships()), backend, bus, serviceLogger)
	profileService := usecase.NewProfileService(memory.NewProfileRepository(memory.SeedProfiles()), memory.NewProfileSnapshotStore(), backend, bus, memory.SeedCurrentProfile(), serviceLogger)
	reviewService := usecase.NewReviewService(memory.NewReviewRepository(), memory.NewCompletionRepository(), activityRepo, memory.NewParticipationRepository(), backend, idgen.NewRandomGenerator(), serviceLogger)

	handler := NewHandler(activityService, participationService, savedService, clubService, profileService, reviewService, memory.DemoUserID, logging.NewNop())

	return NewRouter(handler, logging.NewNop(), []string{"*"})
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal %s %s response: %v", method, path, err)
		}
	}

	return rec, envelope
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if envelope["apiVersion"] != "2.0" {
		t.Fatalf("expected envelope, got %v", envelope)
	}
}

func TestRouter_ListAndSearchActivities(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/activities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	items, ok := envelope["data"].([]any)
	if !ok || len(items) != len(memory.SeedActivities()) {
		t.Fatalf("expected full feed, got %v", envelope["data"])
	}

	rec, envelope = doRequest(t, router, http.MethodGet, "/v1/activities?q=climb", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	items, ok = envelope["data"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one climbing match, got %v", envelope["data"])
	}

	// The dedicated search path serves the same filtered feed.
	rec, envelope = doRequest(t, router, http.MethodGet, "/v1/activities/search?q=climb", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	items, ok = envelope["data"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected one climbing match via search path, got %v", envelope["data"])
	}
}

func TestRouter_GetActivityNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/activities/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	errorObj, ok := envelope["error"].(map[string]any)
	if !ok || errorObj["status"] != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND error, got %v", envelope)
	}
}

func TestRouter_JoinThenLeaveActivity(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodPost, "/v1/activities/"+memory.ActivityIDWestwayClimb+"/participants", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ := envelope["data"].(map[string]any)
	if got, _ := data["current_participants"].(float64); got != 9 {
		t.Fatalf("expected 9 participants after join, got %v", data)
	}

	// Joining again conflicts.
	rec, _ = doRequest(t, router, http.MethodPost, "/v1/activities/"+memory.ActivityIDWestwayClimb+"/participants", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second join: expected 409, got %d", rec.Code)
	}

	rec, envelope = doRequest(t, router, http.MethodDelete, "/v1/activities/"+memory.ActivityIDWestwayClimb+"/participants", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("leave: expected 200, got %d", rec.Code)
	}
	data, _ = envelope["data"].(map[string]any)
	if got, _ := data["current_participants"].(float64); got != 8 {
		t.Fatalf("expected 8 participants after leave, got %v", data)
	}
}

func TestRouter_CreateActivityValidation(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/v1/activities", `{"title":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	body := `{"title":"Evening Ride","type":"cycling","starts_at":"2026-10-10T18:00:00Z","location":"Richmond Park","max_participants":10}`
	rec, envelope := doRequest(t, router, http.MethodPost, "/v1/activities", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ := envelope["data"].(map[string]any)
	if data["organizer_id"] != memory.DemoUserID {
		t.Fatalf("expected demo organizer, got %v", data)
	}
	if data["organizer_name"] != "Maddie Wei" {
		t.Fatalf("expected organizer name resolved from profile, got %v", data)
	}
}

func TestRouter_SaveAndUnsave(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/v1/me/saved", `{"activity_id":"`+memory.ActivityIDSundayRide+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/me/saved", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list saved: expected 200, got %d", rec.Code)
	}
	items, _ := envelope["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one saved entry, got %v", envelope["data"])
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/v1/me/saved/"+memory.ActivityIDSundayRide, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unsave: expected 200, got %d", rec.Code)
	}

	rec, envelope = doRequest(t, router, http.MethodGet, "/v1/me/saved", "")
	items, _ = envelope["data"].([]any)
	if len(items) != 0 {
		t.Fatalf("expected empty saved list, got %v", envelope["data"])
	}
}

func TestRouter_ClubJoinAndRole(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodPost, "/v1/clubs/"+memory.ClubIDWestway+"/members", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("join club: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ := envelope["data"].(map[string]any)
	if data["role"] != "member" || data["club_name"] != "Westway Climbing Centre" {
		t.Fatalf("unexpected membership: %v", data)
	}

	// A plain member cannot hand out roles.
	rec, _ = doRequest(t, router, http.MethodPut, "/v1/clubs/"+memory.ClubIDWestway+"/members/coach-holly/role", `{"role":"member"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/v1/clubs/"+memory.ClubIDWestway+"/members", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("leave club: expected 200, got %d", rec.Code)
	}
}

func TestRouter_ProfileRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	rec, envelope := doRequest(t, router, http.MethodGet, "/v1/me/profile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile: expected 200, got %d", rec.Code)
	}
	data, _ := envelope["data"].(map[string]any)
	if data["id"] != memory.DemoUserID {
		t.Fatalf("expected demo profile, got %v", data)
	}

	rec, envelope = doRequest(t, router, http.MethodPut, "/v1/me/profile", `{"bio":"Weekend climber"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ = envelope["data"].(map[string]any)
	if data["bio"] != "Weekend climber" {
		t.Fatalf("expected merged bio, got %v", data)
	}

	rec, _ = doRequest(t, router, http.MethodPut, "/v1/me/profile", `{"unknown_field":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rec.Code)
	}
}

func TestRouter_SweepThenReview(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/v1/internal/sweep", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("sweep: expected 200, got %d", rec.Code)
	}

	// The demo user never joined, so reviewing is denied even after the sweep.
	rec, _ = doRequest(t, router, http.MethodPost, "/v1/activities/"+memory.ActivityIDWestwayClimb+"/reviews", `{"rating":5}`)
	if rec.Code != http.StatusForbidden && rec.Code != http.StatusConflict {
		t.Fatalf("review without completion: expected 403 or 409, got %d", rec.Code)
	}
}
