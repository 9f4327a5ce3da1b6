package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerActivityRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/activities", handler.ListActivities)
	mux.HandleFunc("GET /v1/activities/search", handler.ListActivities)
	mux.HandleFunc("POST /v1/activities", handler.CreateActivity)
	mux.HandleFunc("POST /v1/activities/refresh", handler.RefreshActivities)
	mux.HandleFunc("GET /v1/activities/{activityID}", handler.GetActivity)
	mux.HandleFunc("GET /v1/activities/{activityID}/stats", handler.GetActivityStats)
	mux.HandleFunc("GET /v1/activities/{activityID}/can-join", handler.CanJoinActivity)
	mux.HandleFunc("POST /v1/activities/{activityID}/participants", handler.JoinActivity)
	mux.HandleFunc("DELETE /v1/activities/{activityID}/participants", handler.LeaveActivity)
	mux.HandleFunc("GET /v1/activities/{activityID}/reviews", handler.ListActivityReviews)
	mux.HandleFunc("POST /v1/activities/{activityID}/reviews", handler.SubmitActivityReview)
}

func registerUserRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/me/activities", handler.ListJoinedActivities)
	mux.HandleFunc("GET /v1/me/completed", handler.ListCompletedActivities)
	mux.HandleFunc("GET /v1/me/saved", handler.ListSavedActivities)
	mux.HandleFunc("POST /v1/me/saved", handler.SaveActivity)
	mux.HandleFunc("DELETE /v1/me/saved/{activityID}", handler.UnsaveActivity)
	mux.HandleFunc("GET /v1/me/memberships", handler.ListMyMemberships)
	mux.HandleFunc("GET /v1/me/profile", handler.GetMyProfile)
	mux.HandleFunc("PUT /v1/me/profile", handler.UpdateMyProfile)
	mux.HandleFunc("GET /v1/profiles", handler.ListProfiles)
	mux.HandleFunc("GET /v1/profiles/{profileID}", handler.GetProfile)
}

func registerClubRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/clubs", handler.ListClubs)
	mux.HandleFunc("GET /v1/clubs/{clubID}", handler.GetClub)
	mux.HandleFunc("GET /v1/clubs/{clubID}/members", handler.ListClubMembers)
	mux.HandleFunc("POST /v1/clubs/{clubID}/members", handler.JoinClub)
	mux.HandleFunc("DELETE /v1/clubs/{clubID}/members", handler.LeaveClub)
	mux.HandleFunc("PUT /v1/clubs/{clubID}/members/{memberID}/role", handler.UpdateClubMemberRole)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/internal/sweep", handler.TriggerCompletionSweep)
}
