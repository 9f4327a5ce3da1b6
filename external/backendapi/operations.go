package backendapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/domain/club"
	"github.com/yangyang7755/activityhub/internal/domain/profile"
	"github.com/yangyang7755/activityhub/internal/domain/review"
)

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

type itemEnvelope[T any] struct {
	Data T `json:"data"`
}

// FetchActivities loads all browsable activities. Rows that fail to
// normalize are skipped rather than failing the whole fetch; one malformed
// legacy row must not blank the activity feed.
func (c *Client) FetchActivities(ctx context.Context) ([]activity.Activity, error) {
	var envelope listEnvelope[activityRow]
	if err := c.getJSON(ctx, "/activities", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}

	out := make([]activity.Activity, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		normalized, err := row.toDomain()
		if err != nil {
			c.logger.WarnContext(ctx, "skipping malformed activity row", "activity_id", row.ID, "error", err)
			continue
		}
		out = append(out, normalized)
	}

	return out, nil
}

func (c *Client) CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	body := map[string]any{
		"id":            a.ID,
		"title":         a.Title,
		"activity_type": string(a.Type),
		"location":      a.Location,
		"organizer": map[string]string{
			"id":        a.OrganizerID,
			"full_name": a.OrganizerName,
		},
		"max_participants": a.MaxParticipants,
		"difficulty":       a.Difficulty,
		"club_id":          a.ClubID,
	}
	if !a.StartsAt.IsZero() {
		body["date_time"] = a.StartsAt.Format(time.RFC3339)
	}

	var envelope itemEnvelope[activityRow]
	if err := c.sendJSON(ctx, http.MethodPost, "/activities", body, &envelope); err != nil {
		return activity.Activity{}, fmt.Errorf("create activity: %w", err)
	}

	created, err := envelope.Data.toDomain()
	if err != nil {
		return activity.Activity{}, fmt.Errorf("create activity: %w", err)
	}

	return created, nil
}

func (c *Client) JoinActivity(ctx context.Context, activityID, userID string) error {
	path := "/activities/" + activityID + "/participants"
	if err := c.sendJSON(ctx, http.MethodPost, path, map[string]string{"user_id": userID}, nil); err != nil {
		return fmt.Errorf("join activity %s: %w", activityID, err)
	}
	return nil
}

func (c *Client) LeaveActivity(ctx context.Context, activityID, userID string) error {
	path := "/activities/" + activityID + "/participants/" + userID
	if err := c.sendJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("leave activity %s: %w", activityID, err)
	}
	return nil
}

func (c *Client) SaveActivity(ctx context.Context, userID, activityID string) error {
	path := "/users/" + userID + "/saved"
	if err := c.sendJSON(ctx, http.MethodPost, path, map[string]string{"activity_id": activityID}, nil); err != nil {
		return fmt.Errorf("save activity %s: %w", activityID, err)
	}
	return nil
}

func (c *Client) UnsaveActivity(ctx context.Context, userID, activityID string) error {
	path := "/users/" + userID + "/saved/" + activityID
	if err := c.sendJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("unsave activity %s: %w", activityID, err)
	}
	return nil
}

func (c *Client) FetchClubs(ctx context.Context) ([]club.Club, error) {
	var envelope listEnvelope[clubRow]
	if err := c.getJSON(ctx, "/clubs", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch clubs: %w", err)
	}

	out := make([]club.Club, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		normalized, err := row.toDomain()
		if err != nil {
			c.logger.WarnContext(ctx, "skipping malformed club row", "club_id", row.ID, "error", err)
			continue
		}
		out = append(out, normalized)
	}

	return out, nil
}

func (c *Client) JoinClub(ctx context.Context, clubID, userID string) error {
	path := "/clubs/" + clubID + "/members"
	if err := c.sendJSON(ctx, http.MethodPost, path, map[string]string{"user_id": userID}, nil); err != nil {
		return fmt.Errorf("join club %s: %w", clubID, err)
	}
	return nil
}

func (c *Client) LeaveClub(ctx context.Context, clubID, userID string) error {
	path := "/clubs/" + clubID + "/members/" + userID
	if err := c.sendJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("leave club %s: %w", clubID, err)
	}
	return nil
}

func (c *Client) UpdateClubRole(ctx context.Context, clubID, memberID string, role club.Role) error {
	path := "/clubs/" + clubID + "/members/" + memberID + "/role"
	if err := c.sendJSON(ctx, http.MethodPut, path, map[string]string{"role": string(role)}, nil); err != nil {
		return fmt.Errorf("update club %s member %s role: %w", clubID, memberID, err)
	}
	return nil
}

func (c *Client) UpdateProfile(ctx context.Context, p profile.Profile) error {
	body := map[string]any{
		"id":           p.ID,
		"full_name":    p.FullName,
		"bio":          p.Bio,
		"email":        p.Email,
		"avatar_url":   p.AvatarURL,
		"skill_levels": p.SkillLevels,
		"visibility": map[string]bool{
			"show_email":  p.Visibility.ShowEmail,
			"show_bio":    p.Visibility.ShowBio,
			"show_skills": p.Visibility.ShowSkills,
		},
	}
	if err := c.sendJSON(ctx, http.MethodPut, "/users/"+p.ID+"/profile", body, nil); err != nil {
		return fmt.Errorf("update profile %s: %w", p.ID, err)
	}
	return nil
}

func (c *Client) SubmitReview(ctx context.Context, r review.Review) error {
	body := map[string]any{
		"id":          r.ID,
		"reviewer_id": r.ReviewerID,
		"rating":      r.Rating,
		"comment":     r.Comment,
	}
	path := "/activities/" + r.ActivityID + "/reviews"
	if err := c.sendJSON(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("submit review for activity %s: %w", r.ActivityID, err)
	}
	return nil
}
