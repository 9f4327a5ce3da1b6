package backendapi

import (
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/domain/club"
	"github.com/yangyang7755/activityhub/internal/platform/id"
)

// The backend serves two generations of field names side by side: the
// current snake_case set (activity_type, date_time, max_participants) and a
// legacy camelCase/split set (type, date, time, maxParticipants). Rows decode
// both and normalize once here so nothing past this boundary branches on
// shape.
type activityRow struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	ActivityType        string       `json:"activity_type"`
	LegacyType          string       `json:"type"`
	DateTime            string       `json:"date_time"`
	LegacyDate          string       `json:"date"`
	LegacyTime          string       `json:"time"`
	Location            string       `json:"location"`
	Organizer           sonicRawNode `json:"organizer"`
	MaxParticipants     int          `json:"max_participants"`
	LegacyMax           int          `json:"maxParticipants"`
	CurrentParticipants int          `json:"current_participants"`
	Difficulty          string       `json:"difficulty"`
	ClubID              string       `json:"club_id"`
}

// sonicRawNode defers decoding for fields whose wire type varies.
type sonicRawNode []byte

func (n *sonicRawNode) UnmarshalJSON(data []byte) error {
	*n = append((*n)[:0], data...)
	return nil
}

type organizerRow struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Name     string `json:"name"`
}

func (r activityRow) toDomain() (activity.Activity, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return activity.Activity{}, fmt.Errorf("activity row has no title")
	}

	organizerID, organizerName, err := r.organizer()
	if err != nil {
		return activity.Activity{}, err
	}

	activityID := strings.TrimSpace(r.ID)
	if activityID == "" {
		activityID = id.Slug(title, organizerName)
	}

	maxParticipants := r.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = r.LegacyMax
	}

	startsAt, err := r.startsAt()
	if err != nil {
		return activity.Activity{}, err
	}

	out := activity.Activity{
		ID:                  activityID,
		Title:               title,
		Type:                activity.ParseType(firstNonEmpty(r.ActivityType, r.LegacyType)),
		StartsAt:            startsAt,
		Location:            strings.TrimSpace(r.Location),
		OrganizerID:         organizerID,
		OrganizerName:       organizerName,
		MaxParticipants:     maxParticipants,
		CurrentParticipants: r.CurrentParticipants,
		Difficulty:          strings.TrimSpace(r.Difficulty),
		ClubID:              strings.TrimSpace(r.ClubID),
	}
	if err := out.Validate(); err != nil {
		return activity.Activity{}, fmt.Errorf("normalize activity %s: %w", activityID, err)
	}

	return out, nil
}

// organizer tolerates both wire shapes: a bare display-name string and an
// embedded user object.
func (r activityRow) organizer() (string, string, error) {
	raw := strings.TrimSpace(string(r.Organizer))
	if raw == "" || raw == "null" {
		return "", "", nil
	}

	if strings.HasPrefix(raw, `"`) {
		var name string
		if err := sonic.UnmarshalString(raw, &name); err != nil {
			return "", "", fmt.Errorf("decode organizer name: %w", err)
		}
		return "", strings.TrimSpace(name), nil
	}

	var row organizerRow
	if err := sonic.UnmarshalString(raw, &row); err != nil {
		return "", "", fmt.Errorf("decode organizer object: %w", err)
	}
	return strings.TrimSpace(row.ID), strings.TrimSpace(firstNonEmpty(row.FullName, row.Name)), nil
}

func (r activityRow) startsAt() (time.Time, error) {
	if raw := strings.TrimSpace(r.DateTime); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date_time %q: %w", raw, err)
		}
		return parsed, nil
	}

	date := strings.TrimSpace(r.LegacyDate)
	if date == "" {
		return time.Time{}, nil
	}
	clock := strings.TrimSpace(r.LegacyTime)
	if clock == "" {
		clock = "00:00"
	}

	parsed, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse legacy date %q time %q: %w", date, clock, err)
	}
	return parsed, nil
}

type clubRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sport    string `json:"sport"`
	Location string `json:"location"`
	LogoURL  string `json:"logo_url"`
}

func (r clubRow) toDomain() (club.Club, error) {
	out := club.Club{
		ID:       strings.TrimSpace(r.ID),
		Name:     strings.TrimSpace(r.Name),
		Sport:    strings.TrimSpace(r.Sport),
		Location: strings.TrimSpace(r.Location),
		LogoURL:  strings.TrimSpace(r.LogoURL),
	}
	if err := out.Validate(); err != nil {
		return club.Club{}, fmt.Errorf("normalize club: %w", err)
	}

	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
