package activity

import (
	"fmt"
	"strings"
	"time"
)

// Type classifies an activity by sport.
type Type string

const (
	TypeCycling  Type = "cycling"
	TypeClimbing Type = "climbing"
	TypeRunning  Type = "running"
	TypeHiking   Type = "hiking"
	TypeSkiing   Type = "skiing"
	TypeSurfing  Type = "surfing"
	TypeTennis   Type = "tennis"
	TypeGeneral  Type = "general"
)

// ParseType normalizes a provider-supplied sport label. Unknown labels map to
// TypeGeneral so a new sport on the backend never breaks older clients.
func ParseType(raw string) Type {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeCycling, TypeClimbing, TypeRunning, TypeHiking, TypeSkiing, TypeSurfing, TypeTennis:
		return Type(strings.ToLower(strings.TrimSpace(raw)))
	default:
		return TypeGeneral
	}
}

// Activity is a group activity users can browse, join and save.
type Activity struct {
	ID                  string
	Title               string
	Type                Type
	StartsAt            time.Time
	Location            string
	OrganizerID         string
	OrganizerName       string
	MaxParticipants     int
	CurrentParticipants int
	Difficulty          string
	ClubID              string
}

func (a Activity) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("activity id is required")
	}
	if a.Title == "" {
		return fmt.Errorf("activity title is required")
	}
	if a.Type == "" {
		return fmt.Errorf("activity type is required")
	}
	if a.MaxParticipants <= 0 {
		return fmt.Errorf("activity max participants must be greater than zero")
	}
	if a.CurrentParticipants < 0 {
		return fmt.Errorf("activity current participants cannot be negative")
	}
	if a.CurrentParticipants > a.MaxParticipants {
		return fmt.Errorf("activity current participants cannot exceed max participants")
	}

	return nil
}

func (a Activity) IsFull() bool {
	return a.MaxParticipants > 0 && a.CurrentParticipants >= a.MaxParticipants
}

func (a Activity) HasEnded(now time.Time) bool {
	return !a.StartsAt.IsZero() && a.StartsAt.Before(now)
}

// Matches reports whether the activity matches a case-insensitive substring
// query over title, location, organizer name and sport.
func (a Activity) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}

	for _, field := range []string{a.Title, a.Location, a.OrganizerName, string(a.Type)} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}

	return false
}
