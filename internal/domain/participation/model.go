package participation

import (
	"fmt"
	"time"
)

// Status tracks the lifecycle of a join record. Leaving flips the status to
// StatusLeft; rows are never deleted so the join history survives.
type Status string

const (
	StatusJoined    Status = "joined"
	StatusLeft      Status = "left"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Participant links a user to an activity.
type Participant struct {
	ActivityID string
	UserID     string
	Status     Status
	JoinedAt   time.Time
}

func (p Participant) Validate() error {
	if p.ActivityID == "" {
		return fmt.Errorf("participant activity id is required")
	}
	if p.UserID == "" {
		return fmt.Errorf("participant user id is required")
	}
	switch p.Status {
	case StatusJoined, StatusLeft, StatusCompleted, StatusCancelled:
	default:
		return fmt.Errorf("participant status %q is not valid", p.Status)
	}

	return nil
}

func (p Participant) IsActive() bool {
	return p.Status == StatusJoined
}

// Stats is the participation summary for one activity. WaitingListCount is
// always zero: the backend has no waitlist, the field exists for API shape
// compatibility with the mobile clients.
type Stats struct {
	CurrentParticipants int
	MaxParticipants     int
	IsFull              bool
	WaitingListCount    int
}
