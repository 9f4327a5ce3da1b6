package review

import (
	"fmt"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Completion records that a user finished an activity. Created by the
// end-of-activity sweep, never by user action.
type Completion struct {
	ActivityID  string
	UserID      string
	CompletedAt time.Time
}

func (c Completion) Validate() error {
	if c.ActivityID == "" {
		return fmt.Errorf("completion activity id is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("completion user id is required")
	}

	return nil
}

// Review is post-activity feedback from a participant.
type Review struct {
	ID           string
	ActivityID   string
	ReviewerID   string
	ReviewerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

func (r Review) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("review id is required")
	}
	if r.ActivityID == "" {
		return fmt.Errorf("review activity id is required")
	}
	if r.ReviewerID == "" {
		return fmt.Errorf("review reviewer id is required")
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("review rating must be between %d and %d", MinRating, MaxRating)
	}

	return nil
}
