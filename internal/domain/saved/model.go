package saved

import (
	"fmt"
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/activity"
)

// SavedActivity is a per-user copy of an activity. The copy is deliberately
// denormalized: edits to the live activity do not propagate here.
type SavedActivity struct {
	UserID   string
	Activity activity.Activity
	SavedAt  time.Time
}

func (s SavedActivity) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("saved activity user id is required")
	}
	if s.Activity.ID == "" {
		return fmt.Errorf("saved activity id is required")
	}

	return nil
}
