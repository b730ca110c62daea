// Package roster reads the resident and staff rosters of a floor from the
// facility's system of record.
package roster

import (
	"context"
	"errors"
	"time"

	"care-feedback-go/internal/types"
)

// ErrUnavailable wraps every failure to reach the roster backend.
var ErrUnavailable = errors.New("roster unavailable")

type Source interface {
	ListResidents(ctx context.Context, floor string) ([]types.Resident, error)
	ListStaff(ctx context.Context, floor string) ([]types.Staff, error)
}

// ProfileSource reads a staff member's self-checklist submissions and goal
// history.
type ProfileSource interface {
	// LatestChecklist returns the newest submission, restricted to the
	// calendar day of day unless day is zero. nil means none.
	LatestChecklist(ctx context.Context, profileID string, day time.Time) (*types.ChecklistSubmission, error)
	GoalHistory(ctx context.Context, profileID string) ([]types.GoalEntry, error)
}
