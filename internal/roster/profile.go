package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"care-feedback-go/internal/types"
)

const (
	latestChecklistQuery = `SELECT answers, submitted_at FROM checklist_submissions
		WHERE profile_id = $1
		ORDER BY submitted_at DESC
		LIMIT 1`
	checklistOnDayQuery = `SELECT answers, submitted_at FROM checklist_submissions
		WHERE profile_id = $1 AND submitted_at >= $2 AND submitted_at < $3
		ORDER BY submitted_at DESC
		LIMIT 1`
	goalHistoryQuery = `SELECT id, goal_text, status, comment, created_at FROM goal_history
		WHERE profile_id = $1
		ORDER BY created_at DESC`
)

func (r *PostgresRepository) LatestChecklist(ctx context.Context, profileID string, day time.Time) (*types.ChecklistSubmission, error) {
	var row *sql.Row
	if day.IsZero() {
		row = r.db.QueryRowContext(ctx, latestChecklistQuery, profileID)
	} else {
		day = day.In(types.Location)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, types.Location)
		row = r.db.QueryRowContext(ctx, checklistOnDayQuery, profileID, start, start.AddDate(0, 0, 1))
	}

	var (
		raw []byte
		sub types.ChecklistSubmission
	)
	err := row.Scan(&raw, &sub.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query checklist: %v", ErrUnavailable, err)
	}
	sub.Answers = r.decodeAnswers(profileID, raw)
	return &sub, nil
}

// decodeAnswers keeps the string-valued answers of a submission.
func (r *PostgresRepository) decodeAnswers(profileID string, raw []byte) map[string]string {
	out := map[string]string{}
	if len(raw) == 0 {
		return out
	}
	var answers map[string]any
	if err := json.Unmarshal(raw, &answers); err != nil {
		r.log.WithField("profile_id", profileID).WithField("error", err.Error()).Warn("checklist answers are not an object")
		return out
	}
	for id, v := range answers {
		if s, ok := v.(string); ok {
			out[id] = s
		}
	}
	return out
}

func (r *PostgresRepository) GoalHistory(ctx context.Context, profileID string) ([]types.GoalEntry, error) {
	rows, err := r.db.QueryContext(ctx, goalHistoryQuery, profileID)
	if err != nil {
		return nil, fmt.Errorf("%w: query goal history: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := []types.GoalEntry{}
	for rows.Next() {
		var (
			g               types.GoalEntry
			status, comment sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.GoalText, &status, &comment, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.ProfileID = profileID
		g.Status = status.String
		g.Comment = comment.String
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read goal history: %v", ErrUnavailable, err)
	}
	return out, nil
}
