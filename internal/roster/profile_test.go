package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"care-feedback-go/internal/types"
)

func TestLatestChecklist(t *testing.T) {
	_, mock, repo := setupMockDB(t)
	at := time.Date(2025, 1, 21, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"answers", "submitted_at"}).
		AddRow([]byte(`{"q1":"know","q2":"","q3":["x"]}`), at)
	mock.ExpectQuery(`FROM checklist_submissions\s+WHERE profile_id = \$1\s+ORDER BY submitted_at DESC`).
		WithArgs("p-1").
		WillReturnRows(rows)

	got, err := repo.LatestChecklist(context.Background(), "p-1", time.Time{})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, map[string]string{"q1": "know", "q2": ""}, got.Answers)
	assert.True(t, at.Equal(got.SubmittedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestChecklistOnDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	prev := types.Location
	types.Location = loc
	t.Cleanup(func() { types.Location = prev })

	_, mock, repo := setupMockDB(t)
	start := time.Date(2025, 1, 21, 0, 0, 0, 0, loc)
	mock.ExpectQuery(`submitted_at >= \$2 AND submitted_at < \$3`).
		WithArgs("p-1", start, start.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"answers", "submitted_at"}))

	got, err := repo.LatestChecklist(context.Background(), "p-1", time.Date(2025, 1, 21, 15, 30, 0, 0, loc))
	require.NoError(t, err)
	assert.Nil(t, got, "no submission that day")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestChecklistMalformedAnswers(t *testing.T) {
	_, mock, repo := setupMockDB(t)
	mock.ExpectQuery(`FROM checklist_submissions`).
		WillReturnRows(sqlmock.NewRows([]string{"answers", "submitted_at"}).AddRow([]byte(`[1,2]`), time.Now()))

	got, err := repo.LatestChecklist(context.Background(), "p-1", time.Time{})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Answers)
}

func TestLatestChecklistQueryError(t *testing.T) {
	_, mock, repo := setupMockDB(t)
	mock.ExpectQuery(`FROM checklist_submissions`).WillReturnError(errors.New("connection refused"))

	_, err := repo.LatestChecklist(context.Background(), "p-1", time.Time{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGoalHistory(t *testing.T) {
	_, mock, repo := setupMockDB(t)
	newer := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "goal_text", "status", "comment", "created_at"}).
		AddRow("2", "笑顔で声かけ", "achieved", "毎朝できた", newer).
		AddRow("1", "記録を毎日書く", "changed", nil, older)
	mock.ExpectQuery(`FROM goal_history\s+WHERE profile_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs("p-1").
		WillReturnRows(rows)

	got, err := repo.GoalHistory(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, []types.GoalEntry{
		{ID: "2", ProfileID: "p-1", GoalText: "笑顔で声かけ", Status: "achieved", Comment: "毎朝できた", CreatedAt: newer},
		{ID: "1", ProfileID: "p-1", GoalText: "記録を毎日書く", Status: "changed", CreatedAt: older},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalHistoryEmpty(t *testing.T) {
	_, mock, repo := setupMockDB(t)
	mock.ExpectQuery(`FROM goal_history`).WithArgs("p-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "goal_text", "status", "comment", "created_at"}))

	got, err := repo.GoalHistory(context.Background(), "p-2")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGoalHistoryQueryError(t *testing.T) {
	_, mock, repo := setupMockDB(t)
	mock.ExpectQuery(`FROM goal_history`).WillReturnError(errors.New("timeout"))

	_, err := repo.GoalHistory(context.Background(), "p-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
