package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"care-feedback-go/internal/logger"
	"care-feedback-go/internal/types"
)

const (
	residentsQuery = `SELECT name, floor, careplan_icf FROM care_recipient WHERE floor = $1 ORDER BY name`
	staffQuery     = `SELECT p.name, m.floor
		FROM staff_member m
		JOIN staff_profiles p ON p.id = m.profile_id
		WHERE m.floor = $1
		ORDER BY p.name`
)

// PostgresRepository reads the rosters from the care_recipient and
// staff_member tables.
type PostgresRepository struct {
	db  *sql.DB
	log *logger.Logger
}

func NewPostgresRepository(db *sql.DB, log *logger.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, log: log.Component("roster.postgres")}
}

// OpenPostgres opens a lib/pq connection pool. It does not dial; use PingContext.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

func (r *PostgresRepository) ListResidents(ctx context.Context, floor string) ([]types.Resident, error) {
	rows, err := r.db.QueryContext(ctx, residentsQuery, floor)
	if err != nil {
		return nil, fmt.Errorf("%w: query residents: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := []types.Resident{}
	for rows.Next() {
		var (
			res  types.Resident
			plan []byte
		)
		if err := rows.Scan(&res.Name, &res.Floor, &plan); err != nil {
			return nil, fmt.Errorf("scan resident: %w", err)
		}
		if len(plan) > 0 {
			if err := json.Unmarshal(plan, &res.CareplanICF); err != nil {
				// a non-array careplan_icf counts as no plan
				r.log.WithField("resident", res.Name).WithField("error", err.Error()).Warn("careplan_icf is not a plan list")
				res.CareplanICF = nil
			}
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read residents: %v", ErrUnavailable, err)
	}
	r.log.WithField("floor", floor).WithField("residents", len(out)).Debug("residents loaded")
	return out, nil
}

func (r *PostgresRepository) ListStaff(ctx context.Context, floor string) ([]types.Staff, error) {
	rows, err := r.db.QueryContext(ctx, staffQuery, floor)
	if err != nil {
		return nil, fmt.Errorf("%w: query staff: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := []types.Staff{}
	for rows.Next() {
		var s types.Staff
		if err := rows.Scan(&s.Name, &s.Floor); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read staff: %v", ErrUnavailable, err)
	}
	return out, nil
}
