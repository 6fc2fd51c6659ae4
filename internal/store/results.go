package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/codr1/leaguedesk/internal/db"
	"github.com/codr1/leaguedesk/internal/models"
)

const resultColumns = `r.id, r.fixture_id, r.home_score, r.away_score, r.report, r.created_at`

type resultRepo struct {
	conn db.DBTX
}

func scanResult(row rowScanner) (models.Result, error) {
	var (
		res    models.Result
		report sql.NullString
	)
	if err := row.Scan(&res.ID, &res.FixtureID, &res.HomeScore, &res.AwayScore, &report, &res.CreatedAt); err != nil {
		return models.Result{}, err
	}
	res.Report = fromNullString(report)
	return res, nil
}

func scanResultDetail(row rowScanner) (models.ResultDetail, error) {
	fixture, result, err := scanFixtureDetail(row)
	if err != nil {
		return models.ResultDetail{}, err
	}
	if result == nil {
		return models.ResultDetail{}, sql.ErrNoRows
	}
	return models.ResultDetail{Result: *result, Fixture: fixture}, nil
}

// Create inserts a result. A second result for the same fixture violates the
// unique fixture_id constraint and surfaces as ErrConflict.
func (r *resultRepo) Create(ctx context.Context, result models.Result) (models.Result, error) {
	const query = `INSERT INTO results (fixture_id, home_score, away_score, report) VALUES (?, ?, ?, ?)`

	res, err := r.conn.ExecContext(ctx, query,
		result.FixtureID, result.HomeScore, result.AwayScore, toNullString(result.Report))
	if err != nil {
		return models.Result{}, writeError(err, "result")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Result{}, fmt.Errorf("create result: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *resultRepo) Get(ctx context.Context, id int64) (models.Result, error) {
	const query = `SELECT ` + resultColumns + ` FROM results r WHERE r.id = ?`

	res, err := scanResult(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Result{}, readError(err, "result")
	}
	return res, nil
}

func (r *resultRepo) GetByFixture(ctx context.Context, fixtureID int64) (models.Result, error) {
	const query = `SELECT ` + resultColumns + ` FROM results r WHERE r.fixture_id = ?`

	res, err := scanResult(r.conn.QueryRowContext(ctx, query, fixtureID))
	if err != nil {
		return models.Result{}, readError(err, "result")
	}
	return res, nil
}

func (r *resultRepo) GetDetail(ctx context.Context, id int64) (models.ResultDetail, error) {
	const query = fixtureDetailSelect + `
		FROM results r
		JOIN fixtures f ON f.id = r.fixture_id` + fixtureDetailJoins + `
		WHERE r.id = ?`

	d, err := scanResultDetail(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.ResultDetail{}, readError(err, "result")
	}
	return d, nil
}

// ListDetails returns results with their fixtures, most recent match first.
func (r *resultRepo) ListDetails(ctx context.Context, filter ResultFilter) ([]models.ResultDetail, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.LeagueID != nil {
		clauses = append(clauses, "f.league_id = ?")
		args = append(args, *filter.LeagueID)
	}
	if filter.TeamID != nil {
		clauses = append(clauses, "(f.home_team_id = ? OR f.away_team_id = ?)")
		args = append(args, *filter.TeamID, *filter.TeamID)
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	query := fixtureDetailSelect + `
		FROM results r
		JOIN fixtures f ON f.id = r.fixture_id` + fixtureDetailJoins + where + `
		ORDER BY f.match_date DESC, r.id DESC`

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	details := []models.ResultDetail{}
	for rows.Next() {
		d, err := scanResultDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return details, nil
}

func (r *resultRepo) Update(ctx context.Context, result models.Result) (models.Result, error) {
	const query = `UPDATE results SET home_score = ?, away_score = ?, report = ? WHERE id = ?`

	res, err := r.conn.ExecContext(ctx, query,
		result.HomeScore, result.AwayScore, toNullString(result.Report), result.ID)
	if err != nil {
		return models.Result{}, writeError(err, "result")
	}
	if err := expectAffected(res, "result"); err != nil {
		return models.Result{}, err
	}
	return r.Get(ctx, result.ID)
}

func (r *resultRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM results WHERE id = ?`, id)
	if err != nil {
		return deleteError(err, "result")
	}
	return expectAffected(res, "result")
}
