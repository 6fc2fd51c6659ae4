package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/codr1/leaguedesk/internal/db"
	"github.com/codr1/leaguedesk/internal/models"
)

const fixtureColumns = `f.id, f.league_id, f.home_team_id, f.away_team_id, f.venue_id, f.referee_id, f.match_date, f.status, f.created_at`

// fixtureDetailSelect reads a fixture with its league, both teams, venue,
// referee and result. Queries using it must alias a results table as r.
const fixtureDetailSelect = `SELECT ` + fixtureColumns + `,
		l.id, l.name, l.season, l.start_date, l.end_date, l.created_at,
		ht.id, ht.league_id, ht.name, ht.coach_id, ht.created_at,
		aw.id, aw.league_id, aw.name, aw.coach_id, aw.created_at,
		v.id, v.name, v.location, v.created_at,
		u.id, u.first_name, u.last_name, u.email, u.role,
		r.id, r.fixture_id, r.home_score, r.away_score, r.report, r.created_at`

const fixtureDetailJoins = `
		JOIN leagues l ON l.id = f.league_id
		JOIN teams ht ON ht.id = f.home_team_id
		JOIN teams aw ON aw.id = f.away_team_id
		JOIN venues v ON v.id = f.venue_id
		LEFT JOIN users u ON u.id = f.referee_id`

type fixtureRepo struct {
	conn db.DBTX
}

// fixtureFields returns scan destinations for fixtureColumns and a finish
// function that moves the nullable values into f.
func fixtureFields(f *models.Fixture) ([]any, func()) {
	var (
		referee sql.NullInt64
		status  string
	)
	dest := []any{&f.ID, &f.LeagueID, &f.HomeTeamID, &f.AwayTeamID, &f.VenueID, &referee, &f.MatchDate, &status, &f.CreatedAt}
	return dest, func() {
		f.RefereeID = fromNullInt64(referee)
		f.Status = models.FixtureStatus(status)
		f.MatchDate = f.MatchDate.UTC()
	}
}

func scanFixture(row rowScanner) (models.Fixture, error) {
	var f models.Fixture
	dest, finish := fixtureFields(&f)
	if err := row.Scan(dest...); err != nil {
		return models.Fixture{}, err
	}
	finish()
	return f, nil
}

type nullableResult struct {
	id, fixtureID, home, away sql.NullInt64
	report                    sql.NullString
	createdAt                 sql.NullTime
}

func (n *nullableResult) dest() []any {
	return []any{&n.id, &n.fixtureID, &n.home, &n.away, &n.report, &n.createdAt}
}

func (n *nullableResult) result() *models.Result {
	if !n.id.Valid {
		return nil
	}
	return &models.Result{
		ID:        n.id.Int64,
		FixtureID: n.fixtureID.Int64,
		HomeScore: int(n.home.Int64),
		AwayScore: int(n.away.Int64),
		Report:    fromNullString(n.report),
		CreatedAt: n.createdAt.Time,
	}
}

// scanFixtureDetail reads a row produced by fixtureDetailSelect. The result
// columns may be NULL when the fixture has no result.
func scanFixtureDetail(row rowScanner) (models.FixtureDetail, *models.Result, error) {
	var (
		d                      models.FixtureDetail
		season                 sql.NullString
		leagueStart, leagueEnd sql.NullTime
		homeCoach, awayCoach   sql.NullInt64
		location               sql.NullString
		refID                  sql.NullInt64
		refFirst, refLast      sql.NullString
		refEmail, refRole      sql.NullString
		res                    nullableResult
	)

	dest, finish := fixtureFields(&d.Fixture)
	dest = append(dest,
		&d.League.ID, &d.League.Name, &season, &leagueStart, &leagueEnd, &d.League.CreatedAt,
		&d.HomeTeam.ID, &d.HomeTeam.LeagueID, &d.HomeTeam.Name, &homeCoach, &d.HomeTeam.CreatedAt,
		&d.AwayTeam.ID, &d.AwayTeam.LeagueID, &d.AwayTeam.Name, &awayCoach, &d.AwayTeam.CreatedAt,
		&d.Venue.ID, &d.Venue.Name, &location, &d.Venue.CreatedAt,
		&refID, &refFirst, &refLast, &refEmail, &refRole,
	)
	dest = append(dest, res.dest()...)

	if err := row.Scan(dest...); err != nil {
		return models.FixtureDetail{}, nil, err
	}
	finish()

	d.League.Season = fromNullString(season)
	d.League.StartDate = fromNullTime(leagueStart)
	d.League.EndDate = fromNullTime(leagueEnd)
	d.HomeTeam.CoachID = fromNullInt64(homeCoach)
	d.AwayTeam.CoachID = fromNullInt64(awayCoach)
	d.Venue.Location = fromNullString(location)
	if refID.Valid {
		d.Referee = &models.PublicUser{
			ID:        refID.Int64,
			FirstName: refFirst.String,
			LastName:  refLast.String,
			Email:     refEmail.String,
			Role:      models.Role(refRole.String),
		}
	}
	return d, res.result(), nil
}

// fixtureWhere renders the filter as a WHERE clause over the f alias.
func fixtureWhere(filter FixtureFilter) (string, []any) {
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
	if filter.VenueID != nil {
		clauses = append(clauses, "f.venue_id = ?")
		args = append(args, *filter.VenueID)
	}
	if filter.Status != nil {
		clauses = append(clauses, "f.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.From != nil {
		clauses = append(clauses, "f.match_date >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		clauses = append(clauses, "f.match_date <= ?")
		args = append(args, filter.To.UTC())
	}
	if filter.Before != nil {
		clauses = append(clauses, "f.match_date < ?")
		args = append(args, filter.Before.UTC())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *fixtureRepo) Create(ctx context.Context, fixture models.Fixture) (models.Fixture, error) {
	const query = `
		INSERT INTO fixtures (league_id, home_team_id, away_team_id, venue_id, referee_id, match_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := r.conn.ExecContext(ctx, query,
		fixture.LeagueID, fixture.HomeTeamID, fixture.AwayTeamID, fixture.VenueID,
		toNullInt64(fixture.RefereeID), fixture.MatchDate.UTC(), string(fixture.Status))
	if err != nil {
		return models.Fixture{}, writeError(err, "fixture")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Fixture{}, fmt.Errorf("create fixture: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *fixtureRepo) Get(ctx context.Context, id int64) (models.Fixture, error) {
	const query = `SELECT ` + fixtureColumns + ` FROM fixtures f WHERE f.id = ?`

	f, err := scanFixture(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Fixture{}, readError(err, "fixture")
	}
	return f, nil
}

func (r *fixtureRepo) GetDetail(ctx context.Context, id int64) (models.FixtureDetail, error) {
	const query = fixtureDetailSelect + ` FROM fixtures f` + fixtureDetailJoins + `
		LEFT JOIN results r ON r.fixture_id = f.id
		WHERE f.id = ?`

	d, result, err := scanFixtureDetail(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.FixtureDetail{}, readError(err, "fixture")
	}
	d.Result = result
	return d, nil
}

func (r *fixtureRepo) List(ctx context.Context, filter FixtureFilter) ([]models.Fixture, error) {
	where, args := fixtureWhere(filter)
	query := `SELECT ` + fixtureColumns + ` FROM fixtures f` + where + ` ORDER BY f.match_date, f.id`

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	defer rows.Close()

	fixtures := []models.Fixture{}
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		fixtures = append(fixtures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	return fixtures, nil
}

func (r *fixtureRepo) ListDetails(ctx context.Context, filter FixtureFilter) ([]models.FixtureDetail, error) {
	where, args := fixtureWhere(filter)
	query := fixtureDetailSelect + ` FROM fixtures f` + fixtureDetailJoins + `
		LEFT JOIN results r ON r.fixture_id = f.id` + where + `
		ORDER BY f.match_date, f.id`

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	defer rows.Close()

	details := []models.FixtureDetail{}
	for rows.Next() {
		d, result, err := scanFixtureDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		d.Result = result
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	return details, nil
}

func (r *fixtureRepo) Update(ctx context.Context, fixture models.Fixture) (models.Fixture, error) {
	const query = `
		UPDATE fixtures
		SET league_id = ?, home_team_id = ?, away_team_id = ?, venue_id = ?, referee_id = ?, match_date = ?, status = ?
		WHERE id = ?`

	res, err := r.conn.ExecContext(ctx, query,
		fixture.LeagueID, fixture.HomeTeamID, fixture.AwayTeamID, fixture.VenueID,
		toNullInt64(fixture.RefereeID), fixture.MatchDate.UTC(), string(fixture.Status), fixture.ID)
	if err != nil {
		return models.Fixture{}, writeError(err, "fixture")
	}
	if err := expectAffected(res, "fixture"); err != nil {
		return models.Fixture{}, err
	}
	return r.Get(ctx, fixture.ID)
}

func (r *fixtureRepo) UpdateStatus(ctx context.Context, id int64, status models.FixtureStatus) (models.Fixture, error) {
	res, err := r.conn.ExecContext(ctx, `UPDATE fixtures SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return models.Fixture{}, writeError(err, "fixture")
	}
	if err := expectAffected(res, "fixture"); err != nil {
		return models.Fixture{}, err
	}
	return r.Get(ctx, id)
}

// Delete fails with ErrConflict while a result references the fixture.
func (r *fixtureRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM fixtures WHERE id = ?`, id)
	if err != nil {
		return deleteError(err, "fixture")
	}
	return expectAffected(res, "fixture")
}
