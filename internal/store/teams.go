package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/codr1/leaguedesk/internal/db"
	"github.com/codr1/leaguedesk/internal/models"
)

const teamColumns = `id, league_id, name, coach_id, created_at`

type teamRepo struct {
	conn db.DBTX
}

func scanTeam(row rowScanner) (models.Team, error) {
	var (
		t     models.Team
		coach sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.LeagueID, &t.Name, &coach, &t.CreatedAt); err != nil {
		return models.Team{}, err
	}
	t.CoachID = fromNullInt64(coach)
	return t, nil
}

func (r *teamRepo) Create(ctx context.Context, team models.Team) (models.Team, error) {
	const query = `INSERT INTO teams (league_id, name, coach_id) VALUES (?, ?, ?)`

	res, err := r.conn.ExecContext(ctx, query, team.LeagueID, team.Name, toNullInt64(team.CoachID))
	if err != nil {
		return models.Team{}, writeError(err, "team")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Team{}, fmt.Errorf("create team: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *teamRepo) Get(ctx context.Context, id int64) (models.Team, error) {
	const query = `SELECT ` + teamColumns + ` FROM teams WHERE id = ?`

	t, err := scanTeam(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Team{}, readError(err, "team")
	}
	return t, nil
}

func (r *teamRepo) List(ctx context.Context) ([]models.Team, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name, id`)
}

func (r *teamRepo) ListByLeague(ctx context.Context, leagueID int64) ([]models.Team, error) {
	return r.list(ctx, `SELECT `+teamColumns+` FROM teams WHERE league_id = ? ORDER BY name, id`, leagueID)
}

func (r *teamRepo) list(ctx context.Context, query string, args ...any) ([]models.Team, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (r *teamRepo) Update(ctx context.Context, team models.Team) (models.Team, error) {
	const query = `UPDATE teams SET league_id = ?, name = ?, coach_id = ? WHERE id = ?`

	res, err := r.conn.ExecContext(ctx, query, team.LeagueID, team.Name, toNullInt64(team.CoachID), team.ID)
	if err != nil {
		return models.Team{}, writeError(err, "team")
	}
	if err := expectAffected(res, "team"); err != nil {
		return models.Team{}, err
	}
	return r.Get(ctx, team.ID)
}

func (r *teamRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		return deleteError(err, "team")
	}
	return expectAffected(res, "team")
}
