package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/codr1/leaguedesk/internal/db"
	"github.com/codr1/leaguedesk/internal/models"
)

const leagueColumns = `id, name, season, start_date, end_date, created_at`

type leagueRepo struct {
	conn db.DBTX
}

func scanLeague(row rowScanner) (models.League, error) {
	var (
		l          models.League
		season     sql.NullString
		start, end sql.NullTime
	)
	if err := row.Scan(&l.ID, &l.Name, &season, &start, &end, &l.CreatedAt); err != nil {
		return models.League{}, err
	}
	l.Season = fromNullString(season)
	l.StartDate = fromNullTime(start)
	l.EndDate = fromNullTime(end)
	return l, nil
}

func (r *leagueRepo) Create(ctx context.Context, league models.League) (models.League, error) {
	const query = `INSERT INTO leagues (name, season, start_date, end_date) VALUES (?, ?, ?, ?)`

	res, err := r.conn.ExecContext(ctx, query,
		league.Name, toNullString(league.Season), toNullTime(league.StartDate), toNullTime(league.EndDate))
	if err != nil {
		return models.League{}, writeError(err, "league")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.League{}, fmt.Errorf("create league: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *leagueRepo) Get(ctx context.Context, id int64) (models.League, error) {
	const query = `SELECT ` + leagueColumns + ` FROM leagues WHERE id = ?`

	l, err := scanLeague(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.League{}, readError(err, "league")
	}
	return l, nil
}

func (r *leagueRepo) List(ctx context.Context) ([]models.League, error) {
	const query = `SELECT ` + leagueColumns + ` FROM leagues ORDER BY name, id`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	defer rows.Close()

	leagues := []models.League{}
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		leagues = append(leagues, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	return leagues, nil
}

func (r *leagueRepo) Update(ctx context.Context, league models.League) (models.League, error) {
	const query = `UPDATE leagues SET name = ?, season = ?, start_date = ?, end_date = ? WHERE id = ?`

	res, err := r.conn.ExecContext(ctx, query,
		league.Name, toNullString(league.Season), toNullTime(league.StartDate), toNullTime(league.EndDate), league.ID)
	if err != nil {
		return models.League{}, writeError(err, "league")
	}
	if err := expectAffected(res, "league"); err != nil {
		return models.League{}, err
	}
	return r.Get(ctx, league.ID)
}

// Delete removes the league. Teams and fixtures cascade; a recorded result on
// any of its fixtures blocks the delete.
func (r *leagueRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM leagues WHERE id = ?`, id)
	if err != nil {
		return deleteError(err, "league")
	}
	return expectAffected(res, "league")
}
