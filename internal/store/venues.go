package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/codr1/leaguedesk/internal/db"
	"github.com/codr1/leaguedesk/internal/models"
)

const venueColumns = `id, name, location, created_at`

type venueRepo struct {
	conn db.DBTX
}

func scanVenue(row rowScanner) (models.Venue, error) {
	var (
		v        models.Venue
		location sql.NullString
	)
	if err := row.Scan(&v.ID, &v.Name, &location, &v.CreatedAt); err != nil {
		return models.Venue{}, err
	}
	v.Location = fromNullString(location)
	return v, nil
}

func (r *venueRepo) Create(ctx context.Context, venue models.Venue) (models.Venue, error) {
	res, err := r.conn.ExecContext(ctx, `INSERT INTO venues (name, location) VALUES (?, ?)`,
		venue.Name, toNullString(venue.Location))
	if err != nil {
		return models.Venue{}, writeError(err, "venue")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Venue{}, fmt.Errorf("create venue: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *venueRepo) Get(ctx context.Context, id int64) (models.Venue, error) {
	const query = `SELECT ` + venueColumns + ` FROM venues WHERE id = ?`

	v, err := scanVenue(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Venue{}, readError(err, "venue")
	}
	return v, nil
}

func (r *venueRepo) List(ctx context.Context) ([]models.Venue, error) {
	const query = `SELECT ` + venueColumns + ` FROM venues ORDER BY name, id`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	venues := []models.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venues, nil
}

func (r *venueRepo) Update(ctx context.Context, venue models.Venue) (models.Venue, error) {
	res, err := r.conn.ExecContext(ctx, `UPDATE venues SET name = ?, location = ? WHERE id = ?`,
		venue.Name, toNullString(venue.Location), venue.ID)
	if err != nil {
		return models.Venue{}, writeError(err, "venue")
	}
	if err := expectAffected(res, "venue"); err != nil {
		return models.Venue{}, err
	}
	return r.Get(ctx, venue.ID)
}

// Delete fails with ErrConflict while fixtures are still scheduled at the venue.
func (r *venueRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id)
	if err != nil {
		return deleteError(err, "venue")
	}
	return expectAffected(res, "venue")
}
