package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/codr1/leaguedesk/internal/db"
	"github.com/codr1/leaguedesk/internal/models"
)

const userColumns = `id, first_name, last_name, email, password_hash, phone, role, created_at`

type userRepo struct {
	conn db.DBTX
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u     models.User
		phone sql.NullString
		role  string
	)
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &phone, &role, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	u.Phone = fromNullString(phone)
	u.Role = models.Role(role)
	return u, nil
}

func (r *userRepo) Create(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (first_name, last_name, email, password_hash, phone, role)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.conn.ExecContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PasswordHash, toNullString(user.Phone), string(user.Role))
	if err != nil {
		return models.User{}, writeError(err, "user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *userRepo) Get(ctx context.Context, id int64) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	u, err := scanUser(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.User{}, readError(err, "user")
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	u, err := scanUser(r.conn.QueryRowContext(ctx, query, email))
	if err != nil {
		return models.User{}, readError(err, "user")
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *userRepo) Update(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		UPDATE users
		SET first_name = ?, last_name = ?, email = ?, password_hash = ?, phone = ?, role = ?
		WHERE id = ?`

	res, err := r.conn.ExecContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PasswordHash, toNullString(user.Phone), string(user.Role), user.ID)
	if err != nil {
		return models.User{}, writeError(err, "user")
	}
	if err := expectAffected(res, "user"); err != nil {
		return models.User{}, err
	}
	return r.Get(ctx, user.ID)
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return deleteError(err, "user")
	}
	return expectAffected(res, "user")
}
