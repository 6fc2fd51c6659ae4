// Package store holds the repositories over the relational database. SQLite
// errors are translated into the models error taxonomy here and never leak to
// callers.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/codr1/leaguedesk/internal/db"
	"github.com/codr1/leaguedesk/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	Get(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user models.User) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

type LeagueRepository interface {
	Create(ctx context.Context, league models.League) (models.League, error)
	Get(ctx context.Context, id int64) (models.League, error)
	List(ctx context.Context) ([]models.League, error)
	Update(ctx context.Context, league models.League) (models.League, error)
	Delete(ctx context.Context, id int64) error
}

type TeamRepository interface {
	Create(ctx context.Context, team models.Team) (models.Team, error)
	Get(ctx context.Context, id int64) (models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]models.Team, error)
	Update(ctx context.Context, team models.Team) (models.Team, error)
	Delete(ctx context.Context, id int64) error
}

type VenueRepository interface {
	Create(ctx context.Context, venue models.Venue) (models.Venue, error)
	Get(ctx context.Context, id int64) (models.Venue, error)
	List(ctx context.Context) ([]models.Venue, error)
	Update(ctx context.Context, venue models.Venue) (models.Venue, error)
	Delete(ctx context.Context, id int64) error
}

// FixtureFilter narrows fixture listings. Nil fields do not filter.
type FixtureFilter struct {
	LeagueID *int64
	TeamID   *int64
	VenueID  *int64
	Status   *models.FixtureStatus
	From     *time.Time
	To       *time.Time
	Before   *time.Time
}

type FixtureRepository interface {
	Create(ctx context.Context, fixture models.Fixture) (models.Fixture, error)
	Get(ctx context.Context, id int64) (models.Fixture, error)
	GetDetail(ctx context.Context, id int64) (models.FixtureDetail, error)
	List(ctx context.Context, filter FixtureFilter) ([]models.Fixture, error)
	ListDetails(ctx context.Context, filter FixtureFilter) ([]models.FixtureDetail, error)
	Update(ctx context.Context, fixture models.Fixture) (models.Fixture, error)
	UpdateStatus(ctx context.Context, id int64, status models.FixtureStatus) (models.Fixture, error)
	Delete(ctx context.Context, id int64) error
}

// ResultFilter narrows result listings. Nil fields do not filter.
type ResultFilter struct {
	LeagueID *int64
	TeamID   *int64
}

type ResultRepository interface {
	Create(ctx context.Context, result models.Result) (models.Result, error)
	Get(ctx context.Context, id int64) (models.Result, error)
	GetByFixture(ctx context.Context, fixtureID int64) (models.Result, error)
	GetDetail(ctx context.Context, id int64) (models.ResultDetail, error)
	ListDetails(ctx context.Context, filter ResultFilter) ([]models.ResultDetail, error)
	Update(ctx context.Context, result models.Result) (models.Result, error)
	Delete(ctx context.Context, id int64) error
}

// Repositories gives access to every entity repository bound to one
// connection or transaction.
type Repositories interface {
	Users() UserRepository
	Leagues() LeagueRepository
	Teams() TeamRepository
	Venues() VenueRepository
	Fixtures() FixtureRepository
	Results() ResultRepository
}

// Transactor is the unit of work: fn receives repositories bound to a single
// transaction that commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	Repositories
	RunInTx(ctx context.Context, fn func(Repositories) error) error
}

type Store struct {
	db *db.DB
}

var _ Transactor = (*Store)(nil)

func New(database *db.DB) *Store {
	return &Store{db: database}
}

func (s *Store) Users() UserRepository       { return &userRepo{conn: s.db.Conn} }
func (s *Store) Leagues() LeagueRepository   { return &leagueRepo{conn: s.db.Conn} }
func (s *Store) Teams() TeamRepository       { return &teamRepo{conn: s.db.Conn} }
func (s *Store) Venues() VenueRepository     { return &venueRepo{conn: s.db.Conn} }
func (s *Store) Fixtures() FixtureRepository { return &fixtureRepo{conn: s.db.Conn} }
func (s *Store) Results() ResultRepository   { return &resultRepo{conn: s.db.Conn} }

func (s *Store) RunInTx(ctx context.Context, fn func(Repositories) error) error {
	return s.db.RunInTx(ctx, func(txdb *db.DB) error {
		return fn(&Store{db: txdb})
	})
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

func isCheckViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck
}

// writeError translates errors from inserts and updates. A foreign key failure
// there means a referenced row does not exist.
func writeError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return models.NotFoundf("%s not found", capitalize(entity))
	case isUniqueViolation(err):
		return models.Conflictf("%s already exists", capitalize(entity))
	case isForeignKeyViolation(err):
		return models.NotFoundf("%s references a record that does not exist", capitalize(entity))
	case isCheckViolation(err):
		return models.InvalidInputf("%s has an invalid value", capitalize(entity))
	default:
		return fmt.Errorf("%s: %w", entity, err)
	}
}

// deleteError translates errors from deletes. A foreign key failure there
// means other rows still reference the target.
func deleteError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return models.Conflictf("%s is still referenced by other records", capitalize(entity))
	default:
		return fmt.Errorf("delete %s: %w", entity, err)
	}
}

// readError translates errors from single-row reads.
func readError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.NotFoundf("%s not found", capitalize(entity))
	}
	return fmt.Errorf("get %s: %w", entity, err)
}

// expectAffected turns a write that matched no row into ErrNotFound.
func expectAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if n == 0 {
		return models.NotFoundf("%s not found", capitalize(entity))
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
