// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codr1/leaguedesk/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	*sql.DB
	// Conn is the handle queries should run against: the pool, or the
	// transaction when the DB was produced by WithTx.
	Conn DBTX
	tx   *sql.Tx
}

// New opens a SQLite database for the given data source name, ensures foreign
// keys and a busy timeout are set in the DSN, applies embedded migrations, and
// returns a DB bound to the connection.
func New(dataSourceName string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", ensureSQLiteDSN(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// SQLite allows a single writer; one connection keeps writers queued in
	// database/sql instead of failing with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &DB{DB: sqlDB, Conn: sqlDB}, nil
}

// NewFromConfig creates the database described by cfg, creating the parent
// directory of the SQLite file when needed.
func NewFromConfig(cfg *config.Config) (*DB, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Filename != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Database.Filename), 0755); err != nil {
				return nil, fmt.Errorf("error creating database directory: %w", err)
			}
		}
		return New(cfg.Database.Filename)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// ensureSQLiteDSN adds `_fk=1` and `_busy_timeout=5000` to the DSN unless the
// caller already set them.
func ensureSQLiteDSN(dataSourceName string) string {
	params := []string{}
	if !strings.Contains(dataSourceName, "_fk=") && !strings.Contains(dataSourceName, "_foreign_keys=") {
		params = append(params, "_fk=1")
	}
	if !strings.Contains(dataSourceName, "_busy_timeout=") && !strings.Contains(dataSourceName, "_timeout=") {
		params = append(params, "_busy_timeout=5000")
	}
	if len(params) == 0 {
		return dataSourceName
	}

	sep := "?"
	if strings.Contains(dataSourceName, "?") {
		sep = "&"
	}
	return dataSourceName + sep + strings.Join(params, "&")
}

// NewMigrate builds a migrate instance over the embedded migrations. The
// caller owns the returned instance.
func NewMigrate(sqlDB *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create migrate driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not create source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// runMigrations applies every pending migration. ErrNoChange is not an error.
func runMigrations(sqlDB *sql.DB) error {
	m, err := NewMigrate(sqlDB)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// WithTx returns a DB whose Conn is bound to tx.
func (db *DB) WithTx(tx *sql.Tx) *DB {
	return &DB{
		DB:   db.DB,
		Conn: tx,
		tx:   tx,
	}
}

// InTx reports whether the DB is bound to a transaction.
func (db *DB) InTx() bool {
	return db.tx != nil
}

// BeginTx starts a transaction
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	return tx, nil
}

// RunInTx runs fn in a transaction, committing when fn returns nil and rolling
// back otherwise. Calling it on a DB that is already inside a transaction runs
// fn in that transaction.
func (db *DB) RunInTx(ctx context.Context, fn func(*DB) error) error {
	if db.InTx() {
		return fn(db)
	}

	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	txDB := db.WithTx(tx)
	if err := fn(txDB); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %w", err)
	}

	return nil
}
