package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestEnsureSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"data/app.db", "data/app.db?_fk=1&_busy_timeout=5000"},
		{"data/app.db?cache=shared", "data/app.db?cache=shared&_fk=1&_busy_timeout=5000"},
		{"data/app.db?_foreign_keys=1", "data/app.db?_foreign_keys=1&_busy_timeout=5000"},
		{"data/app.db?_fk=1&_timeout=100", "data/app.db?_fk=1&_timeout=100"},
	}
	for _, tt := range tests {
		if got := ensureSQLiteDSN(tt.in); got != tt.want {
			t.Errorf("ensureSQLiteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewAppliesMigrations(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	for _, table := range []string{"users", "leagues", "teams", "venues", "fixtures", "results"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	var fk int
	if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign keys disabled")
	}
}

func TestNewInMemory(t *testing.T) {
	database, err := New(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	if _, err := database.Exec(`INSERT INTO venues (name) VALUES ('Park')`); err != nil {
		t.Fatalf("insert after migrations: %v", err)
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()
	ctx := context.Background()

	boom := errors.New("boom")
	err = database.RunInTx(ctx, func(tx *DB) error {
		if !tx.InTx() {
			t.Fatal("expected transaction-bound DB")
		}
		if _, err := tx.Conn.ExecContext(ctx, `INSERT INTO venues (name) VALUES ('Rolled back')`); err != nil {
			return err
		}
		return tx.RunInTx(ctx, func(nested *DB) error {
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM venues`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("venues = %d, want 0 after rollback", count)
	}

	err = database.RunInTx(ctx, func(tx *DB) error {
		_, err := tx.Conn.ExecContext(ctx, `INSERT INTO venues (name) VALUES ('Kept')`)
		return err
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := database.QueryRow(`SELECT COUNT(*) FROM venues`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("venues = %d, want 1", count)
	}
}
