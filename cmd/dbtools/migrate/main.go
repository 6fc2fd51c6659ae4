// cmd/dbtools/migrate/main.go
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/db"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "Path to SQLite database")
		command = flag.String("command", "", "Command to run (up, down, steps, version, force)")
		steps   = flag.Int("n", 1, "Number of migrations for steps (negative rolls back)")
		version = flag.Int("version", -1, "Version for force")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *dbPath == "" || *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	sqlDB, err := sql.Open("sqlite3", *dbPath+"?_fk=1&_busy_timeout=5000")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	m, err := db.NewMigrate(sqlDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration init failed")
	}
	defer m.Close()

	if err := run(m, *command, *steps, *version); err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("Migration failed")
	}
}

func run(m *migrate.Migrate, command string, steps, version int) error {
	switch command {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		return ignoreNoChange(m.Steps(steps))
	case "force":
		if version < 0 {
			return errors.New("force requires -version")
		}
		return m.Force(version)
	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("Version: none")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Version: %d, Dirty: %v\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
