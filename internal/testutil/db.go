package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codr1/leaguedesk/internal/db"
	"github.com/codr1/leaguedesk/internal/models"
	"github.com/codr1/leaguedesk/internal/store"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// NewTestStore returns a store over a fresh test database.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(NewTestDB(t))
}

var seedCounter atomic.Int64

// SeedUser inserts a user with a unique email. The password hash is a
// placeholder and cannot be used to log in.
func SeedUser(t *testing.T, repos store.Repositories, role models.Role) models.User {
	t.Helper()

	n := seedCounter.Add(1)
	user, err := repos.Users().Create(context.Background(), models.User{
		FirstName:    "Seed",
		LastName:     fmt.Sprintf("User%d", n),
		Email:        fmt.Sprintf("seed%d@example.com", n),
		PasswordHash: "not-a-bcrypt-hash",
		Role:         role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func SeedLeague(t *testing.T, repos store.Repositories, name string) models.League {
	t.Helper()

	league, err := repos.Leagues().Create(context.Background(), models.League{Name: name})
	if err != nil {
		t.Fatalf("seed league: %v", err)
	}
	return league
}

func SeedTeam(t *testing.T, repos store.Repositories, leagueID int64, name string) models.Team {
	t.Helper()

	team, err := repos.Teams().Create(context.Background(), models.Team{LeagueID: leagueID, Name: name})
	if err != nil {
		t.Fatalf("seed team: %v", err)
	}
	return team
}

func SeedVenue(t *testing.T, repos store.Repositories, name string) models.Venue {
	t.Helper()

	venue, err := repos.Venues().Create(context.Background(), models.Venue{Name: name})
	if err != nil {
		t.Fatalf("seed venue: %v", err)
	}
	return venue
}

// SeedFixture inserts a fixture between two teams of the same league.
func SeedFixture(t *testing.T, repos store.Repositories, home, away models.Team, venueID int64, when time.Time, status models.FixtureStatus) models.Fixture {
	t.Helper()

	fixture, err := repos.Fixtures().Create(context.Background(), models.Fixture{
		LeagueID:   home.LeagueID,
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		VenueID:    venueID,
		MatchDate:  when,
		Status:     status,
	})
	if err != nil {
		t.Fatalf("seed fixture: %v", err)
	}
	return fixture
}
