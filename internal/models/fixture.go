package models

import (
	"strings"
	"time"
)

type FixtureStatus string

const (
	FixtureScheduled FixtureStatus = "Scheduled"
	FixtureCompleted FixtureStatus = "Completed"
	FixturePostponed FixtureStatus = "Postponed"
)

// ParseFixtureStatus matches the three status names case-insensitively and
// returns the canonical spelling.
func ParseFixtureStatus(raw string) (FixtureStatus, bool) {
	for _, status := range []FixtureStatus{FixtureScheduled, FixtureCompleted, FixturePostponed} {
		if strings.EqualFold(strings.TrimSpace(raw), string(status)) {
			return status, true
		}
	}
	return "", false
}

type Fixture struct {
	ID         int64         `json:"id"`
	LeagueID   int64         `json:"league_id"`
	HomeTeamID int64         `json:"home_team_id"`
	AwayTeamID int64         `json:"away_team_id"`
	VenueID    int64         `json:"venue_id"`
	RefereeID  *int64        `json:"referee_id"`
	MatchDate  time.Time     `json:"match_date"`
	Status     FixtureStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// FixtureDetail joins a fixture with everything needed to display it.
type FixtureDetail struct {
	Fixture
	League   League      `json:"league"`
	HomeTeam Team        `json:"homeTeam"`
	AwayTeam Team        `json:"awayTeam"`
	Venue    Venue       `json:"venue"`
	Referee  *PublicUser `json:"referee"`
	Result   *Result     `json:"result"`
}

type Result struct {
	ID        int64     `json:"id"`
	FixtureID int64     `json:"fixture_id"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Report    *string   `json:"report"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultDetail is a result with its fixture context. The nested fixture never
// carries the result again.
type ResultDetail struct {
	Result
	Fixture FixtureDetail `json:"fixture"`
}
