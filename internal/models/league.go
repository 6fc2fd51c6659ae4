package models

import "time"

type League struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Season    *string    `json:"season"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	CreatedAt time.Time  `json:"created_at"`
}

// LeagueDetail is a league together with the teams and fixtures it owns.
type LeagueDetail struct {
	League
	Teams    []Team    `json:"teams"`
	Fixtures []Fixture `json:"fixtures"`
}

type Team struct {
	ID        int64     `json:"id"`
	LeagueID  int64     `json:"league_id"`
	Name      string    `json:"name"`
	CoachID   *int64    `json:"coach_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Venue struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  *string   `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// VenueDetail is a venue with the fixtures played there.
type VenueDetail struct {
	Venue
	Fixtures []Fixture `json:"fixtures"`
}
