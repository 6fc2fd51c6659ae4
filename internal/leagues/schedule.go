package leagues

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codr1/leaguedesk/internal/models"
)

// ScheduledMatch is one generated fixture before it is stored.
type ScheduledMatch struct {
	LeagueID  int64
	Round     int
	HomeTeam  models.Team
	AwayTeam  models.Team
	VenueID   int64
	MatchDate time.Time
}

// ScheduleOptions controls round-robin generation. Each round is played on
// its own match day; a match day is a date in the range whose weekday is in
// Weekdays.
type ScheduleOptions struct {
	StartDate    time.Time
	EndDate      time.Time
	Weekdays     []time.Weekday
	KickoffTimes []string // HH:MM, UTC
	VenueIDs     []int64
	// DoubleRoundRobin adds the return fixtures with home and away swapped.
	DoubleRoundRobin bool
}

type matchSlot struct {
	Start   time.Time
	VenueID int64
}

// GenerateRoundRobinSchedule pairs every team with every other team once
// (twice for a double round robin) and assigns each round to a match day.
func GenerateRoundRobinSchedule(leagueID int64, teams []models.Team, opts ScheduleOptions) ([]ScheduledMatch, error) {
	if leagueID <= 0 {
		return nil, errors.New("league ID is required")
	}
	if len(teams) < 2 {
		return nil, errors.New("at least two teams are required")
	}
	if len(opts.VenueIDs) == 0 {
		return nil, errors.New("at least one venue is required")
	}
	startDate := truncateDate(opts.StartDate)
	endDate := truncateDate(opts.EndDate)
	if endDate.Before(startDate) {
		return nil, errors.New("start date must be on or before end date")
	}

	rounds := buildRoundRobinPairs(teams)
	if opts.DoubleRoundRobin {
		first := len(rounds)
		for _, round := range rounds[:first] {
			reversed := make([]roundPair, 0, len(round))
			for _, pair := range round {
				reversed = append(reversed, roundPair{Round: pair.Round + first, HomeTeam: pair.AwayTeam, AwayTeam: pair.HomeTeam})
			}
			rounds = append(rounds, reversed)
		}
	}

	kickoffs, err := parseKickoffTimes(opts.KickoffTimes)
	if err != nil {
		return nil, err
	}
	matchDays := buildMatchDays(startDate, endDate, opts.Weekdays)
	if len(matchDays) < len(rounds) {
		return nil, fmt.Errorf("insufficient match days: need %d rounds but only %d available", len(rounds), len(matchDays))
	}

	schedule := make([]ScheduledMatch, 0, len(rounds)*len(rounds[0]))
	for idx, round := range rounds {
		slots := buildMatchSlots(matchDays[idx], kickoffs, opts.VenueIDs)
		if len(slots) < len(round) {
			return nil, fmt.Errorf("insufficient slots: round %d needs %d matches but only %d slots per match day", idx+1, len(round), len(slots))
		}
		for i, pairing := range round {
			slot := slots[i]
			schedule = append(schedule, ScheduledMatch{
				LeagueID:  leagueID,
				Round:     pairing.Round,
				HomeTeam:  pairing.HomeTeam,
				AwayTeam:  pairing.AwayTeam,
				VenueID:   slot.VenueID,
				MatchDate: slot.Start,
			})
		}
	}
	return schedule, nil
}

type roundPair struct {
	Round    int
	HomeTeam models.Team
	AwayTeam models.Team
}

// buildRoundRobinPairs uses the circle method. An odd team count gets a bye.
func buildRoundRobinPairs(teams []models.Team) [][]roundPair {
	working := make([]*models.Team, 0, len(teams)+1)
	for i := range teams {
		working = append(working, &teams[i])
	}
	if len(working)%2 == 1 {
		working = append(working, nil)
	}

	numRounds := len(working) - 1
	rounds := make([][]roundPair, 0, numRounds)

	for round := 0; round < numRounds; round++ {
		pairs := make([]roundPair, 0, len(working)/2)
		for i := 0; i < len(working)/2; i++ {
			left := working[i]
			right := working[len(working)-1-i]
			if left == nil || right == nil {
				continue
			}
			home := *left
			away := *right
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			pairs = append(pairs, roundPair{
				Round:    round + 1,
				HomeTeam: home,
				AwayTeam: away,
			})
		}
		rounds = append(rounds, pairs)
		rotateTeams(working)
	}

	return rounds
}

func rotateTeams(teams []*models.Team) {
	if len(teams) <= 2 {
		return
	}
	last := teams[len(teams)-1]
	copy(teams[2:], teams[1:len(teams)-1])
	teams[1] = last
}

func buildMatchDays(startDate, endDate time.Time, weekdays []time.Weekday) []time.Time {
	allowed := make(map[time.Weekday]bool, len(weekdays))
	for _, day := range weekdays {
		allowed[day] = true
	}

	var days []time.Time
	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		if len(allowed) == 0 || allowed[date.Weekday()] {
			days = append(days, date)
		}
	}
	return days
}

func buildMatchSlots(day time.Time, kickoffs []time.Time, venueIDs []int64) []matchSlot {
	slots := make([]matchSlot, 0, len(kickoffs)*len(venueIDs))
	for _, kickoff := range kickoffs {
		start := time.Date(day.Year(), day.Month(), day.Day(), kickoff.Hour(), kickoff.Minute(), 0, 0, time.UTC)
		for _, venueID := range venueIDs {
			slots = append(slots, matchSlot{Start: start, VenueID: venueID})
		}
	}
	return slots
}

func parseKickoffTimes(raw []string) ([]time.Time, error) {
	if len(raw) == 0 {
		raw = []string{"15:00"}
	}
	kickoffs := make([]time.Time, 0, len(raw))
	for _, value := range raw {
		parsed, err := parseTimeOfDay(value)
		if err != nil {
			return nil, fmt.Errorf("invalid kickoff time %q: %w", value, err)
		}
		kickoffs = append(kickoffs, parsed)
	}
	return kickoffs, nil
}

func parseTimeOfDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("time is required")
	}
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		formats := []string{"3:04 PM", "03:04 PM", "3:04PM", "03:04PM"}
		for _, format := range formats {
			if parsed, err = time.Parse(format, strings.ToUpper(raw)); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, errors.New("time must be in HH:MM or H:MM AM/PM format")
	}
	return parsed, nil
}

func truncateDate(value time.Time) time.Time {
	value = value.UTC()
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
