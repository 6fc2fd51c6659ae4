package leagues

import (
	"sort"

	"github.com/codr1/leaguedesk/internal/models"
)

const (
	pointsForWin  = 3
	pointsForDraw = 1
)

type TeamStanding struct {
	Position       int    `json:"position"`
	TeamID         int64  `json:"team_id"`
	TeamName       string `json:"team_name"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

type teamStats struct {
	TeamStanding
	headToHeadPoints map[int64]int
}

// CalculateStandings builds the league table for teams from recorded results.
// Results for teams outside the list are ignored. Ordering is points, goal
// difference, goals scored, points in matches between the tied teams, then
// name.
func CalculateStandings(teams []models.Team, results []models.ResultDetail) []TeamStanding {
	stats := make(map[int64]*teamStats, len(teams))
	for _, team := range teams {
		stats[team.ID] = &teamStats{
			TeamStanding:     TeamStanding{TeamID: team.ID, TeamName: team.Name},
			headToHeadPoints: make(map[int64]int),
		}
	}

	for _, result := range results {
		home, okHome := stats[result.Fixture.HomeTeamID]
		away, okAway := stats[result.Fixture.AwayTeamID]
		if !okHome || !okAway {
			continue
		}
		home.record(away.TeamID, result.HomeScore, result.AwayScore)
		away.record(home.TeamID, result.AwayScore, result.HomeScore)
	}

	ordered := make([]*teamStats, 0, len(stats))
	for _, team := range stats {
		ordered = append(ordered, team)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if !sameOverallRecord(ordered[i], ordered[j]) {
			return overallAhead(ordered[i], ordered[j])
		}
		return ordered[i].TeamName < ordered[j].TeamName
	})

	sortStandingsByTiebreakers(ordered)

	standings := make([]TeamStanding, 0, len(ordered))
	for idx, team := range ordered {
		team.Position = idx + 1
		standings = append(standings, team.TeamStanding)
	}
	return standings
}

func (t *teamStats) record(opponentID int64, scored, conceded int) {
	t.Played++
	t.GoalsFor += scored
	t.GoalsAgainst += conceded
	t.GoalDifference = t.GoalsFor - t.GoalsAgainst

	switch {
	case scored > conceded:
		t.Won++
		t.Points += pointsForWin
		t.headToHeadPoints[opponentID] += pointsForWin
	case scored == conceded:
		t.Drawn++
		t.Points += pointsForDraw
		t.headToHeadPoints[opponentID] += pointsForDraw
	default:
		t.Lost++
	}
}

func sameOverallRecord(a, b *teamStats) bool {
	return a.Points == b.Points && a.GoalDifference == b.GoalDifference && a.GoalsFor == b.GoalsFor
}

func overallAhead(a, b *teamStats) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return a.GoalDifference > b.GoalDifference
	}
	return a.GoalsFor > b.GoalsFor
}

// sortStandingsByTiebreakers reorders each run of teams level on points, goal
// difference and goals scored by the points they took off each other.
func sortStandingsByTiebreakers(ordered []*teamStats) {
	if len(ordered) < 2 {
		return
	}

	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && sameOverallRecord(ordered[end], ordered[start]) {
			end++
		}

		if end-start > 1 {
			group := ordered[start:end]
			groupSet := make(map[int64]struct{}, len(group))
			for _, team := range group {
				groupSet[team.TeamID] = struct{}{}
			}

			sort.SliceStable(group, func(i, j int) bool {
				h2hI := headToHeadPoints(group[i], groupSet)
				h2hJ := headToHeadPoints(group[j], groupSet)
				if h2hI != h2hJ {
					return h2hI > h2hJ
				}
				return group[i].TeamName < group[j].TeamName
			})
		}

		start = end
	}
}

func headToHeadPoints(team *teamStats, group map[int64]struct{}) int {
	total := 0
	for opponentID, points := range team.headToHeadPoints {
		if _, ok := group[opponentID]; ok {
			total += points
		}
	}
	return total
}
