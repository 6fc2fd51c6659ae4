// Package leagues manages leagues and their teams, builds league tables from
// recorded results and generates round-robin fixture lists.
package leagues

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/models"
	"github.com/codr1/leaguedesk/internal/store"
)

type LeagueInput struct {
	Name      string
	Season    *string
	StartDate *time.Time
	EndDate   *time.Time
}

// LeagueUpdate is a partial update; nil fields are left unchanged. An empty
// season clears it; ClearStartDate and ClearEndDate remove the dates.
type LeagueUpdate struct {
	Name           *string
	Season         *string
	StartDate      *time.Time
	EndDate        *time.Time
	ClearStartDate bool
	ClearEndDate   bool
}

type TeamInput struct {
	LeagueID int64
	Name     string
	CoachID  *int64
}

// TeamUpdate is a partial update. ClearCoach removes the coach.
type TeamUpdate struct {
	LeagueID   *int64
	Name       *string
	CoachID    *int64
	ClearCoach bool
}

type Service struct {
	repos store.Transactor
}

func NewService(repos store.Transactor) (*Service, error) {
	if repos == nil {
		return nil, errors.New("league service requires repositories")
	}
	return &Service{repos: repos}, nil
}

func (s *Service) Create(ctx context.Context, in LeagueInput) (models.League, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.League{}, models.InvalidInputf("name is required")
	}
	if err := validateDateRange(in.StartDate, in.EndDate); err != nil {
		return models.League{}, err
	}

	league, err := s.repos.Leagues().Create(ctx, models.League{
		Name:      name,
		Season:    trimOptional(in.Season),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	})
	if err != nil {
		return models.League{}, err
	}
	log.Ctx(ctx).Info().Int64("league_id", league.ID).Str("name", league.Name).Msg("League created")
	return league, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.League, error) {
	return s.repos.Leagues().Get(ctx, id)
}

// GetDetail returns the league with its teams and fixtures.
func (s *Service) GetDetail(ctx context.Context, id int64) (models.LeagueDetail, error) {
	league, err := s.repos.Leagues().Get(ctx, id)
	if err != nil {
		return models.LeagueDetail{}, err
	}
	teams, err := s.repos.Teams().ListByLeague(ctx, id)
	if err != nil {
		return models.LeagueDetail{}, err
	}
	fixtures, err := s.repos.Fixtures().List(ctx, store.FixtureFilter{LeagueID: &id})
	if err != nil {
		return models.LeagueDetail{}, err
	}
	return models.LeagueDetail{League: league, Teams: teams, Fixtures: fixtures}, nil
}

func (s *Service) List(ctx context.Context) ([]models.League, error) {
	return s.repos.Leagues().List(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, in LeagueUpdate) (models.League, error) {
	league, err := s.repos.Leagues().Get(ctx, id)
	if err != nil {
		return models.League{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.League{}, models.InvalidInputf("name cannot be empty")
		}
		league.Name = name
	}
	if in.Season != nil {
		league.Season = trimOptional(in.Season)
	}
	switch {
	case in.ClearStartDate:
		league.StartDate = nil
	case in.StartDate != nil:
		league.StartDate = in.StartDate
	}
	switch {
	case in.ClearEndDate:
		league.EndDate = nil
	case in.EndDate != nil:
		league.EndDate = in.EndDate
	}
	if err := validateDateRange(league.StartDate, league.EndDate); err != nil {
		return models.League{}, err
	}

	return s.repos.Leagues().Update(ctx, league)
}

// Delete removes the league together with its teams and fixtures. A league
// with recorded results is kept.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		if _, err := repos.Leagues().Get(ctx, id); err != nil {
			return err
		}
		results, err := repos.Results().ListDetails(ctx, store.ResultFilter{LeagueID: &id})
		if err != nil {
			return err
		}
		if len(results) > 0 {
			return models.Conflictf("League has recorded results")
		}
		return repos.Leagues().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Int64("league_id", id).Msg("League deleted")
	return nil
}

func (s *Service) CreateTeam(ctx context.Context, in TeamInput) (models.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Team{}, models.InvalidInputf("name is required")
	}
	if in.LeagueID <= 0 {
		return models.Team{}, models.InvalidInputf("league_id is required")
	}
	if _, err := s.repos.Leagues().Get(ctx, in.LeagueID); err != nil {
		return models.Team{}, err
	}
	if err := s.checkCoach(ctx, in.CoachID); err != nil {
		return models.Team{}, err
	}

	team, err := s.repos.Teams().Create(ctx, models.Team{LeagueID: in.LeagueID, Name: name, CoachID: in.CoachID})
	if err != nil {
		return models.Team{}, err
	}
	log.Ctx(ctx).Info().Int64("team_id", team.ID).Int64("league_id", team.LeagueID).Msg("Team created")
	return team, nil
}

func (s *Service) GetTeam(ctx context.Context, id int64) (models.Team, error) {
	return s.repos.Teams().Get(ctx, id)
}

func (s *Service) ListTeams(ctx context.Context) ([]models.Team, error) {
	return s.repos.Teams().List(ctx)
}

func (s *Service) ListTeamsByLeague(ctx context.Context, leagueID int64) ([]models.Team, error) {
	if _, err := s.repos.Leagues().Get(ctx, leagueID); err != nil {
		return nil, err
	}
	return s.repos.Teams().ListByLeague(ctx, leagueID)
}

// UpdateTeam applies a partial update. A team that already has fixtures
// cannot move to another league.
func (s *Service) UpdateTeam(ctx context.Context, id int64, in TeamUpdate) (models.Team, error) {
	var updated models.Team
	err := s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		team, err := repos.Teams().Get(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return models.InvalidInputf("name cannot be empty")
			}
			team.Name = name
		}
		if in.LeagueID != nil && *in.LeagueID != team.LeagueID {
			if _, err := repos.Leagues().Get(ctx, *in.LeagueID); err != nil {
				return err
			}
			fixtures, err := repos.Fixtures().List(ctx, store.FixtureFilter{TeamID: &id})
			if err != nil {
				return err
			}
			if len(fixtures) > 0 {
				return models.InvalidStatef("Team has fixtures and cannot change league")
			}
			team.LeagueID = *in.LeagueID
		}
		if in.ClearCoach {
			team.CoachID = nil
		} else if in.CoachID != nil {
			if err := checkCoach(ctx, repos, in.CoachID); err != nil {
				return err
			}
			team.CoachID = in.CoachID
		}

		updated, err = repos.Teams().Update(ctx, team)
		return err
	})
	if err != nil {
		return models.Team{}, err
	}
	return updated, nil
}

// DeleteTeam removes the team and its fixtures. A team with recorded results
// is kept.
func (s *Service) DeleteTeam(ctx context.Context, id int64) error {
	return s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		if _, err := repos.Teams().Get(ctx, id); err != nil {
			return err
		}
		results, err := repos.Results().ListDetails(ctx, store.ResultFilter{TeamID: &id})
		if err != nil {
			return err
		}
		if len(results) > 0 {
			return models.Conflictf("Team has recorded results")
		}
		return repos.Teams().Delete(ctx, id)
	})
}

// Standings returns the league table built from the league's results. A
// result only counts while its fixture is Completed, so a fixture moved back
// to Scheduled or Postponed drops out of the table.
func (s *Service) Standings(ctx context.Context, leagueID int64) ([]TeamStanding, error) {
	if _, err := s.repos.Leagues().Get(ctx, leagueID); err != nil {
		return nil, err
	}
	teams, err := s.repos.Teams().ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	results, err := s.repos.Results().ListDetails(ctx, store.ResultFilter{LeagueID: &leagueID})
	if err != nil {
		return nil, err
	}
	completed := results[:0]
	for _, result := range results {
		if result.Fixture.Status == models.FixtureCompleted {
			completed = append(completed, result)
		}
	}
	return CalculateStandings(teams, completed), nil
}

// GenerateSchedule creates a round-robin fixture list for the league. Zero
// start or end dates fall back to the league's own dates. Every fixture is
// created in one transaction.
func (s *Service) GenerateSchedule(ctx context.Context, leagueID int64, opts ScheduleOptions) ([]models.Fixture, error) {
	var created []models.Fixture
	err := s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		league, err := repos.Leagues().Get(ctx, leagueID)
		if err != nil {
			return err
		}
		if opts.StartDate.IsZero() && league.StartDate != nil {
			opts.StartDate = *league.StartDate
		}
		if opts.EndDate.IsZero() && league.EndDate != nil {
			opts.EndDate = *league.EndDate
		}
		if opts.StartDate.IsZero() || opts.EndDate.IsZero() {
			return models.InvalidInputf("start_date and end_date are required when the league has no dates")
		}
		for _, venueID := range opts.VenueIDs {
			if _, err := repos.Venues().Get(ctx, venueID); err != nil {
				return err
			}
		}

		teams, err := repos.Teams().ListByLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		matches, err := GenerateRoundRobinSchedule(leagueID, teams, opts)
		if err != nil {
			return models.InvalidInputf("%s", err.Error())
		}

		created = make([]models.Fixture, 0, len(matches))
		for _, match := range matches {
			fixture, err := repos.Fixtures().Create(ctx, models.Fixture{
				LeagueID:   match.LeagueID,
				HomeTeamID: match.HomeTeam.ID,
				AwayTeamID: match.AwayTeam.ID,
				VenueID:    match.VenueID,
				MatchDate:  match.MatchDate,
				Status:     models.FixtureScheduled,
			})
			if err != nil {
				return err
			}
			created = append(created, fixture)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int64("league_id", leagueID).Int("fixtures", len(created)).Msg("Schedule generated")
	return created, nil
}

func (s *Service) checkCoach(ctx context.Context, coachID *int64) error {
	return checkCoach(ctx, s.repos, coachID)
}

func checkCoach(ctx context.Context, repos store.Repositories, coachID *int64) error {
	if coachID == nil {
		return nil
	}
	if _, err := repos.Users().Get(ctx, *coachID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.NotFoundf("Coach not found")
		}
		return err
	}
	return nil
}

func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return models.InvalidInputf("end_date must be on or after start_date")
	}
	return nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
