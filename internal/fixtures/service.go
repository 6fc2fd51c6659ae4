// Package fixtures owns the fixture lifecycle: creation with league
// consistency checks, partial updates, status changes and deletion.
package fixtures

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/models"
	"github.com/codr1/leaguedesk/internal/store"
)

// CreateInput carries a new fixture. Zero ids and a zero match date count as
// missing. An empty status means Scheduled.
type CreateInput struct {
	LeagueID   int64
	HomeTeamID int64
	AwayTeamID int64
	VenueID    int64
	RefereeID  *int64
	MatchDate  time.Time
	Status     string
}

// UpdateInput is a partial update; nil fields are left unchanged.
// ClearReferee removes the referee.
type UpdateInput struct {
	LeagueID     *int64
	HomeTeamID   *int64
	AwayTeamID   *int64
	VenueID      *int64
	RefereeID    *int64
	ClearReferee bool
	MatchDate    *time.Time
	Status       *string
}

type Service struct {
	repos store.Transactor
}

func NewService(repos store.Transactor) (*Service, error) {
	if repos == nil {
		return nil, errors.New("fixture service requires repositories")
	}
	return &Service{repos: repos}, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (models.FixtureDetail, error) {
	var missing []string
	if in.LeagueID <= 0 {
		missing = append(missing, "league_id")
	}
	if in.HomeTeamID <= 0 {
		missing = append(missing, "home_team_id")
	}
	if in.AwayTeamID <= 0 {
		missing = append(missing, "away_team_id")
	}
	if in.VenueID <= 0 {
		missing = append(missing, "venue_id")
	}
	if in.MatchDate.IsZero() {
		missing = append(missing, "match_date")
	}
	if len(missing) > 0 {
		return models.FixtureDetail{}, models.InvalidInputf("Missing required fields: %s", strings.Join(missing, ", "))
	}

	status := models.FixtureScheduled
	if strings.TrimSpace(in.Status) != "" {
		parsed, err := parseStatus(in.Status)
		if err != nil {
			return models.FixtureDetail{}, err
		}
		status = parsed
	}

	fixture := models.Fixture{
		LeagueID:   in.LeagueID,
		HomeTeamID: in.HomeTeamID,
		AwayTeamID: in.AwayTeamID,
		VenueID:    in.VenueID,
		RefereeID:  in.RefereeID,
		MatchDate:  in.MatchDate.UTC(),
		Status:     status,
	}

	var detail models.FixtureDetail
	err := s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		if err := checkTeams(ctx, repos, fixture); err != nil {
			return err
		}
		if err := checkReferences(ctx, repos, fixture); err != nil {
			return err
		}
		created, err := repos.Fixtures().Create(ctx, fixture)
		if err != nil {
			return err
		}
		detail, err = repos.Fixtures().GetDetail(ctx, created.ID)
		return err
	})
	if err != nil {
		return models.FixtureDetail{}, err
	}

	log.Ctx(ctx).Info().
		Int64("fixture_id", detail.ID).
		Int64("league_id", detail.LeagueID).
		Time("match_date", detail.MatchDate).
		Msg("Fixture created")
	return detail, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.FixtureDetail, error) {
	return s.repos.Fixtures().GetDetail(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.FixtureDetail, error) {
	return s.repos.Fixtures().ListDetails(ctx, store.FixtureFilter{})
}

func (s *Service) ListByLeague(ctx context.Context, leagueID int64) ([]models.FixtureDetail, error) {
	if _, err := s.repos.Leagues().Get(ctx, leagueID); err != nil {
		return nil, err
	}
	return s.repos.Fixtures().ListDetails(ctx, store.FixtureFilter{LeagueID: &leagueID})
}

func (s *Service) ListByTeam(ctx context.Context, teamID int64) ([]models.FixtureDetail, error) {
	if _, err := s.repos.Teams().Get(ctx, teamID); err != nil {
		return nil, err
	}
	return s.repos.Fixtures().ListDetails(ctx, store.FixtureFilter{TeamID: &teamID})
}

// ListByDateRange returns fixtures with start <= match_date <= end.
func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.FixtureDetail, error) {
	if start.IsZero() || end.IsZero() {
		return nil, models.InvalidInputf("start and end dates are required")
	}
	if end.Before(start) {
		return nil, models.InvalidInputf("end date must be on or after start date")
	}
	return s.repos.Fixtures().ListDetails(ctx, store.FixtureFilter{From: &start, To: &end})
}

// ListOverdue returns Scheduled fixtures that kicked off before the given
// time.
func (s *Service) ListOverdue(ctx context.Context, before time.Time) ([]models.FixtureDetail, error) {
	status := models.FixtureScheduled
	return s.repos.Fixtures().ListDetails(ctx, store.FixtureFilter{Status: &status, Before: &before})
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (models.FixtureDetail, error) {
	var detail models.FixtureDetail
	err := s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		fixture, err := repos.Fixtures().Get(ctx, id)
		if err != nil {
			return err
		}

		teamsChanged := false
		if in.LeagueID != nil {
			teamsChanged = teamsChanged || *in.LeagueID != fixture.LeagueID
			fixture.LeagueID = *in.LeagueID
		}
		if in.HomeTeamID != nil {
			teamsChanged = teamsChanged || *in.HomeTeamID != fixture.HomeTeamID
			fixture.HomeTeamID = *in.HomeTeamID
		}
		if in.AwayTeamID != nil {
			teamsChanged = teamsChanged || *in.AwayTeamID != fixture.AwayTeamID
			fixture.AwayTeamID = *in.AwayTeamID
		}
		if in.VenueID != nil {
			fixture.VenueID = *in.VenueID
		}
		if in.ClearReferee {
			fixture.RefereeID = nil
		} else if in.RefereeID != nil {
			fixture.RefereeID = in.RefereeID
		}
		if in.MatchDate != nil {
			if in.MatchDate.IsZero() {
				return models.InvalidInputf("match_date cannot be empty")
			}
			fixture.MatchDate = in.MatchDate.UTC()
		}
		if in.Status != nil {
			status, err := parseStatus(*in.Status)
			if err != nil {
				return err
			}
			fixture.Status = status
		}

		if teamsChanged {
			if err := checkTeams(ctx, repos, fixture); err != nil {
				return err
			}
		}
		if err := checkReferences(ctx, repos, fixture); err != nil {
			return err
		}
		if _, err := repos.Fixtures().Update(ctx, fixture); err != nil {
			return err
		}
		detail, err = repos.Fixtures().GetDetail(ctx, id)
		return err
	})
	if err != nil {
		return models.FixtureDetail{}, err
	}
	return detail, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, raw string) (models.FixtureDetail, error) {
	status, err := parseStatus(raw)
	if err != nil {
		return models.FixtureDetail{}, err
	}
	if _, err := s.repos.Fixtures().UpdateStatus(ctx, id, status); err != nil {
		return models.FixtureDetail{}, err
	}
	log.Ctx(ctx).Info().Int64("fixture_id", id).Str("status", string(status)).Msg("Fixture status updated")
	return s.repos.Fixtures().GetDetail(ctx, id)
}

// Delete removes a fixture that has no result.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		if _, err := repos.Fixtures().Get(ctx, id); err != nil {
			return err
		}
		if _, err := repos.Results().GetByFixture(ctx, id); err == nil {
			return models.Conflictf("Cannot delete fixture with an existing result")
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}
		return repos.Fixtures().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Int64("fixture_id", id).Msg("Fixture deleted")
	return nil
}

// checkTeams loads both teams and requires them to be distinct members of
// the fixture's league.
func checkTeams(ctx context.Context, repos store.Repositories, fixture models.Fixture) error {
	if fixture.HomeTeamID == fixture.AwayTeamID {
		return models.InvalidInputf("Home and away teams must be different")
	}
	home, err := repos.Teams().Get(ctx, fixture.HomeTeamID)
	if err != nil {
		return notFound(err, "Home team not found")
	}
	away, err := repos.Teams().Get(ctx, fixture.AwayTeamID)
	if err != nil {
		return notFound(err, "Away team not found")
	}
	if home.LeagueID != away.LeagueID {
		return models.InvalidStatef("Home and away teams must belong to the same league")
	}
	if home.LeagueID != fixture.LeagueID {
		return models.InvalidStatef("Teams must belong to the fixture's league")
	}
	return nil
}

// checkReferences resolves the league, venue and referee so a bad id is
// reported by name rather than as a constraint failure.
func checkReferences(ctx context.Context, repos store.Repositories, fixture models.Fixture) error {
	if _, err := repos.Leagues().Get(ctx, fixture.LeagueID); err != nil {
		return notFound(err, "League not found")
	}
	if _, err := repos.Venues().Get(ctx, fixture.VenueID); err != nil {
		return notFound(err, "Venue not found")
	}
	if fixture.RefereeID != nil {
		if _, err := repos.Users().Get(ctx, *fixture.RefereeID); err != nil {
			return notFound(err, "Referee not found")
		}
	}
	return nil
}

func notFound(err error, message string) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NotFoundf("%s", message)
	}
	return err
}

func parseStatus(raw string) (models.FixtureStatus, error) {
	status, ok := models.ParseFixtureStatus(raw)
	if !ok {
		return "", models.InvalidInputf("Invalid status. Must be one of: Scheduled, Completed, Postponed")
	}
	return status, nil
}
