// Package results records match scores. A result can only be attached to a
// completed fixture, and a fixture has at most one result.
package results

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/models"
	"github.com/codr1/leaguedesk/internal/store"
)

type CreateInput struct {
	FixtureID int64
	HomeScore int
	AwayScore int
	Report    *string
}

// UpdateInput is a partial update; nil fields are left unchanged. An empty
// report clears it.
type UpdateInput struct {
	HomeScore *int
	AwayScore *int
	Report    *string
}

type Service struct {
	repos store.Transactor
}

func NewService(repos store.Transactor) (*Service, error) {
	if repos == nil {
		return nil, errors.New("result service requires repositories")
	}
	return &Service{repos: repos}, nil
}

// Create records the score of a fixture that is already Completed. Two
// concurrent calls for one fixture cannot both succeed: the loser gets
// ErrConflict from the unique fixture constraint.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.ResultDetail, error) {
	fixture, err := s.repos.Fixtures().Get(ctx, in.FixtureID)
	if err != nil {
		return models.ResultDetail{}, fixtureNotFound(err)
	}
	if _, err := s.repos.Results().GetByFixture(ctx, fixture.ID); err == nil {
		return models.ResultDetail{}, alreadyRecorded()
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.ResultDetail{}, err
	}
	if fixture.Status != models.FixtureCompleted {
		return models.ResultDetail{}, models.InvalidStatef("Cannot create result for non-completed fixture")
	}
	if err := validateScores(in.HomeScore, in.AwayScore); err != nil {
		return models.ResultDetail{}, err
	}

	created, err := s.repos.Results().Create(ctx, models.Result{
		FixtureID: fixture.ID,
		HomeScore: in.HomeScore,
		AwayScore: in.AwayScore,
		Report:    trimOptional(in.Report),
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.ResultDetail{}, alreadyRecorded()
		}
		return models.ResultDetail{}, err
	}

	log.Ctx(ctx).Info().
		Int64("result_id", created.ID).
		Int64("fixture_id", fixture.ID).
		Int("home_score", created.HomeScore).
		Int("away_score", created.AwayScore).
		Msg("Result recorded")
	return s.repos.Results().GetDetail(ctx, created.ID)
}

// CreateAndCompleteFixture marks the fixture Completed and records its
// result in one transaction. Neither write is kept if the other fails.
func (s *Service) CreateAndCompleteFixture(ctx context.Context, in CreateInput) (models.ResultDetail, error) {
	if err := validateScores(in.HomeScore, in.AwayScore); err != nil {
		return models.ResultDetail{}, err
	}

	var detail models.ResultDetail
	err := s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		if _, err := repos.Fixtures().UpdateStatus(ctx, in.FixtureID, models.FixtureCompleted); err != nil {
			return fixtureNotFound(err)
		}
		created, err := repos.Results().Create(ctx, models.Result{
			FixtureID: in.FixtureID,
			HomeScore: in.HomeScore,
			AwayScore: in.AwayScore,
			Report:    trimOptional(in.Report),
		})
		if err != nil {
			if errors.Is(err, models.ErrConflict) {
				return alreadyRecorded()
			}
			return err
		}
		detail, err = repos.Results().GetDetail(ctx, created.ID)
		return err
	})
	if err != nil {
		return models.ResultDetail{}, err
	}

	log.Ctx(ctx).Info().
		Int64("result_id", detail.ID).
		Int64("fixture_id", in.FixtureID).
		Msg("Fixture completed with result")
	return detail, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.ResultDetail, error) {
	return s.repos.Results().GetDetail(ctx, id)
}

func (s *Service) GetByFixture(ctx context.Context, fixtureID int64) (models.ResultDetail, error) {
	result, err := s.repos.Results().GetByFixture(ctx, fixtureID)
	if err != nil {
		return models.ResultDetail{}, notFoundForFixture(err)
	}
	return s.repos.Results().GetDetail(ctx, result.ID)
}

func (s *Service) List(ctx context.Context) ([]models.ResultDetail, error) {
	return s.repos.Results().ListDetails(ctx, store.ResultFilter{})
}

func (s *Service) ListByLeague(ctx context.Context, leagueID int64) ([]models.ResultDetail, error) {
	if _, err := s.repos.Leagues().Get(ctx, leagueID); err != nil {
		return nil, err
	}
	return s.repos.Results().ListDetails(ctx, store.ResultFilter{LeagueID: &leagueID})
}

func (s *Service) ListByTeam(ctx context.Context, teamID int64) ([]models.ResultDetail, error) {
	if _, err := s.repos.Teams().Get(ctx, teamID); err != nil {
		return nil, err
	}
	return s.repos.Results().ListDetails(ctx, store.ResultFilter{TeamID: &teamID})
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (models.ResultDetail, error) {
	result, err := s.repos.Results().Get(ctx, id)
	if err != nil {
		return models.ResultDetail{}, err
	}
	return s.update(ctx, result, in)
}

func (s *Service) UpdateByFixture(ctx context.Context, fixtureID int64, in UpdateInput) (models.ResultDetail, error) {
	result, err := s.repos.Results().GetByFixture(ctx, fixtureID)
	if err != nil {
		return models.ResultDetail{}, notFoundForFixture(err)
	}
	return s.update(ctx, result, in)
}

func (s *Service) update(ctx context.Context, result models.Result, in UpdateInput) (models.ResultDetail, error) {
	if in.HomeScore != nil {
		result.HomeScore = *in.HomeScore
	}
	if in.AwayScore != nil {
		result.AwayScore = *in.AwayScore
	}
	if in.Report != nil {
		result.Report = trimOptional(in.Report)
	}
	if err := validateScores(result.HomeScore, result.AwayScore); err != nil {
		return models.ResultDetail{}, err
	}
	if _, err := s.repos.Results().Update(ctx, result); err != nil {
		return models.ResultDetail{}, err
	}
	return s.repos.Results().GetDetail(ctx, result.ID)
}

// Delete removes the result and returns it. The fixture stays Completed.
func (s *Service) Delete(ctx context.Context, id int64) (models.Result, error) {
	result, err := s.repos.Results().Get(ctx, id)
	if err != nil {
		return models.Result{}, err
	}
	return s.delete(ctx, result)
}

func (s *Service) DeleteByFixture(ctx context.Context, fixtureID int64) (models.Result, error) {
	result, err := s.repos.Results().GetByFixture(ctx, fixtureID)
	if err != nil {
		return models.Result{}, notFoundForFixture(err)
	}
	return s.delete(ctx, result)
}

func (s *Service) delete(ctx context.Context, result models.Result) (models.Result, error) {
	if err := s.repos.Results().Delete(ctx, result.ID); err != nil {
		return models.Result{}, err
	}
	log.Ctx(ctx).Info().Int64("result_id", result.ID).Int64("fixture_id", result.FixtureID).Msg("Result deleted")
	return result, nil
}

func validateScores(home, away int) error {
	if home < 0 || away < 0 {
		return models.InvalidInputf("Scores cannot be negative")
	}
	return nil
}

func alreadyRecorded() error {
	return models.Conflictf("Result already exists for this fixture")
}

func fixtureNotFound(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NotFoundf("Fixture not found")
	}
	return err
}

func notFoundForFixture(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NotFoundf("Result not found for this fixture")
	}
	return err
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
