package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/models"
)

const (
	OverdueFixturesJobName = "overdue-fixtures"
	overdueJobTimeout      = 2 * time.Minute
)

// OverdueLister finds scheduled fixtures whose kickoff is before a cutoff.
type OverdueLister interface {
	ListOverdue(ctx context.Context, before time.Time) ([]models.FixtureDetail, error)
}

// RegisterOverdueFixturesJob logs fixtures still marked Scheduled once grace
// has passed since kickoff. It reports only; fixture status is left alone.
func RegisterOverdueFixturesJob(s *Service, fixtures OverdueLister, cronExpr string, grace time.Duration) error {
	if fixtures == nil {
		return fmt.Errorf("overdue fixtures job requires a fixture lister")
	}
	_, err := s.AddJob(OverdueFixturesJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), overdueJobTimeout)
		defer cancel()
		if _, err := CheckOverdueFixtures(ctx, fixtures, s.Clock().Now(), grace); err != nil {
			log.Error().Err(err).Str("job_name", OverdueFixturesJobName).Msg("Overdue fixture check failed")
		}
	})
	return err
}

// CheckOverdueFixtures runs one pass of the overdue check at now and returns
// the fixtures it reported.
func CheckOverdueFixtures(ctx context.Context, fixtures OverdueLister, now time.Time, grace time.Duration) ([]models.FixtureDetail, error) {
	jobLogger := log.With().Str("component", "overdue_fixtures_job").Logger()
	ctx = jobLogger.WithContext(ctx)

	cutoff := now.UTC().Add(-grace)
	overdue, err := fixtures.ListOverdue(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list overdue fixtures: %w", err)
	}
	if len(overdue) == 0 {
		jobLogger.Debug().Time("cutoff", cutoff).Msg("No overdue fixtures")
		return nil, nil
	}

	for _, f := range overdue {
		jobLogger.Warn().
			Int64("fixture_id", f.ID).
			Int64("league_id", f.LeagueID).
			Time("match_date", f.MatchDate).
			Msg("Fixture is past kickoff without a result")
	}
	jobLogger.Info().Int("count", len(overdue)).Time("cutoff", cutoff).Msg("Overdue fixtures found")
	return overdue, nil
}
