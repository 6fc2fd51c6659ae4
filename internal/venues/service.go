// Package venues manages the grounds fixtures are played at.
package venues

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/models"
	"github.com/codr1/leaguedesk/internal/store"
)

type Input struct {
	Name     string
	Location *string
}

// Update is a partial update. An empty location clears it.
type Update struct {
	Name     *string
	Location *string
}

type Service struct {
	repos store.Transactor
}

func NewService(repos store.Transactor) (*Service, error) {
	if repos == nil {
		return nil, errors.New("venue service requires repositories")
	}
	return &Service{repos: repos}, nil
}

func (s *Service) Create(ctx context.Context, in Input) (models.Venue, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Venue{}, models.InvalidInputf("name is required")
	}
	venue, err := s.repos.Venues().Create(ctx, models.Venue{Name: name, Location: trimOptional(in.Location)})
	if err != nil {
		return models.Venue{}, err
	}
	log.Ctx(ctx).Info().Int64("venue_id", venue.ID).Msg("Venue created")
	return venue, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.Venue, error) {
	return s.repos.Venues().Get(ctx, id)
}

// GetDetail returns the venue with the fixtures played there.
func (s *Service) GetDetail(ctx context.Context, id int64) (models.VenueDetail, error) {
	venue, err := s.repos.Venues().Get(ctx, id)
	if err != nil {
		return models.VenueDetail{}, err
	}
	fixtures, err := s.repos.Fixtures().List(ctx, store.FixtureFilter{VenueID: &id})
	if err != nil {
		return models.VenueDetail{}, err
	}
	return models.VenueDetail{Venue: venue, Fixtures: fixtures}, nil
}

func (s *Service) List(ctx context.Context) ([]models.Venue, error) {
	return s.repos.Venues().List(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, in Update) (models.Venue, error) {
	venue, err := s.repos.Venues().Get(ctx, id)
	if err != nil {
		return models.Venue{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.Venue{}, models.InvalidInputf("name cannot be empty")
		}
		venue.Name = name
	}
	if in.Location != nil {
		venue.Location = trimOptional(in.Location)
	}
	return s.repos.Venues().Update(ctx, venue)
}

// Delete removes a venue no fixture uses.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		if _, err := repos.Venues().Get(ctx, id); err != nil {
			return err
		}
		fixtures, err := repos.Fixtures().List(ctx, store.FixtureFilter{VenueID: &id})
		if err != nil {
			return err
		}
		if len(fixtures) > 0 {
			return models.Conflictf("Venue is used by %d fixtures", len(fixtures))
		}
		return repos.Venues().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Int64("venue_id", id).Msg("Venue deleted")
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
