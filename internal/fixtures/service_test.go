package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/leaguedesk/internal/models"
	"github.com/codr1/leaguedesk/internal/store"
	"github.com/codr1/leaguedesk/internal/testutil"
)

type fixtureWorld struct {
	svc    *Service
	repos  *store.Store
	league models.League
	other  models.League
	home   models.Team
	away   models.Team
	alien  models.Team
	venue  models.Venue
}

func newWorld(t *testing.T) fixtureWorld {
	t.Helper()
	repos := testutil.NewTestStore(t)
	svc, err := NewService(repos)
	require.NoError(t, err)

	league := testutil.SeedLeague(t, repos, "Premier")
	other := testutil.SeedLeague(t, repos, "Conference")
	return fixtureWorld{
		svc:    svc,
		repos:  repos,
		league: league,
		other:  other,
		home:   testutil.SeedTeam(t, repos, league.ID, "Home"),
		away:   testutil.SeedTeam(t, repos, league.ID, "Away"),
		alien:  testutil.SeedTeam(t, repos, other.ID, "Alien"),
		venue:  testutil.SeedVenue(t, repos, "Park"),
	}
}

var kickoff = time.Date(2024, 9, 7, 15, 0, 0, 0, time.UTC)

func (w fixtureWorld) input() CreateInput {
	return CreateInput{
		LeagueID:   w.league.ID,
		HomeTeamID: w.home.ID,
		AwayTeamID: w.away.ID,
		VenueID:    w.venue.ID,
		MatchDate:  kickoff,
	}
}

func TestCreateFixture(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	detail, err := w.svc.Create(ctx, w.input())
	require.NoError(t, err)

	assert.Equal(t, models.FixtureScheduled, detail.Status)
	assert.Equal(t, "Premier", detail.League.Name)
	assert.Equal(t, "Home", detail.HomeTeam.Name)
	assert.Equal(t, "Away", detail.AwayTeam.Name)
	assert.Equal(t, "Park", detail.Venue.Name)
	assert.Nil(t, detail.Result)
	assert.True(t, detail.MatchDate.Equal(kickoff))
}

func TestCreateFixtureStatusAndReferee(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	referee := testutil.SeedUser(t, w.repos, models.RoleCoach)

	in := w.input()
	in.Status = "postponed"
	in.RefereeID = &referee.ID
	detail, err := w.svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.FixturePostponed, detail.Status)
	require.NotNil(t, detail.Referee)
	assert.Equal(t, referee.Email, detail.Referee.Email)

	in.Status = "Abandoned"
	_, err = w.svc.Create(ctx, in)
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCreateFixtureValidation(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	missingID := int64(9999)

	tests := []struct {
		name   string
		mutate func(*CreateInput)
		want   error
	}{
		{"missing league", func(in *CreateInput) { in.LeagueID = 0 }, models.ErrInvalidInput},
		{"missing venue", func(in *CreateInput) { in.VenueID = 0 }, models.ErrInvalidInput},
		{"missing date", func(in *CreateInput) { in.MatchDate = time.Time{} }, models.ErrInvalidInput},
		{"same team twice", func(in *CreateInput) { in.AwayTeamID = in.HomeTeamID }, models.ErrInvalidInput},
		{"unknown home team", func(in *CreateInput) { in.HomeTeamID = missingID }, models.ErrNotFound},
		{"unknown away team", func(in *CreateInput) { in.AwayTeamID = missingID }, models.ErrNotFound},
		{"unknown venue", func(in *CreateInput) { in.VenueID = missingID }, models.ErrNotFound},
		{"unknown referee", func(in *CreateInput) { in.RefereeID = &missingID }, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := w.input()
			tt.mutate(&in)
			_, err := w.svc.Create(ctx, in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateFixtureCrossLeague(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	otherAlien := testutil.SeedTeam(t, w.repos, w.other.ID, "Alien Reserves")

	tests := []struct {
		name     string
		leagueID int64
		homeID   int64
		awayID   int64
	}{
		{"home from other league", w.league.ID, w.alien.ID, w.away.ID},
		{"away from other league", w.league.ID, w.home.ID, w.alien.ID},
		{"teams split, other league id", w.other.ID, w.home.ID, w.alien.ID},
		{"both teams from other league", w.league.ID, w.alien.ID, otherAlien.ID},
		{"both teams from fixture league, other league id", w.other.ID, w.home.ID, w.away.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := w.input()
			in.LeagueID, in.HomeTeamID, in.AwayTeamID = tt.leagueID, tt.homeID, tt.awayID
			_, err := w.svc.Create(ctx, in)
			require.ErrorIs(t, err, models.ErrInvalidState)
		})
	}

	fixtures, err := w.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, fixtures)
}

func TestUpdateFixture(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	created, err := w.svc.Create(ctx, w.input())
	require.NoError(t, err)

	later := kickoff.Add(48 * time.Hour)
	status := "Postponed"
	updated, err := w.svc.Update(ctx, created.ID, UpdateInput{MatchDate: &later, Status: &status})
	require.NoError(t, err)
	assert.True(t, updated.MatchDate.Equal(later))
	assert.Equal(t, models.FixturePostponed, updated.Status)
	assert.Equal(t, w.home.ID, updated.HomeTeamID)

	_, err = w.svc.Update(ctx, created.ID, UpdateInput{AwayTeamID: &w.alien.ID})
	require.ErrorIs(t, err, models.ErrInvalidState)

	_, err = w.svc.Update(ctx, created.ID, UpdateInput{LeagueID: &w.other.ID})
	require.ErrorIs(t, err, models.ErrInvalidState)

	_, err = w.svc.Update(ctx, created.ID, UpdateInput{HomeTeamID: &w.away.ID})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	swapped, err := w.svc.Update(ctx, created.ID, UpdateInput{HomeTeamID: &w.away.ID, AwayTeamID: &w.home.ID})
	require.NoError(t, err)
	assert.Equal(t, w.away.ID, swapped.HomeTeamID)

	_, err = w.svc.Update(ctx, 9999, UpdateInput{Status: &status})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	created, err := w.svc.Create(ctx, w.input())
	require.NoError(t, err)

	updated, err := w.svc.UpdateStatus(ctx, created.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, models.FixtureCompleted, updated.Status)

	_, err = w.svc.UpdateStatus(ctx, created.ID, "Finished")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = w.svc.UpdateStatus(ctx, 9999, "Completed")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteFixture(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	plain, err := w.svc.Create(ctx, w.input())
	require.NoError(t, err)
	require.NoError(t, w.svc.Delete(ctx, plain.ID))
	require.ErrorIs(t, w.svc.Delete(ctx, plain.ID), models.ErrNotFound)

	in := w.input()
	in.Status = "Completed"
	played, err := w.svc.Create(ctx, in)
	require.NoError(t, err)
	_, err = w.repos.Results().Create(ctx, models.Result{FixtureID: played.ID, HomeScore: 1, AwayScore: 1})
	require.NoError(t, err)

	require.ErrorIs(t, w.svc.Delete(ctx, played.ID), models.ErrConflict)

	got, err := w.svc.Get(ctx, played.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Result)
	assert.Equal(t, 1, got.Result.HomeScore)
}

func TestListQueries(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	alienHome := testutil.SeedTeam(t, w.repos, w.other.ID, "Alien Home")

	dates := []time.Time{
		time.Date(2024, 9, 1, 15, 0, 0, 0, time.UTC),
		time.Date(2024, 9, 8, 15, 0, 0, 0, time.UTC),
		time.Date(2024, 9, 15, 15, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		in := w.input()
		in.MatchDate = d
		_, err := w.svc.Create(ctx, in)
		require.NoError(t, err)
	}
	_, err := w.svc.Create(ctx, CreateInput{
		LeagueID: w.other.ID, HomeTeamID: alienHome.ID, AwayTeamID: w.alien.ID,
		VenueID: w.venue.ID, MatchDate: time.Date(2024, 9, 2, 15, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	all, err := w.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].MatchDate.Before(all[i-1].MatchDate), "fixtures must be ordered by match date")
	}

	byLeague, err := w.svc.ListByLeague(ctx, w.league.ID)
	require.NoError(t, err)
	assert.Len(t, byLeague, 3)

	byTeam, err := w.svc.ListByTeam(ctx, w.alien.ID)
	require.NoError(t, err)
	assert.Len(t, byTeam, 1)

	_, err = w.svc.ListByLeague(ctx, 9999)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = w.svc.ListByTeam(ctx, 9999)
	require.ErrorIs(t, err, models.ErrNotFound)

	inRange, err := w.svc.ListByDateRange(ctx, dates[0], dates[1])
	require.NoError(t, err)
	assert.Len(t, inRange, 3, "range is inclusive at both ends")

	_, err = w.svc.ListByDateRange(ctx, dates[1], dates[0])
	require.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = w.svc.ListByDateRange(ctx, time.Time{}, dates[0])
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestListOverdue(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	past := w.input()
	past.MatchDate = time.Date(2024, 9, 1, 15, 0, 0, 0, time.UTC)
	overdue, err := w.svc.Create(ctx, past)
	require.NoError(t, err)

	done := past
	done.Status = "Completed"
	_, err = w.svc.Create(ctx, done)
	require.NoError(t, err)

	future := w.input()
	future.MatchDate = time.Date(2024, 10, 1, 15, 0, 0, 0, time.UTC)
	_, err = w.svc.Create(ctx, future)
	require.NoError(t, err)

	list, err := w.svc.ListOverdue(ctx, time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, overdue.ID, list[0].ID)
}
