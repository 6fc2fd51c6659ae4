package venues

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

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	repos := testutil.NewTestStore(t)
	svc, err := NewService(repos)
	require.NoError(t, err)
	return svc, repos
}

func strPtr(s string) *string { return &s }

func TestVenueCRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: ""})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	venue, err := svc.Create(ctx, Input{Name: "Riverside", Location: strPtr(" North Road ")})
	require.NoError(t, err)
	require.NotNil(t, venue.Location)
	assert.Equal(t, "North Road", *venue.Location)

	updated, err := svc.Update(ctx, venue.ID, Update{Name: strPtr("Riverside Park"), Location: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Riverside Park", updated.Name)
	assert.Nil(t, updated.Location)

	_, err = svc.Update(ctx, venue.ID, Update{Name: strPtr(" ")})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	venues, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, venues, 1)

	require.NoError(t, svc.Delete(ctx, venue.ID))
	_, err = svc.Get(ctx, venue.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, venue.ID), models.ErrNotFound)
}

func TestVenueInUse(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	league := testutil.SeedLeague(t, repos, "Premier")
	home := testutil.SeedTeam(t, repos, league.ID, "Home")
	away := testutil.SeedTeam(t, repos, league.ID, "Away")
	venue := testutil.SeedVenue(t, repos, "Stadium")
	testutil.SeedFixture(t, repos, home, away, venue.ID, time.Date(2024, 9, 7, 15, 0, 0, 0, time.UTC), models.FixtureScheduled)

	detail, err := svc.GetDetail(ctx, venue.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Fixtures, 1)

	require.ErrorIs(t, svc.Delete(ctx, venue.ID), models.ErrConflict)
}
