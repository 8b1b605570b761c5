package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

func loadedController(t *testing.T, opts dashboard.Options) *dashboard.Controller {
	t.Helper()
	c, _ := newTestController(&fakeLoader{inputs: testInputs()}, opts)
	_, err := c.Reload(context.Background())
	require.NoError(t, err)
	return c
}

func TestController_NotReadyUntilLoaded(t *testing.T) {
	c, _ := newTestController(&fakeLoader{inputs: testInputs()}, standardOptions())
	ctx := context.Background()

	require.ErrorIs(t, c.CheckReadiness(ctx), dashboard.ErrNotLoaded)
	_, err := c.CreateSession(ctx)
	require.ErrorIs(t, err, dashboard.ErrNotLoaded)

	_, err = c.Reload(ctx)
	require.NoError(t, err)
	assert.NoError(t, c.CheckReadiness(ctx))
}

func TestController_Reload_RecordsMetrics(t *testing.T) {
	c, metrics := newTestController(&fakeLoader{inputs: testInputs()}, standardOptions())

	ds, err := c.Reload(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DatasetReady), 0)
	assert.InDelta(t, float64(ds.Combined.Len()), testutil.ToFloat64(metrics.Observations), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DroppedRows.WithLabelValues("out_of_range")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DroppedRows.WithLabelValues("unmatched_income")), 0)
}

func TestController_ReloadFailureKeepsPreviousDataset(t *testing.T) {
	loader := &fakeLoader{inputs: testInputs()}
	c, metrics := newTestController(loader, standardOptions())
	ctx := context.Background()

	first, err := c.Reload(ctx)
	require.NoError(t, err)

	loader.err = errors.New("income: status 503")
	_, err = c.Reload(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load sources")

	current, err := c.Dataset()
	require.NoError(t, err)
	assert.Same(t, first, current)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DatasetLoads.WithLabelValues("error")), 0)
}

func TestController_InitialLoadFailureLeavesNotReady(t *testing.T) {
	c, _ := newTestController(&fakeLoader{err: errors.New("boom")}, standardOptions())

	_, err := c.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, c.CheckReadiness(context.Background()), dashboard.ErrNotLoaded)
}

func TestController_PublishesInstalledDataset(t *testing.T) {
	pub := &fakePublisher{}
	opts := standardOptions()
	opts.Publisher = pub
	c, metrics := newTestController(&fakeLoader{inputs: testInputs()}, opts)

	ds, err := c.Reload(context.Background())
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	assert.Same(t, ds, pub.published[0])
	assert.InDelta(t, float64(ds.Combined.Len()), testutil.ToFloat64(metrics.MessagesPublished), 0)
}

func TestController_PublishFailureDoesNotFailReload(t *testing.T) {
	opts := standardOptions()
	opts.Publisher = &fakePublisher{err: errors.New("broker down")}
	c, metrics := newTestController(&fakeLoader{inputs: testInputs()}, opts)

	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	assert.NoError(t, c.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PublishErrors), 0)
}

func TestController_CreateSession(t *testing.T) {
	c := loadedController(t, standardOptions())

	s, err := c.CreateSession(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 2022, s.Year)
	assert.Empty(t, s.Selected)
	assert.NotNil(t, s.Selected)

	got, ds, err := c.Session(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, ds.Version, got.DatasetVersion)
}

func TestController_UnknownSession(t *testing.T) {
	c := loadedController(t, standardOptions())
	ctx := context.Background()

	_, _, err := c.Session(ctx, "missing")
	require.ErrorIs(t, err, dashboard.ErrSessionNotFound)
	_, _, err = c.ToggleCountry(ctx, "missing", "AT")
	require.ErrorIs(t, err, dashboard.ErrSessionNotFound)
}

func TestController_SetYear(t *testing.T) {
	c := loadedController(t, standardOptions())
	ctx := context.Background()
	s, err := c.CreateSession(ctx)
	require.NoError(t, err)

	s, err = c.SetYear(ctx, s.ID, 2018)
	require.NoError(t, err)
	assert.Equal(t, 2018, s.Year)

	_, err = c.SetYear(ctx, s.ID, 2019)
	require.ErrorIs(t, err, dashboard.ErrUnknownYear)

	got, _, err := c.Session(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2018, got.Year)
}

func TestController_ToggleCountry_Cap(t *testing.T) {
	opts := standardOptions()
	opts.SelectionCap = 2
	c, metrics := newTestController(&fakeLoader{inputs: testInputs()}, opts)
	ctx := context.Background()
	_, err := c.Reload(ctx)
	require.NoError(t, err)
	s, err := c.CreateSession(ctx)
	require.NoError(t, err)

	s, res, err := c.ToggleCountry(ctx, s.ID, "AT")
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleAdded, res)

	s, res, err = c.ToggleCountry(ctx, s.ID, " GR")
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleAdded, res)

	s, res, err = c.ToggleCountry(ctx, s.ID, "DE")
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleRejected, res)
	assert.Equal(t, []string{"AT", "GR"}, s.Selected)

	s, res, err = c.ToggleCountry(ctx, s.ID, "AT")
	require.NoError(t, err)
	assert.Equal(t, domain.ToggleRemoved, res)
	assert.Equal(t, []string{"GR"}, s.Selected)

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SelectionToggles.WithLabelValues("added")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SelectionToggles.WithLabelValues("rejected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SelectionToggles.WithLabelValues("removed")), 0)
}

func TestController_ToggleUnknownCountry(t *testing.T) {
	c := loadedController(t, standardOptions())
	ctx := context.Background()
	s, err := c.CreateSession(ctx)
	require.NoError(t, err)

	_, _, err = c.ToggleCountry(ctx, s.ID, "FR")
	require.ErrorIs(t, err, dashboard.ErrUnknownCountry)
}

func TestController_RemoveAndClear(t *testing.T) {
	c := loadedController(t, standardOptions())
	ctx := context.Background()
	s, err := c.CreateSession(ctx)
	require.NoError(t, err)

	for _, country := range []string{"AT", "GR", "DE"} {
		s, _, err = c.ToggleCountry(ctx, s.ID, country)
		require.NoError(t, err)
	}

	s, err = c.RemoveCountry(ctx, s.ID, "GR")
	require.NoError(t, err)
	assert.Equal(t, []string{"AT", "DE"}, s.Selected)

	s, err = c.RemoveCountry(ctx, s.ID, "GR")
	require.NoError(t, err)
	assert.Equal(t, []string{"AT", "DE"}, s.Selected)

	s, err = c.ClearSelection(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, s.Selected)
}

func TestController_ReloadResetsStaleSessions(t *testing.T) {
	c := loadedController(t, standardOptions())
	ctx := context.Background()
	s, err := c.CreateSession(ctx)
	require.NoError(t, err)
	s, err = c.SetYear(ctx, s.ID, 2018)
	require.NoError(t, err)
	_, _, err = c.ToggleCountry(ctx, s.ID, "AT")
	require.NoError(t, err)

	ds, err := c.Reload(ctx)
	require.NoError(t, err)

	got, _, err := c.Session(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.Version, got.DatasetVersion)
	assert.Equal(t, 2022, got.Year)
	assert.Empty(t, got.Selected)
}

func TestController_Resolve(t *testing.T) {
	c, metrics := newTestController(&fakeLoader{inputs: testInputs()}, dashboard.Options{})
	_, _, err := c.Resolve("GR", 2022)
	require.ErrorIs(t, err, dashboard.ErrNotLoaded)

	_, err = c.Reload(context.Background())
	require.NoError(t, err)

	id, kind, err := c.Resolve("GR", 2022)
	require.NoError(t, err)
	assert.Equal(t, "EL", id)
	assert.Equal(t, domain.MatchAlias, kind)

	_, kind, err = c.Resolve("XK", 2022)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchNone, kind)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Resolutions.WithLabelValues("alias")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Resolutions.WithLabelValues("none")), 0)
}
