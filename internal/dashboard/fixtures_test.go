package dashboard_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
	"github.com/couchcryptid/eurolife-dashboard/internal/observability"
)

// --- mocks ---

type fakeLoader struct {
	inputs domain.Inputs
	err    error
	calls  atomic.Int32
}

func (f *fakeLoader) Load(ctx context.Context) (domain.Inputs, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return domain.Inputs{}, err
	}
	if f.err != nil {
		return domain.Inputs{}, f.err
	}
	return f.inputs, nil
}

type fakePublisher struct {
	published []*dashboard.Dataset
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, ds *dashboard.Dataset) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ds)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- fixtures ---

func square(x, y float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
}

// testInputs covers three years of AT and GR (Greece filed as EL by
// Eurostat), one year of DE, and a boundary file with one unknown region.
func testInputs() domain.Inputs {
	return domain.Inputs{
		Satisfaction: []domain.RawRow{
			{Country: "AT", Year: "2018", Value: "7.6"},
			{Country: "AT", Year: "2021", Value: "7.8"},
			{Country: "AT", Year: "2022", Value: "8.0"},
			{Country: "EL", Year: "2018", Value: "6.0"},
			{Country: "EL", Year: "2021", Value: "6.5"},
			{Country: "EL", Year: "2022", Value: "0"},
			{Country: "DE", Year: "2022", Value: "7.4"},
			{Country: "FR", Year: "2022", Value: "12"},
		},
		Income: []domain.RawRow{
			{Country: "AT", Year: "2018", Value: "25000"},
			{Country: "AT", Year: "2021", Value: "26000"},
			{Country: "AT", Year: "2022", Value: "28600"},
			{Country: "EL", Year: "2018", Value: "9000"},
			{Country: "EL", Year: "2021", Value: "9900"},
			{Country: "EL", Year: "2022", Value: "10000"},
			{Country: "DE", Year: "2022", Value: "27000"},
			{Country: "FR", Year: "2022", Value: "24000"},
		},
		Features: []domain.GeoFeature{
			{Code: "AT", Name: "Austria", Geometry: square(9, 46)},
			{Code: "GR", Name: "Greece", Geometry: square(20, 35)},
			{Code: "DE", Name: "Germany", Geometry: square(6, 47)},
			{Code: "XK", Name: "Kosovo", Geometry: square(20, 42)},
			{Code: "", Name: "Unlabelled"},
		},
		Aliases: domain.DefaultAliasTable(),
	}
}

func newTestController(loader dashboard.Loader, opts dashboard.Options) (*dashboard.Controller, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	c := dashboard.NewController(loader, dashboard.NewMemoryStore(0), opts, discardLogger(), metrics)
	return c, metrics
}

func standardOptions() dashboard.Options {
	return dashboard.Options{Build: dashboard.BuildOptions{StandardizeCodes: true}}
}
