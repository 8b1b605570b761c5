package dashboard_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

func TestBuildDataset_CleansJoinsAndIndexes(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	ds := dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{StandardizeCodes: true})

	assert.NotEmpty(t, ds.Version)
	assert.Equal(t, clock.Now(), ds.LoadedAt)
	assert.Equal(t, []int{2018, 2021, 2022}, ds.Years)
	assert.Equal(t, 2022, ds.DefaultYear)
	assert.Equal(t, 7, ds.Combined.Len())
	assert.Equal(t, 1, ds.Cleaning.Satisfaction.OutOfRange)
	assert.Equal(t, 1, ds.Combined.Report.UnmatchedIncome)
	assert.Equal(t, 1, ds.Combined.Report.InvalidRatio)

	assert.True(t, ds.HasCountry("GR"))
	assert.False(t, ds.HasCountry("EL"))
	assert.False(t, ds.HasCountry("FR"))
	assert.True(t, ds.HasYear(2021))
	assert.False(t, ds.HasYear(2019))
}

func TestBuildDataset_DefaultYear(t *testing.T) {
	ds := dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{DefaultYear: 2018})
	assert.Equal(t, 2018, ds.DefaultYear)

	ds = dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{DefaultYear: 1999})
	assert.Equal(t, 2022, ds.DefaultYear)

	ds = dashboard.BuildDataset(domain.Inputs{}, dashboard.BuildOptions{})
	assert.Zero(t, ds.DefaultYear)
	assert.Empty(t, ds.Years)
	assert.NotNil(t, ds.Aliases)
}

func TestBuildDataset_TargetYears(t *testing.T) {
	ds := dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{TargetYears: []int{2018, 2022}})

	assert.Equal(t, []int{2018, 2022}, ds.Years)
}

func TestBuildDataset_VersionsDiffer(t *testing.T) {
	a := dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{})
	b := dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{})

	assert.NotEqual(t, a.Version, b.Version)
}

func TestDataset_ObservationsKeepSourceOrder(t *testing.T) {
	ds := dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{StandardizeCodes: true})

	var countries []string
	for _, o := range ds.Observations(2022) {
		countries = append(countries, o.Country)
	}
	assert.Equal(t, []string{"AT", "GR", "DE"}, countries)
	assert.Empty(t, ds.Observations(1990))
}

func TestDataset_CountrySeriesOrderedByYear(t *testing.T) {
	in := testInputs()
	in.Satisfaction[0], in.Satisfaction[2] = in.Satisfaction[2], in.Satisfaction[0]
	ds := dashboard.BuildDataset(in, dashboard.BuildOptions{})

	series := ds.CountrySeries("AT")
	require.Len(t, series, 3)
	assert.Equal(t, 2018, series[0].Year)
	assert.Equal(t, 2022, series[2].Year)
	assert.Equal(t, domain.Valid(10), series[2].IncomeGrowth)
}

func TestDataset_Lookup(t *testing.T) {
	ds := dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{})

	o, ok := ds.Lookup(" AT ", 2021)
	require.True(t, ok)
	assert.Equal(t, domain.Valid(7.8), o.LifeSatisfaction)

	_, ok = ds.Lookup("AT", 2019)
	assert.False(t, ok)
}

func TestDataset_ResolveAgainstYearSlice(t *testing.T) {
	raw := dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{})
	id, kind := raw.Resolve("GR", 2022)
	assert.Equal(t, "EL", id)
	assert.Equal(t, domain.MatchAlias, kind)

	std := dashboard.BuildDataset(testInputs(), dashboard.BuildOptions{StandardizeCodes: true})
	id, kind = std.Resolve("GR", 2022)
	assert.Equal(t, "GR", id)
	assert.Equal(t, domain.MatchDirect, kind)

	_, kind = std.Resolve("DE", 2018)
	assert.Equal(t, domain.MatchNone, kind)
	_, kind = std.Resolve("", 2022)
	assert.Equal(t, domain.MatchNone, kind)
}
