package dashboard

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

// BuildOptions controls how raw inputs become a Dataset.
type BuildOptions struct {
	StandardizeCodes bool
	TargetYears      []int
	DefaultYear      int // 0 picks the latest year
}

// CleaningReport records what preprocessing removed from each table.
type CleaningReport struct {
	Satisfaction domain.CleanReport `json:"satisfaction"`
	Income       domain.CleanReport `json:"income"`
}

// Dataset is an installed, immutable snapshot of the dashboard data.
type Dataset struct {
	Version     string
	LoadedAt    time.Time
	Combined    domain.CombinedDataset
	Cleaning    CleaningReport
	Years       []int
	DefaultYear int
	Features    []domain.GeoFeature
	Aliases     *domain.AliasTable

	resolver  *domain.Resolver
	byKey     map[domain.Key]int
	byYear    map[int][]int
	byCountry map[string][]int
	ids       map[int]domain.IdentifierSet
}

// BuildDataset cleans, joins and indexes one set of inputs.
func BuildDataset(in domain.Inputs, opts BuildOptions) *Dataset {
	sat, satReport := domain.Clean(in.Satisfaction, domain.CleanOptions{
		StandardizeCodes: opts.StandardizeCodes,
		TargetYears:      opts.TargetYears,
		Range:            domain.SatisfactionRange,
	})
	inc, incReport := domain.Clean(in.Income, domain.CleanOptions{
		StandardizeCodes: opts.StandardizeCodes,
		TargetYears:      opts.TargetYears,
		Range:            domain.IncomeRange,
	})

	aliases := in.Aliases
	if aliases == nil {
		aliases = domain.DefaultAliasTable()
	}

	ds := &Dataset{
		Version:   uuid.NewString(),
		LoadedAt:  domain.Now(),
		Combined:  domain.Join(sat, inc),
		Cleaning:  CleaningReport{Satisfaction: satReport, Income: incReport},
		Features:  in.Features,
		Aliases:   aliases,
		resolver:  domain.NewResolver(aliases),
		byKey:     make(map[domain.Key]int),
		byYear:    make(map[int][]int),
		byCountry: make(map[string][]int),
		ids:       make(map[int]domain.IdentifierSet),
	}

	for i, o := range ds.Combined.Observations {
		ds.byKey[o.Key()] = i
		ds.byYear[o.Year] = append(ds.byYear[o.Year], i)
		ds.byCountry[o.Country] = append(ds.byCountry[o.Country], i)
		if ds.ids[o.Year] == nil {
			ds.ids[o.Year] = domain.IdentifierSet{}
		}
		ds.ids[o.Year][o.Country] = struct{}{}
	}
	for y := range ds.byYear {
		ds.Years = append(ds.Years, y)
	}
	slices.Sort(ds.Years)
	ds.DefaultYear = ds.pickYear(opts.DefaultYear)

	return ds
}

// pickYear returns preferred when the dataset has it, else the latest year.
func (d *Dataset) pickYear(preferred int) int {
	if d.HasYear(preferred) {
		return preferred
	}
	if len(d.Years) == 0 {
		return 0
	}
	return d.Years[len(d.Years)-1]
}

// HasYear reports whether any observation exists for year.
func (d *Dataset) HasYear(year int) bool {
	_, ok := d.byYear[year]
	return ok
}

// HasCountry reports whether any observation exists for country.
func (d *Dataset) HasCountry(country string) bool {
	_, ok := d.byCountry[country]
	return ok
}

// Observations returns the observations of one year in dataset order.
func (d *Dataset) Observations(year int) []domain.Observation {
	idx := d.byYear[year]
	out := make([]domain.Observation, len(idx))
	for i, j := range idx {
		out[i] = d.Combined.Observations[j]
	}
	return out
}

// CountrySeries returns every observation of country ordered by year.
func (d *Dataset) CountrySeries(country string) []domain.Observation {
	idx := d.byCountry[country]
	out := make([]domain.Observation, len(idx))
	for i, j := range idx {
		out[i] = d.Combined.Observations[j]
	}
	slices.SortStableFunc(out, func(a, b domain.Observation) int { return a.Year - b.Year })
	return out
}

// Lookup finds the observation for a country-year key.
func (d *Dataset) Lookup(country string, year int) (domain.Observation, bool) {
	i, ok := d.byKey[domain.Key{Country: domain.NormalizeCountry(country), Year: year}]
	if !ok {
		return domain.Observation{}, false
	}
	return d.Combined.Observations[i], true
}

// Identifiers returns the country identifiers present in one year's slice.
func (d *Dataset) Identifiers(year int) domain.IdentifierSet {
	if ids, ok := d.ids[year]; ok {
		return ids
	}
	return domain.IdentifierSet{}
}

// Resolve maps a boundary code onto the identifier used by the year's slice.
func (d *Dataset) Resolve(code string, year int) (string, domain.MatchKind) {
	return d.resolver.ResolveKind(code, d.Identifiers(year))
}
