package dashboard

import (
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

// Placeholder messages for comparison views with nothing selected.
const (
	RadarEmptyMessage  = "Select countries in the scatterplot to compare"
	TrendsEmptyMessage = "Select countries to view trends"
)

// RadarAxis names one radar dimension and the observation field behind it.
type RadarAxis struct {
	Label string
	Field func(domain.Observation) domain.Metric
}

// RadarAxes are the three comparison dimensions, clockwise from the top.
var RadarAxes = []RadarAxis{
	{Label: "Life Satisfaction", Field: domain.LifeSatisfactionOf},
	{Label: "Income Level", Field: domain.MedianIncomeOf},
	{Label: "Income Efficiency", Field: domain.IncomePerSatisfactionOf},
}

// YearsView lists the selectable years.
type YearsView struct {
	Years    []int `json:"years"`
	Default  int   `json:"default"`
	Selected int   `json:"selected"`
}

// ScatterPoint is one country in the income/satisfaction scatterplot.
type ScatterPoint struct {
	Country               string        `json:"country"`
	LifeSatisfaction      domain.Metric `json:"life_satisfaction"`
	MedianIncome          domain.Metric `json:"median_income"`
	IncomePerSatisfaction domain.Metric `json:"income_per_satisfaction"`
	Selected              bool          `json:"selected"`
}

// ScatterView positions every plottable country of the selected year.
// Countries lacking a valid x or y value are listed in Unplotted.
type ScatterView struct {
	Year        int            `json:"year"`
	Points      []ScatterPoint `json:"points"`
	Unplotted   []string       `json:"unplotted"`
	XDomain     *domain.Extent `json:"x_domain"` // income, this year
	YDomain     *domain.Extent `json:"y_domain"` // satisfaction, this year
	ColorDomain *domain.Extent `json:"color_domain"`
	SizeDomain  *domain.Extent `json:"size_domain"`
}

// RadarValue is one axis reading of a radar series.
type RadarValue struct {
	Axis       string        `json:"axis"`
	Value      domain.Metric `json:"value"`
	Normalized domain.Metric `json:"normalized"`
}

// RadarSeries is one selected country's polygon.
type RadarSeries struct {
	Country string       `json:"country"`
	Values  []RadarValue `json:"values"`
}

// RadarView compares the selected countries for the selected year.
type RadarView struct {
	Year    int           `json:"year"`
	Empty   bool          `json:"empty"`
	Message string        `json:"message,omitempty"`
	Axes    []string      `json:"axes"`
	Series  []RadarSeries `json:"series"`
}

// MapRegion is one boundary feature annotated with its resolved value.
type MapRegion struct {
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Identifier string            `json:"identifier,omitempty"`
	Match      domain.MatchKind  `json:"match"`
	Value      domain.Metric     `json:"value"`
	NoData     bool              `json:"no_data"`
	Selected   bool              `json:"selected"`
	Bounds     [2][2]float64     `json:"bounds"`
	Geometry   *geojson.Geometry `json:"geometry,omitempty"`
}

// MapView is the choropleth of life satisfaction for the selected year.
type MapView struct {
	Year        int            `json:"year"`
	Regions     []MapRegion    `json:"regions"`
	ColorDomain *domain.Extent `json:"color_domain"`
}

// TrendPoint is one year of a country's trend line.
type TrendPoint struct {
	Year               int           `json:"year"`
	LifeSatisfaction   domain.Metric `json:"life_satisfaction"`
	MedianIncome       domain.Metric `json:"median_income"`
	IncomeGrowth       domain.Metric `json:"income_growth"`
	SatisfactionChange domain.Metric `json:"satisfaction_change"`
}

// TrendSeries is one selected country's history.
type TrendSeries struct {
	Country string       `json:"country"`
	Points  []TrendPoint `json:"points"`
}

// TrendsView shows satisfaction over time for the selected countries.
type TrendsView struct {
	Empty      bool           `json:"empty"`
	Message    string         `json:"message,omitempty"`
	YearDomain [2]int         `json:"year_domain"`
	YDomain    *domain.Extent `json:"y_domain"`
	Series     []TrendSeries  `json:"series"`
}

// BuildYears lists the dataset years and the session's current one.
func BuildYears(ds *Dataset, s Session) YearsView {
	years := ds.Years
	if years == nil {
		years = []int{}
	}
	return YearsView{Years: years, Default: ds.DefaultYear, Selected: s.Year}
}

// BuildScatter assembles the scatterplot for the session year.
func BuildScatter(ds *Dataset, s Session) ScatterView {
	selected := domain.NewSelection(0, s.Selected...)
	obs := ds.Observations(s.Year)

	v := ScatterView{
		Year:        s.Year,
		Points:      make([]ScatterPoint, 0, len(obs)),
		Unplotted:   []string{},
		XDomain:     extentPtr(domain.ObservationExtent(obs, domain.MedianIncomeOf)),
		YDomain:     extentPtr(domain.ObservationExtent(obs, domain.LifeSatisfactionOf)),
		ColorDomain: extentPtr(domain.ObservationExtent(ds.Combined.Observations, domain.LifeSatisfactionOf)),
		SizeDomain:  extentPtr(domain.ObservationExtent(ds.Combined.Observations, domain.MedianIncomeOf)),
	}
	for _, o := range obs {
		if !o.LifeSatisfaction.IsValid() || !o.MedianIncome.IsValid() {
			v.Unplotted = append(v.Unplotted, o.Country)
			continue
		}
		v.Points = append(v.Points, ScatterPoint{
			Country:               o.Country,
			LifeSatisfaction:      o.LifeSatisfaction,
			MedianIncome:          o.MedianIncome,
			IncomePerSatisfaction: o.IncomePerSatisfaction,
			Selected:              selected.Has(o.Country),
		})
	}
	return v
}

// BuildRadar compares the selected countries on every radar axis. Values
// are normalised against the extent of the whole dataset so polygons stay
// comparable across years. Selected countries without data this year are
// left out.
func BuildRadar(ds *Dataset, s Session) RadarView {
	v := RadarView{
		Year:   s.Year,
		Axes:   make([]string, len(RadarAxes)),
		Series: []RadarSeries{},
	}
	for i, a := range RadarAxes {
		v.Axes[i] = a.Label
	}
	if len(s.Selected) == 0 {
		v.Empty = true
		v.Message = RadarEmptyMessage
		return v
	}

	extents := make([]*domain.Extent, len(RadarAxes))
	for i, a := range RadarAxes {
		extents[i] = extentPtr(domain.ObservationExtent(ds.Combined.Observations, a.Field))
	}

	for _, country := range s.Selected {
		o, ok := ds.Lookup(country, s.Year)
		if !ok {
			continue
		}
		series := RadarSeries{Country: country, Values: make([]RadarValue, len(RadarAxes))}
		for i, a := range RadarAxes {
			raw := a.Field(o)
			norm := domain.Invalid()
			if extents[i] != nil {
				norm = domain.Normalize(raw, *extents[i])
			}
			series.Values[i] = RadarValue{Axis: a.Label, Value: raw, Normalized: norm}
		}
		v.Series = append(v.Series, series)
	}
	return v
}

// BuildMap resolves every boundary feature against the session year.
// Features that resolve to nothing, or to a country without a valid
// satisfaction value, are flagged NoData rather than coloured.
func BuildMap(ds *Dataset, s Session, withGeometry bool) MapView {
	obs := ds.Observations(s.Year)
	selected := domain.NewSelection(0, s.Selected...)

	v := MapView{
		Year:        s.Year,
		Regions:     make([]MapRegion, 0, len(ds.Features)),
		ColorDomain: extentPtr(domain.ObservationExtent(obs, domain.LifeSatisfactionOf)),
	}
	for _, f := range ds.Features {
		id, kind := ds.Resolve(f.Code, s.Year)
		r := MapRegion{
			Code:       f.Code,
			Name:       f.DisplayName(),
			Identifier: id,
			Match:      kind,
			Value:      domain.Unset(),
			NoData:     true,
		}
		if kind != domain.MatchNone {
			if o, ok := ds.Lookup(id, s.Year); ok {
				r.Value = o.LifeSatisfaction
				r.NoData = !o.LifeSatisfaction.IsValid()
			}
			r.Selected = selected.Has(id)
		}
		b := f.Bound()
		r.Bounds = [2][2]float64{{b.Min[0], b.Min[1]}, {b.Max[0], b.Max[1]}}
		if withGeometry && f.Geometry != nil {
			r.Geometry = geojson.NewGeometry(f.Geometry)
		}
		v.Regions = append(v.Regions, r)
	}
	return v
}

// BuildTrends collects the year-ordered history of each selected country.
func BuildTrends(ds *Dataset, s Session) TrendsView {
	v := TrendsView{
		YDomain: extentPtr(domain.ObservationExtent(ds.Combined.Observations, domain.LifeSatisfactionOf)),
		Series:  []TrendSeries{},
	}
	if len(ds.Years) > 0 {
		v.YearDomain = [2]int{ds.Years[0], ds.Years[len(ds.Years)-1]}
	}
	if len(s.Selected) == 0 {
		v.Empty = true
		v.Message = TrendsEmptyMessage
		return v
	}

	for _, country := range s.Selected {
		history := ds.CountrySeries(country)
		series := TrendSeries{Country: country, Points: make([]TrendPoint, len(history))}
		for i, o := range history {
			series.Points[i] = TrendPoint{
				Year:               o.Year,
				LifeSatisfaction:   o.LifeSatisfaction,
				MedianIncome:       o.MedianIncome,
				IncomeGrowth:       o.IncomeGrowth,
				SatisfactionChange: o.SatisfactionChange,
			}
		}
		v.Series = append(v.Series, series)
	}
	return v
}

func extentPtr(e domain.Extent, ok bool) *domain.Extent {
	if !ok {
		return nil
	}
	return &e
}
