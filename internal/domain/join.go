package domain

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Join builds the CombinedDataset from the satisfaction and income tables.
//
// Both sides are normalised (trimmed country, integer year) and inner-joined
// on exact (country, year) equality. Rows with an empty country or an
// unparseable year cannot be keyed and are dropped. When a table repeats a
// key, the first row wins. The derived-metrics pass runs once before return.
func Join(satisfaction, income []RawRow) CombinedDataset {
	report := JoinReport{
		SatisfactionRows: len(satisfaction),
		IncomeRows:       len(income),
	}

	incomeByKey := make(map[Key]Metric, len(income))
	matchedIncome := make(map[Key]bool, len(income))
	for _, row := range income {
		key, ok := normalizeKey(row, &report)
		if !ok {
			continue
		}
		if _, dup := incomeByKey[key]; dup {
			report.DuplicateKeys++
			continue
		}
		incomeByKey[key] = ParseMetric(row.Value)
	}

	seen := make(map[Key]bool, len(satisfaction))
	observations := make([]Observation, 0, min(len(satisfaction), len(incomeByKey)))
	for _, row := range satisfaction {
		key, ok := normalizeKey(row, &report)
		if !ok {
			continue
		}
		if seen[key] {
			report.DuplicateKeys++
			continue
		}
		seen[key] = true

		inc, found := incomeByKey[key]
		if !found {
			report.UnmatchedSatisfaction++
			continue
		}
		matchedIncome[key] = true

		sat := ParseMetric(row.Value)
		ratio := Div(inc, sat)
		if !ratio.IsValid() {
			report.InvalidRatio++
		}
		observations = append(observations, Observation{
			Country:               key.Country,
			Year:                  key.Year,
			LifeSatisfaction:      sat,
			MedianIncome:          inc,
			IncomePerSatisfaction: ratio,
		})
	}
	report.UnmatchedIncome = len(incomeByKey) - len(matchedIncome)
	report.Joined = len(observations)

	DeriveMetrics(observations)

	return CombinedDataset{
		Observations: observations,
		Report:       report,
		BuiltAt:      clock.Now(),
	}
}

// DeriveMetrics fills IncomeGrowth and SatisfactionChange in place. Rows are
// grouped by country and ordered by year with a stable sort over indices, so
// the caller's slice order is left untouched. The first year of every
// country keeps both fields unset.
func DeriveMetrics(observations []Observation) {
	groups := make(map[string][]int)
	var order []string
	for i, o := range observations {
		if _, ok := groups[o.Country]; !ok {
			order = append(order, o.Country)
		}
		groups[o.Country] = append(groups[o.Country], i)
	}

	for _, country := range order {
		idx := groups[country]
		slices.SortStableFunc(idx, func(a, b int) int {
			return observations[a].Year - observations[b].Year
		})

		observations[idx[0]].IncomeGrowth = Unset()
		observations[idx[0]].SatisfactionChange = Unset()
		for i := 1; i < len(idx); i++ {
			prev := observations[idx[i-1]]
			cur := &observations[idx[i]]
			cur.IncomeGrowth = PercentChange(prev.MedianIncome, cur.MedianIncome)
			cur.SatisfactionChange = Sub(cur.LifeSatisfaction, prev.LifeSatisfaction)
		}
	}
}

func normalizeKey(row RawRow, report *JoinReport) (Key, bool) {
	country := NormalizeCountry(row.Country)
	if country == "" {
		report.EmptyCountry++
		return Key{}, false
	}
	year, ok := ParseYear(row.Year)
	if !ok {
		report.InvalidYear++
		return Key{}, false
	}
	return Key{Country: country, Year: year}, true
}

// NormalizeCountry trims surrounding whitespace from a country identifier.
func NormalizeCountry(s string) string {
	return strings.TrimSpace(s)
}

// Bounds of an accepted year.
const (
	MinYear = 1
	MaxYear = 9999
)

// ParseYear accepts integral years in [MinYear, MaxYear] written as "2022",
// " 2022 " or "2022.0".
func ParseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		if y < MinYear || y > MaxYear {
			return 0, false
		}
		return y, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < MinYear || f > MaxYear {
		return 0, false
	}
	return int(f), true
}
