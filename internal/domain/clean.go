package domain

import (
	"slices"
	"strings"
)

// codeStandardization rewrites Eurostat-specific codes to ISO-3166.
var codeStandardization = map[string]string{
	"EL": "GR",
	"UK": "GB",
}

// StandardizeCode maps Eurostat country codes onto their ISO-3166 form and
// trims whitespace. Other identifiers pass through unchanged.
func StandardizeCode(code string) string {
	code = NormalizeCountry(code)
	if iso, ok := codeStandardization[code]; ok {
		return iso
	}
	return code
}

// ValueRange bounds acceptable values of a source column. A nil bound is open.
type ValueRange struct {
	Min          *float64
	Max          *float64
	ExclusiveMin bool
}

// Contains reports whether v lies in the range.
func (r ValueRange) Contains(v float64) bool {
	if r.Min != nil {
		if r.ExclusiveMin && v <= *r.Min {
			return false
		}
		if !r.ExclusiveMin && v < *r.Min {
			return false
		}
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

func bound(v float64) *float64 { return &v }

var (
	// SatisfactionRange is the 0–10 survey scale.
	SatisfactionRange = ValueRange{Min: bound(0), Max: bound(10)}
	// IncomeRange rejects zero and negative incomes.
	IncomeRange = ValueRange{Min: bound(0), ExclusiveMin: true}
)

// CleanOptions configures Clean.
type CleanOptions struct {
	StandardizeCodes bool
	TargetYears      []int // empty keeps every year
	Range            ValueRange
}

// CleanReport counts rows removed by Clean.
type CleanReport struct {
	Input        int `json:"input" yaml:"input"`
	Kept         int `json:"kept" yaml:"kept"`
	EmptyCountry int `json:"empty_country" yaml:"empty_country"`
	OutsideYears int `json:"outside_years" yaml:"outside_years"`
	OutOfRange   int `json:"out_of_range" yaml:"out_of_range"`
}

// Clean applies the preprocessing rules to one source table: rows without a
// country are dropped, codes are optionally standardised, rows outside the
// target years are dropped and so are values outside the accepted range.
// Unparseable values and years are kept; the joiner marks or drops them.
func Clean(rows []RawRow, opts CleanOptions) ([]RawRow, CleanReport) {
	report := CleanReport{Input: len(rows)}
	out := make([]RawRow, 0, len(rows))
	for _, row := range rows {
		country := NormalizeCountry(row.Country)
		if country == "" {
			report.EmptyCountry++
			continue
		}
		if opts.StandardizeCodes {
			country = StandardizeCode(country)
		}
		if len(opts.TargetYears) > 0 {
			year, ok := ParseYear(row.Year)
			if ok && !slices.Contains(opts.TargetYears, year) {
				report.OutsideYears++
				continue
			}
		}
		if v, ok := ParseMetric(row.Value).Float(); ok && !opts.Range.Contains(v) {
			report.OutOfRange++
			continue
		}
		out = append(out, RawRow{Country: country, Year: row.Year, Value: row.Value})
	}
	report.Kept = len(out)
	return out, report
}

// ConsistencyReport compares the country and year coverage of two tables.
type ConsistencyReport struct {
	SatisfactionCountries int      `json:"satisfaction_countries" yaml:"satisfaction_countries"`
	IncomeCountries       int      `json:"income_countries" yaml:"income_countries"`
	CommonCountries       []string `json:"common_countries" yaml:"common_countries"`
	OnlySatisfaction      []string `json:"only_satisfaction,omitempty" yaml:"only_satisfaction,omitempty"`
	OnlyIncome            []string `json:"only_income,omitempty" yaml:"only_income,omitempty"`
	SatisfactionYears     []int    `json:"satisfaction_years" yaml:"satisfaction_years"`
	IncomeYears           []int    `json:"income_years" yaml:"income_years"`
	CommonYears           []int    `json:"common_years" yaml:"common_years"`
}

// Passes reports whether coverage meets the given thresholds.
func (r ConsistencyReport) Passes(minCountries, minYears int) bool {
	return len(r.CommonCountries) >= minCountries && len(r.CommonYears) >= minYears
}

// ValidateConsistency computes the coverage overlap of the two tables.
func ValidateConsistency(satisfaction, income []RawRow) ConsistencyReport {
	satCountries, satYears := coverage(satisfaction)
	incCountries, incYears := coverage(income)

	r := ConsistencyReport{
		SatisfactionCountries: len(satCountries),
		IncomeCountries:       len(incCountries),
		SatisfactionYears:     sortedKeys(satYears),
		IncomeYears:           sortedKeys(incYears),
	}
	for _, c := range sortedKeys(satCountries) {
		if incCountries[c] {
			r.CommonCountries = append(r.CommonCountries, c)
		} else {
			r.OnlySatisfaction = append(r.OnlySatisfaction, c)
		}
	}
	for _, c := range sortedKeys(incCountries) {
		if !satCountries[c] {
			r.OnlyIncome = append(r.OnlyIncome, c)
		}
	}
	for _, y := range r.SatisfactionYears {
		if incYears[y] {
			r.CommonYears = append(r.CommonYears, y)
		}
	}
	return r
}

func coverage(rows []RawRow) (map[string]bool, map[int]bool) {
	countries := make(map[string]bool)
	years := make(map[int]bool)
	for _, row := range rows {
		if c := strings.TrimSpace(row.Country); c != "" {
			countries[c] = true
		}
		if y, ok := ParseYear(row.Year); ok {
			years[y] = true
		}
	}
	return countries, years
}

func sortedKeys[K string | int](m map[K]bool) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
