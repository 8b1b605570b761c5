package domain

import "time"

// RawRow is one row of a statistical source table before normalisation.
// Year stays a string because sources disagree on "2022", "2022.0" and 2022.
type RawRow struct {
	Country string
	Year    string
	Value   string
}

// Observation is one joined country-year record.
type Observation struct {
	Country          string `json:"country" yaml:"country"`
	Year             int    `json:"year" yaml:"year"`
	LifeSatisfaction Metric `json:"life_satisfaction" yaml:"life_satisfaction"`
	MedianIncome     Metric `json:"median_income" yaml:"median_income"`

	// Derived fields.
	IncomePerSatisfaction Metric `json:"income_per_satisfaction" yaml:"income_per_satisfaction"`
	IncomeGrowth          Metric `json:"income_growth" yaml:"income_growth"`             // percent vs prior year
	SatisfactionChange    Metric `json:"satisfaction_change" yaml:"satisfaction_change"` // absolute vs prior year
}

// Key identifies an observation within a CombinedDataset.
type Key struct {
	Country string
	Year    int
}

// Key returns the join key of the observation.
func (o Observation) Key() Key {
	return Key{Country: o.Country, Year: o.Year}
}

// JoinReport counts what the joiner dropped and why.
type JoinReport struct {
	SatisfactionRows int `json:"satisfaction_rows" yaml:"satisfaction_rows"`
	IncomeRows       int `json:"income_rows" yaml:"income_rows"`
	Joined           int `json:"joined" yaml:"joined"`

	InvalidYear           int `json:"invalid_year" yaml:"invalid_year"`
	EmptyCountry          int `json:"empty_country" yaml:"empty_country"`
	DuplicateKeys         int `json:"duplicate_keys" yaml:"duplicate_keys"`
	UnmatchedSatisfaction int `json:"unmatched_satisfaction" yaml:"unmatched_satisfaction"`
	UnmatchedIncome       int `json:"unmatched_income" yaml:"unmatched_income"`
	InvalidRatio          int `json:"invalid_income_per_satisfaction" yaml:"invalid_income_per_satisfaction"`
}

// CombinedDataset is the inner join of the satisfaction and income tables
// plus derived metrics. It is built once per load and treated as read-only.
type CombinedDataset struct {
	Observations []Observation `json:"observations" yaml:"observations"`
	Report       JoinReport    `json:"report" yaml:"report"`
	BuiltAt      time.Time     `json:"built_at" yaml:"built_at"`
}

// Len returns the number of observations.
func (d *CombinedDataset) Len() int { return len(d.Observations) }
