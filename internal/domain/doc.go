// Package domain models the EuroLife dataset: Eurostat life-satisfaction and
// median-income tables joined per country and year, and the reconciliation of
// their country identifiers with the codes carried by map boundary data.
//
// # Data Sources
//
// Two CSV tables keyed by (country, year):
//
//	country,year,life_satisfaction   mean self-reported score, 0–10
//	country,year,median_income       median equivalised net income, EUR
//
// and one GeoJSON FeatureCollection whose features carry the ISO-3166 alpha-2
// code in properties.id, plus optional "name" / "na" display names.
//
// # Identifier Conventions
//
// Eurostat is not consistent with ISO-3166. Greece is published as "EL" and
// the United Kingdom as "UK", while boundary files use "GR" and "GB". Some
// tables use ISO alpha-3 codes or English names instead. The resolver maps a
// boundary code to whichever identifier the table actually uses:
//
//	direct match     "FR" in {"FR", ...}          → "FR"
//	alias, in order  "GR" in {"EL", ...}          → "EL"
//	no match         "XK" with no Kosovo row      → absent, drawn as "no data"
//
// The alias table ships embedded (aliases.yaml) and is loaded once.
//
// # Missing Values
//
// Every statistic is a [Metric]. A malformed cell and a division by zero are
// [MetricInvalid]; the year-over-year fields of a country's first year are
// [MetricUnset]. Neither is ever zero, and neither takes part in extents, so
// colour and size scales are computed from real observations only.
//
// # Derived Metrics
//
//	income_per_satisfaction = income / satisfaction
//	income_growth           = (income_n − income_n−1) / income_n−1 × 100
//	satisfaction_change     = satisfaction_n − satisfaction_n−1
//
// "n−1" is the previous year present for the same country, not necessarily
// the previous calendar year: Eurostat series have gaps (2013, 2018, 2021…).
package domain
