package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

// ErrMissingColumn is returned when a required column cannot be detected.
var ErrMissingColumn = errors.New("missing column")

// Header names are matched case-insensitively in the listed order.
var (
	countryColumns = []string{"country", "geo", `geo\time`, `geo\time_period`}
	yearColumns    = []string{"year", "time", "time_period"}

	// SatisfactionColumns names the value column of a life-satisfaction table.
	SatisfactionColumns = []string{"life_satisfaction", "satisfaction", "values", "value", "obs_value"}
	// IncomeColumns names the value column of a median-income table.
	IncomeColumns = []string{"median_income", "income", "values", "value", "obs_value"}
)

// missingMarkers are cell contents treated as absent. ":" is Eurostat's marker.
var missingMarkers = []string{"", "NA", "NaN", ":", "<nil>"}

var yearHeader = regexp.MustCompile(`^\s*\d{4}\s*$`)

// DecodeRows reads a country/year/value CSV. Long tables need a country, a
// year and one of valueColumns; wide tables with one column per year are
// melted into long rows. Cells are returned verbatim so the joiner decides
// what is parseable.
func DecodeRows(r io.Reader, valueColumns []string) ([]domain.RawRow, error) {
	df := readStrings(r)
	if df.Err != nil {
		return nil, fmt.Errorf("decode csv: %w", df.Err)
	}

	names := df.Names()
	country, ok := findColumn(names, countryColumns)
	if !ok {
		return nil, fmt.Errorf("%w: country", ErrMissingColumn)
	}

	if year, ok := findColumn(names, yearColumns); ok {
		value, ok := findColumn(names, valueColumns)
		if !ok {
			return nil, fmt.Errorf("%w: value (one of %s)", ErrMissingColumn, strings.Join(valueColumns, ", "))
		}
		return longRows(df, country, year, value), nil
	}

	if years := wideYearColumns(names); len(years) > 0 {
		return wideRows(df, country, years), nil
	}
	return nil, fmt.Errorf("%w: year", ErrMissingColumn)
}

// DecodeSatisfaction reads a life-satisfaction table.
func DecodeSatisfaction(data []byte) ([]domain.RawRow, error) {
	return DecodeRows(bytes.NewReader(data), SatisfactionColumns)
}

// DecodeIncome reads a median-income table.
func DecodeIncome(data []byte) ([]domain.RawRow, error) {
	return DecodeRows(bytes.NewReader(data), IncomeColumns)
}

func readStrings(r io.Reader) dataframe.DataFrame {
	return dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingMarkers),
		dataframe.WithLazyQuotes(true),
	)
}

func findColumn(names, candidates []string) (string, bool) {
	for _, want := range candidates {
		for _, name := range names {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				return name, true
			}
		}
	}
	return "", false
}

func wideYearColumns(names []string) []string {
	var years []string
	for _, name := range names {
		if yearHeader.MatchString(name) {
			years = append(years, name)
		}
	}
	return years
}

func longRows(df dataframe.DataFrame, country, year, value string) []domain.RawRow {
	countries := cells(df.Col(country))
	years := cells(df.Col(year))
	values := cells(df.Col(value))

	rows := make([]domain.RawRow, len(countries))
	for i := range countries {
		rows[i] = domain.RawRow{Country: countries[i], Year: years[i], Value: values[i]}
	}
	return rows
}

func wideRows(df dataframe.DataFrame, country string, yearCols []string) []domain.RawRow {
	countries := cells(df.Col(country))
	values := make([][]string, len(yearCols))
	for j, col := range yearCols {
		values[j] = cells(df.Col(col))
	}

	rows := make([]domain.RawRow, 0, len(countries)*len(yearCols))
	for i := range countries {
		for j, col := range yearCols {
			rows = append(rows, domain.RawRow{
				Country: countries[i],
				Year:    strings.TrimSpace(col),
				Value:   values[j][i],
			})
		}
	}
	return rows
}

// cells flattens a string series, mapping missing markers to "".
func cells(s series.Series) []string {
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out
}
