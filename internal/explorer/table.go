package explorer

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

var (
	// ErrTableNotFound is returned for unknown or evicted table ids.
	ErrTableNotFound = errors.New("table not found")
	// ErrUnknownDimension is returned when a view names a column the table lacks.
	ErrUnknownDimension = errors.New("unknown dimension")
	// ErrNoDimensions is returned for tables with only a label column.
	ErrNoDimensions = errors.New("table needs a label column and at least one dimension")
	// ErrUnknownRow is returned when a selection names a row out of range.
	ErrUnknownRow = errors.New("unknown row")
)

// Table is an uploaded CSV: the first column labels each row, every other
// column is a numeric dimension.
type Table struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	LabelColumn string    `json:"label_column"`
	Dimensions  []string  `json:"dimensions"`
	Rows        []Row     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Row is one table record. Cells keeps the uploaded text of the dimensions.
type Row struct {
	Label  string
	Values []domain.Metric
	Cells  []string
}

// Channels picks the dimensions driving the scatterplot.
type Channels struct {
	X    string `json:"x"`
	Y    string `json:"y"`
	Size string `json:"size"`
}

// ParseTable reads an uploaded CSV. Cells that do not parse as numbers are
// kept as invalid metrics rather than coerced to zero.
func ParseTable(name string, r io.Reader) (*Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN"}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse table: %w", df.Err)
	}

	names := df.Names()
	if len(names) < 2 {
		return nil, ErrNoDimensions
	}

	columns := make([][]string, len(names))
	for j, n := range names {
		col := df.Col(n)
		cells := make([]string, col.Len())
		for i := range cells {
			if e := col.Elem(i); !e.IsNA() {
				cells[i] = e.String()
			}
		}
		columns[j] = cells
	}

	t := &Table{
		ID:          uuid.NewString(),
		Name:        name,
		LabelColumn: names[0],
		Dimensions:  names[1:],
		Rows:        make([]Row, df.Nrow()),
		CreatedAt:   domain.Now(),
	}
	for i := range t.Rows {
		row := Row{
			Label:  columns[0][i],
			Values: make([]domain.Metric, len(t.Dimensions)),
			Cells:  make([]string, len(t.Dimensions)),
		}
		for j := range t.Dimensions {
			cell := columns[j+1][i]
			row.Cells[j] = cell
			row.Values[j] = domain.ParseMetric(cell)
		}
		t.Rows[i] = row
	}
	return t, nil
}

// DefaultChannels maps the first three dimensions onto x, y and size,
// reusing earlier ones when the table is narrower.
func (t *Table) DefaultChannels() Channels {
	d := t.Dimensions
	switch len(d) {
	case 0:
		return Channels{}
	case 1:
		return Channels{X: d[0], Y: d[0], Size: d[0]}
	case 2:
		return Channels{X: d[0], Y: d[1], Size: d[1]}
	default:
		return Channels{X: d[0], Y: d[1], Size: d[2]}
	}
}

func (t *Table) dimension(name string) (int, error) {
	for i, d := range t.Dimensions {
		if d == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
}

func (t *Table) column(j int) []domain.Metric {
	out := make([]domain.Metric, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[j]
	}
	return out
}
