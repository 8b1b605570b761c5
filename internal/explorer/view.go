package explorer

import (
	"slices"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

// Point is one row placed in the scatterplot. X, Y and Size are the raw
// values; the N-prefixed fields are scaled to [0, 1] by column extent.
type Point struct {
	Row      int           `json:"row"`
	Label    string        `json:"label"`
	X        domain.Metric `json:"x"`
	Y        domain.Metric `json:"y"`
	Size     domain.Metric `json:"size"`
	NX       domain.Metric `json:"nx"`
	NY       domain.Metric `json:"ny"`
	NSize    domain.Metric `json:"nsize"`
	Selected bool          `json:"selected"`
}

// RadarValue is one dimension reading of a selected row.
type RadarValue struct {
	Axis       string        `json:"axis"`
	Value      domain.Metric `json:"value"`
	Normalized domain.Metric `json:"normalized"`
}

// RadarSeries is one selected row across every dimension.
type RadarSeries struct {
	Row    int          `json:"row"`
	Label  string       `json:"label"`
	Values []RadarValue `json:"values"`
}

// Radar compares the selected rows. It is empty until a row is selected.
type Radar struct {
	Empty  bool          `json:"empty"`
	Axes   []string      `json:"axes"`
	Series []RadarSeries `json:"series"`
}

// Grid is the tabular rendering of the upload.
type Grid struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// View is everything the explorer page renders for one table.
type View struct {
	TableID  string         `json:"table_id"`
	Channels Channels       `json:"channels"`
	Points   []Point        `json:"points"`
	XDomain  *domain.Extent `json:"x_domain"`
	YDomain  *domain.Extent `json:"y_domain"`
	Selected []int          `json:"selected"`
	Radar    Radar          `json:"radar"`
	Grid     Grid           `json:"grid"`
}

// BuildView renders t for the chosen channels. Empty channel names fall
// back to the table defaults.
func BuildView(t *Table, selected []int, ch Channels) (View, error) {
	def := t.DefaultChannels()
	if ch.X == "" {
		ch.X = def.X
	}
	if ch.Y == "" {
		ch.Y = def.Y
	}
	if ch.Size == "" {
		ch.Size = def.Size
	}

	xi, err := t.dimension(ch.X)
	if err != nil {
		return View{}, err
	}
	yi, err := t.dimension(ch.Y)
	if err != nil {
		return View{}, err
	}
	si, err := t.dimension(ch.Size)
	if err != nil {
		return View{}, err
	}

	extents := make([]*domain.Extent, len(t.Dimensions))
	for j := range t.Dimensions {
		if e, ok := domain.ExtentOf(t.column(j)); ok {
			extents[j] = &e
		}
	}

	v := View{
		TableID:  t.ID,
		Channels: ch,
		Points:   make([]Point, len(t.Rows)),
		XDomain:  extents[xi],
		YDomain:  extents[yi],
		Selected: selected,
		Radar:    buildRadar(t, selected, extents),
		Grid:     buildGrid(t),
	}
	if v.Selected == nil {
		v.Selected = []int{}
	}
	for i, r := range t.Rows {
		v.Points[i] = Point{
			Row:      i,
			Label:    r.Label,
			X:        r.Values[xi],
			Y:        r.Values[yi],
			Size:     r.Values[si],
			NX:       scale(r.Values[xi], extents[xi]),
			NY:       scale(r.Values[yi], extents[yi]),
			NSize:    scale(r.Values[si], extents[si]),
			Selected: slices.Contains(selected, i),
		}
	}
	return v, nil
}

func buildRadar(t *Table, selected []int, extents []*domain.Extent) Radar {
	r := Radar{
		Empty:  len(selected) == 0,
		Axes:   slices.Clone(t.Dimensions),
		Series: make([]RadarSeries, 0, len(selected)),
	}
	for _, i := range selected {
		if i < 0 || i >= len(t.Rows) {
			continue
		}
		row := t.Rows[i]
		s := RadarSeries{Row: i, Label: row.Label, Values: make([]RadarValue, len(t.Dimensions))}
		for j, dim := range t.Dimensions {
			s.Values[j] = RadarValue{
				Axis:       dim,
				Value:      row.Values[j],
				Normalized: clamp(scale(row.Values[j], extents[j])),
			}
		}
		r.Series = append(r.Series, s)
	}
	return r
}

func buildGrid(t *Table) Grid {
	g := Grid{
		Columns: append([]string{t.LabelColumn}, t.Dimensions...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		g.Rows[i] = append([]string{r.Label}, r.Cells...)
	}
	return g
}

func scale(m domain.Metric, e *domain.Extent) domain.Metric {
	if e == nil || !m.IsValid() {
		return domain.Invalid()
	}
	return domain.Normalize(m, *e)
}

func clamp(m domain.Metric) domain.Metric {
	v, ok := m.Float()
	if !ok {
		return m
	}
	return domain.Valid(min(1, max(0, v)))
}
