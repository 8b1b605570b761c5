// Package chart renders dashboard views as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/eurolife-dashboard/internal/dashboard"
	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
)

// ErrEmptyView is returned when a view has no plottable values.
var ErrEmptyView = errors.New("nothing to chart")

const (
	width  = 960
	height = 540
)

// RenderTrends draws one line of life satisfaction over the years per
// selected country.
func RenderTrends(w io.Writer, v dashboard.TrendsView) error {
	series := make([]gochart.Series, 0, len(v.Series))
	for i, s := range v.Series {
		xs, ys := make([]float64, 0, len(s.Points)), make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			y, ok := p.LifeSatisfaction.Float()
			if !ok {
				continue
			}
			xs = append(xs, float64(p.Year))
			ys = append(ys, y)
		}
		if len(xs) == 0 {
			continue
		}
		col := gochart.GetDefaultColor(i)
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Country,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}
	if len(series) == 0 {
		return ErrEmptyView
	}

	ch := gochart.Chart{
		Title:      "Life satisfaction over time",
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: "Year", Ticks: yearTicks(v.YearDomain)},
		YAxis:      gochart.YAxis{Name: "Life satisfaction", Range: axisRange(v.YDomain)},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return render(w, ch)
}

// RenderScatter draws median income against life satisfaction for the view
// year. Selected countries are drawn larger and in a separate colour.
func RenderScatter(w io.Writer, v dashboard.ScatterView) error {
	if len(v.Points) == 0 {
		return ErrEmptyView
	}

	others := gochart.ContinuousSeries{Name: "Countries", Style: dotStyle(gochart.ColorAlternateGray, 5)}
	selected := gochart.ContinuousSeries{Name: "Selected", Style: dotStyle(gochart.ColorBlue, 9)}
	for _, p := range v.Points {
		x, _ := p.MedianIncome.Float()
		y, _ := p.LifeSatisfaction.Float()
		target := &others
		if p.Selected {
			target = &selected
		}
		target.XValues = append(target.XValues, x)
		target.YValues = append(target.YValues, y)
	}

	series := make([]gochart.Series, 0, 2)
	for _, s := range []gochart.ContinuousSeries{others, selected} {
		if len(s.XValues) > 0 {
			series = append(series, s)
		}
	}

	ch := gochart.Chart{
		Title:      fmt.Sprintf("Income and life satisfaction, %d", v.Year),
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: "Median income", Range: axisRange(v.XDomain), ValueFormatter: gochart.IntValueFormatter},
		YAxis:      gochart.YAxis{Name: "Life satisfaction", Range: axisRange(v.YDomain)},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return render(w, ch)
}

func render(w io.Writer, ch gochart.Chart) error {
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func dotStyle(col drawing.Color, size float64) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotColor:    col,
		DotWidth:    size,
	}
}

// axisRange widens a single-valued extent so the axis has a non-zero span.
// A nil extent yields a nil Range and the axis autoscales.
func axisRange(e *domain.Extent) gochart.Range {
	if e == nil {
		return nil
	}
	lo, hi := e.Min, e.Max
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

// yearTicks labels every year in the domain, padding a single year by one
// on each side.
func yearTicks(span [2]int) []gochart.Tick {
	lo, hi := span[0], span[1]
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	ticks := make([]gochart.Tick, 0, hi-lo+1)
	for y := lo; y <= hi; y++ {
		ticks = append(ticks, gochart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return ticks
}
