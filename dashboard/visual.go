package dashboard

import (
	"errors"
	"fmt"

	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/plot"
)

type Kind string

const (
	KindLine          Kind = "line"
	KindCategoryLine  Kind = "category-line"
	KindColumn        Kind = "column"
	KindHorizontalBar Kind = "hbar"
	KindPie           Kind = "pie"
	KindTreeMap       Kind = "treemap"
	KindScatter       Kind = "scatter"
	KindRadar         Kind = "radar"
	KindHeatMap       Kind = "heatmap"
	KindDensity       Kind = "density"
)

// ErrNoImage is returned for visuals that only exist as interactive charts.
var ErrNoImage = errors.New("visual has no image rendering")

// Visual is one chart of a tab: what to aggregate and how to draw it.
type Visual struct {
	ID       string
	Title    string
	Kind     Kind
	Category string
	Group    string   // second dimension of radar and heat maps
	Measure  string   // empty counts rows
	Measures []string // scatter axes, then point size
	TopN     int
	MinTopN  int
	MaxTopN  int
	Order    aggregate.Order
	Period   aggregate.Period
}

// WithTopN returns v limited to n categories, clamped to the visual's
// allowed range. Visuals without top-N ignore it.
func (v Visual) WithTopN(n int) Visual {
	if v.TopN == 0 || n <= 0 {
		return v
	}
	if v.MinTopN > 0 && n < v.MinTopN {
		n = v.MinTopN
	}
	if v.MaxTopN > 0 && n > v.MaxTopN {
		n = v.MaxTopN
	}
	v.TopN = n
	return v
}

// Built is a visual with its data, or the error that prevented it.
type Built struct {
	Visual Visual
	Data   interface{}
	Err    error
}

// Build computes the visual's data on ds. Errors stay in the result so one
// broken visual never stops the others.
func (v Visual) Build(ds *dataset.Dataset) Built {
	b := Built{Visual: v}
	switch v.Kind {
	case KindLine:
		b.Data, b.Err = aggregate.TimeSeries(ds, aggregate.SeriesSpec{Column: v.Category, Measure: v.Measure, Period: v.Period})
	case KindScatter:
		b.Data, b.Err = aggregate.GroupTotals(ds, v.Category, v.Measures...)
	case KindRadar, KindHeatMap:
		b.Data, b.Err = aggregate.CrossTab(ds, v.Category, v.Group, v.Measure)
	case KindDensity:
		b.Data, b.Err = aggregate.Density(ds, v.Measure, aggregate.DefaultCellSize)
	default:
		b.Data, b.Err = aggregate.Aggregate(ds, aggregate.Spec{Category: v.Category, Measure: v.Measure, TopN: v.TopN, Order: v.Order})
	}
	if b.Err != nil {
		b.Data = nil
	}
	return b
}

// Warning is the message shown in place of a visual that failed.
func (b Built) Warning() string {
	if b.Err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", b.Visual.Title, b.Err)
}

// Chart renders the visual for the web.
func (b Built) Chart() (plot.Chart, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	title := b.Visual.Title
	switch data := b.Data.(type) {
	case *aggregate.Series:
		return plot.Line(data, title), nil
	case []aggregate.GroupTotal:
		x, y := axisNames(b.Visual.Measures)
		return plot.Scatter(data, x, y, title), nil
	case *aggregate.Matrix:
		if b.Visual.Kind == KindHeatMap {
			return plot.HeatMap(data, title), nil
		}
		return plot.Radar(data, title), nil
	case *aggregate.DensityGrid:
		return plot.DensityMap(data, title), nil
	case *aggregate.Result:
		switch b.Visual.Kind {
		case KindPie:
			return plot.Pie(data, title), nil
		case KindTreeMap:
			return plot.TreeMap(data, title), nil
		case KindCategoryLine:
			return plot.CategoryLine(data, title), nil
		}
		return plot.Bar(data, title, b.Visual.Kind == KindHorizontalBar), nil
	}
	return nil, fmt.Errorf("unexpected data %T for %s", b.Data, b.Visual.ID)
}

// PNG renders the visual as an image for the bot.
func (b Built) PNG() ([]byte, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	switch data := b.Data.(type) {
	case *aggregate.Series:
		return plot.DrawTimeSeries(data, b.Visual.Title)
	case *aggregate.Result:
		if b.Visual.Kind == KindPie {
			return plot.DrawPie(data, b.Visual.Title)
		}
		return plot.DrawPlotBar(plot.CategoryBars(data, b.Visual.Title))
	}
	return nil, fmt.Errorf("%w: %s", ErrNoImage, b.Visual.Kind)
}

func axisNames(measures []string) (string, string) {
	x, y := "", ""
	if len(measures) > 0 {
		x = measures[0]
	}
	if len(measures) > 1 {
		y = measures[1]
	}
	return x, y
}
