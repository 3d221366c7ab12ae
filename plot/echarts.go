package plot

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pivolan/prf_dashboard/aggregate"
)

// Chart is an ECharts visual that can be rendered alone or on a page.
type Chart interface {
	components.Charter
	Render(w io.Writer) error
}

const chartHeight = "440px"

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     "100%",
		Height:    chartHeight,
	})
}

func titleOpts(title, subtitle string) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle})
}

func itemTooltip() charts.GlobalOpts {
	return charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"})
}

// Bar draws a column chart, or a horizontal bar chart when horizontal is
// set. Horizontal bars expect rows in ascending order so the largest ends
// on top.
func Bar(res *aggregate.Result, title string, horizontal bool) Chart {
	bar := charts.NewBar()
	bar.SetGlobalOptions(initOpts(title), titleOpts(title, res.Category), itemTooltip())
	data := make([]opts.BarData, 0, len(res.Rows))
	for _, row := range res.Rows {
		data = append(data, opts.BarData{Name: row.Value, Value: row.Total})
	}
	bar.SetXAxis(res.Labels()).AddSeries(res.Measure, data)
	if horizontal {
		bar.XYReversal()
	}
	return bar
}

func Line(s *aggregate.Series, title string) Chart {
	line := charts.NewLine()
	line.SetGlobalOptions(initOpts(title), titleOpts(title, s.Measure), charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}))
	labels := make([]string, 0, len(s.Points))
	data := make([]opts.LineData, 0, len(s.Points))
	for _, p := range s.Points {
		labels = append(labels, p.Label)
		data = append(data, opts.LineData{Value: p.Total})
	}
	line.SetXAxis(labels).AddSeries(s.Measure, data)
	return line
}

// CategoryLine draws an aggregation as a line, for ordered domains such as
// weekdays.
func CategoryLine(res *aggregate.Result, title string) Chart {
	line := charts.NewLine()
	line.SetGlobalOptions(initOpts(title), titleOpts(title, res.Category), charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}))
	data := make([]opts.LineData, 0, len(res.Rows))
	for _, row := range res.Rows {
		data = append(data, opts.LineData{Name: row.Value, Value: row.Total})
	}
	line.SetXAxis(res.Labels()).AddSeries(res.Measure, data)
	return line
}

func Pie(res *aggregate.Result, title string) Chart {
	pie := charts.NewPie()
	pie.SetGlobalOptions(initOpts(title), titleOpts(title, res.Category), itemTooltip())
	data := make([]opts.PieData, 0, len(res.Rows))
	for _, row := range res.Rows {
		data = append(data, opts.PieData{Name: row.Value, Value: row.Total})
	}
	pie.AddSeries(res.Measure, data, charts.WithLabelOpts(opts.Label{Formatter: "{b}: {d}%"}))
	return pie
}

func TreeMap(res *aggregate.Result, title string) Chart {
	tm := charts.NewTreeMap()
	tm.SetGlobalOptions(initOpts(title), titleOpts(title, res.Category), itemTooltip())
	nodes := make([]opts.TreeMapNode, 0, len(res.Rows))
	for _, row := range res.Rows {
		nodes = append(nodes, opts.TreeMapNode{
			Name:  fmt.Sprintf("%s (%.1f%%)", row.Value, row.Percent),
			Value: int(math.Round(row.Total)),
		})
	}
	tm.AddSeries(res.Measure, nodes)
	return tm
}

// Radar draws one polygon per group over the categories of m.
func Radar(m *aggregate.Matrix, title string) Chart {
	radar := charts.NewRadar()
	top := float32(m.Max() * 1.1)
	if top <= 0 {
		top = 1
	}
	indicators := make([]*opts.Indicator, 0, len(m.Categories))
	for _, c := range m.Categories {
		indicators = append(indicators, &opts.Indicator{Name: c, Max: top})
	}
	radar.SetGlobalOptions(
		initOpts(title),
		titleOpts(title, m.Group),
		itemTooltip(),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
	)
	for gi, g := range m.Groups {
		radar.AddSeries(g, []opts.RadarData{{Name: g, Value: m.Values[gi]}})
	}
	return radar
}

// HeatMap draws m with categories on X and groups on Y.
func HeatMap(m *aggregate.Matrix, title string) Chart {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		initOpts(title),
		titleOpts(title, m.Measure),
		itemTooltip(),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: m.Categories}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.Groups}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:     0,
			Max:     float32(math.Max(m.Max(), 1)),
			InRange: &opts.VisualMapInRange{Color: []string{"#fff5eb", "#fd8d3c", "#7f2704"}},
		}),
	)
	var data []opts.HeatMapData
	for gi := range m.Groups {
		for ci := range m.Categories {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{ci, gi, m.Values[gi][ci]}})
		}
	}
	hm.AddSeries(m.Measure, data)
	return hm
}

// Scatter plots the first two measures of each group against each other.
// Point size follows the third measure when given, the row count otherwise.
func Scatter(groups []aggregate.GroupTotal, xName, yName, title string) Chart {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		initOpts(title),
		titleOpts(title, fmt.Sprintf("%s x %s", xName, yName)),
		itemTooltip(),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yName}),
	)
	weight := func(g aggregate.GroupTotal) float64 {
		if len(g.Values) > 2 {
			return g.Values[2]
		}
		return float64(g.Rows)
	}
	maxWeight := 1.0
	for _, g := range groups {
		maxWeight = math.Max(maxWeight, weight(g))
	}
	for _, g := range groups {
		if len(g.Values) < 2 {
			continue
		}
		size := 8 + int(32*weight(g)/maxWeight)
		sc.AddSeries(g.Category, []opts.ScatterData{{
			Name:       g.Category,
			Value:      []interface{}{g.Values[0], g.Values[1]},
			SymbolSize: size,
		}})
	}
	return sc
}

// DensityMap plots grid cells on longitude/latitude axes clipped to
// Brazil, colored by value.
func DensityMap(grid *aggregate.DensityGrid, title string) Chart {
	sc := charts.NewScatter()
	subtitle := fmt.Sprintf("%s, %d registros sem coordenadas válidas", grid.Measure, grid.Excluded)
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "640px"}),
		titleOpts(title, subtitle),
		itemTooltip(),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Longitude", Min: aggregate.MinLongitude, Max: aggregate.MaxLongitude}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Latitude", Min: aggregate.MinLatitude, Max: aggregate.MaxLatitude}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:     0,
			Max:     float32(math.Max(grid.Max(), 1)),
			InRange: &opts.VisualMapInRange{Color: []string{"#ffffcc", "#fd8d3c", "#800026"}},
		}),
	)
	data := make([]opts.ScatterData, 0, len(grid.Cells))
	for _, c := range grid.Cells {
		data = append(data, opts.ScatterData{
			Value:      []interface{}{c.Longitude, c.Latitude, c.Value},
			SymbolSize: 6,
		})
	}
	sc.AddSeries(grid.Measure, data)
	return sc
}

// RenderPage writes every chart on a single HTML page.
func RenderPage(w io.Writer, list ...Chart) error {
	page := components.NewPage()
	for _, c := range list {
		page.AddCharts(c)
	}
	return page.Render(w)
}
