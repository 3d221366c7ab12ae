// Package plot renders aggregation results: PNG images (go-chart) for the
// bot and interactive ECharts HTML for the web dashboard.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to plot")

var pieColors = []drawing.Color{
	drawing.ColorFromHex("1f77b4"), drawing.ColorFromHex("ff7f0e"), drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"), drawing.ColorFromHex("9467bd"), drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"), drawing.ColorFromHex("7f7f7f"), drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

func DrawPlotBar(data barSource) ([]byte, error) {
	barValues := data.barValues()
	if len(barValues) == 0 {
		return nil, ErrNoData
	}
	paddingX := customizePaddingXBottom(barValues)
	width, height := data.size(100)
	maxY, ticks := gridTicks(findMaxValue(data.values()))

	bar := chart.BarChart{}
	bar.Title = data.title()
	bar.TitleStyle = chart.Style{FontSize: 20}
	bar.Background = chart.Style{
		StrokeColor: chart.ColorBlack,
		FillColor:   drawing.ColorWhite,
		Padding: chart.Box{
			Bottom: paddingX,
			Top:    50,
		},
	}
	bar.Height = height + 50
	bar.Width = width + paddingX + 50
	bar.BarWidth = 60
	bar.Bars = barValues
	bar.YAxis = chart.YAxis{
		Name: data.axisName(),
		Range: &chart.ContinuousRange{
			Min: 0.0,
			Max: maxY,
		},
		Style: chart.Style{
			StrokeWidth: 2, // Толщина линии
			StrokeColor: chart.ColorBlack,
			FontSize:    17,
		},
		Ticks: ticks,
		GridMinorStyle: chart.Style{
			StrokeColor: chart.ColorBlack,
			StrokeWidth: 1,
			DotWidth:    1,
		},
		GridMajorStyle: chart.Style{
			StrokeColor:     chart.ColorBlack,
			StrokeWidth:     1,
			DotWidth:        1,
			StrokeDashArray: []float64{5.0, 5.0}, // Пунктирная линия
		},
	}
	bar.XAxis = chart.Style{
		StrokeWidth:         2,
		StrokeColor:         chart.ColorBlack,
		TextRotationDegrees: 88,
		FontSize:            17,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := bar.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DrawPie draws the share of each row. Zero rows are left out since a pie
// slice of nothing cannot be drawn.
func DrawPie(res *aggregate.Result, title string) ([]byte, error) {
	var values []chart.Value
	for i, row := range res.Rows {
		if row.Total <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: row.Total,
			Label: fmt.Sprintf("%s %.1f%%", shorten(row.Value), row.Percent),
			Style: chart.Style{FillColor: pieColors[i%len(pieColors)], FontSize: 12},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  1024,
		Height: 1024,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
			Padding:   chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		Values: values,
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DrawTimeSeries draws a filled line of the series. One-point series fall
// back to a bar chart.
func DrawTimeSeries(s *aggregate.Series, title string) ([]byte, error) {
	data := SeriesBars(s, title)
	switch len(data.dates) {
	case 0:
		return nil, ErrNoData
	case 1:
		return DrawPlotBar(data)
	}
	maxY, ticks := gridTicks(findMaxValue(data.yValues))

	// Создаем область под кривой
	fillSeries := chart.TimeSeries{
		XValues: data.dates,
		YValues: data.yValues,
		Style: chart.Style{
			StrokeColor: drawing.ColorBlue,
			FillColor:   drawing.ColorBlue.WithAlpha(60),
			StrokeWidth: 2,
		},
	}

	graph := chart.Chart{
		Title: title,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 60,
			},
			FillColor:   drawing.ColorWhite,
			StrokeWidth: 1,
			StrokeColor: drawing.ColorFromHex("efefef"),
		},
		Width:  2048,
		Height: 1024,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(data.dateFormat()),
			Style:          chart.Style{TextRotationDegrees: 45},
		},
		YAxis: chart.YAxis{
			Name:  data.axisName(),
			Range: &chart.ContinuousRange{Min: 0, Max: maxY},
			Ticks: ticks,
		},
		Series: []chart.Series{fillSeries},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering time series chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// gridTicks returns the Y range top and ticks for values up to max. The
// range never collapses to zero, which go-chart refuses to draw.
func gridTicks(max float64) (float64, []chart.Tick) {
	if max <= 0 {
		max = 1
	}
	gridStep := calculateGridStep(max)
	maxY := math.Ceil(max/gridStep) * gridStep
	var ticks []chart.Tick
	for i := 0.0; i <= maxY+gridStep/2; i += gridStep {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: formatTick(i),
		})
	}
	return maxY, ticks
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func calculateGridStep(maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	if maxValue < 1e-10 {
		return 1e-10
	}

	// Находим порядок величины максимального значения
	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))

	// Нормализуем значение к диапазону [1, 10)
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}

	finalStep := step * magnitude

	// Округляем большие шаги до "красивых" чисел
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}
	return finalStep
}

func findMaxValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func customizePaddingXBottom(values []chart.Value) int {
	count := 0
	for _, v := range values {
		if n := len([]rune(v.Label)); n > count {
			count = n
		}
	}
	return count * 8
}
