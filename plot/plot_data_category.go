package plot

import (
	"fmt"
	"strings"

	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// labels longer than this are cut so the rotated X axis stays readable
const maxLabelLen = 28

type categoryBars struct {
	labels    []string
	yValues   []float64
	percents  []float64
	nameYAxis string
	nameGraph string
}

func CategoryBars(res *aggregate.Result, nameGraph string) categoryBars {
	d := categoryBars{nameYAxis: res.Measure, nameGraph: nameGraph}
	for _, row := range res.Rows {
		d.labels = append(d.labels, row.Value)
		d.yValues = append(d.yValues, row.Total)
		d.percents = append(d.percents, row.Percent)
	}
	return d
}

func (d categoryBars) title() string {
	return d.nameGraph
}
func (d categoryBars) axisName() string {
	return d.nameYAxis
}
func (d categoryBars) values() []float64 {
	return d.yValues
}

func (d categoryBars) size(minBarWidth float64) (width, height int) {
	return chartDimensions(len(d.labels), len(d.yValues), minBarWidth)
}

func (d categoryBars) barValues() []chart.Value {
	bars := make([]chart.Value, 0, len(d.labels))
	for i, label := range d.labels {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: fmt.Sprintf("%s (%.1f%%)", shorten(label), d.percents[i]),
			Style: chart.Style{
				FillColor: drawing.ColorPurple.WithAlpha(100),
			},
		})
	}
	return bars
}

func shorten(label string) string {
	r := []rune(strings.TrimSpace(label))
	if len(r) <= maxLabelLen {
		return string(r)
	}
	return string(r[:maxLabelLen-1]) + "…"
}

// chartDimensions sizes a bar chart so that every bar gets at least
// minBarWidth pixels.
func chartDimensions(xCount, yCount int, minBarWidth float64) (width, height int) {
	if yCount == 0 || xCount <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if xCount < 2 {
		x = 10.0
	} else if xCount < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100        // отступ для оси Y и подписей
		spacingRatio = 0.2        // соотношение отступа между столбцами к ширине столбца
		aspectRatio  = 9.0 / 16.0 // соотношение сторон по умолчанию
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(xCount) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}
