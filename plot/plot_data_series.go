package plot

import (
	"time"

	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type seriesBars struct {
	dates     []time.Time
	labels    []string
	yValues   []float64
	nameYAxis string
	nameGraph string
	period    aggregate.Period
}

func SeriesBars(s *aggregate.Series, nameGraph string) seriesBars {
	d := seriesBars{nameYAxis: s.Measure, nameGraph: nameGraph, period: s.Period}
	for _, p := range s.Points {
		d.dates = append(d.dates, p.Date)
		d.labels = append(d.labels, p.Label)
		d.yValues = append(d.yValues, p.Total)
	}
	return d
}

func (d seriesBars) title() string {
	return d.nameGraph
}
func (d seriesBars) axisName() string {
	return d.nameYAxis
}
func (d seriesBars) values() []float64 {
	return d.yValues
}

func (d seriesBars) dateFormat() string {
	switch d.period {
	case aggregate.PeriodDay:
		return "02/01/06"
	case aggregate.PeriodYear:
		return "2006"
	}
	return "01/2006"
}

func (d seriesBars) size(minBarWidth float64) (width, height int) {
	return chartDimensions(len(d.dates), len(d.yValues), minBarWidth)
}

// barValues is used when the series is too short for a line.
func (d seriesBars) barValues() []chart.Value {
	bars := make([]chart.Value, 0, len(d.labels))
	for i, label := range d.labels {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Style: chart.Style{FillColor: drawing.ColorBlue.WithAlpha(60)},
			Label: label,
		})
	}
	return bars
}
