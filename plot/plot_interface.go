package plot

import "github.com/wcharczuk/go-chart/v2"

// barSource is what DrawPlotBar needs from an aggregation: one bar per
// category or per period.
type barSource interface {
	title() string
	axisName() string
	values() []float64
	size(minBarWidth float64) (width, height int)
	barValues() []chart.Value
}
