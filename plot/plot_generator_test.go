package plot

import (
	"bytes"
	"testing"
	"time"

	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/pivolan/prf_dashboard/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func sampleResult() *aggregate.Result {
	return &aggregate.Result{
		Category: "Uf",
		Measure:  "Mortos",
		Rows: []models.ValueCount{
			{Value: "SP", Total: 120, Percent: 48},
			{Value: "MG", Total: 80, Percent: 32},
			{Value: "Condutor - Fadiga / Álcool / Drogas / Saúde", Total: 50, Percent: 20},
		},
		Sum: 250,
	}
}

func sampleSeries(n int) *aggregate.Series {
	s := &aggregate.Series{Column: "Data Inversa", Measure: aggregate.CountLabel, Period: aggregate.PeriodMonth}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, i, 0)
		s.Points = append(s.Points, models.DateCount{Date: d, Label: d.Format("01/2006"), Total: float64(i * 10)})
	}
	return s
}

func TestDrawPlotBar(t *testing.T) {
	b, err := DrawPlotBar(CategoryBars(sampleResult(), "Mortos por UF"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestDrawPlotBarAllZero(t *testing.T) {
	res := &aggregate.Result{Measure: "Mortos", Rows: []models.ValueCount{{Value: "SP"}, {Value: "RJ"}}}
	b, err := DrawPlotBar(CategoryBars(res, "zeros"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestDrawEmpty(t *testing.T) {
	_, err := DrawPlotBar(CategoryBars(&aggregate.Result{}, "vazio"))
	assert.ErrorIs(t, err, ErrNoData)

	_, err = DrawPie(&aggregate.Result{Rows: []models.ValueCount{{Value: "SP"}}}, "vazio")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = DrawTimeSeries(sampleSeries(0), "vazio")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDrawPie(t *testing.T) {
	b, err := DrawPie(sampleResult(), "Participação")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestDrawTimeSeries(t *testing.T) {
	for _, n := range []int{1, 12} {
		b, err := DrawTimeSeries(sampleSeries(n), "Evolução mensal")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, pngMagic))
	}
}

func TestCalculateGridStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 0},
		{10, 2},
		{15, 5},
		{45, 10},
		{365, 100},
		{9000, 2000},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, calculateGridStep(tt.max), 1e-9, "max=%v", tt.max)
	}
}

func TestGridTicks(t *testing.T) {
	maxY, ticks := gridTicks(365)
	assert.Equal(t, 400.0, maxY)
	require.Len(t, ticks, 5)
	assert.Equal(t, "400", ticks[4].Label)

	maxY, ticks = gridTicks(0)
	assert.InDelta(t, 1.0, maxY, 1e-9)
	assert.NotEmpty(t, ticks)
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "SP", shorten(" SP "))
	long := shorten("Condutor - Fadiga / Álcool / Drogas / Saúde")
	assert.Len(t, []rune(long), maxLabelLen)
}
