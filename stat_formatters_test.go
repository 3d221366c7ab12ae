package main

import (
	"testing"

	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/filter"
	"github.com/pivolan/prf_dashboard/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResultTable(t *testing.T) {
	res, err := aggregate.Aggregate(testDataset(), aggregate.Spec{Category: dataset.ColState, Measure: dataset.ColInjuries})
	require.NoError(t, err)

	out := GenerateResultTable(res)
	assert.Contains(t, out, "UF") // go-pretty upper-cases headers and footers
	assert.Contains(t, out, "FERIDOS")
	assert.Contains(t, out, "83,3")
	assert.Contains(t, out, "16,7")
	assert.Contains(t, out, "TOTAL")
}

func TestGenerateSeriesTable(t *testing.T) {
	s, err := aggregate.TimeSeries(testDataset(), aggregate.SeriesSpec{Period: aggregate.PeriodYear})
	require.NoError(t, err)

	out := GenerateSeriesTable(s)
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "2024")
}

func TestGenerateSummaryTable(t *testing.T) {
	out := GenerateSummaryTable(metrics.Format(metrics.Compute(testDataset())))
	assert.Contains(t, out, "Acidentes")
	assert.Contains(t, out, "Taxa de mortalidade")
	assert.Contains(t, out, "75,00%")
}

func TestGenerateControlsTable(t *testing.T) {
	store := filter.NewMemoryStore()
	store.Set(dataset.ColState, []string{"SC"})
	controls, _, _ := filter.NewRegistry(store, dataset.ColYear, dataset.ColState).Controls(testDataset())

	out := GenerateControlsTable(controls)
	assert.Contains(t, out, "(todos)")
	assert.Contains(t, out, "2023; 2024")
	assert.Contains(t, out, "PR; SC; SP")
}
