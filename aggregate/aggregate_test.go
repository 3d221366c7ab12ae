package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allColumns = dataset.AllColumnNames()

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateYearDeaths(t *testing.T) {
	ds := dataset.New([]*models.Accident{
		{Year: 2023, Deaths: 1},
		{Year: 2023, Deaths: 2},
		{Year: 2024, Deaths: 5},
	}, allColumns)

	res, err := Aggregate(ds, Spec{Category: dataset.ColYear, Measure: dataset.ColDeaths, Order: OrderNatural})
	require.NoError(t, err)
	assert.Equal(t, []models.ValueCount{
		{Value: "2023", Total: 3, Percent: 37.5},
		{Value: "2024", Total: 5, Percent: 62.5},
	}, res.Rows)
	assert.Equal(t, 8.0, res.Sum)
	assert.Equal(t, dataset.ColDeaths, res.Measure)
}

func states() *dataset.Dataset {
	var records []*models.Accident
	counts := map[string]int{"SP": 5, "MG": 4, "PR": 3, "BA": 2, "AC": 1}
	for uf, n := range counts {
		for i := 0; i < n; i++ {
			records = append(records, &models.Accident{State: uf, Injuries: int64(i)})
		}
	}
	records = append(records, &models.Accident{State: ""})
	return dataset.New(records, allColumns)
}

func TestAggregateCountPartitionsRows(t *testing.T) {
	ds := states()
	res, err := Aggregate(ds, Spec{Category: dataset.ColState})
	require.NoError(t, err)
	assert.Equal(t, float64(ds.Len()-1), res.Sum, "null state is not grouped")
	assert.Equal(t, CountLabel, res.Measure)
	assert.Equal(t, []string{"SP", "MG", "PR", "BA", "AC"}, res.Labels())

	pct := 0.0
	for _, r := range res.Rows {
		pct += r.Percent
	}
	assert.InDelta(t, 100, pct, 0.5)
}

func TestAggregateTopN(t *testing.T) {
	ds := states()
	for _, n := range []int{1, 3, 5, 10} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			res, err := Aggregate(ds, Spec{Category: dataset.ColState, TopN: n})
			require.NoError(t, err)
			assert.Len(t, res.Rows, min(n, 5))
		})
	}

	res, err := Aggregate(ds, Spec{Category: dataset.ColState, TopN: 2, Order: OrderAscending})
	require.NoError(t, err)
	assert.Equal(t, []models.ValueCount{
		{Value: "MG", Total: 4, Percent: 44.4},
		{Value: "SP", Total: 5, Percent: 55.6},
	}, res.Rows, "percent is relative to the retained rows")

	res, err = Aggregate(ds, Spec{Category: dataset.ColState, TopN: 2, Base: BaseAll})
	require.NoError(t, err)
	assert.Equal(t, 33.3, res.Rows[0].Percent)
	assert.Equal(t, 26.7, res.Rows[1].Percent)
}

func TestAggregateTiesUseDomainOrder(t *testing.T) {
	ds := dataset.New([]*models.Accident{
		{Month: "Março"}, {Month: "Janeiro"}, {Month: "Fevereiro"}, {Month: "Fevereiro"},
	}, allColumns)
	res, err := Aggregate(ds, Spec{Category: dataset.ColMonth})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fevereiro", "Janeiro", "Março"}, res.Labels())

	res, err = Aggregate(ds, Spec{Category: dataset.ColMonth, Order: OrderNatural})
	require.NoError(t, err)
	assert.Equal(t, []string{"Janeiro", "Fevereiro", "Março"}, res.Labels())
}

func TestAggregateZeroSum(t *testing.T) {
	ds := dataset.New([]*models.Accident{{State: "SP"}, {State: "RJ"}}, allColumns)
	res, err := Aggregate(ds, Spec{Category: dataset.ColState, Measure: dataset.ColDeaths})
	require.NoError(t, err)
	for _, r := range res.Rows {
		assert.Equal(t, 0.0, r.Percent)
	}
}

func TestAggregateEmptyDataset(t *testing.T) {
	res, err := Aggregate(dataset.Empty(), Spec{Category: dataset.ColState, Measure: dataset.ColDeaths, TopN: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 0.0, res.Sum)
}

func TestAggregateErrors(t *testing.T) {
	partial := dataset.New(nil, []string{dataset.ColState, dataset.ColDate, dataset.ColDeaths})

	_, err := Aggregate(partial, Spec{Category: dataset.ColCause})
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)

	_, err = Aggregate(partial, Spec{Category: dataset.ColState, Measure: dataset.ColVehicles})
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)

	_, err = Aggregate(partial, Spec{Category: dataset.ColDate})
	assert.ErrorIs(t, err, ErrTimeSeries)

	_, err = Aggregate(partial, Spec{Category: dataset.ColDeaths})
	assert.ErrorIs(t, err, dataset.ErrKind)

	_, err = Aggregate(partial, Spec{Category: dataset.ColState, Measure: dataset.ColState})
	assert.ErrorIs(t, err, dataset.ErrKind)
}

func TestAggregateIsDeterministic(t *testing.T) {
	ds := states()
	first, err := Aggregate(ds, Spec{Category: dataset.ColState, Measure: dataset.ColInjuries})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Aggregate(ds, Spec{Category: dataset.ColState, Measure: dataset.ColInjuries})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
