package metrics

import (
	"testing"

	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	ds := dataset.New([]*models.Accident{
		{Deaths: 1, Injuries: 3, Vehicles: 2},
		{Deaths: 0, Injuries: 2, Vehicles: 1},
		{Deaths: 2, Injuries: 1, Vehicles: 3},
	}, dataset.AllColumnNames())

	s := Compute(ds)
	assert.Equal(t, int64(3), s.Accidents)
	assert.Equal(t, int64(3), s.Deaths)
	assert.Equal(t, int64(6), s.Injuries)
	assert.Equal(t, int64(6), s.Vehicles)
	assert.Equal(t, 100.0, s.MortalityRate)
	assert.Equal(t, 50.0, s.DeathsPer100Injured)
	assert.Equal(t, 2.0, s.VehiclesPerAccident)
	assert.Empty(t, s.Missing)
}

func TestComputeRounding(t *testing.T) {
	records := make([]*models.Accident, 7)
	for i := range records {
		records[i] = &models.Accident{}
	}
	records[0].Deaths = 1
	records[0].Injuries = 3
	s := Compute(dataset.New(records, dataset.AllColumnNames()))
	assert.Equal(t, 14.29, s.MortalityRate)
	assert.Equal(t, 33.33, s.DeathsPer100Injured)
}

func TestComputeEmptyDataset(t *testing.T) {
	s := Compute(dataset.Empty())
	assert.Equal(t, models.Summary{}, s)
	txt := Format(s)
	assert.Equal(t, "0", txt.Accidents)
	assert.Equal(t, "0,00%", txt.MortalityRate)
}

func TestComputeZeroDenominators(t *testing.T) {
	ds := dataset.New([]*models.Accident{{Deaths: 0, Injuries: 0}}, dataset.AllColumnNames())
	s := Compute(ds)
	assert.Equal(t, 0.0, s.MortalityRate)
	assert.Equal(t, 0.0, s.DeathsPer100Injured)
	assert.Equal(t, 0.0, s.VehiclesPerAccident)
}

func TestComputeMissingColumns(t *testing.T) {
	ds := dataset.New([]*models.Accident{{Deaths: 4, Vehicles: 9}}, []string{dataset.ColDeaths})
	s := Compute(ds)
	assert.Equal(t, int64(4), s.Deaths)
	assert.Equal(t, int64(0), s.Vehicles)
	assert.Equal(t, []string{dataset.ColInjuries, dataset.ColVehicles}, s.Missing)
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{1234567, "1.234.567"},
		{-45210, "-45.210"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatThousands(tt.in))
	}
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "12,35", FormatDecimal(12.346, 2))
	assert.Equal(t, "1.234,50", FormatDecimal(1234.5, 2))
	assert.Equal(t, "-0,50", FormatDecimal(-0.5, 2))
	assert.Equal(t, "0,00", FormatDecimal(-0.001, 2))
	assert.Equal(t, "7", FormatDecimal(7, 0))
}
