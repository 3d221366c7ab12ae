// Package aggregate reduces a dataset to the per-category summary tables that
// feed every chart of the dashboard.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
)

var (
	// ErrTimeSeries is returned when a temporal column is used as a plain
	// category; use TimeSeries instead.
	ErrTimeSeries  = errors.New("temporal column must be aggregated as a time series")
	ErrSameColumns = errors.New("category and group must be different columns")
)

// Order is the display order of aggregated rows.
type Order int

const (
	OrderDescending Order = iota // largest total first
	OrderAscending               // smallest first, used by horizontal bars
	OrderNatural                 // the category column's own domain order
)

// PercentBase selects what a row's percentage is relative to.
type PercentBase int

const (
	BaseRetained PercentBase = iota // sum of the rows kept after top-N
	BaseAll                         // sum of every category, before top-N
)

// CountLabel names the measure of count-mode results.
const CountLabel = "Total"

type Spec struct {
	Category string
	Measure  string // empty counts rows
	TopN     int    // 0 keeps every category
	Order    Order
	Base     PercentBase
}

type Result struct {
	Category string
	Measure  string
	Rows     []models.ValueCount
	Sum      float64 // sum of the totals in Rows
}

// Labels and Totals split the rows for chart series.
func (r *Result) Labels() []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Value
	}
	return out
}

func (r *Result) Totals() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Total
	}
	return out
}

// Aggregate groups ds by spec.Category and counts rows, or sums
// spec.Measure, per category. Top-N truncation happens on totals sorted
// descending, percentages are computed afterwards and the rows are finally
// put in display order. Null categories are not grouped.
func Aggregate(ds *dataset.Dataset, spec Spec) (*Result, error) {
	cat, err := categoryColumn(ds, spec.Category)
	if err != nil {
		return nil, err
	}
	value, label, err := measureFunc(ds, spec.Measure)
	if err != nil {
		return nil, err
	}

	totals := map[string]float64{}
	var keys []string
	for _, r := range ds.Records() {
		v := cat.Value(r)
		if v == "" {
			continue
		}
		if _, ok := totals[v]; !ok {
			keys = append(keys, v)
		}
		totals[v] += value(r)
	}

	rows := make([]models.ValueCount, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, models.ValueCount{Value: k, Total: totals[k]})
	}
	sortRows(rows, cat, OrderDescending)

	allSum := sum(rows)
	if spec.TopN > 0 && spec.TopN < len(rows) {
		rows = rows[:spec.TopN]
	}
	retainedSum := sum(rows)

	base := retainedSum
	if spec.Base == BaseAll {
		base = allSum
	}
	for i := range rows {
		rows[i].Percent = percent(rows[i].Total, base)
	}
	sortRows(rows, cat, spec.Order)

	return &Result{Category: cat.Name, Measure: label, Rows: rows, Sum: retainedSum}, nil
}

func categoryColumn(ds *dataset.Dataset, name string) (*dataset.Column, error) {
	c, err := ds.Column(name)
	if err != nil {
		return nil, err
	}
	switch c.Kind {
	case models.KindCategorical:
		return c, nil
	case models.KindTemporal:
		return nil, fmt.Errorf("%w: %s", ErrTimeSeries, c.Name)
	}
	return nil, fmt.Errorf("%w: %s is %s, not categorical", dataset.ErrKind, c.Name, c.Kind)
}

// measureFunc returns the per-row contribution: 1 in count mode, the
// measure value otherwise.
func measureFunc(ds *dataset.Dataset, name string) (func(r *models.Accident) float64, string, error) {
	if name == "" {
		return func(*models.Accident) float64 { return 1 }, CountLabel, nil
	}
	m, err := ds.ColumnOfKind(name, models.KindMeasure)
	if err != nil {
		return nil, "", err
	}
	return m.Number, m.Name, nil
}

func sortRows(rows []models.ValueCount, cat *dataset.Column, order Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch order {
		case OrderNatural:
			return cat.Less(a.Value, b.Value)
		case OrderAscending:
			if a.Total != b.Total {
				return a.Total < b.Total
			}
		default:
			if a.Total != b.Total {
				return a.Total > b.Total
			}
		}
		return cat.Less(a.Value, b.Value)
	})
}

func sum(rows []models.ValueCount) float64 {
	data := make(stats.Float64Data, len(rows))
	for i, r := range rows {
		data[i] = r.Total
	}
	s, err := stats.Sum(data)
	if err != nil {
		return 0
	}
	return s
}

// percent is 100*part/whole rounded to one decimal; zero when whole is zero.
func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round(100*part/whole, 1)
}

func round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	r, err := stats.Round(x, places)
	if err != nil {
		return 0
	}
	return r
}
