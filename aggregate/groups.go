package aggregate

import (
	"fmt"
	"sort"

	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
)

// GroupTotal holds the row count and one sum per requested measure for a
// single category.
type GroupTotal struct {
	Category string    `json:"category"`
	Rows     int       `json:"rows"`
	Values   []float64 `json:"values"`
}

// GroupTotals sums several measures per category, in the category's domain
// order. Used for scatter plots of one measure against another.
func GroupTotals(ds *dataset.Dataset, category string, measures ...string) ([]GroupTotal, error) {
	cat, err := categoryColumn(ds, category)
	if err != nil {
		return nil, err
	}
	cols := make([]*dataset.Column, len(measures))
	for i, m := range measures {
		if cols[i], err = ds.ColumnOfKind(m, models.KindMeasure); err != nil {
			return nil, err
		}
	}

	byCategory := map[string]*GroupTotal{}
	for _, r := range ds.Records() {
		v := cat.Value(r)
		if v == "" {
			continue
		}
		g, ok := byCategory[v]
		if !ok {
			g = &GroupTotal{Category: v, Values: make([]float64, len(cols))}
			byCategory[v] = g
		}
		g.Rows++
		for i, c := range cols {
			g.Values[i] += c.Number(r)
		}
	}

	out := make([]GroupTotal, 0, len(byCategory))
	for _, g := range byCategory {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return cat.Less(out[i].Category, out[j].Category) })
	return out, nil
}

// Matrix is a category x group table. Values[g][c] is the total of group
// Groups[g] within category Categories[c].
type Matrix struct {
	Category   string      `json:"category"`
	Group      string      `json:"group"`
	Measure    string      `json:"measure"`
	Categories []string    `json:"categories"`
	Groups     []string    `json:"groups"`
	Values     [][]float64 `json:"values"`
}

// Max returns the largest cell, zero for an empty matrix.
func (m *Matrix) Max() float64 {
	max := 0.0
	for _, row := range m.Values {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// CrossTab counts rows (or sums measure) for every pair of category and
// group values. Rows with a null in either column are skipped.
func CrossTab(ds *dataset.Dataset, category, group, measure string) (*Matrix, error) {
	cat, err := categoryColumn(ds, category)
	if err != nil {
		return nil, err
	}
	grp, err := categoryColumn(ds, group)
	if err != nil {
		return nil, err
	}
	if cat == grp {
		return nil, fmt.Errorf("%w: %s", ErrSameColumns, cat.Name)
	}
	value, label, err := measureFunc(ds, measure)
	if err != nil {
		return nil, err
	}

	type key struct{ c, g string }
	cells := map[key]float64{}
	catSeen, grpSeen := map[string]bool{}, map[string]bool{}
	var cats, grps []string
	for _, r := range ds.Records() {
		c, g := cat.Value(r), grp.Value(r)
		if c == "" || g == "" {
			continue
		}
		if !catSeen[c] {
			catSeen[c] = true
			cats = append(cats, c)
		}
		if !grpSeen[g] {
			grpSeen[g] = true
			grps = append(grps, g)
		}
		cells[key{c, g}] += value(r)
	}
	cat.Sort(cats)
	grp.Sort(grps)

	m := &Matrix{Category: cat.Name, Group: grp.Name, Measure: label, Categories: cats, Groups: grps}
	m.Values = make([][]float64, len(grps))
	for gi, g := range grps {
		m.Values[gi] = make([]float64, len(cats))
		for ci, c := range cats {
			m.Values[gi][ci] = cells[key{c, g}]
		}
	}
	return m, nil
}
