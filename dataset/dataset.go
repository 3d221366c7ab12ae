package dataset

import (
	"errors"
	"fmt"
	"time"

	"github.com/pivolan/prf_dashboard/domain/models"
)

var (
	ErrMissingColumn     = errors.New("missing column")
	ErrKind              = errors.New("wrong column kind")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Dataset is an immutable snapshot (or a derived view of one). Operations
// never modify records; they return new views sharing the same records.
type Dataset struct {
	records []*models.Accident
	present map[string]bool
}

// New builds a dataset from records; present lists the columns the source
// provided. Columns not listed are reported as missing.
func New(records []*models.Accident, present []string) *Dataset {
	p := make(map[string]bool, len(present))
	for _, name := range present {
		if c, ok := lookup(name); ok {
			p[c.Name] = true
		}
	}
	return &Dataset{records: records, present: p}
}

// Empty is the dataset used when loading fails: no rows, every column
// available, so charts render empty instead of warning.
func Empty() *Dataset {
	return New(nil, AllColumnNames())
}

func AllColumnNames() []string {
	names := make([]string, 0, len(schema))
	for _, c := range schema {
		names = append(names, c.Name)
	}
	return names
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records exposes the rows for read-only iteration.
func (d *Dataset) Records() []*models.Accident {
	if d == nil {
		return nil
	}
	return d.records
}

// Column resolves name (accent/case insensitive) to a schema column the
// source provided.
func (d *Dataset) Column(name string) (*Column, error) {
	c, ok := lookup(name)
	if !ok || d == nil || !d.present[c.Name] {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return c, nil
}

// ColumnOfKind is Column plus a kind check.
func (d *Dataset) ColumnOfKind(name string, kinds ...models.ColumnKind) (*Column, error) {
	c, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	for _, k := range kinds {
		if c.Kind == k {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is %s", ErrKind, c.Name, c.Kind)
}

func (d *Dataset) HasColumn(name string) bool {
	_, err := d.Column(name)
	return err == nil
}

// Select returns the view of rows matching pred.
func (d *Dataset) Select(pred func(r *models.Accident) bool) *Dataset {
	out := make([]*models.Accident, 0, d.Len())
	for _, r := range d.Records() {
		if pred(r) {
			out = append(out, r)
		}
	}
	return &Dataset{records: out, present: d.presentSet()}
}

func (d *Dataset) presentSet() map[string]bool {
	if d == nil {
		return map[string]bool{}
	}
	return d.present
}

// Distinct returns the non-null values of a categorical column, ordered by
// the column's sort rule.
func (d *Dataset) Distinct(name string) ([]string, error) {
	c, err := d.ColumnOfKind(name, models.KindCategorical)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	values := []string{}
	for _, r := range d.Records() {
		v := c.Value(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	c.Sort(values)
	return values, nil
}

// DateRange returns the first and last accident dates; false when no row
// has a date.
func (d *Dataset) DateRange() (first, last time.Time, ok bool) {
	for _, r := range d.Records() {
		if r.Date.IsZero() {
			continue
		}
		if !ok || r.Date.Before(first) {
			first = r.Date
		}
		if !ok || r.Date.After(last) {
			last = r.Date
		}
		ok = true
	}
	return first, last, ok
}
