package filter

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
)

// Apply keeps the rows whose value in dimension is one of selection. An
// empty selection means "no filter" and returns ds itself. Null values never
// match a non-empty selection.
func Apply(ds *dataset.Dataset, dimension string, selection []string) (*dataset.Dataset, error) {
	col, err := ds.ColumnOfKind(dimension, models.KindCategorical)
	if err != nil {
		return nil, err
	}
	if len(selection) == 0 {
		return ds, nil
	}
	allowed := make(map[string]struct{}, len(selection))
	for _, v := range selection {
		allowed[strings.TrimSpace(v)] = struct{}{}
	}
	return ds.Select(func(r *models.Accident) bool {
		v := col.Value(r)
		if v == "" {
			return false
		}
		_, ok := allowed[v]
		return ok
	}), nil
}

// Options is the selectable domain of dimension: distinct non-null values
// ordered by the column's own rule (calendar order for months, numeric for
// years and roads, alphabetical otherwise).
func Options(ds *dataset.Dataset, dimension string) ([]string, error) {
	return ds.Distinct(dimension)
}

// Registry applies the selections of one session to a fixed list of
// dimensions, in order.
type Registry struct {
	store      Store
	dimensions []string
}

func NewRegistry(store Store, dimensions ...string) *Registry {
	return &Registry{store: store, dimensions: dimensions}
}

func (r *Registry) Dimensions() []string {
	out := make([]string, len(r.dimensions))
	copy(out, r.dimensions)
	return out
}

func (r *Registry) has(dimension string) bool {
	for _, d := range r.dimensions {
		if d == dimension {
			return true
		}
	}
	return false
}

// Select replaces the selection of dimension. Values are trimmed and stored
// in the order given, without blanks or duplicates.
func (r *Registry) Select(dimension string, values []string) error {
	if !r.has(dimension) {
		return fmt.Errorf("%w: %s is not a filter of this view", dataset.ErrMissingColumn, dimension)
	}
	seen := map[string]bool{}
	clean := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		clean = append(clean, v)
	}
	r.store.Set(dimension, clean)
	return nil
}

func (r *Registry) Selection(dimension string) []string {
	return r.store.Get(dimension)
}

// Clear drops every selection of the registry's dimensions.
func (r *Registry) Clear() {
	for _, d := range r.dimensions {
		r.store.Set(d, nil)
	}
}

// Options returns the domain of dimension computed on ds.
func (r *Registry) Options(ds *dataset.Dataset, dimension string) ([]string, error) {
	return Options(ds, dimension)
}

// Control is one filter widget: the values it offers and the ones chosen.
type Control struct {
	Dimension string   `json:"dimension"`
	Options   []string `json:"options"`
	Selected  []string `json:"selected"`
	Error     string   `json:"error,omitempty"`
}

// Apply runs every dimension's selection over ds. A dimension that cannot be
// applied is skipped and its error returned as a warning; the others still
// filter.
func (r *Registry) Apply(ds *dataset.Dataset) (*dataset.Dataset, []error) {
	_, out, warnings := r.run(ds, false)
	return out, warnings
}

// Controls is Apply plus the widgets. Each dimension's options come from the
// rows left by the dimensions before it, so a chosen year narrows the months
// offered.
func (r *Registry) Controls(ds *dataset.Dataset) ([]Control, *dataset.Dataset, []error) {
	return r.run(ds, true)
}

func (r *Registry) run(ds *dataset.Dataset, withControls bool) ([]Control, *dataset.Dataset, []error) {
	var (
		controls []Control
		warnings []error
	)
	for _, d := range r.dimensions {
		selection := r.store.Get(d)
		if withControls {
			c := Control{Dimension: d, Selected: selection}
			if opts, err := Options(ds, d); err == nil {
				c.Options = opts
			} else {
				c.Error = err.Error()
			}
			controls = append(controls, c)
		}
		if len(selection) == 0 {
			continue
		}
		filtered, err := Apply(ds, d, selection)
		if err != nil {
			if !errors.Is(err, dataset.ErrMissingColumn) && !errors.Is(err, dataset.ErrKind) {
				log.Printf("[filter] unexpected error on %s: %v", d, err)
			}
			warnings = append(warnings, fmt.Errorf("filter %s skipped: %w", d, err))
			continue
		}
		ds = filtered
	}
	return controls, ds, warnings
}
