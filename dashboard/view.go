package dashboard

import (
	"runtime"
	"time"

	"github.com/pivolan/go_utils"
	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
	"github.com/pivolan/prf_dashboard/filter"
	"github.com/pivolan/prf_dashboard/metrics"
	"golang.org/x/sync/errgroup"
)

// Params carries the per-request choices that are not filters.
type Params struct {
	TopN          map[string]int // visual id -> top-N
	MapMeasure    string
	RadarCategory string
	RadarGroup    string
}

type View struct {
	Tab            Tab
	Tabs           []Tab
	First, Last    time.Time
	HasPeriod      bool
	Rows           int
	Summary        models.Summary
	Text           metrics.Text
	GlobalControls []filter.Control
	TabControls    []filter.Control
	Visuals        []Built
	Warnings       []string
}

// Build runs the whole pipeline for one tab: global filters, headline
// metrics, tab filters, then every visual on its own. Visuals are built
// concurrently over the same read-only rows.
func Build(ds *dataset.Dataset, tab Tab, store filter.Store, p Params) *View {
	v := &View{Tab: tab, Tabs: Tabs()}
	v.First, v.Last, v.HasPeriod = ds.DateRange()

	global := filter.NewRegistry(store, GlobalFilters...)
	controls, filtered, warnings := global.Controls(ds)
	v.GlobalControls = controls
	v.addWarnings(warnings)

	v.Summary = metrics.Compute(filtered)
	v.Text = metrics.Format(v.Summary)

	local := filter.NewRegistry(store, tab.Filters...)
	controls, filtered, warnings = local.Controls(filtered)
	v.TabControls = controls
	v.addWarnings(warnings)
	v.Rows = filtered.Len()

	v.Visuals = make([]Built, len(tab.Visuals))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, visual := range tab.Visuals {
		g.Go(func() error {
			v.Visuals[i] = p.adjust(visual).Build(filtered)
			return nil
		})
	}
	g.Wait()
	for _, built := range v.Visuals {
		if built.Err != nil {
			v.Warnings = append(v.Warnings, built.Warning())
		}
	}
	return v
}

// Visual finds a built visual by id.
func (v *View) Visual(id string) (Built, bool) {
	for _, b := range v.Visuals {
		if b.Visual.ID == id {
			return b, true
		}
	}
	return Built{}, false
}

func (v *View) addWarnings(errs []error) {
	for _, err := range errs {
		v.Warnings = append(v.Warnings, err.Error())
	}
}

// adjust applies the request choices to a catalog visual.
func (p Params) adjust(v Visual) Visual {
	if n, ok := p.TopN[v.ID]; ok {
		v = v.WithTopN(n)
	}
	switch v.Kind {
	case KindDensity:
		if p.MapMeasure == "" {
			break
		}
		if go_utils.InArray(p.MapMeasure, MapMeasures) {
			v.Measure = p.MapMeasure
		} else {
			v.Measure = "" // plain accident count
		}
	case KindRadar:
		if go_utils.InArray(p.RadarCategory, RadarCategories) {
			v.Category = p.RadarCategory
		}
		if go_utils.InArray(p.RadarGroup, RadarGroups) {
			v.Group = p.RadarGroup
		}
	}
	return v
}
