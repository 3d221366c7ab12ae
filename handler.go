package main

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/pivolan/prf_dashboard/dashboard"
	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
	"github.com/pivolan/prf_dashboard/filter"
	"github.com/pivolan/prf_dashboard/metrics"
)

const (
	exportLimit    = 200000
	recordsDefault = 50
	recordsMax     = 1000
)

// registry covers the global filters plus the filters of tab.
func (a *app) registry(store filter.Store, tab dashboard.Tab) *filter.Registry {
	dims := append(append([]string{}, dashboard.GlobalFilters...), tab.Filters...)
	return filter.NewRegistry(store, dims...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[web] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dataset.ErrMissingColumn), errors.Is(err, dataset.ErrKind),
		errors.Is(err, aggregate.ErrTimeSeries), errors.Is(err, aggregate.ErrSameColumns),
		errors.Is(err, aggregate.ErrTooManyPeriods):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]interface{}{"error": err.Error()})
}

func messages(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

type summaryResponse struct {
	Rows     int            `json:"rows"`
	Summary  models.Summary `json:"summary"`
	Text     metrics.Text   `json:"text"`
	Warnings []string       `json:"warnings"`
}

// handleSummary returns the headline metrics, computed on the global
// filters only.
func (a *app) handleSummary(w http.ResponseWriter, r *http.Request) {
	ds, warnings := filter.NewRegistry(storeOf(r), dashboard.GlobalFilters...).Apply(a.ds)
	s := metrics.Compute(ds)
	writeJSON(w, http.StatusOK, summaryResponse{
		Rows:     ds.Len(),
		Summary:  s,
		Text:     metrics.Format(s),
		Warnings: messages(warnings),
	})
}

type aggregateResponse struct {
	Category string      `json:"category"`
	Measure  string      `json:"measure"`
	Rows     interface{} `json:"rows"`
	Sum      float64     `json:"sum"`
	Warnings []string    `json:"warnings"`
}

func parseOrder(s string) aggregate.Order {
	switch s {
	case "asc", "crescente":
		return aggregate.OrderAscending
	case "natural":
		return aggregate.OrderNatural
	}
	return aggregate.OrderDescending
}

func (a *app) handleAggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab, _ := dashboard.TabByID(q.Get("tab"))
	ds, warnings := a.registry(storeOf(r), tab).Apply(a.ds)

	spec := aggregate.Spec{
		Category: dataset.CanonicalName(q.Get("categoria")),
		Order:    parseOrder(q.Get("ordem")),
	}
	if m := q.Get("medida"); m != "" {
		spec.Measure = dataset.CanonicalName(m)
	}
	if n, err := strconv.Atoi(q.Get("top")); err == nil && n > 0 {
		spec.TopN = n
	}
	if q.Get("base") == "todos" {
		spec.Base = aggregate.BaseAll
	}
	res, err := aggregate.Aggregate(ds, spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregateResponse{
		Category: res.Category,
		Measure:  res.Measure,
		Rows:     res.Rows,
		Sum:      res.Sum,
		Warnings: messages(warnings),
	})
}

type seriesResponse struct {
	Column   string      `json:"column"`
	Measure  string      `json:"measure"`
	Period   string      `json:"period"`
	Points   interface{} `json:"points"`
	Warnings []string    `json:"warnings"`
}

func (a *app) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab, _ := dashboard.TabByID(q.Get("tab"))
	ds, warnings := a.registry(storeOf(r), tab).Apply(a.ds)

	spec := aggregate.SeriesSpec{Period: aggregate.ParsePeriod(q.Get("periodo"))}
	if c := q.Get("coluna"); c != "" {
		spec.Column = dataset.CanonicalName(c)
	}
	if m := q.Get("medida"); m != "" {
		spec.Measure = dataset.CanonicalName(m)
	}
	var err error
	if spec.From, err = parseDay(q.Get("de")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "de: " + err.Error()})
		return
	}
	if spec.To, err = parseDay(q.Get("ate")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "ate: " + err.Error()})
		return
	}
	s, err := aggregate.TimeSeries(ds, spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{
		Column:   s.Column,
		Measure:  s.Measure,
		Period:   s.Period.String(),
		Points:   s.Points,
		Warnings: messages(warnings),
	})
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

type filtersResponse struct {
	Global   []filter.Control `json:"global"`
	Tab      []filter.Control `json:"tab"`
	Rows     int              `json:"rows"`
	Warnings []string         `json:"warnings"`
}

func (a *app) handleFilters(w http.ResponseWriter, r *http.Request) {
	tab, _ := dashboard.TabByID(r.URL.Query().Get("tab"))
	store := storeOf(r)
	global, ds, warnings := filter.NewRegistry(store, dashboard.GlobalFilters...).Controls(a.ds)
	local, ds, more := filter.NewRegistry(store, tab.Filters...).Controls(ds)
	writeJSON(w, http.StatusOK, filtersResponse{
		Global:   global,
		Tab:      local,
		Rows:     ds.Len(),
		Warnings: messages(append(warnings, more...)),
	})
}

type selectRequest struct {
	Values []string `json:"values"`
}

// handleSelect replaces the selection of one dimension. The body is either
// JSON {"values": [...]} or repeated "valor" form fields.
func (a *app) handleSelect(w http.ResponseWriter, r *http.Request) {
	dim := dataset.CanonicalName(chi.URLParam(r, "dimension"))
	var req selectRequest
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
			return
		}
		req.Values = r.Form["valor"]
	}
	reg := filter.NewRegistry(storeOf(r), dashboard.AllFilters()...)
	if err := reg.Select(dim, req.Values); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dimension": dim, "selected": reg.Selection(dim)})
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func (a *app) handleClear(w http.ResponseWriter, r *http.Request) {
	filter.NewRegistry(storeOf(r), dashboard.AllFilters()...).Clear()
	w.WriteHeader(http.StatusNoContent)
}

type recordsResponse struct {
	Total  int        `json:"total"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// handleRecords pages through the filtered rows in display form.
func (a *app) handleRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab, _ := dashboard.TabByID(q.Get("tab"))
	ds, _ := a.registry(storeOf(r), tab).Apply(a.ds)

	limit := recordsDefault
	if n, err := strconv.Atoi(q.Get("limite")); err == nil && n > 0 {
		limit = min(n, recordsMax)
	}
	offset, _ := strconv.Atoi(q.Get("inicio"))
	offset = max(offset, 0)

	records := ds.Records()
	resp := recordsResponse{Total: len(records), Header: ds.Header(), Rows: [][]string{}}
	for i := offset; i < len(records) && i < offset+limit; i++ {
		resp.Rows = append(resp.Rows, ds.Row(records[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}
