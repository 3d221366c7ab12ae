package main

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pivolan/prf_dashboard/dashboard"
	"github.com/pivolan/prf_dashboard/filter"
	uuid "github.com/satori/go.uuid"
)

const (
	sessionCookie = "prf_session"
	sessionParam  = "sessao"
	topParam      = "top_"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("02/01/2006") },
	"has": func(values []string, v string) bool {
		for _, s := range values {
			if s == v {
				return true
			}
		}
		return false
	},
}).ParseFS(templateFiles, "templates/dashboard.html"))

type ctxKey int

const storeKey ctxKey = iota

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(a.withSession)

	r.Get("/", a.handlePage)
	r.Get("/chart", a.handleChart)
	r.Post("/filtros", a.handleFilterForm)
	r.Get("/export.xlsx", a.handleExport)

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", a.handleSummary)
		r.Get("/aggregate", a.handleAggregate)
		r.Get("/timeseries", a.handleTimeSeries)
		r.Get("/filters", a.handleFilters)
		r.Post("/filters/{dimension}", a.handleSelect)
		r.Delete("/filters", a.handleClear)
		r.Get("/records", a.handleRecords)
	})
	return r
}

// withSession binds every request to a filter store. The id comes from the
// "sessao" query parameter (links sent by the bot), then the cookie; a new
// one is issued otherwise.
func (a *app) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := validSession(r.URL.Query().Get(sessionParam))
		if id == "" {
			if c, err := r.Cookie(sessionCookie); err == nil {
				id = validSession(c.Value)
			}
		}
		if id == "" {
			id = a.sessions.NewID()
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(a.cfg.SessionTTL.Seconds()),
		})
		ctx := context.WithValue(r.Context(), storeKey, a.sessions.Store(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validSession(id string) string {
	u, err := uuid.FromString(id)
	if err != nil {
		return ""
	}
	return u.String()
}

func storeOf(r *http.Request) filter.Store {
	if s, ok := r.Context().Value(storeKey).(filter.Store); ok {
		return s
	}
	return filter.NewMemoryStore()
}

// paramsOf reads the non-filter choices of a tab from the query string.
func paramsOf(q url.Values) dashboard.Params {
	p := dashboard.Params{
		TopN:          map[string]int{},
		MapMeasure:    q.Get("medida"),
		RadarCategory: q.Get("radar_categoria"),
		RadarGroup:    q.Get("radar_grupo"),
	}
	for key, values := range q {
		if !strings.HasPrefix(key, topParam) || len(values) == 0 {
			continue
		}
		if n, err := strconv.Atoi(values[0]); err == nil {
			p.TopN[strings.TrimPrefix(key, topParam)] = n
		}
	}
	return p
}

type pageVisual struct {
	dashboard.Built
	ChartURL string
	TopN     bool
}

type pageData struct {
	*dashboard.View
	Items         []pageVisual
	Query         url.Values
	MapMeasures   []string
	RadarCategory []string
	RadarGroup    []string
	Params        dashboard.Params
}

func (a *app) handlePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Del(sessionParam)
	tab, _ := dashboard.TabByID(q.Get("tab"))
	q.Set("tab", tab.ID)
	p := paramsOf(q)

	view := dashboard.Build(a.ds, tab, storeOf(r), p)
	data := pageData{
		View:          view,
		Query:         q,
		MapMeasures:   dashboard.MapMeasures,
		RadarCategory: dashboard.RadarCategories,
		RadarGroup:    dashboard.RadarGroups,
		Params:        p,
	}
	for _, b := range view.Visuals {
		switch b.Visual.Kind {
		case dashboard.KindRadar:
			data.Params.RadarCategory, data.Params.RadarGroup = b.Visual.Category, b.Visual.Group
		case dashboard.KindDensity:
			data.Params.MapMeasure = b.Visual.Measure
		}
	}
	for _, b := range view.Visuals {
		cq := url.Values{}
		for k, v := range q {
			cq[k] = v
		}
		cq.Set("id", b.Visual.ID)
		data.Items = append(data.Items, pageVisual{
			Built:    b,
			ChartURL: "/chart?" + cq.Encode(),
			TopN:     b.Visual.TopN > 0,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Printf("[web] render page: %v", err)
		http.Error(w, "Error rendering dashboard", http.StatusInternalServerError)
	}
}

// handleChart renders one visual of a tab as a standalone interactive page,
// embedded by the dashboard through an iframe.
func (a *app) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab, _ := dashboard.TabByID(q.Get("tab"))
	id := q.Get("id")

	one := tab
	one.Visuals = nil
	for _, v := range tab.Visuals {
		if v.ID == id {
			one.Visuals = append(one.Visuals, v)
		}
	}
	if len(one.Visuals) == 0 {
		http.Error(w, "unknown visual "+id, http.StatusNotFound)
		return
	}

	view := dashboard.Build(a.ds, one, storeOf(r), paramsOf(q))
	built := view.Visuals[0]
	c, err := built.Chart()
	if err != nil {
		http.Error(w, built.Warning(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(w); err != nil {
		log.Printf("[web] render chart %s: %v", id, err)
	}
}

// handleFilterForm stores the selections posted by the page form and
// redirects back to the tab.
func (a *app) handleFilterForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error reading form", http.StatusBadRequest)
		return
	}
	tab, _ := dashboard.TabByID(r.FormValue("tab"))
	reg := a.registry(storeOf(r), tab)
	if r.FormValue("limpar") != "" {
		reg.Clear()
	} else {
		for _, d := range reg.Dimensions() {
			if err := reg.Select(d, r.Form["f_"+d]); err != nil {
				log.Printf("[web] select %s: %v", d, err)
			}
		}
	}
	back := url.Values{}
	back.Set("tab", tab.ID)
	for k, v := range r.Form {
		if strings.HasPrefix(k, topParam) || k == "medida" || k == "radar_categoria" || k == "radar_grupo" {
			back[k] = v
		}
	}
	http.Redirect(w, r, "/?"+back.Encode(), http.StatusSeeOther)
}

func (a *app) handleExport(w http.ResponseWriter, r *http.Request) {
	tab, _ := dashboard.TabByID(r.URL.Query().Get("tab"))
	ds, warnings := a.registry(storeOf(r), tab).Apply(a.ds)
	for _, err := range warnings {
		log.Printf("[web] export: %v", err)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="acidentes_`+time.Now().Format("20060102-150405")+`.xlsx"`)
	if err := ds.WriteExcel(w, exportLimit); err != nil {
		log.Printf("[web] export: %v", err)
	}
}
