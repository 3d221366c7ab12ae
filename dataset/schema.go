package dataset

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mozillazg/go-unidecode"
	"github.com/pivolan/prf_dashboard/domain/models"
)

const (
	ColDate           = "Data Inversa"
	ColYear           = "Ano"
	ColMonth          = "Mês"
	ColWeekday        = "Dia Semana"
	ColDayPhase       = "Fase Dia"
	ColDayPart        = "Partes Dia"
	ColRegion         = "Região"
	ColState          = "Uf"
	ColMunicipality   = "Municipio"
	ColRoad           = "Br"
	ColKm             = "Km"
	ColLatitude       = "Latitude"
	ColLongitude      = "Longitude"
	ColClassification = "Classificacao Acidente"
	ColAccidentType   = "Tipo Acidente"
	ColCause          = "Causa Acidente"
	ColCauseGroup     = "Causa Grupo"
	ColWeather        = "Condicao Metereologica"
	ColWeatherGroup   = "Condicao Climatica Grupo"
	ColRoadLayout     = "Grupo Via"
	ColLaneType       = "Tipo Pista"
	ColLandUse        = "Uso Solo"
	ColDeaths         = "Mortos"
	ColInjuries       = "Feridos"
	ColVehicles       = "Veiculos"
)

// Order is the sort rule of a column's value domain.
type Order int

const (
	OrderAlpha Order = iota
	OrderNumeric
	OrderMonth
	OrderWeekday
	OrderDayPart
)

// Column describes one dataset column. The kind is fixed by the schema and
// never inferred from values.
type Column struct {
	Name  string
	Kind  models.ColumnKind
	Order Order

	text   func(r *models.Accident) string
	number func(r *models.Accident) float64
	date   func(r *models.Accident) time.Time
}

func categorical(name string, order Order, text func(r *models.Accident) string) *Column {
	return &Column{Name: name, Kind: models.KindCategorical, Order: order, text: text}
}

func measure(name string, number func(r *models.Accident) float64) *Column {
	return &Column{Name: name, Kind: models.KindMeasure, number: number}
}

func coordinate(name string, number func(r *models.Accident) float64) *Column {
	return &Column{Name: name, Kind: models.KindCoordinate, number: number}
}

var schema = []*Column{
	{Name: ColDate, Kind: models.KindTemporal, date: func(r *models.Accident) time.Time { return r.Date }},
	categorical(ColYear, OrderNumeric, func(r *models.Accident) string {
		if r.Year <= 0 {
			return ""
		}
		return strconv.Itoa(r.Year)
	}),
	categorical(ColMonth, OrderMonth, func(r *models.Accident) string { return r.Month }),
	categorical(ColWeekday, OrderWeekday, func(r *models.Accident) string { return r.Weekday }),
	categorical(ColDayPhase, OrderAlpha, func(r *models.Accident) string { return r.DayPhase }),
	categorical(ColDayPart, OrderDayPart, func(r *models.Accident) string { return r.DayPart }),
	categorical(ColRegion, OrderAlpha, func(r *models.Accident) string { return r.Region }),
	categorical(ColState, OrderAlpha, func(r *models.Accident) string { return r.State }),
	categorical(ColMunicipality, OrderAlpha, func(r *models.Accident) string { return r.Municipality }),
	categorical(ColRoad, OrderNumeric, func(r *models.Accident) string { return r.Road }),
	categorical(ColKm, OrderNumeric, func(r *models.Accident) string { return r.Km }),
	coordinate(ColLatitude, func(r *models.Accident) float64 { return r.Latitude }),
	coordinate(ColLongitude, func(r *models.Accident) float64 { return r.Longitude }),
	categorical(ColClassification, OrderAlpha, func(r *models.Accident) string { return r.Classification }),
	categorical(ColAccidentType, OrderAlpha, func(r *models.Accident) string { return r.AccidentType }),
	categorical(ColCause, OrderAlpha, func(r *models.Accident) string { return r.Cause }),
	categorical(ColCauseGroup, OrderAlpha, func(r *models.Accident) string { return r.CauseGroup }),
	categorical(ColWeather, OrderAlpha, func(r *models.Accident) string { return r.Weather }),
	categorical(ColWeatherGroup, OrderAlpha, func(r *models.Accident) string { return r.WeatherGroup }),
	categorical(ColRoadLayout, OrderAlpha, func(r *models.Accident) string { return r.RoadLayoutGroup }),
	categorical(ColLaneType, OrderAlpha, func(r *models.Accident) string { return r.LaneType }),
	categorical(ColLandUse, OrderAlpha, func(r *models.Accident) string { return r.LandUse }),
	measure(ColDeaths, func(r *models.Accident) float64 { return float64(r.Deaths) }),
	measure(ColInjuries, func(r *models.Accident) float64 { return float64(r.Injuries) }),
	measure(ColVehicles, func(r *models.Accident) float64 { return float64(r.Vehicles) }),
}

var schemaIndex = func() map[string]*Column {
	idx := make(map[string]*Column, len(schema))
	for _, c := range schema {
		idx[normalizeName(c.Name)] = c
	}
	return idx
}()

// Columns returns the schema in declaration order.
func Columns() []*Column {
	out := make([]*Column, len(schema))
	copy(out, schema)
	return out
}

// CanonicalName maps any spelling of a schema column ("uf", "fase-dia") to
// its name. Unknown names come back unchanged.
func CanonicalName(name string) string {
	if c, ok := lookup(name); ok {
		return c.Name
	}
	return name
}

func lookup(name string) (*Column, bool) {
	c, ok := schemaIndex[normalizeName(name)]
	return c, ok
}

// normalizeName folds accents, case, underscores and repeated spaces, so
// "Região", "regiao" and "REGIAO" are the same key.
func normalizeName(name string) string {
	s := strings.ToLower(unidecode.Unidecode(strings.TrimSpace(name)))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Value returns the categorical text of r; "" means null.
func (c *Column) Value(r *models.Accident) string {
	if c.text == nil {
		return ""
	}
	return strings.TrimSpace(c.text(r))
}

// Number returns the numeric value of r for measure and coordinate columns.
func (c *Column) Number(r *models.Accident) float64 {
	if c.number == nil {
		return 0
	}
	return c.number(r)
}

// Time returns the date of r; false when the date is missing.
func (c *Column) Time(r *models.Accident) (time.Time, bool) {
	if c.date == nil {
		return time.Time{}, false
	}
	t := c.date(r)
	return t, !t.IsZero()
}

// Less orders two domain values by the column's sort rule, falling back to
// alphabetical order for values the rule does not know.
func (c *Column) Less(a, b string) bool {
	ra, okA := c.rank(a)
	rb, okB := c.rank(b)
	switch {
	case okA && okB && ra != rb:
		return ra < rb
	case okA != okB:
		return okA
	}
	na, nb := normalizeName(a), normalizeName(b)
	if na != nb {
		return na < nb
	}
	return a < b
}

func (c *Column) rank(v string) (float64, bool) {
	switch c.Order {
	case OrderNumeric:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64)
		return f, err == nil
	case OrderMonth:
		r, ok := monthRank[normalizeName(v)]
		return float64(r), ok
	case OrderWeekday:
		r, ok := weekdayRank[normalizeName(v)]
		return float64(r), ok
	case OrderDayPart:
		r, ok := dayPartRank[normalizeName(v)]
		return float64(r), ok
	}
	return 0, false
}

// Sort orders values in place by the column's sort rule.
func (c *Column) Sort(values []string) {
	sort.SliceStable(values, func(i, j int) bool { return c.Less(values[i], values[j]) })
}
