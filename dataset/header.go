package dataset

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pivolan/go_utils"
	"github.com/pivolan/prf_dashboard/domain/models"
)

type setter func(b *rowBuilder, raw string)

type sourceField struct {
	column  string   // canonical column the header fills, "" for helper inputs
	derives []string // columns computed from this header when absent
	set     setter
}

// keys are normalizeName'd header names, covering the processed dashboard
// file and the raw PRF open-data layout
var sourceFields = map[string]sourceField{
	"data inversa":             {column: ColDate, derives: []string{ColYear, ColMonth, ColWeekday}, set: setDate},
	"data":                     {column: ColDate, derives: []string{ColYear, ColMonth, ColWeekday}, set: setDate},
	"ano":                      {column: ColYear, set: setYear},
	"mes":                      {column: ColMonth, set: setMonth},
	"dia semana":               {column: ColWeekday, set: text(func(r *models.Accident, v string) { r.Weekday = v })},
	"horario":                  {derives: []string{ColDayPart}, set: setHour},
	"fase dia":                 {column: ColDayPhase, set: text(func(r *models.Accident, v string) { r.DayPhase = v })},
	"partes dia":               {column: ColDayPart, set: text(func(r *models.Accident, v string) { r.DayPart = v })},
	"regiao":                   {column: ColRegion, set: text(func(r *models.Accident, v string) { r.Region = v })},
	"uf":                       {column: ColState, derives: []string{ColRegion}, set: text(func(r *models.Accident, v string) { r.State = strings.ToUpper(v) })},
	"municipio":                {column: ColMunicipality, set: text(func(r *models.Accident, v string) { r.Municipality = v })},
	"br":                       {column: ColRoad, set: text(func(r *models.Accident, v string) { r.Road = normalizeRoad(v) })},
	"km":                       {column: ColKm, set: text(func(r *models.Accident, v string) { r.Km = v })},
	"latitude":                 {column: ColLatitude, set: setLatitude},
	"longitude":                {column: ColLongitude, set: setLongitude},
	"classificacao acidente":   {column: ColClassification, set: text(func(r *models.Accident, v string) { r.Classification = v })},
	"tipo acidente":            {column: ColAccidentType, set: text(func(r *models.Accident, v string) { r.AccidentType = v })},
	"causa acidente":           {column: ColCause, derives: []string{ColCauseGroup}, set: text(func(r *models.Accident, v string) { r.Cause = v })},
	"causa grupo":              {column: ColCauseGroup, set: text(func(r *models.Accident, v string) { r.CauseGroup = v })},
	"condicao metereologica":   {column: ColWeather, derives: []string{ColWeatherGroup}, set: text(func(r *models.Accident, v string) { r.Weather = v })},
	"condicao climatica grupo": {column: ColWeatherGroup, set: text(func(r *models.Accident, v string) { r.WeatherGroup = v })},
	"grupo via":                {column: ColRoadLayout, set: text(func(r *models.Accident, v string) { r.RoadLayoutGroup = v })},
	"tracado via":              {derives: []string{ColRoadLayout}, set: func(b *rowBuilder, v string) { b.layout = v }},
	"tipo pista":               {column: ColLaneType, set: text(func(r *models.Accident, v string) { r.LaneType = v })},
	"uso solo":                 {column: ColLandUse, set: text(func(r *models.Accident, v string) { r.LandUse = landUse(v) })},
	"mortos":                   {column: ColDeaths, set: func(b *rowBuilder, v string) { b.rec.Deaths = parseCount(v) }},
	"feridos":                  {column: ColInjuries, set: setInjuries},
	"feridos leves":            {derives: []string{ColInjuries}, set: func(b *rowBuilder, v string) { b.lightInjuries = parseCount(v) }},
	"feridos graves":           {derives: []string{ColInjuries}, set: func(b *rowBuilder, v string) { b.severeInjuries = parseCount(v) }},
	"veiculos":                 {column: ColVehicles, set: func(b *rowBuilder, v string) { b.rec.Vehicles = parseCount(v) }},
}

// identifiers of the raw export that carry no analytical meaning
var ignoredHeaders = []string{"id", "pesid", "id veiculo", "delegacia", "regional", "uop", "ignorados", "ilesos", "estado", "sentido via", "dia"}

func text(assign func(r *models.Accident, v string)) setter {
	return func(b *rowBuilder, raw string) {
		assign(&b.rec, strings.TrimSpace(raw))
	}
}

// headerMap binds source column positions to setters.
type headerMap struct {
	setters []setter // indexed by source position, nil when ignored
	present []string
}

func analyzeHeaders(firstRow []string) (*headerMap, error) {
	if len(firstRow) == 0 {
		return nil, fmt.Errorf("dataset has no header row")
	}
	headerLike := 0
	for _, h := range firstRow {
		if isLikelyHeader(h) {
			headerLike++
		}
	}
	if float64(headerLike)/float64(len(firstRow)) < 0.5 {
		return nil, fmt.Errorf("first row does not look like a header: %v", firstRow)
	}

	hm := &headerMap{setters: make([]setter, len(firstRow))}
	seen := map[string]bool{}
	presentSet := map[string]bool{}
	for i, h := range firstRow {
		key := normalizeName(strings.TrimPrefix(h, "\ufeff"))
		field, ok := sourceFields[key]
		if !ok {
			if !go_utils.InArray(key, ignoredHeaders) {
				log.Printf("[dataset] ignoring unknown column %q", h)
			}
			continue
		}
		if seen[key] {
			log.Printf("[dataset] duplicate column %q, keeping the first one", h)
			continue
		}
		seen[key] = true
		hm.setters[i] = field.set
		if field.column != "" {
			presentSet[field.column] = true
		}
		for _, d := range field.derives {
			presentSet[d] = true
		}
	}
	// coordinates only make sense as a pair
	if presentSet[ColLatitude] != presentSet[ColLongitude] {
		delete(presentSet, ColLatitude)
		delete(presentSet, ColLongitude)
	}
	for _, name := range AllColumnNames() {
		if presentSet[name] {
			hm.present = append(hm.present, name)
		}
	}
	return hm, nil
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`),
}

// isLikelyHeader reports whether text looks like a column name rather than
// a data value.
func isLikelyHeader(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64); err == nil {
		return false
	}
	for _, p := range datePatterns {
		if p.MatchString(text) {
			return false
		}
	}
	letters, total := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 0 && float64(letters)/float64(total) >= 0.3
}
