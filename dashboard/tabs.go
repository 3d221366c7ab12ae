// Package dashboard describes the tabs of the accident dashboard as data and
// builds each tab's visuals from a filtered dataset.
package dashboard

import (
	"strings"

	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/pivolan/prf_dashboard/dataset"
)

// GlobalFilters apply to every tab and to the headline metrics.
var GlobalFilters = []string{
	dataset.ColYear,
	dataset.ColMonth,
	dataset.ColRegion,
	dataset.ColState,
	dataset.ColMunicipality,
}

// MapMeasures are the indicators the map tab can show.
var MapMeasures = []string{dataset.ColDeaths, dataset.ColInjuries, dataset.ColVehicles}

// RadarCategories and RadarGroups are the columns offered for the radar
// chart of the factors tab.
var (
	RadarCategories = []string{
		dataset.ColWeather, dataset.ColDayPhase, dataset.ColAccidentType, dataset.ColClassification,
		dataset.ColRoadLayout, dataset.ColRegion, dataset.ColState, dataset.ColDayPart,
		dataset.ColCauseGroup, dataset.ColWeatherGroup,
	}
	RadarGroups = []string{dataset.ColYear, dataset.ColMonth, dataset.ColWeekday, dataset.ColRegion, dataset.ColLandUse}
)

type Tab struct {
	ID      string
	Title   string
	Filters []string // dimensions filtered only inside this tab
	Visuals []Visual
}

const (
	TabQuantities      = "quantitativos"
	TabCorrelations    = "correlacoes"
	TabLocations       = "localidades"
	TabCharacteristics = "caracteristicas"
	TabFactors         = "fatores"
	TabMaps            = "mapas"
)

var tabs = []Tab{
	{
		ID:    TabQuantities,
		Title: "Quantitativos",
		Visuals: []Visual{
			{ID: "serie-acidentes", Title: "Acidentes no período", Kind: KindLine, Category: dataset.ColDate},
			{ID: "ano-acidentes", Title: "Acidentes por ano", Kind: KindColumn, Category: dataset.ColYear, Order: aggregate.OrderNatural},
			{ID: "serie-mortos", Title: "Mortes no período", Kind: KindLine, Category: dataset.ColDate, Measure: dataset.ColDeaths},
			{ID: "ano-mortos", Title: "Mortos por ano", Kind: KindColumn, Category: dataset.ColYear, Measure: dataset.ColDeaths, Order: aggregate.OrderNatural},
			{ID: "serie-feridos", Title: "Feridos no período", Kind: KindLine, Category: dataset.ColDate, Measure: dataset.ColInjuries},
			{ID: "ano-feridos", Title: "Feridos por ano", Kind: KindColumn, Category: dataset.ColYear, Measure: dataset.ColInjuries, Order: aggregate.OrderNatural},
			{ID: "serie-veiculos", Title: "Veículos envolvidos no período", Kind: KindLine, Category: dataset.ColDate, Measure: dataset.ColVehicles},
			{ID: "ano-veiculos", Title: "Veículos por ano", Kind: KindColumn, Category: dataset.ColYear, Measure: dataset.ColVehicles, Order: aggregate.OrderNatural},
			{ID: "semana-veiculos", Title: "Veículos envolvidos por dia da semana", Kind: KindCategoryLine, Category: dataset.ColWeekday, Measure: dataset.ColVehicles, Order: aggregate.OrderNatural},
		},
	},
	{
		ID:    TabCorrelations,
		Title: "Correlações",
		Visuals: []Visual{
			{ID: "feridos-mortos-causa", Title: "Feridos x Mortos por grupo de causa", Kind: KindScatter, Category: dataset.ColCauseGroup,
				Measures: []string{dataset.ColInjuries, dataset.ColDeaths, dataset.ColVehicles}},
			{ID: "veiculos-feridos-tipo", Title: "Veículos x Feridos por tipo de acidente", Kind: KindScatter, Category: dataset.ColAccidentType,
				Measures: []string{dataset.ColVehicles, dataset.ColInjuries, dataset.ColInjuries}},
		},
	},
	{
		ID:      TabLocations,
		Title:   "Localidades",
		Filters: []string{dataset.ColClassification, dataset.ColDayPhase, dataset.ColWeather},
		Visuals: []Visual{
			{ID: "regiao", Title: "Acidentes por região", Kind: KindHorizontalBar, Category: dataset.ColRegion, Order: aggregate.OrderAscending},
			{ID: "uf", Title: "Acidentes por estado", Kind: KindHorizontalBar, Category: dataset.ColState, TopN: 10, MinTopN: 5, MaxTopN: 27, Order: aggregate.OrderAscending},
			{ID: "municipio", Title: "Acidentes por município", Kind: KindHorizontalBar, Category: dataset.ColMunicipality, TopN: 10, MinTopN: 5, MaxTopN: 30, Order: aggregate.OrderAscending},
			{ID: "br", Title: "BRs com mais acidentes", Kind: KindHorizontalBar, Category: dataset.ColRoad, TopN: 5, MinTopN: 5, MaxTopN: 30, Order: aggregate.OrderAscending},
		},
	},
	{
		ID:    TabCharacteristics,
		Title: "Características dos Acidentes",
		Visuals: []Visual{
			{ID: "tipo-pista", Title: "Tipo de pista", Kind: KindColumn, Category: dataset.ColLaneType},
			{ID: "uso-solo", Title: "Trecho urbano ou rural", Kind: KindPie, Category: dataset.ColLandUse},
			{ID: "dia-semana", Title: "Dia da semana", Kind: KindHorizontalBar, Category: dataset.ColWeekday, Order: aggregate.OrderAscending},
			{ID: "partes-dia", Title: "Partes do dia", Kind: KindColumn, Category: dataset.ColDayPart, Order: aggregate.OrderNatural},
			{ID: "classificacao", Title: "Classificação dos acidentes", Kind: KindTreeMap, Category: dataset.ColClassification},
			{ID: "semana-partes", Title: "Dia da semana x partes do dia", Kind: KindHeatMap, Category: dataset.ColWeekday, Group: dataset.ColDayPart},
		},
	},
	{
		ID:    TabFactors,
		Title: "Fatores de Ocorrências",
		Visuals: []Visual{
			{ID: "tipo-acidente", Title: "Tipos de acidentes", Kind: KindHorizontalBar, Category: dataset.ColAccidentType, TopN: 5, MinTopN: 5, MaxTopN: 16, Order: aggregate.OrderAscending},
			{ID: "causa-grupo", Title: "Causas de acidentes", Kind: KindHorizontalBar, Category: dataset.ColCauseGroup, TopN: 5, MinTopN: 5, MaxTopN: 8, Order: aggregate.OrderAscending},
			{ID: "clima", Title: "Condição meteorológica", Kind: KindColumn, Category: dataset.ColWeatherGroup},
			{ID: "fase-dia", Title: "Fase do dia", Kind: KindHorizontalBar, Category: dataset.ColDayPhase, Order: aggregate.OrderAscending},
			{ID: "radar", Title: "Radar", Kind: KindRadar, Category: dataset.ColAccidentType, Group: dataset.ColYear},
		},
	},
	{
		ID:      TabMaps,
		Title:   "Mapas",
		Filters: []string{dataset.ColRoad, dataset.ColKm},
		Visuals: []Visual{
			{ID: "mapa", Title: "Mapa de calor", Kind: KindDensity, Measure: dataset.ColDeaths},
		},
	},
}

// Tabs returns the catalog in display order.
func Tabs() []Tab {
	out := make([]Tab, len(tabs))
	copy(out, tabs)
	return out
}

// TabByID finds a tab by id, case-insensitively; the first tab is returned
// for unknown ids.
func TabByID(id string) (Tab, bool) {
	for _, t := range tabs {
		if strings.EqualFold(t.ID, id) {
			return t, true
		}
	}
	return tabs[0], false
}

// AllFilters lists the global filters followed by every tab filter.
func AllFilters() []string {
	out := append([]string{}, GlobalFilters...)
	for _, t := range tabs {
		out = append(out, t.Filters...)
	}
	return out
}
