package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/pivolan/prf_dashboard/filter"
	"github.com/pivolan/prf_dashboard/metrics"
)

const maxOptionsShown = 12

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

// GenerateResultTable renders an aggregation as category, total and share.
func GenerateResultTable(res *aggregate.Result) string {
	t := newTable()
	t.AppendHeader(table.Row{res.Category, res.Measure, "%"})
	for _, row := range res.Rows {
		t.AppendRow(table.Row{row.Value, metrics.FormatThousands(int64(row.Total)), metrics.FormatDecimal(row.Percent, 1)})
	}
	t.AppendFooter(table.Row{"Total", metrics.FormatThousands(int64(res.Sum)), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return t.Render()
}

// GenerateSeriesTable renders one line per period.
func GenerateSeriesTable(s *aggregate.Series) string {
	t := newTable()
	t.AppendHeader(table.Row{s.Period.String(), s.Measure})
	for _, p := range s.Points {
		t.AppendRow(table.Row{p.Label, metrics.FormatThousands(int64(p.Total))})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return t.Render()
}

// GenerateSummaryTable renders the headline metrics.
func GenerateSummaryTable(m metrics.Text) string {
	t := newTable()
	t.AppendRows([]table.Row{
		{"Acidentes", m.Accidents},
		{"Mortos", m.Deaths},
		{"Feridos", m.Injuries},
		{"Veículos", m.Vehicles},
		{"Taxa de mortalidade", m.MortalityRate},
		{"Mortos por 100 feridos", m.DeathsPer100Injured},
		{"Veículos por acidente", m.VehiclesPerAccident},
	})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return t.Render()
}

// GenerateControlsTable lists each filter with its current selection and a
// sample of the values it accepts.
func GenerateControlsTable(controls []filter.Control) string {
	t := newTable()
	t.AppendHeader(table.Row{"Filtro", "Selecionado", "Opções"})
	for _, c := range controls {
		options := c.Options
		more := ""
		if len(options) > maxOptionsShown {
			more = "; ..."
			options = options[:maxOptionsShown]
		}
		shown := strings.Join(options, "; ") + more
		if c.Error != "" {
			shown = c.Error
		}
		selected := strings.Join(c.Selected, "; ")
		if selected == "" {
			selected = "(todos)"
		}
		t.AppendRow(table.Row{c.Dimension, selected, shown})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 48}})
	return t.Render()
}
