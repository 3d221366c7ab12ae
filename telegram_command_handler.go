package main

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pivolan/prf_dashboard/aggregate"
	"github.com/pivolan/prf_dashboard/dashboard"
	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/filter"
	"github.com/pivolan/prf_dashboard/metrics"
	"github.com/pivolan/prf_dashboard/plot"
)

const (
	defaultTopN   = 10
	tableRowLimit = 5000
)

const helpText = `Olá! 👋

Eu respondo sobre os acidentes nas rodovias federais registrados pela PRF.

Comandos:
/resumo - indicadores gerais com os filtros atuais
/filtro - lista os filtros e as opções
/filtro Uf = SC; PR - escolhe valores de um filtro (vazio depois do "=" limpa)
/limpar - remove todos os filtros
/top Municipio; Mortos; 10 - ranking de uma coluna, por contagem ou por medida
/serie Mortos; ano - evolução no tempo (periodo: mes, dia ou ano)
/grafico ano-mortos - imagem de um gráfico do painel
/tabela - planilha com os registros filtrados
/painel - link do painel web com os mesmos filtros`

// reply is one outgoing message: text, an image or a file.
type reply struct {
	Text     string
	HTML     bool
	Image    []byte
	Document []byte
	FileName string
	Caption  string
}

func textReply(format string, args ...interface{}) reply {
	return reply{Text: fmt.Sprintf(format, args...)}
}

func preReply(table string) reply {
	return reply{Text: "<pre>\n" + html.EscapeString(table) + "\n</pre>", HTML: true}
}

func unescapePre(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<pre>\n"), "\n</pre>")
	return html.UnescapeString(s)
}

// handleCommand answers one bot command for a chat. It never talks to
// telegram itself, so every answer can be checked in tests.
func (a *app) handleCommand(chatID int64, name, args string) []reply {
	args = strings.TrimSpace(args)
	switch strings.ToLower(name) {
	case "start", "ajuda", "help":
		return []reply{{Text: helpText}}
	case "resumo":
		return a.commandSummary(chatID)
	case "filtro":
		return a.commandFilter(chatID, args)
	case "limpar":
		filter.NewRegistry(a.chatStore(chatID), dashboard.AllFilters()...).Clear()
		return []reply{{Text: "Filtros removidos."}}
	case "top":
		return a.commandTop(chatID, args)
	case "serie":
		return a.commandSeries(chatID, args)
	case "grafico":
		return a.commandGraph(chatID, args)
	case "tabela":
		return a.commandTable(chatID)
	case "painel":
		return []reply{a.panelLink(chatID, "")}
	}
	return []reply{{Text: "Comando desconhecido. Use /ajuda para ver a lista."}}
}

func (a *app) chatStore(chatID int64) filter.Store {
	return a.sessions.Store(a.chatSession(chatID))
}

// chatData applies every filter chosen in the chat.
func (a *app) chatData(chatID int64) (*dataset.Dataset, []reply) {
	ds, warnings := filter.NewRegistry(a.chatStore(chatID), dashboard.AllFilters()...).Apply(a.ds)
	return ds, warningReplies(warnings)
}

func warningReplies(errs []error) []reply {
	if len(errs) == 0 {
		return nil
	}
	return []reply{{Text: "⚠️ " + strings.Join(messages(errs), "\n⚠️ ")}}
}

func (a *app) commandSummary(chatID int64) []reply {
	ds, warnings := filter.NewRegistry(a.chatStore(chatID), dashboard.GlobalFilters...).Apply(a.ds)
	s := metrics.Compute(ds)
	out := []reply{preReply(GenerateSummaryTable(metrics.Format(s)))}
	if len(s.Missing) > 0 {
		out = append(out, textReply("Colunas ausentes na base: %s", strings.Join(s.Missing, ", ")))
	}
	return append(out, warningReplies(warnings)...)
}

func (a *app) commandFilter(chatID int64, args string) []reply {
	reg := filter.NewRegistry(a.chatStore(chatID), dashboard.AllFilters()...)
	dim, values, assign := parseFilterArgs(args)
	switch {
	case dim == "":
		controls, _, warnings := reg.Controls(a.ds)
		return append([]reply{preReply(GenerateControlsTable(controls))}, warningReplies(warnings)...)
	case !assign:
		opts, err := reg.Options(a.ds, dim)
		if err != nil {
			return []reply{textReply("Filtro %s indisponível: %v", dim, err)}
		}
		return []reply{textReply("Opções de %s:\n%s", dim, strings.Join(opts, "; "))}
	}
	if err := reg.Select(dim, values); err != nil {
		return []reply{textReply("Não foi possível filtrar: %v", err)}
	}
	selected := reg.Selection(dim)
	if len(selected) == 0 {
		return []reply{textReply("Filtro %s removido.", dim)}
	}
	return []reply{textReply("Filtro %s: %s", dim, strings.Join(selected, "; "))}
}

// parseFilterArgs reads "Dimensão = v1; v2". Without "=" only the dimension
// is returned.
func parseFilterArgs(args string) (dim string, values []string, assign bool) {
	left, right, assign := strings.Cut(args, "=")
	dim = strings.TrimSpace(left)
	if dim != "" {
		dim = dataset.CanonicalName(dim)
	}
	if assign {
		values = splitArgs(right)
	}
	return dim, values, assign
}

// splitArgs splits on ";" and drops blanks.
func splitArgs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseMeasure maps "acidentes" (or nothing) to a row count.
func parseMeasure(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "acidentes", "contagem", "total":
		return ""
	}
	return dataset.CanonicalName(s)
}

func measureTitle(measure string) string {
	if measure == "" {
		return "Acidentes"
	}
	return measure
}

func (a *app) commandTop(chatID int64, args string) []reply {
	parts := splitArgs(args)
	if len(parts) == 0 {
		return []reply{{Text: "Use: /top Coluna; Medida; N\nExemplo: /top Uf; Mortos; 5"}}
	}
	spec := aggregate.Spec{Category: dataset.CanonicalName(parts[0]), TopN: defaultTopN}
	for _, p := range parts[1:] {
		if n, err := strconv.Atoi(p); err == nil {
			spec.TopN = n
			continue
		}
		spec.Measure = parseMeasure(p)
	}

	ds, out := a.chatData(chatID)
	res, err := aggregate.Aggregate(ds, spec)
	if err != nil {
		return append(out, textReply("Não foi possível agregar: %v", err))
	}
	title := fmt.Sprintf("%s por %s", measureTitle(spec.Measure), res.Category)
	out = append(out, preReply(GenerateResultTable(res)))
	img, err := plot.DrawPlotBar(plot.CategoryBars(res, title))
	if err != nil {
		if !errors.Is(err, plot.ErrNoData) {
			log.Printf("[bot] draw %s: %v", title, err)
		}
		return out
	}
	return append(out, reply{Image: img, FileName: imageName("top", res.Category), Caption: title})
}

func periodName(p aggregate.Period) string {
	switch p {
	case aggregate.PeriodDay:
		return "dia"
	case aggregate.PeriodYear:
		return "ano"
	}
	return "mês"
}

func (a *app) commandSeries(chatID int64, args string) []reply {
	parts := splitArgs(args)
	spec := aggregate.SeriesSpec{}
	for _, p := range parts {
		switch strings.ToLower(p) {
		case "mes", "mês", "dia", "ano", "month", "day", "year":
			spec.Period = aggregate.ParsePeriod(strings.ToLower(p))
		default:
			spec.Measure = parseMeasure(p)
		}
	}

	ds, out := a.chatData(chatID)
	s, err := aggregate.TimeSeries(ds, spec)
	if err != nil {
		return append(out, textReply("Não foi possível montar a série: %v", err))
	}
	title := fmt.Sprintf("%s por %s", measureTitle(spec.Measure), periodName(s.Period))
	out = append(out, preReply(GenerateSeriesTable(s)))
	img, err := plot.DrawTimeSeries(s, title)
	if err != nil {
		if !errors.Is(err, plot.ErrNoData) {
			log.Printf("[bot] draw %s: %v", title, err)
		}
		return out
	}
	return append(out, reply{Image: img, FileName: imageName("serie", s.Period.String()), Caption: title})
}

// findVisual looks a visual id up across every tab.
func findVisual(id string) (dashboard.Tab, bool) {
	for _, tab := range dashboard.Tabs() {
		for _, v := range tab.Visuals {
			if strings.EqualFold(v.ID, id) {
				tab.Visuals = []dashboard.Visual{v}
				return tab, true
			}
		}
	}
	return dashboard.Tab{}, false
}

func visualIDs() string {
	var lines []string
	for _, tab := range dashboard.Tabs() {
		ids := make([]string, 0, len(tab.Visuals))
		for _, v := range tab.Visuals {
			ids = append(ids, v.ID)
		}
		lines = append(lines, tab.Title+": "+strings.Join(ids, ", "))
	}
	return strings.Join(lines, "\n")
}

func (a *app) commandGraph(chatID int64, args string) []reply {
	tab, ok := findVisual(args)
	if !ok {
		return []reply{textReply("Use: /grafico <id>\n%s", visualIDs())}
	}
	view := dashboard.Build(a.ds, tab, a.chatStore(chatID), dashboard.Params{})
	built := view.Visuals[0]
	img, err := built.PNG()
	switch {
	case errors.Is(err, dashboard.ErrNoImage):
		return []reply{
			textReply("%s só existe no painel interativo.", built.Visual.Title),
			a.panelLink(chatID, tab.ID),
		}
	case errors.Is(err, plot.ErrNoData):
		return []reply{textReply("%s: sem dados com os filtros atuais.", built.Visual.Title)}
	case err != nil:
		return []reply{textReply("%s", built.Warning())}
	}
	return []reply{{Image: img, FileName: imageName(built.Visual.ID, tab.ID), Caption: built.Visual.Title}}
}

func (a *app) commandTable(chatID int64) []reply {
	ds, out := a.chatData(chatID)
	if ds.Len() == 0 {
		return append(out, reply{Text: "Nenhum registro com os filtros atuais."})
	}
	var buf bytes.Buffer
	if err := ds.WriteExcel(&buf, tableRowLimit); err != nil {
		log.Printf("[bot] export: %v", err)
		return append(out, reply{Text: "Erro ao gerar a planilha."})
	}
	caption := fmt.Sprintf("%s registros", metrics.FormatThousands(int64(ds.Len())))
	if ds.Len() > tableRowLimit {
		caption = fmt.Sprintf("Primeiros %s de %s registros", metrics.FormatThousands(tableRowLimit), metrics.FormatThousands(int64(ds.Len())))
	}
	return append(out, reply{
		Document: buf.Bytes(),
		FileName: "acidentes_" + time.Now().Format("20060102-150405") + ".xlsx",
		Caption:  caption,
	})
}

// panelLink opens the web dashboard on the chat's own filters.
func (a *app) panelLink(chatID int64, tab string) reply {
	if a.cfg.PublicURL == "" {
		return reply{Text: "O endereço do painel web não está configurado (PUBLIC_URL)."}
	}
	link := strings.TrimRight(a.cfg.PublicURL, "/") + "/?" + sessionParam + "=" + a.chatSession(chatID)
	if tab != "" {
		link += "&tab=" + tab
	}
	return textReply("Painel com os seus filtros: %s", link)
}

func imageName(kind, name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), " ", "_")
	return fmt.Sprintf("%s_%s_%s.png", kind, name, time.Now().Format("20060102-150405"))
}
