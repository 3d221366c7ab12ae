package main

import (
	"bytes"
	"testing"

	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseFilterArgs(t *testing.T) {
	tests := []struct {
		args   string
		dim    string
		values []string
		assign bool
	}{
		{"", "", nil, false},
		{"uf", dataset.ColState, nil, false},
		{"Uf = SC; PR", dataset.ColState, []string{"SC", "PR"}, true},
		{"fase dia=Plena noite;", dataset.ColDayPhase, []string{"Plena noite"}, true},
		{"Ano =", dataset.ColYear, nil, true},
		{"Qualquer = x", "Qualquer", []string{"x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			dim, values, assign := parseFilterArgs(tt.args)
			assert.Equal(t, tt.dim, dim)
			assert.Equal(t, tt.values, values)
			assert.Equal(t, tt.assign, assign)
		})
	}
}

func TestParseMeasure(t *testing.T) {
	assert.Equal(t, "", parseMeasure("Acidentes"))
	assert.Equal(t, "", parseMeasure(" "))
	assert.Equal(t, dataset.ColDeaths, parseMeasure("mortos"))
	assert.Equal(t, dataset.ColVehicles, parseMeasure("Veículos"))
}

func TestCommandFilterFlow(t *testing.T) {
	a := testApp()

	out := a.handleCommand(1, "filtro", "uf = SC")
	require.Len(t, out, 1)
	assert.Equal(t, "Filtro Uf: SC", out[0].Text)

	out = a.handleCommand(1, "resumo", "")
	require.NotEmpty(t, out)
	assert.True(t, out[0].HTML)
	assert.Contains(t, out[0].Text, "Acidentes")
	assert.Contains(t, unescapePre(out[0].Text), "3") // 3 deaths in SC

	out = a.handleCommand(1, "top", "Municipio; Feridos")
	require.Len(t, out, 2)
	assert.Contains(t, out[0].Text, "JOINVILLE")
	assert.NotContains(t, out[0].Text, "CAMPINAS", "chat filter applies")
	assert.NotEmpty(t, out[1].Image)
	assert.Equal(t, "Feridos por Municipio", out[1].Caption)

	other := a.handleCommand(2, "top", "Municipio")
	assert.Contains(t, other[0].Text, "CAMPINAS", "filters are per chat")

	out = a.handleCommand(1, "limpar", "")
	assert.Equal(t, "Filtros removidos.", out[0].Text)
	out = a.handleCommand(1, "top", "Municipio")
	assert.Contains(t, out[0].Text, "CAMPINAS")
}

func TestCommandFilterErrors(t *testing.T) {
	a := testApp()

	out := a.handleCommand(1, "filtro", "Mortos = 1")
	assert.Contains(t, out[0].Text, "Não foi possível filtrar")

	out = a.handleCommand(1, "filtro", "Ano")
	assert.Equal(t, "Opções de Ano:\n2023; 2024", out[0].Text)

	out = a.handleCommand(1, "filtro", "")
	assert.True(t, out[0].HTML)
	assert.Contains(t, out[0].Text, "Municipio")
}

func TestCommandTopErrors(t *testing.T) {
	a := testApp()
	out := a.handleCommand(1, "top", "")
	assert.Contains(t, out[0].Text, "Use: /top")

	out = a.handleCommand(1, "top", "Data Inversa")
	assert.Contains(t, out[0].Text, "Não foi possível agregar")
}

func TestCommandSeries(t *testing.T) {
	a := testApp()
	out := a.handleCommand(1, "serie", "Mortos; Ano")
	require.Len(t, out, 2)
	assert.Contains(t, out[0].Text, "2023")
	assert.NotEmpty(t, out[1].Image)
	assert.Equal(t, "Mortos por ano", out[1].Caption)
}

func TestCommandGraph(t *testing.T) {
	a := testApp()

	out := a.handleCommand(1, "grafico", "ano-mortos")
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].Image)
	assert.Equal(t, "Mortos por ano", out[0].Caption)

	out = a.handleCommand(1, "grafico", "mapa")
	require.Len(t, out, 2)
	assert.Contains(t, out[1].Text, "https://painel.example/?sessao="+a.chatSession(1)+"&tab=mapas")

	out = a.handleCommand(1, "grafico", "")
	assert.Contains(t, out[0].Text, "serie-acidentes")
}

func TestCommandTable(t *testing.T) {
	a := testApp()
	a.handleCommand(1, "filtro", "Ano = 2024")
	out := a.handleCommand(1, "tabela", "")
	require.Len(t, out, 1)
	require.NotEmpty(t, out[0].Document)
	assert.Equal(t, "2 registros", out[0].Caption)

	f, err := excelize.OpenReader(bytes.NewReader(out[0].Document))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Acidentes")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestPanelLinkWithoutPublicURL(t *testing.T) {
	a := testApp()
	a.cfg.PublicURL = ""
	out := a.handleCommand(1, "painel", "")
	assert.Contains(t, out[0].Text, "PUBLIC_URL")
}

func TestUnknownCommand(t *testing.T) {
	out := testApp().handleCommand(1, "xyz", "")
	assert.Contains(t, out[0].Text, "/ajuda")
}
