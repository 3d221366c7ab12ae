package dataset

import (
	"strings"
	"time"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var weekdayNames = [...]string{
	"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira",
	"Quinta-feira", "Sexta-feira", "Sábado",
}

var dayPartNames = [...]string{"Madrugada", "Manhã", "Tarde", "Noite"}

var (
	monthRank   = rankOf(monthNames[:], 1)
	weekdayRank = rankOf(weekdayNames[:], 0)
	dayPartRank = rankOf(dayPartNames[:], 0)
)

func rankOf(names []string, base int) map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		m[normalizeName(n)] = i + base
	}
	// raw PRF files write weekdays without the "-feira" suffix sometimes
	for i, n := range names {
		if short := strings.TrimSuffix(normalizeName(n), " feira"); short != normalizeName(n) {
			m[short] = i + base
		}
	}
	return m
}

// MonthName is the pt-BR calendar name of m.
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

func weekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// dayPart buckets an hour into Madrugada (00-05), Manhã (06-11),
// Tarde (12-17) and Noite (18-23).
func dayPart(hour int) string {
	if hour < 0 || hour > 23 {
		return ""
	}
	return dayPartNames[hour/6]
}

var regionByState = map[string]string{
	"AC": "Norte", "AM": "Norte", "AP": "Norte", "PA": "Norte", "RO": "Norte", "RR": "Norte", "TO": "Norte",
	"AL": "Nordeste", "BA": "Nordeste", "CE": "Nordeste", "MA": "Nordeste", "PB": "Nordeste",
	"PE": "Nordeste", "PI": "Nordeste", "RN": "Nordeste", "SE": "Nordeste",
	"DF": "Centro-Oeste", "GO": "Centro-Oeste", "MS": "Centro-Oeste", "MT": "Centro-Oeste",
	"ES": "Sudeste", "MG": "Sudeste", "RJ": "Sudeste", "SP": "Sudeste",
	"PR": "Sul", "RS": "Sul", "SC": "Sul",
}

func regionOf(state string) string {
	return regionByState[strings.ToUpper(strings.TrimSpace(state))]
}

type keywordGroup struct {
	name     string
	keywords []string
}

// checked in order, first match wins
var causeGroups = []keywordGroup{
	{"Condutor - Fadiga / Álcool / Drogas / Saúde", []string{"sono", "alcool", "substancias psicoativas", "drogas", "mal subito", "fadiga", "dormindo"}},
	{"Pedestre", []string{"pedestre", "passarela"}},
	{"Animais / Objetos / Obstáculos", []string{"animal", "animais", "objeto", "obstaculo", "obstrucao"}},
	{"Veículo - Falha mecânica", []string{"freio", "mecanic", "pneu", "suspensao", "farol", "avaria", "carga excessiva"}},
	{"Clima / Ambiente", []string{"chuva", "neblina", "fumaca", "oleo", "areia", "fenomenos da natureza"}},
	{"Via / Infraestrutura", []string{"buraco", "escorregadia", "sinalizacao", "iluminacao", "acostamento", "defeito na via", "pista", "obras"}},
	{"Condutor - Falha humana", []string{"reacao", "contramao", "ultrapassagem", "velocidade", "celular", "distancia", "conversao", "manobra", "desrespeit", "condutor", "transitar", "acessar a via", "frear"}},
}

func causeGroup(cause string) string {
	return groupByKeywords(cause, causeGroups, "Outros / Indefinidos")
}

var weatherGroups = []keywordGroup{
	{"Bom", []string{"ceu claro", "sol", "nublado"}},
	{"Chuva", []string{"chuva", "garoa", "chuvisco"}},
}

func weatherGroup(weather string) string {
	return groupByKeywords(weather, weatherGroups, "Outros")
}

var roadLayoutGroups = []keywordGroup{
	{"Viaduto", []string{"viaduto", "ponte", "tunel"}},
	{"Curva", []string{"curva"}},
	{"Aclive", []string{"aclive"}},
	{"Declive", []string{"declive"}},
	{"Reta", []string{"reta"}},
}

// roadLayoutGroup looks at the first layout only; recent files list several
// separated by ';'.
func roadLayoutGroup(layout string) string {
	first := strings.Split(layout, ";")[0]
	return groupByKeywords(first, roadLayoutGroups, "Outros")
}

func groupByKeywords(value string, groups []keywordGroup, fallback string) string {
	v := normalizeName(value)
	if v == "" {
		return ""
	}
	for _, g := range groups {
		for _, kw := range g.keywords {
			if strings.Contains(v, kw) {
				return g.name
			}
		}
	}
	return fallback
}

// landUse maps the raw "uso_solo" flag (Sim = urban stretch) to a label.
func landUse(raw string) string {
	switch normalizeName(raw) {
	case "sim", "urbano":
		return "Urbano"
	case "nao", "rural":
		return "Rural"
	case "":
		return ""
	}
	return strings.TrimSpace(raw)
}
