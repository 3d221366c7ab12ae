// Package metrics computes the headline numbers shown above every tab.
package metrics

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
)

// Compute derives totals and ratios from ds. A missing measure column sums
// to zero and is listed in Summary.Missing.
func Compute(ds *dataset.Dataset) models.Summary {
	s := models.Summary{Accidents: int64(ds.Len())}

	sumOf := func(name string) int64 {
		col, err := ds.ColumnOfKind(name, models.KindMeasure)
		if err != nil {
			s.Missing = append(s.Missing, name)
			return 0
		}
		var total int64
		for _, r := range ds.Records() {
			total += int64(col.Number(r))
		}
		return total
	}
	s.Deaths = sumOf(dataset.ColDeaths)
	s.Injuries = sumOf(dataset.ColInjuries)
	s.Vehicles = sumOf(dataset.ColVehicles)

	s.MortalityRate = ratio(s.Deaths, s.Accidents, 100)
	s.DeathsPer100Injured = ratio(s.Deaths, s.Injuries, 100)
	s.VehiclesPerAccident = ratio(s.Vehicles, s.Accidents, 1)
	return s
}

// ratio is num/den*scale rounded to two decimals, zero when den is zero.
func ratio(num, den int64, scale float64) float64 {
	if den == 0 {
		return 0
	}
	r, err := stats.Round(float64(num)/float64(den)*scale, 2)
	if err != nil {
		return 0
	}
	return r
}

// FormatThousands writes n with '.' between groups of three digits:
// 1234567 -> "1.234.567".
func FormatThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// FormatDecimal renders v pt-BR style with the given number of decimals:
// 1234.5 -> "1.234,50".
func FormatDecimal(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', places, 64)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}
	n, _ := strconv.ParseInt(intPart, 10, 64)
	out := FormatThousands(n)
	if frac != "" {
		out += "," + frac
	}
	if v < 0 && strings.Trim(out, "0.,") != "" {
		out = "-" + out
	}
	return out
}

// Text is the display form of a summary.
type Text struct {
	Accidents           string `json:"accidents"`
	Deaths              string `json:"deaths"`
	Injuries            string `json:"injuries"`
	Vehicles            string `json:"vehicles"`
	MortalityRate       string `json:"mortality_rate"`
	DeathsPer100Injured string `json:"deaths_per_100_injured"`
	VehiclesPerAccident string `json:"vehicles_per_accident"`
}

func Format(s models.Summary) Text {
	return Text{
		Accidents:           FormatThousands(s.Accidents),
		Deaths:              FormatThousands(s.Deaths),
		Injuries:            FormatThousands(s.Injuries),
		Vehicles:            FormatThousands(s.Vehicles),
		MortalityRate:       FormatDecimal(s.MortalityRate, 2) + "%",
		DeathsPer100Injured: FormatDecimal(s.DeathsPer100Injured, 2),
		VehiclesPerAccident: FormatDecimal(s.VehiclesPerAccident, 2),
	}
}
