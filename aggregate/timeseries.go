package aggregate

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
)

// MaxPeriods bounds the length of one series, about 55 years of days.
const MaxPeriods = 20000

var ErrTooManyPeriods = errors.New("too many periods in the requested range")

type Period int

const (
	PeriodMonth Period = iota
	PeriodDay
	PeriodYear
)

func (p Period) String() string {
	switch p {
	case PeriodDay:
		return "day"
	case PeriodYear:
		return "year"
	}
	return "month"
}

// ParsePeriod accepts day, month and year (pt-BR names too); anything else
// is a month.
func ParsePeriod(s string) Period {
	switch s {
	case "day", "dia", "D":
		return PeriodDay
	case "year", "ano", "Y":
		return PeriodYear
	}
	return PeriodMonth
}

type SeriesSpec struct {
	Column  string // defaults to the accident date
	Measure string // empty counts rows
	Period  Period
	From    time.Time // optional bounds; zero means the data's own range
	To      time.Time
}

type Series struct {
	Column  string
	Measure string
	Period  Period
	Points  []models.DateCount
}

// TimeSeries buckets a date column into calendar periods and fills every
// period between the first and the last one with an explicit total, zero
// when nothing happened. Top-N never applies to a series.
func TimeSeries(ds *dataset.Dataset, spec SeriesSpec) (*Series, error) {
	name := spec.Column
	if name == "" {
		name = dataset.ColDate
	}
	col, err := ds.ColumnOfKind(name, models.KindTemporal)
	if err != nil {
		return nil, err
	}
	value, label, err := measureFunc(ds, spec.Measure)
	if err != nil {
		return nil, err
	}

	from, to := truncate(spec.From, spec.Period), truncate(spec.To, spec.Period)
	bounded := !spec.From.IsZero() && !spec.To.IsZero()

	totals := map[time.Time]float64{}
	var first, last time.Time
	for _, r := range ds.Records() {
		t, ok := col.Time(r)
		if !ok {
			continue
		}
		b := truncate(t, spec.Period)
		if !spec.From.IsZero() && b.Before(from) {
			continue
		}
		if !spec.To.IsZero() && b.After(to) {
			continue
		}
		if len(totals) == 0 || b.Before(first) {
			first = b
		}
		if len(totals) == 0 || b.After(last) {
			last = b
		}
		totals[b] += value(r)
	}

	if bounded {
		first, last = from, to
	} else {
		if !spec.From.IsZero() {
			first = from
		}
		if !spec.To.IsZero() {
			last = to
		}
	}

	s := &Series{Column: col.Name, Measure: label, Period: spec.Period}
	if (len(totals) == 0 && !bounded) || last.Before(first) {
		return s, nil
	}
	if n := periodsBetween(first, last, spec.Period); n > MaxPeriods {
		return nil, fmt.Errorf("%w: %d %s buckets, at most %d", ErrTooManyPeriods, n, spec.Period, MaxPeriods)
	}
	for b := first; !b.After(last); b = next(b, spec.Period) {
		s.Points = append(s.Points, models.DateCount{Date: b, Label: bucketLabel(b, spec.Period), Total: totals[b]})
	}
	return s, nil
}

func truncate(t time.Time, p Period) time.Time {
	if t.IsZero() {
		return t
	}
	switch p {
	case PeriodDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// periodsBetween counts the buckets from first to last, both included.
func periodsBetween(first, last time.Time, p Period) int {
	switch p {
	case PeriodDay:
		return int(last.Sub(first).Hours()/24) + 1
	case PeriodYear:
		return last.Year() - first.Year() + 1
	}
	return (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month()) + 1
}

func next(t time.Time, p Period) time.Time {
	switch p {
	case PeriodDay:
		return t.AddDate(0, 0, 1)
	case PeriodYear:
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

func bucketLabel(t time.Time, p Period) string {
	switch p {
	case PeriodDay:
		return t.Format("02/01/2006")
	case PeriodYear:
		return strconv.Itoa(t.Year())
	}
	return t.Format("01/2006")
}
