package dataset

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pivolan/prf_dashboard/domain/models"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Source says where the snapshot comes from: a file (csv, xlsx, optionally
// .gz/.zip/.lz4 compressed) or a ClickHouse table reached through the MySQL
// protocol.
type Source struct {
	Path  string
	Table string
	DSN   string
}

// Load reads the whole snapshot into memory.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	started := time.Now()
	var (
		ds  *Dataset
		err error
	)
	switch {
	case src.Table != "" && src.DSN != "":
		ds, err = loadClickHouse(ctx, src.DSN, src.Table)
	case src.Path != "":
		ds, err = loadFile(ctx, src.Path)
	default:
		err = fmt.Errorf("%w: no dataset path or table configured", ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[dataset] loaded %d rows in %s", ds.Len(), time.Since(started).Round(time.Millisecond))
	return ds, nil
}

// LoadOrEmpty never fails: a load error is logged once and the dashboard
// keeps working on an empty dataset.
func LoadOrEmpty(ctx context.Context, src Source) *Dataset {
	ds, err := Load(ctx, src)
	if err != nil {
		log.Printf("[dataset] error loading dataset, continuing with an empty one: %v", err)
		return Empty()
	}
	return ds
}

func loadFile(ctx context.Context, path string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadExcel(ctx, path)
	}
	rc, inner, err := openArchive(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer rc.Close()

	switch strings.ToLower(filepath.Ext(inner)) {
	case ".csv", ".txt":
		return ReadCSV(ctx, rc)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, inner)
}

// ReadCSV parses a CSV stream. The separator (',' or ';') is detected from
// the header line and ISO-8859-1 input, as published by PRF, is decoded.
func ReadCSV(ctx context.Context, r io.Reader) (*Dataset, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	head, _ := br.Peek(8 * 1024)
	if i := bytes.LastIndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	var src io.Reader = br
	if !utf8.Valid(head) {
		src = charmap.ISO8859_1.NewDecoder().Reader(br)
	}

	cr := csv.NewReader(src)
	cr.Comma = detectSeparator(head)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	return build(ctx, header, func() ([]string, error) {
		row, err := cr.Read()
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			log.Printf("[dataset] skipping malformed line %d: %v", perr.Line, perr.Err)
			return nil, nil
		}
		return row, err
	})
}

func detectSeparator(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func loadExcel(ctx context.Context, path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file %s is empty", path)
	}
	i := 1
	return build(ctx, rows[0], func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		i++
		return rows[i-1], nil
	})
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)?$`)

func loadClickHouse(ctx context.Context, dsn, table string) (*Dataset, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to clickhouse: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	rows, err := db.WithContext(ctx).Raw("SELECT * FROM " + table).Rows()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	return build(ctx, columns, func() ([]string, error) {
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = v.String
		}
		return row, nil
	})
}

// build turns a header plus a row iterator into a dataset. next returns
// io.EOF at the end and (nil, nil) for rows to skip.
func build(ctx context.Context, header []string, next func() ([]string, error)) (*Dataset, error) {
	hm, err := analyzeHeaders(header)
	if err != nil {
		return nil, err
	}
	var records []*models.Accident
	for n := 0; ; n++ {
		if n%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", n+1, err)
		}
		if row == nil || isBlank(row) {
			continue
		}
		b := rowBuilder{}
		for i, raw := range row {
			if i < len(hm.setters) && hm.setters[i] != nil {
				hm.setters[i](&b, raw)
			}
		}
		records = append(records, b.finish())
	}
	return New(records, hm.present), nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type rowBuilder struct {
	rec            models.Accident
	hour           int
	hasHour        bool
	layout         string
	injuriesSet    bool
	lightInjuries  int64
	severeInjuries int64
	hasLatitude    bool
	hasLongitude   bool
}

// finish fills the fields derivable from other columns when the source did
// not carry them.
func (b *rowBuilder) finish() *models.Accident {
	r := b.rec
	if !r.Date.IsZero() {
		if r.Year == 0 {
			r.Year = r.Date.Year()
		}
		if r.Month == "" {
			r.Month = MonthName(r.Date.Month())
		}
		if r.Weekday == "" {
			r.Weekday = weekdayName(r.Date.Weekday())
		}
	}
	if r.DayPart == "" && b.hasHour {
		r.DayPart = dayPart(b.hour)
	}
	if r.Region == "" {
		r.Region = regionOf(r.State)
	}
	if !b.injuriesSet {
		r.Injuries = b.lightInjuries + b.severeInjuries
	}
	if r.CauseGroup == "" {
		r.CauseGroup = causeGroup(r.Cause)
	}
	if r.WeatherGroup == "" {
		r.WeatherGroup = weatherGroup(r.Weather)
	}
	if r.RoadLayoutGroup == "" {
		r.RoadLayoutGroup = roadLayoutGroup(b.layout)
	}
	r.HasCoordinates = b.hasLatitude && b.hasLongitude && !(r.Latitude == 0 && r.Longitude == 0)
	return &r
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func setDate(b *rowBuilder, raw string) {
	if t, ok := parseDate(raw); ok {
		b.rec.Date = t
	}
}

func setYear(b *rowBuilder, raw string) {
	if y, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), ".0")); err == nil && y > 0 {
		b.rec.Year = y
	}
}

// setMonth accepts month names as well as month numbers 1..12.
func setMonth(b *rowBuilder, raw string) {
	raw = strings.TrimSpace(raw)
	if m, err := strconv.Atoi(raw); err == nil {
		if m >= 1 && m <= 12 {
			b.rec.Month = MonthName(time.Month(m))
		}
		return
	}
	b.rec.Month = raw
}

func setHour(b *rowBuilder, raw string) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			b.hour, b.hasHour = t.Hour(), true
			return
		}
	}
}

func setInjuries(b *rowBuilder, raw string) {
	b.rec.Injuries = parseCount(raw)
	b.injuriesSet = true
}

func setLatitude(b *rowBuilder, raw string) {
	b.rec.Latitude, b.hasLatitude = parseDecimal(raw)
}

func setLongitude(b *rowBuilder, raw string) {
	b.rec.Longitude, b.hasLongitude = parseDecimal(raw)
}

// parseDecimal accepts both "-23.55" and the pt-BR "-23,55".
func parseDecimal(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseCount reads a non-negative count; anything else is zero.
func parseCount(raw string) int64 {
	f, ok := parseDecimal(raw)
	if !ok || f < 0 {
		return 0
	}
	return int64(f)
}

func normalizeRoad(raw string) string {
	raw = strings.TrimSpace(raw)
	if f, ok := parseDecimal(raw); ok && f == math.Trunc(f) {
		return strconv.Itoa(int(f))
	}
	return raw
}
