package dataset

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pivolan/prf_dashboard/domain/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Acidentes"

// Row returns the display values of r for the columns the dataset has, in
// schema order.
func (d *Dataset) Row(r *models.Accident) []string {
	cols := d.columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.display(r)
	}
	return out
}

// Header lists the columns the dataset has, in schema order.
func (d *Dataset) Header() []string {
	cols := d.columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func (d *Dataset) columns() []*Column {
	var out []*Column
	for _, c := range schema {
		if d.presentSet()[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

func (c *Column) display(r *models.Accident) string {
	switch c.Kind {
	case models.KindTemporal:
		if t, ok := c.Time(r); ok {
			return t.Format("2006-01-02")
		}
		return ""
	case models.KindMeasure:
		return strconv.FormatInt(int64(c.Number(r)), 10)
	case models.KindCoordinate:
		if !r.HasCoordinates {
			return ""
		}
		return strconv.FormatFloat(c.Number(r), 'f', -1, 64)
	}
	return c.Value(r)
}

// WriteExcel writes up to limit rows (all when limit <= 0) as an xlsx
// workbook.
func (d *Dataset) WriteExcel(w io.Writer, limit int) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}

	header := d.Header()
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range d.Records() {
		if limit > 0 && i >= limit {
			break
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := d.Row(r)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}
