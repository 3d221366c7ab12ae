package aggregate

import (
	"math"
	"sort"

	"github.com/pivolan/prf_dashboard/dataset"
	"github.com/pivolan/prf_dashboard/domain/models"
)

// Brazil's bounding box; rows outside it have bad coordinates.
const (
	MinLatitude  = -33.75
	MaxLatitude  = 5.27
	MinLongitude = -73.99
	MaxLongitude = -34.79
)

const DefaultCellSize = 0.5

// InBrazil reports whether the point lies inside the bounding box.
func InBrazil(lat, lon float64) bool {
	return lat >= MinLatitude && lat <= MaxLatitude && lon >= MinLongitude && lon <= MaxLongitude
}

type DensityGrid struct {
	Measure  string           `json:"measure"`
	CellSize float64          `json:"cell_size"`
	Cells    []models.GeoCell `json:"cells"`
	Excluded int              `json:"excluded"` // rows without usable coordinates
}

// Max returns the largest cell value.
func (g *DensityGrid) Max() float64 {
	max := 0.0
	for _, c := range g.Cells {
		if c.Value > max {
			max = c.Value
		}
	}
	return max
}

// Density snaps every located row to a grid of cellSize degrees and counts
// rows (or sums measure) per cell. Cell coordinates are the cell centers.
func Density(ds *dataset.Dataset, measure string, cellSize float64) (*DensityGrid, error) {
	if _, err := ds.ColumnOfKind(dataset.ColLatitude, models.KindCoordinate); err != nil {
		return nil, err
	}
	if _, err := ds.ColumnOfKind(dataset.ColLongitude, models.KindCoordinate); err != nil {
		return nil, err
	}
	value, label, err := measureFunc(ds, measure)
	if err != nil {
		return nil, err
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	type key struct{ lat, lon int64 }
	cells := map[key]*models.GeoCell{}
	grid := &DensityGrid{Measure: label, CellSize: cellSize}
	for _, r := range ds.Records() {
		if !r.HasCoordinates || !InBrazil(r.Latitude, r.Longitude) {
			grid.Excluded++
			continue
		}
		k := key{int64(math.Floor(r.Latitude / cellSize)), int64(math.Floor(r.Longitude / cellSize))}
		c, ok := cells[k]
		if !ok {
			c = &models.GeoCell{
				Latitude:  round((float64(k.lat)+0.5)*cellSize, 4),
				Longitude: round((float64(k.lon)+0.5)*cellSize, 4),
			}
			cells[k] = c
		}
		c.Rows++
		c.Value += value(r)
	}

	grid.Cells = make([]models.GeoCell, 0, len(cells))
	for _, c := range cells {
		grid.Cells = append(grid.Cells, *c)
	}
	sort.Slice(grid.Cells, func(i, j int) bool {
		a, b := grid.Cells[i], grid.Cells[j]
		if a.Latitude != b.Latitude {
			return a.Latitude < b.Latitude
		}
		return a.Longitude < b.Longitude
	})
	return grid, nil
}
