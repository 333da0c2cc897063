package raster

import (
	"fmt"
	"math"
)

// DefaultNoData is used for rasters created without an explicit nodata value
const DefaultNoData = -9999.0

// ComputedNoData marks nodata in interpolated and derived rasters. It is the lowest
// float32, so a computed cell can't collide with it the way it could with -9999.
const ComputedNoData = -math.MaxFloat32

// Raster is a single band grid of cell values. Row 0 is the northern edge.
type Raster struct {
	Geometry Geometry
	NoData   float64
	Data     []float64
}

// New creates a raster with given geometry where every cell is nodata
func New(geometry Geometry, noData float64) *Raster {
	data := make([]float64, geometry.Cols*geometry.Rows)
	for i := range data {
		data[i] = noData
	}

	return &Raster{
		Geometry: geometry,
		NoData:   noData,
		Data:     data,
	}
}

// Dims returns the dimensions of the grid.
func (r *Raster) Dims() (cols, rows int) {
	return r.Geometry.Cols, r.Geometry.Rows
}

// Z returns the value of the cell at (c, row).
// It will panic if c or row are out of bounds for the grid.
func (r *Raster) Z(c, row int) float64 {
	return r.Data[row*r.Geometry.Cols+c]
}

// Set sets the value of the cell at (c, row)
func (r *Raster) Set(c, row int, v float64) {
	r.Data[row*r.Geometry.Cols+c] = v
}

// IsNoData reports whether v is the raster's nodata marker. NaN is always nodata.
func (r *Raster) IsNoData(v float64) bool {
	return math.IsNaN(v) || v == r.NoData
}

// X returns the coordinate of the centre of column c.
func (r *Raster) X(c int) float64 {
	return r.Geometry.X(c)
}

// Y returns the coordinate of the centre of row.
func (r *Raster) Y(row int) float64 {
	return r.Geometry.Y(row)
}

// Validate checks that the data slice matches the geometry
func (r *Raster) Validate() error {
	if err := r.Geometry.Validate(); err != nil {
		return err
	}
	if len(r.Data) != r.Geometry.Cols*r.Geometry.Rows {
		return fmt.Errorf("raster has %d cells, geometry requires %d", len(r.Data), r.Geometry.Cols*r.Geometry.Rows)
	}
	return nil
}
