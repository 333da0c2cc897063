package raster

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrGeometryMismatch is returned when rasters that must share a grid don't
var ErrGeometryMismatch = errors.New("raster geometry mismatch")

const geometryTolerance = 1e-9

// cell sizes stored as float32 by some writers only agree to about 7 digits
const squareCellTolerance = 1e-6

// Geometry describes the grid of a raster: size, cell size, lower left corner
// and coordinate system.
type Geometry struct {
	Cols, Rows int
	CellSize   float64
	XCorner    float64
	YCorner    float64
	Projection string
}

// Validate checks the geometry is usable
func (g Geometry) Validate() error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return fmt.Errorf("raster must have at least one column and row, got %dx%d", g.Cols, g.Rows)
	}
	if g.CellSize <= 0.0 {
		return fmt.Errorf("CELLSIZE must be greater than 0")
	}
	return nil
}

// X returns the coordinate for the centre of the column at the index c.
func (g Geometry) X(c int) float64 {
	return g.XCorner + (float64(c)+0.5)*g.CellSize
}

// Y returns the coordinate for the centre of the row at the index r.
func (g Geometry) Y(r int) float64 {
	return g.YCorner + (float64(g.Rows-r)-0.5)*g.CellSize
}

// Bound returns the extent covered by the grid
func (g Geometry) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.XCorner, g.YCorner},
		Max: orb.Point{g.XCorner + float64(g.Cols)*g.CellSize, g.YCorner + float64(g.Rows)*g.CellSize},
	}
}

// Equal reports whether both geometries describe the same grid. Projections
// are only compared if both are known.
func (g Geometry) Equal(o Geometry) bool {
	if g.Cols != o.Cols || g.Rows != o.Rows {
		return false
	}
	if !almostEqual(g.CellSize, o.CellSize) || !almostEqual(g.XCorner, o.XCorner) || !almostEqual(g.YCorner, o.YCorner) {
		return false
	}
	if g.Projection != "" && o.Projection != "" && g.Projection != o.Projection {
		return false
	}
	return true
}

// GeoTransform returns the GDAL affine transform of the north up grid
func (g Geometry) GeoTransform() [6]float64 {
	return [6]float64{g.XCorner, g.CellSize, 0, g.YCorner + float64(g.Rows)*g.CellSize, 0, -g.CellSize}
}

// FromGeoTransform builds the geometry of a cols x rows grid from a GDAL affine
// transform. Rotated grids are rejected, as are cells whose width and height differ
// by more than floating point noise.
func FromGeoTransform(gt [6]float64, cols, rows int, projection string) (Geometry, error) {
	if gt[2] != 0 || gt[4] != 0 {
		return Geometry{}, fmt.Errorf("grid is rotated, only north up grids are supported")
	}
	if gt[5] >= 0 {
		return Geometry{}, fmt.Errorf("grid is not north up, pixel height is %g", gt[5])
	}
	if math.Abs(gt[1]+gt[5]) > squareCellTolerance*gt[1] {
		return Geometry{}, fmt.Errorf("grid has non square cells (%g x %g)", gt[1], -gt[5])
	}

	g := Geometry{
		Cols:       cols,
		Rows:       rows,
		CellSize:   gt[1],
		XCorner:    gt[0],
		YCorner:    gt[3] + float64(rows)*gt[5],
		Projection: projection,
	}
	return g, g.Validate()
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d cells of %g at (%g, %g)", g.Cols, g.Rows, g.CellSize, g.XCorner, g.YCorner)
}

// CheckGeometry returns ErrGeometryMismatch if any raster's grid differs from the first one
func CheckGeometry(rasters ...*Raster) error {
	if len(rasters) == 0 {
		return nil
	}
	ref := rasters[0].Geometry
	for i, r := range rasters[1:] {
		if !ref.Equal(r.Geometry) {
			return fmt.Errorf("%w: input %d is %s, expected %s", ErrGeometryMismatch, i+1, r.Geometry, ref)
		}
	}
	return nil
}

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale < 1 {
		scale = 1
	}
	return math.Abs(a-b) <= geometryTolerance*scale
}
