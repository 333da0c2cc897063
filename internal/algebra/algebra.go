// Package algebra computes derived rasters cell by cell.
package algebra

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/raster"
)

// CellFunc computes one output cell from the input cells at the same position.
// Returning false marks the output cell as nodata.
type CellFunc func(v []float64) (float64, bool)

// rows handled by one goroutine
const rowsPerBatch = 32

// Map applies fn to every cell of inputs, which must share one geometry. A cell that is
// nodata in any input is nodata in the output, as is any non finite result. The
// output's nodata value is raster.ComputedNoData.
func Map(ctx context.Context, e env.Env, fn CellFunc, inputs ...*raster.Raster) (*raster.Raster, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input rasters")
	}
	if err := raster.CheckGeometry(inputs...); err != nil {
		return nil, err
	}

	geometry := inputs[0].Geometry
	out := raster.New(geometry, raster.ComputedNoData)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Parallelism())

	for start := 0; start < geometry.Rows; start += rowsPerBatch {
		end := start + rowsPerBatch
		if end > geometry.Rows {
			end = geometry.Rows
		}

		start := start // per-iteration copy; module targets go 1.21 loop semantics
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			values := make([]float64, len(inputs))
			for i := start * geometry.Cols; i < end*geometry.Cols; i++ {
				out.Data[i] = cell(fn, values, inputs, i, out.NoData)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func cell(fn CellFunc, values []float64, inputs []*raster.Raster, i int, noData float64) float64 {
	for j, in := range inputs {
		v := in.Data[i]
		if in.IsNoData(v) {
			return noData
		}
		values[j] = v
	}

	v, ok := fn(values)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return noData
	}
	return v
}

// Multiply returns the cell wise product of a and b
func Multiply(ctx context.Context, e env.Env, a, b *raster.Raster) (*raster.Raster, error) {
	return Map(ctx, e, func(v []float64) (float64, bool) {
		return v[0] * v[1], true
	}, a, b)
}

// ratio divides and reports a zero denominator as nodata
func ratio(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return num / den, true
}
