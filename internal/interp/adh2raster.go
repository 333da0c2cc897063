package interp

import (
	"context"
	"fmt"
	"time"

	"github.com/nybem/nybem-tools/internal/algebra"
	"github.com/nybem/nybem-tools/internal/ctxlog"
	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/features"
	"github.com/nybem/nybem-tools/internal/raster"
)

// Params names the inputs and the output of one AdH interpolation
type Params struct {
	OutputFolder string
	// OutputName is the raster name without extension
	OutputName string
	// Points is the AdH mesh node dataset
	Points   string
	Variable string
	// Where is an optional SQL filter over the point attributes
	Where string
	// Barriers is an optional line dataset interpolation must not cross
	Barriers string
	Mask     string
}

// AdhToRaster interpolates one AdH point variable across the mask's grid, multiplies
// it by the mask to strip edge artifacts and writes it to OutputFolder. It returns
// the path written and the raster.
func AdhToRaster(ctx context.Context, e env.Env, engine Engine, p Params) (string, *raster.Raster, error) {
	log := ctxlog.FromContext(ctx).WithField("raster", p.OutputName)
	var timer time.Time

	timer = time.Now()
	log.Debugf("▶️  Loading points from %s", p.Points)
	fc, err := features.LoadPoints(p.Points, p.Variable, p.Where)
	if err != nil {
		return "", nil, err
	}
	samples, err := features.Select(ctx, fc, p.Variable, p.Where)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", p.Points, err)
	}
	log.Debugf("✔️  Selected %d of %d points in %s", len(samples), len(fc.Features), time.Since(timer))

	barriers, err := features.LoadBarriers(p.Barriers)
	if err != nil {
		return "", nil, err
	}

	mask, err := raster.Read(p.Mask)
	if err != nil {
		return "", nil, err
	}

	timer = time.Now()
	log.Debugf("▶️  Interpolating %s over %s", p.Variable, mask.Geometry)
	unmasked, err := engine.Interpolate(ctx, e, Input{Samples: samples, Barriers: barriers, Mask: mask})
	if err != nil {
		return "", nil, fmt.Errorf("interpolate %s: %w", p.Variable, err)
	}
	log.Debugf("✔️  Interpolated %s in %s", p.Variable, time.Since(timer))

	// multiplying by the mask removes edge artifacts outside the area of interest
	masked, err := algebra.Multiply(ctx, e, unmasked, mask)
	if err != nil {
		return "", nil, fmt.Errorf("apply mask: %w", err)
	}

	out := e.RasterPath(p.OutputFolder, p.OutputName)
	if err := e.Write(out, masked); err != nil {
		return "", nil, err
	}

	return out, masked, nil
}
