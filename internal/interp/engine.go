// Package interp turns AdH mesh point output into rasters aligned with a mask.
package interp

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/features"
	"github.com/nybem/nybem-tools/internal/raster"
)

// Input is what an Engine interpolates
type Input struct {
	Samples  []features.Sample
	Barriers []orb.LineString
	// Mask defines the output grid, cells that are nodata in the mask are not computed
	Mask *raster.Raster
}

// Engine interpolates scattered samples onto the mask's grid. The returned raster
// must have the mask's geometry.
type Engine interface {
	Interpolate(ctx context.Context, e env.Env, in Input) (*raster.Raster, error)
}
