package algebra

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/raster"
)

// lightAttenuation is the light extinction coefficient per metre of depth
const lightAttenuation = 1.39

// Formula is a named derived raster
type Formula struct {
	Name        string
	Description string
	// Inputs names the input rasters in the order Cell receives them
	Inputs []string
	Cell   CellFunc
}

var formulas = map[string]Formula{
	"rel_velocity": {
		Name:        "rel_velocity",
		Description: "Relative velocity (edge erosion): (vel_alt - vel_fwop) / vel_fwop * 100",
		Inputs:      []string{"vel_alt", "vel_fwop"},
		Cell: func(v []float64) (float64, bool) {
			r, ok := ratio(v[0]-v[1], v[1])
			return r * 100, ok
		},
	},
	"epi_sed_dep": {
		Name:        "epi_sed_dep",
		Description: "Episodic sediment deposition: (wse_mhhw - wse_median) / (wse_max - wse_median)",
		Inputs:      []string{"wse_mhhw", "wse_median", "wse_max"},
		Cell: func(v []float64) (float64, bool) {
			return ratio(v[0]-v[1], v[2]-v[1])
		},
	},
	"depth": {
		Name:        "depth",
		Description: "Depth: wse_mtl - bed_elevation",
		Inputs:      []string{"wse_mtl", "bed_elevation"},
		Cell: func(v []float64) (float64, bool) {
			return v[0] - v[1], true
		},
	},
	"per_light_available": {
		Name:        "per_light_available",
		Description: "Percent light available: exp(-1.39 * depth) * 100",
		Inputs:      []string{"depth"},
		Cell: func(v []float64) (float64, bool) {
			return math.Exp(-lightAttenuation*v[0]) * 100, true
		},
	},
	"expo_dur": {
		Name:        "expo_dur",
		Description: "Exposure duration: (wse_100 - wse_0) / (wse_mhhw - wse_mllw)",
		Inputs:      []string{"wse_100", "wse_0", "wse_mhhw", "wse_mllw"},
		Cell: func(v []float64) (float64, bool) {
			return ratio(v[0]-v[1], v[2]-v[3])
		},
	},
}

// Lookup returns the formula called name
func Lookup(name string) (Formula, error) {
	f, found := formulas[name]
	if !found {
		return Formula{}, fmt.Errorf("unknown formula %q", name)
	}
	return f, nil
}

// Formulas returns all formulas sorted by name
func Formulas() []Formula {
	list := make([]Formula, 0, len(formulas))
	for _, f := range formulas {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Apply evaluates f over inputs given in the order of f.Inputs
func (f Formula) Apply(ctx context.Context, e env.Env, inputs ...*raster.Raster) (*raster.Raster, error) {
	if len(inputs) != len(f.Inputs) {
		return nil, fmt.Errorf("%s takes %d inputs, got %d", f.Name, len(f.Inputs), len(inputs))
	}
	return Map(ctx, e, f.Cell, inputs...)
}

// Derive reads the named input rasters, evaluates f and writes the result to outPath
func (f Formula) Derive(ctx context.Context, e env.Env, outPath string, inputPaths map[string]string) (*raster.Raster, error) {
	inputs := make([]*raster.Raster, len(f.Inputs))
	for i, name := range f.Inputs {
		path, found := inputPaths[name]
		if !found {
			return nil, fmt.Errorf("%s: missing input %s", f.Name, name)
		}
		r, err := raster.Read(path)
		if err != nil {
			return nil, err
		}
		inputs[i] = r
	}
	for name := range inputPaths {
		if !contains(f.Inputs, name) {
			return nil, fmt.Errorf("%s: unexpected input %s", f.Name, name)
		}
	}

	out, err := f.Apply(ctx, e, inputs...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	if err := e.Write(outPath, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RelVelocity is the percent change of the alternative's velocity over the baseline's
func RelVelocity(ctx context.Context, e env.Env, velAlt, velFwop *raster.Raster) (*raster.Raster, error) {
	return formulas["rel_velocity"].Apply(ctx, e, velAlt, velFwop)
}

// EpiSedDep is the episodic sediment deposition, aka relative depth
func EpiSedDep(ctx context.Context, e env.Env, wseMhhw, wseMedian, wseMax *raster.Raster) (*raster.Raster, error) {
	return formulas["epi_sed_dep"].Apply(ctx, e, wseMhhw, wseMedian, wseMax)
}

// Depth is the water column height above the bed at mean tide level
func Depth(ctx context.Context, e env.Env, wseMtl, bedElevation *raster.Raster) (*raster.Raster, error) {
	return formulas["depth"].Apply(ctx, e, wseMtl, bedElevation)
}

// PerLightAvailable is the percent of surface light reaching the bed
func PerLightAvailable(ctx context.Context, e env.Env, depth *raster.Raster) (*raster.Raster, error) {
	return formulas["per_light_available"].Apply(ctx, e, depth)
}

// ExpoDur is the exposure duration, aka t_rel
func ExpoDur(ctx context.Context, e env.Env, wse100, wse0, wseMhhw, wseMllw *raster.Raster) (*raster.Raster, error) {
	return formulas["expo_dur"].Apply(ctx, e, wse100, wse0, wseMhhw, wseMllw)
}

func contains(array []string, element string) bool {
	for _, cur := range array {
		if cur == element {
			return true
		}
	}
	return false
}
