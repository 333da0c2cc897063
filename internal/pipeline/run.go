package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nybem/nybem-tools/internal/algebra"
	"github.com/nybem/nybem-tools/internal/catalog"
	"github.com/nybem/nybem-tools/internal/ctxlog"
	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/interp"
	"github.com/nybem/nybem-tools/internal/raster"
	"github.com/nybem/nybem-tools/internal/scenario"
	"github.com/nybem/nybem-tools/internal/validate"
)

// Inputs are the paths a run works on
type Inputs struct {
	// Fwop is the baseline scenario, Alt the alternative being populated
	Fwop, Alt string
	// AdH point datasets of the alternative
	Velocity, Salinity, WSE string
	Barriers                string
	Mask                    string
}

func (in Inputs) points(name string) string {
	switch name {
	case Velocity:
		return in.Velocity
	case Salinity:
		return in.Salinity
	case WSE:
		return in.WSE
	}
	return ""
}

// Result summarizes a run
type Result struct {
	Run     string
	Outputs []string
}

// Runner executes a pipeline table
type Runner struct {
	Config *Config
	Env    env.Env
	Engine interp.Engine
	// Catalog is optional, every written raster is recorded in it when set
	Catalog *catalog.Catalog
}

// Build creates the alternative's folder tree, copies the static predictors from
// the baseline and runs all steps.
func (r *Runner) Build(ctx context.Context, in Inputs) (Result, error) {
	if err := validate.ScenarioDirectory(in.Fwop, r.Config.Zones); err != nil {
		return Result{}, err
	}
	if err := r.CreateTree(ctx, in.Alt); err != nil {
		return Result{}, err
	}
	if err := r.CopyStatic(ctx, in.Fwop, in.Alt); err != nil {
		return Result{}, err
	}
	return r.Update(ctx, in)
}

// CreateTree creates the scenario folders
func (r *Runner) CreateTree(ctx context.Context, alt string) error {
	timer := time.Now()
	log := ctxlog.FromContext(ctx)

	log.Infof("▶️  Creating folder structure in %s", alt)
	if err := scenario.CreateTree(alt, r.Config.Zones, r.Config.Components); err != nil {
		return err
	}
	log.Infof("✔️  Created folder structure in %s", time.Since(timer))
	return nil
}

// CopyStatic copies the rasters that don't vary between scenarios
func (r *Runner) CopyStatic(ctx context.Context, fwop, alt string) error {
	timer := time.Now()
	log := ctxlog.FromContext(ctx)

	log.Info("▶️  Copying static predictors")
	n, err := scenario.CopyStatic(ctx, fwop, alt, r.Config.StaticRules())
	if err != nil {
		return err
	}
	log.Infof("✔️  Copied %d files in %s", n, time.Since(timer))
	return nil
}

// Check verifies that every file the steps read from outside the run exists
func (r *Runner) Check(in Inputs) error {
	if err := validate.Files(in.Mask); err != nil {
		return err
	}
	if err := validate.OptionalFiles(in.Barriers); err != nil {
		return err
	}

	for _, s := range r.Config.Steps {
		if s.Interpolate != nil {
			points := in.points(s.Interpolate.Points)
			if points == "" {
				return fmt.Errorf("step %q needs the %s points", s.Output, s.Interpolate.Points)
			}
			if err := validate.Files(points); err != nil {
				return err
			}
		}

		reads, err := r.Config.stepInputs(s)
		if err != nil {
			return err
		}
		for _, ref := range reads {
			if ref.Scenario == Fwop {
				if err := validate.Files(ref.Path(r.Env, in.Fwop, in.Alt)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Update runs every step in order. Outputs overwrite files of the same name. The
// first failing step aborts the run, rasters written before it are kept.
func (r *Runner) Update(ctx context.Context, in Inputs) (Result, error) {
	result := Result{Run: uuid.NewString()}
	log := ctxlog.FromContext(ctx).WithField("run", result.Run)
	ctx = ctxlog.WithLogger(ctx, log)
	start := time.Now()

	if err := r.Check(in); err != nil {
		return result, err
	}

	zone := ""
	for _, s := range r.Config.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		out, _ := ParseRef(s.Output)
		if out.Zone != zone {
			zone = out.Zone
			title := "ALT"
			if zone != scenario.Root {
				title = strings.ToUpper(zone)
			}
			log.Infof("# %s", title)
		}

		timer := time.Now()
		log.Infof("▶️  %s", s.Label())

		path, written, err := r.runStep(ctx, s, out, in)
		if err != nil {
			return result, fmt.Errorf("step %q: %w", s.Output, err)
		}
		result.Outputs = append(result.Outputs, path)

		elapsed := time.Since(timer)
		log.Infof("✔️  Wrote %s in %s", path, elapsed)

		if r.Catalog != nil {
			entry := catalog.NewEntry(result.Run, s.Output, s.Kind(), path, written, elapsed)
			if err := r.Catalog.Record(ctx, entry); err != nil {
				return result, fmt.Errorf("catalog: %w", err)
			}
		}
	}

	log.Infof("🎉  Finished %d steps in %s", len(r.Config.Steps), time.Since(start))
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, s Step, out Ref, in Inputs) (string, *raster.Raster, error) {
	dst := out.Path(r.Env, in.Fwop, in.Alt)

	switch {
	case s.Interpolate != nil:
		return interp.AdhToRaster(ctx, r.Env, r.Engine, interp.Params{
			OutputFolder: scenario.ZoneDir(in.Alt, out.Zone),
			OutputName:   out.Name,
			Points:       in.points(s.Interpolate.Points),
			Variable:     s.Interpolate.Variable,
			Where:        s.Interpolate.Where,
			Barriers:     in.Barriers,
			Mask:         in.Mask,
		})

	case s.Copy != nil:
		from, err := ParseRef(s.Copy.From)
		if err != nil {
			return "", nil, err
		}
		src := from.Path(r.Env, in.Fwop, in.Alt)
		if err := raster.Copy(src, dst, r.Env.Overwrite); err != nil {
			return "", nil, err
		}
		if r.Catalog == nil {
			return dst, nil, nil
		}
		copied, err := raster.Read(dst)
		return dst, copied, err

	case s.Derive != nil:
		formula, err := algebra.Lookup(s.Derive.Formula)
		if err != nil {
			return "", nil, err
		}
		paths := make(map[string]string, len(s.Derive.Inputs))
		for name, raw := range s.Derive.Inputs {
			ref, err := ParseRef(raw)
			if err != nil {
				return "", nil, err
			}
			paths[name] = ref.Path(r.Env, in.Fwop, in.Alt)
		}
		derived, err := formula.Derive(ctx, r.Env, dst, paths)
		return dst, derived, err
	}

	return "", nil, fmt.Errorf("step has no action")
}
