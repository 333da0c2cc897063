package interp

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nybem/nybem-tools/internal/ctxlog"
	"github.com/nybem/nybem-tools/internal/env"
)

// NewCommand returns the adh2raster subcommand
func NewCommand() *cobra.Command {
	p := Params{}

	cmd := &cobra.Command{
		Use:   "adh2raster",
		Short: "Interpolate an AdH point variable to a raster.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := ctxlog.FromContext(ctx)

			timer := time.Now()
			log.Infof("▶️  Interpolating %s to %s", p.Variable, p.OutputName)
			path, _, err := AdhToRaster(ctx, env.FromContext(ctx), Spline{}, p)
			if err != nil {
				return err
			}
			log.Infof("✔️  Wrote %s in %s", path, time.Since(timer))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&p.OutputFolder, "out-folder", "", "Path to the output folder")
	flags.StringVar(&p.OutputName, "out-name", "", "Output raster name without extension")
	flags.StringVar(&p.Points, "points", "", "AdH mesh nodes as point shapefile or GeoJSON")
	flags.StringVar(&p.Variable, "variable", "", "Point attribute to interpolate")
	flags.StringVar(&p.Where, "where", "", "SQL filter applied to the points")
	flags.StringVar(&p.Barriers, "barriers", "", "Line dataset of interpolation barriers")
	flags.StringVar(&p.Mask, "mask", "", "Raster defining the output grid")
	for _, name := range []string{"out-folder", "out-name", "points", "variable", "mask"} {
		cmd.MarkFlagRequired(name)
	}

	return cmd
}
