package algebra

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nybem/nybem-tools/internal/ctxlog"
	"github.com/nybem/nybem-tools/internal/env"
)

// NewCommand returns the derive subcommand
func NewCommand() *cobra.Command {
	var outFolder, outName string

	var help strings.Builder
	for _, f := range Formulas() {
		fmt.Fprintf(&help, "  %-20s %s\n      inputs: %s\n", f.Name, f.Description, strings.Join(f.Inputs, ", "))
	}

	cmd := &cobra.Command{
		Use:   "derive FORMULA INPUT=PATH...",
		Short: "Calculate a derived raster from input rasters.",
		Long:  "Calculate a derived raster from input rasters.\n\nFormulas:\n" + help.String(),
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := ctxlog.FromContext(ctx)
			e := env.FromContext(ctx)

			formula, err := Lookup(args[0])
			if err != nil {
				return err
			}

			inputs := make(map[string]string, len(args)-1)
			for _, arg := range args[1:] {
				name, path, found := strings.Cut(arg, "=")
				if !found {
					return fmt.Errorf("input %q must be NAME=PATH", arg)
				}
				inputs[name] = path
			}

			if outName == "" {
				outName = formula.Name
			}
			outPath := e.RasterPath(outFolder, outName)

			timer := time.Now()
			log.Infof("▶️  Calculating %s", formula.Description)
			if _, err := formula.Derive(ctx, e, outPath, inputs); err != nil {
				return err
			}
			log.Infof("✔️  Wrote %s in %s", outPath, time.Since(timer))
			return nil
		},
	}

	cmd.Flags().StringVar(&outFolder, "out-folder", "", "Path to output folder")
	cmd.Flags().StringVar(&outName, "out-name", "", "Output raster name without extension (default: formula name)")
	cmd.MarkFlagRequired("out-folder")

	return cmd
}
