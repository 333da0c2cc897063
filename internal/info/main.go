// Package info reports raster properties.
package info

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nybem/nybem-tools/internal/raster"
)

// Print writes the properties of r in the form of GetRasterProperties keys
func Print(w io.Writer, r *raster.Raster) {
	g := r.Geometry
	stats := r.Statistics()

	fmt.Fprintf(w, "COLUMNCOUNT %d\n", g.Cols)
	fmt.Fprintf(w, "ROWCOUNT %d\n", g.Rows)
	fmt.Fprintf(w, "CELLSIZEX %g\n", g.CellSize)
	fmt.Fprintf(w, "CELLSIZEY %g\n", g.CellSize)
	fmt.Fprintf(w, "LEFT %g\n", g.XCorner)
	fmt.Fprintf(w, "BOTTOM %g\n", g.YCorner)
	fmt.Fprintf(w, "NODATA %g\n", r.NoData)
	fmt.Fprintf(w, "VALIDCOUNT %d\n", stats.Valid)
	fmt.Fprintf(w, "MINIMUM %g\n", stats.Min)
	fmt.Fprintf(w, "MAXIMUM %g\n", stats.Max)
	fmt.Fprintf(w, "MEAN %g\n", stats.Mean)
}

// NewCommand returns the info subcommand
func NewCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print raster properties.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := raster.Read(input)
			if err != nil {
				return err
			}
			Print(cmd.OutOrStdout(), r)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "in", "", "Path to the raster")
	cmd.MarkFlagRequired("in")

	return cmd
}
