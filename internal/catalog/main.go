package catalog

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewCommand returns the catalog subcommand
func NewCommand() *cobra.Command {
	var dbPath, run string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List rasters recorded by pipeline runs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer c.Close()

			entries, err := c.Entries(ctx, run)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTEP\tKIND\tSIZE\tVALID\tMIN\tMAX\tMEAN\tPATH")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d@%g\t%d\t%s\t%s\t%s\t%s\n",
					e.Run, e.Step, e.Kind, e.Cols, e.Rows, e.CellSize, e.ValidCells,
					formatNull(e.Min.Float64, e.Min.Valid), formatNull(e.Max.Float64, e.Max.Valid), formatNull(e.Mean.Float64, e.Mean.Valid),
					e.Path)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the catalog database")
	cmd.Flags().StringVar(&run, "run", "", "Only list entries of this run")
	cmd.MarkFlagRequired("db")

	return cmd
}

func formatNull(f float64, valid bool) string {
	if !valid {
		return "-"
	}
	return fmt.Sprintf("%.4g", f)
}
