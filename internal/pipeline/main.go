package pipeline

import (
	"github.com/spf13/cobra"

	"github.com/nybem/nybem-tools/internal/catalog"
	"github.com/nybem/nybem-tools/internal/ctxlog"
	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/interp"
)

// NewCreateScenarioCommand returns the create-scenario subcommand
func NewCreateScenarioCommand() *cobra.Command {
	var alt, pipelinePath string

	cmd := &cobra.Command{
		Use:   "create-scenario",
		Short: "Create the folder structure for a new model scenario.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(cmd, pipelinePath)
			if err != nil {
				return err
			}
			return runner.CreateTree(cmd.Context(), alt)
		},
	}

	cmd.Flags().StringVar(&alt, "alt", "", "Path to the scenario to create")
	cmd.Flags().StringVar(&pipelinePath, "pipeline", "", "Pipeline table (default: built in NYBEM table)")
	cmd.MarkFlagRequired("alt")

	return cmd
}

// NewCopyStaticCommand returns the copy-static subcommand
func NewCopyStaticCommand() *cobra.Command {
	var fwop, alt, pipelinePath string

	cmd := &cobra.Command{
		Use:   "copy-static",
		Short: "Copy static predictors from the baseline scenario to an alternative.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(cmd, pipelinePath)
			if err != nil {
				return err
			}
			return runner.CopyStatic(cmd.Context(), fwop, alt)
		},
	}

	cmd.Flags().StringVar(&fwop, "fwop", "", "Path to the future without project scenario")
	cmd.Flags().StringVar(&alt, "alt", "", "Path to the alternative scenario")
	cmd.Flags().StringVar(&pipelinePath, "pipeline", "", "Pipeline table (default: built in NYBEM table)")
	cmd.MarkFlagRequired("fwop")
	cmd.MarkFlagRequired("alt")

	return cmd
}

// NewUpdateCommand returns the update-adh subcommand
func NewUpdateCommand() *cobra.Command {
	return newRunCommand("update-adh", "Calculate the AdH predictor rasters of an alternative scenario.", false)
}

// NewBuildCommand returns the build subcommand
func NewBuildCommand() *cobra.Command {
	return newRunCommand("build", "Create, seed and calculate an alternative scenario in one go.", true)
}

func newRunCommand(use, short string, build bool) *cobra.Command {
	var in Inputs
	var pipelinePath, catalogPath string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := newRunner(cmd, pipelinePath)
			if err != nil {
				return err
			}

			if catalogPath != "" {
				c, err := catalog.Open(ctx, catalogPath)
				if err != nil {
					return err
				}
				defer c.Close()
				runner.Catalog = c
			}

			var result Result
			if build {
				result, err = runner.Build(ctx, in)
			} else {
				result, err = runner.Update(ctx, in)
			}
			if err != nil {
				return err
			}

			ctxlog.FromContext(ctx).Infof("ℹ️  Run %s wrote %d rasters", result.Run, len(result.Outputs))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in.Fwop, "fwop", "", "Path to the future without project scenario")
	flags.StringVar(&in.Alt, "alt", "", "Path to the alternative scenario")
	flags.StringVar(&in.Velocity, "velocity", "", "AdH velocity results as points")
	flags.StringVar(&in.Salinity, "salinity", "", "AdH salinity results as points")
	flags.StringVar(&in.WSE, "wse", "", "AdH water surface elevation results as points")
	flags.StringVar(&in.Barriers, "barriers", "", "Line dataset of interpolation barriers")
	flags.StringVar(&in.Mask, "mask", "", "Raster defining the output grid")
	flags.StringVar(&pipelinePath, "pipeline", "", "Pipeline table (default: built in NYBEM table)")
	flags.StringVar(&catalogPath, "catalog", "", "Record written rasters in this sqlite database")
	for _, name := range []string{"fwop", "alt", "mask"} {
		cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newRunner(cmd *cobra.Command, pipelinePath string) (*Runner, error) {
	config, err := Load(pipelinePath)
	if err != nil {
		return nil, err
	}

	return &Runner{
		Config: config,
		Env:    env.FromContext(cmd.Context()),
		Engine: interp.Spline{},
	}, nil
}
