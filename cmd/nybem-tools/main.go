package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nybem/nybem-tools/internal/algebra"
	"github.com/nybem/nybem-tools/internal/catalog"
	"github.com/nybem/nybem-tools/internal/ctxlog"
	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/info"
	"github.com/nybem/nybem-tools/internal/interp"
	"github.com/nybem/nybem-tools/internal/pipeline"
	"github.com/nybem/nybem-tools/internal/preview"

	_ "github.com/nybem/nybem-tools/internal/raster/asciigrid"
	_ "github.com/nybem/nybem-tools/internal/raster/geotiff"
)

var subCommands = []func() *cobra.Command{
	pipeline.NewCreateScenarioCommand,
	pipeline.NewCopyStaticCommand,
	interp.NewCommand,
	algebra.NewCommand,
	pipeline.NewUpdateCommand,
	pipeline.NewBuildCommand,
	info.NewCommand,
	preview.NewCommand,
	catalog.NewCommand,
}

func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "nybem-tools",
		Short:         "Build NYBEM alternative scenario predictor rasters from AdH model output.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e, err := env.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				e.LogLevel = logLevel
			}

			logger, err := ctxlog.New(e.LogLevel)
			if err != nil {
				return err
			}

			ctx := ctxlog.WithLogger(cmd.Context(), logger)
			cmd.SetContext(env.WithEnv(ctx, e))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	for _, sub := range subCommands {
		root.AddCommand(sub())
	}

	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Fatalf("❌  %s", err)
	}
}
