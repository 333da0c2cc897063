package preview

import (
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/nybem/nybem-tools/internal/ctxlog"
	"github.com/nybem/nybem-tools/internal/raster"
	"github.com/nybem/nybem-tools/internal/utils"
)

// NewCommand returns the preview subcommand
func NewCommand() *cobra.Command {
	var input, output, mode string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Build preview images of a raster.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := ctxlog.FromContext(cmd.Context())
			var timer time.Time
			start := time.Now()

			// make sure given output directory is a valid directory
			if !utils.IsDirectory(output) {
				return errors.New("output directory doesn't exist")
			}

			timer = time.Now()
			log.Info("▶️  Loading raster")
			r, err := raster.Read(input)
			if err != nil {
				return err
			}
			log.Infof("✔️  Loaded raster in %s", time.Since(timer))

			img, err := Render(r, mode)
			if err != nil {
				return err
			}

			timer = time.Now()
			log.Info("▶️  Writing original preview image to output")
			if err := SaveImage(path.Join(output, "preview.png"), img); err != nil {
				return err
			}
			log.Infof("✔️  Wrote original preview image in %s", time.Since(timer))

			for _, size := range Sizes {
				timer = time.Now()
				log.Infof("▶️  Building x%d image", size)

				if err := SaveImage(path.Join(output, fmt.Sprintf("preview_%d.png", size)), Scale(img, size)); err != nil {
					return err
				}

				log.Infof("✔️  Built x%d in %s", size, time.Since(timer))
			}

			log.Infof("🎉  Finished in %s", time.Since(start))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "in", "", "Path to the raster")
	cmd.Flags().StringVar(&output, "out", "", "Path to output directory")
	cmd.Flags().StringVar(&mode, "mode", Gray, "Colouring, gray or terrainrgb")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")

	return cmd
}
