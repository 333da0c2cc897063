// Package preview renders PNG quick looks of rasters.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/nfnt/resize"

	"github.com/nybem/nybem-tools/internal/raster"
)

// Sizes are the heights in pixels previews are rendered at
var Sizes = []uint{128, 256, 512, 1024}

// Modes a raster can be rendered with
const (
	Gray       = "gray"
	TerrainRGB = "terrainrgb"
)

// Render draws r with one pixel per cell. Nodata cells are transparent.
func Render(r *raster.Raster, mode string) (*image.NRGBA, error) {
	cols, rows := r.Dims()
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))

	var paint func(v float64) color.NRGBA
	switch mode {
	case Gray:
		stats := r.Statistics()
		span := stats.Max - stats.Min
		paint = func(v float64) color.NRGBA {
			level := uint8(0)
			if span > 0 {
				level = uint8(math.Round((v - stats.Min) / span * 255))
			}
			return color.NRGBA{R: level, G: level, B: level, A: 255}
		}
	case TerrainRGB:
		paint = HeightToRgb
	default:
		return nil, fmt.Errorf("unknown preview mode %q, expected %s or %s", mode, Gray, TerrainRGB)
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			v := r.Z(col, row)
			if r.IsNoData(v) {
				continue
			}
			img.SetNRGBA(col, row, paint(v))
		}
	}

	return img, nil
}

// Scale resizes img to given height keeping its aspect ratio
func Scale(img image.Image, height uint) image.Image {
	factor := float64(height) / float64(img.Bounds().Dy())
	width := uint(math.Max(1, math.Round(float64(img.Bounds().Dx())*factor)))

	return resize.Resize(width, height, img, resize.MitchellNetravali)
}

// SaveImage writes img as png to path
func SaveImage(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
