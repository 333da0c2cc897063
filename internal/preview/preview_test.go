package preview

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nybem/nybem-tools/internal/raster"
)

func sample() *raster.Raster {
	r := raster.New(raster.Geometry{Cols: 3, Rows: 2, CellSize: 10}, raster.DefaultNoData)
	copy(r.Data, []float64{0, 5, 10, raster.DefaultNoData, 10, 0})
	return r
}

func decodeHeight(c color.NRGBA) float64 {
	x := int64(c.R)*256*256 + int64(c.G)*256 + int64(c.B)
	return -10000 + float64(x)*0.1
}

func TestRender_Gray(t *testing.T) {
	img, err := Render(sample(), Gray)
	require.NoError(t, err)

	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())
	require.Equal(t, color.NRGBA{A: 255}, img.NRGBAAt(0, 0))
	require.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}, img.NRGBAAt(1, 0))
	require.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(2, 0))
	require.Equal(t, uint8(0), img.NRGBAAt(0, 1).A, "nodata is transparent")
}

func TestRender_TerrainRGB(t *testing.T) {
	img, err := Render(sample(), TerrainRGB)
	require.NoError(t, err)

	require.InDelta(t, 10, decodeHeight(img.NRGBAAt(2, 0)), 0.1)
	require.InDelta(t, 5, decodeHeight(img.NRGBAAt(1, 0)), 0.1)

	_, err = Render(sample(), "hillshade")
	require.Error(t, err)
}

func TestHeightToRgb(t *testing.T) {
	for _, h := range []float64{-10000, -3.25, 0, 8848.85} {
		require.InDelta(t, h, decodeHeight(HeightToRgb(h)), 0.1)
	}
	// below the encodable range
	require.Equal(t, color.NRGBA{A: 255}, HeightToRgb(-20000))
}

func TestScaleAndSave(t *testing.T) {
	img, err := Render(sample(), Gray)
	require.NoError(t, err)

	scaled := Scale(img, 128)
	require.Equal(t, 128, scaled.Bounds().Dy())
	require.Equal(t, 192, scaled.Bounds().Dx())

	path := filepath.Join(t.TempDir(), "preview_128.png")
	require.NoError(t, SaveImage(path, scaled))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	cfg, err := png.DecodeConfig(file)
	require.NoError(t, err)
	require.Equal(t, 192, cfg.Width)
}
