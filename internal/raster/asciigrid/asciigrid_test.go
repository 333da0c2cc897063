package asciigrid

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nybem/nybem-tools/internal/raster"
)

const cornerGrid = `ncols 3
nrows 2
xllcorner 100
yllcorner 200
cellsize 10
NODATA_value -9999
1 2 3
4 -9999 6
`

func TestParse_Corner(t *testing.T) {
	r, err := Parse(strings.NewReader(cornerGrid))
	require.NoError(t, err)

	require.Equal(t, raster.Geometry{Cols: 3, Rows: 2, CellSize: 10, XCorner: 100, YCorner: 200}, r.Geometry)
	require.Equal(t, []float64{1, 2, 3, 4, -9999, 6}, r.Data)
	require.True(t, r.IsNoData(r.Z(1, 1)))
}

func TestParse_CenterWithoutNoData(t *testing.T) {
	src := `NCOLS 2
NROWS 1
XLLCENTER 105
YLLCENTER 205
CELLSIZE 10
7 8
`
	r, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	require.Equal(t, 100.0, r.Geometry.XCorner)
	require.Equal(t, 200.0, r.Geometry.YCorner)
	require.Equal(t, raster.DefaultNoData, r.NoData)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"missing header": "ncols 2\nnrows 1\ncellsize 1\n1 2\n",
		"short row":      "ncols 2\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n1\n",
		"missing rows":   "ncols 1\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1\n",
		"bad cellsize":   "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 0\n1\n",
		"no data":        "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n",
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(src))
			require.Error(t, err)
		})
	}
}

func TestEncode_WritesNaNAsNoData(t *testing.T) {
	r, err := Parse(strings.NewReader(cornerGrid))
	require.NoError(t, err)
	r.Set(0, 0, math.NaN())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r))
	require.Contains(t, buf.String(), "-9999 2 3\n")

	back, err := Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, r.Geometry, back.Geometry)
	require.True(t, back.IsNoData(back.Z(0, 0)))
}

func TestDriver_RoundTripGzip(t *testing.T) {
	r, err := Parse(strings.NewReader(cornerGrid))
	require.NoError(t, err)

	for _, name := range []string{"grid.asc", "grid.asc.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Driver{}.Write(path, r, raster.WriteOptions{}))

			back, err := Driver{}.Read(path)
			require.NoError(t, err)
			require.Equal(t, r.Data, back.Data)
			require.Equal(t, r.Geometry, back.Geometry)
		})
	}
}
