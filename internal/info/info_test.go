package info

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nybem/nybem-tools/internal/raster"
)

func TestPrint(t *testing.T) {
	r := raster.New(raster.Geometry{Cols: 376, Rows: 428, CellSize: 10, XCorner: 580000, YCorner: 4490000}, raster.DefaultNoData)
	r.Data[0] = 1
	r.Data[1] = 3

	var buf bytes.Buffer
	Print(&buf, r)

	out := buf.String()
	require.Contains(t, out, "COLUMNCOUNT 376\n")
	require.Contains(t, out, "ROWCOUNT 428\n")
	require.Contains(t, out, "CELLSIZEX 10\n")
	require.Contains(t, out, "CELLSIZEY 10\n")
	require.Contains(t, out, "NODATA -9999\n")
	require.Contains(t, out, "VALIDCOUNT 2\n")
	require.Contains(t, out, "MEAN 2\n")
}
