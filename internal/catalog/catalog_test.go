package catalog

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nybem/nybem-tools/internal/raster"
)

func TestCatalog_RecordAndList(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	c, err := Open(ctx, path)
	require.NoError(t, err)

	r := raster.New(raster.Geometry{Cols: 2, Rows: 1, CellSize: 10}, raster.DefaultNoData)
	r.Data[0] = 4
	empty := raster.New(raster.Geometry{Cols: 1, Rows: 1, CellSize: 10}, raster.DefaultNoData)

	// --- Act ---
	require.NoError(t, c.Record(ctx, NewEntry("run-a", "est_int/vel_90", "interpolate", "/alt/vel_90.tif", r, 1500*time.Millisecond)))
	require.NoError(t, c.Record(ctx, NewEntry("run-a", "est_int/esd", "derive", "/alt/esd.tif", empty, 0)))
	require.NoError(t, c.Record(ctx, NewEntry("run-b", "mtl", "interpolate", "/alt/mtl.tif", r, 0)))
	require.NoError(t, c.Close())

	// --- Assert ---
	c, err = Open(ctx, path)
	require.NoError(t, err)
	defer c.Close()

	entries, err := c.Entries(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	require.Equal(t, "est_int/vel_90", first.Step)
	require.Equal(t, "interpolate", first.Kind)
	require.Equal(t, 2, first.Cols)
	require.Equal(t, 1, first.ValidCells)
	require.True(t, first.Mean.Valid)
	require.Equal(t, 4.0, first.Mean.Float64)
	require.Equal(t, int64(1500), first.ElapsedMS)

	require.False(t, entries[1].Min.Valid, "a raster without valid cells has no statistics")

	all, err := c.Entries(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestNullFloat(t *testing.T) {
	require.False(t, nullFloat(math.NaN()).Valid)
	require.False(t, nullFloat(math.Inf(1)).Valid)
	require.Equal(t, 1.5, nullFloat(1.5).Float64)
}
