package interp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"

	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/features"
	"github.com/nybem/nybem-tools/internal/raster"
	_ "github.com/nybem/nybem-tools/internal/raster/asciigrid"
)

func testEnv() env.Env {
	e := env.Default()
	e.Format = "AAIGrid"
	e.Workers = 4
	return e
}

func onesMask(cols, rows int, cellSize float64) *raster.Raster {
	m := raster.New(raster.Geometry{Cols: cols, Rows: rows, CellSize: cellSize}, raster.DefaultNoData)
	for i := range m.Data {
		m.Data[i] = 1
	}
	return m
}

// gridSamples places a sample every step on [x0, x1] x [0, 100]
func gridSamples(x0, x1, step float64, f func(x, y float64) float64) []features.Sample {
	var samples []features.Sample
	for x := x0; x <= x1; x += step {
		for y := 0.0; y <= 100; y += step {
			samples = append(samples, features.Sample{Point: orb.Point{x, y}, Value: f(x, y)})
		}
	}
	return samples
}

func TestSegmentsIntersect(t *testing.T) {
	cases := []struct {
		name           string
		p1, p2, p3, p4 orb.Point
		expected       bool
	}{
		{"crossing", orb.Point{0, 0}, orb.Point{2, 2}, orb.Point{0, 2}, orb.Point{2, 0}, true},
		{"parallel", orb.Point{0, 0}, orb.Point{2, 0}, orb.Point{0, 1}, orb.Point{2, 1}, false},
		{"touching end", orb.Point{0, 0}, orb.Point{1, 1}, orb.Point{1, 1}, orb.Point{2, 0}, true},
		{"collinear overlap", orb.Point{0, 0}, orb.Point{2, 0}, orb.Point{1, 0}, orb.Point{3, 0}, true},
		{"collinear apart", orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0}, orb.Point{3, 0}, false},
		{"short of crossing", orb.Point{0, 0}, orb.Point{0.9, 0.9}, orb.Point{0, 2}, orb.Point{2, 0}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.expected, segmentsIntersect(c.p1, c.p2, c.p3, c.p4))
		})
	}
}

func TestBarrierIndex(t *testing.T) {
	idx := newBarrierIndex([]orb.LineString{{{5, -10}, {5, 10}, {5, 10}}})

	require.True(t, idx.blocked(orb.Point{0, 0}, orb.Point{10, 0}))
	require.False(t, idx.blocked(orb.Point{0, 0}, orb.Point{4, 0}))
	require.False(t, idx.blocked(orb.Point{0, 20}, orb.Point{10, 20}))

	require.False(t, newBarrierIndex(nil).blocked(orb.Point{0, 0}, orb.Point{10, 0}))
}

func TestSpline_ReproducesLinearField(t *testing.T) {
	linear := func(x, y float64) float64 { return 2*x + 3*y + 1 }
	mask := onesMask(10, 10, 10)

	out, err := Spline{}.Interpolate(context.Background(), testEnv(), Input{
		Samples: gridSamples(0, 100, 10, linear),
		Mask:    mask,
	})
	require.NoError(t, err)
	require.True(t, mask.Geometry.Equal(out.Geometry))

	for row := 0; row < 10; row++ {
		for col := 0; col < 10; col++ {
			require.InDelta(t, linear(out.X(col), out.Y(row)), out.Z(col, row), 1e-6)
		}
	}
}

func TestSpline_ExactAtSample(t *testing.T) {
	samples := []features.Sample{{Point: orb.Point{5, 5}, Value: 42}, {Point: orb.Point{50, 50}, Value: 0}}

	out, err := Spline{}.Interpolate(context.Background(), testEnv(), Input{Samples: samples, Mask: onesMask(2, 2, 10)})
	require.NoError(t, err)
	// (5, 5) is the centre of the south west cell
	require.Equal(t, 42.0, out.Z(0, 1))
}

func TestSpline_BarrierSeparatesFields(t *testing.T) {
	// --- Arrange ---
	samples := append(
		gridSamples(0, 40, 10, func(x, y float64) float64 { return 0 }),
		gridSamples(60, 100, 10, func(x, y float64) float64 { return 100 })...,
	)
	barrier := []orb.LineString{{{50, -1000}, {50, 1000}}}

	// --- Act ---
	out, err := Spline{}.Interpolate(context.Background(), testEnv(), Input{
		Samples:  samples,
		Barriers: barrier,
		Mask:     onesMask(10, 10, 10),
	})

	// --- Assert ---
	require.NoError(t, err)
	for row := 0; row < 10; row++ {
		for col := 0; col < 5; col++ {
			require.InDelta(t, 0, out.Z(col, row), 1e-6)
		}
		for col := 5; col < 10; col++ {
			require.InDelta(t, 100, out.Z(col, row), 1e-6)
		}
	}
}

func TestSpline_UnreachableAndMaskedCellsAreNoData(t *testing.T) {
	samples := gridSamples(0, 40, 10, func(x, y float64) float64 { return 1 })
	mask := onesMask(10, 10, 10)
	mask.Set(0, 0, mask.NoData)

	out, err := Spline{}.Interpolate(context.Background(), testEnv(), Input{
		Samples:  samples,
		Barriers: []orb.LineString{{{50, -1000}, {50, 1000}}},
		Mask:     mask,
	})
	require.NoError(t, err)

	require.True(t, out.IsNoData(out.Z(0, 0)))
	require.InDelta(t, 1, out.Z(1, 0), 1e-6)
	require.True(t, out.IsNoData(out.Z(7, 3)))
}

func TestSpline_FallsBackToInverseDistance(t *testing.T) {
	// two samples can't carry a plane
	samples := []features.Sample{{Point: orb.Point{0, 5}, Value: 0}, {Point: orb.Point{20, 5}, Value: 10}}

	out, err := Spline{}.Interpolate(context.Background(), testEnv(), Input{Samples: samples, Mask: onesMask(2, 1, 10)})
	require.NoError(t, err)
	// cell centres at x=5 and x=15
	require.InDelta(t, 1, out.Z(0, 0), 1e-9)
	require.InDelta(t, 9, out.Z(1, 0), 1e-9)
}

func TestSpline_Errors(t *testing.T) {
	_, err := Spline{}.Interpolate(context.Background(), testEnv(), Input{Mask: onesMask(1, 1, 1)})
	require.ErrorIs(t, err, features.ErrNoPoints)

	_, err = Spline{}.Interpolate(context.Background(), testEnv(), Input{Samples: []features.Sample{{Value: 1}}})
	require.Error(t, err)
}

func TestSpline_MaskGeometry(t *testing.T) {
	e := testEnv()
	e.SplineNeighbors = 4
	mask := onesMask(376, 428, 10)
	mask.Geometry.XCorner = 580000
	mask.Geometry.YCorner = 4490000

	samples := []features.Sample{
		{Point: orb.Point{580000, 4490000}, Value: 1},
		{Point: orb.Point{583760, 4490000}, Value: 2},
		{Point: orb.Point{580000, 4494280}, Value: 3},
		{Point: orb.Point{583760, 4494280}, Value: 4},
	}

	out, err := Spline{}.Interpolate(context.Background(), e, Input{Samples: samples, Mask: mask})
	require.NoError(t, err)
	require.Equal(t, mask.Geometry, out.Geometry)
	require.Len(t, out.Data, 376*428)
}

func TestAdhToRaster(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	e := testEnv()

	fc := geojson.NewFeatureCollection()
	for _, s := range gridSamples(0, 100, 10, func(x, y float64) float64 { return x }) {
		f := geojson.NewFeature(s.Point)
		f.Properties["vel_90"] = s.Value
		f.Properties["layer"] = 1.0
		fc.Append(f)
		// a second layer the filter drops
		f = geojson.NewFeature(s.Point)
		f.Properties["vel_90"] = 1000.0
		f.Properties["layer"] = 2.0
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	points := filepath.Join(dir, "velocity.geojson")
	require.NoError(t, os.WriteFile(points, data, 0o644))

	mask := onesMask(10, 10, 10)
	mask.Set(9, 9, mask.NoData)
	maskPath := filepath.Join(dir, "mask.asc")
	require.NoError(t, e.Write(maskPath, mask))

	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	// --- Act ---
	path, r, err := AdhToRaster(context.Background(), e, Spline{}, Params{
		OutputFolder: outDir,
		OutputName:   "vel_90",
		Points:       points,
		Variable:     "vel_90",
		Where:        "layer = 1",
		Mask:         maskPath,
	})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, filepath.Join(outDir, "vel_90.asc"), path)

	written, err := raster.Read(path)
	require.NoError(t, err)
	require.True(t, written.IsNoData(written.Z(9, 9)))
	require.InDelta(t, 45, written.Z(4, 0), 1e-6)
	require.Equal(t, r.Data, written.Data)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the final raster is written")
}
