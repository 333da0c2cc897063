package interp

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/nybem/nybem-tools/internal/ctxlog"
	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/features"
	"github.com/nybem/nybem-tools/internal/raster"
)

// rows handled by one goroutine
const rowsPerBatch = 16

// Spline is a local regularized thin plate spline. Every cell is fitted to its
// nearest samples that can be reached without crossing a barrier. With fewer than
// three such samples, or a degenerate system, it falls back to inverse distance
// weighting. Cells that see no sample at all are nodata.
type Spline struct{}

type indexedSample struct {
	geom.Point
	value float64
}

type neighbour struct {
	p     orb.Point
	value float64
	dist  float64
}

type splineGrid struct {
	samples   *rtree.Rtree
	barriers  *barrierIndex
	neighbors int
	weight    float64
	// initial and maximum search radius
	radius, maxRadius float64
}

// Interpolate implements Engine
func (Spline) Interpolate(ctx context.Context, e env.Env, in Input) (*raster.Raster, error) {
	if len(in.Samples) == 0 {
		return nil, features.ErrNoPoints
	}
	if in.Mask == nil {
		return nil, fmt.Errorf("interpolation needs a mask")
	}
	if err := in.Mask.Validate(); err != nil {
		return nil, err
	}

	log := ctxlog.FromContext(ctx)
	timer := time.Now()

	sg := newSplineGrid(in, e)
	mask := in.Mask
	geometry := mask.Geometry
	out := raster.New(geometry, raster.ComputedNoData)
	var unreachable atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Parallelism())

	for start := 0; start < geometry.Rows; start += rowsPerBatch {
		end := start + rowsPerBatch
		if end > geometry.Rows {
			end = geometry.Rows
		}

		start := start // per-iteration copy; module targets go 1.21 loop semantics
		g.Go(func() error {
			for row := start; row < end; row++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for col := 0; col < geometry.Cols; col++ {
					if mask.IsNoData(mask.Z(col, row)) {
						continue
					}
					if v, ok := sg.at(orb.Point{geometry.X(col), geometry.Y(row)}); ok {
						out.Set(col, row, v)
					} else {
						unreachable.Add(1)
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if n := unreachable.Load(); n > 0 {
		log.Warnf("⚠️  %d cells see no sample past the barriers and stay nodata", n)
	}
	log.Debugf("ℹ️  Spline over %d samples, %d barrier segments took %s", len(in.Samples), sg.barriers.segments, time.Since(timer))
	return out, nil
}

func newSplineGrid(in Input, e env.Env) *splineGrid {
	tree := rtree.NewTree(25, 50)
	sampleBound := orb.Bound{Min: in.Samples[0].Point, Max: in.Samples[0].Point}
	for _, s := range in.Samples {
		tree.Insert(&indexedSample{Point: geom.Point{X: s.Point[0], Y: s.Point[1]}, value: s.Value})
		sampleBound = sampleBound.Extend(s.Point)
	}

	extent := sampleBound.Union(in.Mask.Geometry.Bound())
	maxRadius := planar.Distance(extent.Min, extent.Max)

	// a circle that holds about the wanted neighbour count at the mean sample density
	area := (sampleBound.Max[0] - sampleBound.Min[0]) * (sampleBound.Max[1] - sampleBound.Min[1])
	radius := math.Sqrt(area / float64(len(in.Samples)) * float64(e.SplineNeighbors) / math.Pi)
	radius = math.Max(radius, in.Mask.Geometry.CellSize)
	if radius > maxRadius {
		radius = maxRadius
	}

	return &splineGrid{
		samples:   tree,
		barriers:  newBarrierIndex(in.Barriers),
		neighbors: e.SplineNeighbors,
		weight:    e.SplineWeight,
		radius:    radius,
		maxRadius: maxRadius,
	}
}

// at interpolates the value at p
func (sg *splineGrid) at(p orb.Point) (float64, bool) {
	near := sg.visibleNeighbours(p)
	if len(near) == 0 {
		return 0, false
	}
	if near[0].dist == 0 {
		return near[0].value, true
	}

	if len(near) >= 3 {
		if v, ok := thinPlate(p, near, sg.weight); ok {
			return v, true
		}
	}
	return inverseDistance(near), true
}

// visibleNeighbours returns up to sg.neighbors samples nearest to p, ordered by distance,
// whose line of sight to p crosses no barrier.
func (sg *splineGrid) visibleNeighbours(p orb.Point) []neighbour {
	checked := map[*indexedSample]bool{}
	var visible []neighbour

	for radius := sg.radius; ; radius *= 2 {
		bounds := &geom.Bounds{
			Min: geom.Point{X: p[0] - radius, Y: p[1] - radius},
			Max: geom.Point{X: p[0] + radius, Y: p[1] + radius},
		}

		var candidates []neighbour
		var owners []*indexedSample
		for _, item := range sg.samples.SearchIntersect(bounds) {
			s := item.(*indexedSample)
			if checked[s] {
				continue
			}
			q := orb.Point{s.X, s.Y}
			d := planar.Distance(p, q)
			if d > radius {
				continue
			}
			candidates = append(candidates, neighbour{p: q, value: s.value, dist: d})
			owners = append(owners, s)
		}

		order := make([]int, len(candidates))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool { return candidates[order[i]].dist < candidates[order[j]].dist })

		for _, i := range order {
			checked[owners[i]] = true
			if sg.barriers.blocked(p, candidates[i].p) {
				continue
			}
			visible = append(visible, candidates[i])
			if len(visible) == sg.neighbors {
				return visible
			}
		}

		if radius >= sg.maxRadius {
			return visible
		}
	}
}

func tps(r float64) float64 {
	if r == 0 {
		return 0
	}
	return r * r * math.Log(r)
}

// thinPlate fits a regularized thin plate spline through near and evaluates it at p.
// Coordinates are centred on p and scaled by the farthest neighbour to keep the
// system well conditioned.
func thinPlate(p orb.Point, near []neighbour, weight float64) (float64, bool) {
	n := len(near)
	scale := near[n-1].dist
	if scale == 0 {
		return 0, false
	}

	local := make([]orb.Point, n)
	for i, nb := range near {
		local[i] = orb.Point{(nb.p[0] - p[0]) / scale, (nb.p[1] - p[1]) / scale}
	}

	size := n + 3
	a := mat.NewDense(size, size, nil)
	b := mat.NewVecDense(size, nil)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, tps(planar.Distance(local[i], local[j])))
		}
		a.Set(i, i, a.At(i, i)+weight)

		a.Set(i, n, 1)
		a.Set(i, n+1, local[i][0])
		a.Set(i, n+2, local[i][1])
		a.Set(n, i, 1)
		a.Set(n+1, i, local[i][0])
		a.Set(n+2, i, local[i][1])

		b.SetVec(i, near[i].value)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return 0, false
	}

	// p is the origin of the local frame
	v := x.AtVec(n)
	for i := 0; i < n; i++ {
		v += x.AtVec(i) * tps(planar.Distance(local[i], orb.Point{0, 0}))
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// inverseDistance is the inverse distance squared weighted mean of near
func inverseDistance(near []neighbour) float64 {
	var sum, weights float64
	for _, nb := range near {
		w := 1 / (nb.dist * nb.dist)
		sum += w * nb.value
		weights += w
	}
	return sum / weights
}
