package interp

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/paulmach/orb"
)

type segment struct {
	geom.LineString
	a, b orb.Point
}

// barrierIndex answers whether the straight line between two points crosses a barrier
type barrierIndex struct {
	tree     *rtree.Rtree
	segments int
}

func newBarrierIndex(lines []orb.LineString) *barrierIndex {
	idx := &barrierIndex{tree: rtree.NewTree(25, 50)}

	for _, line := range lines {
		for i := 1; i < len(line); i++ {
			a, b := line[i-1], line[i]
			if a.Equal(b) {
				continue
			}
			idx.tree.Insert(&segment{
				LineString: geom.LineString{{X: a[0], Y: a[1]}, {X: b[0], Y: b[1]}},
				a:          a,
				b:          b,
			})
			idx.segments++
		}
	}

	return idx
}

// blocked reports whether the segment p-q touches or crosses any barrier segment
func (idx *barrierIndex) blocked(p, q orb.Point) bool {
	if idx.segments == 0 {
		return false
	}

	bounds := &geom.Bounds{
		Min: geom.Point{X: math.Min(p[0], q[0]), Y: math.Min(p[1], q[1])},
		Max: geom.Point{X: math.Max(p[0], q[0]), Y: math.Max(p[1], q[1])},
	}
	for _, item := range idx.tree.SearchIntersect(bounds) {
		s := item.(*segment)
		if segmentsIntersect(p, q, s.a, s.b) {
			return true
		}
	}
	return false
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, c orb.Point) bool {
	return math.Min(a[0], b[0]) <= c[0] && c[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= c[1] && c[1] <= math.Max(a[1], b[1])
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

// segmentsIntersect reports whether p1-p2 and p3-p4 share at least one point
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := sign(orientation(p3, p4, p1))
	d2 := sign(orientation(p3, p4, p2))
	d3 := sign(orientation(p1, p2, p3))
	d4 := sign(orientation(p1, p2, p4))

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}

	// collinear and touching cases
	return (d1 == 0 && onSegment(p3, p4, p1)) ||
		(d2 == 0 && onSegment(p3, p4, p2)) ||
		(d3 == 0 && onSegment(p1, p2, p3)) ||
		(d4 == 0 && onSegment(p1, p2, p4))
}
