package features

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadBarriers reads a line dataset used to constrain interpolation. Polygon
// boundaries are used as barrier lines. An empty path means no barriers.
func LoadBarriers(path string) ([]orb.LineString, error) {
	if path == "" {
		return nil, nil
	}

	fc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Lines(fc), nil
}

// Lines extracts every line and ring from the features
func Lines(fc *geojson.FeatureCollection) []orb.LineString {
	var lines []orb.LineString

	for _, feature := range fc.Features {
		lines = appendLines(lines, feature.Geometry)
	}

	return lines
}

func appendLines(lines []orb.LineString, g orb.Geometry) []orb.LineString {
	switch t := g.(type) {
	case orb.LineString:
		if len(t) > 1 {
			lines = append(lines, t)
		}
	case orb.MultiLineString:
		for _, ls := range t {
			lines = appendLines(lines, ls)
		}
	case orb.Ring:
		lines = appendLines(lines, orb.LineString(t))
	case orb.Polygon:
		for _, r := range t {
			lines = appendLines(lines, r)
		}
	case orb.MultiPolygon:
		for _, p := range t {
			lines = appendLines(lines, p)
		}
	case orb.Collection:
		for _, c := range t {
			lines = appendLines(lines, c)
		}
	}
	return lines
}
