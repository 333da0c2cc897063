// Package features loads the point and barrier datasets fed to the interpolator.
package features

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Load reads a shapefile (.shp) or GeoJSON (.geojson, .json, optionally .gz) dataset.
// Shapefile attributes are only read for the listed fields, GeoJSON keeps all properties.
func Load(path string, fields ...string) (*geojson.FeatureCollection, error) {
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".shp"):
		return loadShapefile(path, fields)
	case strings.HasSuffix(lower, ".geojson"), strings.HasSuffix(lower, ".json"),
		strings.HasSuffix(lower, ".geojson.gz"), strings.HasSuffix(lower, ".json.gz"):
		return loadGeoJSON(path)
	default:
		return nil, fmt.Errorf("%s: unsupported feature dataset, use .shp or .geojson", path)
	}
}

func loadGeoJSON(path string) (*geojson.FeatureCollection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

func loadShapefile(path string, fields []string) (*geojson.FeatureCollection, error) {
	decoder, err := shp.NewDecoder(path)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	fields = presentFields(decoder, fields)

	fc := geojson.NewFeatureCollection()
	for {
		g, values, more := decoder.DecodeRowFields(fields...)
		if !more {
			break
		}

		geometry, err := fromGeom(g)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		feature := geojson.NewFeature(geometry)
		for name, value := range values {
			feature.Properties[name] = parseValue(value)
		}
		fc.Append(feature)
	}

	if err := decoder.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// presentFields drops the names the dbf has no column for, the decoder fails the
// whole read on those. Missing attributes are reported by Select instead.
func presentFields(decoder *shp.Decoder, fields []string) []string {
	columns := map[string]bool{}
	for _, f := range decoder.Fields() {
		columns[strings.ToLower(strings.TrimRight(string(f.Name[:]), "\x00"))] = true
	}

	present := make([]string, 0, len(fields))
	for _, name := range fields {
		if columns[strings.ToLower(name)] {
			present = append(present, name)
		}
	}
	return present
}

// parseValue turns dbf text into a number where possible
func parseValue(s string) interface{} {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func fromGeom(g geom.Geom) (orb.Geometry, error) {
	switch t := g.(type) {
	case geom.Point:
		return orb.Point{t.X, t.Y}, nil
	case *geom.Point:
		return orb.Point{t.X, t.Y}, nil
	case geom.MultiPoint:
		mp := make(orb.MultiPoint, len(t))
		for i, p := range t {
			mp[i] = orb.Point{p.X, p.Y}
		}
		return mp, nil
	case geom.LineString:
		return lineString(t), nil
	case geom.MultiLineString:
		mls := make(orb.MultiLineString, len(t))
		for i, ls := range t {
			mls[i] = lineString(ls)
		}
		return mls, nil
	case geom.Polygon:
		return polygon(t), nil
	case geom.MultiPolygon:
		mp := make(orb.MultiPolygon, len(t))
		for i, p := range t {
			mp[i] = polygon(p)
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("unsupported geometry %T", g)
	}
}

func lineString(points []geom.Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return ls
}

func polygon(p geom.Polygon) orb.Polygon {
	poly := make(orb.Polygon, len(p))
	for i, path := range p {
		poly[i] = orb.Ring(lineString(path))
	}
	return poly
}
