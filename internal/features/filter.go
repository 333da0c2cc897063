package features

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	// sqlite evaluates the WHERE filters
	_ "modernc.org/sqlite"
)

// ErrNoPoints is returned when a filter leaves no point with a numeric value
var ErrNoPoints = errors.New("no points selected")

// Sample is a point carrying the value of the interpolated attribute
type Sample struct {
	orb.Point
	Value float64
}

type sampleRow struct {
	X     float64         `db:"x"`
	Y     float64         `db:"y"`
	Value sql.NullFloat64 `db:"value"`
}

// LoadPoints reads the point dataset at path with the attribute and every field the
// where clause references.
func LoadPoints(path, attribute, where string) (*geojson.FeatureCollection, error) {
	fields := append([]string{attribute}, WhereFields(where)...)
	return Load(path, fields...)
}

// Select returns every point of fc that satisfies the SQL where clause and has a
// numeric value for attribute. An empty where clause selects all points.
func Select(ctx context.Context, fc *geojson.FeatureCollection, attribute, where string) ([]Sample, error) {
	columns := propertyColumns(fc)

	column, found := columns[strings.ToLower(attribute)]
	if !found {
		return nil, fmt.Errorf("attribute %q not found in point dataset", attribute)
	}

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := loadTable(ctx, db, fc, columns); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT "__x" AS x, "__y" AS y, %[1]s AS value FROM points WHERE typeof(%[1]s) IN ('integer', 'real')`, quote(column))
	if strings.TrimSpace(where) != "" {
		query += " AND (" + where + ")"
	}

	var rows []sampleRow
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select %q: %w", where, err)
	}

	samples := make([]Sample, 0, len(rows))
	for _, row := range rows {
		if !row.Value.Valid {
			continue
		}
		samples = append(samples, Sample{Point: orb.Point{row.X, row.Y}, Value: row.Value.Float64})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: attribute %s, filter %q", ErrNoPoints, attribute, where)
	}
	return samples, nil
}

// propertyColumns maps lower case property names to their first spelling, sqlite
// identifiers being case insensitive.
func propertyColumns(fc *geojson.FeatureCollection) map[string]string {
	columns := map[string]string{}
	for _, feature := range fc.Features {
		for name := range feature.Properties {
			lower := strings.ToLower(name)
			if strings.HasPrefix(lower, "__") {
				continue
			}
			if _, found := columns[lower]; !found {
				columns[lower] = name
			}
		}
	}
	return columns
}

func loadTable(ctx context.Context, db *sqlx.DB, fc *geojson.FeatureCollection, columns map[string]string) error {
	names := make([]string, 0, len(columns))
	for _, name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := []string{`"__fid" INTEGER PRIMARY KEY`, `"__x" REAL`, `"__y" REAL`}
	placeholders := []string{"?", "?", "?"}
	for _, name := range names {
		defs = append(defs, quote(name))
		placeholders = append(placeholders, "?")
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE points (%s)", strings.Join(defs, ", "))); err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf("INSERT INTO points VALUES (%s)", strings.Join(placeholders, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(placeholders))
	for fid, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		points := pointsOf(feature.Geometry)
		if points == nil {
			return fmt.Errorf("feature %d is a %s, expected points", fid, feature.Geometry.GeoJSONType())
		}

		for _, p := range points {
			args[0], args[1], args[2] = nil, p[0], p[1]
			for i, name := range names {
				args[i+3] = sqlValue(feature.Properties[name])
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func pointsOf(g orb.Geometry) []orb.Point {
	switch t := g.(type) {
	case orb.Point:
		return []orb.Point{t}
	case orb.MultiPoint:
		return t
	}
	return nil
}

func sqlValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil, float64, string, int64:
		return t
	case int:
		return int64(t)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	default:
		return fmt.Sprint(t)
	}
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

var sqlKeywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "IS": true, "NULL": true, "IN": true,
	"LIKE": true, "GLOB": true, "REGEXP": true, "MATCH": true, "BETWEEN": true,
	"TRUE": true, "FALSE": true, "ESCAPE": true, "CASE": true, "WHEN": true,
	"THEN": true, "ELSE": true, "END": true, "CAST": true, "AS": true,
	"ISNULL": true, "NOTNULL": true, "DISTINCT": true, "FROM": true, "EXISTS": true,
	"COLLATE": true, "NOCASE": true, "RTRIM": true, "BINARY": true,
	"REAL": true, "INTEGER": true, "TEXT": true, "NUMERIC": true, "BLOB": true,
	"SELECT": true, "WHERE": true, "ASC": true, "DESC": true,
	"CURRENT_DATE": true, "CURRENT_TIME": true, "CURRENT_TIMESTAMP": true,
}

// WhereFields returns the attribute names a SQL where clause refers to. Function
// names, keywords and string literals are skipped.
func WhereFields(where string) []string {
	var fields []string
	seen := map[string]bool{}
	add := func(name string) {
		if !seen[strings.ToLower(name)] {
			seen[strings.ToLower(name)] = true
			fields = append(fields, name)
		}
	}

	runes := []rune(where)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\'':
			// string literal, '' escapes a quote
			i++
			for i < len(runes) {
				if runes[i] == '\'' {
					if i+1 < len(runes) && runes[i+1] == '\'' {
						i += 2
						continue
					}
					break
				}
				i++
			}
			i++
		case r == '"':
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			add(string(runes[i+1 : end]))
			i = end + 1
		case unicode.IsLetter(r) || r == '_':
			end := i
			for end < len(runes) && (unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end]) || runes[end] == '_') {
				end++
			}
			word := string(runes[i:end])
			next := end
			for next < len(runes) && unicode.IsSpace(runes[next]) {
				next++
			}
			isCall := next < len(runes) && runes[next] == '('
			if !isCall && !sqlKeywords[strings.ToUpper(word)] {
				add(word)
			}
			i = end
		case unicode.IsDigit(r) || r == '.':
			// numbers, including exponents like 1e-3
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.' || runes[i] == 'e' || runes[i] == 'E') {
				i++
			}
		default:
			i++
		}
	}

	return fields
}
