// Package asciigrid reads and writes Esri ASCII grids, optionally gzip compressed.
package asciigrid

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nybem/nybem-tools/internal/raster"
)

// Name is the driver name used in NYBEM_RASTER_FORMAT
const Name = "AAIGrid"

func init() {
	raster.Register(Driver{})
}

// Driver is the raster.Driver for Esri ASCII grids
type Driver struct{}

// Name implements raster.Driver
func (Driver) Name() string { return Name }

// Extensions implements raster.Driver
func (Driver) Extensions() []string { return []string{".asc", ".asc.gz"} }

// Read implements raster.Driver. Files ending in .gz are decompressed on the fly.
func (Driver) Read(path string) (*raster.Raster, error) {
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

	return Parse(reader)
}

// Write implements raster.Driver. The compression option is ignored, the
// extension alone decides whether the grid is gzipped.
func (Driver) Write(path string, r *raster.Raster, _ raster.WriteOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.Writer = file
	var gz *gzip.Writer
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz = gzip.NewWriter(file)
		w = gz
	}

	if err := Encode(w, r); err != nil {
		file.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			file.Close()
			return err
		}
	}
	return file.Close()
}

// Encode writes r as an Esri ASCII grid. NaN cells are written as the nodata value.
func Encode(w io.Writer, r *raster.Raster) error {
	bw := bufio.NewWriter(w)
	g := r.Geometry

	fmt.Fprintf(bw, "ncols %d\n", g.Cols)
	fmt.Fprintf(bw, "nrows %d\n", g.Rows)
	fmt.Fprintf(bw, "xllcorner %s\n", formatFloat(g.XCorner))
	fmt.Fprintf(bw, "yllcorner %s\n", formatFloat(g.YCorner))
	fmt.Fprintf(bw, "cellsize %s\n", formatFloat(g.CellSize))
	fmt.Fprintf(bw, "NODATA_value %s\n", formatFloat(r.NoData))

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			v := r.Z(col, row)
			if r.IsNoData(v) {
				v = r.NoData
			}
			bw.WriteString(formatFloat(v))
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
