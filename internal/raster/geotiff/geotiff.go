// Package geotiff persists rasters as compressed single band GeoTIFFs through GDAL.
package geotiff

import (
	"fmt"
	"strings"

	"github.com/airbusgeo/godal"

	"github.com/nybem/nybem-tools/internal/raster"
)

// Name is the driver name used in NYBEM_RASTER_FORMAT
const Name = "GTiff"

func init() {
	godal.RegisterAll()
	raster.Register(Driver{})
}

// Driver is the raster.Driver for GeoTIFF files
type Driver struct{}

// Name implements raster.Driver
func (Driver) Name() string { return Name }

// Extensions implements raster.Driver
func (Driver) Extensions() []string { return []string{".tif", ".tiff"} }

// Read implements raster.Driver. Only the first band is read.
func (Driver) Read(path string) (*raster.Raster, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	structure := ds.Structure()
	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("%s has no raster band", path)
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("%s has no geotransform: %w", path, err)
	}
	geometry, err := raster.FromGeoTransform(gt, structure.SizeX, structure.SizeY, ds.Projection())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	noData := raster.DefaultNoData
	if nd, ok := bands[0].NoData(); ok {
		noData = nd
	}

	r := raster.New(geometry, noData)
	if err := bands[0].Read(0, 0, r.Data, geometry.Cols, geometry.Rows); err != nil {
		return nil, err
	}

	return r, nil
}

// Write implements raster.Driver. Output is tiled Float64 with the requested compression.
func (Driver) Write(path string, r *raster.Raster, opts raster.WriteOptions) error {
	g := r.Geometry

	creation := []string{"TILED=YES", "BIGTIFF=IF_SAFER"}
	if c := strings.ToUpper(opts.Compression); c != "" && c != "NONE" {
		creation = append(creation, "COMPRESS="+c)
	}

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, g.Cols, g.Rows, godal.CreationOption(creation...))
	if err != nil {
		return err
	}

	if err := write(ds, r); err != nil {
		ds.Close()
		return err
	}
	return ds.Close()
}

func write(ds *godal.Dataset, r *raster.Raster) error {
	g := r.Geometry

	if err := ds.SetGeoTransform(g.GeoTransform()); err != nil {
		return err
	}
	if g.Projection != "" {
		if err := ds.SetProjection(g.Projection); err != nil {
			return err
		}
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(r.NoData); err != nil {
		return err
	}

	// NaN is not a valid marker for most consumers, store the declared nodata value instead
	data := make([]float64, len(r.Data))
	for i, v := range r.Data {
		if r.IsNoData(v) {
			v = r.NoData
		}
		data[i] = v
	}

	return band.Write(0, 0, data, g.Cols, g.Rows)
}
