package raster

import "math"

// Stats summarizes the valid cells of a raster
type Stats struct {
	Valid int
	Min   float64
	Max   float64
	Mean  float64
}

// Statistics computes min, max and mean over all cells that aren't nodata.
// Min, Max and Mean are NaN when there is no valid cell.
func (r *Raster) Statistics() Stats {
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0

	for _, v := range r.Data {
		if r.IsNoData(v) {
			continue
		}
		s.Valid++
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}

	if s.Valid == 0 {
		return Stats{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}
	}
	s.Mean = sum / float64(s.Valid)
	return s
}
