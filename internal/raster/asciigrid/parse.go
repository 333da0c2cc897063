package asciigrid

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nybem/nybem-tools/internal/raster"
)

type header struct {
	ncols, nrows     int
	xcenter, ycenter *float64
	xcorner, ycorner *float64
	cellSize         float64
	noData           *float64
}

// Parse reads an Esri ASCII grid
func Parse(reader io.Reader) (*raster.Raster, error) {
	h := header{}
	remainingHeaders := []string{"NCOLS", "NROWS", "XLLCENTER", "XLLCORNER", "YLLCENTER", "YLLCORNER", "CELLSIZE", "NODATA_VALUE"}
	stillIsHeader := true
	rowIndex := 0
	var out *raster.Raster

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		// first field as upper case
		keyword := strings.ToUpper(fields[0])

		if stillIsHeader && contains(remainingHeaders, keyword) {
			remainingHeaders = remove(remainingHeaders, keyword)

			// there can either be corner or center not both
			if keyword == "XLLCENTER" || keyword == "YLLCENTER" {
				remainingHeaders = remove(remainingHeaders, "XLLCORNER")
				remainingHeaders = remove(remainingHeaders, "YLLCORNER")
			}
			if keyword == "XLLCORNER" || keyword == "YLLCORNER" {
				remainingHeaders = remove(remainingHeaders, "XLLCENTER")
				remainingHeaders = remove(remainingHeaders, "YLLCENTER")
			}

			if err := parseHeaderLine(fields, &h); err != nil {
				return nil, err
			}
			continue
		}

		if stillIsHeader { // this is the first data line
			// NODATA_VALUE is optional
			remainingHeaders = remove(remainingHeaders, "NODATA_VALUE")

			if len(remainingHeaders) > 0 {
				return nil, fmt.Errorf("grid doesn't include all mandatory headers, missing %s", strings.Join(remainingHeaders, ", "))
			}

			stillIsHeader = false

			geometry, noData := h.geometry()
			if err := geometry.Validate(); err != nil {
				return nil, err
			}
			out = raster.New(geometry, noData)
		}

		if rowIndex >= out.Geometry.Rows {
			break
		}

		if err := parseDataLine(fields, out.Data[rowIndex*h.ncols:(rowIndex+1)*h.ncols]); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIndex, err)
		}
		rowIndex++
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("grid has no data rows")
	}
	if rowIndex < out.Geometry.Rows {
		return nil, fmt.Errorf("grid has %d data rows, NROWS is %d", rowIndex, out.Geometry.Rows)
	}

	return out, nil
}

func (h header) geometry() (raster.Geometry, float64) {
	g := raster.Geometry{
		Cols:     h.ncols,
		Rows:     h.nrows,
		CellSize: h.cellSize,
	}

	if h.xcorner != nil {
		g.XCorner = *h.xcorner
	} else if h.xcenter != nil {
		g.XCorner = *h.xcenter - h.cellSize/2
	}
	if h.ycorner != nil {
		g.YCorner = *h.ycorner
	} else if h.ycenter != nil {
		g.YCorner = *h.ycenter - h.cellSize/2
	}

	noData := raster.DefaultNoData
	if h.noData != nil {
		noData = *h.noData
	}
	return g, noData
}

func parseHeaderLine(fields []string, h *header) error {
	if len(fields) != 2 {
		return fmt.Errorf("header line must have exactly two fields")
	}

	switch strings.ToUpper(fields[0]) {
	case "NCOLS":
		i, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return err
		}
		h.ncols = int(i)
	case "NROWS":
		i, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return err
		}
		h.nrows = int(i)
	case "XLLCENTER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.xcenter = &f
	case "XLLCORNER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.xcorner = &f
	case "YLLCENTER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.ycenter = &f
	case "YLLCORNER":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.ycorner = &f
	case "CELLSIZE":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		if f <= 0.0 {
			return fmt.Errorf("CELLSIZE must be greater than 0")
		}
		h.cellSize = f
	case "NODATA_VALUE":
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return err
		}
		h.noData = &f
	default:
		return fmt.Errorf("unknown header keyword: %s", fields[0])
	}

	return nil
}

func parseDataLine(fields []string, row []float64) error {
	if len(fields) < len(row) {
		return fmt.Errorf("data row is too short")
	}

	for i := range row {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return err
		}
		row[i] = f
	}

	return nil
}

// contains checks whether an array contains a string
func contains(array []string, element string) bool {
	for _, curElement := range array {
		if curElement == element {
			return true
		}
	}
	return false
}

// remove removes a string from an array
func remove(arr []string, element string) []string {
	var remaining []string

	for i := 0; i < len(arr); i++ {
		if element != arr[i] {
			remaining = append(remaining, arr[i])
		}
	}

	return remaining
}
