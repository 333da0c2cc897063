package raster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nybem/nybem-tools/internal/utils"
)

var (
	// ErrUnknownFormat is returned when no driver handles a file extension
	ErrUnknownFormat = errors.New("unknown raster format")
	// ErrExists is returned when writing over an existing file while overwrite is disabled
	ErrExists = errors.New("raster already exists")
)

// WriteOptions are the per call settings a driver needs to persist a raster
type WriteOptions struct {
	Compression string
}

// Driver reads and writes rasters of one file format
type Driver interface {
	Name() string
	// Extensions lists the lower case file suffixes the driver handles, including the dot.
	Extensions() []string
	Read(path string) (*Raster, error)
	Write(path string, r *Raster, opts WriteOptions) error
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]Driver{}
)

// Register makes a driver available by name and by its extensions
func Register(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	drivers[strings.ToLower(d.Name())] = d
}

// Lookup returns the driver registered under name
func Lookup(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()

	d, found := drivers[strings.ToLower(name)]
	if !found {
		return nil, fmt.Errorf("%w: no driver named %s", ErrUnknownFormat, name)
	}
	return d, nil
}

// Drivers returns the names of all registered drivers
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for _, d := range drivers {
		names = append(names, d.Name())
	}
	sort.Strings(names)
	return names
}

// DriverFor picks the driver by the file name's extension. Longer extensions win so
// ".asc.gz" is preferred over ".gz".
func DriverFor(path string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()

	name := strings.ToLower(filepath.Base(path))
	var best Driver
	bestLen := 0
	for _, d := range drivers {
		for _, ext := range d.Extensions() {
			if strings.HasSuffix(name, ext) && len(ext) > bestLen {
				best = d
				bestLen = len(ext)
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return best, nil
}

// Read reads the raster at path with the matching driver
func Read(path string) (*Raster, error) {
	d, err := DriverFor(path)
	if err != nil {
		return nil, err
	}
	r, err := d.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return r, nil
}

// Write persists r at path. The raster is written to a hidden partial file next to
// path first and then renamed, so a failed write never leaves a half written raster
// under the final name.
func Write(path string, r *Raster, opts WriteOptions, overwrite bool) error {
	if err := r.Validate(); err != nil {
		return err
	}

	d, err := DriverFor(path)
	if err != nil {
		return err
	}

	if !overwrite && utils.IsFile(path) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}

	partial := utils.PartialPath(path)
	_ = os.Remove(partial)

	if err := d.Write(partial, r, opts); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(partial, path); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Copy duplicates the raster file at src to dst byte for byte
func Copy(src, dst string, overwrite bool) error {
	if !overwrite && utils.IsFile(dst) {
		return fmt.Errorf("%w: %s", ErrExists, dst)
	}
	return utils.CopyFile(src, dst)
}
