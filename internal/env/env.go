// Package env holds the raster engine settings every operation receives
// explicitly instead of reading them from process wide state.
package env

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/nybem/nybem-tools/internal/raster"
)

// Env is the raster engine configuration of one call
type Env struct {
	// Format is the raster driver used for written rasters, GTiff or AAIGrid
	Format      string `env:"NYBEM_RASTER_FORMAT" envDefault:"GTiff"`
	Compression string `env:"NYBEM_COMPRESSION" envDefault:"LZW"`
	Overwrite   bool   `env:"NYBEM_OVERWRITE" envDefault:"true"`
	// Workers bounds row parallelism, 0 means one per CPU
	Workers int `env:"NYBEM_WORKERS" envDefault:"0"`

	SplineNeighbors int     `env:"NYBEM_SPLINE_NEIGHBORS" envDefault:"12"`
	SplineWeight    float64 `env:"NYBEM_SPLINE_WEIGHT" envDefault:"0.1"`

	LogLevel string `env:"NYBEM_LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from environment variables
func Load() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	return e, e.Validate()
}

// Default returns the configuration with all defaults applied and no environment lookups
func Default() Env {
	e, _ := env.ParseAsWithOptions[Env](env.Options{Environment: map[string]string{}})
	return e
}

// Validate checks the settings are usable
func (e Env) Validate() error {
	if _, err := raster.Lookup(e.Format); err != nil {
		return fmt.Errorf("NYBEM_RASTER_FORMAT: %w (available: %s)", err, strings.Join(raster.Drivers(), ", "))
	}
	if e.Workers < 0 {
		return fmt.Errorf("NYBEM_WORKERS must not be negative")
	}
	if e.SplineNeighbors < 1 {
		return fmt.Errorf("NYBEM_SPLINE_NEIGHBORS must be at least 1")
	}
	if e.SplineWeight < 0 {
		return fmt.Errorf("NYBEM_SPLINE_WEIGHT must not be negative")
	}
	return nil
}

// Parallelism returns the effective worker count
func (e Env) Parallelism() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.NumCPU()
}

// Extension returns the file suffix rasters get in the configured format
func (e Env) Extension() string {
	d, err := raster.Lookup(e.Format)
	if err != nil {
		return ""
	}
	return d.Extensions()[0]
}

// RasterPath returns the path of the raster called name inside folder
func (e Env) RasterPath(folder, name string) string {
	return filepath.Join(folder, name+e.Extension())
}

// WriteOptions returns the driver options for this configuration
func (e Env) WriteOptions() raster.WriteOptions {
	return raster.WriteOptions{Compression: e.Compression}
}

// Write persists r at path with this configuration's compression and overwrite policy
func (e Env) Write(path string, r *raster.Raster) error {
	return raster.Write(path, r, e.WriteOptions(), e.Overwrite)
}

type key struct{}

// WithEnv returns a context carrying e for the command line layer
func WithEnv(ctx context.Context, e Env) context.Context {
	return context.WithValue(ctx, key{}, e)
}

// FromContext returns the Env stored by WithEnv, or the defaults
func FromContext(ctx context.Context) Env {
	if e, ok := ctx.Value(key{}).(Env); ok {
		return e
	}
	return Default()
}
