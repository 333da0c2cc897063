// Package scenario creates the NYBEM scenario folder tree and seeds it with files
// from another scenario.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Root is the zone name used for files that live directly in the scenario folder
const Root = "."

// Predictors is the model component holding predictor rasters
const Predictors = "predictors"

// DefaultZones are the NYBEM ecological model zones
var DefaultZones = []string{
	"est_int", "est_sub", "est_sub_hard",
	"est_sub_soft_clam", "est_sub_soft_sav",
	"fresh_tid", "mar_deep", "mar_int", "mar_sub",
}

// DefaultComponents are the folders every zone has
var DefaultComponents = []string{"hsi", Predictors, "siv"}

// ZoneDir returns the folder a zone's predictors live in. The root zone maps to the
// scenario folder itself.
func ZoneDir(scenario, zone string) string {
	if zone == Root || zone == "" {
		return scenario
	}
	return filepath.Join(scenario, zone, Predictors)
}

// CreateTree creates the folder of every zone and component below root. Existing
// folders are left alone, so calling it again is harmless.
func CreateTree(root string, zones, components []string) error {
	for _, zone := range zones {
		if err := os.MkdirAll(filepath.Join(root, zone), os.ModePerm); err != nil {
			return err
		}
		for _, component := range components {
			if err := os.MkdirAll(filepath.Join(root, zone, component), os.ModePerm); err != nil {
				return err
			}
		}
	}
	return nil
}

// Tree lists every folder below root relative to it, sorted
func Tree(root string) ([]string, error) {
	var dirs []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			dirs = append(dirs, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(dirs)
	return dirs, nil
}
