package validate

import (
	"fmt"
	"path/filepath"

	"github.com/nybem/nybem-tools/internal/scenario"
	"github.com/nybem/nybem-tools/internal/utils"
)

// ScenarioDirectory validates that given directory is a scenario with a predictors
// folder for every zone
func ScenarioDirectory(scenarioPath string, zones []string) error {
	if !utils.IsDirectory(scenarioPath) {
		return fmt.Errorf("%s does not exist or is no directory", scenarioPath)
	}

	for _, zone := range zones {
		dir := filepath.Join(scenarioPath, zone, scenario.Predictors)
		if !utils.IsDirectory(dir) {
			return fmt.Errorf("%s is missing", dir)
		}
	}

	return nil
}

// Files validates that all given paths exist and are files
func Files(paths ...string) error {
	for _, path := range paths {
		if !utils.IsFile(path) {
			return fmt.Errorf("%s is missing", path)
		}
	}
	return nil
}

// OptionalFiles is like Files but skips empty paths
func OptionalFiles(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := Files(path); err != nil {
			return err
		}
	}
	return nil
}
