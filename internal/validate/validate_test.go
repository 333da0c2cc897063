package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarioDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "est_int", "predictors"), 0o755))

	require.NoError(t, ScenarioDirectory(root, []string{"est_int"}))

	err := ScenarioDirectory(root, []string{"est_int", "mar_deep"})
	require.ErrorContains(t, err, filepath.Join("mar_deep", "predictors")+" is missing")

	require.Error(t, ScenarioDirectory(filepath.Join(root, "nope"), nil))
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mask.tif")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	require.NoError(t, Files(file))
	require.Error(t, Files(file, dir))
	require.NoError(t, OptionalFiles("", file))
	require.Error(t, OptionalFiles("", filepath.Join(dir, "barriers.shp")))
}
