package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nybem/nybem-tools/internal/scenario"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	require.Equal(t, scenario.DefaultZones, c.Zones)
	require.Equal(t, scenario.DefaultComponents, c.Components)
	require.Len(t, c.Statics, 9)

	outputs := map[string]string{}
	for _, s := range c.Steps {
		outputs[s.Output] = s.Kind()
	}
	require.Equal(t, "interpolate", outputs["est_int/vel_90"])
	require.Equal(t, "copy", outputs["est_int/fwop_vel_90"])
	require.Equal(t, "derive", outputs["est_int/edge_erosion"])
	require.Equal(t, "derive", outputs["mar_deep/vel_change"])
	require.Equal(t, "copy", outputs["est_int/vel_change"])
	require.Equal(t, "derive", outputs["mar_int/exp_dur"])
	require.Equal(t, "sal_10", c.Steps[0].Output)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	d, err := Default()
	require.NoError(t, err)
	require.Equal(t, d, c)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
zones      = concat(["custom"], default_zones)
components = [lower("PREDICTORS")]

step "custom/vel" {
  title = format("Velocity %d", 90)
  interpolate {
    points   = "velocity"
    variable = "vel_90"
    where    = "layer = 1"
  }
}
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "custom", c.Zones[0])
	require.Len(t, c.Zones, len(scenario.DefaultZones)+1)
	require.Equal(t, []string{"predictors"}, c.Components)
	require.Equal(t, "Velocity 90", c.Steps[0].Label())
	require.Equal(t, "layer = 1", c.Steps[0].Interpolate.Where)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	cases := map[string]string{
		"read before write": `
zones = ["z"]
components = []
step "z/b" {
  copy { from = "z/a" }
}
step "z/a" {
  interpolate {
    points   = "velocity"
    variable = "v"
  }
}`,
		"unknown zone": `
zones = ["z"]
components = []
step "y/a" {
  copy { from = "fwop:y/a" }
}`,
		"two actions": `
zones = ["z"]
components = []
step "z/a" {
  copy { from = "fwop:z/a" }
  interpolate {
    points   = "velocity"
    variable = "v"
  }
}`,
		"no action": `
zones = ["z"]
components = []
step "z/a" {
  title = "nothing"
}`,
		"unknown points": `
zones = ["z"]
components = []
step "z/a" {
  interpolate {
    points   = "tide"
    variable = "v"
  }
}`,
		"unknown formula": `
zones = ["z"]
components = []
step "z/a" {
  derive {
    formula = "salinity"
    inputs  = {}
  }
}`,
		"missing formula input": `
zones = ["z"]
components = []
step "z/a" {
  derive {
    formula = "depth"
    inputs  = { wse_mtl = "fwop:mtl" }
  }
}`,
		"writes baseline": `
zones = ["z"]
components = []
step "fwop:z/a" {
  copy { from = "z/b" }
}`,
		"bad static pattern": `
zones = ["z"]
components = []
static "z" {
  patterns = ["["]
}`,
		"not hcl": `zones = [`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), "test.hcl")
			require.Error(t, err)
		})
	}
}

func TestValidate_Order(t *testing.T) {
	_, err := Parse([]byte(`
zones = ["z"]
components = []
step "z/b" {
  copy { from = "z/a" }
}
step "z/a" {
  copy { from = "fwop:z/a" }
}`), "order.hcl")
	require.ErrorIs(t, err, ErrOrder)

	// static copies count as produced
	_, err = Parse([]byte(`
zones = ["z"]
components = []
static "z" {
  patterns = ["bed*"]
}
step "z/depth" {
  derive {
    formula = "depth"
    inputs  = {
      wse_mtl       = "fwop:mtl"
      bed_elevation = "z/bed_elevation"
    }
  }
}`), "static.hcl")
	require.NoError(t, err)
}

func TestValidate_StaticPatternsMatchFileNames(t *testing.T) {
	cases := map[string]string{
		"any extension":    "est_sub_soft.*",
		"driver extension": "est_sub_soft.asc",
		"bare prefix":      "est_sub*",
	}

	for name, pattern := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(`
zones = ["z1"]
components = []
static "z1" {
  patterns = ["`+pattern+`"]
}
step "z1/copied" {
  copy { from = "z1/est_sub_soft" }
}`), "static.hcl")
			require.NoError(t, err)
		})
	}

	_, err := Parse([]byte(`
zones = ["z1"]
components = []
static "z1" {
  patterns = ["est_sub_soft_clam.*"]
}
step "z1/copied" {
  copy { from = "z1/est_sub_soft" }
}`), "static.hcl")
	require.ErrorIs(t, err, ErrOrder)
}

func TestParseRef(t *testing.T) {
	cases := map[string]Ref{
		"mtl":                 {Scenario: Alt, Zone: scenario.Root, Name: "mtl"},
		"est_int/vel_90":      {Scenario: Alt, Zone: "est_int", Name: "vel_90"},
		"fwop:est_int/vel_90": {Scenario: Fwop, Zone: "est_int", Name: "vel_90"},
		"alt:mask":            {Scenario: Alt, Zone: scenario.Root, Name: "mask"},
	}
	for raw, expected := range cases {
		ref, err := ParseRef(raw)
		require.NoError(t, err, raw)
		require.Equal(t, expected, ref)
	}

	require.Equal(t, "fwop:est_int/vel_90", cases["fwop:est_int/vel_90"].String())
	require.Equal(t, "alt:mtl", cases["mtl"].String())

	for _, raw := range []string{"", "base:mtl", "a/b/c", "est_int/", "/mtl", "fwop:"} {
		_, err := ParseRef(raw)
		require.Error(t, err, raw)
	}
}
