// Package pipeline populates an alternative scenario's predictors from a
// declarative table of static copies and ordered interpolation, copy and
// derivation steps.
package pipeline

import (
	_ "embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/nybem/nybem-tools/internal/algebra"
	"github.com/nybem/nybem-tools/internal/raster"
	"github.com/nybem/nybem-tools/internal/scenario"
)

//go:embed default.hcl
var defaultHCL []byte

// ErrOrder is returned when a step reads a raster no earlier step provides
var ErrOrder = errors.New("step reads a raster before it is produced")

// Point dataset names an interpolate block may use
const (
	Velocity = "velocity"
	Salinity = "salinity"
	WSE      = "wse"
)

// Config is the decoded pipeline table
type Config struct {
	Zones      []string      `hcl:"zones"`
	Components []string      `hcl:"components"`
	Statics    []StaticBlock `hcl:"static,block"`
	Steps      []Step        `hcl:"step,block"`
}

// StaticBlock lists files copied unchanged from the baseline for one zone
type StaticBlock struct {
	Zone     string   `hcl:"zone,label"`
	Patterns []string `hcl:"patterns"`
}

// Step produces the raster named by its label. Exactly one action is set.
type Step struct {
	Output      string           `hcl:"output,label"`
	Title       string           `hcl:"title,optional"`
	Interpolate *InterpolateStep `hcl:"interpolate,block"`
	Copy        *CopyStep        `hcl:"copy,block"`
	Derive      *DeriveStep      `hcl:"derive,block"`
}

// InterpolateStep interpolates a point variable to a raster
type InterpolateStep struct {
	Points   string `hcl:"points"`
	Variable string `hcl:"variable"`
	Where    string `hcl:"where,optional"`
}

// CopyStep duplicates an existing raster
type CopyStep struct {
	From string `hcl:"from"`
}

// DeriveStep evaluates a formula of the algebra package
type DeriveStep struct {
	Formula string            `hcl:"formula"`
	Inputs  map[string]string `hcl:"inputs"`
}

// Kind names the step's action
func (s Step) Kind() string {
	switch {
	case s.Interpolate != nil:
		return "interpolate"
	case s.Copy != nil:
		return "copy"
	case s.Derive != nil:
		return "derive"
	}
	return ""
}

// Label returns the title, or the output when there is no title
func (s Step) Label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Output
}

// Default returns the built in NYBEM pipeline
func Default() (*Config, error) {
	return Parse(defaultHCL, "default.hcl")
}

// Load reads the pipeline table at path, or the built in one if path is empty
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", path, diags)
	}
	return decode(file)
}

// Parse decodes a pipeline table from src
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	return decode(file)
}

// evalContext exposes the default layout and a few string helpers to tables
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_zones":      stringList(scenario.DefaultZones),
			"default_components": stringList(scenario.DefaultComponents),
		},
		Functions: map[string]function.Function{
			"concat": stdlib.ConcatFunc,
			"format": stdlib.FormatFunc,
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
		},
	}
}

func stringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}
	return cty.ListVal(vals)
}

func decode(file *hcl.File) (*Config, error) {
	var c Config
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &c); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode pipeline: %w", diags)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// StaticRules converts the static blocks for the scenario package
func (c *Config) StaticRules() []scenario.StaticRule {
	rules := make([]scenario.StaticRule, len(c.Statics))
	for i, s := range c.Statics {
		rules[i] = scenario.StaticRule{Zone: s.Zone, Patterns: s.Patterns}
	}
	return rules
}

// Validate checks every step is well formed and only reads alternative rasters
// produced by an earlier step or a static copy.
func (c *Config) Validate() error {
	zones := map[string]bool{scenario.Root: true}
	for _, z := range c.Zones {
		zones[z] = true
	}

	for _, s := range c.Statics {
		if !zones[s.Zone] {
			return fmt.Errorf("static %q: unknown zone", s.Zone)
		}
		for _, pattern := range s.Patterns {
			if _, err := path.Match(pattern, ""); err != nil {
				return fmt.Errorf("static %q: pattern %q: %w", s.Zone, pattern, err)
			}
		}
	}

	produced := map[Ref]bool{}
	for i, s := range c.Steps {
		out, err := ParseRef(s.Output)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if out.Scenario != Alt {
			return fmt.Errorf("step %q: steps can only write the alternative scenario", s.Output)
		}
		if !zones[out.Zone] {
			return fmt.Errorf("step %q: unknown zone %q", s.Output, out.Zone)
		}

		reads, err := c.stepInputs(s)
		if err != nil {
			return fmt.Errorf("step %q: %w", s.Output, err)
		}
		for _, ref := range reads {
			if !zones[ref.Zone] {
				return fmt.Errorf("step %q: unknown zone %q", s.Output, ref.Zone)
			}
			if ref.Scenario == Alt && !produced[ref] && !c.isStatic(ref) {
				return fmt.Errorf("%w: step %q reads %s", ErrOrder, s.Output, ref)
			}
		}

		produced[out] = true
	}

	return nil
}

func (c *Config) stepInputs(s Step) ([]Ref, error) {
	actions := 0
	var reads []Ref

	if s.Interpolate != nil {
		actions++
		switch s.Interpolate.Points {
		case Velocity, Salinity, WSE:
		default:
			return nil, fmt.Errorf("unknown points %q, expected %s, %s or %s", s.Interpolate.Points, Velocity, Salinity, WSE)
		}
		if s.Interpolate.Variable == "" {
			return nil, fmt.Errorf("interpolate needs a variable")
		}
	}

	if s.Copy != nil {
		actions++
		ref, err := ParseRef(s.Copy.From)
		if err != nil {
			return nil, err
		}
		reads = append(reads, ref)
	}

	if s.Derive != nil {
		actions++
		formula, err := algebra.Lookup(s.Derive.Formula)
		if err != nil {
			return nil, err
		}
		for _, name := range formula.Inputs {
			raw, found := s.Derive.Inputs[name]
			if !found {
				return nil, fmt.Errorf("%s needs input %s", formula.Name, name)
			}
			ref, err := ParseRef(raw)
			if err != nil {
				return nil, err
			}
			reads = append(reads, ref)
		}
		if len(s.Derive.Inputs) != len(formula.Inputs) {
			return nil, fmt.Errorf("%s takes inputs %s", formula.Name, strings.Join(formula.Inputs, ", "))
		}
	}

	if actions != 1 {
		return nil, fmt.Errorf("step needs exactly one of interpolate, copy or derive, has %d", actions)
	}
	return reads, nil
}

// isStatic reports whether a static rule copies ref into the alternative. Patterns
// match file names, so the name is tried with every raster extension.
func (c *Config) isStatic(ref Ref) bool {
	names := fileNames(ref.Name)

	for _, s := range c.Statics {
		if s.Zone != ref.Zone {
			continue
		}
		for _, pattern := range s.Patterns {
			for _, name := range names {
				if ok, _ := path.Match(pattern, name); ok {
					return true
				}
			}
		}
	}
	return false
}

// fileNames lists the file names a raster called name can have on disk
func fileNames(name string) []string {
	// "name." stands in for any extension, it matches "name.*"
	names := []string{name, name + "."}
	for _, driver := range raster.Drivers() {
		d, err := raster.Lookup(driver)
		if err != nil {
			continue
		}
		for _, ext := range d.Extensions() {
			names = append(names, name+ext)
		}
	}
	return names
}
