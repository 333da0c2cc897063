package pipeline

import (
	"fmt"
	"strings"

	"github.com/nybem/nybem-tools/internal/env"
	"github.com/nybem/nybem-tools/internal/scenario"
)

// Scenario prefixes used in references
const (
	Alt  = "alt"
	Fwop = "fwop"
)

// Ref names a raster inside a scenario
type Ref struct {
	Scenario string
	Zone     string
	Name     string
}

// ParseRef parses "[fwop:|alt:]<zone>/<name>" or "[fwop:|alt:]<name>" for the scenario root
func ParseRef(s string) (Ref, error) {
	ref := Ref{Scenario: Alt, Zone: scenario.Root}

	rest := s
	if prefix, after, found := strings.Cut(s, ":"); found {
		if prefix != Alt && prefix != Fwop {
			return ref, fmt.Errorf("reference %q: unknown scenario %q", s, prefix)
		}
		ref.Scenario = prefix
		rest = after
	}

	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 1:
		ref.Name = parts[0]
	case 2:
		ref.Zone, ref.Name = parts[0], parts[1]
	default:
		return ref, fmt.Errorf("reference %q: expected <zone>/<name>", s)
	}

	if ref.Name == "" || ref.Zone == "" {
		return ref, fmt.Errorf("reference %q is incomplete", s)
	}
	return ref, nil
}

func (r Ref) String() string {
	if r.Zone == scenario.Root {
		return r.Scenario + ":" + r.Name
	}
	return r.Scenario + ":" + r.Zone + "/" + r.Name
}

// Path returns the file the reference points to
func (r Ref) Path(e env.Env, fwop, alt string) string {
	root := alt
	if r.Scenario == Fwop {
		root = fwop
	}
	return e.RasterPath(scenario.ZoneDir(root, r.Zone), r.Name)
}
