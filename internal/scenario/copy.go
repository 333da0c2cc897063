package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nybem/nybem-tools/internal/ctxlog"
	"github.com/nybem/nybem-tools/internal/utils"
)

// StaticRule lists the file name patterns copied unchanged for one zone
type StaticRule struct {
	Zone     string
	Patterns []string
}

// CopyPattern copies every regular file in from whose name matches the glob pattern
// into to and returns the copied names. to is created if needed.
func CopyPattern(from, to, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	matches, err := filepath.Glob(filepath.Join(from, pattern))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(to, os.ModePerm); err != nil {
		return nil, err
	}

	var copied []string
	for _, match := range matches {
		if !utils.IsFile(match) {
			continue
		}
		name := filepath.Base(match)
		if err := utils.CopyFile(match, filepath.Join(to, name)); err != nil {
			return copied, fmt.Errorf("copy %s: %w", match, err)
		}
		copied = append(copied, name)
	}

	sort.Strings(copied)
	return copied, nil
}

// CopyStatic copies the files that don't vary between scenarios from the baseline
// scenario into the alternative, zone by zone.
func CopyStatic(ctx context.Context, fwop, alt string, rules []StaticRule) (int, error) {
	log := ctxlog.FromContext(ctx)
	total := 0

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		from := ZoneDir(fwop, rule.Zone)
		to := ZoneDir(alt, rule.Zone)
		log.Infof("# %s", zoneTitle(rule.Zone))

		for _, pattern := range rule.Patterns {
			copied, err := CopyPattern(from, to, pattern)
			total += len(copied)
			if err != nil {
				return total, err
			}
			if len(copied) == 0 {
				log.Warnf("⚠️  %s matched nothing in %s", pattern, from)
				continue
			}
			log.Infof("    %s (%d files)", pattern, len(copied))
		}
	}

	return total, nil
}

func zoneTitle(zone string) string {
	if zone == Root || zone == "" {
		return "ALT"
	}
	return strings.ToUpper(zone)
}
