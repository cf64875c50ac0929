package python

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/multierr"

	"github.com/matzehuels/riskgraph/pkg/deps"
	"github.com/matzehuels/riskgraph/pkg/integrations"
)

var (
	depNameRE   = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)
	extrasRE    = regexp.MustCompile(`^\s*\[[^\]]*\]`)
	specifierRE = regexp.MustCompile(`^\s*(===|==|~=|>=|<=|!=|>|<)\s*([^\s,;]+)`)
)

// Requirements parses pip requirements files. Pinned entries keep their
// version; bare names are resolved to the newest release through lookup.
type Requirements struct {
	lookup deps.VersionLookup
}

func (r *Requirements) Type() string { return "requirements.txt" }

func (r *Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

// Parse reads one requirement per line. Comments, options ("-r", "-e",
// "--index-url") and URL requirements are skipped. A range such as
// ">=2.0,<3" yields its first bound.
func (r *Requirements) Parse(ctx context.Context, file deps.ManifestFile) ([]deps.Dependency, error) {
	var (
		out  []deps.Dependency
		errs error
		seen = make(map[string]bool)
	)

	scanner := bufio.NewScanner(strings.NewReader(file.Content))
	for scanner.Scan() {
		line := stripComment(scanner.Text())
		if line == "" || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}

		m := depNameRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := integrations.NormalizePkgName(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true

		version, err := r.version(ctx, name, line[len(m[1]):])
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			errs = multierr.Append(errs, err)
		}
		out = append(out, deps.Dependency{
			Name:           name,
			Version:        deps.NormalizeVersion(version),
			Ecosystem:      deps.PyPI,
			DependencyType: "dependencies",
		})
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("read requirements: %w", err)
	}
	return out, errs
}

func (r *Requirements) version(ctx context.Context, name, rest string) (string, error) {
	rest = extrasRE.ReplaceAllString(rest, "")
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		rest = rest[:i]
	}
	if m := specifierRE.FindStringSubmatch(rest); m != nil {
		return m[2], nil
	}
	if strings.TrimSpace(rest) != "" || r.lookup == nil {
		return deps.VersionUnknown, nil
	}
	v, err := r.lookup.LatestVersion(ctx, name, false)
	if err != nil {
		return deps.VersionUnknown, fmt.Errorf("latest version of %s: %w", name, err)
	}
	return v, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, " #"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return ""
	}
	return line
}
