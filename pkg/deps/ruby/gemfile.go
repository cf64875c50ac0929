package ruby

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

var (
	gemPattern   = regexp.MustCompile(`^\s*gem\s+['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`)
	groupPattern = regexp.MustCompile(`^\s*group\s+(.+?)\s+do\b`)
	blockPattern = regexp.MustCompile(`\bdo\s*(\|[^|]*\|)?\s*$`)
	endPattern   = regexp.MustCompile(`^\s*end\b`)
)

type Gemfile struct{}

func (g *Gemfile) Type() string              { return "Gemfile" }
func (g *Gemfile) Supports(name string) bool { return name == "Gemfile" }

// Parse scans gem 'name', 'version' declarations. The first version
// constraint is normalized; gems without one get an unknown version. Gems
// inside a group block carry the group as their dependency type.
func (g *Gemfile) Parse(_ context.Context, file deps.ManifestFile) ([]deps.Dependency, error) {
	var (
		out    []deps.Dependency
		groups []string
		seen   = make(map[string]bool)
	)

	scanner := bufio.NewScanner(strings.NewReader(file.Content))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		switch {
		case groupPattern.MatchString(line):
			groups = append(groups, groupName(groupPattern.FindStringSubmatch(line)[1]))
			continue
		case blockPattern.MatchString(line):
			groups = append(groups, "")
		case endPattern.MatchString(line):
			if len(groups) > 0 {
				groups = groups[:len(groups)-1]
			}
			continue
		}

		m := gemPattern.FindStringSubmatch(line)
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true

		version := m[2]
		if version == "" {
			version = deps.VersionUnknown
		}
		out = append(out, deps.Dependency{
			Name:           m[1],
			Version:        deps.NormalizeVersion(version),
			Ecosystem:      deps.RubyGems,
			DependencyType: currentGroup(groups),
		})
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("read Gemfile: %w", err)
	}
	return out, nil
}

// groupName turns ":development, :test" into "development,test".
func groupName(raw string) string {
	raw = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "("), ")")
	var names []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), `:'"`)
		if part != "" {
			names = append(names, part)
		}
	}
	return strings.Join(names, ",")
}

func currentGroup(groups []string) string {
	for i := len(groups) - 1; i >= 0; i-- {
		if groups[i] != "" {
			return groups[i]
		}
	}
	return "default"
}
