package dart

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

// Pubspec parses pubspec.yaml files. It extracts dependencies and
// dev_dependencies; SDK, path and git dependencies are skipped because they
// are not published on pub.dev.
type Pubspec struct{}

func (p *Pubspec) Type() string              { return "pubspec.yaml" }
func (p *Pubspec) Supports(name string) bool { return name == "pubspec.yaml" }

func (p *Pubspec) Parse(_ context.Context, file deps.ManifestFile) ([]deps.Dependency, error) {
	var spec pubspecFile
	if err := yaml.Unmarshal([]byte(file.Content), &spec); err != nil {
		return nil, fmt.Errorf("decode pubspec.yaml: %w", err)
	}

	var out []deps.Dependency
	for _, section := range []struct {
		kind string
		node yaml.Node
	}{
		{"dependencies", spec.Dependencies},
		{"dev_dependencies", spec.DevDependencies},
	} {
		entries, err := mappingEntries(&section.node)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", section.kind, err)
		}
		for _, e := range entries {
			version, hosted := e.version()
			if !hosted {
				continue
			}
			out = append(out, deps.Dependency{
				Name:           e.name,
				Version:        deps.NormalizeVersion(version),
				Ecosystem:      deps.Pub,
				DependencyType: section.kind,
			})
		}
	}
	return out, nil
}

type pubspecFile struct {
	Name            string    `yaml:"name"`
	Dependencies    yaml.Node `yaml:"dependencies"`
	DevDependencies yaml.Node `yaml:"dev_dependencies"`
}

// entry is one dependency as written: either a bare constraint string or a
// map such as {sdk: flutter} or {hosted: ..., version: ^1.0.0}.
type entry struct {
	name       string
	constraint string
	source     map[string]any
}

func (e entry) version() (string, bool) {
	if e.source == nil {
		if strings.TrimSpace(e.constraint) == "" || e.constraint == "any" {
			return deps.VersionUnknown, true
		}
		return e.constraint, true
	}
	for _, key := range []string{"sdk", "path", "git"} {
		if _, ok := e.source[key]; ok {
			return "", false
		}
	}
	if v, ok := e.source["version"].(string); ok {
		return v, true
	}
	return deps.VersionUnknown, true
}

// mappingEntries walks the mapping in document order. An absent section
// yields no entries.
func mappingEntries(n *yaml.Node) ([]entry, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}

	out := make([]entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		e := entry{name: key.Value}
		switch val.Kind {
		case yaml.ScalarNode:
			if val.Tag != "!!null" {
				e.constraint = val.Value
			}
		case yaml.MappingNode:
			if err := val.Decode(&e.source); err != nil {
				return nil, fmt.Errorf("line %d: %w", val.Line, err)
			}
		default:
			return nil, fmt.Errorf("line %d: unsupported value for %s", val.Line, key.Value)
		}
		out = append(out, e)
	}
	return out, nil
}
