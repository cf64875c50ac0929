package php

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

// ComposerJSON parses composer.json files. It extracts require and
// require-dev, skipping platform requirements such as "php" and "ext-json".
type ComposerJSON struct{}

func (c *ComposerJSON) Type() string              { return "composer.json" }
func (c *ComposerJSON) Supports(name string) bool { return strings.EqualFold(name, "composer.json") }

func (c *ComposerJSON) Parse(_ context.Context, file deps.ManifestFile) ([]deps.Dependency, error) {
	var manifest composerFile
	if err := json.Unmarshal([]byte(file.Content), &manifest); err != nil {
		return nil, fmt.Errorf("decode composer.json: %w", err)
	}

	var out []deps.Dependency
	for _, section := range []struct {
		kind string
		m    map[string]string
	}{
		{"require", manifest.Require},
		{"require-dev", manifest.RequireDev},
	} {
		for _, name := range slices.Sorted(maps.Keys(section.m)) {
			if isPlatform(name) {
				continue
			}
			out = append(out, deps.Dependency{
				Name:           strings.ToLower(name),
				Version:        deps.NormalizeVersion(section.m[name]),
				Ecosystem:      deps.Composer,
				DependencyType: section.kind,
			})
		}
	}
	return out, nil
}

// isPlatform reports whether name is a platform package. Installable
// packages are always "vendor/name".
func isPlatform(name string) bool {
	return !strings.Contains(name, "/")
}

type composerFile struct {
	Name       string            `json:"name"`
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}
