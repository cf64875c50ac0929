package javascript

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

// PackageJSON parses package.json files. It extracts dependencies and
// devDependencies; unpinned ranges ("*", "latest", empty) are resolved to
// the newest published version through lookup.
type PackageJSON struct {
	lookup deps.VersionLookup
}

func (p *PackageJSON) Type() string              { return "package.json" }
func (p *PackageJSON) Supports(name string) bool { return strings.EqualFold(name, "package.json") }

// Parse returns one dependency per declared entry. Lookup failures leave
// the version unknown and are reported in the returned error together with
// the partial result.
func (p *PackageJSON) Parse(ctx context.Context, file deps.ManifestFile) ([]deps.Dependency, error) {
	var pkg packageFile
	if err := json.Unmarshal([]byte(file.Content), &pkg); err != nil {
		return nil, fmt.Errorf("decode package.json: %w", err)
	}

	var out []deps.Dependency
	for _, section := range []struct {
		kind string
		m    map[string]string
	}{
		{"dependencies", pkg.Dependencies},
		{"devDependencies", pkg.DevDependencies},
	} {
		for _, name := range slices.Sorted(maps.Keys(section.m)) {
			out = append(out, deps.Dependency{
				Name:           name,
				Version:        section.m[name],
				Ecosystem:      deps.NPM,
				DependencyType: section.kind,
			})
		}
	}

	err := p.resolve(ctx, out)
	for i := range out {
		out[i].Version = deps.NormalizeVersion(out[i].Version)
	}
	return out, err
}

// resolve replaces unpinned versions in place. Lookups for one file run
// concurrently.
func (p *PackageJSON) resolve(ctx context.Context, ds []deps.Dependency) error {
	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	for i := range ds {
		if !unpinned(ds[i].Version) {
			continue
		}
		if p.lookup == nil {
			ds[i].Version = deps.VersionUnknown
			continue
		}
		g.Go(func() error {
			v, err := p.lookup.LatestVersion(ctx, ds[i].Name, false)
			if err != nil {
				ds[i].Version = deps.VersionUnknown
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("latest version of %s: %w", ds[i].Name, err))
				mu.Unlock()
				return nil
			}
			ds[i].Version = v
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	return errs
}

func unpinned(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == "*" || strings.EqualFold(v, "latest")
}

type packageFile struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}
