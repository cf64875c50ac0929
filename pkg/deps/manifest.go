package deps

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// ManifestFile is the raw content of one manifest, addressed by its path
// relative to the project root.
type ManifestFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Name returns the file's base name.
func (f ManifestFile) Name() string { return path.Base(strings.ReplaceAll(f.Path, "\\", "/")) }

// ManifestParser extracts declared dependencies from a manifest.
type ManifestParser interface {
	// Type returns the manifest format (e.g. "package.json").
	Type() string
	// Supports reports whether this parser handles the given file name.
	Supports(filename string) bool
	// Parse returns the dependencies declared in file, already tagged with
	// their ecosystem and normalized version.
	Parse(ctx context.Context, file ManifestFile) ([]Dependency, error)
}

// VersionLookup resolves the newest published version of a package.
type VersionLookup interface {
	LatestVersion(ctx context.Context, name string, refresh bool) (string, error)
}

// DetectManifest finds a parser that supports the given file path.
// Returns an error if no parser matches.
func DetectManifest(filePath string, parsers ...ManifestParser) (ManifestParser, error) {
	name := path.Base(filePath)
	for _, p := range parsers {
		if p.Supports(name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported manifest: %s", name)
}
