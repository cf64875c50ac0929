package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/matzehuels/riskgraph/pkg/deps"
	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
)

// MaxManifestSize caps the bytes read from a single manifest.
const MaxManifestSize = 10 << 20

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"target":       true,
}

// CollectManifests walks root and reads every file some language in langs
// supports. Returned paths are relative to root and slash separated.
// Hidden directories and dependency caches such as node_modules are
// skipped.
//
// A file that cannot be read is left out and its error joined into the
// returned error, alongside the files that were read. If root itself is
// unusable the error carries [rgerrors.ErrCodeInvalidPath] and no files
// are returned.
func CollectManifests(root string, langs []*deps.Language) ([]deps.ManifestFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, err, "cannot read %s", root)
	}
	if !info.IsDir() {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidPath, "%s is not a directory", root)
	}

	var files []deps.ManifestFile
	var errs error
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			errs = multierr.Append(errs, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if !supported(d.Name(), langs) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		content, err := readManifest(path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", filepath.ToSlash(rel), err))
			return nil
		}
		files = append(files, deps.ManifestFile{Path: filepath.ToSlash(rel), Content: content})
		return nil
	})
	if walkErr != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, walkErr, "cannot walk %s", root)
	}
	return files, errs
}

func supported(name string, langs []*deps.Language) bool {
	for _, lang := range langs {
		if lang.Supports(name) {
			return true
		}
	}
	return false
}

func readManifest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > MaxManifestSize {
		return "", fmt.Errorf("manifest too large (%d bytes)", info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
