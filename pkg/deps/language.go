package deps

import (
	"context"
	"fmt"

	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
)

// Registries holds the version lookups parsers may need. Either may be nil,
// in which case unpinned versions stay unresolved.
type Registries struct {
	NPM  VersionLookup
	PyPI VersionLookup
}

// Language ties an ecosystem to its manifest parsers.
type Language struct {
	Name            string
	Ecosystem       Ecosystem
	ManifestParsers func(reg Registries) []ManifestParser
}

// Supports reports whether any of the language's parsers handles filename.
func (l *Language) Supports(filename string) bool {
	for _, p := range l.ManifestParsers(Registries{}) {
		if p.Supports(filename) {
			return true
		}
	}
	return false
}

// Parse runs the language's parsers over files and adds every dependency
// to store. Parse errors are recorded in ledger under StepFileParsing;
// dependencies returned alongside an error are still added, so a parser
// can report a partial result. Names that are unsafe to put in a request
// URL are rejected and recorded the same way. Parse only returns an error
// when the whole run must stop, e.g. when ctx is done.
func (l *Language) Parse(ctx context.Context, files []ManifestFile, reg Registries, store *Store, ledger *Ledger) error {
	parsers := l.ManifestParsers(reg)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := DetectManifest(f.Name(), parsers...)
		if err != nil {
			ledger.Recordf(StepFileParsing, "%s: %v", f.Path, err)
			continue
		}
		found, err := p.Parse(ctx, f)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ledger.Recordf(StepFileParsing, "%s: %v", f.Path, err)
		}
		for _, d := range found {
			if d.Ecosystem != l.Ecosystem {
				return fmt.Errorf("%s parser emitted %s dependency %s", l.Name, d.Ecosystem, d.Name)
			}
			if err := rgerrors.ValidatePackageName(d.Name); err != nil {
				ledger.Recordf(StepFileParsing, "%s: %q: %s", f.Path, d.Name, rgerrors.UserMessage(err))
				continue
			}
			store.Add(d, f.Path)
		}
	}
	return nil
}
