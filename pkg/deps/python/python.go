package python

import "github.com/matzehuels/riskgraph/pkg/deps"

// Language parses Python manifests. Supports requirements*.txt files.
var Language = &deps.Language{
	Name:            "python",
	Ecosystem:       deps.PyPI,
	ManifestParsers: manifestParsers,
}

func manifestParsers(reg deps.Registries) []deps.ManifestParser {
	return []deps.ManifestParser{&Requirements{lookup: reg.PyPI}}
}
