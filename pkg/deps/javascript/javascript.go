package javascript

import "github.com/matzehuels/riskgraph/pkg/deps"

// Language parses npm manifests. Supports package.json files.
var Language = &deps.Language{
	Name:            "javascript",
	Ecosystem:       deps.NPM,
	ManifestParsers: manifestParsers,
}

func manifestParsers(reg deps.Registries) []deps.ManifestParser {
	return []deps.ManifestParser{&PackageJSON{lookup: reg.NPM}}
}
