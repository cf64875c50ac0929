package dart

import "github.com/matzehuels/riskgraph/pkg/deps"

// Language parses Dart and Flutter manifests. Supports pubspec.yaml files.
var Language = &deps.Language{
	Name:            "dart",
	Ecosystem:       deps.Pub,
	ManifestParsers: manifestParsers,
}

func manifestParsers(deps.Registries) []deps.ManifestParser {
	return []deps.ManifestParser{&Pubspec{}}
}
