package java

import "github.com/matzehuels/riskgraph/pkg/deps"

// Language parses Maven manifests. Supports pom.xml files.
var Language = &deps.Language{
	Name:            "java",
	Ecosystem:       deps.Maven,
	ManifestParsers: manifestParsers,
}

func manifestParsers(deps.Registries) []deps.ManifestParser {
	return []deps.ManifestParser{&POMParser{}}
}
