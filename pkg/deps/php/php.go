package php

import "github.com/matzehuels/riskgraph/pkg/deps"

// Language parses Composer manifests. Supports composer.json files.
var Language = &deps.Language{
	Name:            "php",
	Ecosystem:       deps.Composer,
	ManifestParsers: manifestParsers,
}

func manifestParsers(deps.Registries) []deps.ManifestParser {
	return []deps.ManifestParser{&ComposerJSON{}}
}
