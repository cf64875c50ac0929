package ruby

import "github.com/matzehuels/riskgraph/pkg/deps"

// Language parses Bundler manifests. Supports Gemfile files.
var Language = &deps.Language{
	Name:            "ruby",
	Ecosystem:       deps.RubyGems,
	ManifestParsers: manifestParsers,
}

func manifestParsers(deps.Registries) []deps.ManifestParser {
	return []deps.ManifestParser{&Gemfile{}}
}
