package deps

import (
	"slices"
	"strings"
)

// Ecosystem is a package universe. Values are the OSV ecosystem names so
// they can be sent to the vulnerability database unchanged.
type Ecosystem string

const (
	NPM      Ecosystem = "npm"
	PyPI     Ecosystem = "PyPI"
	Maven    Ecosystem = "Maven"
	RubyGems Ecosystem = "RubyGems"
	Composer Ecosystem = "Packagist"
	Pub      Ecosystem = "Pub"

	// Unknown is used for graph nodes whose system string is not recognized.
	Unknown Ecosystem = "unknown"
)

// Ecosystems lists every supported ecosystem.
var Ecosystems = []Ecosystem{NPM, PyPI, Maven, RubyGems, Composer, Pub}

var ecosystemAliases = map[string]Ecosystem{
	"npm":       NPM,
	"pypi":      PyPI,
	"maven":     Maven,
	"rubygems":  RubyGems,
	"gem":       RubyGems,
	"packagist": Composer,
	"composer":  Composer,
	"pub":       Pub,
	"dart":      Pub,
}

// ParseEcosystem maps an ecosystem or deps.dev system name, in any case, to
// an Ecosystem. Unrecognized names return Unknown.
func ParseEcosystem(s string) Ecosystem {
	if e, ok := ecosystemAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return e
	}
	return Unknown
}

// OSV returns the ecosystem name used by the OSV API.
func (e Ecosystem) OSV() string { return string(e) }

// System returns the deps.dev system name, or "" for ecosystems deps.dev
// does not index.
func (e Ecosystem) System() string {
	switch e {
	case NPM, PyPI, Maven, RubyGems:
		return strings.ToLower(string(e))
	}
	return ""
}

// Known reports whether e is one of Ecosystems.
func (e Ecosystem) Known() bool {
	return slices.Contains(Ecosystems, e)
}
