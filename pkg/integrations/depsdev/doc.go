// Package depsdev provides an HTTP client for the deps.dev v3 REST API.
//
// Only the :dependencies endpoint is used:
//
//	GET /v3/systems/{system}/packages/{name}/versions/{version}:dependencies
//
// It returns the package version's resolved graph as an arena of nodes plus
// edges addressed by node index. [Graph] mirrors that shape exactly so the
// indices survive decoding unchanged.
//
// System names are validated against the deps.dev/api/v3 System enum; npm,
// PyPI, Maven and RubyGems are indexed, Composer and Pub are not.
package depsdev
