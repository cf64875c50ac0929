// Package deps defines the dependency model shared by the analysis
// pipeline and the manifest parsers that populate it.
//
// # Overview
//
// A [Dependency] is identified by name, normalized version and [Ecosystem].
// Manifest parsers (one subpackage per language) turn raw manifest files
// into dependencies; a [Store] deduplicates them across files; the
// transitive resolver attaches a [TransitiveDependency] graph to each; the
// vulnerability enricher appends [Vulnerability] records.
//
// # Supported Manifests
//
//   - javascript: package.json (npm)
//   - python: requirements*.txt (PyPI)
//   - java: pom.xml (Maven)
//   - ruby: Gemfile (RubyGems)
//   - php: composer.json (Packagist)
//   - dart: pubspec.yaml (Pub)
//
// # Versions
//
// [NormalizeVersion] reduces whatever a manifest declares ("^2.6.9",
// "~> 5.2", "1.x", a git SHA) to "major.minor.patch[-pre|+build]" or
// [VersionUnknown]. Dependencies with an unknown version are kept but are
// not sent to deps.dev.
//
// # Partial Failure
//
// Per-file and per-request failures never abort a run. They are appended to
// a [Ledger] under a step name and surfaced as a summary at the end.
package deps
