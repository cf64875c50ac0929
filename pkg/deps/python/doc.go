// Package python extracts PyPI dependencies from pip requirements files.
//
// Names are normalized to lower case with underscores replaced by hyphens.
// "name==version" pins are used as is; other specifiers contribute their
// first version bound. Bare names are resolved through a PyPI
// [deps.VersionLookup] when one is configured.
package python
