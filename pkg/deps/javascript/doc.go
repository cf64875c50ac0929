// Package javascript extracts npm dependencies from package.json manifests.
//
// # Manifest Parsing
//
// Both "dependencies" and "devDependencies" are read; the section name is
// kept as the dependency type. Ranges are normalized with
// [deps.NormalizeVersion], so "^4.18.0" becomes "4.18.0".
//
// Entries declared as "*", "latest" or an empty string have no usable
// version. When the language is given an npm [deps.VersionLookup] they are
// resolved to the newest published version:
//
//	reg := deps.Registries{NPM: npm.NewClient(c, npm.DefaultURL)}
//	err := javascript.Language.Parse(ctx, files, reg, store, ledger)
//
// Without a lookup they stay "unknown" and are skipped by the transitive
// resolver.
package javascript
