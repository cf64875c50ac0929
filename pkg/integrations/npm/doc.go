// Package npm provides an HTTP client for the npm registry API.
//
// Only the "latest" dist-tag is read: package.json entries declared as "*",
// "latest" or an empty string are pinned to it before transitive resolution.
//
//	client := npm.NewClient(c, "")
//	v, err := client.LatestVersion(ctx, "express", false)
//
// Responses are cached for [cache.TTLRegistry]. Pass refresh=true to bypass
// the cache.
package npm
