// Package pypi provides an HTTP client for the Python Package Index API.
//
// requirements.txt lines without a "==" pin are resolved to the release
// reported by GET /pypi/{name}/json:
//
//	client := pypi.NewClient(c, "")
//	v, err := client.LatestVersion(ctx, "Flask_Login", false) // queries "flask-login"
//
// Package names are normalized following PEP 503 before lookup and caching.
package pypi
