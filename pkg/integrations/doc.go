// Package integrations provides HTTP clients for the upstream APIs the
// analysis pipeline depends on.
//
// # Overview
//
// Each upstream has its own subpackage:
//
//   - [npm]: npm registry, latest-version lookups
//   - [pypi]: Python Package Index, latest-version lookups
//   - [depsdev]: deps.dev resolved dependency graphs
//   - [osv]: OSV batch vulnerability queries and advisory records
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP plumbing used by all of them: default
// headers, JSON GET/POST, response caching via [cache.Cache], and retries
// under an [httputil.Policy]. Every non-2xx response becomes a [StatusError],
// which matches [ErrNotFound] for 404 and [ErrNetwork] for 5xx with
// errors.Is, and exposes its status to [httputil.IsRetryable].
//
// Clients are safe for concurrent use.
//
// [npm]: github.com/matzehuels/riskgraph/pkg/integrations/npm
// [pypi]: github.com/matzehuels/riskgraph/pkg/integrations/pypi
// [depsdev]: github.com/matzehuels/riskgraph/pkg/integrations/depsdev
// [osv]: github.com/matzehuels/riskgraph/pkg/integrations/osv
// [cache.Cache]: github.com/matzehuels/riskgraph/pkg/cache.Cache
// [httputil.Policy]: github.com/matzehuels/riskgraph/pkg/httputil.Policy
// [httputil.IsRetryable]: github.com/matzehuels/riskgraph/pkg/httputil.IsRetryable
package integrations
