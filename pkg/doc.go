// Package pkg provides the core libraries for riskgraph dependency risk
// analysis.
//
// # Overview
//
// riskgraph turns a set of manifest files into a per-manifest map of risky
// dependencies. Each main dependency carries its own advisories plus a
// transitive graph pruned down to the paths that reach a vulnerable package.
//
// # Architecture
//
// The data flow through a run:
//
//	Manifest files
//	      ↓
//	 [deps] language parsers (npm, PyPI, Maven, RubyGems, Packagist, Pub)
//	      ↓
//	 [transitive] deps.dev dependency graphs
//	      ↓
//	 [vulns] OSV advisory IDs, details and CVSS scores
//	      ↓
//	 [riskgraph] graph pruning and main dependency filtering
//	      ↓
//	 JSON report / DOT, SVG, PDF, PNG graph
//
// [pipeline] drives these steps with progress reporting and an issue ledger,
// and is shared by the CLI and the HTTP server.
//
// # Quick Start
//
//	runner, err := pipeline.NewRunner(cache.NewNullCache(), pipeline.Options{}, logger)
//	if err != nil {
//	    return err
//	}
//	defer runner.Close()
//
//	res, err := runner.AnalyzeDir(ctx, ".", func(step pipeline.Step, pct float64) {
//	    fmt.Printf("%s %.0f%%\n", step, pct)
//	})
//	dot := nodelink.ToDOT(res.Dependencies, nodelink.Options{Detailed: true})
//
// # Main Packages
//
// [deps] - The dependency model, ecosystems, the concurrency-safe store, the
// issue ledger and one subpackage per manifest language.
//
// [integrations] - HTTP clients for deps.dev, OSV, npm and PyPI sharing one
// cached, retried transport.
//
// [batch] - Wave-based bounded fan-out with per-item failure isolation.
//
// [cache] - File, Redis, MongoDB and null response caches.
//
// [render/nodelink] - Graphviz rendering of the risk graph.
//
// [errors] - Structured error codes and input validation.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test -tags integration ./pkg/...  # Include live registry tests
//
// [deps]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/deps
// [transitive]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/transitive
// [vulns]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/vulns
// [riskgraph]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/riskgraph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/pipeline
// [integrations]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/integrations
// [batch]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/batch
// [cache]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/riskgraph/pkg/errors
package pkg
