// Package transitive attaches full dependency graphs to parsed
// dependencies.
//
// Each dependency with a known version is looked up in deps.dev once; the
// returned node and edge lists are converted into a
// [deps.TransitiveDependency] with edge indices preserved exactly as the
// service returned them. Failures are per dependency: the dependency keeps
// no graph and the error is recorded in the run's ledger.
package transitive

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/riskgraph/pkg/batch"
	"github.com/matzehuels/riskgraph/pkg/deps"
	"github.com/matzehuels/riskgraph/pkg/integrations/depsdev"
)

// Defaults for the deps.dev fan-out.
const (
	DefaultBatchSize   = 15
	DefaultConcurrency = 6
)

// GraphFetcher returns the resolved dependency graph of one package
// version. [depsdev.Client] implements it.
type GraphFetcher interface {
	Dependencies(ctx context.Context, system, name, version string, refresh bool) (*depsdev.Graph, error)
}

// Options configures a Resolver.
type Options struct {
	Batch    batch.Options
	Refresh  bool           // bypass cached graphs
	Progress batch.Progress // called after each wave
	Logger   *log.Logger
}

// Resolver fetches transitive graphs.
type Resolver struct {
	fetcher GraphFetcher
	opts    Options
}

// NewResolver creates a Resolver. Zero batch options select 15 items per
// batch and 6 concurrent batches.
func NewResolver(fetcher GraphFetcher, opts Options) *Resolver {
	if opts.Batch.Size <= 0 {
		opts.Batch.Size = DefaultBatchSize
	}
	if opts.Batch.Concurrency <= 0 {
		opts.Batch.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Resolver{fetcher: fetcher, opts: opts}
}

// Resolve returns a copy of dependencies in the same order with
// Transitive populated where a graph could be fetched. Dependencies with
// an unknown version are returned untouched. Per-dependency failures are
// recorded under [deps.StepTransitiveFetch]; the returned error is
// non-nil only when ctx ends the run.
func (r *Resolver) Resolve(ctx context.Context, dependencies []deps.Dependency, ledger *deps.Ledger) ([]deps.Dependency, error) {
	out := make([]deps.Dependency, len(dependencies))
	var pending []int
	for i := range dependencies {
		out[i] = dependencies[i].Clone()
		if out[i].Version != deps.VersionUnknown {
			pending = append(pending, i)
		}
	}

	start := time.Now()
	results := batch.Process(ctx, pending, r.opts.Batch, func(ctx context.Context, i int) (*deps.TransitiveDependency, error) {
		d := &out[i]
		g, err := r.fetcher.Dependencies(ctx, d.Ecosystem.System(), d.Name, d.Version, r.opts.Refresh)
		if err != nil {
			return nil, err
		}
		t := FromGraph(g)
		return &t, nil
	}, r.opts.Progress)

	if err := ctx.Err(); err != nil {
		return out, err
	}

	resolved := 0
	for _, res := range results {
		d := &out[res.Item]
		if !res.OK() {
			ledger.Recordf(deps.StepTransitiveFetch, "%s: %v", d.Key(), res.Err)
			continue
		}
		d.Transitive = res.Value
		resolved++
		r.opts.Logger.Debug("resolved transitive graph", "dependency", d.Key(), "count", len(res.Value.Nodes))
	}

	r.opts.Logger.Info("transitive dependencies fetched",
		"count", resolved,
		"skipped", len(dependencies)-len(pending),
		"failed", len(pending)-resolved,
		"duration", time.Since(start).Round(time.Millisecond))
	return out, nil
}

// FromGraph converts a deps.dev graph. Every node starts with an empty
// vulnerability list; node systems deps.dev reports outside the supported
// ecosystems map to [deps.Unknown]. Edges are copied verbatim.
func FromGraph(g *depsdev.Graph) deps.TransitiveDependency {
	t := deps.TransitiveDependency{
		Nodes: make([]deps.Dependency, len(g.Nodes)),
		Edges: make([]deps.Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		t.Nodes[i] = deps.Dependency{
			Name:            n.VersionKey.Name,
			Version:         n.VersionKey.Version,
			Ecosystem:       deps.ParseEcosystem(n.VersionKey.System),
			Vulnerabilities: []deps.Vulnerability{},
			Relation:        deps.Relation(strings.ToUpper(n.Relation)),
		}
	}
	for i, e := range g.Edges {
		t.Edges[i] = deps.Edge{Source: e.FromNode, Target: e.ToNode, Requirement: e.Requirement}
	}
	return t
}
