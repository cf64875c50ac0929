// Package riskgraph reduces enriched dependencies to the subgraph that
// carries risk.
//
// Filtering runs in two passes. [FilterVulnerableTransitives] prunes each
// transitive graph to its vulnerable nodes plus the SELF root and remaps
// edge indices. [FilterMainDependencies] then drops dependencies that
// neither are vulnerable nor reach a vulnerable node, and drops files left
// empty.
package riskgraph

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/riskgraph/pkg/deps"
)

// Root is the node index that edges with a pruned endpoint are redirected
// to.
const Root = 0

// FilterVulnerableTransitives replaces the transitive graph of every
// dependency in ds with its filtered form. ds is modified in place.
func FilterVulnerableTransitives(ds []deps.Dependency, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	for i := range ds {
		if ds[i].Transitive == nil {
			continue
		}
		t := FilterGraph(ds[i].Transitive, logger.With("dependency", ds[i].Key()))
		ds[i].Transitive = &t
	}
}

// FilterGraph keeps the nodes of t that are vulnerable or SELF and remaps
// every edge through the old-to-new index map. An endpoint that was pruned
// or never existed is redirected to [Root]; the redirect is logged because
// it can introduce an edge absent from the original graph. Edges that end
// up as Root->Root, and repeats of an already emitted (source, target)
// pair, are dropped.
//
// Every edge of the result references Root or a valid index into Nodes.
func FilterGraph(t *deps.TransitiveDependency, logger *log.Logger) deps.TransitiveDependency {
	remap := make(map[int]int, len(t.Nodes))
	out := deps.TransitiveDependency{Nodes: []deps.Dependency{}, Edges: []deps.Edge{}}
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Relation == deps.RelationSelf || n.Vulnerable() {
			remap[i] = len(out.Nodes)
			out.Nodes = append(out.Nodes, n.Clone())
		}
	}

	type pair struct{ source, target int }
	seen := make(map[pair]bool, len(t.Edges))
	for _, e := range t.Edges {
		src, srcOK := remap[e.Source]
		dst, dstOK := remap[e.Target]
		if !srcOK {
			src = Root
		}
		if !dstOK {
			dst = Root
		}
		if src == Root && dst == Root {
			continue
		}
		p := pair{src, dst}
		if seen[p] {
			continue
		}
		if (!srcOK || !dstOK) && logger != nil {
			logger.Debug("edge redirected to root",
				"from", e.Source, "to", e.Target, "source", src, "target", dst)
		}
		seen[p] = true
		out.Edges = append(out.Edges, deps.Edge{Source: src, Target: dst, Requirement: e.Requirement})
	}
	return out
}

// FilterMainDependencies keeps, per file, the dependencies that are
// vulnerable themselves or have at least one vulnerable transitive node
// besides SELF. Files with nothing left are omitted.
func FilterMainDependencies(files map[string][]deps.Dependency) map[string][]deps.Dependency {
	out := make(map[string][]deps.Dependency, len(files))
	for path, ds := range files {
		var kept []deps.Dependency
		for i := range ds {
			if Risky(&ds[i]) {
				kept = append(kept, ds[i])
			}
		}
		if len(kept) > 0 {
			out[path] = kept
		}
	}
	return out
}

// Risky reports whether d or one of its transitive nodes is vulnerable.
func Risky(d *deps.Dependency) bool {
	return d.Vulnerable() || (d.Transitive != nil && d.Transitive.VulnerableNodes() > 0)
}
