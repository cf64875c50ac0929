// Package render converts risk graphs into visual outputs.
//
// The [nodelink] subpackage builds Graphviz diagrams of an analysis
// result: one node per manifest file, one per vulnerable dependency, and
// the pruned transitive edges between them. [ToPDF] and [ToPNG] convert
// the resulting SVG with the external rsvg-convert tool.
//
//	dot := nodelink.ToDOT(result.Dependencies, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [nodelink]: github.com/matzehuels/riskgraph/pkg/render/nodelink
package render
