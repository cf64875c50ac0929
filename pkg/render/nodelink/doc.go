// Package nodelink renders risk graphs as node-link diagrams.
//
// # Overview
//
// [ToDOT] turns the per-file output of an analysis into Graphviz DOT
// source. Each manifest file becomes a folder-shaped node pointing at the
// dependencies it declares; each dependency points at the vulnerable
// packages of its pruned transitive graph. A package that appears in
// several graphs is drawn once.
//
// Dependency nodes are filled by the qualitative rating of their highest
// CVSS score (CRITICAL, HIGH, MEDIUM, LOW); packages with no scored
// advisory are grey.
//
// # Usage
//
//	dot := nodelink.ToDOT(result.Dependencies, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(dot)
//	png, err := nodelink.RenderPNG(dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
