package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/riskgraph/pkg/deps"
	"github.com/matzehuels/riskgraph/pkg/render"
	"github.com/matzehuels/riskgraph/pkg/vulns"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the advisory IDs and highest score to dependency
	// labels. When false, only name@version is shown.
	Detailed bool
}

// ratingColors maps a CVSS rating to fill and font colors.
var ratingColors = map[string][2]string{
	"CRITICAL": {"#b71c1c", "white"},
	"HIGH":     {"#e65100", "white"},
	"MEDIUM":   {"#f9a825", "black"},
	"LOW":      {"#fff59d", "black"},
}

const filePrefix = "file:"

// ToDOT converts per-file dependencies to Graphviz DOT format. Output is
// deterministic: files, nodes and edges are emitted in sorted order.
func ToDOT(files map[string][]deps.Dependency, opts Options) string {
	nodes := make(map[string]*deps.Dependency)
	edges := make(map[[2]string]bool)

	for path, ds := range files {
		for i := range ds {
			d := &ds[i]
			addNode(nodes, d)
			edges[[2]string{filePrefix + path, d.Key()}] = true
			if d.Transitive == nil {
				continue
			}
			t := d.Transitive
			for j := range t.Nodes {
				if t.Nodes[j].Relation != deps.RelationSelf {
					addNode(nodes, &t.Nodes[j])
				}
			}
			for _, e := range t.Edges {
				src, dst, ok := edgeKeys(d, t, e)
				if ok && src != dst {
					edges[[2]string{src, dst}] = true
				}
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=lightgrey, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, path := range slices.Sorted(maps.Keys(files)) {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=folder, style=filled, fillcolor=white];\n", filePrefix+path, path)
	}
	for _, key := range slices.Sorted(maps.Keys(nodes)) {
		fmt.Fprintf(&buf, "  %q [%s];\n", key, strings.Join(fmtAttrs(nodes[key], opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range sortedEdges(edges) {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// addNode keeps the first occurrence of a package; it has the same
// advisories wherever it appears.
func addNode(nodes map[string]*deps.Dependency, d *deps.Dependency) {
	if _, ok := nodes[d.Key()]; !ok {
		nodes[d.Key()] = d
	}
}

// edgeKeys resolves a graph edge to node keys. The SELF node stands for
// the owning dependency.
func edgeKeys(owner *deps.Dependency, t *deps.TransitiveDependency, e deps.Edge) (string, string, bool) {
	key := func(i int) (string, bool) {
		if i < 0 || i >= len(t.Nodes) {
			return "", false
		}
		if t.Nodes[i].Relation == deps.RelationSelf {
			return owner.Key(), true
		}
		return t.Nodes[i].Key(), true
	}
	src, ok := key(e.Source)
	if !ok {
		return "", "", false
	}
	dst, ok := key(e.Target)
	return src, dst, ok
}

func sortedEdges(edges map[[2]string]bool) [][2]string {
	out := slices.Collect(maps.Keys(edges))
	slices.SortFunc(out, func(a, b [2]string) int {
		if c := strings.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return strings.Compare(a[1], b[1])
	})
	return out
}

func fmtLabel(d *deps.Dependency, detailed bool) string {
	label := d.Name + "@" + d.Version
	if !detailed || !d.Vulnerable() {
		return label
	}
	ids := make([]string, 0, len(d.Vulnerabilities))
	for _, v := range d.Vulnerabilities {
		ids = append(ids, v.ID)
	}
	slices.Sort(ids)
	if score := deps.HighestScore(d.Vulnerabilities); score >= 0 {
		label += "\nscore: " + strconv.FormatFloat(score, 'f', 1, 64)
	}
	return label + "\n" + strings.Join(ids, "\n")
}

func fmtAttrs(d *deps.Dependency, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(d, detailed))}
	score := deps.HighestScore(d.Vulnerabilities)
	if score < 0 {
		return attrs
	}
	if c, ok := ratingColors[vulns.Rating(strconv.FormatFloat(score, 'f', 1, 64))]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c[0]), fmt.Sprintf("fontcolor=%q", c[1]))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
