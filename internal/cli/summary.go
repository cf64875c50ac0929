package cli

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/riskgraph/pkg/deps"
	"github.com/matzehuels/riskgraph/pkg/pipeline"
)

// finding is one risky main dependency of one manifest.
type finding struct {
	Path       string
	Dep        deps.Dependency
	Direct     int     // advisories on the dependency itself
	Transitive int     // vulnerable nodes in its pruned graph
	Score      float64 // highest score across itself and its graph, or -1
}

// findings flattens a result, ordered by highest score, then path and name.
func findings(res *pipeline.Result) []finding {
	var out []finding
	for _, path := range slices.Sorted(maps.Keys(res.Dependencies)) {
		for _, d := range res.Dependencies[path] {
			f := finding{Path: path, Dep: d, Direct: len(d.Vulnerabilities), Score: deps.HighestScore(d.Vulnerabilities)}
			if t := d.Transitive; t != nil {
				f.Transitive = t.VulnerableNodes()
				for i := range t.Nodes {
					f.Score = max(f.Score, deps.HighestScore(t.Nodes[i].Vulnerabilities))
				}
			}
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, func(a, b finding) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Dep.Name, b.Dep.Name)
	})
	return out
}

func (f finding) row() []string {
	via := "—"
	if f.Transitive > 0 {
		via = fmt.Sprintf("%d", f.Transitive)
	}
	return []string{f.Path, f.Dep.Name, f.Dep.Version, fmt.Sprintf("%d", f.Direct), via, renderScore(f.Score)}
}

var findingHeaders = []string{"File", "Package", "Version", "Advisories", "Via", "Highest"}

// findingsTable renders rows with the shared table style. highlight marks
// one row index, or -1 for none.
func findingsTable(rows [][]string, highlight int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(findingHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case row == highlight:
				return base.Bold(true).Foreground(colorCyan)
			case col == 0:
				return base.Foreground(colorGray)
			}
			return base
		}).
		Render()
}

// printSummary prints the run statistics and the findings table.
func printSummary(res *pipeline.Result) {
	fs := findings(res)
	s := res.Stats

	fmt.Println(StyleTitle.Render("Risk summary"))
	printKeyValue("Run", res.RunID)
	printKeyValue("Manifests", fmt.Sprintf("%d", s.Files))
	printKeyValue("Packages", fmt.Sprintf("%d direct, %d transitive", s.Dependencies, s.TransitiveNodes))
	printKeyValue("Advisories", fmt.Sprintf("%d unique", s.Vulnerabilities))

	if len(fs) == 0 {
		printSuccess("No vulnerable dependencies found")
	} else {
		rows := make([][]string, len(fs))
		for i, f := range fs {
			rows[i] = f.row()
		}
		fmt.Println(findingsTable(rows, -1))
		printWarning("%d risky dependencies in %d manifests", len(fs), len(res.Dependencies))
	}

	for _, line := range res.Error {
		printDetail("%s", line)
	}
}
