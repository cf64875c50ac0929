package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/riskgraph/pkg/deps"
	"github.com/matzehuels/riskgraph/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// stepLabels are the human-readable step names.
var stepLabels = map[pipeline.Step]string{
	pipeline.StepParsingManifests:    "Reading manifests",
	pipeline.StepParsingDependencies: "Parsing dependencies",
	pipeline.StepFetchingTransitive:  "Resolving transitive graphs",
	pipeline.StepFetchingVulnIDs:     "Querying OSV",
	pipeline.StepFetchingVulnDetails: "Fetching advisory details",
	pipeline.StepFinalisingResults:   "Building risk graph",
}

// progressMsg reports pipeline progress to the TUI.
type progressMsg struct {
	step    pipeline.Step
	percent float64
}

// doneMsg ends the running phase.
type doneMsg struct {
	result *pipeline.Result
	err    error
}

// =============================================================================
// ScanModel - step progress, then an interactive findings browser
// =============================================================================

// ScanModel is the bubbletea model for `scan --tui`.
type ScanModel struct {
	Step    pipeline.Step
	Percent float64
	Result  *pipeline.Result
	Err     error

	findings []finding
	Cursor   int
	Offset   int
	Height   int
	Expanded bool
}

// NewScanModel creates a model in the running phase.
func NewScanModel() ScanModel {
	return ScanModel{Height: 12}
}

func (m ScanModel) Init() tea.Cmd {
	return nil
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.Step, m.Percent = msg.step, msg.percent
	case doneMsg:
		m.Result, m.Err = msg.result, msg.err
		if m.Err != nil {
			return m, tea.Quit
		}
		m.findings = findings(m.Result)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.findings)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

func (m ScanModel) View() string {
	if m.Result == nil && m.Err == nil {
		return m.progressView()
	}
	if m.Err != nil {
		return styleIconError.Render(iconError) + " " + m.Err.Error() + "\n"
	}
	return m.resultView()
}

func (m ScanModel) progressView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Analyzing"))
	b.WriteString("\n\n")

	current := m.Step.Index()
	for i, step := range pipeline.Steps {
		label := stepLabels[step]
		switch {
		case current < 0 || i > current:
			b.WriteString(listDimStyle.Render("  " + label))
		case i < current:
			b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + label)
		default:
			b.WriteString(styleIconSpinner.Render(iconInfo) + " " + label + " " + progressBar(m.Percent, 20))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ScanModel) resultView() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Risky dependencies"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.findings) == 0 {
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " No vulnerable dependencies found\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.findings))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		rows = append(rows, m.findings[i].row())
	}
	b.WriteString(findingsTable(rows, m.Cursor-m.Offset))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.findings))))
	b.WriteString("\n")

	if m.Expanded {
		b.WriteString("\n")
		b.WriteString(detailView(m.findings[m.Cursor]))
	}
	for _, line := range m.Result.Error {
		b.WriteString("\n" + listDimStyle.Render(line))
	}
	return b.String()
}

// detailView lists the advisories of a finding and of its graph nodes.
func detailView(f finding) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(f.Dep.Name+"@"+f.Dep.Version) + "\n")
	writeVulns(&b, "", f.Dep.Vulnerabilities)
	if t := f.Dep.Transitive; t != nil {
		for i := range t.Nodes {
			n := &t.Nodes[i]
			if n.Relation == deps.RelationSelf || !n.Vulnerable() {
				continue
			}
			b.WriteString(StyleDim.Render("  via ") + n.Name + "@" + n.Version + "\n")
			writeVulns(&b, "  ", n.Vulnerabilities)
		}
	}
	return b.String()
}

func writeVulns(b *strings.Builder, indent string, vs []deps.Vulnerability) {
	for _, v := range vs {
		line := indent + "  " + StyleHighlight.Render(v.ID) + " " + renderScore(v.SeverityScore.Max())
		if v.Summary != "" {
			line += " " + v.Summary
		}
		if v.FixAvailable != "" {
			line += StyleSuccess.Render(" (fixed in " + v.FixAvailable + ")")
		}
		b.WriteString(line + "\n")
	}
}

// progressBar draws a fixed-width bar for percent in [0, 100].
func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return StyleHighlight.Render(strings.Repeat("█", filled)) +
		listDimStyle.Render(strings.Repeat("░", width-filled)) +
		StyleDim.Render(fmt.Sprintf(" %3.0f%%", percent))
}
