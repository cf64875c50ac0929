package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/riskgraph/pkg/pipeline"
	"github.com/matzehuels/riskgraph/pkg/render/nodelink"
)

// scanOptions holds flag values for the scan command.
type scanOptions struct {
	output       string
	graph        string
	tui          bool
	noCache      bool
	refresh      bool
	includeClean bool
	detailed     bool
}

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Analyze the dependency manifests below a directory",
		Long: `Scan collects package.json, requirements*.txt, pom.xml, Gemfile,
composer.json and pubspec.yaml files below dir (default "."), resolves
their transitive graphs, attaches OSV advisories and reports every
dependency that is vulnerable or reaches a vulnerable package.`,
		Example: `  riskgraph scan ./myproject
  riskgraph scan -o report.json --graph risk.svg
  riskgraph scan --tui`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("refresh") {
				cfg.Pipeline.Refresh = opts.refresh
			}
			if cmd.Flags().Changed("include-clean") {
				cfg.Pipeline.IncludeClean = opts.includeClean
			}
			return c.runScan(cmd.Context(), dir, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the JSON result to file (\"-\" for stdout)")
	cmd.Flags().StringVar(&opts.graph, "graph", "", "write the risk graph (.dot, .svg, .pdf or .png)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list advisory IDs and scores in graph nodes")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show progress and browse results interactively")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the HTTP response cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached responses and refetch")
	cmd.Flags().BoolVar(&opts.includeClean, "include-clean", false, "keep dependencies without vulnerabilities in the result")
	registerScanCompletions(cmd)

	return cmd
}

func (c *CLI) runScan(ctx context.Context, dir string, cfg *Config, opts scanOptions) error {
	if err := validateGraphPath(opts.graph); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	var res *pipeline.Result
	if opts.tui {
		res, err = c.scanTUI(ctx, runner, abs)
	} else {
		res, err = c.scanSpinner(ctx, runner, abs, opts.output != "-")
	}
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := writeResult(opts.output, res); err != nil {
			return err
		}
	}
	if opts.graph != "" {
		if err := writeGraph(opts.graph, res, opts.detailed); err != nil {
			return err
		}
		printFile(opts.graph)
	}
	return nil
}

// scanSpinner runs the analysis behind a spinner that names the current
// step, then prints the summary unless stdout carries the JSON result.
func (c *CLI) scanSpinner(ctx context.Context, runner *pipeline.Runner, dir string, summary bool) (*pipeline.Result, error) {
	elapsed := newTimer(c.Logger)
	spinner := newSpinnerWithContext(ctx, stepLabels[pipeline.StepParsingManifests])
	spinner.Start()

	res, err := runner.AnalyzeDir(ctx, dir, func(step pipeline.Step, percent float64) {
		spinner.SetMessage(fmt.Sprintf("%s (%d/%d) %3.0f%%", stepLabels[step], step.Index()+1, len(pipeline.Steps), percent))
	})
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return nil, err
	}
	if !summary {
		spinner.Stop()
		elapsed.done("Scan finished", "files", res.Stats.Files, "issues", len(res.Error))
		return res, nil
	}
	spinner.StopWithSuccess(fmt.Sprintf("Analyzed %d manifests", res.Stats.Files))
	elapsed.done("Scan finished", "files", res.Stats.Files, "issues", len(res.Error))
	printSummary(res)
	return res, nil
}

// scanTUI runs the analysis in the background while the TUI shows step
// progress, then hands the result to the interactive browser.
func (c *CLI) scanTUI(ctx context.Context, runner *pipeline.Runner, dir string) (*pipeline.Result, error) {
	// Log lines would tear the alternate screen.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(LogFatal)
	defer c.Logger.SetLevel(level)

	p := tea.NewProgram(NewScanModel(), tea.WithContext(ctx), tea.WithAltScreen())
	go func() {
		res, err := runner.AnalyzeDir(ctx, dir, func(step pipeline.Step, percent float64) {
			p.Send(progressMsg{step: step, percent: percent})
		})
		p.Send(doneMsg{result: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(ScanModel)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return nil, context.Canceled
	}
	return m.Result, nil
}

func writeResult(path string, res *pipeline.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}

var graphFormats = []string{".dot", ".svg", ".pdf", ".png"}

func validateGraphPath(path string) error {
	if path == "" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range graphFormats {
		if ext == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported graph format %q (use %s)", ext, strings.Join(graphFormats, ", "))
}

func writeGraph(path string, res *pipeline.Result, detailed bool) error {
	dot := nodelink.ToDOT(res.Dependencies, nodelink.Options{Detailed: detailed})

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot":
		data = []byte(dot)
	case ".svg":
		data, err = nodelink.RenderSVG(dot)
	case ".pdf":
		data, err = nodelink.RenderPDF(dot)
	case ".png":
		data, err = nodelink.RenderPNG(dot, 2.0)
	}
	if err != nil {
		return fmt.Errorf("render graph: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
