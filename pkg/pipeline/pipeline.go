// Package pipeline runs the dependency risk analysis end to end.
//
// A run goes through six named steps:
//
//  1. PARSING_MANIFESTS: group manifest files by language
//  2. PARSING_DEPENDENCIES: parse every language concurrently into one
//     deduplicated [deps.Store]
//  3. FETCHING_TRANSITIVE_DEPENDENCIES: attach deps.dev graphs
//  4. FETCHING_VULNERABILTIES_ID: query OSV for advisory IDs
//  5. FETCHING_VULNERABILTIES_DETAILS: load each advisory once
//  6. FINALISING_RESULTS: prune graphs and project dependencies back onto
//     the files that declared them
//
// Steps 3 to 5 are best effort. A failed request is recorded in the run's
// ledger and the run continues; a failed phase degrades the result (no
// graphs, or no advisories) instead of failing the run. Only a failure to
// read the manifests at all produces an empty result.
//
// # Usage
//
//	runner, err := pipeline.NewRunner(c, pipeline.Options{}, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.AnalyzeDir(ctx, "./myproject", nil)
//	for path, ds := range result.Dependencies {
//	    ...
//	}
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/riskgraph/pkg/deps"
	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
	"github.com/matzehuels/riskgraph/pkg/httputil"
	"github.com/matzehuels/riskgraph/pkg/integrations/depsdev"
	"github.com/matzehuels/riskgraph/pkg/integrations/npm"
	"github.com/matzehuels/riskgraph/pkg/integrations/osv"
	"github.com/matzehuels/riskgraph/pkg/integrations/pypi"
	"github.com/matzehuels/riskgraph/pkg/transitive"
	"github.com/matzehuels/riskgraph/pkg/vulns"
)

// =============================================================================
// Steps
// =============================================================================

// Step names a stage of a run as reported to progress callbacks.
type Step string

const (
	StepParsingManifests    Step = "PARSING_MANIFESTS"
	StepParsingDependencies Step = "PARSING_DEPENDENCIES"
	StepFetchingTransitive  Step = "FETCHING_TRANSITIVE_DEPENDENCIES"
	StepFetchingVulnIDs     Step = "FETCHING_VULNERABILTIES_ID"
	StepFetchingVulnDetails Step = "FETCHING_VULNERABILTIES_DETAILS"
	StepFinalisingResults   Step = "FINALISING_RESULTS"
)

// Steps lists every step in execution order.
var Steps = []Step{
	StepParsingManifests,
	StepParsingDependencies,
	StepFetchingTransitive,
	StepFetchingVulnIDs,
	StepFetchingVulnDetails,
	StepFinalisingResults,
}

// Index returns the zero-based position of s in [Steps], or -1.
func (s Step) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// ledgerStep maps a pipeline step to the ledger step its issues are
// recorded under.
func (s Step) ledgerStep() string {
	switch s {
	case StepParsingManifests, StepParsingDependencies:
		return deps.StepFileParsing
	case StepFetchingTransitive:
		return deps.StepTransitiveFetch
	case StepFetchingVulnIDs:
		return deps.StepVulnerabilityScan
	case StepFetchingVulnDetails:
		return deps.StepVulnDetailsFetch
	}
	return ""
}

// Progress receives the completed percentage of the current step. Within
// a step percentages never decrease; each step restarts at 0.
type Progress func(step Step, percent float64)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultTransitiveBatchSize   = transitive.DefaultBatchSize
	DefaultTransitiveConcurrency = transitive.DefaultConcurrency
	DefaultVulnBatchSize         = vulns.DefaultScanBatchSize
	DefaultVulnConcurrency       = vulns.DefaultScanConcurrency
	DefaultDetailBatchSize       = vulns.DefaultDetailBatchSize
	DefaultDetailConcurrency     = vulns.DefaultDetailConcurrency
	DefaultMaxPaginationRounds   = vulns.DefaultMaxPaginationRounds
)

// Default retry budgets per call site.
var (
	DefaultTransitiveRetry = RetryOptions{MaxRetries: 4, BaseDelay: 800 * time.Millisecond}
	DefaultListRetry       = RetryOptions{MaxRetries: 3, BaseDelay: 500 * time.Millisecond}
	DefaultDetailRetry     = RetryOptions{MaxRetries: 4, BaseDelay: 800 * time.Millisecond}
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// RetryOptions is the serializable form of an [httputil.Policy].
type RetryOptions struct {
	MaxRetries int           `json:"max_retries,omitempty" toml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay,omitempty" toml:"base_delay"`
}

// Policy returns the retry policy with the default jitter.
func (r RetryOptions) Policy() httputil.Policy {
	return httputil.NewPolicy(r.MaxRetries, r.BaseDelay)
}

func (r RetryOptions) withDefaults(d RetryOptions) RetryOptions {
	if r.MaxRetries == 0 {
		r.MaxRetries = d.MaxRetries
	}
	if r.BaseDelay == 0 {
		r.BaseDelay = d.BaseDelay
	}
	return r
}

// Options holds every budget and endpoint of a run. Zero values select the
// defaults. The struct is loadable from the CLI's TOML config and from the
// serve endpoint's JSON body.
type Options struct {
	TransitiveBatchSize   int `json:"transitive_batch_size,omitempty" toml:"transitive_batch_size"`
	TransitiveConcurrency int `json:"transitive_concurrency,omitempty" toml:"transitive_concurrency"`
	VulnBatchSize         int `json:"vuln_batch_size,omitempty" toml:"vuln_batch_size"`
	VulnConcurrency       int `json:"vuln_concurrency,omitempty" toml:"vuln_concurrency"`
	DetailBatchSize       int `json:"detail_batch_size,omitempty" toml:"detail_batch_size"`
	DetailConcurrency     int `json:"detail_concurrency,omitempty" toml:"detail_concurrency"`

	TransitiveRetry RetryOptions `json:"transitive_retry,omitempty" toml:"transitive_retry"`
	ListRetry       RetryOptions `json:"list_retry,omitempty" toml:"list_retry"`
	DetailRetry     RetryOptions `json:"detail_retry,omitempty" toml:"detail_retry"`

	// MaxPaginationRounds stops a runaway page-token chain. Termination
	// normally comes from OSV omitting next_page_token.
	MaxPaginationRounds int `json:"max_pagination_rounds,omitempty" toml:"max_pagination_rounds"`

	DepsDevURL string `json:"-" toml:"depsdev_url"`
	OSVURL     string `json:"-" toml:"osv_url"`
	NPMURL     string `json:"-" toml:"npm_url"`
	PyPIURL    string `json:"-" toml:"pypi_url"`

	// Refresh bypasses cached registry, graph and advisory responses.
	Refresh bool `json:"refresh,omitempty" toml:"refresh"`
	// IncludeClean keeps dependencies without any vulnerability in the
	// result instead of filtering them out.
	IncludeClean bool `json:"include_clean,omitempty" toml:"include_clean"`
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	setDefault(&o.TransitiveBatchSize, DefaultTransitiveBatchSize)
	setDefault(&o.TransitiveConcurrency, DefaultTransitiveConcurrency)
	setDefault(&o.VulnBatchSize, DefaultVulnBatchSize)
	setDefault(&o.VulnConcurrency, DefaultVulnConcurrency)
	setDefault(&o.DetailBatchSize, DefaultDetailBatchSize)
	setDefault(&o.DetailConcurrency, DefaultDetailConcurrency)
	setDefault(&o.MaxPaginationRounds, DefaultMaxPaginationRounds)
	o.TransitiveRetry = o.TransitiveRetry.withDefaults(DefaultTransitiveRetry)
	o.ListRetry = o.ListRetry.withDefaults(DefaultListRetry)
	o.DetailRetry = o.DetailRetry.withDefaults(DefaultDetailRetry)
	if o.DepsDevURL == "" {
		o.DepsDevURL = depsdev.DefaultURL
	}
	if o.OSVURL == "" {
		o.OSVURL = osv.DefaultURL
	}
	if o.NPMURL == "" {
		o.NPMURL = npm.DefaultURL
	}
	if o.PyPIURL == "" {
		o.PyPIURL = pypi.DefaultURL
	}
	return o
}

func setDefault(v *int, d int) {
	if *v == 0 {
		*v = d
	}
}

// Validate checks that budgets are positive and endpoints are http(s).
// Call it on the result of WithDefaults.
func (o Options) Validate() error {
	for name, v := range map[string]int{
		"transitive_batch_size":  o.TransitiveBatchSize,
		"transitive_concurrency": o.TransitiveConcurrency,
		"vuln_batch_size":        o.VulnBatchSize,
		"vuln_concurrency":       o.VulnConcurrency,
		"detail_batch_size":      o.DetailBatchSize,
		"detail_concurrency":     o.DetailConcurrency,
		"max_pagination_rounds":  o.MaxPaginationRounds,
	} {
		if v <= 0 {
			return rgerrors.New(rgerrors.ErrCodeInvalidInput, "%s must be positive, got %d", name, v)
		}
	}
	for name, r := range map[string]RetryOptions{
		"transitive_retry": o.TransitiveRetry,
		"list_retry":       o.ListRetry,
		"detail_retry":     o.DetailRetry,
	} {
		if r.MaxRetries <= 0 || r.BaseDelay < 0 {
			return rgerrors.New(rgerrors.ErrCodeInvalidInput, "%s: invalid budget %d x %s", name, r.MaxRetries, r.BaseDelay)
		}
	}
	for name, u := range map[string]string{
		"depsdev_url": o.DepsDevURL,
		"osv_url":     o.OSVURL,
		"npm_url":     o.NPMURL,
		"pypi_url":    o.PyPIURL,
	} {
		if err := rgerrors.ValidateURL(u); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result is the output of one run.
type Result struct {
	RunID string `json:"run_id"`
	// Dependencies maps each manifest path to the dependencies it declared
	// that carry risk, each with its pruned transitive graph.
	Dependencies map[string][]deps.Dependency `json:"dependencies"`
	// Error holds the ledger summary, one line per step with issues.
	Error []string `json:"error,omitempty"`
	Stats Stats    `json:"stats"`
}

// Stats summarizes a run.
type Stats struct {
	Files                  int                    `json:"files"`
	Dependencies           int                    `json:"dependencies"`
	TransitiveNodes        int                    `json:"transitive_nodes"`
	Vulnerabilities        int                    `json:"vulnerabilities"`
	VulnerableDependencies int                    `json:"vulnerable_dependencies"`
	Durations              map[Step]time.Duration `json:"durations"`
}

func emptyResult(runID string) *Result {
	return &Result{
		RunID:        runID,
		Dependencies: map[string][]deps.Dependency{},
		Stats:        Stats{Durations: map[Step]time.Duration{}},
	}
}
