package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/riskgraph/pkg/batch"
	"github.com/matzehuels/riskgraph/pkg/cache"
	"github.com/matzehuels/riskgraph/pkg/deps"
	"github.com/matzehuels/riskgraph/pkg/deps/dart"
	"github.com/matzehuels/riskgraph/pkg/deps/java"
	"github.com/matzehuels/riskgraph/pkg/deps/javascript"
	"github.com/matzehuels/riskgraph/pkg/deps/php"
	"github.com/matzehuels/riskgraph/pkg/deps/python"
	"github.com/matzehuels/riskgraph/pkg/deps/ruby"
	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
	"github.com/matzehuels/riskgraph/pkg/integrations/depsdev"
	"github.com/matzehuels/riskgraph/pkg/integrations/npm"
	"github.com/matzehuels/riskgraph/pkg/integrations/osv"
	"github.com/matzehuels/riskgraph/pkg/integrations/pypi"
	"github.com/matzehuels/riskgraph/pkg/observability"
	"github.com/matzehuels/riskgraph/pkg/riskgraph"
	"github.com/matzehuels/riskgraph/pkg/transitive"
	"github.com/matzehuels/riskgraph/pkg/vulns"
)

// Languages lists every supported language in detection order.
var Languages = []*deps.Language{
	javascript.Language,
	python.Language,
	java.Language,
	ruby.Language,
	php.Language,
	dart.Language,
}

// Runner executes analysis runs against shared clients.
//
// The Runner holds no per-run state. Multiple goroutines can safely call
// Analyze on the same Runner; each call gets its own store and ledger.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger

	opts       Options
	registries deps.Registries
	resolver   transitive.GraphFetcher
	database   vulns.Database
}

// NewRunner creates a runner. A nil cache disables caching and a nil
// logger selects log.Default().
func NewRunner(c cache.Cache, opts Options, logger *log.Logger) (*Runner, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Logger: logger,
		opts:   opts,
		registries: deps.Registries{
			NPM:  registryLookup{npm.NewClient(c, opts.NPMURL), opts.Refresh},
			PyPI: registryLookup{pypi.NewClient(c, opts.PyPIURL), opts.Refresh},
		},
		resolver: depsdev.NewClient(c, opts.DepsDevURL, opts.TransitiveRetry.Policy()),
		database: osv.NewClient(c, opts.OSVURL, opts.ListRetry.Policy(), opts.DetailRetry.Policy()),
	}, nil
}

// Options returns the effective options after defaults.
func (r *Runner) Options() Options { return r.opts }

// Close releases the runner's cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// registryLookup adapts a registry client to deps.VersionLookup.
type registryLookup struct {
	client interface {
		LatestVersion(ctx context.Context, pkg string, refresh bool) (string, error)
	}
	refresh bool
}

func (l registryLookup) LatestVersion(ctx context.Context, pkg string, refresh bool) (string, error) {
	return l.client.LatestVersion(ctx, pkg, l.refresh || refresh)
}

// =============================================================================
// Analysis
// =============================================================================

// AnalyzeDir collects the manifests below root and analyzes them. Files
// that cannot be read are recorded as parse issues. If root itself cannot
// be walked, an empty result is returned along with the error.
func (r *Runner) AnalyzeDir(ctx context.Context, root string, progress Progress) (*Result, error) {
	files, err := CollectManifests(root, Languages)
	if rgerrors.Is(err, rgerrors.ErrCodeInvalidPath) {
		res := emptyResult(uuid.NewString())
		res.Error = []string{err.Error()}
		return res, err
	}
	return r.analyze(ctx, files, err, progress)
}

// Analyze runs all six steps over files and returns the risk-filtered
// result. Non-fatal problems end up in Result.Error. The returned error is
// non-nil only when ctx ends the run.
func (r *Runner) Analyze(ctx context.Context, files []deps.ManifestFile, progress Progress) (*Result, error) {
	return r.analyze(ctx, files, nil, progress)
}

func (r *Runner) analyze(ctx context.Context, files []deps.ManifestFile, collectErr error, progress Progress) (*Result, error) {
	res := emptyResult(uuid.NewString())
	logger := r.Logger.With("run", res.RunID)
	ledger := deps.NewLedger(logger)
	tr := newTracker(ctx, res, ledger, progress)
	defer tr.finish()

	logger.Info("analysis started", "files", len(files))
	start := time.Now()

	// Step 1: group files by language
	tr.begin(StepParsingManifests)
	for _, err := range multierr.Errors(collectErr) {
		ledger.Recordf(deps.StepFileParsing, "%v", err)
	}
	groups := groupByLanguage(files, ledger)
	res.Stats.Files = len(files)
	tr.progress(100)

	// Step 2: parse every language concurrently into one store
	tr.begin(StepParsingDependencies)
	store := deps.NewStore()
	if err := r.parse(ctx, groups, store, ledger); err != nil {
		return res, err
	}
	canonical := store.Dependencies()
	res.Stats.Dependencies = len(canonical)
	logger.Info("parsed dependencies", "count", len(canonical), "languages", len(groups))
	tr.progress(100)

	// Step 3: transitive graphs
	tr.begin(StepFetchingTransitive)
	resolver := transitive.NewResolver(r.resolver, transitive.Options{
		Batch:    batch.Options{Size: r.opts.TransitiveBatchSize, Concurrency: r.opts.TransitiveConcurrency},
		Refresh:  r.opts.Refresh,
		Progress: tr.progress,
		Logger:   logger,
	})
	resolved, err := resolver.Resolve(ctx, canonical, ledger)
	if err != nil {
		return res, err
	}
	for i := range resolved {
		if t := resolved[i].Transitive; t != nil {
			res.Stats.TransitiveNodes += len(t.Nodes)
		}
	}

	// Steps 4 and 5: advisories
	tr.begin(StepFetchingVulnIDs)
	enricher := vulns.NewEnricher(r.database, vulns.Options{
		Scan:                batch.Options{Size: r.opts.VulnBatchSize, Concurrency: r.opts.VulnConcurrency},
		Detail:              batch.Options{Size: r.opts.DetailBatchSize, Concurrency: r.opts.DetailConcurrency},
		MaxPaginationRounds: r.opts.MaxPaginationRounds,
		Refresh:             r.opts.Refresh,
		OnScanProgress:      tr.progress,
		OnDetailProgress:    tr.stepProgress(StepFetchingVulnDetails),
		Logger:              logger,
	})
	enriched, stats, err := enricher.Enrich(ctx, resolved, ledger)
	switch {
	case ctx.Err() != nil:
		return res, ctx.Err()
	case err != nil:
		ledger.Recordf(deps.StepVulnerabilityScan, "%v", err)
		enriched = resolved
	}
	// Without advisories every dependency looks clean, so the risk filters
	// would drop everything.
	unscanned := err != nil
	res.Stats.Vulnerabilities = stats.UniqueIDs
	res.Stats.VulnerableDependencies = stats.Vulnerable
	tr.begin(StepFetchingVulnDetails)

	// Step 6: prune graphs, project back onto files
	tr.begin(StepFinalisingResults)
	if unscanned {
		logger.Warn("vulnerability scan failed, returning unfiltered dependencies")
	} else {
		riskgraph.FilterVulnerableTransitives(enriched, logger)
	}
	byFile := store.MapDependenciesToFiles(enriched)
	if !r.opts.IncludeClean && !unscanned {
		byFile = riskgraph.FilterMainDependencies(byFile)
	}
	res.Dependencies = byFile
	tr.progress(100)
	tr.finish()

	res.Error = ledger.Summary()
	if err := ledger.Err(); err != nil {
		logger.Debug("analysis issues", "err", err)
	}
	logger.Info("analysis finished",
		"files", len(byFile),
		"vulnerabilities", res.Stats.Vulnerabilities,
		"issues", len(res.Error),
		"duration", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// groupByLanguage assigns each file to the first language that supports
// it. Files no language supports are recorded as parse issues.
func groupByLanguage(files []deps.ManifestFile, ledger *deps.Ledger) map[*deps.Language][]deps.ManifestFile {
	groups := make(map[*deps.Language][]deps.ManifestFile)
	for _, f := range files {
		lang := languageFor(f.Name())
		if lang == nil {
			ledger.Recordf(deps.StepFileParsing, "%s: unsupported manifest", f.Path)
			continue
		}
		groups[lang] = append(groups[lang], f)
	}
	return groups
}

func languageFor(name string) *deps.Language {
	for _, lang := range Languages {
		if lang.Supports(name) {
			return lang
		}
	}
	return nil
}

// parse runs each language's parsers in its own goroutine. A language
// that fails as a whole is recorded; only cancellation aborts the step.
func (r *Runner) parse(ctx context.Context, groups map[*deps.Language][]deps.ManifestFile, store *deps.Store, ledger *deps.Ledger) error {
	g, ctx := errgroup.WithContext(ctx)
	for lang, files := range groups {
		g.Go(func() error {
			err := lang.Parse(ctx, files, r.registries, store, ledger)
			if err != nil && ctx.Err() == nil {
				ledger.Recordf(deps.StepFileParsing, "%s: %v", lang.Name, err)
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// =============================================================================
// Step tracking
// =============================================================================

// tracker reports step transitions to the progress callback, the pipeline
// hooks and the result's duration table.
type tracker struct {
	ctx      context.Context
	res      *Result
	ledger   *deps.Ledger
	callback Progress

	mu      sync.Mutex
	current Step
	started time.Time
	last    float64
}

func newTracker(ctx context.Context, res *Result, ledger *deps.Ledger, cb Progress) *tracker {
	return &tracker{ctx: ctx, res: res, ledger: ledger, callback: cb}
}

// begin closes the current step and opens step. Opening the step that is
// already current is a no-op.
func (t *tracker) begin(step Step) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == step {
		return
	}
	t.completeLocked()
	t.current = step
	t.started = time.Now()
	t.last = 0
	observability.Pipeline().OnStepStart(t.ctx, t.res.RunID, string(step))
	t.emitLocked(0)
}

// progress reports percent for the current step. Regressions are ignored.
func (t *tracker) progress(percent float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == "" || percent <= t.last {
		return
	}
	t.last = percent
	t.emitLocked(percent)
}

// stepProgress returns a callback that first switches to step.
func (t *tracker) stepProgress(step Step) batch.Progress {
	return func(percent float64) {
		t.begin(step)
		t.progress(percent)
	}
}

// finish closes the current step.
func (t *tracker) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completeLocked()
	t.current = ""
}

func (t *tracker) completeLocked() {
	if t.current == "" {
		return
	}
	if t.last < 100 {
		t.last = 100
		t.emitLocked(100)
	}
	d := time.Since(t.started)
	t.res.Stats.Durations[t.current] = d
	issues := 0
	if ls := t.current.ledgerStep(); ls != "" {
		issues = t.ledger.Count(ls)
	}
	observability.Pipeline().OnStepComplete(t.ctx, t.res.RunID, string(t.current), issues, d)
}

func (t *tracker) emitLocked(percent float64) {
	observability.Pipeline().OnStepProgress(t.ctx, t.res.RunID, string(t.current), percent)
	if t.callback != nil {
		t.callback(t.current, percent)
	}
}
