package vulns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ossf/osv-schema/bindings/go/osvschema"

	"github.com/matzehuels/riskgraph/pkg/batch"
	"github.com/matzehuels/riskgraph/pkg/deps"
	"github.com/matzehuels/riskgraph/pkg/integrations/osv"
)

// Defaults for the OSV fan-out.
const (
	DefaultScanBatchSize       = 50
	DefaultScanConcurrency     = 50
	DefaultDetailBatchSize     = 50
	DefaultDetailConcurrency   = 10
	DefaultMaxPaginationRounds = 100
)

// ErrScanFailed is returned when every ID discovery request failed, so no
// dependency could be checked.
var ErrScanFailed = errors.New("vulnerability scan failed")

// Database is the subset of the OSV API the enricher uses. [osv.Client]
// implements it.
type Database interface {
	QueryBatch(ctx context.Context, queries []osv.Query) ([]osv.BatchResult, error)
	GetVuln(ctx context.Context, id string, refresh bool) (*osvschema.Vulnerability, error)
}

// Options configures an Enricher.
type Options struct {
	// Scan bounds ID discovery: Size queries per querybatch request and
	// Concurrency requests in flight.
	Scan batch.Options
	// Detail bounds the per-ID detail fetch.
	Detail batch.Options
	// MaxPaginationRounds stops a runaway page-token chain.
	MaxPaginationRounds int
	Refresh             bool

	OnScanProgress   batch.Progress
	OnDetailProgress batch.Progress
	Logger           *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Scan.Size <= 0 {
		o.Scan.Size = DefaultScanBatchSize
	}
	if o.Scan.Concurrency <= 0 {
		o.Scan.Concurrency = DefaultScanConcurrency
	}
	if o.Detail.Size <= 0 {
		o.Detail.Size = DefaultDetailBatchSize
	}
	if o.Detail.Concurrency <= 0 {
		o.Detail.Concurrency = DefaultDetailConcurrency
	}
	if o.MaxPaginationRounds <= 0 {
		o.MaxPaginationRounds = DefaultMaxPaginationRounds
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Enricher attaches OSV advisories to dependencies.
type Enricher struct {
	db   Database
	opts Options
}

// NewEnricher creates an Enricher.
func NewEnricher(db Database, opts Options) *Enricher {
	return &Enricher{db: db, opts: opts.withDefaults()}
}

// Stats summarizes one enrichment.
type Stats struct {
	Scanned         int // dependencies and graph nodes queried
	Vulnerable      int // of those, how many matched at least one advisory
	UniqueIDs       int
	DetailsFetched  int
	PaginationCalls int // querybatch requests beyond the first round
}

// Enrich returns a copy of dependencies in which every main dependency and
// every transitive graph node carries its advisories. Entries with an
// unknown version or ecosystem are not queried and end with an empty list.
//
// Enrichment runs in two phases. ID discovery posts one query per
// dependency, following next_page_token until no query has a further page,
// and attaches ID-only placeholders. The detail fetch then loads each
// unique ID once and replaces the placeholder everywhere it appears. IDs
// whose details could not be fetched keep their placeholder.
//
// Failed requests are recorded in ledger. The error is non-nil when ctx
// ends the run or when every discovery request failed; the returned
// dependencies are then unenriched.
func (e *Enricher) Enrich(ctx context.Context, dependencies []deps.Dependency, ledger *deps.Ledger) ([]deps.Dependency, Stats, error) {
	out := make([]deps.Dependency, len(dependencies))
	var targets []*deps.Dependency
	add := func(d *deps.Dependency) {
		d.Vulnerabilities = []deps.Vulnerability{}
		if queryable(d) {
			targets = append(targets, d)
		}
	}
	for i := range dependencies {
		out[i] = dependencies[i].Clone()
		add(&out[i])
		if t := out[i].Transitive; t != nil {
			for j := range t.Nodes {
				add(&t.Nodes[j])
			}
		}
	}

	stats := Stats{Scanned: len(targets)}
	start := time.Now()
	ids, err := e.discover(ctx, targets, ledger, &stats)
	if err != nil {
		return dependencies, stats, err
	}
	stats.UniqueIDs = len(ids)
	e.opts.Logger.Info("vulnerability ids discovered",
		"count", len(ids),
		"dependency", len(targets),
		"duration", time.Since(start).Round(time.Millisecond))

	start = time.Now()
	details, err := e.fetchDetails(ctx, ids, ledger)
	if err != nil {
		return dependencies, stats, err
	}
	stats.DetailsFetched = len(details)

	for _, d := range targets {
		for i, v := range d.Vulnerabilities {
			if full, ok := details[v.ID]; ok {
				d.Vulnerabilities[i] = full
			}
		}
		if d.Vulnerable() {
			stats.Vulnerable++
		}
	}
	e.opts.Logger.Info("vulnerability details fetched",
		"count", len(details),
		"duration", time.Since(start).Round(time.Millisecond))
	return out, stats, nil
}

// chunkResult holds the IDs found for each dependency of one querybatch
// chunk, aligned with the chunk.
type chunkResult struct {
	ids   [][]string
	pages int
}

func (e *Enricher) discover(ctx context.Context, targets []*deps.Dependency, ledger *deps.Ledger, stats *Stats) ([]string, error) {
	chunks := batch.Batches(targets, e.opts.Scan.Size)
	waves := batch.Options{Size: e.opts.Scan.Concurrency, Concurrency: 1}

	results := batch.Process(ctx, chunks, waves, e.scanChunk, e.opts.OnScanProgress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		ids    []string
		seen   = make(map[string]bool)
		failed int
	)
	for _, res := range results {
		if !res.OK() {
			ledger.Recordf(deps.StepVulnerabilityScan, "querybatch for %d dependencies starting at %s: %v",
				len(res.Item), res.Item[0].Key(), res.Err)
		}
		if res.Value == nil {
			failed++
			continue
		}
		stats.PaginationCalls += res.Value.pages
		for j, found := range res.Value.ids {
			d := res.Item[j]
			for _, id := range found {
				if !hasVuln(d, id) {
					d.Vulnerabilities = append(d.Vulnerabilities, Placeholder(id))
				}
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	if len(results) > 0 && failed == len(results) {
		return nil, fmt.Errorf("%w: all %d querybatch requests failed", ErrScanFailed, failed)
	}
	return ids, nil
}

// scanChunk queries one chunk and follows page tokens until none remain.
// On error it returns the IDs gathered so far.
func (e *Enricher) scanChunk(ctx context.Context, chunk []*deps.Dependency) (*chunkResult, error) {
	res := &chunkResult{ids: make([][]string, len(chunk))}

	pending := make([]int, len(chunk))
	tokens := make([]string, len(chunk))
	for i := range chunk {
		pending[i] = i
	}

	for round := 0; len(pending) > 0; round++ {
		if round >= e.opts.MaxPaginationRounds {
			return res, fmt.Errorf("pagination did not finish after %d rounds", round)
		}
		if round > 0 {
			res.pages++
		}

		queries := make([]osv.Query, len(pending))
		for qi, i := range pending {
			queries[qi] = osv.Query{
				Package:   osv.Package{Name: chunk[i].Name, Ecosystem: chunk[i].Ecosystem.OSV()},
				Version:   chunk[i].Version,
				PageToken: tokens[i],
			}
		}

		results, err := e.db.QueryBatch(ctx, queries)
		if err != nil {
			if round == 0 {
				return nil, err
			}
			return res, err
		}

		var next []int
		for qi, r := range results {
			i := pending[qi]
			for _, v := range r.Vulns {
				res.ids[i] = append(res.ids[i], v.ID)
			}
			tokens[i] = r.NextPageToken
			if r.NextPageToken != "" {
				next = append(next, i)
			}
		}
		pending = next
	}
	return res, nil
}

func (e *Enricher) fetchDetails(ctx context.Context, ids []string, ledger *deps.Ledger) (map[string]deps.Vulnerability, error) {
	results := batch.Process(ctx, ids, e.opts.Detail, func(ctx context.Context, id string) (deps.Vulnerability, error) {
		v, err := e.db.GetVuln(ctx, id, e.opts.Refresh)
		if err != nil {
			return deps.Vulnerability{}, err
		}
		return FromOSV(v), nil
	}, e.opts.OnDetailProgress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details := make(map[string]deps.Vulnerability, len(results))
	for _, res := range results {
		if !res.OK() {
			ledger.Recordf(deps.StepVulnDetailsFetch, "%s: %v", res.Item, res.Err)
			continue
		}
		details[res.Item] = res.Value
	}
	return details, nil
}

// queryable reports whether OSV can be asked about d. Without a concrete
// version OSV would match every release, and unknown ecosystems are
// rejected.
func queryable(d *deps.Dependency) bool {
	return d.Version != deps.VersionUnknown && d.Ecosystem.Known()
}

func hasVuln(d *deps.Dependency, id string) bool {
	for _, v := range d.Vulnerabilities {
		if v.ID == id {
			return true
		}
	}
	return false
}
