// Package observability lets callers watch an analysis run without the
// pipeline depending on a metrics or tracing backend.
//
// Three hook sets are emitted: [PipelineHooks] for step transitions and
// progress, [CacheHooks] for the response cache and [HTTPHooks] for upstream
// API calls. Every set defaults to a no-op. A process installs its own
// implementation once at startup with [Register]; [LogHooks] is the
// implementation the CLI installs under --verbose.
//
//	observability.Register(observability.NewLogHooks(logger))
//
// Libraries emit through the accessors:
//
//	observability.Pipeline().OnStepStart(ctx, runID, step)
//	observability.Cache().OnCacheMiss(ctx, "osv")
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the analysis pipeline.
type PipelineHooks interface {
	OnStepStart(ctx context.Context, runID, step string)
	// OnStepProgress reports the percentage of step completed so far.
	OnStepProgress(ctx context.Context, runID, step string, percent float64)
	// OnStepComplete reports how many ledger issues the step recorded.
	OnStepComplete(ctx context.Context, runID, step string, issues int, duration time.Duration)
}

// CacheHooks receives response cache events, keyed by client namespace
// ("npm", "pypi", "depsdev", "osv").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, namespace string)
	OnCacheMiss(ctx context.Context, namespace string)
	OnCacheSet(ctx context.Context, namespace string, size int)
}

// HTTPHooks receives events for every upstream request.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError reports transport failures; non-2xx responses go to OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStepStart(context.Context, string, string)                        {}
func (NoopPipelineHooks) OnStepProgress(context.Context, string, string, float64)            {}
func (NoopPipelineHooks) OnStepComplete(context.Context, string, string, int, time.Duration) {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// registry is replaced as a whole so readers never see a partial update.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var current atomic.Pointer[registry]

func init() { Reset() }

// Register installs h for every hook set it implements and reports whether
// it implemented any. Sets h does not implement keep their current hooks.
func Register(h any) bool {
	for {
		old := current.Load()
		next := *old
		matched := false
		if p, ok := h.(PipelineHooks); ok {
			next.pipeline, matched = p, true
		}
		if c, ok := h.(CacheHooks); ok {
			next.cache, matched = c, true
		}
		if x, ok := h.(HTTPHooks); ok {
			next.http, matched = x, true
		}
		if !matched {
			return false
		}
		if current.CompareAndSwap(old, &next) {
			return true
		}
	}
}

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }
