package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recordingPipeline struct {
	NoopPipelineHooks
	steps []string
}

func (r *recordingPipeline) OnStepStart(_ context.Context, _, step string) {
	r.steps = append(r.steps, step)
}

func TestRegisterDefaults(t *testing.T) {
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should default to NoopPipelineHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should default to NoopHTTPHooks")
	}
}

func TestRegisterPartial(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	rec := &recordingPipeline{}
	if !Register(rec) {
		t.Fatal("Register should accept PipelineHooks")
	}
	Pipeline().OnStepStart(context.Background(), "run-1", "PARSING_MANIFESTS")
	if len(rec.steps) != 1 || rec.steps[0] != "PARSING_MANIFESTS" {
		t.Errorf("steps = %v", rec.steps)
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("registering pipeline hooks should leave cache hooks alone")
	}
}

func TestRegisterRejectsUnrelated(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	if Register("not hooks") {
		t.Error("Register accepted a value implementing no hook set")
	}
	if Register(nil) {
		t.Error("Register accepted nil")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("rejected Register should not change hooks")
	}
}

func TestLogHooks(t *testing.T) {
	t.Cleanup(Reset)
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	h := NewLogHooks(logger)
	if !Register(h) {
		t.Fatal("LogHooks should implement the hook sets")
	}
	if Pipeline() != PipelineHooks(h) || Cache() != CacheHooks(h) || HTTP() != HTTPHooks(h) {
		t.Fatal("LogHooks should be installed for all three sets")
	}

	ctx := context.Background()
	Pipeline().OnStepComplete(ctx, "run-1", "FETCHING_TRANSITIVE_DEPENDENCIES", 3, 2*time.Second)
	Cache().OnCacheMiss(ctx, "osv")
	HTTP().OnResponse(ctx, "POST", "api.osv.dev", "/v1/querybatch", 503, time.Second)
	HTTP().OnError(ctx, "GET", "api.deps.dev", "/v3/systems/npm/packages/express", errors.New("reset"))

	out := buf.String()
	for _, want := range []string{"step complete", "issues=3", "cache miss", "namespace=osv", "status=503", "request failed", "err=reset"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
