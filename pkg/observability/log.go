package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements all
// three hook sets.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log under the "trace" prefix of logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("trace")}
}

func (h *LogHooks) OnStepStart(_ context.Context, runID, step string) {
	h.logger.Debug("step started", "run", runID, "step", step)
}

func (h *LogHooks) OnStepProgress(_ context.Context, runID, step string, percent float64) {
	h.logger.Debug("step progress", "run", runID, "step", step, "percent", int(percent))
}

func (h *LogHooks) OnStepComplete(_ context.Context, runID, step string, issues int, d time.Duration) {
	h.logger.Debug("step complete", "run", runID, "step", step, "issues", issues, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, namespace string) {
	h.logger.Debug("cache hit", "namespace", namespace)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, namespace string) {
	h.logger.Debug("cache miss", "namespace", namespace)
}

func (h *LogHooks) OnCacheSet(_ context.Context, namespace string, size int) {
	h.logger.Debug("cache set", "namespace", namespace, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}
