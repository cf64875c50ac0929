package deps

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"
)

// Step names under which the ledger groups issues.
const (
	StepFileParsing       = "File Parsing"
	StepTransitiveFetch   = "Transitive Dependencies Fetch"
	StepVulnerabilityScan = "Vulnerability Scanning"
	StepVulnDetailsFetch  = "Vulnerability Details Fetch"
)

// Ledger collects non-fatal issues per step during one analysis run.
// Entries are only appended. It is safe for concurrent use.
type Ledger struct {
	mu     sync.Mutex
	steps  map[string][]string
	order  []string
	logger *log.Logger
}

// NewLedger creates an empty ledger. Each recorded issue is also logged at
// warn level when logger is non-nil.
func NewLedger(logger *log.Logger) *Ledger {
	return &Ledger{steps: make(map[string][]string), logger: logger}
}

// Record appends msg under step.
func (l *Ledger) Record(step, msg string) {
	l.mu.Lock()
	if _, ok := l.steps[step]; !ok {
		l.order = append(l.order, step)
	}
	l.steps[step] = append(l.steps[step], msg)
	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Warn(msg, "step", step)
	}
}

// Recordf formats and appends a message under step.
func (l *Ledger) Recordf(step, format string, args ...any) {
	l.Record(step, fmt.Sprintf(format, args...))
}

// Issues returns a copy of the messages recorded under step.
func (l *Ledger) Issues(step string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.steps[step])
}

// Count returns the number of issues recorded under step.
func (l *Ledger) Count(step string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.steps[step])
}

// Empty reports whether nothing has been recorded.
func (l *Ledger) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order) == 0
}

// Summary returns one line per step, in the order steps first recorded an
// issue. A single issue is reported verbatim; several are condensed to
// "{step}: {count} issues encountered ({first})".
func (l *Ledger) Summary() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.order))
	for _, step := range l.order {
		msgs := l.steps[step]
		if len(msgs) == 1 {
			out = append(out, msgs[0])
			continue
		}
		out = append(out, fmt.Sprintf("%s: %d issues encountered (%s)", step, len(msgs), msgs[0]))
	}
	return out
}

// Err combines the summary lines into one error, or nil when empty.
func (l *Ledger) Err() error {
	var err error
	for _, line := range l.Summary() {
		err = multierr.Append(err, errors.New(line))
	}
	return err
}
