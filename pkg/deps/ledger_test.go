package deps

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
)

func TestLedgerSummary(t *testing.T) {
	l := NewLedger(nil)
	if !l.Empty() || l.Err() != nil {
		t.Fatal("new ledger should be empty")
	}

	l.Record(StepFileParsing, "pom.xml: unexpected EOF")
	l.Record(StepTransitiveFetch, "qs@6.10.3: status 503")
	l.Recordf(StepTransitiveFetch, "%s: %s", "debug@2.6.9", "timeout")
	l.Record(StepTransitiveFetch, "ms@2.0.0: timeout")

	want := []string{
		"pom.xml: unexpected EOF",
		"Transitive Dependencies Fetch: 3 issues encountered (qs@6.10.3: status 503)",
	}
	if diff := cmp.Diff(want, l.Summary()); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
	if l.Count(StepTransitiveFetch) != 3 {
		t.Errorf("Count = %d, want 3", l.Count(StepTransitiveFetch))
	}

	errs := multierr.Errors(l.Err())
	if len(errs) != 2 || !strings.Contains(errs[1].Error(), "3 issues") {
		t.Errorf("Err() = %v", errs)
	}
}

func TestLedgerConcurrentRecord(t *testing.T) {
	l := NewLedger(nil)
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record(StepVulnerabilityScan, "batch failed")
		}()
	}
	wg.Wait()
	if l.Count(StepVulnerabilityScan) != 100 {
		t.Errorf("Count = %d, want 100", l.Count(StepVulnerabilityScan))
	}
	if len(l.Summary()) != 1 {
		t.Errorf("Summary lines = %d, want 1", len(l.Summary()))
	}
}

func TestLedgerIssuesIsCopy(t *testing.T) {
	l := NewLedger(nil)
	l.Record(StepVulnDetailsFetch, "GHSA-1: not found")
	got := l.Issues(StepVulnDetailsFetch)
	got[0] = "changed"
	if l.Issues(StepVulnDetailsFetch)[0] != "GHSA-1: not found" {
		t.Error("Issues leaked internal state")
	}
}
