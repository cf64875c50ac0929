package httputil

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func fastPolicy(n int) Policy {
	return Policy{MaxRetries: n, BaseDelay: time.Millisecond}
}

func TestPolicyDo(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := fastPolicy(3).Do(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = fastPolicy(3).Do(ctx, func() error {
		calls++
		return statusErr(404)
	})
	if !errors.Is(err, statusErr(404)) {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = fastPolicy(3).Do(ctx, func() error {
		calls++
		if calls < 2 {
			return statusErr(503)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestPolicyDoExhausted(t *testing.T) {
	calls := 0
	var retried []int
	p := fastPolicy(4)
	p.OnRetry = func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) }

	err := p.Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("attempt %d: %w", calls, statusErr(500))
	})
	if err == nil || err.Error() != "attempt 4: status 500" {
		t.Errorf("Should return last error, got %v", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
	if len(retried) != 3 {
		t.Errorf("OnRetry called %d times, want 3", len(retried))
	}
}

func TestPolicyDoContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DefaultPolicy().Do(ctx, func() error {
		return statusErr(503)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestBackoff(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
	for i, w := range want {
		if got := p.Backoff(i + 1); got != w {
			t.Errorf("Backoff(%d) = %v, want %v", i+1, got, w)
		}
	}

	p.MaxJitter = 200 * time.Millisecond
	for range 50 {
		got := p.Backoff(1)
		if got < 100*time.Millisecond || got >= 300*time.Millisecond {
			t.Fatalf("Backoff(1) with jitter = %v, want [100ms, 300ms)", got)
		}
	}
}

func TestPolicyDelayHonorsRetryAfter(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond}
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"plain", statusErr(503), 100 * time.Millisecond},
		{"retry after", fmt.Errorf("fetch: %w", &rgerrors.RateLimitedError{RetryAfter: 2}), 2 * time.Second},
		{"capped", &rgerrors.RateLimitedError{RetryAfter: 3600}, MaxRetryAfter},
		{"no hint", &rgerrors.RateLimitedError{}, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.delay(1, tt.err); got != tt.want {
				t.Errorf("delay = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"400", statusErr(400), false},
		{"401", statusErr(401), false},
		{"403", statusErr(403), false},
		{"404", statusErr(404), false},
		{"429", statusErr(429), true},
		{"500", statusErr(500), true},
		{"502 wrapped", fmt.Errorf("fetch: %w", statusErr(502)), true},
		{"503 with invalid in body", fmt.Errorf("upstream sent invalid response: %w", statusErr(503)), true},
		{"422 without keywords", fmt.Errorf("rejected: %w", statusErr(422)), false},
		{"rate limited code", &rgerrors.RateLimitedError{RetryAfter: 5}, true},
		{"plain network", errors.New("connection reset by peer"), true},
		{"not found message", errors.New("package Not Found"), false},
		{"invalid message", errors.New("invalid version string"), false},
		{"malformed message", errors.New("malformed JSON"), false},
		{"bad request message", errors.New("Bad Request"), false},
		{"permanent code", rgerrors.New(rgerrors.ErrCodeUnsupported, "ecosystem"), false},
		{"network code", rgerrors.New(rgerrors.ErrCodeNetwork, "timeout talking to host"), true},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("wrap: %w", context.DeadlineExceeded), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
