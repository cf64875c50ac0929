package httputil

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	rgerrors "github.com/matzehuels/riskgraph/pkg/errors"
)

// Default retry budget shared by outbound calls that do not override it.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond
	DefaultMaxJitter  = 200 * time.Millisecond

	// MaxRetryAfter caps how long a server's Retry-After can stall a retry.
	MaxRetryAfter = 30 * time.Second
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	HTTPStatus() int
}

// Policy is a bounded exponential-backoff retry budget.
//
// MaxRetries bounds the total number of attempts, so a policy of 3 calls fn
// at most three times. Before attempt n+1 the policy sleeps
// BaseDelay*2^(n-1) plus a uniform jitter in [0, MaxJitter). When the error
// wraps an [rgerrors.RateLimitedError], the sleep is at least its
// RetryAfter, capped at MaxRetryAfter.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration

	// OnRetry, if set, is called before each backoff sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns the 3 x 500ms policy.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay, MaxJitter: DefaultMaxJitter}
}

// NewPolicy returns a policy with the given budget and the default jitter.
func NewPolicy(maxRetries int, baseDelay time.Duration) Policy {
	return Policy{MaxRetries: maxRetries, BaseDelay: baseDelay, MaxJitter: DefaultMaxJitter}
}

// Do executes fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is exhausted. It returns the last error, or ctx.Err() if
// the context ends while waiting.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.MaxRetries, 1)
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if attempt == attempts {
			break
		}
		delay := p.delay(attempt, lastErr)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, lastErr)
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return lastErr
}

// Backoff returns the sleep before the attempt following attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay << max(attempt-1, 0)
	if p.MaxJitter > 0 {
		d += rand.N(p.MaxJitter)
	}
	return d
}

// delay is Backoff stretched to a rate-limited server's Retry-After.
func (p Policy) delay(attempt int, err error) time.Duration {
	d := p.Backoff(attempt)
	var rl *rgerrors.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		d = max(d, min(time.Duration(rl.RetryAfter)*time.Second, MaxRetryAfter))
	}
	return d
}

var permanentPhrases = []string{
	"not found",
	"unauthorized",
	"forbidden",
	"bad request",
	"invalid",
	"malformed",
}

// IsRetryable reports whether err is worth another attempt.
//
// An error carrying an HTTP status is judged by the status alone: 429 and
// 5xx are retried, every other status is permanent. Without a status, a
// permanent [rgerrors.Code] or a message mentioning not-found,
// unauthorized, forbidden, bad-request, invalid or malformed input is
// permanent. Context cancellation is never retried. Everything else is.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		status := sc.HTTPStatus()
		return status == 429 || status >= 500
	}

	if rgerrors.GetCode(err).Permanent() {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range permanentPhrases {
		if strings.Contains(msg, phrase) {
			return false
		}
	}
	return true
}
