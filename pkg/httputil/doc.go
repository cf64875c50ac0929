// Package httputil provides the retry policy shared by every outbound call.
//
// # Retry
//
// [Policy] wraps a call with bounded exponential backoff:
//
//	p := httputil.NewPolicy(4, 800*time.Millisecond)
//	err := p.Do(ctx, func() error {
//	    return client.Get(ctx, url, &v)
//	})
//
// Before attempt n+1 the policy waits BaseDelay*2^(n-1) plus up to 200ms of
// jitter. Errors classified as permanent by [IsRetryable] propagate
// immediately:
//
//   - HTTP 4xx responses other than 429
//   - Errors without a status whose message mentions not found,
//     unauthorized, forbidden, bad request, invalid or malformed input
//   - Context cancellation
//
// Network failures, 5xx responses and 429 rate limits are retried until the
// budget is exhausted, after which the last error is returned. A 429 that
// names a Retry-After delays the next attempt by at least that long.
//
// Different call sites use different budgets: batch vulnerability queries
// use the 3 x 500ms default while deps.dev graph and OSV detail lookups use
// 4 x 800ms.
package httputil
