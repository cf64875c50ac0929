// Package batch runs bounded, wave-based fan-out over a list of items.
//
// Items are split into ordered batches of a fixed size. Up to Concurrency
// batches form a wave; every item of every batch in a wave runs in its own
// goroutine, and the next wave starts only after the current one finishes.
// After each wave the progress callback receives the percentage of batches
// completed so far.
//
// Processors never abort the run: each item yields a [Result] carrying
// either a value or an error, and callers split successes from failures
// after the fact with [Split].
package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Defaults used when Options leaves a field at zero.
const (
	DefaultSize        = 10
	DefaultConcurrency = 5
)

// Options bounds a run.
type Options struct {
	Size        int // items per batch
	Concurrency int // batches per wave
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Result is the tagged outcome of processing one item.
type Result[T, R any] struct {
	Item  T
	Value R
	Err   error
}

// OK reports whether the item succeeded.
func (r Result[T, R]) OK() bool { return r.Err == nil }

// Processor handles a single item. Returning an error marks only that item
// as failed.
type Processor[T, R any] func(ctx context.Context, item T) (R, error)

// Progress receives the completed percentage (0-100] after each wave.
type Progress func(percent float64)

// Batches partitions items into ordered chunks of at most size items.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultSize
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		out = append(out, items[i:min(i+size, len(items))])
	}
	return out
}

// Waves returns the number of progress callbacks a run over n items makes.
func Waves(n int, opts Options) int {
	opts = opts.WithDefaults()
	batches := (n + opts.Size - 1) / opts.Size
	return (batches + opts.Concurrency - 1) / opts.Concurrency
}

// Process runs fn over items and returns one Result per item.
//
// Results are ordered by batch, and within a batch by completion order.
// If ctx is cancelled, remaining waves are skipped and the items they held
// are reported with ctx.Err().
func Process[T, R any](ctx context.Context, items []T, opts Options, fn Processor[T, R], progress Progress) []Result[T, R] {
	opts = opts.WithDefaults()
	batches := Batches(items, opts.Size)
	total := len(batches)
	out := make([]Result[T, R], 0, len(items))

	for start := 0; start < total; start += opts.Concurrency {
		wave := batches[start:min(start+opts.Concurrency, total)]

		if err := ctx.Err(); err != nil {
			for _, b := range batches[start:] {
				for _, item := range b {
					out = append(out, Result[T, R]{Item: item, Err: err})
				}
			}
			return out
		}

		perBatch := make([][]Result[T, R], len(wave))
		var g errgroup.Group
		for i, b := range wave {
			var mu sync.Mutex
			perBatch[i] = make([]Result[T, R], 0, len(b))
			for _, item := range b {
				g.Go(func() error {
					v, err := fn(ctx, item)
					mu.Lock()
					perBatch[i] = append(perBatch[i], Result[T, R]{Item: item, Value: v, Err: err})
					mu.Unlock()
					return nil
				})
			}
		}
		_ = g.Wait()

		for _, rs := range perBatch {
			out = append(out, rs...)
		}
		if progress != nil {
			done := start + len(wave)
			progress(float64(done) / float64(total) * 100)
		}
	}
	return out
}

// Split separates successful values from failed results.
func Split[T, R any](results []Result[T, R]) (ok []R, failed []Result[T, R]) {
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		ok = append(ok, r.Value)
	}
	return ok, failed
}
