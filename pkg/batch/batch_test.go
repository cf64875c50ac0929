package batch

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
)

func TestBatches(t *testing.T) {
	tests := []struct {
		n, size int
		want    []int
	}{
		{0, 3, nil},
		{1, 3, []int{1}},
		{3, 3, []int{3}},
		{7, 3, []int{3, 3, 1}},
		{10, 5, []int{5, 5}},
	}

	for _, tt := range tests {
		items := make([]int, tt.n)
		var got []int
		for _, b := range Batches(items, tt.size) {
			got = append(got, len(b))
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("Batches(%d, %d) sizes = %v, want %v", tt.n, tt.size, got, tt.want)
		}
	}
}

func TestProcessCallsAndWaves(t *testing.T) {
	tests := []struct {
		name string
		n    int
		opts Options
	}{
		{"single wave", 10, Options{Size: 5, Concurrency: 4}},
		{"many waves", 103, Options{Size: 15, Concurrency: 6}},
		{"one per batch", 7, Options{Size: 1, Concurrency: 2}},
		{"empty", 0, Options{Size: 50, Concurrency: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.n)
			for i := range items {
				items[i] = i
			}

			var calls atomic.Int32
			var reports []float64
			results := Process(context.Background(), items, tt.opts,
				func(_ context.Context, i int) (int, error) {
					calls.Add(1)
					return i * 2, nil
				},
				func(p float64) { reports = append(reports, p) })

			if int(calls.Load()) != tt.n {
				t.Errorf("processor called %d times, want %d", calls.Load(), tt.n)
			}
			if len(results) != tt.n {
				t.Errorf("got %d results, want %d", len(results), tt.n)
			}
			if want := Waves(tt.n, tt.opts); len(reports) != want {
				t.Errorf("got %d progress reports, want %d", len(reports), want)
			}
			if len(reports) > 0 && reports[len(reports)-1] != 100 {
				t.Errorf("final progress = %v, want 100", reports[len(reports)-1])
			}
			if !slices.IsSorted(reports) {
				t.Errorf("progress not monotonic: %v", reports)
			}
		})
	}
}

func TestProcessPreservesBatchOrder(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
	results := Process(context.Background(), items, Options{Size: 3, Concurrency: 3},
		func(_ context.Context, i int) (int, error) { return i, nil }, nil)

	for b := range 3 {
		var got []int
		for _, r := range results[b*3 : b*3+3] {
			got = append(got, r.Value)
		}
		slices.Sort(got)
		want := []int{b * 3, b*3 + 1, b*3 + 2}
		if !slices.Equal(got, want) {
			t.Errorf("batch %d values = %v, want %v", b, got, want)
		}
	}
}

func TestProcessIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	items := []string{"a", "b", "c", "d"}
	results := Process(context.Background(), items, Options{Size: 2, Concurrency: 1},
		func(_ context.Context, s string) (string, error) {
			if s == "b" {
				return "", boom
			}
			return s + "!", nil
		}, nil)

	ok, failed := Split(results)
	if len(ok) != 3 {
		t.Errorf("got %d successes, want 3", len(ok))
	}
	if len(failed) != 1 || failed[0].Item != "b" || !errors.Is(failed[0].Err, boom) {
		t.Errorf("failed = %+v, want single failure for b", failed)
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := make([]int, 6)

	var calls atomic.Int32
	results := Process(ctx, items, Options{Size: 2, Concurrency: 1},
		func(_ context.Context, i int) (int, error) {
			if calls.Add(1) == 2 {
				cancel()
			}
			return i, nil
		}, nil)

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	if calls.Load() != 2 {
		t.Errorf("processor called %d times after cancel, want 2", calls.Load())
	}
	_, failed := Split(results)
	if len(failed) != 4 {
		t.Errorf("got %d cancelled items, want 4", len(failed))
	}
}

func TestWaves(t *testing.T) {
	if got := Waves(103, Options{Size: 15, Concurrency: 6}); got != 2 {
		t.Errorf("Waves(103, 15x6) = %d, want 2", got)
	}
	if got := Waves(0, Options{Size: 15, Concurrency: 6}); got != 0 {
		t.Errorf("Waves(0) = %d, want 0", got)
	}
}
