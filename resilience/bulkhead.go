package resilience

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

type BulkheadConfig struct {
	MaxConcurrent int // slots; GOMAXPROCS when zero
}

// Bulkhead limits concurrent operations to a fixed number of slots.
//
// Operations run on their own goroutine while holding a slot. If the caller's
// context ends first, Execute returns ctx.Err() immediately; the operation
// keeps its slot until it finishes and its result is dropped.
type Bulkhead struct {
	size int
	sem  *semaphore.Weighted

	active    atomic.Int64
	abandoned atomic.Int64
}

func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &Bulkhead{
		size: config.MaxConcurrent,
		sem:  semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Execute waits for a free slot and runs op in it.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		b.sem.Release(1)
		return err
	}

	b.active.Add(1)
	done := make(chan error, 1)
	go func() {
		defer func() {
			b.active.Add(-1)
			b.sem.Release(1)
		}()
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		b.abandoned.Add(1)
		return ctx.Err()
	}
}

// Metrics is a point-in-time snapshot of slot usage.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	active := int(b.active.Load())
	return BulkheadMetrics{
		Active:        active,
		Available:     b.size - active,
		MaxConcurrent: b.size,
		Abandoned:     b.abandoned.Load(),
	}
}

type BulkheadMetrics struct {
	Active        int
	Available     int
	MaxConcurrent int
	// Abandoned counts operations whose caller gave up before they finished.
	Abandoned int64
}
