package resolve

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// PoolConfig bounds the existence-check pool.
type PoolConfig struct {
	MaxConcurrent int // maximum in-flight filesystem checks (default: 10)
}

// DefaultPoolConfig returns the stock pool bounds.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConcurrent: 10,
	}
}

// Pool runs filesystem checks with bounded parallelism. A semaphore caps the
// outstanding checks and results drain as they complete, which keeps the lanes
// full when the base directory is a network mount and each stat carries real
// latency.
type Pool struct {
	config PoolConfig
	logger *zap.Logger
}

// NewPool creates a bounded worker pool.
func NewPool(config PoolConfig, logger *zap.Logger) *Pool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = DefaultPoolConfig().MaxConcurrent
	}
	return &Pool{
		config: config,
		logger: logger.Named("resolve-pool"),
	}
}

// WorkItem is one unit of work to run on the pool.
type WorkItem[T any] struct {
	ID      string                               // for logging/tracking
	Execute func(ctx context.Context) (T, error) // the work itself
}

// WorkResult is the outcome of one work item.
type WorkResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// Process executes all work items with bounded parallelism and returns
// results in completion order, not submission order. Processing continues
// even when individual items fail; items still waiting for a slot when the
// context is cancelled come back with the context's error.
func Process[T any](
	ctx context.Context,
	pool *Pool,
	items []WorkItem[T],
	onProgress func(completed, total int),
) []WorkResult[T] {
	if len(items) == 0 {
		return nil
	}

	results := make([]WorkResult[T], 0, len(items))
	resultsChan := make(chan WorkResult[T], len(items))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var wg sync.WaitGroup

	for _, item := range items {
		wg.Add(1)
		go func(item WorkItem[T]) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				var zero T
				resultsChan <- WorkResult[T]{ID: item.ID, Result: zero, Err: ctx.Err()}
				return
			}

			result, err := item.Execute(ctx)
			resultsChan <- WorkResult[T]{
				ID:     item.ID,
				Result: result,
				Err:    err,
			}
		}(item)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	completed := 0
	for result := range resultsChan {
		results = append(results, result)
		completed++
		if onProgress != nil {
			onProgress(completed, len(items))
		}
	}

	return results
}
