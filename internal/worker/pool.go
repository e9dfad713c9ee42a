package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Result pairs one input with its outcome.
type Result[T any, R any] struct {
	Input  T
	Output R
	Err    error
}

// Func processes a single input.
type Func[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool fans work out over a fixed number of goroutines.
type Pool[T any, R any] struct {
	workers int
	fn      Func[T, R]
}

// NewPool creates a pool with the given concurrency.
func NewPool[T any, R any](workers int, fn Func[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{workers: workers, fn: fn}
}

// Run processes all inputs and returns one Result per input, in input
// order. A cancelled context stops dispatch; already-dispatched items
// finish.
func (p *Pool[T, R]) Run(ctx context.Context, inputs []T) []Result[T, R] {
	results := make([]Result[T, R], len(inputs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				out, err := p.fn(ctx, inputs[idx])
				results[idx] = Result[T, R]{Input: inputs[idx], Output: out, Err: err}
				if err != nil {
					log.Error().Err(err).Int("index", idx).Msg("Task failed")
				}
			}
		}()
	}

dispatch:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break dispatch
		case indexes <- i:
		}
	}
	close(indexes)

	wg.Wait()
	return results
}

// Batch splits items into chunks of at most batchSize.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 1
	}
	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}
