package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Query is one named unit of work for a batch dispatch.
type Query struct {
	Name string
	Run  func(ctx context.Context) (interface{}, error)
}

// QueryResult is the outcome of one query in a batch.
type QueryResult struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value,omitempty"`
	Err   error       `json:"-"`
	Error string      `json:"error,omitempty"`
}

// BatchResult collects all outcomes of one dispatch.
type BatchResult struct {
	BatchID string                 `json:"batchId"`
	Results map[string]QueryResult `json:"results"`
	Elapsed time.Duration          `json:"-"`
}

// Dispatcher fans a batch of queries out across goroutines. Failures are
// isolated per query: one failed upstream never poisons its siblings.
type Dispatcher struct {
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch runs every query concurrently and waits for all of them.
// Cancelling ctx releases the wait promptly because each query observes
// the same context.
func (d *Dispatcher) Dispatch(ctx context.Context, queries []Query) *BatchResult {
	batchID := uuid.NewString()
	start := time.Now()

	results := make(chan QueryResult, len(queries))
	var wg sync.WaitGroup

	for _, q := range queries {
		wg.Add(1)
		go func(q Query) {
			defer wg.Done()
			value, err := q.Run(ctx)
			r := QueryResult{Name: q.Name, Value: value, Err: err}
			if err != nil {
				r.Error = err.Error()
			}
			results <- r
		}(q)
	}

	wg.Wait()
	close(results)

	batch := &BatchResult{
		BatchID: batchID,
		Results: make(map[string]QueryResult, len(queries)),
		Elapsed: time.Since(start),
	}
	failed := 0
	for r := range results {
		if r.Err != nil {
			failed++
			d.logger.Warn().
				Str("batch_id", batchID).
				Str("query", r.Name).
				Err(r.Err).
				Msg("Batch query failed")
		}
		batch.Results[r.Name] = r
	}

	d.logger.Debug().
		Str("batch_id", batchID).
		Int("queries", len(queries)).
		Int("failed", failed).
		Dur("elapsed", batch.Elapsed).
		Msg("Batch dispatch completed")

	return batch
}
