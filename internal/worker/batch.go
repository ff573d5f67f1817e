package worker

import (
	"context"

	"github.com/ppiankov/dialectica/internal/model"
)

// Processor runs one query through the summarization pipeline.
type Processor interface {
	Process(ctx context.Context, query model.Query) (*model.Result, error)
}

// QueryJob runs a single query against a Processor.
type QueryJob struct {
	Query     model.Query
	Processor Processor
}

// Execute runs the query and wraps the outcome.
func (j *QueryJob) Execute(ctx context.Context) Result {
	result, err := j.Processor.Process(ctx, j.Query)
	return &QueryResult{
		Query:  j.Query,
		Result: result,
		Err:    err,
	}
}

// QueryResult is the outcome of one query in a batch.
type QueryResult struct {
	Query  model.Query
	Result *model.Result
	Err    error
}

// GetError returns the error from the query result.
func (r *QueryResult) GetError() error {
	return r.Err
}

// BatchProcessor runs many queries concurrently. A failed query is
// reported in its result and never aborts its siblings.
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given concurrency.
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessQueries runs all queries through a worker pool and returns one
// result per query, in completion order.
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []model.Query) []*QueryResult {
	if len(queries) == 0 {
		return []*QueryResult{}
	}

	// Size the pool to the batch so submitting every query up front
	// cannot block on a full results buffer.
	pool := NewSizedPool(b.concurrency, len(queries))
	pool.Start()

	// Propagate caller cancellation into the pool.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, query := range queries {
		pool.Submit(&QueryJob{Query: query, Processor: b.processor})
	}

	results := pool.Wait()

	queryResults := make([]*QueryResult, 0, len(results))
	for _, result := range results {
		queryResults = append(queryResults, result.(*QueryResult))
	}
	return queryResults
}
