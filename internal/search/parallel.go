package search

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Parallel executes all queries concurrently against the provider, bounded
// by maxConcurrent. Failures are isolated per query: a failed search
// contributes an empty response and the rest of the group proceeds, so the
// caller always gets one response per query, in input order.
func Parallel(ctx context.Context, provider Provider, queries []string, maxResults, maxConcurrent int, logger *zap.Logger) []*Response {
	if len(queries) == 0 {
		return []*Response{}
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	responses := make([]*Response, len(queries))
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, maxConcurrent)

	for i, q := range queries {
		wg.Add(1)
		go func(idx int, query string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				responses[idx] = &Response{Query: query, Results: []Result{}}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			resp, err := provider.Search(ctx, query, maxResults, false)
			if err != nil {
				logger.Warn("search query failed",
					zap.String("query", query),
					zap.Error(err))
				responses[idx] = &Response{Query: query, Results: []Result{}}
				return
			}
			responses[idx] = resp
		}(i, q)
	}

	wg.Wait()
	return responses
}
