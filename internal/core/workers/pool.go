package workers

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

// Pool bounds how many per-habit jobs run at once. A failing job never
// cancels its siblings: every job reports its own result.
type Pool struct {
	limit  int
	logger *zap.Logger
}

func NewPool(limit int, logger *zap.Logger) *Pool {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{limit: limit, logger: logger}
}

func (p *Pool) Limit() int {
	return p.limit
}

type Result[R any] struct {
	Value R
	Err   error
}

// Map runs fn for every item and returns the results in input order.
// Items not yet started when ctx is done get ctx.Err() as their error.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(p.limit)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			v, err := fn(ctx, item)
			results[i] = Result[R]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Debug("worker pool batch finished",
		zap.Int("jobs", len(items)),
		zap.Int("limit", p.limit),
	)
	return results
}
