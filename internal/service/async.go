package service

import (
	"context"

	"github.com/BuzzLyutic/task-core-api/internal/model"
	"github.com/BuzzLyutic/task-core-api/internal/worker"
)

// AsyncTaskService hands every call to the worker pool and waits for the result
// or for ctx, whichever comes first. At most pool-size calls touch the database
// at once.
type AsyncTaskService struct {
	next Service
	pool *worker.Pool
}

func NewAsyncTaskService(next Service, pool *worker.Pool) *AsyncTaskService {
	return &AsyncTaskService{next: next, pool: pool}
}

func (s *AsyncTaskService) List(ctx context.Context) ([]model.Task, error) {
	return dispatch(ctx, s.pool, "list", func(ctx context.Context) ([]model.Task, error) {
		return s.next.List(ctx)
	})
}

func (s *AsyncTaskService) Create(ctx context.Context, name string) (model.Task, error) {
	return dispatch(ctx, s.pool, "create", func(ctx context.Context) (model.Task, error) {
		return s.next.Create(ctx, name)
	})
}

func (s *AsyncTaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	return dispatch(ctx, s.pool, "get", func(ctx context.Context) (model.Task, error) {
		return s.next.Get(ctx, id)
	})
}

func (s *AsyncTaskService) Complete(ctx context.Context, id int64) (model.Task, error) {
	return dispatch(ctx, s.pool, "complete", func(ctx context.Context) (model.Task, error) {
		return s.next.Complete(ctx, id)
	})
}

func dispatch[T any](ctx context.Context, p *worker.Pool, op string, fn func(context.Context) (T, error)) (T, error) {
	var (
		out  T
		zero T
	)
	done, err := p.Submit(ctx, op, func(jobCtx context.Context) error {
		var err error
		out, err = fn(jobCtx)
		return err
	})
	if err != nil {
		return zero, err
	}

	select {
	case err := <-done:
		if err != nil {
			return zero, err
		}
		return out, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
