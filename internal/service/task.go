package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/BuzzLyutic/task-core-api/internal/core"
	"github.com/BuzzLyutic/task-core-api/internal/model"
	"github.com/BuzzLyutic/task-core-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

// Service is what the HTTP layer needs. TaskService and AsyncTaskService implement it.
type Service interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, name string) (model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	Complete(ctx context.Context, id int64) (model.Task, error)
}

// TaskService runs every call in its own transaction and delegates the lifecycle
// rules to the core.
type TaskService struct {
	repo repo.TaskRepository
	core *core.TaskCore
}

func NewTaskService(repo repo.TaskRepository, tc *core.TaskCore) *TaskService {
	if tc == nil {
		tc = core.Default
	}
	return &TaskService{repo: repo, core: tc}
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := s.repo.WithinTx(ctx, func(tx repo.TaskRepository) error {
		var err error
		tasks, err = tx.List(ctx)
		return err
	})
	return tasks, err
}

func (s *TaskService) Create(ctx context.Context, name string) (model.Task, error) {
	if err := core.ValidateName(name); err != nil {
		return model.Task{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var created model.Task
	err := s.repo.WithinTx(ctx, func(tx repo.TaskRepository) error {
		var err error
		created, err = tx.Create(ctx, s.core.Create(name))
		return err
	})
	return created, err
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := s.repo.WithinTx(ctx, func(tx repo.TaskRepository) error {
		var err error
		t, err = tx.Get(ctx, id)
		return err
	})
	if err != nil {
		return t, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Complete reads the task under a row lock, refuses a second completion and
// stores the new completion time.
func (s *TaskService) Complete(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := s.repo.WithinTx(ctx, func(tx repo.TaskRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := core.CheckCompletable(current); err != nil {
			return err
		}
		t, err = tx.Update(ctx, s.core.Complete(current))
		return err
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("complete task %d: %w", id, err)
	}
	return t, nil
}
