package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-core-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

const taskColumns = `id, name, completed_at, created_at`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool // nil, если репозиторий привязан к транзакции
	db   DBTX
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
		db:   pool,
	}
}

func (r *TaskRepo) WithinTx(ctx context.Context, fn func(TaskRepository) error) error {
	if r.pool == nil { // уже внутри транзакции
		return fn(r)
	}
	// BeginFunc откатывает транзакцию при ошибке или панике и всегда возвращает соединение в пул
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&TaskRepo{db: tx})
	})
}

func (r *TaskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	created, err := scanTask(r.db.QueryRow(ctx, `
		INSERT INTO tasks (name, completed_at, created_at)
		VALUES ($1, $2, $3)
		RETURNING `+taskColumns,
		t.Name, t.CompletedAt, t.CreatedAt,
	))
	return created, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id))
	return t, mapError(err)
}

func (r *TaskRepo) GetForUpdate(ctx context.Context, id int64) (model.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
		FOR UPDATE
	`, id))
	return t, mapError(err)
}

// Update writes back the mutable column. Name and created_at never change after insert.
func (r *TaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	updated, err := scanTask(r.db.QueryRow(ctx, `
		UPDATE tasks
		SET completed_at = $2
		WHERE id = $1
		RETURNING `+taskColumns,
		t.ID, t.CompletedAt,
	))
	return updated, mapError(err)
}

// scanTask is the single place where a tasks row becomes a model.Task.
func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.Name, &t.CompletedAt, &t.CreatedAt)
	return t, err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation, checkViolation:
			return fmt.Errorf("%w: %s", ErrorConflict, pgErr.ConstraintName)
		}
	}
	return err
}
