package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPoolStopped = errors.New("worker pool stopped")
	ErrJobPanicked = errors.New("job panicked")
)

// Job runs on a worker with the submitter's context.
type Job func(ctx context.Context) error

type job struct {
	id       string
	op       string
	ctx      context.Context
	run      Job
	done     chan error
	queuedAt time.Time
}

// Pool runs submitted jobs on a fixed number of goroutines.
type Pool struct {
	logger   *zap.Logger
	count    int
	jobs     chan job
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

func NewPool(logger *zap.Logger, count int) *Pool {
	if count < 1 {
		count = 1
	}
	return &Pool{
		logger: logger,
		count:  count,
		jobs:   make(chan job),
		stop:   make(chan struct{}),
	}
}

// Start launches the workers. Cancelling ctx has the same effect as Stop, except
// that it does not wait for running jobs.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go func() {
		select {
		case <-ctx.Done():
			p.close()
		case <-p.stop:
		}
	}()
}

// Stop refuses new jobs and waits for the running ones to finish.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	p.close()
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Submit blocks until a worker accepts the job, the pool stops or ctx is done.
// The returned channel receives the job's error exactly once.
func (p *Pool) Submit(ctx context.Context, op string, run Job) (<-chan error, error) {
	select {
	case <-p.stop:
		return nil, ErrPoolStopped
	default:
	}

	j := job{
		id:       uuid.NewString(),
		op:       op,
		ctx:      ctx,
		run:      run,
		done:     make(chan error, 1),
		queuedAt: time.Now(),
	}

	select {
	case p.jobs <- j:
		return j.done, nil
	case <-p.stop:
		return nil, ErrPoolStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stop:
			return
		case j := <-p.jobs:
			p.process(id, j)
		}
	}
}

func (p *Pool) process(workerID int, j job) {
	started := time.Now()
	err := p.run(j)
	j.done <- err

	fields := []zap.Field{
		zap.Int("worker", workerID),
		zap.String("job_id", j.id),
		zap.String("op", j.op),
		zap.Duration("waited", started.Sub(j.queuedAt)),
		zap.Duration("took", time.Since(started)),
	}
	if errors.Is(err, ErrJobPanicked) {
		p.logger.Error("Job panicked", append(fields, zap.Error(err))...)
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	p.logger.Debug("Job finished", fields...)
}

func (p *Pool) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	return j.run(j.ctx)
}
