package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPool_RunsJobs(t *testing.T) {
	p := NewPool(zap.NewNop(), 2)
	p.Start(context.Background())
	defer p.Stop()

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		done, err := p.Submit(context.Background(), "count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
		require.NoError(t, err)
		require.NoError(t, <-done)
	}
	assert.Equal(t, int32(10), ran.Load())
}

func TestPool_ReturnsJobError(t *testing.T) {
	p := NewPool(zap.NewNop(), 1)
	p.Start(context.Background())
	defer p.Stop()

	want := errors.New("boom")
	done, err := p.Submit(context.Background(), "fail", func(ctx context.Context) error {
		return want
	})
	require.NoError(t, err)
	assert.ErrorIs(t, <-done, want)
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 3
	p := NewPool(zap.NewNop(), workers)
	p.Start(context.Background())
	defer p.Stop()

	var (
		current atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done, err := p.Submit(context.Background(), "sleep", func(ctx context.Context) error {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			if assert.NoError(t, err) {
				assert.NoError(t, <-done)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestPool_RecoversPanics(t *testing.T) {
	p := NewPool(zap.NewNop(), 1)
	p.Start(context.Background())
	defer p.Stop()

	done, err := p.Submit(context.Background(), "panic", func(ctx context.Context) error {
		panic("oops")
	})
	require.NoError(t, err)
	assert.ErrorIs(t, <-done, ErrJobPanicked)

	// воркер остался жив
	done, err = p.Submit(context.Background(), "after", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.NoError(t, <-done)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(zap.NewNop(), 1)
	p.Start(context.Background())
	p.Stop()

	_, err := p.Submit(context.Background(), "late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestPool_StopWhenStartContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(zap.NewNop(), 1)
	p.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		_, err := p.Submit(context.Background(), "late", func(ctx context.Context) error { return nil })
		return errors.Is(err, ErrPoolStopped)
	}, time.Second, 10*time.Millisecond)
	p.Stop()
}

func TestPool_SubmitHonoursContext(t *testing.T) {
	p := NewPool(zap.NewNop(), 1)
	p.Start(context.Background())
	defer p.Stop()

	release := make(chan struct{})
	busy, err := p.Submit(context.Background(), "block", func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = p.Submit(ctx, "queued", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	assert.NoError(t, <-busy)
}

func TestPool_JobSeesSubmitterContext(t *testing.T) {
	p := NewPool(zap.NewNop(), 1)
	p.Start(context.Background())
	defer p.Stop()

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "request-1")

	done, err := p.Submit(ctx, "ctx", func(ctx context.Context) error {
		if ctx.Value(key{}) != "request-1" {
			return errors.New("context not propagated")
		}
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, <-done)
}
