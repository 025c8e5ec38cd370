package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmitAndShutdown(t *testing.T) {
	p := New(Config{MaxWorkers: 2, QueueSize: 10}, nil)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.SubmitAsync(context.Background(), "count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}))
	}

	want := errors.New("boom")
	err := p.Submit(context.Background(), "fail", func(ctx context.Context) error { return want })
	assert.Equal(t, want, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
	assert.Equal(t, int32(5), ran.Load())

	assert.Equal(t, ErrWorkerPoolClosed, p.SubmitAsync(context.Background(), "late", func(ctx context.Context) error { return nil }))
}

func TestPoolAsyncOutlivesCaller(t *testing.T) {
	p := New(Config{MaxWorkers: 1, QueueSize: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	block := make(chan struct{})
	require.NoError(t, p.SubmitAsync(ctx, "detached", func(ctx context.Context) error {
		<-block
		done <- ctx.Err()
		return nil
	}))
	cancel()
	close(block)

	assert.NoError(t, <-done)
	_ = p.Shutdown(context.Background())
}

func TestPoolRecoversPanic(t *testing.T) {
	p := New(Config{MaxWorkers: 1, QueueSize: 1}, nil)
	err := p.Submit(context.Background(), "panic", func(ctx context.Context) error { panic("x") })
	assert.Error(t, err)
	_ = p.Shutdown(context.Background())
}
