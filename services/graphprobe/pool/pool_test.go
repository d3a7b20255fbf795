// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidWorkers(t *testing.T) {
	_, err := New[int](0)
	assert.ErrorIs(t, err, ErrInvalidWorkers)

	_, err = New[int](-3)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
}

func TestPool_SubmitAndAwait(t *testing.T) {
	p, err := New[int](4)
	require.NoError(t, err)
	defer p.Shutdown(ShutdownGraceful)

	handles := make(map[Handle]int)
	for i := 0; i < 20; i++ {
		v := i
		h, err := p.Submit(func(ctx context.Context) (int, error) {
			return v * v, nil
		})
		require.NoError(t, err)
		handles[h] = v * v
	}

	for range handles {
		c, err := p.AwaitAny(context.Background(), time.Second)
		require.NoError(t, err)
		require.NoError(t, c.Err)
		assert.Equal(t, handles[c.Handle], c.Value)
	}

	assert.Zero(t, p.Outstanding())
	_, err = p.AwaitAny(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrNoPendingWork)
}

func TestPool_CompletionOrder(t *testing.T) {
	p, err := New[string](2)
	require.NoError(t, err)
	defer p.Shutdown(ShutdownImmediate)

	release := make(chan struct{})
	_, err = p.Submit(func(ctx context.Context) (string, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return "slow", nil
	})
	require.NoError(t, err)
	_, err = p.Submit(func(ctx context.Context) (string, error) {
		return "fast", nil
	})
	require.NoError(t, err)

	c, err := p.AwaitAny(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "fast", c.Value, "later submission finishing first is returned first")

	close(release)
	c, err = p.AwaitAny(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "slow", c.Value)
}

func TestPool_AwaitTimeout(t *testing.T) {
	p, err := New[int](1)
	require.NoError(t, err)
	defer p.Shutdown(ShutdownImmediate)

	_, err = p.Submit(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.NoError(t, err)

	_, err = p.AwaitAny(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrAwaitTimeout)
	assert.Equal(t, 1, p.Outstanding())
}

func TestPool_AwaitContextCancelled(t *testing.T) {
	p, err := New[int](1)
	require.NoError(t, err)
	defer p.Shutdown(ShutdownImmediate)

	_, err = p.Submit(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.AwaitAny(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPool_TaskErrorIsolated(t *testing.T) {
	p, err := New[int](2)
	require.NoError(t, err)
	defer p.Shutdown(ShutdownGraceful)

	boom := errors.New("boom")
	_, err = p.Submit(func(ctx context.Context) (int, error) { return 0, boom })
	require.NoError(t, err)
	_, err = p.Submit(func(ctx context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)

	var gotErr, gotValue bool
	for i := 0; i < 2; i++ {
		c, err := p.AwaitAny(context.Background(), time.Second)
		require.NoError(t, err)
		if c.Err != nil {
			assert.ErrorIs(t, c.Err, boom)
			gotErr = true
		} else {
			assert.Equal(t, 7, c.Value)
			gotValue = true
		}
	}
	assert.True(t, gotErr)
	assert.True(t, gotValue)
}

func TestPool_PanicRecovered(t *testing.T) {
	p, err := New[int](1)
	require.NoError(t, err)
	defer p.Shutdown(ShutdownGraceful)

	_, err = p.Submit(func(ctx context.Context) (int, error) {
		panic("kaboom")
	})
	require.NoError(t, err)

	c, err := p.AwaitAny(context.Background(), time.Second)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Err, ErrTaskPanicked)
	assert.Contains(t, c.Err.Error(), "kaboom")

	// The worker survives the panic.
	_, err = p.Submit(func(ctx context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	c, err = p.AwaitAny(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Value)
}

func TestPool_TrySubmitQueueFull(t *testing.T) {
	p, err := New[int](1, WithQueueSize(1))
	require.NoError(t, err)
	defer p.Shutdown(ShutdownImmediate)

	started := make(chan struct{}, 1)
	block := func(ctx context.Context) (int, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return 0, nil
	}

	_, err = p.TrySubmit(block)
	require.NoError(t, err)
	<-started

	// Worker busy, one queue slot.
	_, err = p.TrySubmit(block)
	require.NoError(t, err)

	_, err = p.TrySubmit(block)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 2, p.Outstanding())
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p, err := New[int](2)
	require.NoError(t, err)
	p.Shutdown(ShutdownGraceful)

	_, err = p.Submit(func(ctx context.Context) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
	_, err = p.TrySubmit(func(ctx context.Context) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, ErrPoolClosed)

	// Second shutdown is a no-op.
	p.Shutdown(ShutdownImmediate)
}

func TestPool_GracefulShutdownDrainsQueue(t *testing.T) {
	p, err := New[int](2)
	require.NoError(t, err)

	var ran atomic.Int32
	for i := 0; i < 50; i++ {
		_, err := p.Submit(func(ctx context.Context) (int, error) {
			time.Sleep(time.Millisecond)
			ran.Add(1)
			return 0, nil
		})
		require.NoError(t, err)
	}

	p.Shutdown(ShutdownGraceful)
	assert.Equal(t, int32(50), ran.Load())

	for i := 0; i < 50; i++ {
		c, err := p.AwaitAny(context.Background(), time.Second)
		require.NoError(t, err)
		assert.NoError(t, c.Err)
	}
}

func TestPool_ImmediateShutdownCancels(t *testing.T) {
	p, err := New[int](1, WithQueueSize(16))
	require.NoError(t, err)

	started := make(chan struct{})
	_, err = p.Submit(func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.NoError(t, err)
	<-started

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		_, err := p.Submit(func(ctx context.Context) (int, error) {
			ran.Add(1)
			return 0, nil
		})
		require.NoError(t, err)
	}

	p.Shutdown(ShutdownImmediate)
	assert.Zero(t, ran.Load(), "queued units must not run after immediate shutdown")

	var cancelled int
	for i := 0; i < 6; i++ {
		c, err := p.AwaitAny(context.Background(), time.Second)
		require.NoError(t, err)
		if errors.Is(c.Err, ErrTaskCancelled) {
			cancelled++
		}
	}
	assert.Equal(t, 5, cancelled)
	assert.Zero(t, p.Outstanding())
}

func TestPool_ConcurrentSubmitters(t *testing.T) {
	p, err := New[int](4, WithQueueSize(8))
	require.NoError(t, err)
	defer p.Shutdown(ShutdownGraceful)

	const submitters, perSubmitter = 8, 25

	var wg sync.WaitGroup
	for s := 0; s < submitters; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perSubmitter; i++ {
				_, err := p.Submit(func(ctx context.Context) (int, error) { return 1, nil })
				assert.NoError(t, err)
			}
		}()
	}

	sum := 0
	for sum < submitters*perSubmitter {
		c, err := p.AwaitAny(context.Background(), 5*time.Second)
		if errors.Is(err, ErrNoPendingWork) {
			time.Sleep(time.Millisecond)
			continue
		}
		require.NoError(t, err)
		sum += c.Value
	}
	wg.Wait()
	assert.Equal(t, submitters*perSubmitter, sum)
}

func TestShutdownMode_String(t *testing.T) {
	assert.Equal(t, "graceful", ShutdownGraceful.String())
	assert.Equal(t, "immediate", ShutdownImmediate.String())
	assert.Equal(t, "unknown", ShutdownMode(9).String())
}

func TestPool_TrySubmitFromTaskDoesNotBlock(t *testing.T) {
	p, err := New[error](1, WithQueueSize(1))
	require.NoError(t, err)
	defer p.Shutdown(ShutdownImmediate)

	release := make(chan struct{})
	_, err = p.Submit(func(ctx context.Context) (error, error) {
		// The only worker is busy here, so one queued unit fills the queue.
		if _, err := p.TrySubmit(func(ctx context.Context) (error, error) {
			<-release
			return nil, nil
		}); err != nil {
			return err, nil
		}
		_, err := p.TrySubmit(func(ctx context.Context) (error, error) { return nil, nil })
		return err, nil
	})
	require.NoError(t, err)

	c, err := p.AwaitAny(context.Background(), 2*time.Second)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Value, ErrQueueFull)
	close(release)
}
