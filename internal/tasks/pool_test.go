package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/ytid/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	t.Run("assigns task i to slot i mod P in order", func(t *testing.T) {
		factory := newMockFactory(nil)
		pool, err := NewPool(context.Background(), 3, factory.Open, nil)
		require.NoError(t, err)
		defer pool.Close()

		var mu sync.Mutex
		seen := map[int][]int{}
		err = pool.Run(context.Background(), 10, func(ctx context.Context, slot *Slot, i int) error {
			mu.Lock()
			defer mu.Unlock()
			seen[slot.Index] = append(seen[slot.Index], i)
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, []int{0, 3, 6, 9}, seen[0])
		assert.Equal(t, []int{1, 4, 7}, seen[1])
		assert.Equal(t, []int{2, 5, 8}, seen[2])
	})

	t.Run("more slots than tasks", func(t *testing.T) {
		factory := newMockFactory(nil)
		pool, err := NewPool(context.Background(), 4, factory.Open, nil)
		require.NoError(t, err)
		defer pool.Close()

		var mu sync.Mutex
		var handled []int
		err = pool.Run(context.Background(), 2, func(ctx context.Context, slot *Slot, i int) error {
			mu.Lock()
			defer mu.Unlock()
			handled = append(handled, i)
			return nil
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{0, 1}, handled)
		assert.Equal(t, 4, pool.Size())
	})

	t.Run("error stops the remaining tasks", func(t *testing.T) {
		factory := newMockFactory(nil)
		pool, err := NewPool(context.Background(), 1, factory.Open, nil)
		require.NoError(t, err)
		defer pool.Close()

		calls := 0
		boom := errors.New("boom")
		err = pool.Run(context.Background(), 5, func(ctx context.Context, slot *Slot, i int) error {
			calls++
			if i == 1 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, calls)
	})

	t.Run("cancelled context picks up nothing", func(t *testing.T) {
		factory := newMockFactory(nil)
		pool, err := NewPool(context.Background(), 2, factory.Open, nil)
		require.NoError(t, err)
		defer pool.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = pool.Run(ctx, 4, func(ctx context.Context, slot *Slot, i int) error {
			t.Errorf("task %d should not run", i)
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("open failure closes earlier sessions", func(t *testing.T) {
		factory := newMockFactory(nil)
		factory.failAt = 1

		_, err := NewPool(context.Background(), 3, factory.Open, nil)
		require.ErrorIs(t, err, shared.ErrSessionOpen)
		assert.Contains(t, err.Error(), "browser crashed")

		sessions := factory.Sessions()
		require.Len(t, sessions, 1)
		assert.Equal(t, 1, sessions[0].closed)
	})

	t.Run("invalid size", func(t *testing.T) {
		_, err := NewPool(context.Background(), 0, newMockFactory(nil).Open, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidConfig)
	})

	t.Run("nil factory", func(t *testing.T) {
		_, err := NewPool(context.Background(), 1, nil, nil)
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})

	t.Run("close joins errors and runs once", func(t *testing.T) {
		factory := newMockFactory(nil)
		pool, err := NewPool(context.Background(), 2, factory.Open, nil)
		require.NoError(t, err)

		sessions := factory.Sessions()
		sessions[0].closeErr = errors.New("first")
		sessions[1].closeErr = errors.New("second")

		err = pool.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "slot 0: first")
		assert.Contains(t, err.Error(), "slot 1: second")

		assert.Equal(t, err, pool.Close())
		assert.Equal(t, 1, sessions[0].closed)
		assert.Equal(t, 1, sessions[1].closed)
	})
}
