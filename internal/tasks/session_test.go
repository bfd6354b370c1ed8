package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/ytid/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedSession(t *testing.T) {
	t.Run("hit skips the wrapped session", func(t *testing.T) {
		cache := newMockCache()
		cache.entries["a b"] = "cached"
		inner := &mockSession{}

		s := NewCachedSession(inner, cache, shared.NewDiscardLogger())
		id, err := s.Resolve(context.Background(), "a b")
		require.NoError(t, err)
		assert.Equal(t, "cached", id)
		assert.Empty(t, inner.Queries())
	})

	t.Run("miss stores the resolution", func(t *testing.T) {
		cache := newMockCache()
		inner := &mockSession{resolveFn: func(ctx context.Context, query string) (string, error) {
			return "fresh", nil
		}}

		s := NewCachedSession(inner, cache, shared.NewDiscardLogger())
		id, err := s.Resolve(context.Background(), "a b")
		require.NoError(t, err)
		assert.Equal(t, "fresh", id)
		assert.Equal(t, "fresh", cache.entries["a b"])
	})

	t.Run("not found and errors are not cached", func(t *testing.T) {
		cache := newMockCache()
		inner := &mockSession{resolveFn: func(ctx context.Context, query string) (string, error) {
			if query == "err" {
				return "", errors.New("boom")
			}
			return "", nil
		}}

		s := NewCachedSession(inner, cache, shared.NewDiscardLogger())
		_, err := s.Resolve(context.Background(), "err")
		assert.Error(t, err)
		id, err := s.Resolve(context.Background(), "none")
		assert.NoError(t, err)
		assert.Empty(t, id)
		assert.Empty(t, cache.entries)
	})

	t.Run("store failure still returns the id", func(t *testing.T) {
		cache := newMockCache()
		cache.storeErr = errors.New("locked")
		inner := &mockSession{resolveFn: func(ctx context.Context, query string) (string, error) {
			return "fresh", nil
		}}

		id, err := NewCachedSession(inner, cache, shared.NewDiscardLogger()).Resolve(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, "fresh", id)
	})

	t.Run("factory decorates sessions and forwards close", func(t *testing.T) {
		cache := newMockCache()
		cache.entries["a b"] = "cached"
		factory := newMockFactory(nil)

		open := CachedFactory(factory.Open, cache, shared.NewDiscardLogger())
		s, err := open(context.Background(), 0)
		require.NoError(t, err)

		id, err := s.Resolve(context.Background(), "a b")
		require.NoError(t, err)
		assert.Equal(t, "cached", id)

		s.Identify(Identity{UserAgent: "ua"})
		require.NoError(t, s.Close())
		inner := factory.Sessions()[0]
		assert.Equal(t, 1, inner.closed)
		assert.Equal(t, "ua", inner.identities[0].UserAgent)
	})

	t.Run("factory propagates open errors", func(t *testing.T) {
		factory := newMockFactory(nil)
		factory.failAt = 0
		_, err := CachedFactory(factory.Open, newMockCache(), shared.NewDiscardLogger())(context.Background(), 0)
		assert.Error(t, err)
	})

	t.Run("engine serves repeats from the cache", func(t *testing.T) {
		input, output := writeInput(t, `{"songs":[{"title":"A","artist":"B"}]}`)
		cache := newMockCache()
		factory := newMockFactory(func(ctx context.Context, query string) (string, error) {
			return "net", nil
		})
		engine := NewResolveEngine(CachedFactory(factory.Open, cache, nil), nil, nil)

		_, err := engine.Run(context.Background(), nil, testOptions(input, output))
		require.NoError(t, err)
		_, err = engine.Run(context.Background(), nil, testOptions(input, output+".2"))
		require.NoError(t, err)

		assert.Equal(t, 1, factory.Calls())
		assert.Equal(t, "net", cache.entries["A B"])
	})
}

func TestRunStats(t *testing.T) {
	s := RunStats{Total: 4, StartedAt: time.Now().Add(-time.Second)}
	s.record(TaskResult{Status: StatusResolved, Attempts: 2, Retries: 1})
	s.record(TaskResult{Status: StatusFailed, Attempts: 3, Retries: 3})
	s.record(TaskResult{Status: StatusSkipped})
	assert.False(t, s.Complete())
	s.record(TaskResult{Status: StatusResolved, Attempts: 1})

	assert.True(t, s.Complete())
	assert.Equal(t, 4, s.RetriesConsumed)
	assert.Equal(t, 6, s.Attempts)
	assert.Contains(t, s.Summary(), "4 songs: 2 resolved, 1 failed, 1 skipped, 4 retries consumed")
}
