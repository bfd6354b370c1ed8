package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/ytid/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestSlot(fn func(ctx context.Context, query string) (string, error)) (*Slot, *mockSession) {
	s := &mockSession{resolveFn: fn}
	return &Slot{Index: 0, Session: s, Logger: shared.NewDiscardLogger()}, s
}

func newTestController(maxRetries int) *RetryController {
	return &RetryController{
		MaxRetries: maxRetries,
		Jitter:     NewJitter(0, 0),
		Identities: NewIdentityRotator(nil, Viewport{}),
	}
}

func TestRetryController(t *testing.T) {
	t.Run("skip never calls the resolver", func(t *testing.T) {
		slot, session := newTestSlot(func(ctx context.Context, query string) (string, error) {
			t.Error("resolver called for a skipped task")
			return "", nil
		})

		res := newTestController(3).Attempt(context.Background(), slot, job{index: 4, skip: true})
		assert.Equal(t, StatusSkipped, res.Status)
		assert.Equal(t, 4, res.Index)
		assert.Zero(t, res.Attempts)
		assert.Empty(t, session.Queries())
		assert.Empty(t, session.identities)
	})

	t.Run("stops at the first resolution", func(t *testing.T) {
		calls := 0
		slot, _ := newTestSlot(func(ctx context.Context, query string) (string, error) {
			calls++
			if calls == 2 {
				return "vid", nil
			}
			return "", nil
		})

		res := newTestController(5).Attempt(context.Background(), slot, job{query: "a b"})
		assert.Equal(t, StatusResolved, res.Status)
		assert.Equal(t, "vid", res.VideoID)
		assert.Equal(t, 2, res.Attempts)
		assert.Equal(t, 1, res.Retries)
		assert.NoError(t, res.Err)
	})

	t.Run("exhaustion fails with every attempt counted", func(t *testing.T) {
		boom := errors.New("boom")
		slot, session := newTestSlot(func(ctx context.Context, query string) (string, error) {
			return "", boom
		})

		res := newTestController(4).Attempt(context.Background(), slot, job{query: "q"})
		assert.Equal(t, StatusFailed, res.Status)
		assert.Equal(t, 4, res.Attempts)
		assert.Equal(t, 4, res.Retries)
		assert.ErrorIs(t, res.Err, boom)
		assert.Len(t, session.Queries(), 4)
	})

	t.Run("new identity before every attempt", func(t *testing.T) {
		slot, session := newTestSlot(nil)
		c := newTestController(3)
		c.Identities = NewIdentityRotator([]string{"agent-x"}, Viewport{Width: 800, Height: 600})

		c.Attempt(context.Background(), slot, job{query: "q"})
		require.Len(t, session.identities, 3)
		for _, id := range session.identities {
			assert.Equal(t, "agent-x", id.UserAgent)
			assert.Equal(t, Viewport{Width: 800, Height: 600}, id.Viewport)
		}
	})

	t.Run("per-attempt timeout counts as a transient error", func(t *testing.T) {
		slot, _ := newTestSlot(func(ctx context.Context, query string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
		c := newTestController(2)
		c.Timeout = 10 * time.Millisecond

		res := c.Attempt(context.Background(), slot, job{query: "slow"})
		assert.Equal(t, StatusFailed, res.Status)
		assert.Equal(t, 2, res.Retries)
		assert.ErrorIs(t, res.Err, shared.ErrTimeout)
	})

	t.Run("cancelled before starting", func(t *testing.T) {
		slot, session := newTestSlot(nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := newTestController(3).Attempt(ctx, slot, job{query: "q"})
		assert.Equal(t, StatusCanceled, res.Status)
		assert.Empty(t, session.Queries())
	})

	t.Run("cancelled during the last attempt", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		slot, _ := newTestSlot(func(ctx context.Context, query string) (string, error) {
			cancel()
			return "", ctx.Err()
		})

		res := newTestController(1).Attempt(ctx, slot, job{query: "q"})
		assert.Equal(t, StatusCanceled, res.Status)
		assert.Equal(t, 1, res.Attempts)
		assert.Zero(t, res.Retries)
	})

	t.Run("delay follows every attempt", func(t *testing.T) {
		slot, _ := newTestSlot(nil)
		c := newTestController(3)
		c.Jitter = NewJitter(15*time.Millisecond, 15*time.Millisecond)

		start := time.Now()
		c.Attempt(context.Background(), slot, job{query: "q"})
		assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
	})

	t.Run("limiter caps request rate", func(t *testing.T) {
		slot, _ := newTestSlot(nil)
		c := newTestController(3)
		c.Limiter = rate.NewLimiter(rate.Every(20*time.Millisecond), 1)

		start := time.Now()
		c.Attempt(context.Background(), slot, job{query: "q"})
		assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "resolved", OutcomeResolved.String())
	assert.Equal(t, "not_found", OutcomeNotFound.String())
	assert.Equal(t, "transient_error", OutcomeTransientError.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
}
