package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytid/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Slot is one pool worker with its own session.
type Slot struct {
	Index   int
	Session Session
	Logger  *log.Logger
}

// Pool is a fixed set of slots created once per run.
//
// Task i is always handled by slot i mod P, so each slot works through its share in index order.
type Pool struct {
	slots     []*Slot
	closeOnce sync.Once
	closeErr  error
}

// NewPool opens size sessions through factory.
//
// If any session fails to open, the ones already opened are closed before returning.
func NewPool(ctx context.Context, size int, factory SessionFactory, logger *log.Logger) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: pool size must be positive, got %d", shared.ErrInvalidConfig, size)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: no session factory configured", shared.ErrServiceUnavailable)
	}
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}

	p := &Pool{slots: make([]*Slot, 0, size)}
	for i := range size {
		session, err := factory(ctx, i)
		if err != nil {
			if cerr := p.Close(); cerr != nil {
				logger.Warn("failed to close sessions after open error", "error", cerr)
			}
			return nil, fmt.Errorf("%w: slot %d: %w", shared.ErrSessionOpen, i, err)
		}
		p.slots = append(p.slots, &Slot{
			Index:   i,
			Session: session,
			Logger:  shared.WithLogger(logger, "slot", i),
		})
	}
	return p, nil
}

func (p *Pool) Size() int { return len(p.slots) }

func (p *Pool) Slots() []*Slot { return p.slots }

// Run processes task indices [0, n) across the slots and waits for all of them.
//
// Slots stop picking up new indices once ctx is cancelled; the first error from fn cancels the rest.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, slot *Slot, index int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	size := len(p.slots)

	for _, slot := range p.slots {
		g.Go(func() error {
			for i := slot.Index; i < n; i += size {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(gctx, slot, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Close closes every session exactly once, joining their errors.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		var errs []error
		for _, slot := range p.slots {
			if err := slot.Session.Close(); err != nil {
				errs = append(errs, fmt.Errorf("slot %d: %w", slot.Index, err))
			}
		}
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}
