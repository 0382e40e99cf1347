package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/ports"
)

// Sleep suspends until d has elapsed on the scheduler or ctx is done.
// A zero delay still goes through the scheduler, so control is always yielded.
func Sleep(ctx context.Context, sched ports.Scheduler, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	timer := sched.After(d, func() { close(done) })

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	}
}

// bindingError wraps a failed mutation. NotFound failures pass through unchanged.
func bindingError(op string, el ports.Element, err error) error {
	if errors.Is(err, domain.ErrElementNotFound) || errors.Is(err, domain.ErrBindingFailure) {
		return err
	}
	return &domain.BindingError{Op: op, ElementID: el.ID(), Err: err}
}
