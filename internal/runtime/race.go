package runtime

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/ports"
)

const (
	racePending int32 = iota
	raceResolved
)

// Race settles exactly once between independent completion sources.
// The first Resolve wins; every later call is dropped.
type Race struct {
	state   atomic.Int32
	outcome domain.TransitionOutcome
	done    chan struct{}
}

// NewRace returns a pending race.
func NewRace() *Race {
	return &Race{done: make(chan struct{})}
}

// Resolve moves the race from pending to resolved with outcome o.
// It reports whether this call won.
func (r *Race) Resolve(o domain.TransitionOutcome) bool {
	if !r.state.CompareAndSwap(racePending, raceResolved) {
		return false
	}
	r.outcome = o
	close(r.done)
	return true
}

// Done is closed once the race has resolved.
func (r *Race) Done() <-chan struct{} {
	return r.done
}

// Outcome returns the winning outcome. Only meaningful after Done is closed;
// a race settled by abort reports the zero outcome.
func (r *Race) Outcome() domain.TransitionOutcome {
	select {
	case <-r.done:
		return r.outcome
	default:
		return 0
	}
}

// Resolved reports whether the race has settled.
func (r *Race) Resolved() bool {
	return r.state.Load() == raceResolved
}

// AwaitTransition waits for a transition-finished notification on el, or for
// fallback to elapse, whichever comes first. The listener is cancelled and the
// timer stopped before it returns, on every path.
func AwaitTransition(ctx context.Context, ui ports.UIBinding, el ports.Element, fallback time.Duration) (domain.TransitionOutcome, error) {
	race := NewRace()

	sub, err := ui.OnTransitionFinished(el, func() { race.Resolve(domain.TransitionFired) })
	if err != nil {
		return 0, bindingError("on_transition_finished", el, err)
	}
	defer sub.Cancel()

	timer := ui.After(fallback, func() { race.Resolve(domain.TimedOut) })
	defer timer.Stop()

	select {
	case <-race.Done():
		return race.Outcome(), nil
	case <-ctx.Done():
		if race.Resolve(0) {
			return 0, ctx.Err()
		}
		// A source won while ctx was being cancelled.
		return race.Outcome(), nil
	}
}
