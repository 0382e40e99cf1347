package domain

import (
	"context"
	"time"
)

// TransitionOutcome records which source resolved the fade race.
type TransitionOutcome int

const (
	// TransitionFired means the transition-finished notification won.
	TransitionFired TransitionOutcome = iota + 1
	// TimedOut means the fallback timer won.
	TimedOut
)

func (o TransitionOutcome) String() string {
	switch o {
	case TransitionFired:
		return "transition_fired"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o TransitionOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// StepKind defines the category of a sequencer step.
type StepKind string

const (
	StepShow   StepKind = "show"
	StepReveal StepKind = "reveal"
	StepDelay  StepKind = "delay"
	StepFade   StepKind = "fade"
	StepFinale StepKind = "finale"
)

// StepEvent describes one step of a run.
type StepEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Kind      StepKind      `json:"kind"`
	Index     int           `json:"index"`
	ElementID string        `json:"element_id,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"` // set on step end
	Err       error         `json:"-"`
}

// TickEvent is emitted once per reveal snapshot.
type TickEvent struct {
	ElementID string      `json:"element_id"`
	Text      string      `json:"text"`
	State     RevealState `json:"state"`
}

// TransitionEvent is emitted once per fade step, when the race resolves.
type TransitionEvent struct {
	ElementID string            `json:"element_id"`
	Outcome   TransitionOutcome `json:"outcome"`
	Waited    time.Duration     `json:"waited"`
}

// LifecycleHooks defines callbacks for sequencer observability.
// Hooks run synchronously on the sequencer goroutine and must not block.
type LifecycleHooks struct {
	OnStepStart          func(context.Context, *StepEvent)
	OnStepEnd            func(context.Context, *StepEvent)
	OnTick               func(context.Context, *TickEvent)
	OnTransitionResolved func(context.Context, *TransitionEvent)
}
