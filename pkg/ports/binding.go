package ports

import "time"

// Element is an opaque handle to a UI element, obtained from UIBinding.Resolve.
type Element interface {
	ID() string
}

// Subscription is a registered transition-finished listener.
// Cancel is idempotent. Once it returns, no delivery that starts afterwards
// invokes the listener, including later listeners of a delivery in progress.
// A call to the listener already running on another goroutine may still finish.
type Subscription interface {
	Cancel()
}

// Timer is a pending fire-once callback.
type Timer interface {
	// Stop prevents the callback from firing.
	// It returns false if the callback already fired or was stopped.
	Stop() bool
}

// Scheduler schedules callbacks after a delay.
type Scheduler interface {
	// After calls fn once, on its own goroutine, after d has elapsed.
	After(d time.Duration, fn func()) Timer
}

// UIBinding is the capability set the sequencer consumes from its host.
type UIBinding interface {
	Scheduler

	// Resolve looks up an element by id.
	// Returns an error matching domain.ErrElementNotFound if the id is unknown.
	Resolve(id string) (Element, error)

	// SetDisplayState applies a named state to an element.
	// Applying a state that is already applied is a no-op.
	SetDisplayState(el Element, state string) error

	// SetText replaces the element's visible text.
	SetText(el Element, text string) error

	// SetCaretVisible shows or hides a caret element.
	SetCaretVisible(el Element, visible bool) error

	// OnTransitionFinished registers fn to be called when a visual
	// transition on el completes. fn may be called from any goroutine.
	OnTransitionFinished(el Element, fn func()) (Subscription, error)
}
