package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/aretw0/prologue/pkg/adapters/clock"
	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/ports"
)

// Op names a recorded binding operation.
type Op string

const (
	OpSetDisplayState Op = "set_display_state"
	OpSetText         Op = "set_text"
	OpSetCaretVisible Op = "set_caret_visible"
	OpSubscribe       Op = "subscribe"
	OpUnsubscribe     Op = "unsubscribe"
)

// Call is one recorded operation.
type Call struct {
	Op        Op     `json:"op"`
	ElementID string `json:"element_id"`
	Value     string `json:"value"`
}

type element struct {
	id string
}

func (e *element) ID() string { return e.id }

type failKey struct {
	op Op
	id string
}

// Binding implements ports.UIBinding in memory, recording every call.
// It has no transition support of its own: listeners only run when Fire is called.
// Safe for concurrent use.
type Binding struct {
	mu        sync.Mutex
	elements  map[string]*element
	states    map[string]map[string]bool
	texts     map[string]string
	carets    map[string]bool
	listeners map[string]map[uint64]func()
	nextSub   uint64
	calls     []Call
	failures  map[failKey]error

	scheduler ports.Scheduler
	observer  func(Call)
}

// Option configures a Binding.
type Option func(*Binding)

// WithScheduler replaces the real-time scheduler.
func WithScheduler(s ports.Scheduler) Option {
	return func(b *Binding) {
		b.scheduler = s
	}
}

// WithCallObserver registers fn to receive every recorded call, in order.
// fn runs on the caller's goroutine, outside the binding lock.
func WithCallObserver(fn func(Call)) Option {
	return func(b *Binding) {
		b.observer = fn
	}
}

// NewBinding creates a binding that knows the given element ids.
func NewBinding(ids []string, opts ...Option) *Binding {
	b := &Binding{
		elements:  make(map[string]*element, len(ids)),
		states:    make(map[string]map[string]bool),
		texts:     make(map[string]string),
		carets:    make(map[string]bool),
		listeners: make(map[string]map[uint64]func()),
		failures:  make(map[failKey]error),
		scheduler: clock.Real{},
	}
	for _, id := range ids {
		b.elements[id] = &element{id: id}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBindingForScript creates a binding that knows every id the script needs.
func NewBindingForScript(s domain.Script, opts ...Option) *Binding {
	return NewBinding(s.ElementIDs(), opts...)
}

// Resolve returns the element registered under id.
func (b *Binding) Resolve(id string) (ports.Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	el, ok := b.elements[id]
	if !ok {
		return nil, &domain.ElementNotFoundError{ID: id}
	}
	return el, nil
}

// SetDisplayState adds state to the element's state set.
func (b *Binding) SetDisplayState(el ports.Element, state string) error {
	return b.mutate(OpSetDisplayState, el, state, func(id string) {
		if b.states[id] == nil {
			b.states[id] = make(map[string]bool)
		}
		b.states[id][state] = true
	})
}

// SetText replaces the element's text.
func (b *Binding) SetText(el ports.Element, text string) error {
	return b.mutate(OpSetText, el, text, func(id string) {
		b.texts[id] = text
	})
}

// SetCaretVisible records the caret visibility.
func (b *Binding) SetCaretVisible(el ports.Element, visible bool) error {
	value := "hidden"
	if visible {
		value = "visible"
	}
	return b.mutate(OpSetCaretVisible, el, value, func(id string) {
		b.carets[id] = visible
	})
}

// OnTransitionFinished registers fn until the returned subscription is cancelled.
func (b *Binding) OnTransitionFinished(el ports.Element, fn func()) (ports.Subscription, error) {
	var key uint64
	err := b.mutate(OpSubscribe, el, "", func(id string) {
		b.nextSub++
		key = b.nextSub
		if b.listeners[id] == nil {
			b.listeners[id] = make(map[uint64]func())
		}
		b.listeners[id][key] = fn
	})
	if err != nil {
		return nil, err
	}
	return &subscription{binding: b, id: el.ID(), key: key}, nil
}

// After delegates to the configured scheduler.
func (b *Binding) After(d time.Duration, fn func()) ports.Timer {
	return b.scheduler.After(d, fn)
}

// Fire delivers a synthetic transition-finished notification to every listener
// registered on id, in registration order. A listener cancelled by an earlier
// one is skipped. It returns the number of listeners invoked.
func (b *Binding) Fire(id string) int {
	b.mu.Lock()
	keys := make([]uint64, 0, len(b.listeners[id]))
	for key := range b.listeners[id] {
		keys = append(keys, key)
	}
	b.mu.Unlock()
	slices.Sort(keys)

	invoked := 0
	for _, key := range keys {
		b.mu.Lock()
		fn, ok := b.listeners[id][key]
		b.mu.Unlock()
		if ok {
			fn()
			invoked++
		}
	}
	return invoked
}

// FailOn makes every subsequent op on id return err.
func (b *Binding) FailOn(op Op, id string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[failKey{op: op, id: id}] = err
}

// Calls returns a copy of the recorded calls, optionally filtered by op.
func (b *Binding) Calls(ops ...Op) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(ops) == 0 {
		return append([]Call(nil), b.calls...)
	}
	keep := make(map[Op]bool, len(ops))
	for _, op := range ops {
		keep[op] = true
	}
	var out []Call
	for _, c := range b.calls {
		if keep[c.Op] {
			out = append(out, c)
		}
	}
	return out
}

// Listeners returns the number of active transition listeners on id.
func (b *Binding) Listeners(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[id])
}

// Text returns the current text of id.
func (b *Binding) Text(id string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.texts[id]
}

// CaretVisible returns the current caret visibility of id.
func (b *Binding) CaretVisible(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.carets[id]
}

// HasState reports whether state has been applied to id.
func (b *Binding) HasState(id, state string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[id][state]
}

func (b *Binding) mutate(op Op, el ports.Element, value string, apply func(id string)) error {
	if el == nil {
		return &domain.ElementNotFoundError{}
	}
	id := el.ID()

	b.mu.Lock()
	if known, ok := b.elements[id]; !ok || known != el {
		b.mu.Unlock()
		return &domain.ElementNotFoundError{ID: id}
	}
	if err, ok := b.failures[failKey{op: op, id: id}]; ok {
		b.mu.Unlock()
		return err
	}
	apply(id)
	call := Call{Op: op, ElementID: id, Value: value}
	b.calls = append(b.calls, call)
	observer := b.observer
	b.mu.Unlock()

	if observer != nil {
		observer(call)
	}
	return nil
}

type subscription struct {
	binding *Binding
	id      string
	key     uint64
	once    sync.Once
}

func (s *subscription) Cancel() {
	s.once.Do(func() {
		b := s.binding
		b.mu.Lock()
		delete(b.listeners[s.id], s.key)
		call := Call{Op: OpUnsubscribe, ElementID: s.id}
		b.calls = append(b.calls, call)
		observer := b.observer
		b.mu.Unlock()

		if observer != nil {
			observer(call)
		}
	})
}

var _ ports.UIBinding = (*Binding)(nil)
