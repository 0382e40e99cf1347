/*
Package ports defines the driven ports (interfaces) of the Prologue sequencer.

These interfaces decouple the sequencer from the surface it animates, so the
same run can drive a terminal, an in-memory recorder or any other host.

# Key Interfaces

  - UIBinding: resolves elements and applies display state, text and caret visibility.
  - Scheduler: fire-once timers used for every suspension point.
  - Subscription: a cancellable transition-finished listener.
*/
package ports
