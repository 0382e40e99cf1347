/*
Package domain contains the core models of the Prologue sequencer.

It defines the script that drives a run, the timing it follows, the
outcome of the fade step and the errors a run can surface. This package
is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Script: the ordered lines, the timing and the block/finale element ids.
  - Line: one typed line and the ids of the elements that display it.
  - Timing: the per-character speed and the gaps between steps.
  - TransitionOutcome: which source won the fade race.
  - LifecycleHooks: synchronous callbacks for observability.
*/
package domain
