package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/prologue/pkg/domain"
)

// Chain merges hooks so that each callback runs in argument order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnStepStart != nil {
			prev := out.OnStepStart
			out.OnStepStart = func(ctx context.Context, e *domain.StepEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnStepStart(ctx, e)
			}
		}
		if h.OnStepEnd != nil {
			prev := out.OnStepEnd
			out.OnStepEnd = func(ctx context.Context, e *domain.StepEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnStepEnd(ctx, e)
			}
		}
		if h.OnTick != nil {
			prev := out.OnTick
			out.OnTick = func(ctx context.Context, e *domain.TickEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnTick(ctx, e)
			}
		}
		if h.OnTransitionResolved != nil {
			prev := out.OnTransitionResolved
			out.OnTransitionResolved = func(ctx context.Context, e *domain.TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnTransitionResolved(ctx, e)
			}
		}
	}
	return out
}

// LogHooks logs step ends and the fade outcome at info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnd: func(ctx context.Context, e *domain.StepEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "step_failed", "kind", e.Kind, "index", e.Index, "element", e.ElementID, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "step_end", "kind", e.Kind, "index", e.Index, "element", e.ElementID, "duration", e.Duration)
		},
		OnTransitionResolved: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition_resolved", "element", e.ElementID, "outcome", e.Outcome.String(), "waited", e.Waited)
		},
	}
}
