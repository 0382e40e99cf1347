package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/ports"
	"github.com/google/uuid"
)

// Sequencer plays a script against a UI binding, one step at a time.
type Sequencer struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Sequencer) {
		s.hooks = hooks
	}
}

// NewSequencer creates a sequencer with a no-op logger and no hooks.
func NewSequencer(opts ...Option) *Sequencer {
	s := &Sequencer{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// handles holds the elements resolved for one run.
type handles map[string]ports.Element

// Run plays script on ui.
//
// Every element is resolved before the first mutation; a missing id aborts the
// run with an error matching domain.ErrElementNotFound and nothing is touched.
// Once started, the first binding failure aborts the run. Visual state already
// applied is left as is.
func (s *Sequencer) Run(ctx context.Context, script domain.Script, ui ports.UIBinding) (*domain.Report, error) {
	if ui == nil {
		return nil, errors.New("run: ui binding is nil")
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}

	els, err := s.resolve(script, ui)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{RunID: uuid.NewString()}
	start := s.now()
	logger := s.logger.With("run_id", report.RunID)
	logger.DebugContext(ctx, "sequence started", "lines", len(script.Lines))

	for i, line := range script.Lines {
		container := els[line.Elements.Container]
		target := els[line.Elements.Target]
		caret := els[line.Elements.Caret]

		if err := s.step(ctx, logger, report, domain.StepShow, i, container, func() error {
			return s.show(ui, container)
		}); err != nil {
			return report, err
		}

		speed := script.SpeedFor(i)
		if err := s.step(ctx, logger, report, domain.StepReveal, i, target, func() error {
			return reveal(ctx, ui, target, caret, line.Text, speed, s.tick(ctx))
		}); err != nil {
			return report, err
		}

		gap := script.GapAfter(i)
		if err := s.step(ctx, logger, report, domain.StepDelay, i, nil, func() error {
			return Sleep(ctx, ui, gap)
		}); err != nil {
			return report, err
		}
	}

	block := els[script.BlockID]
	if err := s.step(ctx, logger, report, domain.StepFade, len(script.Lines), block, func() error {
		if err := ui.SetDisplayState(block, domain.StateFadeOut); err != nil {
			return bindingError("set_display_state", block, err)
		}
		waitStart := s.now()
		outcome, err := AwaitTransition(ctx, ui, block, script.Timing.FadeFallback)
		if err != nil {
			return err
		}
		report.Outcome = outcome
		logger.DebugContext(ctx, "fade resolved", "element", block.ID(), "outcome", outcome.String())
		if s.hooks.OnTransitionResolved != nil {
			s.hooks.OnTransitionResolved(ctx, &domain.TransitionEvent{
				ElementID: block.ID(),
				Outcome:   outcome,
				Waited:    s.now().Sub(waitStart),
			})
		}
		return nil
	}); err != nil {
		return report, err
	}

	if err := s.step(ctx, logger, report, domain.StepDelay, len(script.Lines), nil, func() error {
		return Sleep(ctx, ui, script.Timing.GapBeforeFinale)
	}); err != nil {
		return report, err
	}

	finale := els[script.FinaleID]
	if err := s.step(ctx, logger, report, domain.StepFinale, len(script.Lines), finale, func() error {
		if script.Finale != "" {
			if err := ui.SetText(finale, script.Finale); err != nil {
				return bindingError("set_text", finale, err)
			}
		}
		return s.show(ui, finale)
	}); err != nil {
		return report, err
	}

	report.Elapsed = s.now().Sub(start)
	logger.DebugContext(ctx, "sequence finished", "steps", report.Steps, "elapsed", report.Elapsed, "outcome", report.Outcome.String())
	return report, nil
}

// resolve looks up every id once, in script order.
func (s *Sequencer) resolve(script domain.Script, ui ports.UIBinding) (handles, error) {
	els := make(handles)
	for _, id := range script.ElementIDs() {
		if _, ok := els[id]; ok {
			continue
		}
		el, err := ui.Resolve(id)
		if err == nil && el == nil {
			err = &domain.ElementNotFoundError{ID: id}
		}
		if err != nil {
			s.logger.Debug("element resolution failed", "element", id, "err", err)
			if errors.Is(err, domain.ErrElementNotFound) {
				return nil, fmt.Errorf("resolve #%s: %w", id, err)
			}
			return nil, fmt.Errorf("resolve #%s: %w: %w", id, &domain.ElementNotFoundError{ID: id}, err)
		}
		els[id] = el
	}
	return els, nil
}

func (s *Sequencer) show(ui ports.UIBinding, el ports.Element) error {
	if err := ui.SetDisplayState(el, domain.StateShow); err != nil {
		return bindingError("set_display_state", el, err)
	}
	return nil
}

func (s *Sequencer) step(ctx context.Context, logger *slog.Logger, report *domain.Report, kind domain.StepKind, index int, el ports.Element, fn func() error) error {
	ev := &domain.StepEvent{Timestamp: s.now(), Kind: kind, Index: index}
	if el != nil {
		ev.ElementID = el.ID()
	}
	if s.hooks.OnStepStart != nil {
		s.hooks.OnStepStart(ctx, ev)
	}
	logger.DebugContext(ctx, "step", "kind", kind, "index", index, "element", ev.ElementID)

	err := fn()

	end := *ev
	end.Duration = s.now().Sub(ev.Timestamp)
	end.Err = err
	if s.hooks.OnStepEnd != nil {
		s.hooks.OnStepEnd(ctx, &end)
	}
	if err != nil {
		logger.DebugContext(ctx, "step aborted", "kind", kind, "index", index, "err", err)
		return err
	}
	report.Steps++
	return nil
}

func (s *Sequencer) tick(ctx context.Context) func(*domain.TickEvent) {
	if s.hooks.OnTick == nil {
		return nil
	}
	return func(ev *domain.TickEvent) {
		s.hooks.OnTick(ctx, ev)
	}
}
