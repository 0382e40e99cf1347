package prologue

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/prologue/internal/runtime"
	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/ports"
)

// Version is the current release of the module.
const Version = "0.3.0"

// Sequencer is the high-level entry point for the Prologue library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Sequencer struct {
	runtime *runtime.Sequencer
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Sequencer.
type Option func(*Sequencer)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Sequencer) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the sequencer.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// New initializes a Sequencer.
func New(opts ...Option) *Sequencer {
	s := &Sequencer{}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	s.runtime = runtime.NewSequencer(
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.hooks),
	)
	return s
}

// Run plays the script on ui and blocks until it finishes or fails.
// The returned error is for the host to report; the sequencer never retries.
func (s *Sequencer) Run(ctx context.Context, script domain.Script, ui ports.UIBinding) (*domain.Report, error) {
	return s.runtime.Run(ctx, script, ui)
}

// Run plays script on ui with a default Sequencer.
func Run(ctx context.Context, script domain.Script, ui ports.UIBinding) (*domain.Report, error) {
	return New().Run(ctx, script, ui)
}
