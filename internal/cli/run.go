package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aretw0/prologue"
	"github.com/aretw0/prologue/internal/presentation/tui"
	"github.com/aretw0/prologue/pkg/adapters/memory"
	"github.com/aretw0/prologue/pkg/adapters/terminal"
	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/observability"
	"github.com/aretw0/prologue/pkg/script"
	"github.com/prometheus/client_golang/prometheus"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	ScriptPath  string // empty plays the built-in script
	JSON        bool
	Watch       bool
	Debug       bool
	LogLevel    string // debug, info, warn or error; empty disables logging
	MetricsAddr string
	FadeMs      int

	Stdout io.Writer
	Stderr io.Writer
}

func (o *RunOptions) defaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Execute handles the 'run' command logic, dispatching to a single play or Watch mode.
func Execute(ctx context.Context, opts RunOptions) error {
	opts.defaults()

	if opts.Watch && opts.JSON {
		return fmt.Errorf("--watch and --json cannot be used together")
	}
	if opts.Watch && opts.ScriptPath == "" {
		return fmt.Errorf("--watch needs a script file")
	}
	if opts.FadeMs < 0 {
		return fmt.Errorf("--fade-ms must not be negative")
	}

	logger, err := createLogger(opts.Debug, opts.LogLevel, opts.Stderr)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	if opts.MetricsAddr != "" {
		stop := serveMetrics(opts.MetricsAddr, reg, logger)
		defer stop()
	}

	hooks := metrics.Hooks()
	if opts.Debug {
		hooks = observability.Chain(hooks, observability.LogHooks(logger))
	}
	seq := prologue.New(prologue.WithLogger(logger), prologue.WithLifecycleHooks(hooks))

	if opts.Watch {
		return RunWatch(ctx, opts, seq, logger)
	}

	s, err := loadScript(opts.ScriptPath)
	if err != nil {
		return err
	}
	_, err = play(ctx, opts, seq, s)
	return handleExecutionError(err)
}

func loadScript(path string) (domain.Script, error) {
	if path == "" {
		return script.Default(), nil
	}
	return script.Load(path)
}

// play runs s once on the binding selected by opts.
func play(ctx context.Context, opts RunOptions, seq *prologue.Sequencer, s domain.Script) (*domain.Report, error) {
	if opts.JSON {
		enc := json.NewEncoder(opts.Stdout)
		var (
			mu     sync.Mutex
			encErr error
		)
		ui := memory.NewBindingForScript(s, memory.WithCallObserver(func(c memory.Call) {
			mu.Lock()
			defer mu.Unlock()
			if encErr == nil {
				if err := enc.Encode(c); err != nil {
					encErr = fmt.Errorf("failed to write call log: %w", err)
				}
			}
		}))
		report, err := seq.Run(ctx, s, ui)
		if err != nil {
			return report, err
		}
		mu.Lock()
		defer mu.Unlock()
		if encErr != nil {
			return report, encErr
		}
		return report, enc.Encode(map[string]any{"report": report})
	}

	page := terminal.NewPage(s, opts.Stdout,
		terminal.WithFadeDuration(time.Duration(opts.FadeMs)*time.Millisecond),
		terminal.WithMarkdownRenderer(tui.NewRenderer(terminal.Width(opts.Stdout, 80))),
	)
	defer page.Close()
	return seq.Run(ctx, s, page)
}

// serveMetrics exposes reg on addr until the returned stop func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           observability.NewHandler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Starting metrics server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
