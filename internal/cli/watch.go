package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/prologue"
	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/script"
	"github.com/fsnotify/fsnotify"
)

// reloadDelay lets editors finish writing before the script is read again.
const reloadDelay = 100 * time.Millisecond

// RunWatch plays the script and replays it from the start whenever the file changes.
// It returns when ctx is cancelled.
func RunWatch(ctx context.Context, opts RunOptions, seq *prologue.Sequencer, logger *slog.Logger) error {
	opts.defaults()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path, err := filepath.Abs(opts.ScriptPath)
	if err != nil {
		return err
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	logger.Info("Starting Watcher", "path", path)

	for {
		if !runWatchIteration(ctx, opts, seq, logger, watcher, path) {
			return nil
		}
		logger.Info("Watcher restarting")
	}
}

// readScript loads path and fingerprints its content.
// The fingerprint is empty when the file cannot be read.
func readScript(path string) (string, domain.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", domain.Script{}, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := script.Parse(data, script.FormatFor(path))
	return script.Fingerprint(data), s, err
}

// runWatchIteration plays once and waits for a change. It reports whether to play again.
func runWatchIteration(ctx context.Context, opts RunOptions, seq *prologue.Sequencer, logger *slog.Logger, watcher *fsnotify.Watcher, path string) bool {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// done is nil while nothing is playing.
	var done chan error
	current, s, err := readScript(path)
	if err != nil {
		logger.Error("Script load failed", "err", err)
		printSystemMessage(opts.Stderr, "Script is invalid, waiting for a fix: %v", err)
	} else {
		done = make(chan error, 1)
		go func(s domain.Script) {
			_, err := play(runCtx, opts, seq, s)
			done <- err
		}(s)
	}

	for {
		select {
		case <-ctx.Done():
			cancel()
			if done != nil {
				<-done
			}
			return false

		case err := <-done:
			if err != nil && !isInterrupted(err) {
				logger.Error("Sequence failed", "err", err)
				printSystemMessage(opts.Stderr, "Sequence failed: %v", err)
			}
			done = nil

		case event, ok := <-watcher.Events:
			if !ok {
				return false
			}
			if filepath.Clean(event.Name) != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if data, err := os.ReadFile(path); err == nil && current != "" && script.Fingerprint(data) == current {
				logger.Debug("Change ignored, content unchanged", "event", event.String())
				continue
			}
			logger.Info("Change detected, triggering reload", "event", event.String())
			printSystemMessage(opts.Stderr, "Change detected in '%s'.", filepath.Base(path))
			cancel()
			if done != nil {
				<-done
			}
			time.Sleep(reloadDelay)
			return true

		case err, ok := <-watcher.Errors:
			if !ok {
				return false
			}
			logger.Warn("Watcher error", "err", err)
		}
	}
}
