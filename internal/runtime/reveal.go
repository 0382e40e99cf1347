package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/ports"
)

// Reveal types text into target one code point at a time, perChar apart.
//
// The caret is visible for the whole call. For i in 0..=len(text) the target
// shows the first i code points, followed by a perChar pause; the pause after
// the full text is kept, so the caret lingers one tick before it is hidden.
func Reveal(ctx context.Context, ui ports.UIBinding, target, caret ports.Element, text string, perChar time.Duration) error {
	return reveal(ctx, ui, target, caret, text, perChar, nil)
}

func reveal(ctx context.Context, ui ports.UIBinding, target, caret ports.Element, text string, perChar time.Duration, onTick func(*domain.TickEvent)) error {
	if target == nil {
		return fmt.Errorf("reveal: nil target handle: %w", domain.ErrElementNotFound)
	}
	if caret == nil {
		return fmt.Errorf("reveal: nil caret handle: %w", domain.ErrElementNotFound)
	}

	runes := []rune(text)
	state := domain.RevealState{Total: len(runes)}

	if err := ui.SetCaretVisible(caret, true); err != nil {
		return bindingError("set_caret_visible", caret, err)
	}
	state.CaretVisible = true

	for i := 0; i <= len(runes); i++ {
		snapshot := string(runes[:i])
		if err := ui.SetText(target, snapshot); err != nil {
			return bindingError("set_text", target, err)
		}
		state.Prefix = i
		if onTick != nil {
			onTick(&domain.TickEvent{ElementID: target.ID(), Text: snapshot, State: state})
		}
		if err := Sleep(ctx, ui, perChar); err != nil {
			return err
		}
	}

	if err := ui.SetCaretVisible(caret, false); err != nil {
		return bindingError("set_caret_visible", caret, err)
	}
	return nil
}
