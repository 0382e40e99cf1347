package domain

import (
	"fmt"
	"time"
)

// ElementIDs names the three elements a line is displayed through.
type ElementIDs struct {
	Container string `json:"container"`
	Target    string `json:"target"`
	Caret     string `json:"caret"`
}

// Line is one typed line of the script.
type Line struct {
	ID          string        `json:"id"`
	Elements    ElementIDs    `json:"elements"`
	Text        string        `json:"text"`
	TypingSpeed time.Duration `json:"typing_speed"`
}

// Timing holds the named delays of a run.
type Timing struct {
	// Speed is the default per-character delay for lines that do not set one.
	Speed           time.Duration `json:"speed"`
	GapBetweenLines time.Duration `json:"gap_between_lines"`
	GapBeforeFade   time.Duration `json:"gap_before_fade"`
	GapBeforeFinale time.Duration `json:"gap_before_finale"`
	FadeFallback    time.Duration `json:"fade_fallback"`
}

// Script is the immutable input of a run. Lines are played in slice order.
type Script struct {
	Lines    []Line `json:"lines"`
	Timing   Timing `json:"timing"`
	BlockID  string `json:"block_id"`
	FinaleID string `json:"finale_id"`

	// Finale is optional text placed into the finale element before it is shown.
	// When empty the finale keeps whatever content the host gave it.
	Finale string `json:"finale,omitempty"`
}

// ElementIDs returns every id the script needs, in resolution order:
// each line's container, target and caret, then the block, then the finale.
func (s Script) ElementIDs() []string {
	ids := make([]string, 0, len(s.Lines)*3+2)
	for _, l := range s.Lines {
		ids = append(ids, l.Elements.Container, l.Elements.Target, l.Elements.Caret)
	}
	return append(ids, s.BlockID, s.FinaleID)
}

// Validate checks the script invariants: at least one line, every id set,
// every duration non-negative.
func (s Script) Validate() error {
	if len(s.Lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrInvalidScript)
	}
	for i, l := range s.Lines {
		if l.Elements.Container == "" || l.Elements.Target == "" || l.Elements.Caret == "" {
			return fmt.Errorf("%w: line %d (%q) is missing an element id", ErrInvalidScript, i+1, l.ID)
		}
		if l.TypingSpeed < 0 {
			return fmt.Errorf("%w: line %d (%q) has a negative typing speed", ErrInvalidScript, i+1, l.ID)
		}
	}
	if s.BlockID == "" {
		return fmt.Errorf("%w: block id is empty", ErrInvalidScript)
	}
	if s.FinaleID == "" {
		return fmt.Errorf("%w: finale id is empty", ErrInvalidScript)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"speed", s.Timing.Speed},
		{"gap_between_lines", s.Timing.GapBetweenLines},
		{"gap_before_fade", s.Timing.GapBeforeFade},
		{"gap_before_finale", s.Timing.GapBeforeFinale},
		{"fade_fallback", s.Timing.FadeFallback},
	}
	for _, v := range durations {
		if v.d < 0 {
			return fmt.Errorf("%w: %s is negative (%s)", ErrInvalidScript, v.name, v.d)
		}
	}
	return nil
}

// GapAfter returns the delay that follows the reveal of line i.
// The last line is followed by GapBeforeFade instead of GapBetweenLines.
func (s Script) GapAfter(i int) time.Duration {
	if i == len(s.Lines)-1 {
		return s.Timing.GapBeforeFade
	}
	return s.Timing.GapBetweenLines
}

// SpeedFor returns the per-character delay of line i.
// A zero TypingSpeed inherits Timing.Speed.
func (s Script) SpeedFor(i int) time.Duration {
	if d := s.Lines[i].TypingSpeed; d > 0 {
		return d
	}
	return s.Timing.Speed
}

// RevealState is the transient state of one reveal call.
type RevealState struct {
	Prefix       int  // number of code points currently displayed
	Total        int  // number of code points in the text
	CaretVisible bool // caret indicator visibility
}

// Report summarises a completed run.
type Report struct {
	RunID   string            `json:"run_id"`
	Outcome TransitionOutcome `json:"outcome"`
	Steps   int               `json:"steps"`
	Elapsed time.Duration     `json:"elapsed"`
}
