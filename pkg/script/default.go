package script

import (
	"time"

	"github.com/aretw0/prologue/pkg/domain"
)

// Default timing of the built-in script.
const (
	DefaultSpeed           = 58 * time.Millisecond
	DefaultGapBetweenLines = 1500 * time.Millisecond
	DefaultGapBeforeFade   = 1600 * time.Millisecond
	DefaultGapBeforeFinale = 800 * time.Millisecond
	DefaultFadeFallback    = 1600 * time.Millisecond
)

// Default element ids of the block and the finale.
const (
	DefaultBlockID  = "block"
	DefaultFinaleID = "finale"
)

var defaultLines = []string{
	" Amid a global arms race, AGI was achieved — quietly, then everywhere.",
	" Autonomous agents went mainstream. 2028 was the last year humans had a monopoly on labour.",
	" By 2030, synthetic corporations (\"synths\") — indistinguishable blends of humans and thinking machines — had become the norm.",
}

const defaultFinale = "# Welcome to the synthetic age."

// DefaultTiming returns the timing of the built-in script.
func DefaultTiming() domain.Timing {
	return domain.Timing{
		Speed:           DefaultSpeed,
		GapBetweenLines: DefaultGapBetweenLines,
		GapBeforeFade:   DefaultGapBeforeFade,
		GapBeforeFinale: DefaultGapBeforeFinale,
		FadeFallback:    DefaultFadeFallback,
	}
}

// Default returns the built-in three-line script. Each call returns a fresh copy.
func Default() domain.Script {
	s := domain.Script{
		Timing:   DefaultTiming(),
		BlockID:  DefaultBlockID,
		FinaleID: DefaultFinaleID,
		Finale:   defaultFinale,
	}
	for i, text := range defaultLines {
		s.Lines = append(s.Lines, domain.Line{
			ID:       lineID(i),
			Elements: defaultElements(i),
			Text:     text,
		})
	}
	return s
}
