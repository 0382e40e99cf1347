package domain

// Display states applied to elements by the sequencer.
const (
	// StateShow makes a line container or the finale visible.
	StateShow = "show"

	// StateFadeOut starts the block's fade transition.
	StateFadeOut = "fadeout"
)
