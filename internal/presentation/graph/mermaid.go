package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/prologue/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the steps a script runs.
// It applies semantic styling:
// - Reveal: [Rectangle] labelled with the text and typing speed
// - Fade: {{Hexagon}} with both race exits
// - Finale: ((Circle))
// Gaps are edge labels.
func GenerateMermaid(s domain.Script) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	prev := ""
	edge := func(to, label string) {
		if prev == "" {
			prev = to
			return
		}
		if label == "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, to))
		} else {
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", prev, label, to))
		}
		prev = to
	}

	gap := ""
	for i, line := range s.Lines {
		id := sanitizeMermaidID(line.ID)
		sb.WriteString(fmt.Sprintf("    %s[\"%s <br/> %s/char\"]\n", id, escapeLabel(preview(line.Text)), s.SpeedFor(i)))
		edge(id, gap)
		gap = formatGap(s.GapAfter(i))
	}

	fade := sanitizeMermaidID(s.BlockID)
	finale := sanitizeMermaidID(s.FinaleID)
	sb.WriteString(fmt.Sprintf("    %s{{\"fade %s\"}}\n", fade, s.BlockID))
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", finale, s.FinaleID))
	edge(fade, gap)

	// Both race exits lead to the finale.
	after := formatGap(s.Timing.GapBeforeFinale)
	sb.WriteString(fmt.Sprintf("    %s -- \"%s + %s\" --> %s\n", fade, domain.TransitionFired, after, finale))
	sb.WriteString(fmt.Sprintf("    %s -. \"%s after %s + %s\" .-> %s\n", fade, domain.TimedOut, s.Timing.FadeFallback, after, finale))

	return sb.String()
}

func formatGap(d time.Duration) string {
	return "wait " + d.String()
}

// preview keeps labels readable for long lines.
func preview(text string) string {
	const maxRunes = 24
	r := []rune(text)
	if len(r) <= maxRunes {
		return text
	}
	return string(r[:maxRunes]) + "…"
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
