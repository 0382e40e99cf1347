package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Prologue banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.Profile
	lines := []struct {
		text  string
		color string
	}{
		{" ___            _                    ", "#818cf8"},
		{"| _ \\_ _ ___ __| |___  __ _ _  _ ___ ", "#a78bfa"},
		{"|  _/ '_/ _ \\/ _` / _ \\/ _` | || / -_)", "#c084fc"},
		{"|_| |_| \\___/\\__,_\\___/\\__, |\\_,_\\___|", "#e879f9"},
		{"                       |___/          ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
