/*
Package prologue is a small sequencer for typed text intros.

It reveals the lines of a script with a typewriter effect, pauses between
them, fades the block out and then shows a finale. The sequencer never talks
to a screen directly: everything it does goes through a ports.UIBinding, so
the same script can drive a terminal, an in-memory recorder used in tests, or
any other host.

# Concept

A run is strictly linear. Each step finishes before the next one starts:

  - for every line: show its container, type its text, wait
  - fade the block and wait for the transition to finish, or for a fallback timeout
  - wait, then show the finale

Every element is resolved before the first mutation, so a missing id aborts
the run without touching the screen.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/prologue"
		"github.com/aretw0/prologue/pkg/adapters/terminal"
		"github.com/aretw0/prologue/pkg/script"
	)

	func main() {
		s := script.Default()
		page := terminal.NewPage(s, os.Stdout)

		report, err := prologue.Run(context.Background(), s, page)
		if err != nil {
			log.Fatal(err)
		}
		log.Println("fade:", report.Outcome)
	}
*/
package prologue
