package main

import (
	"fmt"
	"os"

	"github.com/aretw0/prologue/internal/presentation/graph"
	"github.com/aretw0/prologue/pkg/domain"
	"github.com/aretw0/prologue/pkg/script"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [script]",
	Short: "Check a script for consistency",
	Long:  `Loads the script, checks ids and durations, and prints a summary.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := script.Default()
		if len(args) > 0 {
			var err error
			if s, err = script.Load(args[0]); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				os.Exit(1)
			}
		}
		if asGraph, _ := cmd.Flags().GetBool("graph"); asGraph {
			fmt.Print(graph.GenerateMermaid(s))
			return
		}
		printSummary(s)
		fmt.Println("Script is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("graph", false, "Print the script timeline as a Mermaid flowchart")
}

func printSummary(s domain.Script) {
	chars := 0
	for _, l := range s.Lines {
		chars += len([]rune(l.Text))
	}
	fmt.Printf("Lines:    %d (%d characters)\n", len(s.Lines), chars)
	fmt.Printf("Elements: %d\n", len(s.ElementIDs()))
	fmt.Printf("Speed:    %s/char, fade fallback %s\n", s.Timing.Speed, s.Timing.FadeFallback)
}
