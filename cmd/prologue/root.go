package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prologue",
	Short: "Prologue plays typed text intros",
	Long:  `Prologue reveals the lines of a script with a typewriter effect, fades them out and shows a finale.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().String("log-level", "", "Write logs at this level (debug, info, warn, error) to stderr")
}
