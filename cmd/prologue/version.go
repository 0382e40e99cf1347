package main

import (
	"fmt"
	"os"

	"github.com/aretw0/prologue"
	"github.com/aretw0/prologue/internal/presentation/tui"
	"github.com/aretw0/prologue/pkg/adapters/terminal"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of prologue",
	Run: func(cmd *cobra.Command, args []string) {
		if terminal.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, prologue.Version)
			return
		}
		fmt.Printf("prologue version %s\n", prologue.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
