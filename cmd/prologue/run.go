package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/prologue/internal/cli"
	"github.com/aretw0/prologue/internal/logging"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Play a script",
	Long:  `Plays the script at the given path, or the built-in script when no path is given.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{}
		if len(args) > 0 {
			opts.ScriptPath = args[0]
		}
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		opts.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		opts.FadeMs, _ = cmd.Flags().GetInt("fade-ms")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		if err := cli.Execute(sigCtx, opts); err != nil {
			logging.New(slog.LevelError).Error("run failed", "err", err)
			os.Exit(1)
		}
		if sig := sigCtx.Signal(); sig != nil {
			fmt.Fprintf(os.Stderr, "\nInterrupted (%s).\n", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Record UI calls as NDJSON on stdout instead of drawing")
	runCmd.Flags().BoolP("watch", "w", false, "Replay the script whenever the file changes")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :2112)")
	runCmd.Flags().Int("fade-ms", 600, "Simulated fade transition length; 0 disables transitions")

	// 'run' is the default when no command is provided.
	rootCmd.Args = runCmd.Args
	rootCmd.Run = runCmd.Run
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
