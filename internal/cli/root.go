// Package cli wires configuration, health sources and the backend client
// into the runready commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"runready/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "runready",
	Short: "Daily readiness scoring and live run tracking",
	Long: `runready reads last night's sleep, today's steps and your resting heart rate,
turns them into a 0-100 readiness score, and tracks live runs that are saved
to the runready backend with a short coaching insight.

Run without a subcommand to open the interactive dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, tui.ScreenReadiness)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.runready/config.json)")
}

// Execute runs the root command
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}
