package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"runready/internal/tui"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"runs"},
	Short:   "List saved runs",
	RunE:    runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 = all)")
	historyCmd.Flags().Bool("json", false, "Print runs as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, setupOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	runs, err := rt.client.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs yet. Start one with 'runready run'.")
		return nil
	}
	fmt.Println(tui.RenderHistoryTable(runs))
	return nil
}
