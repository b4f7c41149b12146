package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"runready/internal/tui"
)

var readinessCmd = &cobra.Command{
	Use:     "readiness",
	Aliases: []string{"score"},
	Short:   "Compute today's readiness score",
	Long: `Read sleep, steps and resting heart rate from the configured source,
print the readiness score, and upload the raw metrics to the backend.`,
	RunE: runReadiness,
}

func init() {
	readinessCmd.Flags().Bool("json", false, "Print the report as JSON")
	readinessCmd.Flags().Bool("no-upload", false, "Skip uploading metrics to the backend")
	rootCmd.AddCommand(readinessCmd)
}

func runReadiness(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, setupOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	noUpload, _ := cmd.Flags().GetBool("no-upload")
	agg := rt.aggregator(!noUpload)

	report := agg.Refresh(cmd.Context())
	// uploads finish before the store and log file close
	defer agg.Wait()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println(tui.RenderReadinessCard(report.Score.Value, report.Score.Message))
	fmt.Printf("  Sleep:      %.1f h\n", report.Metrics.SleepHours)
	fmt.Printf("  Steps:      %d\n", report.Metrics.StepCount)
	if report.Metrics.HasHeartRate() {
		fmt.Printf("  Resting HR: %.0f bpm\n", report.Metrics.HeartRateBPM)
	} else {
		fmt.Println("  Resting HR: no data")
	}
	return nil
}
