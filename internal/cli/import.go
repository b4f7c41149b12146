package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"runready/internal/service"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import exported health samples into the local store",
	Long: `Load a JSON export of the form {"sleep": [...], "steps": [...], "heart_rate": [...]}
into the local sample store used by the sqlite source. Re-importing the same
file is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("source", service.DefaultImportSource, "Label recorded with each imported sample")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, setupOptions{needStore: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	label, _ := cmd.Flags().GetString("source")
	svc := service.NewImportService(rt.db)

	progress := make(chan service.ImportProgress, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			if p.Completed == p.Total {
				fmt.Printf("  %-10s %d samples\n", p.Phase, p.Total)
			}
		}
	}()

	result, err := svc.ImportFile(cmd.Context(), args[0], label, progress)
	<-done
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d new samples (%d sleep, %d steps, %d heart rate)",
		result.Stored(), result.SleepStored, result.StepsStored, result.HeartRateStored)
	if result.Skipped > 0 {
		fmt.Printf(", %d skipped", result.Skipped)
	}
	fmt.Println()

	counts, err := rt.db.SampleCounts(cmd.Context())
	if err == nil {
		rt.logger.Debug("store totals", "counts", counts)
	}
	return nil
}
