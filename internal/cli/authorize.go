package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"runready/internal/config"
	"runready/internal/health"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Request read access to health data",
	Long: `Ask the configured source for permission to read sleep, steps and heart rate.
Run this once before the first readiness check.`,
	RunE: runAuthorize,
}

func init() {
	rootCmd.AddCommand(authorizeCmd)
}

func runAuthorize(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, setupOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	err = rt.source.Authorize(cmd.Context())
	switch {
	case err == nil:
		fmt.Printf("Health data access granted (%s source).\n", rt.cfg.Source.Kind)
		return nil
	case errors.Is(err, health.ErrPermissionDenied):
		fmt.Println("Permission was denied. Allow access to sleep, steps and heart rate in your health settings, then try again.")
	case errors.Is(err, health.ErrUnavailable) && rt.cfg.Source.Kind == config.SourceSQLite:
		fmt.Println("The local sample store is not available. Run 'runready import <file>' to load samples.")
	case errors.Is(err, health.ErrUnavailable):
		fmt.Printf("The health bridge at %s is not reachable.\n", rt.cfg.Source.BridgeURL)
	}
	return err
}
