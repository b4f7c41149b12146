package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"runready/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config file is at:\n  %s/config.json\n\n", configDir)
		fmt.Println("Set api.base_url to your runready backend. Secrets can also come from")
		fmt.Println("RUNREADY_API_TOKEN and ANTHROPIC_API_KEY (a .env file works too).")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
