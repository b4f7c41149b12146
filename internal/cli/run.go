package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"runready/internal/session"
	"runready/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Track a live run",
	Long: `Open the live run screen. Elapsed time, distance and heart rate update once
per second; pause with space and end with 'e'. Ended runs are saved to the
backend with a short insight.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, tui.ScreenRun)
	},
}

func init() {
	runCmd.Flags().Uint64("seed", 0, "Seed the simulated heart rate (0 = random)")
	rootCmd.AddCommand(runCmd)
}

func runTUI(cmd *cobra.Command, start tui.Screen) error {
	rt, err := setup(cmd, setupOptions{logToFile: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	agg := rt.aggregator(true)
	defer agg.Wait()
	pipeline := rt.pipeline()

	model := tui.NewApp(ctx, tui.Deps{
		Aggregator: agg,
		Pipeline:   pipeline,
		Client:     rt.client,
		Session:    sessionOptions(cmd, rt),
	}, start)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	// quitting mid-run still keeps the run
	if s := model.ActiveRun(); s != nil {
		summary, err := s.End()
		if err != nil {
			return err
		}
		fmt.Printf("Saving run %s (%s, %.2f km)...\n", summary.SessionID, summary.DurationText, summary.DistanceKm)
		record, err := pipeline.Complete(context.WithoutCancel(ctx), summary)
		if err != nil {
			return err
		}
		fmt.Println(record.Insight)
	}
	return nil
}

func sessionOptions(cmd *cobra.Command, rt *app) session.Options {
	opts := session.Options{
		PaceIncrement: rt.cfg.Session.PaceKmPerTick,
		Logger:        rt.logger,
	}

	seed := rt.cfg.Session.Seed
	if cmd.Flags().Lookup("seed") != nil {
		if s, _ := cmd.Flags().GetUint64("seed"); s != 0 {
			seed = s
		}
	}
	if seed != 0 {
		opts.Rand = session.NewRand(seed)
	}
	return opts
}
