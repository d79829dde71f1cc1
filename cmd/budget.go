package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/exec-enrich/internal/monitoring"
)

var (
	budgetMonth string
	statsHours  int
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Print the monthly budget report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if budgetMonth != "" {
			if _, err := time.Parse("2006-01", budgetMonth); err != nil {
				return eris.Errorf("budget: month %q must be YYYY-MM", budgetMonth)
			}
		}

		env, err := initEnv(cmd.Context(), "budget")
		if err != nil {
			return err
		}
		defer env.Close()

		rep, err := env.Tracker.Report(cmd.Context(), budgetMonth)
		if err != nil {
			return eris.Wrap(err, "budget: report")
		}
		return printJSON(rep)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print enrichment health over a lookback window",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsHours <= 0 {
			return eris.New("stats: --hours must be > 0")
		}

		env, err := initEnv(cmd.Context(), "stats")
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := monitoring.NewCollector(env.Store, env.Tracker).Collect(cmd.Context(), statsHours)
		if err != nil {
			return eris.Wrap(err, "stats: collect")
		}
		return printJSON(snap)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	budgetCmd.Flags().StringVar(&budgetMonth, "month", "", "month as YYYY-MM (default current)")
	statsCmd.Flags().IntVar(&statsHours, "hours", 24, "lookback window in hours")
	rootCmd.AddCommand(budgetCmd, statsCmd)
}
