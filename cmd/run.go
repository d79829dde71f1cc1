package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/exec-enrich/internal/model"
)

var (
	runCompany  string
	runScore    float64
	runPriority string
	runWebsite  string
)

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Enrich a single company and print the result as JSON",
	Example: `  exec-enrich run --company "Acme Plumbing Ltd" --score 85 --priority A --website acmeplumbing.co.uk`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "run")
		if err != nil {
			return err
		}
		defer env.Close()

		result := env.Orchestrator.Enrich(ctx, model.Lead{
			CompanyName:  runCompany,
			LeadScore:    runScore,
			PriorityTier: model.ParsePriorityTier(runPriority),
			Website:      runWebsite,
		})

		if err := printJSON(result); err != nil {
			return eris.Wrap(err, "run: encode result")
		}
		if result.Status == model.StatusFailed {
			return eris.Errorf("run: enrichment failed: %s", result.ErrorMessage)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runCompany, "company", "", "company name (required)")
	runCmd.Flags().Float64Var(&runScore, "score", 0, "lead score 0-100")
	runCmd.Flags().StringVar(&runPriority, "priority", "C", "priority tier A, B or C")
	runCmd.Flags().StringVar(&runWebsite, "website", "", "company website")
	_ = runCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(runCmd)
}
