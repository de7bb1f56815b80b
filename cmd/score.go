package cmd

import (
	"github.com/spf13/cobra"

	"github.com/signalnine/scorekeeper/internal/report"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [trial...]",
		Short: "Score trials and print a breakdown per team",
		Long:  "Score the named trials (default: configured or discovered trials), print the per-trial breakdown and store the results in a new run directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, scoringOverrides(cmd))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer a.flushMetrics(ctx)

			teams, err := a.teams()
			if err != nil {
				return err
			}
			trials, err := a.trials(args, teams)
			if err != nil {
				return err
			}
			res, _, err := a.compete(ctx, trials, teams)
			if err != nil {
				return err
			}
			return report.Render(&res.Leaderboard, res.Trials, flagFormat, cmd.OutOrStdout())
		},
	}
	addWeightFlags(cmd)
	addFormatFlag(cmd)
	return cmd
}
