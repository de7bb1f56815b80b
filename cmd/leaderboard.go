package cmd

import (
	"github.com/spf13/cobra"

	"github.com/signalnine/scorekeeper/internal/report"
	"github.com/signalnine/scorekeeper/internal/result"
)

var flagBreakdown bool

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Score every trial and rank teams by total score",
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
			trials, err := a.trials(nil, teams)
			if err != nil {
				return err
			}
			res, _, err := a.compete(ctx, trials, teams)
			if err != nil {
				return err
			}
			var infos []*result.TrialInfo
			if flagBreakdown {
				infos = res.Trials
			}
			return report.Render(&res.Leaderboard, infos, flagFormat, cmd.OutOrStdout())
		},
	}
	addWeightFlags(cmd)
	addFormatFlag(cmd)
	cmd.Flags().IntVar(&flagParallel, "parallel", 1, "trials scored concurrently")
	cmd.Flags().BoolVar(&flagBreakdown, "breakdown", false, "also print the per-trial score breakdown")
	return cmd
}
