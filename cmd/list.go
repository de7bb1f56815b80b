package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the teams and trials that would be scored",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, nil)
			if err != nil {
				return err
			}
			teams, err := a.teams()
			if err != nil {
				return err
			}
			trials, err := a.trials(nil, teams)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Teams (%s):\n", source(len(a.cfg.Teams) > 0))
			for _, t := range teams {
				attempts, err := a.store.Attempts(t)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  - %s (%d attempts)\n", t, len(attempts))
			}
			fmt.Fprintf(out, "\nTrials (%s):\n", source(len(a.cfg.Trials) > 0))
			for _, trial := range trials {
				fmt.Fprintf(out, "  - %s (%d orders)\n", trial, len(a.orders.Orders(cmd.Context(), trial)))
			}
			return nil
		},
	}
}

func source(configured bool) string {
	if configured {
		return "configured"
	}
	return "discovered"
}
