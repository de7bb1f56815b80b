package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/scorekeeper/internal/audit"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check trial configs and attempt logs for defects",
		Long:  "Audit every trial config and attempt folder: missing configs, orders worth 0, corrupt trial logs, unreadable sensor costs and maximum scores that disagree with the config. Exits non-zero when a defect is found.",
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
			defects, err := audit.New(a.cfg.TrialsDir, a.store, a.cfg.Parallel).Run(cmd.Context(), trials, teams)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range defects {
				fmt.Fprintln(out, d.Error())
			}
			if len(defects) > 0 {
				return fmt.Errorf("%d defects found", len(defects))
			}
			fmt.Fprintf(out, "%d trials and %d teams checked, no defects\n", len(trials), len(teams))
			return nil
		},
	}
}
