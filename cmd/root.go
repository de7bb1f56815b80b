package cmd

import (
	"github.com/spf13/cobra"

	"github.com/signalnine/scorekeeper/internal/config"
)

var (
	cfgFile         string
	flagLogLevel    string
	flagMetricsFile string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "scorekeeper",
		Short:        "Score competition trials and rank teams from simulator logs",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	root.AddCommand(newScoreCmd())
	root.AddCommand(newLeaderboardCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newValidateCmd())
	return root
}
