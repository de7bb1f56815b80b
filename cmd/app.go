package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/scorekeeper/internal/competition"
	"github.com/signalnine/scorekeeper/internal/config"
	"github.com/signalnine/scorekeeper/internal/logger"
	"github.com/signalnine/scorekeeper/internal/logstore"
	"github.com/signalnine/scorekeeper/internal/metrics"
	"github.com/signalnine/scorekeeper/internal/result"
	"github.com/signalnine/scorekeeper/internal/scoring"
	"github.com/signalnine/scorekeeper/internal/trialconfig"
)

// app bundles what every command builds from the loaded config.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	metrics *metrics.Recorder
	store   *logstore.Store
	orders  *trialconfig.Reader
}

// loadApp loads the config, applies global flag overrides and builds the
// shared collaborators. An explicitly passed --config must exist.
func loadApp(cmd *cobra.Command, override func(*config.Config)) (*app, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagMetricsFile != "" {
		cfg.MetricsFile = flagMetricsFile
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
		store:   logstore.New(cfg.LogsDir),
		orders:  trialconfig.NewReader(cfg.TrialsDir, log),
	}, nil
}

// teams returns the configured teams, or every team folder of the logs
// directory.
func (a *app) teams() ([]result.Team, error) {
	if len(a.cfg.Teams) > 0 {
		return result.Teams(a.cfg.Teams), nil
	}
	return a.store.Teams()
}

// trials picks trial names from args, then config, then the attempt folders
// of teams.
func (a *app) trials(args []string, teams []result.Team) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(a.cfg.Trials) > 0 {
		return a.cfg.Trials, nil
	}
	return a.store.Trials(teams)
}

// compete scores trials and stores the outcome in a new run directory.
func (a *app) compete(ctx context.Context, trials []string, teams []result.Team) (*competition.Result, string, error) {
	if len(teams) == 0 {
		return nil, "", fmt.Errorf("no teams found in %s", a.cfg.LogsDir)
	}
	if len(trials) == 0 {
		return nil, "", fmt.Errorf("no trials to score")
	}
	agg := scoring.New(a.orders, a.store, a.log,
		scoring.WithWeights(a.cfg.ScoreWeights()),
		scoring.WithMetrics(a.metrics),
	)
	res, err := competition.New(agg, a.log, competition.Options{Parallel: a.cfg.Parallel}).Run(ctx, trials, teams)
	if err != nil {
		return nil, "", err
	}
	runDir, err := a.persist(res, trials, teams)
	if err != nil {
		return nil, "", err
	}
	a.log.Info(ctx, "results stored", logger.Path(runDir))
	return res, runDir, nil
}

func (a *app) persist(res *competition.Result, trials []string, teams []result.Team) (string, error) {
	runDir, err := result.CreateRunDir(a.cfg.ResultsDir)
	if err != nil {
		return "", err
	}
	if err := result.WriteRunMeta(runDir, result.NewRunMeta(a.cfg.ScoreWeights(), teams, trials)); err != nil {
		return "", err
	}
	for _, info := range res.Trials {
		if err := result.WriteTrialInfo(runDir, info); err != nil {
			return "", err
		}
	}
	if err := result.WriteLeaderboard(runDir, &res.Leaderboard); err != nil {
		return "", err
	}
	return runDir, nil
}

// flushMetrics writes the metrics textfile when one is configured.
func (a *app) flushMetrics(ctx context.Context) {
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := a.metrics.WriteToTextfile(a.cfg.MetricsFile); err != nil {
		a.log.Warn(ctx, "metrics not written", logger.Path(a.cfg.MetricsFile), logger.Error(err))
	}
}

var (
	flagCostWeight float64
	flagTimeWeight float64
	flagParallel   int
	flagFormat     string
)

func addWeightFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&flagCostWeight, "cost-weight", 1.0, "weight of the sensor cost factor")
	cmd.Flags().Float64Var(&flagTimeWeight, "time-weight", 1.0, "weight of the completion speed factor")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json, csv)")
}

// scoringOverrides applies the scoring flags the user set explicitly.
func scoringOverrides(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		if cmd.Flags().Changed("cost-weight") {
			cfg.Weights.Cost = flagCostWeight
		}
		if cmd.Flags().Changed("time-weight") {
			cfg.Weights.Time = flagTimeWeight
		}
		if f := cmd.Flags().Lookup("parallel"); f != nil && f.Changed {
			cfg.Parallel = flagParallel
		}
	}
}
