// Package scoring turns the runs of every team in a trial into normalized
// trial scores.
package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/signalnine/scorekeeper/internal/bestrun"
	"github.com/signalnine/scorekeeper/internal/logger"
	"github.com/signalnine/scorekeeper/internal/logstore"
	"github.com/signalnine/scorekeeper/internal/metrics"
	"github.com/signalnine/scorekeeper/internal/result"
	"github.com/signalnine/scorekeeper/internal/runlog"
	"github.com/signalnine/scorekeeper/internal/sensorcost"
)

// OrderSource supplies the order list of a trial.
type OrderSource interface {
	Orders(ctx context.Context, trial string) []result.OrderInfo
}

type Aggregator struct {
	orders   OrderSource
	store    *logstore.Store
	selector *bestrun.Selector
	parser   *runlog.Parser
	costs    *sensorcost.Reader
	weights  result.Weights
	log      logger.Logger
	metrics  *metrics.Recorder
}

// Option configures an Aggregator.
type Option func(*Aggregator)

func WithWeights(w result.Weights) Option {
	return func(a *Aggregator) { a.weights = w }
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(a *Aggregator) { a.metrics = rec }
}

func New(orders OrderSource, store *logstore.Store, log logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		orders:  orders,
		store:   store,
		weights: result.DefaultWeights,
		log:     log.Named("scoring"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.selector = bestrun.NewSelector(log, a.metrics)
	a.parser = runlog.NewParser(log)
	a.costs = sensorcost.NewReader(log)
	return a
}

func (a *Aggregator) Weights() result.Weights { return a.weights }

// Trial loads the order list of trial and scores it.
func (a *Aggregator) Trial(ctx context.Context, trial string, teams []result.Team) (*result.TrialInfo, error) {
	return a.ScoreTrial(ctx, trial, a.orders.Orders(ctx, trial), teams)
}

// ScoreTrial scores teams on trial. Data problems only exclude the affected
// team; the only error returned is context cancellation.
func (a *Aggregator) ScoreTrial(ctx context.Context, trial string, orders []result.OrderInfo, teams []result.Team) (*result.TrialInfo, error) {
	start := time.Now()
	ids := result.OrderIDs(orders)
	subs := make(map[result.Team]result.TeamSubmission, len(teams))
	bestLogs := make(map[result.Team]string, len(teams))

	for _, team := range teams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := a.log.With(logger.Trial(trial), logger.Team(string(team)))

		ts, logPath, reason, err := a.submission(ctx, log, trial, team, ids)
		if err != nil {
			log.Error(ctx, "team excluded from trial", logger.String("reason", reason), logger.Error(err))
			a.metrics.Excluded(trial, reason)
			continue
		}
		subs[team] = ts
		if logPath != "" {
			bestLogs[team] = logPath
		}
	}

	info := Score(trial, orders, subs, bestLogs, a.weights)
	for team, score := range info.TrialScores {
		a.metrics.TrialScore(trial, string(team), score)
	}
	a.metrics.TrialScored(time.Since(start))
	a.log.Info(ctx, "trial scored",
		logger.Trial(trial),
		logger.Int("orders", len(orders)),
		logger.Int("teams", len(info.TrialScores)),
		logger.Float64("average_cost", info.Baseline.AverageCost),
	)
	return info, nil
}

var (
	errNoRun  = errors.New("no run and no readable sensor cost")
	errNoCost = errors.New("best run has no readable sensor cost")
)

// submission builds the TeamSubmission of team from its best run. A team
// without a run for trial still gets an all-absent submission when any of
// its other attempts reports a sensor cost.
func (a *Aggregator) submission(ctx context.Context, log logger.Logger, trial string, team result.Team, ids []string) (result.TeamSubmission, string, string, error) {
	attempts, err := a.store.Attempts(team)
	if err != nil {
		log.Error(ctx, "unable to list attempts", logger.Error(err))
	}

	sel, ok := a.selector.Select(ctx, trial, attempts)
	if !ok {
		for _, at := range attempts {
			if cost, ok := a.costs.Cost(ctx, at.CostPath()); ok {
				log.Warn(ctx, "no run for trial, scoring all orders as absent", logger.Path(at.CostPath()))
				return result.TeamSubmission{OrderSubmissions: result.Absent(ids), SensorCost: cost}, "", "", nil
			}
		}
		return result.TeamSubmission{}, "", metrics.ReasonNoRun, errNoRun
	}

	cost, ok := a.costs.Cost(ctx, sel.Attempt.CostPath())
	if !ok {
		return result.TeamSubmission{}, "", metrics.ReasonNoCost, errNoCost
	}
	return result.TeamSubmission{
		OrderSubmissions: a.parser.OrderSubmissions(ctx, ids, sel.LogPath()),
		SensorCost:       cost,
	}, sel.LogPath(), "", nil
}
