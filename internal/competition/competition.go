// Package competition scores every trial and ranks teams by their summed
// trial scores.
package competition

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/signalnine/scorekeeper/internal/logger"
	"github.com/signalnine/scorekeeper/internal/result"
)

// TrialScorer scores one trial for a set of teams.
type TrialScorer interface {
	Trial(ctx context.Context, trial string, teams []result.Team) (*result.TrialInfo, error)
}

type Options struct {
	// Parallel is the number of trials scored at once. Values below 2 score
	// sequentially.
	Parallel int
}

type Aggregator struct {
	scorer TrialScorer
	opts   Options
	log    logger.Logger
}

func New(scorer TrialScorer, log logger.Logger, opts Options) *Aggregator {
	return &Aggregator{scorer: scorer, opts: opts, log: log.Named("competition")}
}

// Result holds the per-trial details alongside the leaderboard built from
// them. Trials are in name order.
type Result struct {
	Trials      []*result.TrialInfo `json:"trials"`
	Leaderboard result.Leaderboard  `json:"leaderboard"`
}

// Run scores trials for teams. The outcome does not depend on Parallel:
// each trial fills its own slot and totals are summed afterwards in trial
// name order.
func (a *Aggregator) Run(ctx context.Context, trials []string, teams []result.Team) (*Result, error) {
	sorted := append([]string(nil), trials...)
	sort.Strings(sorted)

	infos := make([]*result.TrialInfo, len(sorted))
	if a.opts.Parallel > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.opts.Parallel)
		for i, trial := range sorted {
			i, trial := i, trial
			g.Go(func() error {
				info, err := a.scorer.Trial(gctx, trial, teams)
				if err != nil {
					return fmt.Errorf("scoring trial %s: %w", trial, err)
				}
				infos[i] = info
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, trial := range sorted {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			info, err := a.scorer.Trial(ctx, trial, teams)
			if err != nil {
				return nil, fmt.Errorf("scoring trial %s: %w", trial, err)
			}
			infos[i] = info
		}
	}

	lb := Rank(teams, infos)
	a.log.Info(ctx, "competition scored",
		logger.Int("trials", len(sorted)),
		logger.Int("teams", len(teams)),
		logger.Int("parallel", a.opts.Parallel),
	)
	return &Result{Trials: infos, Leaderboard: lb}, nil
}

// Rank sums each team's trial scores in the order of infos and sorts teams
// by total, highest first. A team missing from a trial adds 0; ties keep
// the order of teams.
func Rank(teams []result.Team, infos []*result.TrialInfo) result.Leaderboard {
	lb := result.Leaderboard{
		Trials:    make([]string, 0, len(infos)),
		Standings: make([]result.Standing, 0, len(teams)),
	}
	for _, info := range infos {
		lb.Trials = append(lb.Trials, info.TrialName)
	}
	for _, team := range teams {
		st := result.Standing{Team: team, TrialScores: make(map[string]float64, len(infos))}
		for _, info := range infos {
			if score, ok := info.Score(team); ok {
				st.Total += score
				st.TrialScores[info.TrialName] = score
			}
			if ts, ok := info.TeamSubmissions[team]; ok {
				st.RawScore += ts.RawScore()
			}
		}
		lb.Standings = append(lb.Standings, st)
	}
	sort.SliceStable(lb.Standings, func(i, j int) bool {
		return lb.Standings[i].Total > lb.Standings[j].Total
	})
	for i := range lb.Standings {
		lb.Standings[i].Rank = i + 1
	}
	return lb
}
