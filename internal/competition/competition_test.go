package competition_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/signalnine/scorekeeper/internal/competition"
	"github.com/signalnine/scorekeeper/internal/logger"
	"github.com/signalnine/scorekeeper/internal/logstore"
	"github.com/signalnine/scorekeeper/internal/result"
	"github.com/signalnine/scorekeeper/internal/scoring"
	"github.com/signalnine/scorekeeper/internal/testutil"
	"github.com/signalnine/scorekeeper/internal/trialconfig"
)

// fixedScorer hands out canned trial results and records call order.
type fixedScorer struct {
	mu     sync.Mutex
	scores map[string]map[result.Team]float64
	calls  []string
	fail   string
}

func (f *fixedScorer) Trial(_ context.Context, trial string, _ []result.Team) (*result.TrialInfo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, trial)
	f.mu.Unlock()
	if trial == f.fail {
		return nil, errors.New("boom")
	}
	return &result.TrialInfo{TrialName: trial, TrialScores: f.scores[trial]}, nil
}

func teams(names ...string) []result.Team { return result.Teams(names) }

func TestRank(t *testing.T) {
	Convey("Given trial results", t, func() {
		infos := []*result.TrialInfo{
			{TrialName: "assembly", TrialScores: map[result.Team]float64{"a": 1, "b": 5}},
			{TrialName: "kitting", TrialScores: map[result.Team]float64{"a": 2}},
		}

		Convey("Totals are summed and sorted descending", func() {
			lb := competition.Rank(teams("a", "b", "c"), infos)
			So(lb.Trials, ShouldResemble, []string{"assembly", "kitting"})
			So(lb.Standings, ShouldHaveLength, 3)
			So(lb.Standings[0].Team, ShouldEqual, result.Team("b"))
			So(lb.Standings[0].Total, ShouldEqual, 5.0)
			So(lb.Standings[1].Team, ShouldEqual, result.Team("a"))
			So(lb.Standings[1].Total, ShouldEqual, 3.0)
			So(lb.Standings[1].TrialScores, ShouldResemble, map[string]float64{"assembly": 1, "kitting": 2})
			So(lb.Standings[2].Team, ShouldEqual, result.Team("c"))
			So(lb.Standings[2].Total, ShouldEqual, 0.0)
			So(lb.Standings[2].Rank, ShouldEqual, 3)
		})

		Convey("Ties keep the input team order", func() {
			tied := []*result.TrialInfo{{TrialName: "t", TrialScores: map[result.Team]float64{"x": 4, "y": 4, "z": 4}}}
			lb := competition.Rank(teams("z", "x", "y"), tied)
			So([]result.Team{lb.Standings[0].Team, lb.Standings[1].Team, lb.Standings[2].Team},
				ShouldResemble, teams("z", "x", "y"))
		})
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	scores := map[string]map[result.Team]float64{
		"c_trial": {"a": 0.1, "b": 0.2},
		"a_trial": {"a": 0.7, "b": 0.3},
		"b_trial": {"a": 0.3},
	}

	Convey("Trials are scored in name order", t, func() {
		s := &fixedScorer{scores: scores}
		res, err := competition.New(s, logger.Nop(), competition.Options{}).
			Run(ctx, []string{"c_trial", "a_trial", "b_trial"}, teams("b", "a"))
		So(err, ShouldBeNil)
		So(s.calls, ShouldResemble, []string{"a_trial", "b_trial", "c_trial"})
		So(res.Trials[0].TrialName, ShouldEqual, "a_trial")
		So(res.Leaderboard.Standings[0].Team, ShouldEqual, result.Team("a"))
	})

	Convey("Parallel scoring gives the sequential result", t, func() {
		seq, err := competition.New(&fixedScorer{scores: scores}, logger.Nop(), competition.Options{}).
			Run(ctx, []string{"c_trial", "a_trial", "b_trial"}, teams("a", "b"))
		So(err, ShouldBeNil)
		par, err := competition.New(&fixedScorer{scores: scores}, logger.Nop(), competition.Options{Parallel: 3}).
			Run(ctx, []string{"c_trial", "a_trial", "b_trial"}, teams("a", "b"))
		So(err, ShouldBeNil)
		So(par.Leaderboard, ShouldResemble, seq.Leaderboard)
	})

	Convey("A failing trial fails the run", t, func() {
		for _, parallel := range []int{0, 2} {
			_, err := competition.New(&fixedScorer{scores: scores, fail: "b_trial"}, logger.Nop(),
				competition.Options{Parallel: parallel}).Run(ctx, []string{"a_trial", "b_trial"}, teams("a"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "b_trial")
		}
	})
}

func TestRunFromLogs(t *testing.T) {
	Convey("Given two trials of logs", t, func() {
		logs := t.TempDir()
		order := func(score int, dur float64) []testutil.Order {
			return []testutil.Order{{ID: "KIT01", MaxScore: 9, Score: score, Submitted: true, Duration: dur}}
		}
		testutil.WriteAttempt(t, logs, "team_a", "kitting", 0, testutil.Run{CompletionTime: 30, Orders: order(9, 20)}, 500)
		testutil.WriteAttempt(t, logs, "team_b", "kitting", 0, testutil.Run{CompletionTime: 30, Orders: order(9, 40)}, 500)
		testutil.WriteAttempt(t, logs, "team_a", "kitting_fast", 0, testutil.Run{CompletionTime: 30, Orders: order(3, 20)}, 500)

		configs := t.TempDir()
		cfg := testutil.TrialConfig(testutil.ConfigOrder{ID: "KIT01", Type: "kitting", Products: 2})
		testutil.WriteFile(t, configs, "kitting.yaml", cfg)
		testutil.WriteFile(t, configs, "kitting_fast.yaml", cfg)

		store := logstore.New(logs)
		agg := scoring.New(trialconfig.NewReader(configs, logger.Nop()), store, logger.Nop())

		Convey("The leaderboard ranks the faster team first", func() {
			all, err := store.Teams()
			So(err, ShouldBeNil)
			names, err := store.Trials(all)
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"kitting", "kitting_fast"})

			res, err := competition.New(agg, logger.Nop(), competition.Options{Parallel: 2}).Run(context.Background(), names, all)
			So(err, ShouldBeNil)
			lb := res.Leaderboard
			So(lb.Standings[0].Team, ShouldEqual, result.Team("team_a"))
			// kitting: a 30/20*9 + kitting_fast: a alone 3
			So(lb.Standings[0].Total, ShouldAlmostEqual, 16.5, 1e-9)
			So(lb.Standings[0].RawScore, ShouldEqual, 12)
			So(lb.Standings[1].Total, ShouldAlmostEqual, 6.75, 1e-9)
			_, scored := lb.Standings[1].TrialScores["kitting_fast"]
			So(scored, ShouldBeTrue)
		})
	})
}
