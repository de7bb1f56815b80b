// Package bestrun picks the representative attempt of a team for a trial:
// the highest total raw score, then the fastest completion, then the
// earliest attempt.
package bestrun

import (
	"context"
	"math"
	"sort"

	"github.com/signalnine/scorekeeper/internal/logger"
	"github.com/signalnine/scorekeeper/internal/logstore"
	"github.com/signalnine/scorekeeper/internal/metrics"
	"github.com/signalnine/scorekeeper/internal/runlog"
)

// Candidate is a ranked attempt.
type Candidate struct {
	Attempt        logstore.Attempt
	RawScore       int
	CompletionTime float64
	// Corrupt attempts rank as (0, +Inf).
	Corrupt bool
}

// Selection is the winning attempt together with every ranked candidate.
type Selection struct {
	Candidate
	Candidates []Candidate
}

// LogPath is the trial log of the selected attempt.
func (s Selection) LogPath() string { return s.Attempt.LogPath() }

// Better reports whether a ranks before b. Ties fall to the lower attempt
// index.
func Better(a, b Candidate) bool {
	if a.RawScore != b.RawScore {
		return a.RawScore > b.RawScore
	}
	if a.CompletionTime != b.CompletionTime {
		return a.CompletionTime < b.CompletionTime
	}
	return a.Attempt.Index < b.Attempt.Index
}

// Rank orders candidates best first.
func Rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool { return Better(cands[i], cands[j]) })
}

type Selector struct {
	log     logger.Logger
	metrics *metrics.Recorder
}

func NewSelector(log logger.Logger, rec *metrics.Recorder) *Selector {
	return &Selector{log: log.Named("bestrun"), metrics: rec}
}

// Evaluate ranks one attempt from its trial log. A log that is truncated or
// has no order summary is corrupt, whatever its completion time says.
func (s *Selector) Evaluate(ctx context.Context, a logstore.Attempt) Candidate {
	c := Candidate{Attempt: a}
	rep, err := runlog.ParseFile(a.LogPath())
	if err == nil {
		err = rep.Check()
	}
	if err == nil {
		c.CompletionTime, err = rep.CompletionTime()
	}
	if err != nil {
		s.log.Warn(ctx, "attempt ranked last", logger.Path(a.LogPath()), logger.Error(err))
		s.metrics.Attempt(metrics.OutcomeCorrupt)
		return Candidate{Attempt: a, CompletionTime: math.Inf(1), Corrupt: true}
	}
	c.RawScore = rep.RawScoreSum()
	s.metrics.Attempt(metrics.OutcomeParsed)
	return c
}

// Select ranks the attempts belonging to trial and returns the best. It
// returns false when none of the attempts belong to trial.
func (s *Selector) Select(ctx context.Context, trial string, attempts []logstore.Attempt) (Selection, bool) {
	var cands []Candidate
	for _, a := range attempts {
		if a.Trial != trial {
			continue
		}
		cands = append(cands, s.Evaluate(ctx, a))
	}
	if len(cands) == 0 {
		return Selection{}, false
	}
	Rank(cands)
	best := cands[0]
	s.log.Debug(ctx, "best run selected",
		logger.Trial(trial),
		logger.Path(best.Attempt.Dir),
		logger.Int("raw_score", best.RawScore),
		logger.Float64("completion_time", best.CompletionTime),
		logger.Int("candidates", len(cands)),
	)
	return Selection{Candidate: best, Candidates: cands}, true
}
