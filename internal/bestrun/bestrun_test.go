package bestrun_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/signalnine/scorekeeper/internal/bestrun"
	"github.com/signalnine/scorekeeper/internal/logger"
	"github.com/signalnine/scorekeeper/internal/logstore"
	"github.com/signalnine/scorekeeper/internal/metrics"
	"github.com/signalnine/scorekeeper/internal/result"
	"github.com/signalnine/scorekeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(score int, tm float64) testutil.Run {
	return testutil.Run{
		CompletionTime: tm,
		Orders:         []testutil.Order{{ID: "KIT01", MaxScore: 20, Score: score, Submitted: true, Duration: tm / 2}},
	}
}

func teamAttempts(t *testing.T, logs string, team result.Team) []logstore.Attempt {
	t.Helper()
	out, err := logstore.New(logs).Attempts(team)
	require.NoError(t, err)
	return out
}

func TestSelectPrefersScoreThenTime(t *testing.T) {
	logs := t.TempDir()
	testutil.WriteAttempt(t, logs, "team_x", "kitting", 0, run(10, 30), 500)
	testutil.WriteAttempt(t, logs, "team_x", "kitting", 1, run(10, 20), 500)
	testutil.WriteAttempt(t, logs, "team_x", "kitting", 2, run(7, 5), 500)
	testutil.WriteAttempt(t, logs, "team_x", "assembly", 0, run(99, 1), 500)

	s := bestrun.NewSelector(logger.Nop(), nil)
	sel, ok := s.Select(context.Background(), "kitting", teamAttempts(t, logs, "team_x"))
	require.True(t, ok)

	assert.Equal(t, 10, sel.RawScore)
	assert.Equal(t, 20.0, sel.CompletionTime)
	assert.Equal(t, 1, sel.Attempt.Index)
	assert.Equal(t, "kitting_1", sel.Attempt.Name())
	assert.Len(t, sel.Candidates, 3, "other trials are not candidates")
	assert.Equal(t, 7, sel.Candidates[2].RawScore)
}

func TestSelectTieGoesToEarlierAttempt(t *testing.T) {
	logs := t.TempDir()
	testutil.WriteAttempt(t, logs, "team_x", "kitting", 3, run(10, 20), 500)
	testutil.WriteAttempt(t, logs, "team_x", "kitting", 1, run(10, 20), 500)

	sel, ok := bestrun.NewSelector(logger.Nop(), nil).
		Select(context.Background(), "kitting", teamAttempts(t, logs, "team_x"))
	require.True(t, ok)
	assert.Equal(t, 1, sel.Attempt.Index)
}

func TestCorruptAttemptRanksLast(t *testing.T) {
	logs := t.TempDir()
	good := testutil.WriteAttempt(t, logs, "team_x", "kitting", 1, run(0, 400), 500)
	broken := testutil.WriteAttempt(t, logs, "team_x", "kitting", 0, run(50, 10), 500)
	testutil.WriteFile(t, broken, "trial_log.txt", "ARIAC\ncut short\n")

	rec := metrics.New()
	sel, ok := bestrun.NewSelector(logger.Nop(), rec).
		Select(context.Background(), "kitting", teamAttempts(t, logs, "team_x"))
	require.True(t, ok)
	assert.Equal(t, good, sel.Attempt.Dir)

	last := sel.Candidates[1]
	assert.True(t, last.Corrupt)
	assert.Equal(t, 0, last.RawScore)
	assert.True(t, math.IsInf(last.CompletionTime, 1))
}

func TestLogWithoutSummaryIsCorrupt(t *testing.T) {
	logs := t.TempDir()
	slow := testutil.WriteAttempt(t, logs, "team_x", "kitting", 0, run(0, 400), 500)
	fast := testutil.WriteAttempt(t, logs, "team_x", "kitting", 1, run(0, 10), 500)
	body := strings.Replace(testutil.TrialLog(run(0, 10)), "Order Summary", "Orders", 1)
	testutil.WriteFile(t, fast, "trial_log.txt", body)

	sel, ok := bestrun.NewSelector(logger.Nop(), nil).
		Select(context.Background(), "kitting", teamAttempts(t, logs, "team_x"))
	require.True(t, ok)
	assert.Equal(t, slow, sel.Attempt.Dir)
	assert.False(t, sel.Corrupt)
	assert.Equal(t, 400.0, sel.CompletionTime)

	last := sel.Candidates[1]
	assert.Equal(t, fast, last.Attempt.Dir)
	assert.True(t, last.Corrupt)
	assert.True(t, math.IsInf(last.CompletionTime, 1))
}

func TestMissingLogIsCorrupt(t *testing.T) {
	logs := t.TempDir()
	only := testutil.WriteAttempt(t, logs, "team_x", "kitting", 0, run(5, 10), 500)
	a, ok := logstore.ParseAttempt(only + "_missing_9")
	require.True(t, ok)

	c := bestrun.NewSelector(logger.Nop(), nil).Evaluate(context.Background(), a)
	assert.True(t, c.Corrupt)
	assert.True(t, math.IsInf(c.CompletionTime, 1))
}

func TestSelectWithoutCandidates(t *testing.T) {
	s := bestrun.NewSelector(logger.Nop(), nil)
	_, ok := s.Select(context.Background(), "kitting", nil)
	assert.False(t, ok)

	other := []logstore.Attempt{{Dir: "/logs/t/assembly_0", Trial: "assembly"}}
	_, ok = s.Select(context.Background(), "kitting", other)
	assert.False(t, ok)
}

func TestRank(t *testing.T) {
	cands := []bestrun.Candidate{
		{Attempt: logstore.Attempt{Index: 0}, RawScore: 10, CompletionTime: 30},
		{Attempt: logstore.Attempt{Index: 1}, RawScore: 10, CompletionTime: 20},
		{Attempt: logstore.Attempt{Index: 2}, RawScore: 7, CompletionTime: 5},
		{Attempt: logstore.Attempt{Index: 3}, CompletionTime: math.Inf(1), Corrupt: true},
	}
	bestrun.Rank(cands)
	var order []int
	for _, c := range cands {
		order = append(order, c.Attempt.Index)
	}
	assert.Equal(t, []int{1, 0, 2, 3}, order)
}
