package audit_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/signalnine/scorekeeper/internal/audit"
	"github.com/signalnine/scorekeeper/internal/logstore"
	"github.com/signalnine/scorekeeper/internal/result"
	"github.com/signalnine/scorekeeper/internal/runlog"
	"github.com/signalnine/scorekeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(maxScore int) testutil.Run {
	return testutil.Run{
		CompletionTime: 30,
		Orders:         []testutil.Order{{ID: "KIT01", MaxScore: maxScore, Score: 5, Submitted: true, Duration: 12}},
	}
}

func TestAuditCleanData(t *testing.T) {
	logs, trials := t.TempDir(), t.TempDir()
	testutil.WriteFile(t, trials, "kitting.yaml", testutil.TrialConfig(testutil.ConfigOrder{ID: "KIT01", Type: "kitting", Products: 2}))
	testutil.WriteAttempt(t, logs, "team_a", "kitting", 0, run(9), 500)

	defects, err := audit.New(trials, logstore.New(logs), 2).Run(context.Background(), []string{"kitting"}, []result.Team{"team_a"})
	require.NoError(t, err)
	assert.Empty(t, defects)
}

func TestAuditFindsDefects(t *testing.T) {
	logs, trials := t.TempDir(), t.TempDir()
	testutil.WriteFile(t, trials, "kitting.yaml", testutil.TrialConfig(
		testutil.ConfigOrder{ID: "KIT01", Type: "kitting", Products: 2},
		testutil.ConfigOrder{ID: "ASM01", Type: "assembly", Products: 0},
	))
	testutil.WriteAttempt(t, logs, "team_a", "kitting", 0, run(7), 500)
	broken := testutil.WriteAttempt(t, logs, "team_b", "kitting", 0, run(9), 0)
	testutil.WriteFile(t, broken, "trial_log.txt", "short\n")
	testutil.WriteAttempt(t, logs, "team_a", "assembly", 0, run(9), 500)

	defects, err := audit.New(trials, logstore.New(logs), 4).
		Run(context.Background(), []string{"kitting", "assembly"}, []result.Team{"team_a", "team_b"})
	require.NoError(t, err)

	is := func(d audit.Defect, target error) bool { return errors.Is(d, target) }
	require.Len(t, defects, 5)

	// assembly sorts first: its config is missing, its attempt is not checked against it.
	assert.Equal(t, "assembly", defects[0].Trial)
	assert.Empty(t, defects[0].Team)

	assert.True(t, is(defects[1], audit.ErrZeroMaxScore), "got %v", defects[1])
	assert.True(t, is(defects[2], audit.ErrMaxScoreMismatch), "got %v", defects[2])
	assert.Equal(t, result.Team("team_a"), defects[2].Team)
	assert.Equal(t, filepath.Join(broken, "sensor_cost.txt"), defects[3].Path)
	assert.True(t, is(defects[4], runlog.ErrTruncated), "got %v", defects[4])
	assert.Contains(t, defects[4].Error(), "kitting/team_b")
}

func TestAuditMissingConfig(t *testing.T) {
	defects, err := audit.New(t.TempDir(), logstore.New(t.TempDir()), 1).
		Run(context.Background(), []string{"ghost"}, nil)
	require.NoError(t, err)
	require.Len(t, defects, 1)
	assert.ErrorIs(t, defects[0], fs.ErrNotExist)
}
