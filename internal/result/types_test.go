package result_test

import (
	"errors"
	"testing"

	"github.com/signalnine/scorekeeper/internal/result"
	"github.com/stretchr/testify/assert"
)

func TestSubmissionsGet(t *testing.T) {
	subs := result.Submissions{
		"a": {RawScore: 0, CompletionDuration: 12},
		"b": nil,
	}

	got, ok := subs.Get("a")
	assert.True(t, ok, "a zero score is still a submission")
	assert.Equal(t, 0, got.RawScore)

	_, ok = subs.Get("b")
	assert.False(t, ok)
	_, ok = subs.Get("missing")
	assert.False(t, ok)
}

func TestTeamSubmissionHelpers(t *testing.T) {
	ts := result.TeamSubmission{
		OrderSubmissions: result.Submissions{
			"a": {RawScore: 0, CompletionDuration: 3},
			"b": {RawScore: 4, CompletionDuration: 3},
			"c": nil,
		},
		SensorCost: 100,
	}
	assert.True(t, ts.HasScoringOrder())
	assert.Equal(t, 4, ts.RawScore())

	failed := result.TeamSubmission{OrderSubmissions: result.Absent([]string{"a", "b"}), SensorCost: 100}
	assert.False(t, failed.HasScoringOrder())
	assert.Equal(t, 0, failed.RawScore())
	assert.Len(t, failed.OrderSubmissions, 2)
}

func TestTeamSubmissionValidate(t *testing.T) {
	orders := []result.OrderInfo{{OrderID: "a"}, {OrderID: "b"}}

	ok := result.TeamSubmission{OrderSubmissions: result.Submissions{"a": nil}}
	assert.NoError(t, ok.Validate(orders))

	bad := result.TeamSubmission{OrderSubmissions: result.Submissions{"a": nil, "zz": nil}}
	err := bad.Validate(orders)
	assert.True(t, errors.Is(err, result.ErrUnknownOrder))
	assert.Contains(t, err.Error(), "zz")
}

func TestTeamsAndOrderIDs(t *testing.T) {
	assert.Equal(t, []result.Team{"x", "y"}, result.Teams([]string{"x", "y"}))
	assert.Equal(t, []string{"a", "b"}, result.OrderIDs([]result.OrderInfo{{OrderID: "a"}, {OrderID: "b"}}))
}
