package result

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUnknownOrder is returned when a submission references an order id that
// is not part of the trial's order list.
var ErrUnknownOrder = errors.New("unknown order id")

// Team identifies a competing team. Every team-keyed mapping uses it as key.
type Team string

// Teams converts plain names into Team values, preserving order.
func Teams(names []string) []Team {
	teams := make([]Team, 0, len(names))
	for _, n := range names {
		teams = append(teams, Team(n))
	}
	return teams
}

// OrderInfo describes one order of a trial configuration.
type OrderInfo struct {
	OrderID  string `json:"order_id"`
	Priority bool   `json:"priority"`
	MaxScore int    `json:"max_score"`
}

// OrderIDs returns the identifiers of orders in configuration order.
func OrderIDs(orders []OrderInfo) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
	}
	return ids
}

type OrderSubmission struct {
	RawScore           int     `json:"raw_score"`
	CompletionDuration float64 `json:"completion_duration"`
}

// Submissions maps order ids to the outcome recorded in a run. A nil entry
// records an order that was not submitted or could not be parsed; it is not
// the same as a submission that scored zero.
type Submissions map[string]*OrderSubmission

// Get returns the submission for id and whether one is present.
func (s Submissions) Get(id string) (OrderSubmission, bool) {
	sub, ok := s[id]
	if !ok || sub == nil {
		return OrderSubmission{}, false
	}
	return *sub, true
}

// Absent returns a Submissions map with every id present but not submitted.
func Absent(ids []string) Submissions {
	subs := make(Submissions, len(ids))
	for _, id := range ids {
		subs[id] = nil
	}
	return subs
}

// TeamSubmission is the representative run of one team for one trial.
type TeamSubmission struct {
	OrderSubmissions Submissions `json:"order_submissions"`
	SensorCost       int         `json:"sensor_cost"`
}

// HasScoringOrder reports whether at least one order was submitted with a
// positive raw score.
func (ts TeamSubmission) HasScoringOrder() bool {
	for _, sub := range ts.OrderSubmissions {
		if sub != nil && sub.RawScore > 0 {
			return true
		}
	}
	return false
}

// RawScore sums the raw scores of all present submissions.
func (ts TeamSubmission) RawScore() int {
	total := 0
	for _, sub := range ts.OrderSubmissions {
		if sub != nil {
			total += sub.RawScore
		}
	}
	return total
}

// Validate checks that every referenced order id is part of orders.
func (ts TeamSubmission) Validate(orders []OrderInfo) error {
	known := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		known[o.OrderID] = struct{}{}
	}
	var unknown []string
	for id := range ts.OrderSubmissions {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %v", ErrUnknownOrder, unknown)
	}
	return nil
}

// Baseline holds the field averages a trial was normalized against.
type Baseline struct {
	AverageCost           float64            `json:"average_cost"`
	AverageOrderDurations map[string]float64 `json:"average_order_durations"`
}

// TrialInfo is the scored result of one trial. A team missing from
// TrialScores could not be scored, which differs from scoring 0.
type TrialInfo struct {
	TrialName        string                  `json:"trial_name"`
	Orders           []OrderInfo             `json:"orders"`
	Baseline         Baseline                `json:"baseline"`
	TrialScores      map[Team]float64        `json:"trial_scores"`
	TeamSubmissions  map[Team]TeamSubmission `json:"team_submissions"`
	TeamBestFileLogs map[Team]string         `json:"team_best_file_logs"`
}

// Validate checks every team submission against the trial's order list.
func (ti *TrialInfo) Validate() error {
	teams := make([]Team, 0, len(ti.TeamSubmissions))
	for team := range ti.TeamSubmissions {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	for _, team := range teams {
		if err := ti.TeamSubmissions[team].Validate(ti.Orders); err != nil {
			return fmt.Errorf("trial %s, team %s: %w", ti.TrialName, team, err)
		}
	}
	return nil
}

// Score returns the trial score of team and whether one was computed.
func (ti *TrialInfo) Score(team Team) (float64, bool) {
	s, ok := ti.TrialScores[team]
	return s, ok
}

// BestLog returns the path of the run chosen for team, if any.
func (ti *TrialInfo) BestLog(team Team) (string, bool) {
	p, ok := ti.TeamBestFileLogs[team]
	return p, ok && p != ""
}

// Standing is one row of the competition leaderboard.
type Standing struct {
	Rank        int                `json:"rank"`
	Team        Team               `json:"team"`
	Total       float64            `json:"total"`
	RawScore    int                `json:"raw_score"`
	TrialScores map[string]float64 `json:"trial_scores"`
}

// Leaderboard is the ranked competition result.
type Leaderboard struct {
	Trials    []string   `json:"trials"`
	Standings []Standing `json:"standings"`
}

// Weights are the tunable coefficients of the trial score.
type Weights struct {
	Cost float64 `json:"cost"`
	Time float64 `json:"time"`
}

// DefaultWeights leaves cost and speed unscaled.
var DefaultWeights = Weights{Cost: 1.0, Time: 1.0}

// RunMeta describes one stored scoring run.
type RunMeta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Weights   Weights   `json:"weights"`
	Teams     []Team    `json:"teams"`
	Trials    []string  `json:"trials"`
}
