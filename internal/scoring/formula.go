package scoring

import (
	"sort"

	"github.com/signalnine/scorekeeper/internal/result"
)

// PriorityMultiplier weights priority orders over regular ones.
const PriorityMultiplier = 3

func sortedTeams(subs map[result.Team]result.TeamSubmission) []result.Team {
	teams := make([]result.Team, 0, len(subs))
	for t := range subs {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	return teams
}

// ComputeBaseline derives the field averages a trial is normalized against.
// The average cost only counts teams that scored on at least one order; an
// order's average duration only counts teams that submitted it. Either
// average is 0 when nothing qualifies. Teams are summed in name order so
// the result does not depend on map iteration.
func ComputeBaseline(orders []result.OrderInfo, subs map[result.Team]result.TeamSubmission) result.Baseline {
	teams := sortedTeams(subs)

	base := result.Baseline{AverageOrderDurations: make(map[string]float64, len(orders))}
	var costSum float64
	var costN int
	for _, t := range teams {
		ts := subs[t]
		if ts.HasScoringOrder() {
			costSum += float64(ts.SensorCost)
			costN++
		}
	}
	if costN > 0 {
		base.AverageCost = costSum / float64(costN)
	}

	for _, o := range orders {
		var sum float64
		var n int
		for _, t := range teams {
			if sub, ok := subs[t].OrderSubmissions.Get(o.OrderID); ok {
				sum += sub.CompletionDuration
				n++
			}
		}
		if n > 0 {
			base.AverageOrderDurations[o.OrderID] = sum / float64(n)
		} else {
			base.AverageOrderDurations[o.OrderID] = 0
		}
	}
	return base
}

// Efficiency is how much faster than the field an order was completed. A
// zero duration contributes nothing rather than dividing by zero.
func Efficiency(w result.Weights, avgDuration, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return w.Time * avgDuration / duration
}

// CostFactor rewards spending less on sensors than the field.
func CostFactor(w result.Weights, avgCost float64, cost int) float64 {
	if cost <= 0 {
		return 0
	}
	return w.Cost * avgCost / float64(cost)
}

// TeamScore computes
//
//	cost_factor * Σ priority_multiplier * efficiency * raw_score
//
// over the trial's orders. Absent submissions contribute 0.
func TeamScore(orders []result.OrderInfo, ts result.TeamSubmission, base result.Baseline, w result.Weights) float64 {
	var sum float64
	for _, o := range orders {
		sub, ok := ts.OrderSubmissions.Get(o.OrderID)
		if !ok {
			continue
		}
		mult := 1.0
		if o.Priority {
			mult = PriorityMultiplier
		}
		sum += mult * Efficiency(w, base.AverageOrderDurations[o.OrderID], sub.CompletionDuration) * float64(sub.RawScore)
	}
	return CostFactor(w, base.AverageCost, ts.SensorCost) * sum
}

// Score fills a TrialInfo from already collected submissions.
func Score(trial string, orders []result.OrderInfo, subs map[result.Team]result.TeamSubmission, bestLogs map[result.Team]string, w result.Weights) *result.TrialInfo {
	base := ComputeBaseline(orders, subs)
	info := &result.TrialInfo{
		TrialName:        trial,
		Orders:           orders,
		Baseline:         base,
		TrialScores:      make(map[result.Team]float64, len(subs)),
		TeamSubmissions:  subs,
		TeamBestFileLogs: bestLogs,
	}
	for _, t := range sortedTeams(subs) {
		info.TrialScores[t] = TeamScore(orders, subs[t], base, w)
	}
	return info
}
