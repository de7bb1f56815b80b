// Package report renders a scored competition as a table, markdown, JSON or
// a CSV results sheet.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/scorekeeper/internal/result"
)

// Formats accepted by Render.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatCSV      = "csv"
)

// NA marks values that could not be computed.
const NA = "N/A"

// Formats lists every supported output format.
var Formats = []string{FormatTable, FormatMarkdown, FormatJSON, FormatCSV}

// Generate renders the run stored in runDir.
func Generate(runDir, format string, w io.Writer) error {
	lb, err := result.ReadLeaderboard(runDir)
	if err != nil {
		return err
	}
	trials, err := result.ReadTrialInfos(runDir)
	if err != nil {
		return err
	}
	return Render(lb, trials, format, w)
}

// Render writes the leaderboard followed by a score breakdown per trial.
func Render(lb *result.Leaderboard, trials []*result.TrialInfo, format string, w io.Writer) error {
	switch format {
	case FormatMarkdown:
		return writeMarkdown(lb, trials, w)
	case FormatJSON:
		return writeJSON(lb, trials, w)
	case FormatCSV:
		return writeCSV(lb, trials, w)
	case FormatTable, "":
		return writeTable(lb, trials, w)
	default:
		return fmt.Errorf("unknown report format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func teamsOf(lb *result.Leaderboard, info *result.TrialInfo) []result.Team {
	if lb != nil && len(lb.Standings) > 0 {
		teams := make([]result.Team, len(lb.Standings))
		for i, st := range lb.Standings {
			teams[i] = st.Team
		}
		return teams
	}
	var teams []result.Team
	for t := range info.TeamSubmissions {
		teams = append(teams, t)
	}
	for t := range info.TrialScores {
		if _, ok := info.TeamSubmissions[t]; !ok {
			teams = append(teams, t)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	return teams
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

// breakdownRow renders one team's line of a trial breakdown: score, sensor
// cost, then raw score and duration of every order.
func breakdownRow(info *result.TrialInfo, team result.Team, format func(float64) string) []string {
	row := []string{string(team)}
	if s, ok := info.Score(team); ok {
		row = append(row, format(s))
	} else {
		row = append(row, NA)
	}
	ts, ok := info.TeamSubmissions[team]
	if ok {
		row = append(row, strconv.Itoa(ts.SensorCost))
	} else {
		row = append(row, NA)
	}
	for _, o := range info.Orders {
		sub, present := ts.OrderSubmissions.Get(o.OrderID)
		if !ok || !present {
			row = append(row, NA, NA)
			continue
		}
		row = append(row, strconv.Itoa(sub.RawScore), format(sub.CompletionDuration))
	}
	return row
}

func breakdownHeader(info *result.TrialInfo) []string {
	h := []string{"Team", "Score", "Sensor Cost"}
	for _, o := range info.Orders {
		label := o.OrderID
		if o.Priority {
			label += "*"
		}
		h = append(h, fmt.Sprintf("%s Score (/%d)", label, o.MaxScore), label+" Duration")
	}
	return h
}

func leaderboardRow(st result.Standing, trials []string, format func(float64) string) []string {
	row := []string{strconv.Itoa(st.Rank), string(st.Team), format(st.Total), strconv.Itoa(st.RawScore)}
	for _, trial := range trials {
		if s, ok := st.TrialScores[trial]; ok {
			row = append(row, format(s))
		} else {
			row = append(row, NA)
		}
	}
	return row
}

func leaderboardHeader(trials []string) []string {
	return append([]string{"Rank", "Team", "Total", "Raw Score"}, trials...)
}

func writeTable(lb *result.Leaderboard, trials []*result.TrialInfo, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(leaderboardHeader(lb.Trials), "\t")))
	fmt.Fprintln(tw, strings.Repeat("-", 60))
	for _, st := range lb.Standings {
		fmt.Fprintln(tw, strings.Join(leaderboardRow(st, lb.Trials, num), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, info := range trials {
		fmt.Fprintf(w, "\nTRIAL %s (average cost $%.2f)\n", info.TrialName, info.Baseline.AverageCost)
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.ToUpper(strings.Join(breakdownHeader(info), "\t")))
		for _, team := range teamsOf(lb, info) {
			fmt.Fprintln(tw, strings.Join(breakdownRow(info, team, num), "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func markdownRow(w io.Writer, cells []string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
}

func markdownRule(w io.Writer, n int) {
	fmt.Fprintln(w, "|"+strings.Repeat("---|", n))
}

func writeMarkdown(lb *result.Leaderboard, trials []*result.TrialInfo, w io.Writer) error {
	fmt.Fprintln(w, "## Leaderboard")
	fmt.Fprintln(w)
	header := leaderboardHeader(lb.Trials)
	markdownRow(w, header)
	markdownRule(w, len(header))
	for _, st := range lb.Standings {
		markdownRow(w, leaderboardRow(st, lb.Trials, num))
	}
	for _, info := range trials {
		fmt.Fprintf(w, "\n### %s\n\n", info.TrialName)
		header := breakdownHeader(info)
		markdownRow(w, header)
		markdownRule(w, len(header))
		for _, team := range teamsOf(lb, info) {
			markdownRow(w, breakdownRow(info, team, num))
		}
	}
	return nil
}

type jsonReport struct {
	Leaderboard *result.Leaderboard `json:"leaderboard"`
	Trials      []*result.TrialInfo `json:"trials"`
}

func writeJSON(lb *result.Leaderboard, trials []*result.TrialInfo, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Leaderboard: lb, Trials: trials})
}

func exact(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// writeCSV lays the results out like the competition results sheet: a
// Leaderboard section, then a Score Breakdown section per trial.
func writeCSV(lb *result.Leaderboard, trials []*result.TrialInfo, w io.Writer) error {
	cw := csv.NewWriter(w)
	// Sections have different widths.
	rows := [][]string{{"Leaderboard"}, leaderboardHeader(lb.Trials)}
	for _, st := range lb.Standings {
		rows = append(rows, leaderboardRow(st, lb.Trials, exact))
	}
	for _, info := range trials {
		rows = append(rows, nil, []string{"Score Breakdown", info.TrialName}, breakdownHeader(info))
		for _, team := range teamsOf(lb, info) {
			rows = append(rows, breakdownRow(info, team, exact))
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
