// Package testutil writes trial reports, sensor cost reports and trial
// configurations laid out the way the simulator and the competition
// harness produce them, for use in tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rule = "================================================================================"

// Order is one order entry of a generated trial report.
type Order struct {
	ID        string
	Type      string
	Priority  bool
	MaxScore  int
	Score     int
	Submitted bool
	// Duration is written as N/A when negative.
	Duration float64
}

// Run describes a generated trial report.
type Run struct {
	Trial          string
	CompletionTime float64
	Orders         []Order
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// TrialLog renders run as trial report text.
func TrialLog(run Run) string {
	var b strings.Builder
	total := 0
	for _, o := range run.Orders {
		total += o.Score
	}
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "ARIAC Trial Report")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Trial Name: %s\n", run.Trial)
	fmt.Fprintln(&b, "Trial Seed: 42")
	fmt.Fprintf(&b, "Trial Score: %d\n", total)
	fmt.Fprintf(&b, "Completion Time: %g\n", run.CompletionTime)
	fmt.Fprintln(&b, "Orders Announced:", len(run.Orders))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Order Summary")
	fmt.Fprintln(&b, rule)
	for _, o := range run.Orders {
		typ := o.Type
		if typ == "" {
			typ = "kitting"
		}
		fmt.Fprintf(&b, "Order ID: %s\n", o.ID)
		fmt.Fprintf(&b, "Submitted: %s\n", yesNo(o.Submitted))
		fmt.Fprintf(&b, "Priority: %s\n", yesNo(o.Priority))
		fmt.Fprintf(&b, "Type: %s\n", typ)
		fmt.Fprintf(&b, "Maximum Score: %d\n", o.MaxScore)
		fmt.Fprintf(&b, "Actual Task Score: %d\n", o.Score)
		if o.Duration < 0 {
			fmt.Fprintln(&b, "Submission Time: N/A")
			fmt.Fprintln(&b, "Submission Duration: N/A")
		} else {
			fmt.Fprintf(&b, "Submission Time: %g\n", o.Duration+5)
			fmt.Fprintf(&b, "Submission Duration: %g\n", o.Duration)
		}
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Order Details")
	fmt.Fprintln(&b, rule)
	for _, o := range run.Orders {
		fmt.Fprintf(&b, "Order %s\n\tTray: correct\n\tParts: %d/%d\n", o.ID, o.Score, o.MaxScore)
	}
	return b.String()
}

// SensorCostReport renders a sensor cost report whose 16th line carries the
// total.
func SensorCostReport(cost int) string {
	lines := []string{
		rule,
		"Sensor Cost Report",
		rule,
		"break_beam: 1 x $100",
		"proximity: 0 x $100",
		"laser_profiler: 0 x $500",
		"lidar: 0 x $500",
		"rgb_camera: 2 x $300",
		"rgbd_camera: 0 x $500",
		"basic_logical_camera: 1 x $500",
		"advanced_logical_camera: 0 x $1000",
		"",
		rule,
		"Summary",
		rule,
		fmt.Sprintf("Total sensor cost is: $%d", cost),
	}
	return strings.Join(lines, "\n") + "\n"
}

// WriteFile writes body to dir/name, creating dir.
func WriteFile(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// WriteAttempt creates <logsDir>/<team>/<trial>_<n>/ with a trial report and,
// when cost is positive, a sensor cost report. It returns the attempt dir.
func WriteAttempt(t testing.TB, logsDir, team, trial string, n int, run Run, cost int) string {
	t.Helper()
	dir := filepath.Join(logsDir, team, fmt.Sprintf("%s_%d", trial, n))
	if run.Trial == "" {
		run.Trial = trial
	}
	WriteFile(t, dir, "trial_log.txt", TrialLog(run))
	if cost > 0 {
		WriteFile(t, dir, "sensor_cost.txt", SensorCostReport(cost))
	}
	return dir
}

// ConfigOrder is one order of a generated trial configuration.
type ConfigOrder struct {
	ID       string
	Type     string
	Priority bool
	Products int
}

// TrialConfig renders a trial configuration file.
func TrialConfig(orders ...ConfigOrder) string {
	var b strings.Builder
	fmt.Fprintln(&b, "time_limit: -1")
	fmt.Fprintln(&b, "orders:")
	for _, o := range orders {
		fmt.Fprintf(&b, "  - id: '%s'\n", o.ID)
		fmt.Fprintf(&b, "    type: '%s'\n", o.Type)
		fmt.Fprintf(&b, "    priority: %t\n", o.Priority)
		fmt.Fprintf(&b, "    %s_task:\n", o.Type)
		fmt.Fprintln(&b, "      station: 'as1'")
		fmt.Fprintln(&b, "      products:")
		for i := 0; i < o.Products; i++ {
			fmt.Fprintf(&b, "        - type: 'battery'\n          color: 'blue'\n          quadrant: %d\n", i%4+1)
		}
		if o.Products == 0 {
			fmt.Fprintln(&b, "        []")
		}
	}
	return b.String()
}
