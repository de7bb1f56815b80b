// Package sensorcost reads the total sensor cost a team paid for a run.
package sensorcost

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/signalnine/scorekeeper/internal/logger"
)

var (
	// ErrMalformed marks a cost report without a usable total.
	ErrMalformed = errors.New("sensor cost malformed")
	// ErrNotPositive marks a total of zero or less.
	ErrNotPositive = errors.New("sensor cost not positive")
)

const (
	totalLine   = 15
	totalMarker = "Total sensor cost is: $"
)

// Parse extracts the total cost from report lines. The total is normally on
// line 16; a report laid out differently is searched for the labeled total
// line instead. Fractional dollars are truncated.
func Parse(lines []string) (int, error) {
	if len(lines) > totalLine {
		if cost, err := parseDollars(lines[totalLine]); err == nil {
			return cost, nil
		} else if errors.Is(err, ErrNotPositive) {
			return 0, err
		}
	}
	for _, l := range lines {
		if strings.Contains(l, totalMarker) {
			return parseDollars(l)
		}
	}
	return 0, fmt.Errorf("%w: no total among %d lines", ErrMalformed, len(lines))
}

func parseDollars(line string) (int, error) {
	i := strings.LastIndex(line, "$")
	if i < 0 {
		return 0, fmt.Errorf("%w: no $ in %q", ErrMalformed, line)
	}
	raw := strings.TrimSpace(line[i+1:])
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}
	cost := int(v)
	if cost <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotPositive, raw)
	}
	return cost, nil
}

// ParseFile reads the cost report at path.
func ParseFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening sensor cost: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading sensor cost: %w", err)
	}
	cost, err := Parse(lines)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return cost, nil
}

// Reader wraps ParseFile for the scoring engine: failures are logged and
// reported as an absent cost.
type Reader struct {
	log logger.Logger
}

func NewReader(log logger.Logger) *Reader {
	return &Reader{log: log.Named("sensorcost")}
}

// Cost returns the positive total cost recorded at path.
func (r *Reader) Cost(ctx context.Context, path string) (int, bool) {
	cost, err := ParseFile(path)
	if err != nil {
		r.log.Warn(ctx, "sensor cost unavailable", logger.Path(path), logger.Error(err))
		return 0, false
	}
	return cost, true
}
