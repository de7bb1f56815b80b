// Package runlog parses the plain-text trial report written by the
// simulator at the end of a run.
//
// The report is line oriented. Line 6 carries the overall completion time.
// An "Order Summary" marker opens a section of 8-line order records which
// ends two lines before the "Order Details" marker:
//
//	0 Order ID: KIT01
//	1 Submitted: yes
//	2 Priority: no
//	3 Type: kitting
//	4 Maximum Score: 9
//	5 Actual Task Score: 9
//	6 Submission Time: 61.2
//	7 Submission Duration: 41.7     (N/A when not submitted)
//
// Parse turns the text into a Report of labeled fields once; the accessor
// methods are the only place that knows which offset means what.
package runlog

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/signalnine/scorekeeper/internal/result"
)

const (
	summaryMarker = "Order Summary"
	detailsMarker = "Order Details"

	// RecordSize is the number of lines per order in the summary section.
	RecordSize = 8

	completionTimeLine = 6
	minReportLines     = 8
)

// Offsets of fields within an order record.
const (
	OffsetID         = 0
	OffsetSubmitted  = 1
	OffsetPriority   = 2
	OffsetMaxScore   = 4
	OffsetRawScore   = 5
	OffsetCompletion = 7
)

// Field is one "label: value" line.
type Field struct {
	Label string
	Value string
}

func parseField(line string) Field {
	line = strings.TrimRight(line, "\r\n")
	i := strings.LastIndex(line, ":")
	if i < 0 {
		return Field{Value: strings.TrimSpace(line)}
	}
	return Field{
		Label: strings.TrimSpace(line[:i]),
		Value: strings.TrimSpace(line[i+1:]),
	}
}

// Int parses the value as a non-negative integer.
func (f Field) Int() (int, error) {
	n, err := strconv.Atoi(f.Value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformed, f.Label, f.Value)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s is negative", ErrMalformed, f.Label)
	}
	return n, nil
}

// Float parses the value as a finite, non-negative number.
func (f Field) Float() (float64, error) {
	v, err := strconv.ParseFloat(f.Value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformed, f.Label, f.Value)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s is negative", ErrMalformed, f.Label)
	}
	return v, nil
}

// Yes reports whether the value is an affirmative flag.
func (f Field) Yes() bool {
	switch strings.ToLower(f.Value) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// Record is one order entry of the summary section. The last record of a
// damaged report may hold fewer than RecordSize fields.
type Record struct {
	Fields []Field
}

// Field returns the field at offset, if the record is long enough.
func (r Record) Field(offset int) (Field, bool) {
	if offset < 0 || offset >= len(r.Fields) {
		return Field{}, false
	}
	return r.Fields[offset], true
}

// ID returns the order identifier of the record.
func (r Record) ID() string {
	f, _ := r.Field(OffsetID)
	return f.Value
}

// Submission extracts the raw score and completion duration. It fails when
// either field is missing or does not parse.
func (r Record) Submission() (result.OrderSubmission, error) {
	scoreField, ok := r.Field(OffsetRawScore)
	if !ok {
		return result.OrderSubmission{}, fmt.Errorf("%w: order %q has no score line", ErrTruncated, r.ID())
	}
	score, err := scoreField.Int()
	if err != nil {
		return result.OrderSubmission{}, err
	}
	durField, ok := r.Field(OffsetCompletion)
	if !ok {
		return result.OrderSubmission{}, fmt.Errorf("%w: order %q has no duration line", ErrTruncated, r.ID())
	}
	dur, err := durField.Float()
	if err != nil {
		return result.OrderSubmission{}, err
	}
	return result.OrderSubmission{RawScore: score, CompletionDuration: dur}, nil
}

// Report is a parsed trial report.
type Report struct {
	Lines   []string
	Records []Record

	hasSummary bool
}

// ParseFile reads and parses the report at path.
func ParseFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trial log: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a report. Only read errors fail; layout problems surface
// through the accessor methods.
func Parse(r io.Reader) (*Report, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading trial log: %w", err)
	}

	rep := &Report{Lines: lines}
	start := indexOf(lines, summaryMarker)
	if start < 0 {
		return rep, nil
	}
	rep.hasSummary = true
	start += 2
	end := len(lines)
	if d := indexOf(lines, detailsMarker); d >= 0 {
		end = d - 2
	}
	if end <= start {
		return rep, nil
	}
	summary := lines[start:end]
	for i := 0; i < len(summary); i += RecordSize {
		j := min(i+RecordSize, len(summary))
		rec := Record{Fields: make([]Field, 0, j-i)}
		for _, line := range summary[i:j] {
			rec.Fields = append(rec.Fields, parseField(line))
		}
		rep.Records = append(rep.Records, rec)
	}
	return rep, nil
}

func indexOf(lines []string, marker string) int {
	for i, l := range lines {
		if strings.Contains(l, marker) {
			return i
		}
	}
	return -1
}

// HasSummary reports whether the report contains an order summary section.
func (rep *Report) HasSummary() bool { return rep.hasSummary }

// CompletionTime returns the overall time the run took to complete.
func (rep *Report) CompletionTime() (float64, error) {
	if len(rep.Lines) < minReportLines {
		return 0, fmt.Errorf("%w: %d lines", ErrTruncated, len(rep.Lines))
	}
	return parseField(rep.Lines[completionTimeLine]).Float()
}

// Record finds the summary record of an order. A record whose identifier
// equals id wins over one that merely contains it.
func (rep *Report) Record(id string) (Record, bool) {
	if id == "" {
		return Record{}, false
	}
	for _, rec := range rep.Records {
		if rec.ID() == id {
			return rec, true
		}
	}
	for _, rec := range rep.Records {
		if f, ok := rec.Field(OffsetID); ok && strings.Contains(f.Value, id) {
			return rec, true
		}
	}
	return Record{}, false
}

// OrderSubmissions returns a submission entry for every requested id. Ids
// without a record, or whose record does not parse, map to nil.
func (rep *Report) OrderSubmissions(ids []string) result.Submissions {
	subs := result.Absent(ids)
	for _, id := range ids {
		rec, ok := rep.Record(id)
		if !ok {
			continue
		}
		sub, err := rec.Submission()
		if err != nil {
			continue
		}
		subs[id] = &sub
	}
	return subs
}

// RawScoreSum totals the raw score of every record. Scores that do not
// parse count as 0.
func (rep *Report) RawScoreSum() int {
	total := 0
	for _, rec := range rep.Records {
		if f, ok := rec.Field(OffsetRawScore); ok {
			if n, err := f.Int(); err == nil {
				total += n
			}
		}
	}
	return total
}

// MaxScores returns the maximum score the simulator reported for each order.
func (rep *Report) MaxScores() map[string]int {
	out := make(map[string]int, len(rep.Records))
	for _, rec := range rep.Records {
		f, ok := rec.Field(OffsetMaxScore)
		if !ok {
			continue
		}
		if n, err := f.Int(); err == nil {
			out[rec.ID()] = n
		}
	}
	return out
}

// Priority reports the priority flag the simulator recorded for an order.
func (rep *Report) Priority(id string) (bool, bool) {
	rec, ok := rep.Record(id)
	if !ok {
		return false, false
	}
	f, ok := rec.Field(OffsetPriority)
	return f.Yes(), ok
}

// Submitted reports whether the simulator marked an order as submitted.
func (rep *Report) Submitted(id string) (bool, bool) {
	rec, ok := rep.Record(id)
	if !ok {
		return false, false
	}
	f, ok := rec.Field(OffsetSubmitted)
	return f.Yes(), ok
}

// Check reports layout damage that makes the report unusable for ranking.
func (rep *Report) Check() error {
	if len(rep.Lines) < minReportLines {
		return fmt.Errorf("%w: %d lines", ErrTruncated, len(rep.Lines))
	}
	if !rep.hasSummary {
		return ErrNoSummary
	}
	return nil
}
