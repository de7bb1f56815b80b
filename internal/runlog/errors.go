package runlog

import "errors"

var (
	// ErrTruncated marks a report or record with fewer lines than its layout needs.
	ErrTruncated = errors.New("trial log truncated")
	// ErrMalformed marks a field whose value does not parse.
	ErrMalformed = errors.New("trial log field malformed")
	// ErrNoSummary marks a report without an order summary section.
	ErrNoSummary = errors.New("trial log has no order summary")
)
