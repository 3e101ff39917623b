package timetable

import (
	"errors"
	"fmt"
)

// Document-level failures. Each aborts the extraction as a whole and is
// translated into a client-error response by the HTTP layer.
var (
	// ErrUnreadableDocument means the uploaded bytes are not a parseable PDF.
	ErrUnreadableDocument = errors.New("document is not a readable PDF")

	// ErrNoTableFound means no page yielded a usable line-ruled grid.
	ErrNoTableFound = errors.New("no timetable grid found in document")

	// ErrHeaderResolutionFailed means a grid was detected but its weekday and
	// hour axes could not be recognized.
	ErrHeaderResolutionFailed = errors.New("could not resolve weekday and hour headers")
)

// CellParseError reports one data cell whose text does not fit the lesson
// grammar. It carries the slot coordinates and the offending text. Per-cell
// failures escalate to an overall extraction failure: a silently incomplete
// timetable is worse than a visible error.
type CellParseError struct {
	Weekday string
	Hour    int
	Raw     string
	Reason  string
}

func (e CellParseError) Error() string {
	return fmt.Sprintf("cell (%s, hour %d): %s: %q", e.Weekday, e.Hour, e.Reason, e.Raw)
}
