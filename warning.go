package timetable

import (
	"fmt"
	"strings"

	"github.com/tsawler/timetable/schedule"
)

// WarningCode classifies a non-fatal problem found while reading a timetable.
type WarningCode int

const (
	// NoWeekMarker means no row carried a week range, so no row had a date.
	NoWeekMarker WarningCode = iota + 1
	// NoWeekday means no row carried a weekday label.
	NoWeekday
	// NoSessions means the timetable yielded no sessions at all.
	NoSessions
	// DuplicateSessions means repeated rows were dropped.
	DuplicateSessions
	// BadWeekMarker means a week range had impossible dates. Its week was
	// skipped.
	BadWeekMarker
)

// String returns the string representation of the code.
func (c WarningCode) String() string {
	switch c {
	case NoWeekMarker:
		return "no-week-marker"
	case NoWeekday:
		return "no-weekday"
	case NoSessions:
		return "no-sessions"
	case DuplicateSessions:
		return "duplicate-sessions"
	case BadWeekMarker:
		return "bad-week-marker"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal note about the timetable that was read.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

// FormatWarnings joins warning messages into a single line.
func FormatWarnings(warnings []Warning) string {
	msgs := make([]string, len(warnings))
	for i, w := range warnings {
		msgs[i] = w.Message
	}
	return strings.Join(msgs, "; ")
}

func scanWarnings(scan *schedule.Scan) []Warning {
	var (
		ws         []Warning
		weeks      = scan.Weeks
		days       = scan.Days
		sessions   = len(scan.Sessions)
		duplicates = scan.Duplicates
	)
	if scan.BadWeeks > 0 {
		ws = append(ws, Warning{Code: BadWeekMarker,
			Message: fmt.Sprintf("%d week ranges with impossible dates skipped", scan.BadWeeks)})
	}
	if weeks == 0 {
		ws = append(ws, Warning{Code: NoWeekMarker,
			Message: "no week range (DD.MM.YY - DD.MM.YY) found in the marker column"})
	}
	if days == 0 {
		ws = append(ws, Warning{Code: NoWeekday,
			Message: "no weekday label found in the day column"})
	}
	if sessions == 0 {
		ws = append(ws, Warning{Code: NoSessions,
			Message: "timetable contains no sessions"})
	}
	if duplicates > 0 {
		ws = append(ws, Warning{Code: DuplicateSessions,
			Message: fmt.Sprintf("%d duplicate sessions dropped", duplicates)})
	}
	return ws
}
