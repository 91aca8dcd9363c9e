package schedule

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultHeaderCaption is the caption of the subject column. Timetables repeat
// their header row between weeks, and rows carrying it are not sessions.
const DefaultHeaderCaption = "Название дисциплины"

// Options configures an Extractor.
type Options struct {
	// Columns maps fields to cell positions (default: DefaultColumns).
	Columns Columns

	// HeaderCaption is the subject column caption (default: DefaultHeaderCaption).
	HeaderCaption string

	// Strict makes Extract fail on text in the marker column that looks like
	// a week range but cannot be parsed. By default a range with impossible
	// dates is skipped along with the rows after it, up to the next good
	// marker, and other near misses are kept as ordinary teacher values.
	Strict bool

	// Logger for debug messages (default: slog.Default()).
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Columns.IsZero() {
		o.Columns = DefaultColumns()
	}
	if o.HeaderCaption == "" {
		o.HeaderCaption = DefaultHeaderCaption
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// MarkerError reports a malformed week-range marker in strict mode.
type MarkerError struct {
	Row  int // 1-based row number
	Cell string
	Err  error // ErrInvalidWeekDate for impossible dates, nil otherwise
}

func (e *MarkerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: malformed week range %q: %v", e.Row, e.Cell, e.Err)
	}
	return fmt.Sprintf("row %d: malformed week range %q", e.Row, e.Cell)
}

func (e *MarkerError) Unwrap() error { return e.Err }

// Scan is the outcome of one extraction pass.
type Scan struct {
	Sessions   []Session // deduplicated, in row order
	Weeks      int       // week markers seen
	BadWeeks   int       // week markers with impossible dates
	Days       int       // weekday labels seen
	Skipped    int       // rows that yielded no session
	Duplicates int       // sessions dropped as duplicates
}

// Extractor turns timetable rows into sessions.
// An Extractor holds no state between calls and may be reused.
type Extractor struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Extractor with the given options.
func New(opts Options) *Extractor {
	opts.defaults()
	return &Extractor{
		opts:   opts,
		logger: opts.Logger,
	}
}

// Extract runs an extraction pass with default options. It never fails:
// rows that cannot be anchored to a date are skipped.
func Extract(rows [][]string) []Session {
	scan, _ := New(Options{}).Scan(rows)
	return scan.Sessions
}

// Extract returns the deduplicated sessions found in rows.
func (e *Extractor) Extract(rows [][]string) ([]Session, error) {
	scan, err := e.Scan(rows)
	if err != nil {
		return nil, err
	}
	return scan.Sessions, nil
}

// Scan walks rows top to bottom, carrying the current week and weekday from
// row to row, and returns the sessions found along with pass statistics.
//
// The only error is a *MarkerError, and only in strict mode. A marker with
// impossible dates always ends the current week, strict or not.
func (e *Extractor) Scan(rows [][]string) (*Scan, error) {
	if err := e.opts.Columns.Validate(); err != nil {
		return nil, fmt.Errorf("invalid columns: %w", err)
	}

	cols := e.opts.Columns
	caption := Fold(e.opts.HeaderCaption)

	var (
		week    *Week
		day     = -1
		scan    = &Scan{}
		records = make([]Session, 0, len(rows))
	)

	for i, row := range rows {
		marker := cell(row, cols.Teacher)
		w, found, err := ParseWeekRange(marker)
		if err != nil {
			if e.opts.Strict {
				return nil, &MarkerError{Row: i + 1, Cell: marker, Err: err}
			}
			// The rows that follow belong to a week whose dates are unknown.
			week = nil
			scan.BadWeeks++
			scan.Skipped++
			e.logger.Warn("bad week marker", "row", i+1, "cell", marker, "error", err)
			continue
		}
		if found {
			week = &w
			scan.Weeks++
			scan.Skipped++
			e.logger.Debug("week marker", "row", i+1, "week", w.Label)
			continue
		}
		if e.opts.Strict && looksLikeWeekRange(marker) {
			return nil, &MarkerError{Row: i + 1, Cell: marker}
		}

		if idx, ok := WeekdayIndex(strings.TrimSpace(cell(row, cols.Day))); ok {
			day = idx
			scan.Days++
		}

		if week == nil || day < 0 {
			scan.Skipped++
			continue
		}

		subject := strings.TrimSpace(cell(row, cols.Subject))
		if subject == "" || Fold(subject) == caption {
			scan.Skipped++
			continue
		}

		records = append(records, Session{
			Date:       week.Date(day),
			Time:       strings.TrimSpace(cell(row, cols.Time)),
			Room:       strings.TrimSpace(cell(row, cols.Room)),
			Subject:    subject,
			SubjectKey: NormalizeSubject(subject),
			Teacher:    strings.TrimSpace(marker),
			Week:       week.Label,
		})
	}

	scan.Sessions = Dedupe(records)
	scan.Duplicates = len(records) - len(scan.Sessions)

	e.logger.Debug("extraction finished",
		"rows", len(rows),
		"sessions", len(scan.Sessions),
		"duplicates", scan.Duplicates,
		"weeks", scan.Weeks)

	return scan, nil
}

// cell returns the cell at idx, or "" if the row is too short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
