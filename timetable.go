// Package timetable provides a fluent API for searching class sessions in a
// weekly timetable spreadsheet.
//
// Basic usage:
//
//	result, warnings, err := timetable.Open("ИВТ-21.xlsx").Search(query.Subject, "химия")
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", timetable.FormatWarnings(warnings))
//	}
//	fmt.Println(result)
//
// With options:
//
//	f := timetable.Open("ИВТ-21.xlsx").
//	    Sheet("Весна").
//	    Strict()
//	result, _, err := f.Search(query.Teacher, "иванов")
//	if err == nil && !result.Empty() {
//	    path, err := f.Save(result)
//	}
//
// The schedule, query and source packages are available for lower-level use.
package timetable

import (
	"errors"

	"github.com/tsawler/timetable/schedule"
)

var (
	// ErrMissingInput is returned when no file or no keyword was given.
	ErrMissingInput = errors.New("choose a file and enter a subject or teacher")

	// ErrNotFound is matched by a *NotFoundError.
	ErrNotFound = errors.New("file not found")
)

// NotFoundError is returned when the timetable file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return ErrNotFound.Error() + ": " + e.Path
}

// Is makes a NotFoundError match ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Open returns a Finder for the timetable file at path. Nothing is read
// until a terminal operation such as Search is called.
//
// Example:
//
//	result, warnings, err := timetable.Open("ИВТ-21.xlsx").Search(query.Subject, "химия")
func Open(path string) *Finder {
	return &Finder{
		path:    path,
		options: defaultOptions(),
	}
}

// FromRows returns a Finder over rows that are already in memory, such as a
// grid produced by the source package. group names the study group in
// reports. A Finder created this way cannot Save.
//
// Example:
//
//	tbl, err := source.Load(ctx, "ИВТ-21.csv", source.Config{})
//	if err != nil {
//	    // handle error
//	}
//	result, _, err := timetable.FromRows("ИВТ-21", tbl.Rows).Search(query.Teacher, "иванов")
func FromRows(group string, rows [][]string) *Finder {
	return &Finder{
		group:   group,
		rows:    rows,
		loaded:  true,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	path := timetable.Must(f.Save(result))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult is a helper that wraps a call to Search or Sessions and panics
// if the error is non-nil. It discards warnings and returns just the value.
//
// Example:
//
//	result := timetable.MustResult(timetable.Open("ИВТ-21.xlsx").Search(query.Subject, "химия"))
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Sessions is a shorthand for Open(path).Sessions() without warnings.
func Sessions(path string) ([]schedule.Session, error) {
	sessions, _, err := Open(path).Sessions()
	return sessions, err
}
