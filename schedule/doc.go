// Package schedule reconstructs class sessions from a weekly timetable sheet.
//
// A timetable sheet is a plain grid of strings in which structure is carried
// positionally. Week-range markers ("06.02.23 - 11.02.23") in the teacher
// column open a new week, and weekday labels in the first column open a new
// day. Both apply to every following row until replaced. The extractor walks
// the grid top to bottom, threads those two pieces of context through the
// rows, and emits one [Session] per row that carries a subject.
//
// Basic usage:
//
//	sessions := schedule.Extract(rows)
//
// With options:
//
//	ex := schedule.New(schedule.Options{Strict: true, Logger: logger})
//	sessions, err := ex.Extract(rows)
//
// Column positions are described by [Columns]. Subject names are compared by
// their [NormalizeSubject] key, and every case-insensitive comparison in the
// package goes through [Fold].
package schedule
