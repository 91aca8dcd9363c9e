package query

import (
	"fmt"
	"sort"

	"github.com/tsawler/timetable/schedule"
)

// Select returns the sessions matching keyword in the given mode, in input
// order. It panics on an unknown mode.
func Select(sessions []schedule.Session, mode Mode, keyword string) []schedule.Session {
	var match func(schedule.Session) bool
	switch mode {
	case Subject:
		match = func(s schedule.Session) bool { return s.SubjectKey == keyword }
	case Teacher:
		match = func(s schedule.Session) bool { return containsWord(schedule.Fold(s.Teacher), keyword) }
	default:
		panic(fmt.Sprintf("query: invalid mode %d", mode))
	}

	var out []schedule.Session
	for _, s := range sessions {
		if match(s) {
			out = append(out, s)
		}
	}
	return out
}

// Run selects the sessions matching keyword and builds a report for group.
// The result is empty when nothing matches.
func Run(sessions []schedule.Session, mode Mode, keyword, group string) Result {
	selected := Select(sessions, mode, keyword)
	if len(selected) == 0 {
		return Result{}
	}

	label := selected[0].Subject
	if mode == Teacher {
		label = selected[0].Teacher
	}

	sorted := make([]schedule.Session, len(selected))
	copy(sorted, selected)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Time < b.Time
	})

	report := &Report{
		Group:   group,
		Mode:    mode,
		Label:   label,
		Entries: make([]Entry, len(sorted)),
		Total:   len(sorted),
	}

	weeks := make(map[string]struct{})
	for i, s := range sorted {
		report.Entries[i] = Entry{
			Index:   i + 1,
			Date:    s.Date,
			Time:    s.Time,
			Room:    s.Room,
			Teacher: s.Teacher,
			Subject: s.Subject,
		}
		weeks[s.Week] = struct{}{}
	}
	report.Weeks = len(weeks)

	return Result{Report: report}
}
