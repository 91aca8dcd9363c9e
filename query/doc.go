// Package query filters extracted sessions by subject or teacher and renders
// the matches as a report.
//
// Queries are pure functions over an in-memory session list:
//
//	res := query.Run(sessions, query.Teacher, schedule.Fold("иванов"), "ИВТ-21")
//	if res.Empty() {
//	    fmt.Println(res) // "Ничего не найдено."
//	}
//
// Keywords are expected to be trimmed and folded with [schedule.Fold] by the
// caller. Subject queries compare whole subject keys; teacher queries look
// for the keyword as a whole word inside the teacher text.
package query
