package query

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// NothingFound is the text of an empty result.
const NothingFound = "Ничего не найдено."

// Entry is one numbered line of a report.
type Entry struct {
	Index   int       `json:"index"`
	Date    time.Time `json:"date"`
	Time    string    `json:"time"`
	Room    string    `json:"room"`
	Teacher string    `json:"teacher"`
	Subject string    `json:"subject"`
}

// Report lists the sessions matched by a query, sorted by date and time.
type Report struct {
	Group   string  `json:"group"`
	Mode    Mode    `json:"mode"`
	Label   string  `json:"label"` // subject or teacher as written in the timetable
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Weeks   int     `json:"weeks"` // distinct weeks the sessions fall into
}

// String renders the report as text.
func (r *Report) String() string {
	lines := make([]string, 0, len(r.Entries)+6)
	lines = append(lines, "👥 Группа: "+r.Group)
	if r.Mode == Teacher {
		lines = append(lines, "👨‍🏫 Преподаватель: "+r.Label)
	} else {
		lines = append(lines, "📚 Предмет: "+r.Label)
	}
	lines = append(lines, "📅 Даты занятий:")
	for _, e := range r.Entries {
		lines = append(lines, fmt.Sprintf("%2d. %s (%s, %s, %s)",
			e.Index, e.Date.Format("02.01.2006"), e.Time, e.Room, e.Teacher))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("🔢 Всего занятий     : %d", r.Total),
		fmt.Sprintf("🗓️  Задействовано недель: %d", r.Weeks),
	)
	return strings.Join(lines, "\n")
}

// Result is the outcome of a query: a report, or nothing.
type Result struct {
	Report *Report `json:"report,omitempty"`
}

// Empty reports whether the query matched no sessions.
func (r Result) Empty() bool {
	return r.Report == nil
}

// String renders the report, or NothingFound for an empty result.
func (r Result) String() string {
	if r.Empty() {
		return NothingFound
	}
	return r.Report.String()
}

// WriteTo writes the rendered result to w.
func (r Result) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}
