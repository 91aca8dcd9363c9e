package schedule

import "fmt"

// Columns describes which cell of a row holds which field.
// Indexes are 0-based. The week-range marker is read from the Teacher column,
// since marker rows and session rows share it.
type Columns struct {
	Day     int `yaml:"day" json:"day"`
	Time    int `yaml:"time" json:"time"`
	Room    int `yaml:"room" json:"room"`
	Subject int `yaml:"subject" json:"subject"`
	Teacher int `yaml:"teacher" json:"teacher"`
}

// DefaultColumns returns the column layout of the standard timetable export:
// weekday in A, time in C, room in E, subject in F, teacher (or week marker) in G.
func DefaultColumns() Columns {
	return Columns{
		Day:     0,
		Time:    2,
		Room:    4,
		Subject: 5,
		Teacher: 6,
	}
}

// IsZero reports whether no column has been configured.
func (c Columns) IsZero() bool {
	return c == Columns{}
}

// Width returns the minimum number of cells a row needs to cover every column.
func (c Columns) Width() int {
	w := 0
	for _, idx := range c.indexes() {
		if idx+1 > w {
			w = idx + 1
		}
	}
	return w
}

// Validate checks that every index is non-negative and that no two fields
// share a column.
func (c Columns) Validate() error {
	names := [...]string{"day", "time", "room", "subject", "teacher"}
	seen := make(map[int]string, len(names))
	for i, idx := range c.indexes() {
		if idx < 0 {
			return fmt.Errorf("column %s: negative index %d", names[i], idx)
		}
		if other, ok := seen[idx]; ok {
			return fmt.Errorf("column %s: index %d already used by %s", names[i], idx, other)
		}
		seen[idx] = names[i]
	}
	return nil
}

func (c Columns) indexes() [5]int {
	return [5]int{c.Day, c.Time, c.Room, c.Subject, c.Teacher}
}
