package query

import (
	"fmt"
	"strings"
)

// Mode selects the field a query matches against.
type Mode int

const (
	// Subject matches the normalized subject key exactly.
	Subject Mode = iota
	// Teacher matches a whole word inside the teacher text.
	Teacher
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case Subject:
		return "subject"
	case Teacher:
		return "teacher"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode parses a mode name. Russian names are accepted as well.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "subject", "предмет":
		return Subject, nil
	case "teacher", "преподаватель":
		return Teacher, nil
	default:
		return 0, fmt.Errorf("unknown search mode: %q", s)
	}
}
