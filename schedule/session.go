package schedule

import "time"

// Session is one class meeting reconstructed from a timetable row.
type Session struct {
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
	Room       string    `json:"room"`
	Subject    string    `json:"subject"`     // full subject name as written
	SubjectKey string    `json:"subject_key"` // NormalizeSubject(Subject)
	Teacher    string    `json:"teacher"`
	Week       string    `json:"week"` // label of the week the row belonged to
}

// Key identifies a session for deduplication.
type Key struct {
	Date    string
	Time    string
	Room    string
	Subject string
	Teacher string
}

// Key returns the identity of s. Sessions with equal keys are duplicates,
// regardless of the week label they were found under.
func (s Session) Key() Key {
	return Key{
		Date:    s.Date.Format("2006-01-02"),
		Time:    s.Time,
		Room:    s.Room,
		Subject: s.Subject,
		Teacher: s.Teacher,
	}
}

// Dedupe drops sessions whose key has already been seen, keeping the first
// occurrence and the original order. The input slice is not modified.
func Dedupe(sessions []Session) []Session {
	seen := make(map[Key]struct{}, len(sessions))
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		k := s.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
