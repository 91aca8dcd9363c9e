package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrInvalidWeekDate is returned for a week-range marker whose dates do not
// exist on the calendar, such as 31.02.23.
var ErrInvalidWeekDate = errors.New("invalid week date")

// Weekdays is the fixed ordering of weekday labels recognized in the day column.
// A label's position is its day offset from the start of the week.
var Weekdays = [...]string{
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
}

// WeekdayIndex returns the zero-based offset of a weekday label.
// The label must match exactly.
func WeekdayIndex(name string) (int, bool) {
	for i, d := range Weekdays {
		if d == name {
			return i, true
		}
	}
	return 0, false
}

// markerDateLayout is DD.MM.YY. Two-digit years follow time.Parse:
// 69-99 map to 19xx, 00-68 to 20xx.
const markerDateLayout = "02.01.06"

var (
	weekRangeRe = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{2})\s*-\s*(\d{2}\.\d{2}\.\d{2})`)

	// looseRangeRe matches anything that was probably meant to be a week marker.
	looseRangeRe = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{2,4}\s*[-–—]`)
)

// Week is the date range opened by a week-range marker.
type Week struct {
	Start time.Time
	End   time.Time
	Label string // "DD.MM.YY-DD.MM.YY", as written in the marker
}

// Date returns the calendar date of the given day offset within the week.
func (w Week) Date(offset int) time.Time {
	return w.Start.AddDate(0, 0, offset)
}

// ParseWeekRange looks for a "DD.MM.YY - DD.MM.YY" range anywhere in cell.
// found reports whether the pattern is present. A present range whose dates
// do not exist returns found and an error wrapping ErrInvalidWeekDate.
func ParseWeekRange(cell string) (w Week, found bool, err error) {
	m := weekRangeRe.FindStringSubmatch(cell)
	if m == nil {
		return Week{}, false, nil
	}
	start, err := time.Parse(markerDateLayout, m[1])
	if err != nil {
		return Week{}, true, fmt.Errorf("%w: %s", ErrInvalidWeekDate, m[1])
	}
	end, err := time.Parse(markerDateLayout, m[2])
	if err != nil {
		return Week{}, true, fmt.Errorf("%w: %s", ErrInvalidWeekDate, m[2])
	}
	return Week{
		Start: start,
		End:   end,
		Label: m[1] + "-" + m[2],
	}, true, nil
}

// looksLikeWeekRange reports whether cell resembles a week marker, well-formed or not.
func looksLikeWeekRange(cell string) bool {
	return looseRangeRe.MatchString(cell)
}
