package xlsx

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Built-in number format IDs that denote dates or times (ECMA-376 18.8.30).
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true,
	20: true, 21: true, 22: true, 45: true, 46: true, 47: true,
}

// isDateFormatCode reports whether a custom format code renders a date or time.
// Quoted literals, escapes and bracketed sections ([Red], [h]) are ignored
// except for elapsed-time markers.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(code)
	inQuote := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '\\' || c == '_' || c == '*':
			i++
		case c == '[':
			end := strings.IndexByte(code[i:], ']')
			if end < 0 {
				return false
			}
			inner := code[i+1 : i+end]
			if inner == "h" || inner == "hh" || inner == "mm" || inner == "ss" {
				return true
			}
			i += end
		case c == 'y' || c == 'm' || c == 'd' || c == 'h' || c == 's':
			return true
		}
	}
	return false
}

// excelEpoch returns the zero day of the workbook's serial date system.
func excelEpoch(date1904 bool) time.Time {
	if date1904 {
		return time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	// 1899-12-30 absorbs Excel's fictitious 1900-02-29.
	return time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
}

// formatSerial renders an Excel serial date. Pure times print as "15:04",
// whole days as "02.01.2006", anything else as both.
func formatSerial(serial float64, date1904 bool) string {
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 86400)
	t := excelEpoch(date1904).AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)

	switch {
	case days == 0 && !date1904:
		return t.Format("15:04")
	case secs == 0:
		return t.Format("02.01.2006")
	default:
		return t.Format("02.01.2006 15:04")
	}
}

// formatNumber renders a raw numeric value the way a reader expects to see it:
// whole numbers lose a trailing ".0" and values in date-formatted cells become dates.
func formatNumber(raw string, isDate, date1904 bool) (string, CellType) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, CellTypeNumber
	}
	if isDate && f >= 0 {
		return formatSerial(f, date1904), CellTypeDate
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10), CellTypeNumber
	}
	return strconv.FormatFloat(f, 'f', -1, 64), CellTypeNumber
}
