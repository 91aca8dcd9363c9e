package xlsx

import (
	"fmt"
	"strconv"
	"strings"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeEmpty indicates an empty cell.
	CellTypeEmpty CellType = iota
	// CellTypeString indicates a string value.
	CellTypeString
	// CellTypeNumber indicates a numeric value.
	CellTypeNumber
	// CellTypeDate indicates a number formatted as a date or time.
	CellTypeDate
	// CellTypeBoolean indicates a boolean value.
	CellTypeBoolean
	// CellTypeError indicates an error value such as #REF!.
	CellTypeError
)

// String returns the string representation of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeEmpty:
		return "empty"
	case CellTypeString:
		return "string"
	case CellTypeNumber:
		return "number"
	case CellTypeDate:
		return "date"
	case CellTypeBoolean:
		return "boolean"
	case CellTypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Cell is a single worksheet cell.
type Cell struct {
	Value    string // display value
	RawValue string // value as stored in the sheet XML
	Type     CellType
	Merged   bool // part of a merged region but not its top-left cell
}

// IsEmpty returns true if the cell has no value.
func (c Cell) IsEmpty() bool {
	return c.Type == CellTypeEmpty || c.Value == ""
}

// MergedRegion is a rectangular block of merged cells (0-indexed, inclusive).
type MergedRegion struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Sheet is one worksheet. Rows is dense: every row has MaxCol+1 cells and
// missing rows in the XML appear as empty rows, so row indexes match the
// spreadsheet's row numbers minus one. Rows after the last cell with a
// value are dropped.
type Sheet struct {
	Name          string
	Index         int
	Rows          [][]Cell
	MaxCol        int
	MergedRegions []MergedRegion
}

// Cell returns the cell at the given row and column (0-indexed), or nil.
func (s *Sheet) Cell(row, col int) *Cell {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return nil
	}
	return &s.Rows[row][col]
}

// CellByRef returns the cell at a reference such as "F12", or nil.
func (s *Sheet) CellByRef(ref string) *Cell {
	col, row, err := ParseCellRef(ref)
	if err != nil {
		return nil
	}
	return s.Cell(row, col)
}

// RowCount returns the number of rows in the sheet.
func (s *Sheet) RowCount() int {
	return len(s.Rows)
}

// Strings returns the display values of the sheet as a grid. Every row is
// padded to at least minWidth cells. Cells covered by a merge keep their own
// (normally empty) value: merged values are not copied across the region.
func (s *Sheet) Strings(minWidth int) [][]string {
	width := s.MaxCol + 1
	if minWidth > width {
		width = minWidth
	}
	out := make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		vals := make([]string, width)
		for j, c := range row {
			vals[j] = c.Value
		}
		out[i] = vals
	}
	return out
}

// ParseCellRef parses a cell reference like "A1" or "AA100" into column and row indices (0-indexed).
func ParseCellRef(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference %q: no column letters", ref)
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference %q: no row number", ref)
	}

	col = ColumnToIndex(ref[:i])
	if col < 0 {
		return 0, 0, fmt.Errorf("invalid column: %s", ref[:i])
	}

	n, err := strconv.Atoi(ref[i:])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("invalid row: %s", ref[i:])
	}
	return col, n - 1, nil
}

// ColumnToIndex converts column letters to a 0-indexed column number.
// A=0, B=1, ..., Z=25, AA=26. It returns -1 for invalid input.
func ColumnToIndex(col string) int {
	if col == "" {
		return -1
	}
	result := 0
	for _, c := range strings.ToUpper(col) {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

// IndexToColumn converts a 0-indexed column number to column letters.
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}
	var b []byte
	for index++; index > 0; index /= 26 {
		index--
		b = append([]byte{byte('A' + index%26)}, b...)
	}
	return string(b)
}

// CellRef creates a cell reference string from column and row indices (0-indexed).
func CellRef(col, row int) string {
	return IndexToColumn(col) + strconv.Itoa(row+1)
}

// ParseRangeRef parses a range reference like "A1:D10". A single cell
// reference is treated as a one-cell range.
func ParseRangeRef(ref string) (startCol, startRow, endCol, endRow int, err error) {
	from, to, found := strings.Cut(ref, ":")
	if !found {
		to = from
	}

	startCol, startRow, err = ParseCellRef(from)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid start cell: %w", err)
	}
	endCol, endRow, err = ParseCellRef(to)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid end cell: %w", err)
	}
	return startCol, startRow, endCol, endRow, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
