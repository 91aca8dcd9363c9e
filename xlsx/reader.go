package xlsx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// Reader provides access to the worksheets of an XLSX workbook.
// All sheets are parsed eagerly; the Reader holds no open file afterwards
// unless it was created by Open, in which case Close releases the file.
type Reader struct {
	file          *os.File
	files         map[string]*zip.File
	workbook      *workbookXML
	sharedStrings []string
	numFmts       map[int]string // numFmtId -> custom format code
	xfNumFmt      []int          // style index -> numFmtId
	sheetRels     map[string]string
	sheets        []*Sheet
}

// Open opens an XLSX file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	r, err := OpenReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// OpenReader reads an XLSX workbook from r.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	r := &Reader{
		files:     make(map[string]*zip.File, len(zr.File)),
		numFmts:   make(map[int]string),
		sheetRels: make(map[string]string),
	}
	for _, f := range zr.File {
		r.files[f.Name] = f
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := r.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	if err := r.parseWorkbook(); err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}
	// Shared strings and styles are optional parts.
	if err := r.parseSharedStrings(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("parsing shared strings: %w", err)
	}
	if err := r.parseStyles(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("parsing styles: %w", err)
	}
	if err := r.parseWorksheets(); err != nil {
		return nil, fmt.Errorf("parsing worksheets: %w", err)
	}

	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// validate checks that required XLSX parts exist.
func (r *Reader) validate() error {
	for _, name := range []string{"[Content_Types].xml", "xl/workbook.xml"} {
		if _, ok := r.files[name]; !ok {
			return fmt.Errorf("missing required file: %s", name)
		}
	}
	return nil
}

// readPart returns the content of a ZIP entry, or an error satisfying
// os.IsNotExist if there is none.
func (r *Reader) readPart(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (r *Reader) parseRelationships() error {
	data, err := r.readPart("xl/_rels/workbook.xml.rels")
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return err
	}
	for _, rel := range rels.Relationship {
		r.sheetRels[rel.ID] = rel.Target
	}
	return nil
}

func (r *Reader) parseWorkbook() error {
	data, err := r.readPart("xl/workbook.xml")
	if err != nil {
		return err
	}
	r.workbook = &workbookXML{}
	return xml.Unmarshal(data, r.workbook)
}

func (r *Reader) parseSharedStrings() error {
	data, err := r.readPart("xl/sharedStrings.xml")
	if err != nil {
		return err
	}

	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return err
	}
	r.sharedStrings = make([]string, len(sst.SI))
	for i, si := range sst.SI {
		r.sharedStrings[i] = si.text()
	}
	return nil
}

func (r *Reader) parseStyles() error {
	data, err := r.readPart("xl/styles.xml")
	if err != nil {
		return err
	}

	var st stylesXML
	if err := xml.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.NumFmts != nil {
		for _, nf := range st.NumFmts.NumFmt {
			r.numFmts[nf.NumFmtID] = nf.FormatCode
		}
	}
	if st.CellXfs != nil {
		r.xfNumFmt = make([]int, len(st.CellXfs.Xf))
		for i, xf := range st.CellXfs.Xf {
			r.xfNumFmt[i] = xf.NumFmtID
		}
	}
	return nil
}

// isDateStyle reports whether the style index applies a date or time format.
func (r *Reader) isDateStyle(style int) bool {
	if style < 0 || style >= len(r.xfNumFmt) {
		return false
	}
	id := r.xfNumFmt[style]
	if builtinDateFormats[id] {
		return true
	}
	if code, ok := r.numFmts[id]; ok {
		return isDateFormatCode(code)
	}
	return false
}

func (r *Reader) date1904() bool {
	return r.workbook != nil && r.workbook.Pr != nil && r.workbook.Pr.Date1904
}

// sheetPath resolves a workbook relationship target to a ZIP entry name.
func sheetPath(target string, index int) string {
	if target == "" {
		target = fmt.Sprintf("worksheets/sheet%d.xml", index+1)
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return path.Clean(path.Join("xl", target))
}

func (r *Reader) parseWorksheets() error {
	r.sheets = make([]*Sheet, 0, len(r.workbook.Sheets.Sheet))

	for i, ref := range r.workbook.Sheets.Sheet {
		data, err := r.readPart(sheetPath(r.sheetRels[ref.RID], i))
		if err != nil {
			continue // chartsheets and dangling references have no worksheet part
		}
		sheet, err := r.parseWorksheet(data, ref.Name, len(r.sheets))
		if err != nil {
			return fmt.Errorf("sheet %q: %w", ref.Name, err)
		}
		r.sheets = append(r.sheets, sheet)
	}

	if len(r.sheets) == 0 {
		return fmt.Errorf("no worksheets found")
	}
	return nil
}

// parseWorksheet parses a single worksheet. Rows and cells without explicit
// references are placed after their predecessor, as Excel does.
func (r *Reader) parseWorksheet(data []byte, name string, index int) (*Sheet, error) {
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}

	sheet := &Sheet{Name: name, Index: index}

	type placed struct {
		row, col int
		cell     Cell
	}
	var cells []placed
	maxRow, maxCol := -1, -1

	rowIdx := -1
	for _, row := range ws.SheetData.Rows {
		if row.R > 0 {
			rowIdx = row.R - 1
		} else {
			rowIdx++
		}

		colIdx := -1
		for _, cx := range row.Cells {
			if cx.R != "" {
				col, _, err := ParseCellRef(cx.R)
				if err != nil {
					return nil, err
				}
				colIdx = col
			} else {
				colIdx++
			}

			c := r.resolveCell(cx)
			if c.Type == CellTypeEmpty {
				continue
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
			// Only rows holding a value extend the grid; formatted empty
			// rows can sit anywhere up to the sheet's last row.
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
			cells = append(cells, placed{row: rowIdx, col: colIdx, cell: c})
		}
	}

	if maxCol < 0 {
		maxCol = 0
	}
	sheet.MaxCol = maxCol
	sheet.Rows = make([][]Cell, maxRow+1)
	for i := range sheet.Rows {
		sheet.Rows[i] = make([]Cell, maxCol+1)
	}
	for _, p := range cells {
		sheet.Rows[p.row][p.col] = p.cell
	}

	if ws.MergeCells != nil {
		for _, mc := range ws.MergeCells.MergeCell {
			sc, sr, ec, er, err := ParseRangeRef(mc.Ref)
			if err != nil {
				continue
			}
			region := MergedRegion{StartRow: sr, StartCol: sc, EndRow: er, EndCol: ec}
			sheet.MergedRegions = append(sheet.MergedRegions, region)
			for row := sr; row <= er && row < len(sheet.Rows); row++ {
				for col := sc; col <= ec && col < len(sheet.Rows[row]); col++ {
					if row != sr || col != sc {
						sheet.Rows[row][col].Merged = true
					}
				}
			}
		}
	}

	return sheet, nil
}

// resolveCell turns a cell element into its display value.
func (r *Reader) resolveCell(cx cellXML) Cell {
	c := Cell{RawValue: cx.V}

	switch cx.T {
	case "s":
		idx, err := strconv.Atoi(cx.V)
		if err == nil && idx >= 0 && idx < len(r.sharedStrings) {
			c.Value = r.sharedStrings[idx]
			c.Type = CellTypeString
		}
	case "inlineStr":
		if cx.Is != nil {
			c.Value = cx.Is.text()
			c.Type = CellTypeString
		}
	case "str", "d":
		c.Value = cx.V
		c.Type = CellTypeString
	case "b":
		c.Type = CellTypeBoolean
		c.Value = "FALSE"
		if cx.V == "1" {
			c.Value = "TRUE"
		}
	case "e":
		c.Value = cx.V
		c.Type = CellTypeError
	default:
		if cx.V != "" {
			c.Value, c.Type = formatNumber(cx.V, r.isDateStyle(cx.S), r.date1904())
		}
	}

	if c.Value == "" {
		c.Type = CellTypeEmpty
	}
	return c
}

// SheetCount returns the number of worksheets in the workbook.
func (r *Reader) SheetCount() int {
	return len(r.sheets)
}

// SheetNames returns the names of all worksheets.
func (r *Reader) SheetNames() []string {
	names := make([]string, len(r.sheets))
	for i, s := range r.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the worksheet at the given index (0-indexed).
func (r *Reader) Sheet(index int) (*Sheet, error) {
	if index < 0 || index >= len(r.sheets) {
		return nil, fmt.Errorf("sheet index %d out of range (0-%d)", index, len(r.sheets)-1)
	}
	return r.sheets[index], nil
}

// SheetByName returns the worksheet with the given name.
func (r *Reader) SheetByName(name string) (*Sheet, error) {
	for _, s := range r.sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sheet not found: %s", name)
}
