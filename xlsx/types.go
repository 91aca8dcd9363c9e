// Package xlsx reads worksheets out of Office Open XML workbooks (.xlsx).
//
// Only cell text is of interest: shared strings, inline strings, numbers,
// booleans and cached formula results are resolved to display strings, and
// merged regions are recorded. Styling beyond number formats is ignored.
package xlsx

import "encoding/xml"

// workbookXML represents the xl/workbook.xml file structure.
type workbookXML struct {
	XMLName xml.Name  `xml:"workbook"`
	Sheets  sheetsXML `xml:"sheets"`
	Pr      *wbPrXML  `xml:"workbookPr"`
}

type wbPrXML struct {
	Date1904 bool `xml:"date1904,attr"`
}

type sheetsXML struct {
	Sheet []sheetRefXML `xml:"sheet"`
}

type sheetRefXML struct {
	Name    string `xml:"name,attr"`
	SheetID string `xml:"sheetId,attr"`
	RID     string `xml:"id,attr"` // r:id attribute for relationship
}

// worksheetXML represents a xl/worksheets/sheet*.xml file structure.
type worksheetXML struct {
	XMLName    xml.Name       `xml:"worksheet"`
	SheetData  sheetDataXML   `xml:"sheetData"`
	MergeCells *mergeCellsXML `xml:"mergeCells"`
}

type sheetDataXML struct {
	Rows []rowXML `xml:"row"`
}

type rowXML struct {
	R     int       `xml:"r,attr"` // Row number (1-indexed), 0 if omitted
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string        `xml:"r,attr"` // Cell reference (e.g., "A1"), may be omitted
	T  string        `xml:"t,attr"` // s, n, b, str, inlineStr, e, d
	S  int           `xml:"s,attr"` // Style index
	V  string        `xml:"v"`
	F  string        `xml:"f"`
	Is *inlineStrXML `xml:"is"`
}

type inlineStrXML struct {
	T string `xml:"t"`
	R []rXML `xml:"r"`
}

type mergeCellsXML struct {
	MergeCell []mergeCellXML `xml:"mergeCell"`
}

type mergeCellXML struct {
	Ref string `xml:"ref,attr"` // e.g., "A1:B2"
}

// sharedStringsXML represents the xl/sharedStrings.xml file structure.
type sharedStringsXML struct {
	XMLName xml.Name `xml:"sst"`
	SI      []siXML  `xml:"si"`
}

type siXML struct {
	T string `xml:"t"` // Simple text
	R []rXML `xml:"r"` // Rich text runs
}

type rXML struct {
	T string `xml:"t"`
}

// text joins plain and rich-text content.
func (si siXML) text() string {
	if si.T != "" || len(si.R) == 0 {
		return si.T
	}
	return joinRuns(si.R)
}

func (is inlineStrXML) text() string {
	if is.T != "" || len(is.R) == 0 {
		return is.T
	}
	return joinRuns(is.R)
}

func joinRuns(runs []rXML) string {
	n := 0
	for _, r := range runs {
		n += len(r.T)
	}
	b := make([]byte, 0, n)
	for _, r := range runs {
		b = append(b, r.T...)
	}
	return string(b)
}

// stylesXML represents the xl/styles.xml file structure.
type stylesXML struct {
	XMLName xml.Name    `xml:"styleSheet"`
	NumFmts *numFmtsXML `xml:"numFmts"`
	CellXfs *cellXfsXML `xml:"cellXfs"`
}

type numFmtsXML struct {
	NumFmt []numFmtXML `xml:"numFmt"`
}

type numFmtXML struct {
	NumFmtID   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

type cellXfsXML struct {
	Xf []xfXML `xml:"xf"`
}

type xfXML struct {
	NumFmtID int `xml:"numFmtId,attr"`
}

// relationshipsXML represents .rels files.
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}
