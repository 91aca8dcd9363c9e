// Package xlsxtest builds small XLSX workbooks for tests.
package xlsxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"testing"
)

// Sheet is a worksheet given as rows of cell text. Empty strings are left
// out of the sheet XML, as spreadsheet applications do.
type Sheet struct {
	Name string
	Rows [][]string
}

// Bytes returns an XLSX workbook containing sheets. Cell text is stored in
// the shared string table.
func Bytes(sheets ...Sheet) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var shared []string
	index := make(map[string]int)
	intern := func(s string) int {
		if i, ok := index[s]; ok {
			return i
		}
		index[s] = len(shared)
		shared = append(shared, s)
		return index[s]
	}

	var types, rels, book strings.Builder
	types.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
<Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/>`)
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rIdSST" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/>`)
	book.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets>`)

	for i, sh := range sheets {
		n := i + 1
		fmt.Fprintf(&types, "\n<Override PartName=\"/xl/worksheets/sheet%d.xml\" ContentType=\"application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml\"/>", n)
		fmt.Fprintf(&rels, "\n<Relationship Id=\"rId%d\" Type=\"http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet\" Target=\"worksheets/sheet%d.xml\"/>", n, n)
		fmt.Fprintf(&book, "\n<sheet name=\"%s\" sheetId=\"%d\" r:id=\"rId%d\"/>", escape(sh.Name), n, n)

		var ws strings.Builder
		ws.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
		for r, row := range sh.Rows {
			fmt.Fprintf(&ws, "\n<row r=\"%d\">", r+1)
			for c, val := range row {
				if val == "" {
					continue
				}
				fmt.Fprintf(&ws, "<c r=\"%s\" t=\"s\"><v>%d</v></c>", cellRef(c, r), intern(val))
			}
			ws.WriteString("</row>")
		}
		ws.WriteString("\n</sheetData></worksheet>")

		if err := add(zw, fmt.Sprintf("xl/worksheets/sheet%d.xml", n), ws.String()); err != nil {
			return nil, err
		}
	}

	types.WriteString("\n</Types>")
	rels.WriteString("\n</Relationships>")
	book.WriteString("\n</sheets>\n</workbook>")

	var sst strings.Builder
	fmt.Fprintf(&sst, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="%d" uniqueCount="%d">`, len(shared), len(shared))
	for _, s := range shared {
		fmt.Fprintf(&sst, "\n<si><t xml:space=\"preserve\">%s</t></si>", escape(s))
	}
	sst.WriteString("\n</sst>")

	parts := []struct{ name, body string }{
		{"[Content_Types].xml", types.String()},
		{"xl/_rels/workbook.xml.rels", rels.String()},
		{"xl/workbook.xml", book.String()},
		{"xl/sharedStrings.xml", sst.String()},
	}
	for _, p := range parts {
		if err := add(zw, p.name, p.body); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write saves a workbook built from sheets to path.
func Write(tb testing.TB, path string, sheets ...Sheet) {
	tb.Helper()
	data, err := Bytes(sheets...)
	if err != nil {
		tb.Fatalf("building workbook: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("writing workbook: %v", err)
	}
}

func add(zw *zip.Writer, name, body string) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(body))
	return err
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func cellRef(col, row int) string {
	var name []byte
	for col++; col > 0; col /= 26 {
		col--
		name = append([]byte{byte('A' + col%26)}, name...)
	}
	return fmt.Sprintf("%s%d", name, row+1)
}
