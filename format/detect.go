// Package format detects the container format of a timetable file.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format represents a supported timetable container.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// XLSX indicates an Excel workbook (.xlsx, .xlsm).
	XLSX
	// CSV indicates delimited text exported from a spreadsheet.
	CSV
	// HTML indicates a timetable saved as a web page.
	HTML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case XLSX:
		return "XLSX"
	case CSV:
		return "CSV"
	case HTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case XLSX:
		return ".xlsx"
	case CSV:
		return ".csv"
	case HTML:
		return ".html"
	default:
		return ""
	}
}

// Detect determines the format from the filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return XLSX
	case ".csv", ".tsv", ".txt":
		return CSV
	case ".html", ".htm":
		return HTML
	default:
		return Unknown
	}
}

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// DetectFromReader inspects content to determine the format. ZIP archives
// are XLSX only if they carry an xl/ part. Plain UTF-8 or UTF-16 text that
// is not HTML is reported as CSV.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	switch {
	case bytes.HasPrefix(magic, zipMagic):
		return detectZIPFormat(r, size)
	case isHTML(magic):
		return HTML, nil
	case isText(magic):
		return CSV, nil
	}
	return Unknown, nil
}

func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/") {
			return XLSX, nil
		}
	}
	return Unknown, nil
}

// isHTML checks for common HTML signatures after leading whitespace and a
// UTF-8 byte order mark.
func isHTML(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	data = bytes.TrimLeft(data, " \t\r\n")
	upper := strings.ToUpper(string(data))

	if strings.HasPrefix(upper, "<!DOCTYPE HTML") || strings.HasPrefix(upper, "<HTML") ||
		strings.HasPrefix(upper, "<TABLE") {
		return true
	}
	return strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML")
}

// isText reports whether data looks like text: a UTF-16 byte order mark, or
// valid UTF-8 (allowing a rune cut at the end) without NUL bytes.
func isText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return true
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return len(data)-i < utf8.UTFMax && !utf8.FullRune(data[i:])
		}
		i += size
	}
	return true
}
