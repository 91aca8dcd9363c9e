// Package csvtable reads timetables exported from a spreadsheet as
// delimited text.
//
// Exports from Russian-locale spreadsheet software vary: the delimiter is
// usually ';', the encoding may be UTF-8 (with or without BOM), UTF-16 with a
// BOM, or Windows-1251. Read detects all of these.
package csvtable

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Options overrides detection.
type Options struct {
	// Comma is the field delimiter. Zero means detect from the first line.
	Comma rune

	// Encoding of the input. Nil means detect: a BOM selects UTF-8 or UTF-16,
	// valid UTF-8 is read as is, anything else is decoded as Windows-1251.
	Encoding encoding.Encoding
}

// Read parses delimited text into rows of cells.
func Read(r io.Reader) ([][]string, error) {
	return ReadWithOptions(r, Options{})
}

// ReadWithOptions parses delimited text with the given options.
// Rows may have differing numbers of cells.
func ReadWithOptions(r io.Reader, opts Options) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	text, err := decode(data, opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}

	comma := opts.Comma
	if comma == 0 {
		comma = sniffComma(text)
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	return rows, nil
}

func decode(data []byte, enc encoding.Encoding) (string, error) {
	var t transform.Transformer
	switch {
	case enc != nil:
		t = enc.NewDecoder()
	case hasBOM(data) || utf8.Valid(data):
		t = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	default:
		t = charmap.Windows1251.NewDecoder()
	}

	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return true
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return true
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return true
	}
	return false
}

// sniffComma picks the most frequent candidate delimiter on the first
// non-empty line, ignoring quoted text. Ties go to the earlier candidate.
func sniffComma(text string) rune {
	candidates := []rune{';', '\t', ','}

	var line string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	counts := make(map[rune]int, len(candidates))
	inQuote := false
	for _, r := range line {
		if r == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			counts[r]++
		}
	}

	best := ','
	bestCount := 0
	for _, c := range candidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
