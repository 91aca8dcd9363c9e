package htmltable

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestRead_Simple(t *testing.T) {
	doc := `<!DOCTYPE html><html><body>
<table>
  <thead><tr><th>День</th><th>№</th><th>Время</th></tr></thead>
  <tbody>
    <tr><td>Понедельник</td><td>1</td><td> 09:00 </td></tr>
  </tbody>
</table>
</body></html>`

	got, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	want := [][]string{
		{"День", "№", "Время"},
		{"Понедельник", "1", "09:00"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %q, want %q", got, want)
	}
}

func TestRead_SpansKeepColumnPositions(t *testing.T) {
	doc := `<table>
<tr><td colspan="6"></td><td>06.02.23 - 11.02.23</td></tr>
<tr><td rowspan="2">Понедельник</td><td>1</td><td>09:00</td><td></td><td>А-101</td><td>Физика</td><td>Петров П.П.</td></tr>
<tr><td>2</td><td>10:40</td><td></td><td>Б-2</td><td>Химия</td><td rowspan="2">Сидоров</td></tr>
<tr><td>Вторник</td><td>1</td><td>09:00</td><td colspan="2">В-3</td><td>Алгебра</td></tr>
</table>`

	got, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	want := [][]string{
		{"", "", "", "", "", "", "06.02.23 - 11.02.23"},
		{"Понедельник", "1", "09:00", "", "А-101", "Физика", "Петров П.П."},
		{"", "2", "10:40", "", "Б-2", "Химия", "Сидоров"},
		{"Вторник", "1", "09:00", "В-3", "", "Алгебра", ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() =\n%q\nwant\n%q", got, want)
	}
}

func TestRead_PicksLargestTable(t *testing.T) {
	doc := `<table><tr><td>menu</td></tr></table>
<table><tr><td>a</td></tr><tr><td>b</td></tr></table>`

	got, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if want := [][]string{{"a"}, {"b"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %q, want %q", got, want)
	}
}

func TestReadAll_NestedTables(t *testing.T) {
	doc := `<table><tr><td>outer<table><tr><td>inner</td></tr></table></td></tr></table>`

	tables, err := ReadAll(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("ReadAll() returned %d tables, want 1", len(tables))
	}
	if got := tables[0][0][0]; got != "outer inner" {
		t.Errorf("cell = %q, want %q", got, "outer inner")
	}
}

func TestRead_TextContent(t *testing.T) {
	doc := `<table><tr><td>Матанализ,<br>лекция<script>x()</script></td><td>  Иванов
	И.И. </td></tr></table>`

	got, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	want := [][]string{{"Матанализ, лекция", "Иванов И.И."}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %q, want %q", got, want)
	}
}

func TestRead_Windows1251(t *testing.T) {
	src := `<html><head><meta charset="windows-1251"></head><body><table><tr><td>Среда</td></tr></table></body></html>`
	data, err := charmap.Windows1251.NewEncoder().Bytes([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got[0][0] != "Среда" {
		t.Errorf("cell = %q, want Среда", got[0][0])
	}
}

func TestRead_NoTable(t *testing.T) {
	_, err := Read(strings.NewReader("<p>nothing here</p>"))
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("Read() error = %v, want ErrNoTable", err)
	}
}

func TestSpanValue(t *testing.T) {
	tests := map[string]int{"2": 2, " 3 ": 3, "0": 1, "-1": 1, "x": 1, "5000": maxSpan}
	for in, want := range tests {
		if got := spanValue(in); got != want {
			t.Errorf("spanValue(%q) = %d, want %d", in, got, want)
		}
	}
}
