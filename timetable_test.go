package timetable

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/timetable/internal/xlsxtest"
	"github.com/tsawler/timetable/query"
	"github.com/tsawler/timetable/schedule"
	"github.com/tsawler/timetable/source"
)

// row builds a 7-cell timetable row.
func row(day, tm, room, subject, teacher string) []string {
	return []string{day, "", tm, "", room, subject, teacher}
}

func marker(r string) []string {
	return row("", "", "", "", r)
}

var groupRows = [][]string{
	{"", "", "", "", "", "Название дисциплины", "Преподаватель"},
	marker("06.02.23 - 11.02.23"),
	row("Понедельник", "10:40", "А-101", "Физика", "Петров П.П."),
	row("", "09:00", "Б-2", "Физика, лабораторная", "Петров П.П."),
	row("Среда", "13:00", "В-3", "Химия", "Сидорова А.А., Петрова Е.Е."),
	marker("13.02.23 - 18.02.23"),
	row("Понедельник", "09:00", "А-101", "Физика (практика)", "Иванов И.И."),
	row("Понедельник", "09:00", "А-101", "Физика (практика)", "Иванов И.И."),
}

// writeTimetable stores rows as ИВТ-21.xlsx in a temp directory.
func writeTimetable(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ИВТ-21.xlsx")
	xlsxtest.Write(t, path, xlsxtest.Sheet{Name: "Лист1", Rows: rows})
	return path
}

func TestOpen_MissingInput(t *testing.T) {
	path := writeTimetable(t, groupRows)

	tests := []struct {
		name    string
		path    string
		keyword string
	}{
		{"no file", "", "физика"},
		{"blank file", "   ", "физика"},
		{"no keyword", path, ""},
		{"blank keyword", path, " \t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Open(tt.path).Search(query.Subject, tt.keyword)
			if !errors.Is(err, ErrMissingInput) {
				t.Errorf("Search() error = %v, want ErrMissingInput", err)
			}
		})
	}
}

func TestOpen_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.xlsx")
	_, _, err := Open(path).Search(query.Subject, "физика")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Search() error = %v, want ErrNotFound", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Path != path {
		t.Errorf("Search() error = %#v, want *NotFoundError for %s", err, path)
	}
	if errors.Is(err, source.ErrUnreadable) {
		t.Error("missing file reported as unreadable")
	}
}

func TestOpen_Unreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a workbook"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := Open(path).Search(query.Subject, "физика")
	if !errors.Is(err, source.ErrUnreadable) {
		t.Errorf("Search() error = %v, want ErrUnreadable", err)
	}
}

func TestSearch_Subject(t *testing.T) {
	path := writeTimetable(t, groupRows)

	result, warnings, err := Open(path).Search(query.Subject, "  ФИЗИКА ")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if result.Empty() {
		t.Fatal("Search() found nothing")
	}

	want := strings.Join([]string{
		"👥 Группа: ИВТ-21",
		"📚 Предмет: Физика",
		"📅 Даты занятий:",
		" 1. 06.02.2023 (09:00, Б-2, Петров П.П.)",
		" 2. 06.02.2023 (10:40, А-101, Петров П.П.)",
		" 3. 13.02.2023 (09:00, А-101, Иванов И.И.)",
		"",
		"🔢 Всего занятий     : 3",
		"🗓️  Задействовано недель: 2",
	}, "\n")
	if got := result.String(); got != want {
		t.Errorf("report =\n%s\nwant\n%s", got, want)
	}

	if len(warnings) != 1 || warnings[0].Code != DuplicateSessions {
		t.Errorf("warnings = %v, want one duplicate warning", warnings)
	}
}

func TestSearch_Teacher(t *testing.T) {
	path := writeTimetable(t, groupRows)

	result, _, err := Open(path).Search(query.Teacher, "петрова")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if result.Empty() || result.Report.Total != 1 {
		t.Fatalf("Search() = %v, want one session", result)
	}
	if result.Report.Label != "Сидорова А.А., Петрова Е.Е." {
		t.Errorf("Label = %q", result.Report.Label)
	}

	// "петров" must not match inside "петрова".
	result, _, err = Open(path).Search(query.Teacher, "петров")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if result.Report.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Report.Total)
	}
}

func TestSearch_NothingFound(t *testing.T) {
	path := writeTimetable(t, groupRows)

	result, _, err := Open(path).Search(query.Subject, "история")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if !result.Empty() || result.String() != "Ничего не найдено." {
		t.Errorf("result = %q, want nothing found", result.String())
	}
}

func TestSearch_InvalidMode(t *testing.T) {
	_, _, err := FromRows("g", groupRows).Search(query.Mode(42), "физика")
	if err == nil {
		t.Error("Search() with invalid mode succeeded")
	}
}

func TestSessions_Warnings(t *testing.T) {
	rows := [][]string{
		row("", "09:00", "А-1", "Физика", "Петров П.П."),
	}
	sessions, warnings, err := FromRows("g", rows).Sessions()
	if err != nil {
		t.Fatalf("Sessions() failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("got %d sessions, want 0", len(sessions))
	}

	codes := make(map[WarningCode]bool)
	for _, w := range warnings {
		codes[w.Code] = true
	}
	for _, c := range []WarningCode{NoWeekMarker, NoWeekday, NoSessions} {
		if !codes[c] {
			t.Errorf("missing warning %s in %v", c, warnings)
		}
	}
	if s := FormatWarnings(warnings); strings.Count(s, "; ") != len(warnings)-1 {
		t.Errorf("FormatWarnings() = %q", s)
	}
}

func TestStrict(t *testing.T) {
	rows := [][]string{
		marker("06.02.23 - 11.02.23"),
		row("Понедельник", "09:00", "А-1", "Физика", "Петров"),
		row("Вторник", "10:00", "А-2", "Химия", "31.02.23 - 05.03.23"),
	}

	sessions, warnings, err := FromRows("g", rows).Sessions()
	if err != nil || len(sessions) != 1 {
		t.Fatalf("lenient Sessions() = %d, %v", len(sessions), err)
	}
	if sessions[0].Teacher != "Петров" {
		t.Errorf("Teacher = %q, want Петров", sessions[0].Teacher)
	}
	if len(warnings) != 1 || warnings[0].Code != BadWeekMarker {
		t.Errorf("warnings = %v, want one %s", warnings, BadWeekMarker)
	}

	_, _, err = FromRows("g", rows).Strict().Sessions()
	var me *schedule.MarkerError
	if !errors.As(err, &me) || me.Row != 3 {
		t.Errorf("strict Sessions() error = %v, want MarkerError on row 3", err)
	}
	if !errors.Is(err, schedule.ErrInvalidWeekDate) {
		t.Errorf("strict Sessions() error = %v, want ErrInvalidWeekDate", err)
	}
}

func TestChainIsImmutable(t *testing.T) {
	base := FromRows("g", groupRows)
	strict := base.Strict()
	if base.options.strict {
		t.Error("Strict() modified the receiver")
	}
	if !strict.options.strict {
		t.Error("Strict() did not set strict on the copy")
	}

	shifted := base.Columns(schedule.Columns{Day: 0, Time: 1, Room: 2, Subject: 3, Teacher: 4})
	if base.options.columns != schedule.DefaultColumns() {
		t.Error("Columns() modified the receiver")
	}
	if shifted.options.columns.Teacher != 4 {
		t.Error("Columns() did not apply")
	}
}

func TestColumns(t *testing.T) {
	rows := [][]string{
		{"", "", "", "", "06.02.23 - 11.02.23"},
		{"Вторник", "11:00", "Г-4", "Физика", "Петров П.П."},
	}
	f := FromRows("g", rows).Columns(schedule.Columns{Day: 0, Time: 1, Room: 2, Subject: 3, Teacher: 4})

	result, _, err := f.Search(query.Subject, "физика")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if result.Empty() || result.Report.Entries[0].Room != "Г-4" {
		t.Errorf("result = %v", result)
	}
}

func TestSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ПМ-22.xlsx")
	xlsxtest.Write(t, path,
		xlsxtest.Sheet{Name: "Осень", Rows: [][]string{{"пусто"}}},
		xlsxtest.Sheet{Name: "Весна", Rows: groupRows},
	)

	result, _, err := Open(path).Search(query.Subject, "химия")
	if err != nil || !result.Empty() {
		t.Errorf("first sheet: result = %v, err = %v", result, err)
	}

	result, _, err = Open(path).Sheet("Весна").Search(query.Subject, "химия")
	if err != nil || result.Empty() {
		t.Errorf("named sheet: result = %v, err = %v", result, err)
	}
}

func TestSave(t *testing.T) {
	path := writeTimetable(t, groupRows)
	f := Open(path)

	result, _, err := f.Search(query.Subject, "химия")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	saved, err := f.Save(result)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	want := filepath.Join(filepath.Dir(path), "ИВТ-21_результат.txt")
	if saved != want {
		t.Errorf("Save() path = %q, want %q", saved, want)
	}
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != result.String() {
		t.Errorf("saved %q, want %q", data, result.String())
	}

	custom, err := f.ReportSuffix(".txt").Save(result)
	if err != nil || filepath.Base(custom) != "ИВТ-21.txt" {
		t.Errorf("Save() with suffix = %q, %v", custom, err)
	}
}

func TestSave_FromRows(t *testing.T) {
	if _, err := FromRows("g", groupRows).Save(query.Result{}); !errors.Is(err, ErrMissingInput) {
		t.Errorf("Save() error = %v, want ErrMissingInput", err)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, _, err := FromRows("g", groupRows).Logger(logger).Search(query.Subject, "физика")
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "search finished") {
		t.Errorf("log output missing search message:\n%s", buf.String())
	}
}

func TestWithContext_Canceled(t *testing.T) {
	path := writeTimetable(t, groupRows)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Open(path).WithContext(ctx).Sessions()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sessions() error = %v, want context.Canceled", err)
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must() did not panic on error")
		}
	}()
	Must("", errors.New("boom"))
}

func TestMustResult(t *testing.T) {
	result := MustResult(FromRows("g", groupRows).Search(query.Subject, "химия"))
	if result.Empty() {
		t.Error("MustResult() returned empty result")
	}
}
