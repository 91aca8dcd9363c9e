package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/timetable/internal/xlsxtest"
)

func writeTimetable(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ИВТ-21.xlsx")
	xlsxtest.Write(t, path, xlsxtest.Sheet{Name: "Лист1", Rows: [][]string{
		{"", "", "", "", "", "", "06.02.23 - 11.02.23"},
		{"Понедельник", "1", "09:00", "", "А-101", "Физика", "Петров П.П."},
	}})
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Subject(t *testing.T) {
	path := writeTimetable(t)

	code, out, errOut := runCLI(t, "-file", path, "-q", "физика")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, " 1. 06.02.2023 (09:00, А-101, Петров П.П.)") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.HasPrefix(errOut, disclaimer) {
		t.Errorf("stderr does not start with the disclaimer: %q", errOut)
	}

	saved := filepath.Join(filepath.Dir(path), "ИВТ-21_результат.txt")
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("report not saved: %v", err)
	}
	if strings.TrimSpace(out) != string(data) {
		t.Errorf("saved %q, printed %q", data, out)
	}
}

func TestRun_NoSave(t *testing.T) {
	path := writeTimetable(t)

	code, _, _ := runCLI(t, "-file", path, "-mode", "teacher", "-q", "петров", "-no-save")
	if code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "ИВТ-21_результат.txt")); !os.IsNotExist(err) {
		t.Error("report written despite -no-save")
	}
}

func TestRun_NothingFound(t *testing.T) {
	path := writeTimetable(t)

	code, out, _ := runCLI(t, "-file", path, "-q", "история")
	if code != exitOK || strings.TrimSpace(out) != "Ничего не найдено." {
		t.Errorf("code = %d, stdout = %q", code, out)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "ИВТ-21_результат.txt")); !os.IsNotExist(err) {
		t.Error("report written for an empty result")
	}
}

func TestRun_Errors(t *testing.T) {
	path := writeTimetable(t)
	broken := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(broken, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	badConfig := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badConfig, []byte("log_level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"no keyword", []string{"-file", path}, exitUsage, "Выберите файл"},
		{"no file", []string{"-q", "физика"}, exitUsage, "Выберите файл"},
		{"bad mode", []string{"-file", path, "-mode", "room", "-q", "x"}, exitUsage, "unknown"},
		{"unknown flag", []string{"-bogus"}, exitUsage, "bogus"},
		{"bad config", []string{"-config", badConfig, "-file", path, "-q", "x"}, exitUsage, "log_level"},
		{"missing file", []string{"-file", filepath.Join(t.TempDir(), "x.xlsx"), "-q", "физика"}, exitLoad, "не найден."},
		{"unreadable", []string{"-file", broken, "-q", "физика"}, exitLoad, "Не удалось загрузить файл"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}
			if !strings.Contains(errOut, tt.msg) {
				t.Errorf("stderr = %q, want it to contain %q", errOut, tt.msg)
			}
		})
	}
}

func TestRun_ConfigColumns(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "ПМ-22.csv")
	cfgPath := filepath.Join(dir, "timetable.yaml")
	cfg := "columns:\n  day: 0\n  subject: 1\n  room: 2\n  time: 3\n  teacher: 4\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	// The week range sits in the teacher column, which is column 4 here.
	csv := ";;;;06.02.23 - 11.02.23\nСреда;Химия;Б-2;10:40;Сидоров П.П.\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, "-config", cfgPath, "-file", csvPath, "-q", "химия", "-no-save")
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, " 1. 08.02.2023 (10:40, Б-2, Сидоров П.П.)") {
		t.Errorf("stdout = %q", out)
	}
}

func TestRun_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ИВТ-21.xlsx")
	xlsxtest.Write(t, path, xlsxtest.Sheet{Name: "Лист1", Rows: [][]string{
		{"", "", "", "", "", "", "06.02.23 - 11.02.23"},
		{"Понедельник", "1", "09:00", "", "А-101", "Физика", "Петров П.П."},
		{"Вторник", "1", "09:00", "", "А-101", "Химия", "31.02.23 - 05.03.23"},
	}})
	t.Setenv("TIMETABLE_STRICT", "true")

	code, _, errOut := runCLI(t, "-file", path, "-q", "физика", "-no-save")
	if code != exitLoad || !strings.Contains(errOut, "row 3") {
		t.Errorf("strict from environment: code = %d, stderr = %q", code, errOut)
	}

	code, out, errOut := runCLI(t, "-file", path, "-q", "физика", "-no-save", "-strict=false")
	if code != exitOK {
		t.Fatalf("flag over environment: code = %d, stderr = %q", code, errOut)
	}
	if !strings.Contains(out, " 1. 06.02.2023 (09:00, А-101, Петров П.П.)") {
		t.Errorf("stdout = %q", out)
	}
}

func TestRun_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "timetable.env")
	if err := os.WriteFile(envPath, []byte("TIMETABLE_SHEET=Нет такого\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// The .env file only fills variables that are not set; the cleanup
	// registered by Setenv restores the original value.
	t.Setenv("TIMETABLE_SHEET", "")
	os.Unsetenv("TIMETABLE_SHEET")

	code, _, errOut := runCLI(t, "-env-file", envPath, "-file", writeTimetable(t), "-q", "физика", "-no-save")
	if code != exitLoad || !strings.Contains(errOut, "Не удалось загрузить файл") {
		t.Errorf("code = %d, stderr = %q", code, errOut)
	}
}
