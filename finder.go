package timetable

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/tsawler/timetable/query"
	"github.com/tsawler/timetable/schedule"
	"github.com/tsawler/timetable/source"
)

// Finder provides a fluent interface for searching a timetable.
// Each configuration method returns a new Finder instance, making it
// safe for concurrent use and allowing method chaining.
//
// Every terminal operation reads the source again; nothing is cached
// between calls.
type Finder struct {
	// Source
	path  string
	group string
	rows  [][]string // set by FromRows

	loaded bool // rows are in memory and path is not read

	// Configuration
	options SearchOptions
}

// clone creates a copy of the Finder. This ensures immutability - each
// chain method returns a new instance.
func (f *Finder) clone() *Finder {
	newF := *f
	return &newF
}

// ============================================================================
// Configuration Methods (return new Finder instance)
// ============================================================================

// Sheet selects the worksheet of an XLSX workbook by name. By default the
// first worksheet is read.
//
// Example:
//
//	result, _, err := timetable.Open("ИВТ-21.xlsx").Sheet("Весна").Search(query.Subject, "химия")
func (f *Finder) Sheet(name string) *Finder {
	newF := f.clone()
	newF.options.sheet = name
	return newF
}

// Columns overrides the column layout of the timetable.
func (f *Finder) Columns(c schedule.Columns) *Finder {
	newF := f.clone()
	newF.options.columns = c
	return newF
}

// HeaderCaption sets the subject column caption of repeated header rows.
func (f *Finder) HeaderCaption(caption string) *Finder {
	newF := f.clone()
	newF.options.headerCaption = caption
	return newF
}

// Strict makes terminal operations fail on week ranges that look like
// markers but cannot be parsed, instead of reading them as teacher text.
//
// Example:
//
//	_, _, err := timetable.Open("ИВТ-21.xlsx").Strict().Sessions()
//	var me *schedule.MarkerError
//	if errors.As(err, &me) {
//	    fmt.Println("bad week range in row", me.Row)
//	}
func (f *Finder) Strict() *Finder {
	newF := f.clone()
	newF.options.strict = true
	return newF
}

// MaxFileSize limits the size of the file that will be read.
func (f *Finder) MaxFileSize(n int64) *Finder {
	newF := f.clone()
	newF.options.maxFileSize = n
	return newF
}

// ReportSuffix sets the suffix Save appends to the source name.
func (f *Finder) ReportSuffix(suffix string) *Finder {
	newF := f.clone()
	newF.options.reportSuffix = suffix
	return newF
}

// Logger sets the logger for debug messages.
func (f *Finder) Logger(l *slog.Logger) *Finder {
	newF := f.clone()
	if l == nil {
		l = slog.Default()
	}
	newF.options.logger = l
	return newF
}

// WithContext sets the context that bounds loading.
func (f *Finder) WithContext(ctx context.Context) *Finder {
	newF := f.clone()
	newF.options.ctx = ctx
	return newF
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Group returns the study group name used in reports: the file name
// without extension, or the name given to FromRows.
func (f *Finder) Group() string {
	if f.loaded {
		return f.group
	}
	return source.GroupName(f.path)
}

// Sessions reads the timetable and returns its deduplicated sessions in
// row order.
func (f *Finder) Sessions() ([]schedule.Session, []Warning, error) {
	scan, err := f.scan()
	if err != nil {
		return nil, nil, err
	}
	return scan.Sessions, scanWarnings(scan), nil
}

// Search reads the timetable and returns the sessions matching keyword.
// The keyword is trimmed and case-folded. A search that matches nothing
// returns an empty result, not an error.
//
// Example:
//
//	result, _, err := timetable.Open("ИВТ-21.xlsx").Search(query.Teacher, "Иванов")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result) // report, or "Ничего не найдено."
func (f *Finder) Search(mode query.Mode, keyword string) (query.Result, []Warning, error) {
	keyword = schedule.Fold(strings.TrimSpace(keyword))
	if keyword == "" {
		return query.Result{}, nil, ErrMissingInput
	}
	if mode != query.Subject && mode != query.Teacher {
		return query.Result{}, nil, fmt.Errorf("invalid search mode %d", mode)
	}

	sessions, warnings, err := f.Sessions()
	if err != nil {
		return query.Result{}, nil, err
	}

	result := query.Run(sessions, mode, keyword, f.Group())
	f.options.logger.Debug("search finished",
		"group", f.Group(),
		"mode", mode,
		"keyword", keyword,
		"found", !result.Empty())
	return result, warnings, nil
}

// Save writes the rendered result next to the source file and returns the
// path written. The path is the source path without extension plus the
// report suffix.
func (f *Finder) Save(result query.Result) (string, error) {
	if f.loaded || strings.TrimSpace(f.path) == "" {
		return "", fmt.Errorf("save report: %w", ErrMissingInput)
	}
	path := source.ReportPath(f.path, f.options.reportSuffix)
	if err := source.WriteReport(path, result); err != nil {
		return "", err
	}
	f.options.logger.Debug("report saved", "path", path)
	return path, nil
}

func (f *Finder) scan() (*schedule.Scan, error) {
	rows, err := f.load()
	if err != nil {
		return nil, err
	}
	scan, err := schedule.New(f.options.extractorOptions()).Scan(rows)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", f.Group(), err)
	}
	return scan, nil
}

func (f *Finder) load() ([][]string, error) {
	if f.loaded {
		return f.rows, nil
	}
	if strings.TrimSpace(f.path) == "" {
		return nil, ErrMissingInput
	}
	if _, err := os.Stat(f.path); errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Path: f.path}
	}

	tbl, err := source.Load(f.options.ctx, f.path, f.options.sourceConfig())
	if err != nil {
		return nil, err
	}
	return tbl.Rows, nil
}
