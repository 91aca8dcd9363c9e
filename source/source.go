// Package source loads a timetable file into a plain grid of cell strings.
//
// Supported containers are XLSX workbooks, CSV exports and HTML pages (see
// package format). The container is detected from the file content. Content
// that is merely text defers to a known file extension. Every failure to
// turn a file into rows is reported as a *LoadError, which matches
// ErrUnreadable under errors.Is.
//
//	tbl, err := source.Load(ctx, "ИВТ-21.xlsx", source.Config{})
//	if errors.Is(err, source.ErrUnreadable) {
//	    // report load failure
//	}
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tsawler/timetable/csvtable"
	"github.com/tsawler/timetable/format"
	"github.com/tsawler/timetable/htmltable"
	"github.com/tsawler/timetable/xlsx"
)

var (
	// ErrUnreadable matches every error returned by Load.
	ErrUnreadable = errors.New("timetable source unreadable")

	// ErrUnsupportedFormat is the cause when the container is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrTooLarge is the cause when the file exceeds Config.MaxFileSize.
	ErrTooLarge = errors.New("file too large")
)

// LoadError reports why a source could not be turned into rows.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes every LoadError match ErrUnreadable.
func (e *LoadError) Is(target error) bool { return target == ErrUnreadable }

// Config configures loading.
type Config struct {
	// Sheet selects a worksheet by name in XLSX files (default: the first one).
	Sheet string `json:"sheet" yaml:"sheet"`

	// MinWidth pads every row to at least this many cells (default: 0).
	MinWidth int `json:"min_width" yaml:"min_width"`

	// MaxFileSize is the largest file accepted (default: 50 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// Logger for debug messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Table is the grid read from a source.
type Table struct {
	Path   string
	Format format.Format
	Sheet  string // worksheet name, XLSX only
	Rows   [][]string
}

// Load reads the file at path.
func Load(ctx context.Context, path string, cfg Config) (*Table, error) {
	cfg.defaults()

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return load(ctx, f, info.Size(), path, cfg)
}

// LoadReader reads a source of the given size from r. The name is used for
// format detection by extension and in error messages.
func LoadReader(ctx context.Context, r io.ReaderAt, size int64, name string, cfg Config) (*Table, error) {
	cfg.defaults()
	return load(ctx, r, size, name, cfg)
}

// LoadBytes reads a source held in memory.
func LoadBytes(ctx context.Context, data []byte, name string, cfg Config) (*Table, error) {
	return LoadReader(ctx, bytes.NewReader(data), int64(len(data)), name, cfg)
}

func load(ctx context.Context, r io.ReaderAt, size int64, name string, cfg Config) (*Table, error) {
	fail := func(err error) (*Table, error) {
		return nil, &LoadError{Path: name, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if size > cfg.MaxFileSize {
		return fail(fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, size, cfg.MaxFileSize))
	}

	fmtFound, err := format.DetectFromReader(r, size)
	if err != nil {
		return fail(fmt.Errorf("detecting format: %w", err))
	}
	// Plain text is only a guess; a known extension wins over it.
	if byName := format.Detect(name); fmtFound == format.Unknown || (fmtFound == format.CSV && byName != format.Unknown) {
		fmtFound = byName
	}
	cfg.Logger.Debug("loading timetable", "source", name, "format", fmtFound, "size", size)

	tbl := &Table{Path: name, Format: fmtFound}
	switch fmtFound {
	case format.XLSX:
		tbl.Rows, tbl.Sheet, err = readXLSX(r, size, cfg.Sheet)
	case format.CSV:
		tbl.Rows, err = csvtable.Read(io.NewSectionReader(r, 0, size))
	case format.HTML:
		tbl.Rows, err = htmltable.Read(io.NewSectionReader(r, 0, size))
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	pad(tbl.Rows, cfg.MinWidth)
	cfg.Logger.Debug("timetable loaded", "source", name, "sheet", tbl.Sheet, "rows", len(tbl.Rows))
	return tbl, nil
}

func readXLSX(r io.ReaderAt, size int64, sheetName string) ([][]string, string, error) {
	xr, err := xlsx.OpenReader(r, size)
	if err != nil {
		return nil, "", err
	}
	defer xr.Close()

	var sh *xlsx.Sheet
	if sheetName != "" {
		sh, err = xr.SheetByName(sheetName)
	} else {
		sh, err = xr.Sheet(0)
	}
	if err != nil {
		return nil, "", err
	}
	return sh.Strings(0), sh.Name, nil
}

func pad(rows [][]string, width int) {
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
}
