package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultReportSuffix is appended to the source name to form the report path.
const DefaultReportSuffix = "_результат.txt"

// GroupName returns the study group a timetable belongs to: the file's base
// name without its extension.
func GroupName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReportPath returns the sidecar path for a source file: the source path
// without its extension plus suffix (default: DefaultReportSuffix).
func ReportPath(path, suffix string) string {
	if suffix == "" {
		suffix = DefaultReportSuffix
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

// WriteReport writes a rendered report to path as UTF-8 text,
// replacing any previous file.
func WriteReport(path string, report io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if _, err := report.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	return nil
}
