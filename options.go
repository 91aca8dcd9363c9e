package timetable

import (
	"context"
	"log/slog"

	"github.com/tsawler/timetable/schedule"
	"github.com/tsawler/timetable/source"
)

// SearchOptions holds configuration for loading and extraction.
type SearchOptions struct {
	// Source selection
	sheet       string
	maxFileSize int64

	// Extraction
	columns       schedule.Columns
	headerCaption string
	strict        bool

	// Output
	reportSuffix string

	ctx    context.Context
	logger *slog.Logger
}

// defaultOptions returns the default search options.
func defaultOptions() SearchOptions {
	return SearchOptions{
		sheet:         "", // first sheet
		columns:       schedule.DefaultColumns(),
		headerCaption: schedule.DefaultHeaderCaption,
		reportSuffix:  source.DefaultReportSuffix,
		ctx:           context.Background(),
		logger:        slog.Default(),
	}
}

func (o SearchOptions) sourceConfig() source.Config {
	return source.Config{
		Sheet:       o.sheet,
		MinWidth:    o.columns.Width(),
		MaxFileSize: o.maxFileSize,
		Logger:      o.logger,
	}
}

func (o SearchOptions) extractorOptions() schedule.Options {
	return schedule.Options{
		Columns:       o.columns,
		HeaderCaption: o.headerCaption,
		Strict:        o.strict,
		Logger:        o.logger,
	}
}
