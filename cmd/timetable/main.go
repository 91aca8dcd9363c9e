// Command timetable searches a weekly timetable for a subject or a teacher.
//
// Usage:
//
//	timetable -file ИВТ-21.xlsx -q химия                     # sessions of a subject
//	timetable -file ИВТ-21.xlsx -mode teacher -q Иванов      # sessions of a teacher
//	timetable -config timetable.yaml -file ИВТ-21.csv -q химия
//	TIMETABLE_STRICT=true timetable -file ИВТ-21.xlsx -q химия
//
// Settings come from defaults, then the -config file, then TIMETABLE_*
// environment variables (and -env-file), then command-line flags.
//
// The report is printed to stdout and saved next to the timetable as
// <name>_результат.txt unless -no-save is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsawler/timetable"
	"github.com/tsawler/timetable/config"
	"github.com/tsawler/timetable/query"
	"github.com/tsawler/timetable/source"
)

const disclaimer = "Автор программы за результат ответственности не несет,\nперепроверяйте даты самостоятельно."

// Exit codes.
const (
	exitOK    = 0
	exitLoad  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("timetable", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "timetable file (.xlsx, .csv, .html)")
	modeName := fs.String("mode", "subject", "search mode: subject or teacher")
	keyword := fs.String("q", "", "subject name or teacher surname")
	sheet := fs.String("sheet", "", "worksheet name (default: first sheet)")
	configPath := fs.String("config", "", "path to timetable.yaml config file")
	envFile := fs.String("env-file", "", "optional file with TIMETABLE_* variables")
	strict := fs.Bool("strict", false, "fail on malformed week ranges")
	noSave := fs.Bool("no-save", false, "do not write the report file")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, "timetable:", err)
			return exitUsage
		}
		cfg = loaded
	}
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	if err := cfg.ApplyEnv(envFiles...); err != nil {
		fmt.Fprintln(stderr, "timetable:", err)
		return exitUsage
	}
	// Flags given on the command line override the file and the environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sheet":
			cfg.Sheet = *sheet
		case "strict":
			cfg.Strict = *strict
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "timetable:", err)
		return exitUsage
	}
	logger := cfg.NewLogger(stderr)

	mode, err := query.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintln(stderr, "timetable:", err)
		fs.Usage()
		return exitUsage
	}

	fmt.Fprintln(stderr, disclaimer)

	f := timetable.Open(*file).
		Sheet(cfg.Sheet).
		Columns(cfg.Columns).
		HeaderCaption(cfg.HeaderCaption).
		MaxFileSize(cfg.MaxFileBytes()).
		ReportSuffix(cfg.ReportSuffix).
		Logger(logger).
		WithContext(ctx)
	if cfg.Strict {
		f = f.Strict()
	}

	result, warnings, err := f.Search(mode, *keyword)
	if err != nil {
		fmt.Fprintln(stderr, "Ошибка:", describe(err))
		if errors.Is(err, timetable.ErrMissingInput) {
			return exitUsage
		}
		return exitLoad
	}
	for _, w := range warnings {
		logger.Warn(w.Message, "code", w.Code)
	}

	result.WriteTo(stdout)
	fmt.Fprintln(stdout)

	if result.Empty() || *noSave {
		return exitOK
	}
	path, err := f.Save(result)
	if err != nil {
		logger.Error("saving report failed", "error", err)
		return exitLoad
	}
	fmt.Fprintln(stderr, "Результат сохранен в:", path)
	return exitOK
}

// describe renders an error as the message shown to the user.
func describe(err error) string {
	var (
		le *source.LoadError
		nf *timetable.NotFoundError
	)
	switch {
	case errors.Is(err, timetable.ErrMissingInput):
		return "Выберите файл и введите предмет или преподавателя."
	case errors.As(err, &nf):
		return fmt.Sprintf("Файл %s не найден.", nf.Path)
	case errors.As(err, &le):
		return fmt.Sprintf("Не удалось загрузить файл:\n%v", le.Err)
	default:
		return err.Error()
	}
}
