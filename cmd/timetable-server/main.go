// Command timetable-server serves timetable searches over HTTP.
//
// Usage:
//
//	timetable-server                               # listen on :8080 with defaults
//	timetable-server -config timetable.yaml        # settings from YAML
//	timetable-server -listen :9000 -log-level debug
//	TIMETABLE_LISTEN=:9000 timetable-server        # settings from the environment or .env
//
//	curl -F file=@ИВТ-21.xlsx -F mode=subject -F q=химия localhost:8080/search
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tsawler/timetable/config"
	"github.com/tsawler/timetable/server"
)

func main() {
	configPath := flag.String("config", "", "path to timetable.yaml config file")
	envFile := flag.String("env-file", ".env", "optional file with TIMETABLE_* variables")
	listen := flag.String("listen", "", "listen address (default from config, :8080)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "timetable-server:", err)
			os.Exit(2)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, "timetable-server:", err)
		os.Exit(2)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "timetable-server:", err)
		os.Exit(2)
	}

	logger := cfg.NewLogger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Columns:       cfg.Columns,
		HeaderCaption: cfg.HeaderCaption,
		Sheet:         cfg.Sheet,
		Strict:        cfg.Strict,
		MaxFileSize:   cfg.MaxFileBytes(),
		Logger:        logger,
	})
	if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
		logger.Error("timetable-server: fatal", "error", err)
		os.Exit(1)
	}
}
