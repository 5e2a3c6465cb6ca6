// Package main is the entry point for the tabular command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/tabular/internal/config"
	"github.com/dshills/tabular/internal/editor"
	"github.com/dshills/tabular/internal/watch"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.Verbose {
		cfg.Logging.Verbose = true
	}

	logger := log.New(os.Stderr, cfg.Logging.Prefix, 0)
	trace := log.New(io.Discard, "", 0)
	if cfg.Logging.Verbose {
		trace = logger
	}

	if opts.ListCommands {
		for _, name := range editor.DefaultRegistry().Names() {
			fmt.Println(name)
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := &pipeline{opts: opts, cfg: cfg, logger: trace, stdout: os.Stdout}
	if err := p.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !opts.Watch {
			return 1
		}
	}
	if !opts.Watch {
		return 0
	}

	if err := watchAndRerun(ctx, p, logger); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// watchAndRerun re-runs the pipeline whenever one of its inputs changes.
func watchAndRerun(ctx context.Context, p *pipeline, logger *log.Logger) error {
	w, err := watch.New(p.cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	for _, path := range p.inputs() {
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
	logger.Printf("watching %s", strings.Join(w.Files(), ", "))

	go func() {
		for err := range w.Errors() {
			logger.Printf("watch: %v", err)
		}
	}()

	return w.Run(ctx, func(ev watch.Event) {
		logger.Printf("changed: %s", strings.Join(ev.Paths, ", "))
		if err := p.run(ctx); err != nil {
			logger.Printf("run failed: %v", err)
		}
	})
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.DocPath, "doc", "", "Input document (JSON or YAML); a new table when empty")
	flag.IntVar(&opts.Cursor, "cursor", -1, "Cursor position before running commands")
	flag.StringVar(&opts.Exec, "exec", "", "Comma-separated commands to run")
	flag.StringVar(&opts.StepsPath, "steps", "", "JSON file of serialized steps to apply")
	flag.StringVar(&opts.ScriptPath, "script", "", "Lua script to run")
	flag.StringVar(&opts.OutPath, "out", "", "Output file; stdout when empty")
	flag.BoolVar(&opts.Pretty, "pretty", false, "Indent JSON output")
	flag.BoolVar(&opts.Watch, "watch", false, "Re-run when the document, steps or script change")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Trace commands to stderr")
	flag.BoolVar(&opts.ListCommands, "commands", false, "List available commands")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tabular - table editing operations on structured documents\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tabular [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tabular -pretty                                  Print a new empty table\n")
		fmt.Fprintf(os.Stderr, "  tabular -doc t.json -cursor 4 -exec add_column_after\n")
		fmt.Fprintf(os.Stderr, "  tabular -doc t.yaml -script fill.lua -out t.json\n")
		fmt.Fprintf(os.Stderr, "  tabular -doc t.json -script fill.lua -watch\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("tabular %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if err := opts.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return opts
}
