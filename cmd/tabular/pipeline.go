package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/tabular/internal/config"
	"github.com/dshills/tabular/internal/editor"
	"github.com/dshills/tabular/internal/history"
	"github.com/dshills/tabular/internal/model"
	"github.com/dshills/tabular/internal/script"
)

// options holds command line settings.
type options struct {
	ConfigPath   string
	DocPath      string
	Cursor       int
	Exec         string
	StepsPath    string
	ScriptPath   string
	OutPath      string
	Pretty       bool
	Watch        bool
	Verbose      bool
	ListCommands bool
}

var (
	errWatchWithoutInput = errors.New("-watch needs -doc, -steps or -script")
	errOutputIsInput     = errors.New("-out names a watched input")
)

// validate checks flag combinations. In watch mode the output must not be
// one of the watched inputs, or every write would trigger another run.
func (o options) validate() error {
	if !o.Watch {
		return nil
	}
	inputs := (&pipeline{opts: o}).inputs()
	if len(inputs) == 0 {
		return errWatchWithoutInput
	}
	if o.OutPath == "" {
		return nil
	}
	for _, in := range inputs {
		if samePath(o.OutPath, in) {
			return fmt.Errorf("%w: %s", errOutputIsInput, in)
		}
	}
	return nil
}

// samePath reports whether a and b name the same file.
func samePath(a, b string) bool {
	if sa, err := os.Stat(a); err == nil {
		if sb, err := os.Stat(b); err == nil {
			return os.SameFile(sa, sb)
		}
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// pipeline loads a document, edits it and writes the result.
type pipeline struct {
	opts   options
	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
}

// inputs lists the files the pipeline reads.
func (p *pipeline) inputs() []string {
	var paths []string
	for _, path := range []string{p.opts.DocPath, p.opts.StepsPath, p.opts.ScriptPath} {
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

func (p *pipeline) run(ctx context.Context) error {
	schema, err := editor.DefaultSchema(p.cfg.Table.CellContent)
	if err != nil {
		return fmt.Errorf("building schema: %w", err)
	}

	doc, err := p.loadDocument(schema)
	if err != nil {
		return err
	}

	sess := editor.NewSession(doc,
		editor.WithHistory(history.NewHistory(p.cfg.History.MaxEntries)),
		editor.WithLogger(p.logger),
	)
	if p.opts.Cursor >= 0 {
		if err := sess.SetCursor(p.opts.Cursor); err != nil {
			return err
		}
	}

	if p.opts.StepsPath != "" {
		data, err := os.ReadFile(p.opts.StepsPath)
		if err != nil {
			return fmt.Errorf("reading steps: %w", err)
		}
		if err := sess.ApplySteps(data); err != nil {
			return fmt.Errorf("applying steps: %w", err)
		}
	}

	for _, name := range splitCommands(p.opts.Exec) {
		ok, err := sess.Exec(name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("command %s does not apply at %s", name, sess.Selection())
		}
	}

	if p.opts.ScriptPath != "" {
		rt := script.NewRuntime(sess,
			script.WithAllow(p.cfg.AllowsCommand),
			script.WithTimeout(p.cfg.Script.Timeout),
			script.WithGroup("script"),
			script.WithLogger(p.logger),
		)
		err := rt.RunFile(ctx, p.opts.ScriptPath)
		rt.Close()
		if err != nil {
			return fmt.Errorf("script %s: %w", p.opts.ScriptPath, err)
		}
	}

	return p.write(sess.Doc())
}

func (p *pipeline) loadDocument(schema *model.Schema) (*model.Node, error) {
	if p.opts.DocPath == "" {
		return editor.NewTableDocument(schema, p.cfg.Table.Rows, p.cfg.Table.Columns)
	}
	return editor.LoadDocument(schema, p.opts.DocPath)
}

func (p *pipeline) write(doc *model.Node) error {
	if err := doc.Check(); err != nil {
		return fmt.Errorf("result document invalid: %w", err)
	}
	data, err := editor.Encode(doc, p.opts.OutPath, p.opts.Pretty)
	if err != nil {
		return err
	}
	if p.opts.OutPath == "" {
		_, err = p.stdout.Write(data)
		return err
	}
	return os.WriteFile(p.opts.OutPath, data, 0o644)
}

func splitCommands(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
