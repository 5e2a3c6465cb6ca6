package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tidwall/match"
)

// Config holds all tabular settings.
type Config struct {
	History HistoryConfig
	Table   TableConfig
	Script  ScriptConfig
	Logging LoggingConfig
	Watch   WatchConfig
}

// HistoryConfig controls the undo history.
type HistoryConfig struct {
	// MaxEntries bounds the undo stack. Oldest entries are evicted first.
	MaxEntries int
}

// TableConfig holds defaults for newly created tables.
type TableConfig struct {
	Rows    int
	Columns int
	// CellContent is the content expression of table_cell nodes.
	CellContent string
}

// ScriptConfig controls Lua script execution.
type ScriptConfig struct {
	// Timeout aborts a script that runs longer. Zero disables the limit.
	Timeout time.Duration
	// AllowedCommands lists glob patterns of editor commands scripts may
	// call. An empty list allows every command.
	AllowedCommands []string
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Prefix  string
	Verbose bool
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Debounce coalesces bursts of file events.
	Debounce time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{MaxEntries: 100},
		Table: TableConfig{
			Rows:        2,
			Columns:     2,
			CellContent: "paragraph+",
		},
		Script:  ScriptConfig{Timeout: 5 * time.Second},
		Logging: LoggingConfig{Prefix: "tabular: "},
		Watch:   WatchConfig{Debounce: 100 * time.Millisecond},
	}
}

// defaultMap is Default in layer form.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"history": map[string]any{"maxEntries": d.History.MaxEntries},
		"table": map[string]any{
			"rows":        d.Table.Rows,
			"columns":     d.Table.Columns,
			"cellContent": d.Table.CellContent,
		},
		"script": map[string]any{
			"timeout":         d.Script.Timeout,
			"allowedCommands": []any{},
		},
		"logging": map[string]any{
			"prefix":  d.Logging.Prefix,
			"verbose": d.Logging.Verbose,
		},
		"watch": map[string]any{"debounce": d.Watch.Debounce},
	}
}

// Load builds a Config from defaults, the file at path and TABULAR_*
// environment variables. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	merged := defaultMap()
	if path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, file)
	}
	merged = DeepMerge(merged, NewEnvLoader(EnvPrefix).Load())

	cfg, err := FromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromMap decodes a merged configuration map. Missing settings keep
// their defaults.
func FromMap(m map[string]any) (*Config, error) {
	cfg := Default()
	d := decoder{data: m}

	d.getInt("history.maxEntries", &cfg.History.MaxEntries)
	d.getInt("table.rows", &cfg.Table.Rows)
	d.getInt("table.columns", &cfg.Table.Columns)
	d.getString("table.cellContent", &cfg.Table.CellContent)
	d.getDuration("script.timeout", &cfg.Script.Timeout)
	d.getStrings("script.allowedCommands", &cfg.Script.AllowedCommands)
	d.getString("logging.prefix", &cfg.Logging.Prefix)
	d.getBool("logging.verbose", &cfg.Logging.Verbose)
	d.getDuration("watch.debounce", &cfg.Watch.Debounce)

	if len(d.errs) > 0 {
		return nil, errors.Join(d.errs...)
	}
	return cfg, nil
}

// Validate checks that every setting is within range.
func (c *Config) Validate() error {
	var errs []error
	if c.History.MaxEntries < 0 {
		errs = append(errs, &ValidationError{Path: "history.maxEntries", Value: c.History.MaxEntries, Message: "must not be negative"})
	}
	if c.Table.Rows < 1 {
		errs = append(errs, &ValidationError{Path: "table.rows", Value: c.Table.Rows, Message: "must be at least 1"})
	}
	if c.Table.Columns < 1 {
		errs = append(errs, &ValidationError{Path: "table.columns", Value: c.Table.Columns, Message: "must be at least 1"})
	}
	if strings.TrimSpace(c.Table.CellContent) == "" {
		errs = append(errs, &ValidationError{Path: "table.cellContent", Value: c.Table.CellContent, Message: "must not be empty"})
	}
	if c.Script.Timeout < 0 {
		errs = append(errs, &ValidationError{Path: "script.timeout", Value: c.Script.Timeout, Message: "must not be negative"})
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, &ValidationError{Path: "watch.debounce", Value: c.Watch.Debounce, Message: "must not be negative"})
	}
	return errors.Join(errs...)
}

// AllowsCommand reports whether scripts may run the named command.
func (c *Config) AllowsCommand(name string) bool {
	if len(c.Script.AllowedCommands) == 0 {
		return true
	}
	for _, pattern := range c.Script.AllowedCommands {
		if match.Match(name, pattern) {
			return true
		}
	}
	return false
}

// decoder reads typed values out of a nested map, collecting errors.
type decoder struct {
	data map[string]any
	errs []error
}

func (d *decoder) mismatch(path, want string, v any) {
	d.errs = append(d.errs, fmt.Errorf("%w: %s: expected %s, got %T", ErrTypeMismatch, path, want, v))
}

func (d *decoder) getInt(path string, dst *int) {
	v, ok := getByPath(d.data, path)
	if !ok {
		return
	}
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case uint64:
		*dst = int(n)
	case float64:
		if n != math.Trunc(n) {
			d.mismatch(path, "integer", v)
			return
		}
		*dst = int(n)
	default:
		d.mismatch(path, "integer", v)
	}
}

func (d *decoder) getString(path string, dst *string) {
	v, ok := getByPath(d.data, path)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		d.mismatch(path, "string", v)
		return
	}
	*dst = s
}

func (d *decoder) getBool(path string, dst *bool) {
	v, ok := getByPath(d.data, path)
	if !ok {
		return
	}
	b, ok := v.(bool)
	if !ok {
		d.mismatch(path, "bool", v)
		return
	}
	*dst = b
}

func (d *decoder) getDuration(path string, dst *time.Duration) {
	v, ok := getByPath(d.data, path)
	if !ok {
		return
	}
	switch t := v.(type) {
	case time.Duration:
		*dst = t
	case string:
		dur, err := time.ParseDuration(t)
		if err != nil {
			d.mismatch(path, "duration", v)
			return
		}
		*dst = dur
	case int:
		*dst = time.Duration(t) * time.Millisecond
	case int64:
		*dst = time.Duration(t) * time.Millisecond
	default:
		d.mismatch(path, "duration", v)
	}
}

func (d *decoder) getStrings(path string, dst *[]string) {
	v, ok := getByPath(d.data, path)
	if !ok {
		return
	}
	switch t := v.(type) {
	case []string:
		*dst = append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				d.mismatch(path, "string list", v)
				return
			}
			out = append(out, s)
		}
		*dst = out
	case string:
		// Comma-separated, as environment variables provide.
		var out []string
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*dst = out
	default:
		d.mismatch(path, "string list", v)
	}
}
