// Package config loads tabular's settings.
//
// Configuration is built in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← TABULAR_TABLE_COLUMNS=3
//	├─────────────────────────────┤
//	│  2. Config File             │  ← tabular.toml or tabular.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// Each layer is a nested map; the merged map is decoded into Config and
// validated.
//
//	cfg, err := config.Load("tabular.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h := history.NewHistory(cfg.History.MaxEntries)
//
// # Configuration Files
//
// TOML and YAML are accepted, chosen by file extension:
//
//	[table]
//	rows = 3
//	columns = 4
//	cellContent = "paragraph+"
//
//	[script]
//	timeout = "2s"
//	allowedCommands = ["add_*", "next_cell", "prev_cell"]
package config
