// Package config loads snoop.toml, the optional per-project defaults for
// the CLI and for programs that want file-driven tracer settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

// FileName is the manifest the loader searches for.
const FileName = "snoop.toml"

// Trace holds the [trace] section.
type Trace struct {
	Level         string `toml:"level"`          // debug|info|success|warning|error
	Output        string `toml:"output"`         // file path, "-" for stderr
	Format        string `toml:"format"`         // text|ndjson
	Depth         int64  `toml:"depth"`          // nesting levels with line detail
	MaxLength     int64  `toml:"max_length"`     // rendering budget per value
	ShowUnchanged bool   `toml:"show_unchanged"` // report unchanged variables
	RingSize      int64  `toml:"ring_size"`      // in-memory buffer capacity
}

// UI holds the [ui] section.
type UI struct {
	Color string `toml:"color"` // auto|on|off
}

// Config is the parsed manifest.
type Config struct {
	Trace Trace `toml:"trace"`
	UI    UI    `toml:"ui"`
}

// Default returns the built-in defaults used when no manifest exists.
func Default() Config {
	return Config{
		Trace: Trace{
			Level:     "info",
			Output:    "-",
			Format:    "text",
			Depth:     1,
			MaxLength: 100,
			RingSize:  4096,
		},
		UI: UI{Color: "auto"},
	}
}

// Load parses the manifest at path, filling unset fields from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, key)
	}
	if cfg.Trace.Depth <= 0 {
		return Config{}, fmt.Errorf("%s: trace.depth must be positive", path)
	}
	return cfg, nil
}

// Find walks upward from dir looking for the manifest. It returns the
// defaults with ok=false when no manifest exists anywhere up the tree.
func Find(dir string) (Config, string, bool, error) {
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			cfg, lerr := Load(candidate)
			if lerr != nil {
				return Config{}, candidate, false, lerr
			}
			return cfg, candidate, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), "", false, nil
		}
		dir = parent
	}
}

// IntDepth returns trace.depth as an int, guarding the conversion.
func (c Config) IntDepth() (int, error) {
	n, err := safecast.Conv[int](c.Trace.Depth)
	if err != nil {
		return 0, fmt.Errorf("trace.depth overflow: %w", err)
	}
	return n, nil
}

// IntMaxLength returns trace.max_length as an int, guarding the conversion.
func (c Config) IntMaxLength() (int, error) {
	n, err := safecast.Conv[int](c.Trace.MaxLength)
	if err != nil {
		return 0, fmt.Errorf("trace.max_length overflow: %w", err)
	}
	return n, nil
}

// IntRingSize returns trace.ring_size as an int, guarding the conversion.
func (c Config) IntRingSize() (int, error) {
	n, err := safecast.Conv[int](c.Trace.RingSize)
	if err != nil {
		return 0, fmt.Errorf("trace.ring_size overflow: %w", err)
	}
	return n, nil
}
