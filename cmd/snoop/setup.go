package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"snoop"
	"snoop/internal/config"
)

// loadConfig resolves the manifest: an explicit --config path wins, then
// the upward search from the working directory, then built-in defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	cfg, _, _, err := config.Find(cwd)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// applyColor sets the global color mode. The --color flag overrides the
// manifest; "auto" enables color only on a terminal.
func applyColor(cmd *cobra.Command, cfg config.Config) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if mode == "" {
		mode = cfg.UI.Color
	}

	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid color mode %q (expected: auto|on|off)", mode)
	}
	return nil
}

// buildSink constructs the trace sink the manifest describes. The
// returned cleanup flushes and closes it.
func buildSink(cfg config.Config) (snoop.Sink, func(), error) {
	level, err := snoop.ParseLevel(cfg.Trace.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := snoop.ParseFormat(cfg.Trace.Format)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Trace.Output == "" || cfg.Trace.Output == "-" {
		s := snoop.NewStreamSink(os.Stderr, format, level)
		return s, func() { s.Flush() }, nil //nolint:errcheck // best effort on exit
	}

	f, err := os.Create(cfg.Trace.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace output: %w", err)
	}
	s := snoop.NewStreamSink(f, format, level)
	cleanup := func() {
		s.Flush() //nolint:errcheck // best effort on exit
		f.Close() //nolint:errcheck
	}
	return s, cleanup, nil
}
