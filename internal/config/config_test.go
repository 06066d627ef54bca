package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[trace]
level = "debug"
format = "ndjson"
depth = 3
max_length = 60
show_unchanged = true

[ui]
color = "off"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Trace.Level != "debug" || cfg.Trace.Format != "ndjson" {
		t.Fatalf("trace section not applied: %+v", cfg.Trace)
	}
	if cfg.Trace.Depth != 3 || cfg.Trace.MaxLength != 60 || !cfg.Trace.ShowUnchanged {
		t.Fatalf("numeric fields not applied: %+v", cfg.Trace)
	}
	// Unset fields keep their defaults.
	if cfg.Trace.Output != "-" || cfg.Trace.RingSize != 4096 {
		t.Fatalf("defaults lost for unset fields: %+v", cfg.Trace)
	}
	if cfg.UI.Color != "off" {
		t.Fatalf("ui section not applied: %+v", cfg.UI)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[trace]
dephts = 3
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestLoadRejectsNonPositiveDepth(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[trace]
depth = 0
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected depth validation error")
	}
}

func TestFindWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[trace]\ndepth = 2\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg, path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("find failed: ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("found manifest at %q, want one in %q", path, root)
	}
	if cfg.Trace.Depth != 2 {
		t.Fatalf("manifest not loaded: %+v", cfg.Trace)
	}
}

func TestFindWithoutManifestReturnsDefaults(t *testing.T) {
	cfg, _, ok, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("no manifest should be found in an empty tree")
	}
	if cfg.Trace.Depth != 1 || cfg.Trace.Level != "info" {
		t.Fatalf("defaults expected, got %+v", cfg.Trace)
	}
}

func TestIntConversions(t *testing.T) {
	cfg := Default()
	if n, err := cfg.IntDepth(); err != nil || n != 1 {
		t.Fatalf("IntDepth: %d %v", n, err)
	}
	if n, err := cfg.IntRingSize(); err != nil || n != 4096 {
		t.Fatalf("IntRingSize: %d %v", n, err)
	}
}
