package version

import (
	"strings"
	"testing"
)

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Fatal("Version must have a default")
	}
	if !strings.HasSuffix(Version, "-dev") {
		t.Fatalf("unreleased builds carry the -dev suffix, got %q", Version)
	}
}

func TestBuildMetadataOverridable(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	// Simulates -ldflags injection.
	GitCommit = "abc123def456"
	BuildDate = "2026-01-15T10:30:00Z"
	if GitCommit != "abc123def456" || BuildDate != "2026-01-15T10:30:00Z" {
		t.Fatalf("ldflags variables not settable: %q %q", GitCommit, BuildDate)
	}
}
