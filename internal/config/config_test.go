package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labeld.yaml")
	raw := []byte(`
allow_all: true
auth:
  - id: "a1"
    name: "alice"
banned:
  - id: "b1"
max_labels: 5
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.AllowAll || c.MaxLabels != 5 {
		t.Fatalf("unexpected config: %+v", c)
	}
	if !c.InAuth("a1") || c.InAuth("b1") {
		t.Fatalf("auth lookup wrong: %+v", c.Auth)
	}
	if !c.IsBanned("b1") || c.IsBanned("a1") {
		t.Fatalf("banned lookup wrong: %+v", c.Banned)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("allow_all: [not a bool"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
