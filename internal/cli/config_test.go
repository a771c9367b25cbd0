package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/derivgraph/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaultLocationMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	if err := os.MkdirAll(filepath.Join(home, appName), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, appName, "config.toml"), []byte("[serve]\naddr = \":9999\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Serve.Addr != ":9999" {
		t.Errorf("addr = %q", cfg.Serve.Addr)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[cache]
dir = "/tmp/dg"
ttl = "2h"

[render]
format = "dot"
children = true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := DefaultConfig()
	want.Cache.Dir = "/tmp/dg"
	want.Cache.TTL = 2 * time.Hour
	want.Render.Format = "dot"
	want.Render.Children = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code errs.Code
	}{
		{"explicit missing", filepath.Join(t.TempDir(), "nope.toml"), errs.ErrCodeFileNotFound},
		{"syntax", writeConfig(t, "[cache\n"), errs.ErrCodeInvalidFormat},
		{"unknown key", writeConfig(t, "[render]\nstyle = \"x\"\n"), errs.ErrCodeInvalidInput},
		{"bad format", writeConfig(t, "[render]\nformat = \"png\"\n"), errs.ErrCodeInvalidInput},
		{"negative ttl", writeConfig(t, "[cache]\nttl = \"-1h\"\n"), errs.ErrCodeInvalidInput},
		{"empty addr", writeConfig(t, "[serve]\naddr = \"\"\n"), errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}
