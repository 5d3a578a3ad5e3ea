package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/openolat/olat-gateway/pkg/settings"
)

const yamlSeed = `name: site
version: 1.2.0
modules:
  help:
    help.enabled: true
    help.plugin: ooAcademyLinkHelp,supportMailHelp
  lecture:
    lecture.required.attendance.rate.default: 0.75
    lecture.rollcall.autoclose.period: 3
`

func TestParse_YAML(t *testing.T) {
	f, err := Parse([]byte(yamlSeed), FormatYAML)
	if err != nil {
		t.Fatalf("seed:loader_test - unexpected error: %v", err)
	}
	if f.Version != "1.2.0" {
		t.Errorf("seed:loader_test - expected version 1.2.0, got %s", f.Version)
	}
	tests := []struct {
		module, key, want string
	}{
		{"help", "help.enabled", "true"},
		{"help", "help.plugin", "ooAcademyLinkHelp,supportMailHelp"},
		{"lecture", "lecture.required.attendance.rate.default", "0.75"},
		{"lecture", "lecture.rollcall.autoclose.period", "3"},
	}
	for _, tt := range tests {
		if got := f.Modules[tt.module][tt.key]; got != tt.want {
			t.Errorf("seed:loader_test - %s/%s: expected %q, got %q", tt.module, tt.key, tt.want, got)
		}
	}
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{"version":"1.0.0","modules":{"onlyoffice":{"onlyoffice.enabled":false,"onlyoffice.api.url":"https://office.example.org/api.js"},"lecture":{"lecture.rollcall.reminder.period":2}}}`)
	f, err := Parse(data, FormatJSON)
	if err != nil {
		t.Fatalf("seed:loader_test - unexpected error: %v", err)
	}
	if got := f.Modules["onlyoffice"]["onlyoffice.enabled"]; got != "false" {
		t.Errorf("seed:loader_test - expected false, got %q", got)
	}
	if got := f.Modules["lecture"]["lecture.rollcall.reminder.period"]; got != "2" {
		t.Errorf("seed:loader_test - expected 2, got %q", got)
	}
}

func TestParse_RejectsVersion(t *testing.T) {
	for _, v := range []string{"2.0.0", "0.9.0", "", "latest"} {
		_, err := Parse([]byte("version: \""+v+"\"\nmodules: {}\n"), FormatYAML)
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("seed:loader_test - version %q: expected ErrUnsupportedVersion, got %v", v, err)
		}
	}
}

func TestParse_RejectsNestedValue(t *testing.T) {
	_, err := Parse([]byte("version: 1.0.0\nmodules:\n  help:\n    help.plugin: [a, b]\n"), FormatYAML)
	if err == nil {
		t.Fatal("seed:loader_test - expected error for list value")
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(path, []byte(`{"name":"file","version":"1.0.0","modules":{"help":{"help.enabled":"false"}}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := Load(filepath.Join(dir, "missing.yaml"), path)
	if err != nil {
		t.Fatalf("seed:loader_test - unexpected error: %v", err)
	}
	if f.Name != "file" {
		t.Errorf("seed:loader_test - expected file seed, got %s", f.Name)
	}
}

func TestLoad_BrokenFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte("version: 3.0.0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("seed:loader_test - expected error for unsupported version")
	}
}

func TestLoad_Default(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("seed:loader_test - unexpected error: %v", err)
	}
	if f.Name != Default().Name {
		t.Errorf("seed:loader_test - expected default seed, got %s", f.Name)
	}
	if err := CheckVersion(f.Version); err != nil {
		t.Errorf("seed:loader_test - default seed version invalid: %v", err)
	}
}

func TestMerge(t *testing.T) {
	override := &File{Version: "1.1.0", Modules: map[string]map[string]string{
		"help":    {"help.enabled": "false"},
		"license": {"license.enabled": "true"},
	}}
	merged := Merge(Default(), override)

	if merged.Version != "1.1.0" {
		t.Errorf("seed:loader_test - expected version 1.1.0, got %s", merged.Version)
	}
	if got := merged.Modules["help"]["help.enabled"]; got != "false" {
		t.Errorf("seed:loader_test - expected override to win, got %q", got)
	}
	if got := merged.Modules["help"]["help.plugin"]; got != "ooConfluenceLinkHelp" {
		t.Errorf("seed:loader_test - expected base key kept, got %q", got)
	}
	if _, ok := merged.Modules["license"]; !ok {
		t.Error("seed:loader_test - expected new module from override")
	}
	if Default().Modules["help"]["help.enabled"] != "true" {
		t.Error("seed:loader_test - merge must not modify base")
	}
}

func TestApply_OnlyMissingKeys(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	if err := store.SetProperties(ctx, "help", map[string]string{"help.enabled": "false"}); err != nil {
		t.Fatal(err)
	}

	n, err := Apply(ctx, store, Default())
	if err != nil {
		t.Fatalf("seed:loader_test - unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("seed:loader_test - expected 3 written, got %d", n)
	}
	help, _ := store.Properties(ctx, "help")
	if help["help.enabled"] != "false" {
		t.Errorf("seed:loader_test - stored value overwritten: %q", help["help.enabled"])
	}
	if help["help.plugin"] != "ooConfluenceLinkHelp" {
		t.Errorf("seed:loader_test - missing key not seeded: %q", help["help.plugin"])
	}

	n, err = Apply(ctx, store, Default())
	if err != nil || n != 0 {
		t.Errorf("seed:loader_test - second apply: expected 0, nil; got %d, %v", n, err)
	}
}
