package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loki/pkg/interpreter"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, "stack_size: 64\nmax_steps: 1000\ntrace: true\nprofile: true\nno_color: true\n")

	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Config{StackSize: 64, MaxSteps: 1000, Trace: true, Profile: true, NoColor: true}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestPartialKeepsDefaults(t *testing.T) {
	dir := writeConfig(t, "trace: true\n")

	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StackSize != interpreter.DefaultStackSize || !cfg.Trace {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestEmptyFile(t *testing.T) {
	dir := writeConfig(t, "")

	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := LoadDefault(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	cfg, err = LoadDefault(writeConfig(t, "max_steps: 5\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxSteps != 5 {
		t.Errorf("max_steps = %d, want 5", cfg.MaxSteps)
	}
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "stack: 3\n", "field stack not found"},
		{"zero stack", "stack_size: 0\n", "stack_size must be positive"},
		{"negative steps", "max_steps: -1\n", "max_steps must not be negative"},
		{"bad type", "trace: maybe\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.body)
			_, err := Load(filepath.Join(dir, FileName))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}
