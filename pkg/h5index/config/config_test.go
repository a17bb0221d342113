package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Key != "" {
		t.Errorf("Key = %q, want empty", cfg.Key)
	}
	if cfg.KeyForLength != "" {
		t.Errorf("KeyForLength = %q, want empty", cfg.KeyForLength)
	}
	if cfg.ReadOnly {
		t.Error("ReadOnly = true, want false")
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[0] != ".h5" || cfg.Extensions[1] != ".hdf5" {
		t.Errorf("Extensions = %v, want [.h5 .hdf5]", cfg.Extensions)
	}
	if !cfg.Catalog.Enabled {
		t.Error("Catalog.Enabled = false, want true")
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Watch.Debounce != DefaultWatchDebounce {
		t.Errorf("Watch.Debounce = %v, want %v", cfg.Watch.Debounce, DefaultWatchDebounce)
	}
	if cfg.LogMaxSizeBytes() != 10*1000*1000 {
		t.Errorf("LogMaxSizeBytes() = %d, want 10000000", cfg.LogMaxSizeBytes())
	}
}

func TestLoad_FromFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "config", "h5index")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	content := `
key: image
key_for_length: image_sc
read_only: true
extensions: [.hdf5]
output: json
catalog:
  enabled: false
  path: ~/catalog
logging:
  level: debug
  components:
    scanner: warn
watch:
  debounce: 500ms
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Key != "image" || cfg.KeyForLength != "image_sc" || !cfg.ReadOnly {
		t.Errorf("keys = %q/%q read_only=%t", cfg.Key, cfg.KeyForLength, cfg.ReadOnly)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != ".hdf5" {
		t.Errorf("Extensions = %v", cfg.Extensions)
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q, want json", cfg.Output)
	}
	if cfg.Catalog.Enabled {
		t.Error("Catalog.Enabled = true, want false")
	}
	if cfg.Catalog.Path != filepath.Join(home, "catalog") {
		t.Errorf("Catalog.Path = %q, want ~ expanded", cfg.Catalog.Path)
	}
	if cfg.Logging.Components["scanner"] != "warn" {
		t.Errorf("Components = %v", cfg.Logging.Components)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 500ms", cfg.Watch.Debounce)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("H5INDEX_KEY", "label")
	t.Setenv("H5INDEX_READ_ONLY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Key != "label" {
		t.Errorf("Key = %q, want label", cfg.Key)
	}
	if !cfg.ReadOnly {
		t.Error("ReadOnly = false, want true")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "config", "h5index")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("key: [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Key:        "image",
			Extensions: []string{".h5"},
			Output:     "plain",
			Logging: LoggingConfig{
				Level:    "info",
				Rotation: RotationConfig{MaxSize: "10MB"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no key", mutate: func(c *Config) { c.Key = "" }},
		{name: "bad extension", mutate: func(c *Config) { c.Extensions = []string{"h5"} }, wantErr: "Extensions"},
		{name: "no extensions", mutate: func(c *Config) { c.Extensions = nil }, wantErr: "Extensions"},
		{name: "bad output", mutate: func(c *Config) { c.Output = "xml" }, wantErr: "Output"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "Level"},
		{name: "bad max size", mutate: func(c *Config) { c.Logging.Rotation.MaxSize = "lots" }, wantErr: "max_size"},
		{
			name:    "bad component level",
			mutate:  func(c *Config) { c.Logging.Components = map[string]string{"scanner": "x"} },
			wantErr: "Components",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	got, err := ExpandPath("~/data")
	if err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	if got != filepath.Join(home, "data") {
		t.Errorf("ExpandPath() = %q, want %q", got, filepath.Join(home, "data"))
	}

	got, err = ExpandPath("/abs/path")
	if err != nil || got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %q, %v", got, err)
	}
}

func TestWriteDefault(t *testing.T) {
	isolate(t)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if path != ConfigPath() {
		t.Errorf("WriteDefault() path = %q, want %q", path, ConfigPath())
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() after WriteDefault() error = %v", err)
	}
	if cfg.Key != "" {
		t.Errorf("Key = %q, want empty", cfg.Key)
	}

	if err := os.WriteFile(path, []byte("key: custom\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteDefault(); err != nil {
		t.Fatalf("second WriteDefault() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "key: custom\n" {
		t.Error("WriteDefault() overwrote an existing config")
	}
}
