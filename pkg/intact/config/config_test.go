package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Use a temp directory that doesn't have a config file
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Algorithm != DefaultAlgorithm {
		t.Errorf("Algorithm = %q, want %q", cfg.Algorithm, DefaultAlgorithm)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
	if cfg.Recursive {
		t.Error("Recursive = true, want false")
	}
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
	}
	if cfg.Hidden {
		t.Error("Hidden = true, want false")
	}
	if cfg.ReadOnly {
		t.Error("ReadOnly = true, want false")
	}
	if cfg.Backend != DefaultBackend {
		t.Errorf("Backend = %q, want %q", cfg.Backend, DefaultBackend)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", cfg.Output, DefaultOutput)
	}
	if len(cfg.Include) != 0 {
		t.Errorf("Include = %v, want empty", cfg.Include)
	}
	if len(cfg.Exclude) != 0 {
		t.Errorf("Exclude = %v, want empty", cfg.Exclude)
	}
	if cfg.Xattr {
		t.Error("Xattr = true, want false")
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Destination != DefaultLogDestination {
		t.Errorf("Log.Destination = %q, want %q", cfg.Log.Destination, DefaultLogDestination)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.Limit != DefaultHistoryLimit {
		t.Errorf("History.Limit = %d, want %d", cfg.History.Limit, DefaultHistoryLimit)
	}
	if cfg.Watch.Settle != DefaultWatchSettle {
		t.Errorf("Watch.Settle = %v, want %v", cfg.Watch.Settle, DefaultWatchSettle)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "intact")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
algorithm: sha512
workers: 4
recursive: true
max_depth: 3
hidden: true
read_only: true
backend: native
output: json
exclude:
  - "*.log"
  - cache/
xattr: true
log:
  level: debug
  destination: /var/log/intact.log
history:
  enabled: false
  limit: 7
watch:
  settle: 250ms
`
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Algorithm != "sha512" {
		t.Errorf("Algorithm = %q, want %q", cfg.Algorithm, "sha512")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if !cfg.Recursive {
		t.Error("Recursive = false, want true")
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.MaxDepth)
	}
	if !cfg.Hidden {
		t.Error("Hidden = false, want true")
	}
	if !cfg.ReadOnly {
		t.Error("ReadOnly = false, want true")
	}
	if cfg.Backend != "native" {
		t.Errorf("Backend = %q, want %q", cfg.Backend, "native")
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q, want %q", cfg.Output, "json")
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "*.log" || cfg.Exclude[1] != "cache/" {
		t.Errorf("Exclude = %v, want [*.log cache/]", cfg.Exclude)
	}
	if !cfg.Xattr {
		t.Error("Xattr = false, want true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Destination != "/var/log/intact.log" {
		t.Errorf("Log.Destination = %q, want %q", cfg.Log.Destination, "/var/log/intact.log")
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
	if cfg.History.Limit != 7 {
		t.Errorf("History.Limit = %d, want 7", cfg.History.Limit)
	}
	if cfg.Watch.Settle != 250*time.Millisecond {
		t.Errorf("Watch.Settle = %v, want 250ms", cfg.Watch.Settle)
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := t.TempDir()
	xdgConfigDir := filepath.Join(tempDir, "xdg-config", "intact")
	if err := os.MkdirAll(xdgConfigDir, 0o755); err != nil {
		t.Fatalf("failed to create XDG config dir: %v", err)
	}

	configContent := `algorithm: blake2b`
	configPath := filepath.Join(xdgConfigDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg-config"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Algorithm != "blake2b" {
		t.Errorf("Algorithm = %q, want %q", cfg.Algorithm, "blake2b")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("INTACT_ALGORITHM", "md5")
	t.Setenv("INTACT_MAX_DEPTH", "3")
	t.Setenv("INTACT_LOG_LEVEL", "debug")
	t.Setenv("INTACT_EXCLUDE", "*.tmp,build/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Algorithm != "md5" {
		t.Errorf("Algorithm = %q, want %q", cfg.Algorithm, "md5")
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", cfg.MaxDepth)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "*.tmp" || cfg.Exclude[1] != "build/" {
		t.Errorf("Exclude = %v, want [*.tmp build/]", cfg.Exclude)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "intact")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("algorithm: [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}

		expected := "/custom/config/intact"
		if dir != expected {
			t.Errorf("ConfigDir() = %q, want %q", dir, expected)
		}
	})

	t.Run("uses HOME/.config when XDG_CONFIG_HOME not set", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)
		t.Setenv("XDG_CONFIG_HOME", "")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}

		expected := filepath.Join(tempDir, ".config", "intact")
		if dir != expected {
			t.Errorf("ConfigDir() = %q, want %q", dir, expected)
		}
	})
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	path, err := Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}

	expected := "/custom/config/intact/config.yaml"
	if path != expected {
		t.Errorf("Path() = %q, want %q", path, expected)
	}
}

func TestStateDir(t *testing.T) {
	// adrg/xdg caches values at init time, so we test the structure
	dir := StateDir()
	if !filepath.IsAbs(dir) {
		t.Errorf("StateDir() = %q, want absolute path", dir)
	}
	if filepath.Base(dir) != "intact" {
		t.Errorf("StateDir() = %q, want path ending in 'intact'", dir)
	}
}

func TestHistoryPath(t *testing.T) {
	path := HistoryPath()
	if !filepath.IsAbs(path) {
		t.Errorf("HistoryPath() = %q, want absolute path", path)
	}
	if filepath.Base(path) != "history" {
		t.Errorf("HistoryPath() = %q, want path ending in 'history'", path)
	}
	if filepath.Dir(path) != StateDir() {
		t.Errorf("HistoryPath() dir = %q, want %q", filepath.Dir(path), StateDir())
	}
}

func TestEnsureConfigDir(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}

	expectedDir := filepath.Join(tempDir, ".config", "intact")
	info, err := os.Stat(expectedDir)
	if err != nil {
		t.Fatalf("os.Stat(%q) error = %v", expectedDir, err)
	}

	if !info.IsDir() {
		t.Errorf("%q is not a directory", expectedDir)
	}
}

func TestEnsureStateDir(t *testing.T) {
	if err := EnsureStateDir(); err != nil {
		t.Fatalf("EnsureStateDir() error = %v", err)
	}

	info, err := os.Stat(StateDir())
	if err != nil {
		t.Fatalf("os.Stat(%q) error = %v", StateDir(), err)
	}

	if !info.IsDir() {
		t.Errorf("%q is not a directory", StateDir())
	}
}

func TestWriteDefault(t *testing.T) {
	t.Run("creates default config file", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)
		t.Setenv("XDG_CONFIG_HOME", "")

		if err := WriteDefault(); err != nil {
			t.Fatalf("WriteDefault() error = %v", err)
		}

		configPath := filepath.Join(tempDir, ".config", "intact", "config.yaml")
		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file not created: %v", err)
		}

		// The written file must parse back to the defaults.
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() after WriteDefault() error = %v", err)
		}
		if cfg.Algorithm != DefaultAlgorithm {
			t.Errorf("Algorithm = %q, want %q", cfg.Algorithm, DefaultAlgorithm)
		}
		if cfg.MaxDepth != DefaultMaxDepth {
			t.Errorf("MaxDepth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
		}
		if cfg.Watch.Settle != DefaultWatchSettle {
			t.Errorf("Watch.Settle = %v, want %v", cfg.Watch.Settle, DefaultWatchSettle)
		}
	})

	t.Run("does not overwrite existing config", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("HOME", tempDir)
		t.Setenv("XDG_CONFIG_HOME", "")

		configDir := filepath.Join(tempDir, ".config", "intact")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}

		configPath := filepath.Join(configDir, "config.yaml")
		existingContent := "# existing config\nalgorithm: md5"
		if err := os.WriteFile(configPath, []byte(existingContent), 0o644); err != nil {
			t.Fatalf("failed to write existing config: %v", err)
		}

		if err := WriteDefault(); err != nil {
			t.Fatalf("WriteDefault() error = %v", err)
		}

		content, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("failed to read config file: %v", err)
		}

		if string(content) != existingContent {
			t.Errorf("config file was overwritten: got %q, want %q", string(content), existingContent)
		}
	})
}

func TestDefaultConstants(t *testing.T) {
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"DefaultAlgorithm", DefaultAlgorithm, "sha256"},
		{"DefaultBackend", DefaultBackend, "auto"},
		{"DefaultOutput", DefaultOutput, "pretty"},
		{"DefaultMaxDepth", DefaultMaxDepth, -1},
		{"DefaultLogLevel", DefaultLogLevel, "info"},
		{"DefaultLogDestination", DefaultLogDestination, "stderr"},
		{"DefaultHistoryLimit", DefaultHistoryLimit, 100},
		{"DefaultWatchSettle", DefaultWatchSettle, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}
