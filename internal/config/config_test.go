package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"movieconv/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("USERPROFILE", tempHome)
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "movieconv")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.SettingsPath() != filepath.Join(wantData, "settings.json") {
		t.Fatalf("unexpected settings path: %q", cfg.SettingsPath())
	}
	if cfg.HistoryPath() != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Encoder.HardwareProbeCommand != "nvidia-smi" {
		t.Fatalf("unexpected probe command: %q", cfg.Encoder.HardwareProbeCommand)
	}
	if cfg.Encoder.HardwareProbeTimeout != 5 {
		t.Fatalf("unexpected probe timeout: %d", cfg.Encoder.HardwareProbeTimeout)
	}
	if !cfg.Notifications.Bell {
		t.Fatal("expected bell enabled by default")
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "movieconv.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Encoder struct {
			Binary          string `toml:"binary"`
			DisableHardware bool   `toml:"disable_hardware"`
		} `toml:"encoder"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Encoder.Binary = "  /opt/ffmpeg/bin/ffmpeg "
	custom.Encoder.DisableHardware = true
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Debug"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Encoder.Binary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected trimmed encoder binary, got %q", cfg.Encoder.Binary)
	}
	if !cfg.Encoder.DisableHardware {
		t.Fatal("expected hardware disabled")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
	if cfg.Encoder.HardwareProbeCommand != "nvidia-smi" {
		t.Fatalf("expected default probe command to survive partial config, got %q", cfg.Encoder.HardwareProbeCommand)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "movieconv.toml")
	if err := os.WriteFile(configPath, []byte("[encoder]\nbinnary = \"ffmpeg\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "binnary") {
		t.Fatalf("expected error to name the unknown key, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	cfg := config.Default()
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Encoder.HardwareProbeCommand != "nvidia-smi" {
		t.Fatalf("unexpected sample probe command: %q", cfg.Encoder.HardwareProbeCommand)
	}
	if !strings.Contains(cfg.Paths.DataDir, "movieconv") {
		t.Fatalf("expected data dir to contain movieconv, got %q", cfg.Paths.DataDir)
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}

	cfg = config.Default()
	cfg.Logging.Level = "trace"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log level")
	}

	cfg = config.Default()
	cfg.Encoder.HardwareProbeTimeout = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative probe timeout")
	}

	cfg = config.Default()
	cfg.Notifications.NtfyTopic = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid ntfy topic")
	}

	cfg = config.Default()
	cfg.Notifications.NtfyTopic = "https://ntfy.sh/movieconv"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid ntfy topic, got %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.RunLogDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q, err=%v", dir, err)
		}
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
