package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"reframe/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	if cfg.Server.Port != "8080" {
		t.Fatalf("default port: got %q", cfg.Server.Port)
	}
	if cfg.Server.Workers != 2 {
		t.Fatalf("default workers: got %d", cfg.Server.Workers)
	}
	if cfg.Detector.Backend != "pigo" {
		t.Fatalf("default detector backend: got %q", cfg.Detector.Backend)
	}
	if cfg.Diarize.URL != "" {
		t.Fatalf("diarization must be off by default, got %q", cfg.Diarize.URL)
	}
	if cfg.Tracking.SampleInterval != 0.1 {
		t.Fatalf("default sample interval: got %v", cfg.Tracking.SampleInterval)
	}
	if cfg.Tracking.DeadZone != 80 || cfg.Tracking.SnapZone != 250 {
		t.Fatalf("default zones: got %v/%v", cfg.Tracking.DeadZone, cfg.Tracking.SnapZone)
	}
}

func TestLoadOverlaysTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reframe.toml")
	content := `
[server]
port = "9090"

[detector]
backend = "yunet"

[tracking]
dead_zone = 60.0
scene_cut_threshold = 200.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port: got %q want 9090", cfg.Server.Port)
	}
	if cfg.Detector.Backend != "yunet" {
		t.Fatalf("backend: got %q want yunet", cfg.Detector.Backend)
	}
	if cfg.Tracking.DeadZone != 60 {
		t.Fatalf("dead zone: got %v want 60", cfg.Tracking.DeadZone)
	}
	if cfg.Tracking.SceneCutThreshold != 200 {
		t.Fatalf("scene cut threshold: got %v want 200", cfg.Tracking.SceneCutThreshold)
	}
	// Unset keys keep their defaults.
	if cfg.Tracking.SnapZone != 250 {
		t.Fatalf("snap zone default lost: got %v", cfg.Tracking.SnapZone)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reframe.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = \"9090\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("DETECTOR_BACKEND", "remote")
	t.Setenv("DIARIZE_SERVICE_URL", "http://localhost:5000")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("env must win over the file: got %q", cfg.Server.Port)
	}
	if cfg.Detector.Backend != "remote" {
		t.Fatalf("backend: got %q want remote", cfg.Detector.Backend)
	}
	if cfg.Diarize.URL != "http://localhost:5000" {
		t.Fatalf("diarize url: got %q", cfg.Diarize.URL)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("a missing config file must not be an error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port: got %q want default", cfg.Server.Port)
	}
}

func TestLoadPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reframe.toml")
	if err := os.WriteFile(path, []byte("[server]\nworkers = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REFRAME_CONFIG", path)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Workers != 5 {
		t.Fatalf("workers: got %d want 5", cfg.Server.Workers)
	}
}

func TestSmartcropMapping(t *testing.T) {
	cfg := config.Default()
	cfg.Tracking.DeadZone = 42
	cfg.Tracking.MinScreenWidth = 120

	sc := cfg.Smartcrop()
	if sc.DeadZone != 42 {
		t.Fatalf("dead zone not mapped: got %v", sc.DeadZone)
	}
	if sc.MinScreenWidth != 120 {
		t.Fatalf("min screen width not mapped: got %v", sc.MinScreenWidth)
	}
	if sc.HeadroomFraction != 0.20 {
		t.Fatalf("headroom fraction: got %v", sc.HeadroomFraction)
	}
}
