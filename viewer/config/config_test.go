package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	want := [3]float32{0.15, 0.15, 0.18}
	if cfg.Render.ClearColor != want {
		t.Errorf("expected clear color %v, got %v", want, cfg.Render.ClearColor)
	}
	if !cfg.Render.ShowSkybox {
		t.Error("expected skybox to be visible by default")
	}
	if cfg.Render.SkyboxExposure != 1.0 {
		t.Errorf("expected skybox exposure 1.0, got %f", cfg.Render.SkyboxExposure)
	}

	if cfg.Camera.FOVDegrees != 45 {
		t.Errorf("expected fov 45, got %f", cfg.Camera.FOVDegrees)
	}
	if cfg.Camera.Near <= 0 || cfg.Camera.Far <= cfg.Camera.Near {
		t.Errorf("invalid clip planes: near=%f far=%f", cfg.Camera.Near, cfg.Camera.Far)
	}

	if cfg.Load.Model != "" {
		t.Errorf("expected no startup model, got %s", cfg.Load.Model)
	}
	if cfg.Load.Workers <= 0 {
		t.Errorf("expected positive worker count, got %d", cfg.Load.Workers)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  title: "Custom Viewer"
  vsync: false

render:
  show_skybox: false
  skybox_exposure: 2.0
  skybox_lod: 0.5

camera:
  fov_degrees: 60
  sensitivity: 0.5

load:
  model: "avatar.vrm"
  workers: 4

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Window.Width)
	}
	if cfg.Window.Title != "Custom Viewer" {
		t.Errorf("expected custom title, got %s", cfg.Window.Title)
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Render.ShowSkybox {
		t.Error("expected skybox to be hidden")
	}
	if cfg.Render.SkyboxExposure != 2.0 {
		t.Errorf("expected skybox exposure 2.0, got %f", cfg.Render.SkyboxExposure)
	}
	if cfg.Camera.FOVDegrees != 60 {
		t.Errorf("expected fov 60, got %f", cfg.Camera.FOVDegrees)
	}
	// Near/far were not set in the file, so defaults must survive the merge.
	if cfg.Camera.Near != 0.01 {
		t.Errorf("expected default near plane 0.01, got %f", cfg.Camera.Near)
	}
	if cfg.Load.Model != "avatar.vrm" {
		t.Errorf("expected model 'avatar.vrm', got %s", cfg.Load.Model)
	}
	if cfg.Load.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Load.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "model flag",
			setup: func() { *flagModel = "fox.glb" },
			verify: func(cfg *Config) {
				if cfg.Load.Model != "fox.glb" {
					t.Errorf("expected model 'fox.glb', got %s", cfg.Load.Model)
				}
			},
			teardown: func() { *flagModel = "" },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Window.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "no-skybox flag",
			setup: func() { *flagNoSky = true },
			verify: func(cfg *Config) {
				if cfg.Render.ShowSkybox {
					t.Error("expected skybox to be hidden with no-skybox flag")
				}
			},
			teardown: func() { *flagNoSky = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width comes from the flag, height from the file.
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}
