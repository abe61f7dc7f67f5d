// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Load    LoadConfig    `yaml:"load"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// RenderConfig holds rendering settings.
type RenderConfig struct {
	ClearColor     [3]float32 `yaml:"clear_color"`
	ShowSkybox     bool       `yaml:"show_skybox"`
	SkyboxExposure float32    `yaml:"skybox_exposure"`
	SkyboxLOD      float32    `yaml:"skybox_lod"`
}

// CameraConfig holds orbit camera settings.
type CameraConfig struct {
	FOVDegrees  float32 `yaml:"fov_degrees"`
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	Sensitivity float32 `yaml:"sensitivity"` // degrees per pixel of drag
}

// LoadConfig holds asset loading settings.
type LoadConfig struct {
	// Model is an optional path to load at startup. File drop replaces it.
	Model string `yaml:"model"`
	// Workers bounds the decode pool. Zero means a small default.
	Workers int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "VRM Viewer",
			VSync:  true,
		},
		Render: RenderConfig{
			ClearColor:     [3]float32{0.15, 0.15, 0.18},
			ShowSkybox:     true,
			SkyboxExposure: 1.0,
			SkyboxLOD:      1.5,
		},
		Camera: CameraConfig{
			FOVDegrees:  45,
			Near:        0.01,
			Far:         1000,
			Sensitivity: 0.3,
		},
		Load: LoadConfig{
			Model:   "",
			Workers: 2,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
