// Command vrm-viewer opens an interactive window for inspecting VRM and
// glTF models: orbit camera, PBR and toon shading, procedural sky with
// image-based lighting. Drop a model file onto the window or pass one on
// the command line.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/CU-Production/vrm-viewer/viewer/app"
	"github.com/CU-Production/vrm-viewer/viewer/config"
	"github.com/CU-Production/vrm-viewer/viewer/logging"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	a, err := app.New(cfg)
	if err != nil {
		logging.Fatal("viewer startup failed", zap.Error(err))
	}
	a.Run()
}
