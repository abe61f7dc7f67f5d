// Package app ties the viewer together: window and GPU setup, input
// handling, asynchronous model loading and the main render loop.
package app

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/CU-Production/vrm-viewer/viewer/asset"
	"github.com/CU-Production/vrm-viewer/viewer/camera"
	"github.com/CU-Production/vrm-viewer/viewer/config"
	"github.com/CU-Production/vrm-viewer/viewer/geometry"
	"github.com/CU-Production/vrm-viewer/viewer/logging"
	"github.com/CU-Production/vrm-viewer/viewer/profiler"
	"github.com/CU-Production/vrm-viewer/viewer/render"
	"github.com/CU-Production/vrm-viewer/viewer/settings"
	"github.com/CU-Production/vrm-viewer/viewer/shading"
	"github.com/CU-Production/vrm-viewer/viewer/texture"
	"github.com/CU-Production/vrm-viewer/viewer/window"
)

const (
	envMapSize = 128
	envMapMips = 6
)

// loadResult carries a finished background load to the main thread. GPU
// upload happens there; the background task only does CPU work.
type loadResult struct {
	path   string
	doc    *asset.Document
	build  *geometry.BuildResult
	images []*texture.Image
	err    error
}

// App owns every subsystem of the viewer for the lifetime of the window.
type App struct {
	cfg *config.Config

	win      *window.Window
	ctx      *render.Context
	renderer *render.Renderer

	state *settings.State
	cam   *camera.Camera
	model *render.Model
	prof  *profiler.Profiler

	pool       worker.DynamicWorkerPool
	loadTaskID int
	loads      chan loadResult
	loading    bool

	dragging     bool
	lastX, lastY float64
}

// New builds the full viewer: window, GPU context, baked environment,
// renderer and input wiring. Must be called from the main goroutine.
//
// Parameters:
//   - cfg: resolved viewer configuration
//
// Returns:
//   - *App: ready application, run it with Run
//   - error: window or GPU initialization failure
func New(cfg *config.Config) (*App, error) {
	win, err := window.New(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	if err != nil {
		return nil, err
	}

	fbWidth, fbHeight := win.Size()
	ctx, err := render.NewContext(win.SurfaceDescriptor(), fbWidth, fbHeight, cfg.Window.VSync)
	if err != nil {
		win.Destroy()
		return nil, err
	}

	bakeStart := time.Now()
	env := shading.BakeEnvironment(envMapSize, envMapMips, cfg.Load.Workers)
	logging.Info("environment baked",
		zap.Int("size", envMapSize),
		zap.Int("mips", env.Specular.MipCount()),
		zap.Duration("took", time.Since(bakeStart)),
	)

	renderer, err := render.NewRenderer(ctx, env, cfg.Render.ClearColor)
	if err != nil {
		ctx.Release()
		win.Destroy()
		return nil, err
	}

	state := settings.New()
	state.ShowSkybox = cfg.Render.ShowSkybox
	state.SkyboxExposure = cfg.Render.SkyboxExposure
	state.SkyboxLOD = cfg.Render.SkyboxLOD

	a := &App{
		cfg:      cfg,
		win:      win,
		ctx:      ctx,
		renderer: renderer,
		state:    state,
		cam:      camera.New(cfg.Camera.FOVDegrees, cfg.Camera.Near, cfg.Camera.Far),
		prof:     profiler.New(),
		pool:     worker.NewDynamicWorkerPool(cfg.Load.Workers, 8, 5*time.Second),
		loads:    make(chan loadResult, 1),
	}
	a.wireInput()

	if cfg.Load.Model != "" {
		a.RequestLoad(cfg.Load.Model)
	}
	return a, nil
}

func (a *App) wireInput() {
	a.win.SetKeyDownCallback(a.handleKey)

	a.win.SetScrollCallback(func(delta float32) {
		a.cam.Zoom(delta)
	})

	a.win.SetMouseButtonCallback(func(button glfw.MouseButton, pressed bool, x, y float64) {
		if button != glfw.MouseButtonLeft {
			return
		}
		// Clicks over the settings overlay never start a camera drag.
		if pressed && a.state.GUIHovered {
			return
		}
		a.dragging = pressed
		a.lastX, a.lastY = x, y
	})

	a.win.SetMouseMoveCallback(func(x, y float64) {
		if !a.dragging {
			return
		}
		dx := float32(x - a.lastX)
		dy := float32(y - a.lastY)
		a.lastX, a.lastY = x, y
		a.cam.Drag(dx, dy, a.cfg.Camera.Sensitivity)
	})

	a.win.SetResizeCallback(func(width, height int) {
		a.renderer.Resize(width, height)
	})

	a.win.SetDropCallback(func(paths []string) {
		if len(paths) == 0 {
			return
		}
		a.RequestLoad(paths[0])
	})
}

func (a *App) handleKey(key glfw.Key) {
	switch key {
	case glfw.KeyEscape:
		a.win.RequestClose()
	case glfw.KeyR:
		a.cam.Reset()
	case glfw.KeyG:
		a.state.ShowGUI = !a.state.ShowGUI
	case glfw.KeyT:
		a.state.UseToonShader = !a.state.UseToonShader
		logging.Info("shading toggled", zap.Bool("toon", a.state.UseToonShader))
	case glfw.KeyM:
		a.state.MaterialPreview = !a.state.MaterialPreview
	case glfw.KeyB:
		a.state.ShowSkybox = !a.state.ShowSkybox
	case glfw.KeyUp:
		a.state.SkyboxLOD = clampLOD(a.state.SkyboxLOD + 0.5)
	case glfw.KeyDown:
		a.state.SkyboxLOD = clampLOD(a.state.SkyboxLOD - 0.5)
	case glfw.KeyRight:
		a.state.SkyboxExposure = clampExposure(a.state.SkyboxExposure + 0.1)
	case glfw.KeyLeft:
		a.state.SkyboxExposure = clampExposure(a.state.SkyboxExposure - 0.1)
	}
}

func clampLOD(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > envMapMips-1 {
		return envMapMips - 1
	}
	return v
}

func clampExposure(v float32) float32 {
	if v < 0.1 {
		return 0.1
	}
	if v > 4 {
		return 4
	}
	return v
}

// RequestLoad starts loading a model on the worker pool. Decoding and
// geometry baking happen off the main thread; the GPU upload is picked up
// by the render loop. A load in flight makes further requests no-ops.
//
// Parameters:
//   - path: model file to load (.vrm, .glb or .gltf)
func (a *App) RequestLoad(path string) {
	if a.loading {
		logging.Warn("load already in progress, ignoring", zap.String("path", path))
		return
	}
	a.loading = true
	logging.Info("loading model", zap.String("path", path))

	a.loadTaskID++
	a.pool.SubmitTask(worker.Task{
		ID: a.loadTaskID,
		Do: func() (any, error) {
			a.loads <- loadModel(path)
			return nil, nil
		},
	})
}

// loadModel does the CPU half of a model load: parse, bake world-space
// geometry and decode base color images.
func loadModel(path string) loadResult {
	start := time.Now()

	doc, err := asset.Load(path)
	if err != nil {
		return loadResult{path: path, err: err}
	}

	build, err := geometry.Build(doc)
	if err != nil {
		return loadResult{path: path, err: err}
	}

	images := make([]*texture.Image, len(doc.Textures))
	for i := range doc.Textures {
		img, err := texture.Decode(doc.Textures[i].Data)
		if err != nil {
			logging.Warn("texture decode failed, using fallback",
				zap.String("name", doc.Textures[i].Name), zap.Error(err))
			continue
		}
		images[i] = img
	}

	logging.Info("model parsed",
		zap.String("path", path),
		zap.Bool("vrm", doc.IsVRM),
		zap.Int("meshes", len(build.Meshes)),
		zap.Duration("took", time.Since(start)),
	)
	return loadResult{path: path, doc: doc, build: build, images: images}
}

// drainLoads applies at most one finished background load per frame:
// upload to the GPU, swap the live model and frame the camera on it.
func (a *App) drainLoads() {
	select {
	case res := <-a.loads:
		a.loading = false
		if res.err != nil {
			logging.Error("model load failed", zap.String("path", res.path), zap.Error(res.err))
			return
		}

		model, err := a.renderer.UploadModel(res.build, res.doc, res.images)
		if err != nil {
			logging.Error("model upload failed", zap.String("path", res.path), zap.Error(err))
			return
		}

		if a.model != nil {
			a.model.Release()
		}
		a.model = model
		a.state.SetModel(res.path, res.doc.IsVRM, model.MeshCount())
		a.cam.Frame(res.build.Center, res.build.Radius)
		a.win.SetTitle(fmt.Sprintf("%s - %s", a.cfg.Window.Title, res.path))
	default:
	}
}

// Run drives the main loop until the window closes, then releases every
// GPU resource. Must be called from the goroutine that called New.
func (a *App) Run() {
	for !a.win.ShouldClose() {
		a.win.PollEvents()
		a.drainLoads()

		if err := a.renderer.RenderFrame(a.cam, a.state, a.model); err != nil {
			logging.Warn("frame dropped", zap.Error(err))
		}
		a.prof.Tick()
	}

	if a.model != nil {
		a.model.Release()
		a.model = nil
		a.state.ClearModel()
	}
	a.renderer.Release()
	a.ctx.Release()
	a.win.Destroy()
	logging.Info("viewer shut down")
}
