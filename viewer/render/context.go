// Package render owns every GPU resource: device and surface setup,
// buffer and texture uploads, the mesh and skybox pipelines and the
// per-frame draw loop.
package render

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/CU-Production/vrm-viewer/viewer/logging"
)

// Context holds the WebGPU device state shared by every pipeline and
// resource. It must only be used from the thread that created it.
type Context struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	format       wgpu.TextureFormat
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	width, height int
	presentMode   wgpu.PresentMode
}

// NewContext initializes the WebGPU instance, surface, adapter and device
// for a window surface, then configures the swapchain at the given size.
// The calling goroutine is locked to its OS thread; all later GPU work must
// happen on it.
//
// Parameters:
//   - surfaceDescriptor: platform surface handle from the window layer
//   - width, height: initial framebuffer size in pixels
//   - vsync: true for fifo presentation, false for immediate
//
// Returns:
//   - *Context: ready GPU context
//   - error: adapter or device acquisition failure
func NewContext(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, vsync bool) (*Context, error) {
	runtime.LockOSThread()

	c := &Context{
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
	}
	if vsync {
		c.presentMode = wgpu.PresentModeFifo
	}

	c.surface = c.instance.CreateSurface(surfaceDescriptor)

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: c.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}
	c.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Viewer Device",
	})
	if err != nil {
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	c.device = device
	c.queue = device.GetQueue()

	c.Configure(width, height)

	logging.Info("gpu context ready",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("vsync", vsync),
	)
	return c, nil
}

// Configure (re)configures the surface and rebuilds the depth buffer.
// Called at startup and on every framebuffer resize.
//
// Parameters:
//   - width, height: new framebuffer size in pixels
func (c *Context) Configure(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = width, height

	capabilities := c.surface.GetCapabilities(c.adapter)
	c.format = capabilities.Formats[0]

	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: c.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if c.depthView != nil {
		c.depthView.Release()
		c.depthView = nil
	}
	if c.depthTexture != nil {
		c.depthTexture.Release()
		c.depthTexture = nil
	}

	depthTexture, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	c.depthTexture = depthTexture

	c.depthView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
}

// Device returns the WebGPU device.
func (c *Context) Device() *wgpu.Device { return c.device }

// Queue returns the device's default queue.
func (c *Context) Queue() *wgpu.Queue { return c.queue }

// Format returns the configured surface texture format.
func (c *Context) Format() wgpu.TextureFormat { return c.format }

// Size returns the configured framebuffer size in pixels.
func (c *Context) Size() (int, int) { return c.width, c.height }

// AspectRatio returns width over height for the configured surface.
func (c *Context) AspectRatio() float32 {
	if c.height == 0 {
		return 1
	}
	return float32(c.width) / float32(c.height)
}

// Release frees all device state. The context is unusable afterwards.
func (c *Context) Release() {
	if c.depthView != nil {
		c.depthView.Release()
		c.depthView = nil
	}
	if c.depthTexture != nil {
		c.depthTexture.Release()
		c.depthTexture = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}
