// Package window wraps GLFW windowing and input for the viewer: window
// creation, the event callbacks and the WebGPU surface bridge.
package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window owns the GLFW window and dispatches input events to registered
// callbacks. All methods must be called from the main OS thread.
type Window struct {
	win *glfw.Window

	width  int
	height int

	onKeyDown     func(key glfw.Key)
	onScroll      func(delta float32)
	onMouseButton func(button glfw.MouseButton, pressed bool, x, y float64)
	onMouseMove   func(x, y float64)
	onResize      func(width, height int)
	onDrop        func(paths []string)
}

// New initializes GLFW and creates the viewer window with input callbacks
// registered. The calling goroutine is locked to its OS thread.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
//
// Parameters:
//   - title: window title
//   - width, height: requested window size in screen coordinates
//
// Returns:
//   - *Window: the created window
//   - error: GLFW initialization or window creation failure
func New(title string, width, height int) (*Window, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating GLFW window: %w", err)
	}

	w := &Window{win: win}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Press && w.onKeyDown != nil {
			w.onKeyDown(key)
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if w.onMouseButton != nil {
			x, y := win.GetCursorPos()
			w.onMouseButton(button, action == glfw.Press, x, y)
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(xpos, ypos)
		}
	})

	// Framebuffer size, not window size: on high-DPI displays the two
	// differ and the surface needs pixel dimensions.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, fbWidth, fbHeight int) {
		w.width = fbWidth
		w.height = fbHeight
		if w.onResize != nil {
			w.onResize(fbWidth, fbHeight)
		}
	})

	win.SetDropCallback(func(_ *glfw.Window, paths []string) {
		if w.onDrop != nil {
			w.onDrop(paths)
		}
	})

	w.width, w.height = win.GetFramebufferSize()
	return w, nil
}

// SetKeyDownCallback sets the callback for key press events.
//
// Parameters:
//   - callback: function receiving the GLFW key code
func (w *Window) SetKeyDownCallback(callback func(key glfw.Key)) {
	w.onKeyDown = callback
}

// SetScrollCallback sets the callback for mouse scroll wheel events.
//
// Parameters:
//   - callback: function receiving scroll delta (positive = up/zoom in)
func (w *Window) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

// SetMouseButtonCallback sets the callback for mouse button events.
//
// Parameters:
//   - callback: function receiving the button, press state and cursor position
func (w *Window) SetMouseButtonCallback(callback func(button glfw.MouseButton, pressed bool, x, y float64)) {
	w.onMouseButton = callback
}

// SetMouseMoveCallback sets the callback for cursor movement.
//
// Parameters:
//   - callback: function receiving the cursor position in screen coordinates
func (w *Window) SetMouseMoveCallback(callback func(x, y float64)) {
	w.onMouseMove = callback
}

// SetResizeCallback sets the callback for framebuffer size changes.
//
// Parameters:
//   - callback: function receiving the new size in pixels
func (w *Window) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

// SetDropCallback sets the callback for files dropped onto the window.
//
// Parameters:
//   - callback: function receiving the dropped file paths
func (w *Window) SetDropCallback(callback func(paths []string)) {
	w.onDrop = callback
}

// SurfaceDescriptor returns the platform-appropriate wgpu.SurfaceDescriptor
// for this window, created by the wgpuglfw bridge.
//
// Returns:
//   - *wgpu.SurfaceDescriptor: descriptor for wgpu surface creation
func (w *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.win)
}

// ShouldClose reports whether the user has requested the window to close.
//
// Returns:
//   - bool: true once close has been requested
func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

// RequestClose asks the event loop to exit after the current iteration.
func (w *Window) RequestClose() {
	w.win.SetShouldClose(true)
}

// PollEvents processes pending window and input events without blocking.
func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Size returns the current framebuffer size in pixels.
//
// Returns:
//   - int: width in pixels
//   - int: height in pixels
func (w *Window) Size() (int, int) {
	return w.width, w.height
}

// SetTitle updates the window title.
//
// Parameters:
//   - title: new title text
func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

// Destroy closes the window and terminates GLFW.
func (w *Window) Destroy() {
	w.win.Destroy()
	glfw.Terminate()
}
