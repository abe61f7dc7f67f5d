// Package camera implements the orbit camera used to inspect loaded models.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/CU-Production/vrm-viewer/common"
)

const (
	// minDistance is the closest the camera can zoom toward its target.
	minDistance = 0.1
	// maxElevation keeps the camera off the poles, in degrees.
	maxElevation = 89.0
)

// Pose is an orbit position: the part of the camera Reset restores.
type Pose struct {
	Target    [3]float32
	Distance  float32
	Azimuth   float32
	Elevation float32
}

// Camera orbits a target point at a distance, parameterized by azimuth and
// elevation angles in degrees. All mutation happens on the main thread.
type Camera struct {
	Target    [3]float32
	Distance  float32
	Azimuth   float32 // degrees, rotation around the Y axis
	Elevation float32 // degrees, clamped to ±maxElevation

	FOVDegrees float32
	Near       float32
	Far        float32

	home Pose // snapshot for Reset, set by New and Frame
}

func (c *Camera) pose() Pose {
	return Pose{
		Target:    c.Target,
		Distance:  c.Distance,
		Azimuth:   c.Azimuth,
		Elevation: c.Elevation,
	}
}

// New returns a camera at the startup orbit: distance 5, azimuth 45,
// elevation 20, looking at the origin.
//
// Parameters:
//   - fovDegrees: vertical field of view
//   - near: near clip plane distance
//   - far: far clip plane distance
//
// Returns:
//   - *Camera: initialized orbit camera
func New(fovDegrees, near, far float32) *Camera {
	c := &Camera{
		Distance:   5,
		Azimuth:    45,
		Elevation:  20,
		FOVDegrees: fovDegrees,
		Near:       near,
		Far:        far,
	}
	c.home = c.pose()
	return c
}

// Frame re-targets the camera to show a bounding sphere: the target moves to
// the sphere center, the distance becomes 2.5 radii, and the orbit settles
// at azimuth 45, elevation 15. The framed pose becomes the new Reset pose.
//
// Parameters:
//   - center: bounding sphere center
//   - radius: bounding sphere radius
func (c *Camera) Frame(center [3]float32, radius float32) {
	c.Target = center
	c.Distance = 2.5 * radius
	c.Azimuth = 45
	c.Elevation = 15
	c.home = c.pose()
}

// Reset restores the last framed pose (or the startup pose if nothing was
// framed yet).
func (c *Camera) Reset() {
	c.Target = c.home.Target
	c.Distance = c.home.Distance
	c.Azimuth = c.home.Azimuth
	c.Elevation = c.home.Elevation
}

// Drag applies a mouse drag delta in pixels. Horizontal motion orbits around
// the target, vertical motion tilts, clamped short of the poles.
//
// Parameters:
//   - dx, dy: cursor delta in pixels
//   - sensitivity: degrees per pixel
func (c *Camera) Drag(dx, dy, sensitivity float32) {
	c.Azimuth -= dx * sensitivity
	c.Elevation += dy * sensitivity
	c.Elevation = common.Clamp(c.Elevation, -maxElevation, maxElevation)
}

// Zoom applies a scroll delta. Zoom speed is proportional to the current
// distance so the feel is consistent at any scale, with a hard floor.
//
// Parameters:
//   - scroll: scroll wheel delta, positive zooms in
func (c *Camera) Zoom(scroll float32) {
	c.Distance -= scroll * c.Distance * 0.1
	if c.Distance < minDistance {
		c.Distance = minDistance
	}
}

// Position returns the camera's world-space eye position on its orbit.
func (c *Camera) Position() [3]float32 {
	az := c.Azimuth * math32.Pi / 180
	el := c.Elevation * math32.Pi / 180
	cosEl := math32.Cos(el)
	return [3]float32{
		c.Target[0] + c.Distance*cosEl*math32.Sin(az),
		c.Target[1] + c.Distance*math32.Sin(el),
		c.Target[2] + c.Distance*cosEl*math32.Cos(az),
	}
}

// ViewMatrix writes the world-to-view transform into out (16 floats,
// column-major).
func (c *Camera) ViewMatrix(out []float32) {
	eye := c.Position()
	common.LookAt(out,
		eye[0], eye[1], eye[2],
		c.Target[0], c.Target[1], c.Target[2],
		0, 1, 0,
	)
}

// ProjectionMatrix writes the perspective projection for the given viewport
// aspect ratio into out (16 floats, column-major).
func (c *Camera) ProjectionMatrix(out []float32, aspect float32) {
	common.Perspective(out, c.FOVDegrees*math32.Pi/180, aspect, c.Near, c.Far)
}
