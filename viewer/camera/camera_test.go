package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCamera() *Camera {
	return New(45, 0.1, 1000)
}

func TestNewStartupPose(t *testing.T) {
	c := newTestCamera()
	assert.Equal(t, float32(5), c.Distance)
	assert.Equal(t, float32(45), c.Azimuth)
	assert.Equal(t, float32(20), c.Elevation)
	assert.Equal(t, [3]float32{0, 0, 0}, c.Target)
}

func TestFrame(t *testing.T) {
	c := newTestCamera()
	c.Frame([3]float32{1, 2, 3}, 4)

	assert.Equal(t, [3]float32{1, 2, 3}, c.Target)
	assert.Equal(t, float32(10), c.Distance, "distance is 2.5 radii")
	assert.Equal(t, float32(45), c.Azimuth)
	assert.Equal(t, float32(15), c.Elevation)
}

func TestResetRestoresFramedPose(t *testing.T) {
	c := newTestCamera()
	c.Frame([3]float32{1, 0, 0}, 2)

	c.Drag(100, 50, 0.3)
	c.Zoom(3)
	c.Reset()

	assert.Equal(t, [3]float32{1, 0, 0}, c.Target)
	assert.Equal(t, float32(5), c.Distance)
	assert.Equal(t, float32(45), c.Azimuth)
	assert.Equal(t, float32(15), c.Elevation)

	// Reset must stay idempotent after further mutation.
	c.Drag(10, 10, 1)
	c.Reset()
	assert.Equal(t, float32(45), c.Azimuth)
}

func TestResetWithoutFrame(t *testing.T) {
	c := newTestCamera()
	c.Drag(50, 50, 1)
	c.Reset()
	assert.Equal(t, float32(5), c.Distance)
	assert.Equal(t, float32(20), c.Elevation)
}

func TestResetLeavesProjectionAlone(t *testing.T) {
	c := newTestCamera()
	c.FOVDegrees = 60
	c.Near = 0.5
	c.Reset()
	assert.Equal(t, float32(60), c.FOVDegrees, "reset restores the orbit pose only")
	assert.Equal(t, float32(0.5), c.Near)
}

func TestDrag(t *testing.T) {
	c := newTestCamera()
	c.Drag(10, -5, 0.3)
	assert.InDelta(t, 45-3, c.Azimuth, 1e-5)
	assert.InDelta(t, 20-1.5, c.Elevation, 1e-5)
}

func TestDragElevationClamp(t *testing.T) {
	c := newTestCamera()
	c.Drag(0, 10000, 0.3)
	assert.Equal(t, float32(89), c.Elevation)
	c.Drag(0, -100000, 0.3)
	assert.Equal(t, float32(-89), c.Elevation)
}

func TestZoomProportional(t *testing.T) {
	c := newTestCamera()
	c.Zoom(1)
	assert.InDelta(t, 4.5, c.Distance, 1e-5)
	c.Zoom(-1)
	assert.InDelta(t, 4.95, c.Distance, 1e-5)
}

func TestZoomFloor(t *testing.T) {
	c := newTestCamera()
	for i := 0; i < 200; i++ {
		c.Zoom(5)
	}
	assert.Equal(t, float32(0.1), c.Distance)
}

func TestPositionOnOrbit(t *testing.T) {
	c := newTestCamera()
	c.Target = [3]float32{0, 0, 0}
	c.Distance = 2
	c.Azimuth = 0
	c.Elevation = 0

	pos := c.Position()
	assert.InDelta(t, 0, pos[0], 1e-5)
	assert.InDelta(t, 0, pos[1], 1e-5)
	assert.InDelta(t, 2, pos[2], 1e-5)

	c.Azimuth = 90
	pos = c.Position()
	assert.InDelta(t, 2, pos[0], 1e-5)
	assert.InDelta(t, 0, pos[2], 1e-5)

	c.Elevation = 90 // clamped range is wider than we use here
	pos = c.Position()
	assert.InDelta(t, 2, pos[1], 1e-5)
}

func TestPositionDistanceInvariant(t *testing.T) {
	c := newTestCamera()
	c.Frame([3]float32{3, -1, 2}, 4)
	c.Drag(123, -45, 0.3)

	pos := c.Position()
	dx := pos[0] - c.Target[0]
	dy := pos[1] - c.Target[1]
	dz := pos[2] - c.Target[2]
	d := math32.Sqrt(dx*dx + dy*dy + dz*dz)
	assert.InDelta(t, c.Distance, d, 1e-4)
}

func TestViewMatrixMapsEyeToOrigin(t *testing.T) {
	c := newTestCamera()
	view := make([]float32, 16)
	c.ViewMatrix(view)

	eye := c.Position()
	x := view[0]*eye[0] + view[4]*eye[1] + view[8]*eye[2] + view[12]
	y := view[1]*eye[0] + view[5]*eye[1] + view[9]*eye[2] + view[13]
	z := view[2]*eye[0] + view[6]*eye[1] + view[10]*eye[2] + view[14]
	assert.InDelta(t, 0, x, 1e-4)
	assert.InDelta(t, 0, y, 1e-4)
	assert.InDelta(t, 0, z, 1e-4)
}

func TestProjectionMatrix(t *testing.T) {
	c := newTestCamera()
	proj := make([]float32, 16)
	c.ProjectionMatrix(proj, 2.0)

	require.NotZero(t, proj[0])
	assert.InDelta(t, proj[5]/2.0, proj[0], 1e-5, "aspect scales X")
	assert.Equal(t, float32(-1), proj[11])
}
