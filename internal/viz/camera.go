package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orbsim/internal/dynamo"
)

const (
	maxTilt = math.Pi / 2
	minZoom = 0.05
	maxZoom = 50
)

// Camera looks down the y axis onto the x/z orbital plane. Tilt rotates the
// scene about the x axis towards a side-on view; Zoom scales the auto-fitted
// extent.
type Camera struct {
	Tilt float64
	Zoom float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

func (c *Camera) TiltBy(a float64) {
	c.Tilt = math.Max(0, math.Min(maxTilt, c.Tilt+a))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(maxZoom, c.Zoom*1.25) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(minZoom, c.Zoom/1.25) }

// Flatten rotates p by the tilt and returns its screen-plane coordinates
// (right, down) in world units.
func (c *Camera) Flatten(p dynamo.Vec3) (float64, float64) {
	r := mgl64.Rotate3DX(-c.Tilt).Mul3x1(p)
	return r[0], r[2]
}

// Project maps p to sub-pixel coordinates on a sw x sh canvas, where extent
// world units from the centre reach the nearer canvas edge at zoom 1.
func (c *Camera) Project(p dynamo.Vec3, extent float64, sw, sh int) (int, int, bool) {
	if extent <= 0 {
		extent = 1
	}
	x, y := c.Flatten(p)
	half := float64(min(sw, sh)) / 2
	scale := c.Zoom * (half - 1) / extent

	sx := int(math.Round(float64(sw)/2 + x*scale))
	sy := int(math.Round(float64(sh)/2 + y*scale))
	return sx, sy, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}
