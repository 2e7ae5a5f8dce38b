package geometry

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Camera is a thin-lens pinhole-to-physical camera: LookFrom/LookAt/Up
// establish the view basis, VFov the vertical field of view in degrees,
// and Aperture/FocusDistance the depth-of-field lens sampling (Aperture
// 0 degenerates to a pinhole, skipping lens sampling entirely).
type Camera struct {
	Origin          core.Vec3
	LowerLeftCorner core.Vec3
	Horizontal      core.Vec3
	Vertical        core.Vec3
	U, V, W         core.Vec3 // camera basis: U=right, V=up, W=back (toward LookFrom from LookAt)
	LensRadius      float64
	Width, Height   int
}

type CameraConfig struct {
	LookFrom, LookAt, Up core.Vec3
	VFov                 float64 // vertical field of view, degrees
	AspectRatio          float64
	Aperture             float64
	FocusDistance        float64
	Width, Height        int
}

func NewCamera(cfg CameraConfig) *Camera {
	theta := cfg.VFov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := cfg.AspectRatio * halfHeight

	w := cfg.LookFrom.Subtract(cfg.LookAt).Normalize()
	u := cfg.Up.Cross(w).Normalize()
	v := w.Cross(u)

	focusDist := cfg.FocusDistance
	if focusDist <= 0 {
		focusDist = cfg.LookFrom.Subtract(cfg.LookAt).Length()
	}

	horizontal := u.Multiply(2 * halfWidth * focusDist)
	vertical := v.Multiply(2 * halfHeight * focusDist)
	lowerLeft := cfg.LookFrom.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDist))

	return &Camera{
		Origin: cfg.LookFrom, LowerLeftCorner: lowerLeft,
		Horizontal: horizontal, Vertical: vertical,
		U: u, V: v, W: w,
		LensRadius: cfg.Aperture / 2,
		Width:      cfg.Width, Height: cfg.Height,
	}
}

// pointOnScreen maps normalized screen coordinates (s, t) in [0, 1] to a
// world-space point on the focal plane.
func (c *Camera) pointOnScreen(s, t float64) core.Vec3 {
	return c.LowerLeftCorner.Add(c.Horizontal.Multiply(s)).Add(c.Vertical.Multiply(t))
}

// SampleRay generates a primary ray through pixel (px, py) with a
// sub-pixel jitter and a lens-sample offset for depth of field, along
// with a ray differential (the rays through the horizontally/vertically
// adjacent pixel centers) for downstream texture-footprint filtering.
func (c *Camera) SampleRay(px, py int, sampler core.Sampler) core.Ray {
	jitter := sampler.Next2D()
	s := (float64(px) + jitter.X) / float64(c.Width)
	t := 1 - (float64(py)+jitter.Y)/float64(c.Height)

	origin := c.Origin
	target := c.pointOnScreen(s, t)
	if c.LensRadius > 0 {
		lens := core.ConcentricSampleDisk(sampler.Next2D()).Multiply(c.LensRadius)
		offset := c.U.Multiply(lens.X).Add(c.V.Multiply(lens.Y))
		origin = origin.Add(offset)
	}

	ray := core.NewRay(origin, target.Subtract(origin))
	ray.Primary = true
	ray.Diff = c.differential(px, py, origin)
	return ray
}

func (c *Camera) differential(px, py int, origin core.Vec3) *core.RayDifferential {
	sx := (float64(px) + 1.5) / float64(c.Width)
	sy := (float64(px) + 0.5) / float64(c.Width)
	tx := 1 - (float64(py)+0.5)/float64(c.Height)
	ty := 1 - (float64(py)+1.5)/float64(c.Height)

	dirX := c.pointOnScreen(sx, tx).Subtract(origin).Normalize()
	dirY := c.pointOnScreen(sy, ty).Subtract(origin).Normalize()
	return &core.RayDifferential{
		OriginX: origin, OriginY: origin,
		DirectionX: dirX, DirectionY: dirY,
	}
}

// LensSample is a point on the camera's aperture visible from a scene
// point, the analog of LightSample used when a light-tracing or
// bidirectional strategy connects a path vertex back to the camera.
type LensSample struct {
	Pixel  core.Vec2
	D      core.Vec3
	Dist   float64
	Weight core.Vec3
}

// SampleDirect connects a scene point p back to the camera's lens,
// returning the pixel it projects to. Only meaningful for a pinhole
// camera (LensRadius == 0); light-tracing through a finite aperture
// would need to integrate over the lens, out of scope for the
// unidirectional path tracer this package otherwise serves.
func (c *Camera) SampleDirect(p core.Vec3) (LensSample, bool) {
	toCam := c.Origin.Subtract(p)
	dist := toCam.Length()
	if dist == 0 {
		return LensSample{}, false
	}
	dir := toCam.Multiply(1 / dist)

	toPoint := p.Subtract(c.Origin)
	depth := toPoint.Dot(c.W.Negate())
	if depth <= 0 {
		return LensSample{}, false
	}
	// Project onto the focal plane SampleRay targets, which lies
	// focusDist along -W; Horizontal/Vertical span that plane.
	focusDist := c.Origin.Subtract(c.LowerLeftCorner).Dot(c.W)
	planeHit := toPoint.Multiply(focusDist / depth)
	su := planeHit.Dot(c.U) / c.Horizontal.Length()
	sv := planeHit.Dot(c.V) / c.Vertical.Length()
	s, t := su+0.5, sv+0.5
	if s < 0 || s > 1 || t < 0 || t > 1 {
		return LensSample{}, false
	}

	px := s * float64(c.Width)
	py := (1 - t) * float64(c.Height)

	return LensSample{
		Pixel: core.Vec2{X: px, Y: py},
		D:     dir, Dist: dist,
		Weight: core.Splat(1), // pinhole importance: uniform over the image plane by construction
	}, true
}
