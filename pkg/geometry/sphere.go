package geometry

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/material"
)

// Sphere is an analytic parametric shape: a center, radius, and BSDF.
type Sphere struct {
	Center core.Vec3
	Radius float64
	BSDF   material.BSDF
	Medium material.MediumRef
}

func NewSphere(center core.Vec3, radius float64, bsdf material.BSDF) *Sphere {
	return &Sphere{Center: center, Radius: radius, BSDF: bsdf}
}

func (s *Sphere) Intersect(ray core.Ray, hit *Intersection) bool {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return false
	}
	sqrtD := math.Sqrt(disc)

	root := (-halfB - sqrtD) / a
	if root < ray.Near || root > ray.Far {
		root = (-halfB + sqrtD) / a
		if root < ray.Near || root > ray.Far {
			return false
		}
	}

	ray.Far = root
	hit.T = root
	hit.Prim = s
	return true
}

func (s *Sphere) Occluded(ray core.Ray) bool {
	var hit Intersection
	return s.Intersect(ray, &hit)
}

func (s *Sphere) IntersectionInfo(ray core.Ray, hit Intersection) material.SurfaceInteraction {
	p := ray.At(hit.T)
	n := p.Subtract(s.Center).Multiply(1 / s.Radius)

	theta := math.Acos(-n.Y)
	phi := math.Atan2(-n.Z, n.X) + math.Pi
	uv := core.Vec2{X: phi / (2 * math.Pi), Y: theta / math.Pi}

	return material.SurfaceInteraction{
		P: p, Ng: n, Ns: n, UV: uv,
		Wi:      ray.Direction,
		Epsilon: 1e-4 * s.Radius,
		BSDF:    s.BSDF,
		Medium:  s.Medium,
	}
}

func (s *Sphere) TangentSpace(info material.SurfaceInteraction) (core.Vec3, core.Vec3, bool) {
	// The meridian tangent (constant-phi direction) makes a natural
	// anisotropic axis; degenerate at the poles.
	n := info.Ns
	if math.Abs(n.Y) > 1-1e-6 {
		return core.Vec3{}, core.Vec3{}, false
	}
	t := core.Vec3{X: -n.Z, Y: 0, Z: n.X}.Normalize()
	b := n.Cross(t)
	return t, b, true
}

func (s *Sphere) HitBackside(hit Intersection) bool { return false }

func (s *Sphere) BoundingBox() core.AABB {
	r := core.Splat(s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}

func (s *Sphere) EmissionForBackground(ray core.Ray) core.Vec3 { return core.Vec3{} }

func (s *Sphere) IsDirac() bool { return false }

func (s *Sphere) IsEmissive() bool {
	_, ok := s.BSDF.(material.Emitter)
	return ok
}

func (s *Sphere) IsSamplable() bool { return s.IsEmissive() }

// SampleDirect samples the visible cone of the sphere as seen from p
// (Shirley's solid-angle cone sampling), falling back to uniform
// sphere sampling when p lies inside the sphere.
func (s *Sphere) SampleDirect(p core.Vec3, sampler core.Sampler) (LightSample, bool) {
	toCenter := s.Center.Subtract(p)
	distToCenter := toCenter.Length()

	if distToCenter <= s.Radius {
		return s.sampleUniform(p, sampler)
	}

	w := toCenter.Multiply(1 / distToCenter)
	frame := core.NewFrame(w)

	sinThetaMax := s.Radius / distToCenter
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMax*sinThetaMax))

	u := sampler.Next2D()
	cosTheta := 1 - u.X*(1-cosThetaMax)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y

	local := core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
	direction := frame.ToWorld(local)

	ray := core.NewRay(p, direction)
	var hit Intersection
	if !s.Intersect(ray, &hit) {
		return s.sampleUniform(p, sampler)
	}

	pdf := 1 / (2 * math.Pi * (1 - cosThetaMax))
	emitter := s.BSDF.(material.Emitter)
	info := s.IntersectionInfo(ray, hit)
	emission := emitter.Emit(direction.Negate(), info.Ns, info.UV, info.P)

	return LightSample{
		P: info.P, D: direction, Dist: hit.T,
		Weight: emission.Multiply(1 / pdf),
		PDF:    pdf,
	}, true
}

func (s *Sphere) sampleUniform(p core.Vec3, sampler core.Sampler) (LightSample, bool) {
	u := sampler.Next2D()
	z := 1 - 2*u.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u.Y
	local := core.Vec3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}

	samplePoint := s.Center.Add(local.Multiply(s.Radius))
	d := samplePoint.Subtract(p)
	dist := d.Length()
	if dist == 0 {
		return LightSample{}, false
	}
	dir := d.Multiply(1 / dist)

	pdf := 1 / (4 * math.Pi * s.Radius * s.Radius)
	emitter, ok := s.BSDF.(material.Emitter)
	if !ok {
		return LightSample{}, false
	}
	emission := emitter.Emit(dir.Negate(), local, core.Vec2{}, samplePoint)

	return LightSample{
		P: samplePoint, D: dir, Dist: dist,
		Weight: emission.Multiply(1 / pdf),
		PDF:    pdf,
	}, true
}

func (s *Sphere) DirectPDF(hit Intersection, info material.SurfaceInteraction, p core.Vec3) float64 {
	toCenter := s.Center.Subtract(p)
	distToCenter := toCenter.Length()
	if distToCenter <= s.Radius {
		return 1 / (4 * math.Pi * s.Radius * s.Radius)
	}
	sinThetaMax := s.Radius / distToCenter
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMax*sinThetaMax))
	return 1 / (2 * math.Pi * (1 - cosThetaMax))
}

func (s *Sphere) EvalDirect(hit Intersection, info material.SurfaceInteraction) core.Vec3 {
	emitter, ok := s.BSDF.(material.Emitter)
	if !ok || s.HitBackside(hit) {
		return core.Vec3{}
	}
	return emitter.Emit(info.Wi.Negate(), info.Ns, info.UV, info.P)
}
