package geometry

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/material"
)

// Disc is a flat circular surface, its own right/up basis built from an
// arbitrary perpendicular seed vector (picking X or Y whichever is less
// parallel to Normal to avoid a degenerate cross product).
type Disc struct {
	Center core.Vec3
	Normal core.Vec3
	Radius float64
	BSDF   material.BSDF
	Medium material.MediumRef

	right, up core.Vec3
	area      float64
}

func NewDisc(center, normal core.Vec3, radius float64, bsdf material.BSDF) *Disc {
	n := normal.Normalize()
	seed := core.Vec3{X: 1}
	if math.Abs(n.X) > 0.9 {
		seed = core.Vec3{Y: 1}
	}
	right := seed.Cross(n).Normalize()
	up := n.Cross(right).Normalize()
	return &Disc{
		Center: center, Normal: n, Radius: radius, BSDF: bsdf,
		right: right, up: up,
		area: math.Pi * radius * radius,
	}
}

func (d *Disc) Intersect(ray core.Ray, hit *Intersection) bool {
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-8 {
		return false
	}
	t := d.Normal.Dot(d.Center.Subtract(ray.Origin)) / denom
	if t < ray.Near || t > ray.Far {
		return false
	}
	p := ray.At(t)
	if p.Subtract(d.Center).LengthSquared() > d.Radius*d.Radius {
		return false
	}
	ray.Far = t
	hit.T = t
	hit.Prim = d
	return true
}

func (d *Disc) Occluded(ray core.Ray) bool {
	var hit Intersection
	return d.Intersect(ray, &hit)
}

func (d *Disc) IntersectionInfo(ray core.Ray, hit Intersection) material.SurfaceInteraction {
	p := ray.At(hit.T)
	n := d.Normal
	if ray.Direction.Dot(n) > 0 {
		n = n.Negate()
	}
	local := p.Subtract(d.Center)
	uv := core.Vec2{X: local.Dot(d.right)/d.Radius*0.5 + 0.5, Y: local.Dot(d.up)/d.Radius*0.5 + 0.5}
	return material.SurfaceInteraction{
		P: p, Ng: n, Ns: n, UV: uv,
		Wi:      ray.Direction,
		Epsilon: 1e-4 * d.Radius,
		BSDF:    d.BSDF,
		Medium:  d.Medium,
	}
}

func (d *Disc) TangentSpace(info material.SurfaceInteraction) (core.Vec3, core.Vec3, bool) {
	return d.right, d.up, true
}

func (d *Disc) HitBackside(hit Intersection) bool { return false }

func (d *Disc) BoundingBox() core.AABB {
	rightExt := d.right.Multiply(d.Radius)
	upExt := d.up.Multiply(d.Radius)
	corners := []core.Vec3{
		d.Center.Add(rightExt).Add(upExt), d.Center.Add(rightExt).Subtract(upExt),
		d.Center.Subtract(rightExt).Add(upExt), d.Center.Subtract(rightExt).Subtract(upExt),
	}
	return core.NewAABBFromPoints(corners...)
}

func (d *Disc) EmissionForBackground(ray core.Ray) core.Vec3 { return core.Vec3{} }

func (d *Disc) IsDirac() bool { return false }

func (d *Disc) IsEmissive() bool {
	_, ok := d.BSDF.(material.Emitter)
	return ok
}

func (d *Disc) IsSamplable() bool { return d.IsEmissive() }

func (d *Disc) SampleDirect(p core.Vec3, sampler core.Sampler) (LightSample, bool) {
	u := sampler.Next2D()
	r := math.Sqrt(u.X) * d.Radius
	theta := 2 * math.Pi * u.Y
	local := d.right.Multiply(r * math.Cos(theta)).Add(d.up.Multiply(r * math.Sin(theta)))
	samplePoint := d.Center.Add(local)

	diff := samplePoint.Subtract(p)
	dist := diff.Length()
	if dist == 0 {
		return LightSample{}, false
	}
	dir := diff.Multiply(1 / dist)

	n := d.Normal
	if dir.Dot(n) > 0 {
		n = n.Negate()
	}
	cosTheta := -dir.Dot(n)
	if cosTheta <= 0 {
		return LightSample{}, false
	}
	pdf := (dist * dist) / (cosTheta * d.area)
	emitter, ok := d.BSDF.(material.Emitter)
	if !ok {
		return LightSample{}, false
	}
	emission := emitter.Emit(dir.Negate(), n, core.Vec2{}, samplePoint)

	return LightSample{P: samplePoint, D: dir, Dist: dist, Weight: emission.Multiply(1 / pdf), PDF: pdf}, true
}

func (d *Disc) DirectPDF(hit Intersection, info material.SurfaceInteraction, p core.Vec3) float64 {
	diff := info.P.Subtract(p)
	dist := diff.Length()
	if dist == 0 {
		return 0
	}
	dir := diff.Multiply(1 / dist)
	cosTheta := -dir.Dot(info.Ng)
	if cosTheta <= 0 {
		return 0
	}
	return (dist * dist) / (cosTheta * d.area)
}

func (d *Disc) EvalDirect(hit Intersection, info material.SurfaceInteraction) core.Vec3 {
	emitter, ok := d.BSDF.(material.Emitter)
	if !ok {
		return core.Vec3{}
	}
	return emitter.Emit(info.Wi.Negate(), info.Ns, info.UV, info.P)
}
