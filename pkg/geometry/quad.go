package geometry

import (
	"math"

	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/material"
)

// Quad is a planar rectangle spanned by two edge vectors from a corner,
// tested via the barycentric-plane method (intersect the supporting
// plane, then check the two edge-projected coordinates land in [0,1]).
type Quad struct {
	Corner core.Vec3
	U, V   core.Vec3
	BSDF   material.BSDF
	Medium material.MediumRef

	normal core.Vec3
	d      float64
	w      core.Vec3
	area   float64
}

func NewQuad(corner, u, v core.Vec3, bsdf material.BSDF) *Quad {
	normal := u.Cross(v).Normalize()
	cross := u.Cross(v)
	return &Quad{
		Corner: corner, U: u, V: v, BSDF: bsdf,
		normal: normal,
		d:      normal.Dot(corner),
		w:      normal.Multiply(1 / normal.Dot(cross)),
		area:   cross.Length(),
	}
}

func (q *Quad) Intersect(ray core.Ray, hit *Intersection) bool {
	denom := ray.Direction.Dot(q.normal)
	if math.Abs(denom) < 1e-8 {
		return false
	}
	t := (q.d - ray.Origin.Dot(q.normal)) / denom
	if t < ray.Near || t > ray.Far {
		return false
	}
	p := ray.At(t)
	hv := p.Subtract(q.Corner)
	alpha := q.w.Dot(hv.Cross(q.V))
	beta := q.w.Dot(q.U.Cross(hv))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return false
	}
	ray.Far = t
	hit.T = t
	hit.Prim = q
	hit.Scratch[0], hit.Scratch[1] = alpha, beta
	return true
}

func (q *Quad) Occluded(ray core.Ray) bool {
	var hit Intersection
	return q.Intersect(ray, &hit)
}

func (q *Quad) IntersectionInfo(ray core.Ray, hit Intersection) material.SurfaceInteraction {
	p := ray.At(hit.T)
	n := q.normal
	if ray.Direction.Dot(n) > 0 {
		n = n.Negate()
	}
	return material.SurfaceInteraction{
		P: p, Ng: n, Ns: n,
		UV:      core.Vec2{X: hit.Scratch[0], Y: hit.Scratch[1]},
		Wi:      ray.Direction,
		Epsilon: 1e-4,
		BSDF:    q.BSDF,
		Medium:  q.Medium,
	}
}

func (q *Quad) TangentSpace(info material.SurfaceInteraction) (core.Vec3, core.Vec3, bool) {
	return q.U.Normalize(), q.V.Normalize(), true
}

func (q *Quad) HitBackside(hit Intersection) bool { return false }

func (q *Quad) BoundingBox() core.AABB {
	corners := []core.Vec3{q.Corner, q.Corner.Add(q.U), q.Corner.Add(q.V), q.Corner.Add(q.U).Add(q.V)}
	return core.NewAABBFromPoints(corners...)
}

func (q *Quad) EmissionForBackground(ray core.Ray) core.Vec3 { return core.Vec3{} }

func (q *Quad) IsDirac() bool { return false }

func (q *Quad) IsEmissive() bool {
	_, ok := q.BSDF.(material.Emitter)
	return ok
}

func (q *Quad) IsSamplable() bool { return q.IsEmissive() }

// SampleDirect samples uniformly by area, converting to solid-angle pdf
// by the standard area-to-solid-angle Jacobian cos(theta)/distance^2.
func (q *Quad) SampleDirect(p core.Vec3, sampler core.Sampler) (LightSample, bool) {
	u := sampler.Next2D()
	samplePoint := q.Corner.Add(q.U.Multiply(u.X)).Add(q.V.Multiply(u.Y))
	d := samplePoint.Subtract(p)
	dist := d.Length()
	if dist == 0 {
		return LightSample{}, false
	}
	dir := d.Multiply(1 / dist)

	n := q.normal
	if dir.Dot(n) > 0 {
		n = n.Negate()
	}
	cosTheta := -dir.Dot(n)
	if cosTheta <= 0 {
		return LightSample{}, false
	}

	pdf := (dist * dist) / (cosTheta * q.area)
	emitter, ok := q.BSDF.(material.Emitter)
	if !ok {
		return LightSample{}, false
	}
	emission := emitter.Emit(dir.Negate(), n, core.Vec2{X: u.X, Y: u.Y}, samplePoint)

	return LightSample{
		P: samplePoint, D: dir, Dist: dist,
		Weight: emission.Multiply(1 / pdf),
		PDF:    pdf,
	}, true
}

func (q *Quad) DirectPDF(hit Intersection, info material.SurfaceInteraction, p core.Vec3) float64 {
	d := info.P.Subtract(p)
	dist := d.Length()
	if dist == 0 {
		return 0
	}
	dir := d.Multiply(1 / dist)
	cosTheta := -dir.Dot(info.Ng)
	if cosTheta <= 0 {
		return 0
	}
	return (dist * dist) / (cosTheta * q.area)
}

func (q *Quad) EvalDirect(hit Intersection, info material.SurfaceInteraction) core.Vec3 {
	emitter, ok := q.BSDF.(material.Emitter)
	if !ok {
		return core.Vec3{}
	}
	return emitter.Emit(info.Wi.Negate(), info.Ns, info.UV, info.P)
}
