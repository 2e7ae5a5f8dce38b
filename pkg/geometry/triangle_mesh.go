package geometry

import (
	"github.com/lumenforge/tracecore/pkg/core"
	"github.com/lumenforge/tracecore/pkg/material"
)

// TriangleMesh is an indexed triangle soup with optional per-vertex
// normals and UVs, accelerated by its own internal BVH. Loading mesh
// data from a file format (OBJ, glTF, ...) is out of scope here: a
// caller builds the Positions/Normals/UVs/Indices slices however it
// likes and hands them to NewTriangleMesh.
type TriangleMesh struct {
	Positions []core.Vec3
	Normals   []core.Vec3 // optional, nil for flat-shaded meshes
	UVs       []core.Vec2 // optional
	Indices   []int32     // triples of vertex indices, one per triangle
	BSDF      material.BSDF
	Medium    material.MediumRef

	bvh    *core.BVH
	bounds core.AABB
}

func NewTriangleMesh(positions []core.Vec3, normals []core.Vec3, uvs []core.Vec2, indices []int32, bsdf material.BSDF) *TriangleMesh {
	m := &TriangleMesh{Positions: positions, Normals: normals, UVs: uvs, Indices: indices, BSDF: bsdf}
	m.build()
	return m
}

func (m *TriangleMesh) triVerts(tri int) (core.Vec3, core.Vec3, core.Vec3) {
	i0, i1, i2 := m.Indices[3*tri], m.Indices[3*tri+1], m.Indices[3*tri+2]
	return m.Positions[i0], m.Positions[i1], m.Positions[i2]
}

func (m *TriangleMesh) build() {
	triCount := len(m.Indices) / 3
	bounds := make([]core.PrimitiveBounds, triCount)
	m.bounds = core.EmptyAABB()
	for i := 0; i < triCount; i++ {
		v0, v1, v2 := m.triVerts(i)
		box := core.NewAABBFromPoints(v0, v1, v2)
		bounds[i] = core.PrimitiveBounds{Box: box, Centroid: box.Center(), ID: i}
		m.bounds = m.bounds.Union(box)
	}
	m.bvh = core.NewBVH(bounds)
}

// intersectTriangle is the Möller-Trumbore ray-triangle test, returning
// the hit distance and barycentric (u, v) on success.
func intersectTriangle(ray *core.Ray, v0, v1, v2 core.Vec3) (t, u, v float64, ok bool) {
	const epsilon = 1e-8
	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, 0, 0, false
	}
	f := 1 / a
	s := ray.Origin.Subtract(v0)
	u = f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(edge1)
	v = f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = f * edge2.Dot(q)
	if t < ray.Near || t > ray.Far {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

func (m *TriangleMesh) Intersect(ray core.Ray, hit *Intersection) bool {
	found := false
	var bestTri int
	var bestU, bestV float64
	m.bvh.Intersect(&ray, func(primID int, r *core.Ray) bool {
		v0, v1, v2 := m.triVerts(primID)
		t, u, v, ok := intersectTriangle(r, v0, v1, v2)
		if !ok {
			return false
		}
		r.Far = t
		bestTri, bestU, bestV = primID, u, v
		found = true
		return true
	})
	if !found {
		return false
	}
	hit.T = ray.Far
	hit.Prim = m
	hit.Scratch[0] = float64(bestTri)
	hit.Scratch[1] = bestU
	hit.Scratch[2] = bestV
	return true
}

func (m *TriangleMesh) Occluded(ray core.Ray) bool {
	hit := false
	m.bvh.Occluded(ray, func(primID int, r core.Ray) bool {
		v0, v1, v2 := m.triVerts(primID)
		_, _, _, ok := intersectTriangle(&r, v0, v1, v2)
		hit = hit || ok
		return ok
	})
	return hit
}

func (m *TriangleMesh) IntersectionInfo(ray core.Ray, hit Intersection) material.SurfaceInteraction {
	tri := int(hit.Scratch[0])
	u, v := hit.Scratch[1], hit.Scratch[2]
	w := 1 - u - v

	i0, i1, i2 := m.Indices[3*tri], m.Indices[3*tri+1], m.Indices[3*tri+2]
	v0, v1, v2 := m.Positions[i0], m.Positions[i1], m.Positions[i2]
	ng := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()

	ns := ng
	if m.Normals != nil {
		ns = m.Normals[i0].Multiply(w).Add(m.Normals[i1].Multiply(u)).Add(m.Normals[i2].Multiply(v)).Normalize()
	}
	if ng.Dot(ray.Direction) > 0 {
		ng = ng.Negate()
	}
	if ns.Dot(ray.Direction) > 0 {
		ns = ns.Negate()
	}

	var uv core.Vec2
	if m.UVs != nil {
		uv = m.UVs[i0].Multiply(w).Add(m.UVs[i1].Multiply(u)).Add(m.UVs[i2].Multiply(v))
	} else {
		uv = core.Vec2{X: u, Y: v}
	}

	return material.SurfaceInteraction{
		P: ray.At(hit.T), Ng: ng, Ns: ns, UV: uv,
		Wi:      ray.Direction,
		Epsilon: 1e-4,
		BSDF:    m.BSDF,
		Medium:  m.Medium,
	}
}

func (m *TriangleMesh) TangentSpace(info material.SurfaceInteraction) (core.Vec3, core.Vec3, bool) {
	if m.UVs == nil {
		return core.Vec3{}, core.Vec3{}, false
	}
	t := core.NewFrame(info.Ns).T
	return t, info.Ns.Cross(t), true
}

func (m *TriangleMesh) HitBackside(hit Intersection) bool { return false }

func (m *TriangleMesh) BoundingBox() core.AABB { return m.bounds }

func (m *TriangleMesh) EmissionForBackground(ray core.Ray) core.Vec3 { return core.Vec3{} }

func (m *TriangleMesh) IsDirac() bool { return false }

func (m *TriangleMesh) IsEmissive() bool {
	_, ok := m.BSDF.(material.Emitter)
	return ok
}

// IsSamplable is false: next-event estimation against a mesh of
// individually-emissive triangles needs per-triangle area sampling
// (weighted by triangle area) which the light importance tree is built
// to handle at a coarser granularity instead; a raw mesh is treated as
// BSDF-sampled-only emission.
func (m *TriangleMesh) IsSamplable() bool { return false }

func (m *TriangleMesh) SampleDirect(p core.Vec3, sampler core.Sampler) (LightSample, bool) {
	return LightSample{}, false
}

func (m *TriangleMesh) DirectPDF(hit Intersection, info material.SurfaceInteraction, p core.Vec3) float64 {
	return 0
}

func (m *TriangleMesh) EvalDirect(hit Intersection, info material.SurfaceInteraction) core.Vec3 {
	emitter, ok := m.BSDF.(material.Emitter)
	if !ok {
		return core.Vec3{}
	}
	return emitter.Emit(info.Wi.Negate(), info.Ns, info.UV, info.P)
}
