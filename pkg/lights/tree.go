package lights

import (
	"math"
	"sort"

	"github.com/lumenforge/tracecore/pkg/core"
)

// node is one entry of the flattened importance tree: a conservative
// bounding sphere, the cumulative emitted power of the subtree it roots,
// and either two child indices (internal) or an entry index (leaf).
// Parent is a back-pointer so PDF can retraverse ancestors without
// re-descending from the root, matching §4.4's "parent back-pointer"
// requirement.
type node struct {
	Center core.Vec3
	Radius float64
	Power  float64

	Parent      int
	Left, Right int // -1 on a leaf
	EntryIdx    int // valid on a leaf
}

func (n *node) isLeaf() bool { return n.Left < 0 }

// Tree is the binary importance tree over a scene's emissive primitives.
// Sample and PDF share the same per-node weighting function
// (power/distance^2, §4.4's "solid-angle factor" approximation), so a
// PDF computed by walking the ancestor chain of a Sample'd leaf always
// agrees with the probability Sample actually used — the identity
// invariant-9 in the spec's testable properties depends on.
type Tree struct {
	entries []Entry
	nodes   []node
	leafOf  []int // entry index -> node index
	root    int
	total   float64
}

// NewTree builds an importance tree over entries. An empty entry set
// yields a tree whose Sample returns (-1, 0) and whose PDF returns 0,
// appropriate for "no lights in the scene" (the caller is expected to
// check Len() first).
func NewTree(entries []Entry) *Tree {
	t := &Tree{entries: entries, leafOf: make([]int, len(entries))}
	if len(entries) == 0 {
		return t
	}
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	t.root = t.build(idx, -1)
	t.total = t.nodes[t.root].Power
	return t
}

func (t *Tree) Len() int { return len(t.entries) }

// Entries exposes the registered primitives in construction order, the
// indexing Sample/PDF's emitter_index results refer to.
func (t *Tree) Entries() []Entry { return t.entries }

// build recursively partitions idx (indices into t.entries) into a
// binary tree, splitting along the longest axis of the box enclosing the
// entries' bounding spheres, at the median of their centers — the same
// shape as core.BVH's build, minus the SAH
// cost search, since the tree only needs to be roughly balanced for
// traversal to be cheap (unlike the BVH, split quality here doesn't
// bound the number of rays touched, only the log-depth of a sample).
func (t *Tree) build(idx []int, parent int) int {
	if len(idx) == 1 {
		e := t.entries[idx[0]]
		n := node{Center: e.Center, Radius: e.Radius, Power: e.Power, Parent: parent, Left: -1, Right: -1, EntryIdx: idx[0]}
		t.nodes = append(t.nodes, n)
		ni := len(t.nodes) - 1
		t.leafOf[idx[0]] = ni
		return ni
	}

	bounds := core.EmptyAABB()
	for _, i := range idx {
		e := t.entries[i]
		bounds = bounds.Union(core.NewAABB(e.Center.Subtract(core.Splat(e.Radius)), e.Center.Add(core.Splat(e.Radius))))
	}
	axis := bounds.LongestAxis()
	sort.Slice(idx, func(a, b int) bool {
		return axisValue(t.entries[idx[a]].Center, axis) < axisValue(t.entries[idx[b]].Center, axis)
	})
	mid := len(idx) / 2

	ni := len(t.nodes)
	t.nodes = append(t.nodes, node{Parent: parent})

	left := t.build(idx[:mid], ni)
	right := t.build(idx[mid:], ni)

	lc, lr := t.nodes[left].Center, t.nodes[left].Radius
	rc, rr := t.nodes[right].Center, t.nodes[right].Radius
	center, radius := enclosingSphere(lc, lr, rc, rr)

	t.nodes[ni].Center = center
	t.nodes[ni].Radius = radius
	t.nodes[ni].Power = t.nodes[left].Power + t.nodes[right].Power
	t.nodes[ni].Left = left
	t.nodes[ni].Right = right
	return ni
}

func axisValue(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// enclosingSphere returns a (not necessarily minimal) sphere containing
// both input spheres: the center is their power-agnostic midpoint and
// the radius is generous enough to always contain both, which is all
// the conservative bound §3's light-tree node needs.
func enclosingSphere(c0 core.Vec3, r0 float64, c1 core.Vec3, r1 float64) (core.Vec3, float64) {
	center := c0.Add(c1).Multiply(0.5)
	d := c0.Subtract(center).Length() + r0
	d1 := c1.Subtract(center).Length() + r1
	return center, math.Max(d, d1)
}

// weight is the per-node importance §4.4 traversal sampling and PDF
// evaluation both key off: cumulative emitted power over squared
// distance to the query point, clamped away from the singularity when p
// falls inside the node's bounding sphere.
func (t *Tree) weight(nodeIdx int, p core.Vec3) float64 {
	n := &t.nodes[nodeIdx]
	d2 := n.Center.Subtract(p).LengthSquared()
	minD2 := n.Radius * n.Radius * 0.01
	if d2 < minD2 {
		d2 = minD2
	}
	if d2 == 0 {
		d2 = 1e-9
	}
	return n.Power / d2
}

// Sample draws an emitter with probability approximately proportional
// to its unoccluded contribution at p, returning its entry index and the
// probability actually used. xi must be in [0, 1).
func (t *Tree) Sample(p core.Vec3, xi float64) (entryIdx int, pdf float64) {
	if len(t.entries) == 0 {
		return -1, 0
	}
	if t.total <= 0 {
		return t.sampleUniform(xi)
	}

	n := t.root
	prob := 1.0
	for !t.nodes[n].isLeaf() {
		left, right := t.nodes[n].Left, t.nodes[n].Right
		wl := t.weight(left, p)
		wr := t.weight(right, p)
		sum := wl + wr
		if sum <= 0 {
			return t.sampleUniform(xi)
		}
		pl := wl / sum
		if xi < pl {
			n = left
			prob *= pl
			xi /= pl
		} else {
			n = right
			prob *= 1 - pl
			xi = (xi - pl) / (1 - pl)
		}
	}
	return t.nodes[n].EntryIdx, prob
}

func (t *Tree) sampleUniform(xi float64) (int, float64) {
	n := len(t.entries)
	i := int(xi * float64(n))
	if i >= n {
		i = n - 1
	}
	return i, 1.0 / float64(n)
}

// PDF returns the probability Sample(p, ...) would assign to entryIdx,
// computed by walking from its leaf up to the root through parent
// back-pointers and multiplying the conditional probability at each
// ancestor — the same traversal Sample performs top-down, run in
// reverse, so the two always agree exactly.
func (t *Tree) PDF(p core.Vec3, entryIdx int) float64 {
	if entryIdx < 0 || entryIdx >= len(t.entries) {
		return 0
	}
	if t.total <= 0 {
		return 1.0 / float64(len(t.entries))
	}

	n := t.leafOf[entryIdx]
	pdf := 1.0
	for t.nodes[n].Parent >= 0 {
		parent := t.nodes[n].Parent
		left, right := t.nodes[parent].Left, t.nodes[parent].Right
		wl := t.weight(left, p)
		wr := t.weight(right, p)
		sum := wl + wr
		if sum <= 0 {
			return 1.0 / float64(len(t.entries))
		}
		if n == left {
			pdf *= wl / sum
		} else {
			pdf *= wr / sum
		}
		n = parent
	}
	return pdf
}
