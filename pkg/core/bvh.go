package core

import (
	"math"
	"sort"
	"sync"
)

// PrimitiveBounds is the (AABB, centroid, opaque-id) triple the BVH
// builder consumes. The id is opaque to the BVH; callers use it to look
// the primitive back up from their own slice.
type PrimitiveBounds struct {
	Box      AABB
	Centroid Vec3
	ID       int
}

// bvhBuildNode is the builder's intermediate tree representation, later
// flattened into the packed bvhNode array.
type bvhBuildNode struct {
	Bounds      AABB
	Left, Right *bvhBuildNode
	FirstPrim   int
	PrimCount   int
}

func (n *bvhBuildNode) isLeaf() bool { return n.PrimCount > 0 }

// bvhNode is the packed traversal node: 36 bytes holding this node's own
// float32 AABB and three int32 fields (the right-child index and the
// leaf's first/count pair). It does not interleave the two children's
// bounds for a 4-wide SIMD load; pkg/core/simd4.go tests one node at a
// time with scalar float32 arithmetic.
type bvhNode struct {
	BoundsMin, BoundsMax [3]float32 // this node's own AABB, for the slab test
	// union: primCount == 0 means internal.
	RightChild int32 // index of right child; left child is always this index + 1
	FirstPrim  int32
	PrimCount  int32
}

// BVH is the immutable, already-built acceleration structure. Traversal
// never allocates: Intersect/Occluded use a fixed-depth array as their
// front-to-back stack instead of a heap slice.
type BVH struct {
	Nodes       []bvhNode
	PrimIndices []int

	Center Vec3    // finite-world center, used by infinite lights
	Radius float64 // finite-world radius
}

const (
	maxPrimsPerLeaf        = 8
	sahTravCost            = 1.0
	sahIntersectCost       = 1.0
	exhaustiveSweepMax     = 64
	binnedSAHBins          = 32
	parallelSplitThreshold = 32000
)

// NewBVH builds an immutable BVH over prims. An empty prims slice yields a
// single dummy leaf whose traversal always reports no hits.
func NewBVH(prims []PrimitiveBounds) *BVH {
	if len(prims) == 0 {
		// Inverted infinite bounds make every slab test miss, so the
		// leaf's (absent) primitives are never visited.
		inf := float32(math.Inf(1))
		dummy := bvhNode{BoundsMin: [3]float32{inf, inf, inf}, BoundsMax: [3]float32{-inf, -inf, -inf}, PrimCount: 1}
		return &BVH{Nodes: []bvhNode{dummy}, PrimIndices: []int{}}
	}

	clamped := make([]PrimitiveBounds, len(prims))
	copy(clamped, prims)
	clampDegenerateCentroids(clamped)

	center, radius := finiteWorldBounds(clamped)

	primIndices := make([]int, len(clamped))
	root := buildRecursive(clamped, primIndices, 0, len(clamped), 0)
	collapseLeaves(root)

	var nodes []bvhNode
	flatten(root, &nodes)

	return &BVH{Nodes: nodes, PrimIndices: primIndices, Center: center, Radius: radius}
}

// clampDegenerateCentroids guards against a NaN centroid propagating
// into the SAH math: it's clamped into the primitive's own geometric
// bounds instead.
func clampDegenerateCentroids(prims []PrimitiveBounds) {
	for i := range prims {
		c := &prims[i].Centroid
		b := prims[i].Box
		if math.IsNaN(c.X) {
			c.X = (b.Min.X + b.Max.X) * 0.5
		}
		if math.IsNaN(c.Y) {
			c.Y = (b.Min.Y + b.Max.Y) * 0.5
		}
		if math.IsNaN(c.Z) {
			c.Z = (b.Min.Z + b.Max.Z) * 0.5
		}
	}
}

// buildRecursive builds over prims[start:end], writing the eventual leaf
// permutation into primIndices[start:end] once the subtree's leaves are
// determined. prims itself is reordered in place as partitioning proceeds.
func buildRecursive(prims []PrimitiveBounds, primIndices []int, start, end, depth int) *bvhBuildNode {
	n := end - start
	bounds := EmptyAABB()
	for i := start; i < end; i++ {
		bounds = bounds.Union(prims[i].Box)
	}

	makeLeaf := func() *bvhBuildNode {
		for i := start; i < end; i++ {
			primIndices[i] = prims[i].ID
		}
		return &bvhBuildNode{Bounds: bounds, FirstPrim: start, PrimCount: n}
	}

	centroidBounds := EmptyAABB()
	for i := start; i < end; i++ {
		centroidBounds = centroidBounds.ExpandPoint(prims[i].Centroid)
	}
	if centroidBounds.Size().MaxComponent() == 0 {
		// Degenerate-span fallback: no axis has nonzero
		// centroid extent; split the range in half by count along the
		// longest *geometric* axis instead.
		if n <= maxPrimsPerLeaf {
			return makeLeaf()
		}
		return splitByIndexFallback(prims, primIndices, start, end, depth, bounds)
	}

	var axis int
	var splitPos float64
	var bestCost float64
	var found bool

	if n <= exhaustiveSweepMax {
		axis, splitPos, bestCost, found = sweepSAH(prims, start, end, bounds)
	} else {
		axis, splitPos, bestCost, found = binnedSAH(prims, start, end, bounds, centroidBounds)
	}

	leafCost := sahIntersectCost * float64(n)
	if !found || bestCost >= leafCost {
		if n <= maxPrimsPerLeaf {
			return makeLeaf()
		}
		// SAH found nothing better than a leaf, but we're still over the
		// hard per-leaf cap: force a midpoint split.
		return splitByIndexFallback(prims, primIndices, start, end, depth, bounds)
	}

	mid := partition(prims, start, end, axis, splitPos)
	if mid == start || mid == end {
		if n <= maxPrimsPerLeaf {
			return makeLeaf()
		}
		return splitByIndexFallback(prims, primIndices, start, end, depth, bounds)
	}

	node := &bvhBuildNode{Bounds: bounds}
	if n > parallelSplitThreshold && depth < 24 {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			node.Left = buildRecursive(prims, primIndices, start, mid, depth+1)
		}()
		go func() {
			defer wg.Done()
			node.Right = buildRecursive(prims, primIndices, mid, end, depth+1)
		}()
		wg.Wait()
	} else {
		node.Left = buildRecursive(prims, primIndices, start, mid, depth+1)
		node.Right = buildRecursive(prims, primIndices, mid, end, depth+1)
	}
	return node
}

// splitByIndexFallback handles the degenerate-span case: sort the range
// by centroid along the longest geometric-AABB axis and split it at the
// count median (mid = start + n/2), guaranteeing progress even when every
// primitive shares a centroid.
func splitByIndexFallback(prims []PrimitiveBounds, primIndices []int, start, end, depth int, bounds AABB) *bvhBuildNode {
	n := end - start
	if n <= 1 {
		for i := start; i < end; i++ {
			primIndices[i] = prims[i].ID
		}
		return &bvhBuildNode{Bounds: bounds, FirstPrim: start, PrimCount: n}
	}
	mid := start + n/2
	axis := bounds.LongestAxis()
	sub := prims[start:end]
	sort.Slice(sub, func(i, j int) bool { return centroidAxis(sub[i].Centroid, axis) < centroidAxis(sub[j].Centroid, axis) })

	node := &bvhBuildNode{Bounds: bounds}
	node.Left = buildRecursive(prims, primIndices, start, mid, depth+1)
	node.Right = buildRecursive(prims, primIndices, mid, end, depth+1)
	return node
}

func centroidAxis(c Vec3, axis int) float64 {
	switch axis {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}

// sweepSAH implements the exhaustive O(n log n) sweep strategy for small
// counts: sort by centroid along each axis, prefix-sum areas
// from each end, and pick the minimum-cost split.
func sweepSAH(prims []PrimitiveBounds, start, end int, bounds AABB) (axis int, splitPos, bestCost float64, found bool) {
	n := end - start
	bestCost = math.Inf(1)
	found = false

	buf := make([]PrimitiveBounds, n)
	leftArea := make([]float64, n)
	rightArea := make([]float64, n)

	for a := 0; a < 3; a++ {
		copy(buf, prims[start:end])
		sort.Slice(buf, func(i, j int) bool { return centroidAxis(buf[i].Centroid, a) < centroidAxis(buf[j].Centroid, a) })

		acc := EmptyAABB()
		for i := 0; i < n; i++ {
			acc = acc.Union(buf[i].Box)
			leftArea[i] = acc.SurfaceArea()
		}
		acc = EmptyAABB()
		for i := n - 1; i >= 0; i-- {
			acc = acc.Union(buf[i].Box)
			rightArea[i] = acc.SurfaceArea()
		}

		invTotalArea := 1.0 / bounds.SurfaceArea()
		for i := 1; i < n; i++ {
			nl, nr := float64(i), float64(n-i)
			cost := sahTravCost + (leftArea[i-1]*nl+rightArea[i]*nr)*sahIntersectCost*invTotalArea
			if cost < bestCost {
				bestCost = cost
				axis = a
				splitPos = (centroidAxis(buf[i-1].Centroid, a) + centroidAxis(buf[i].Centroid, a)) * 0.5
				found = true
			}
		}
	}
	return
}

// binnedSAH implements the 32-bin binned SAH strategy for larger counts:
// bin along each axis by centroid, evaluate 31 candidate splits per axis.
func binnedSAH(prims []PrimitiveBounds, start, end int, bounds, centroidBounds AABB) (axis int, splitPos, bestCost float64, found bool) {
	bestCost = math.Inf(1)
	found = false
	invTotalArea := 1.0 / bounds.SurfaceArea()

	type bin struct {
		bounds AABB
		count  int
	}

	for a := 0; a < 3; a++ {
		lo, hi := centroidBounds.Axis(a)
		extent := hi - lo
		if extent <= 0 {
			continue
		}
		bins := make([]bin, binnedSAHBins)
		for i := range bins {
			bins[i].bounds = EmptyAABB()
		}
		binIndex := func(c Vec3) int {
			t := (centroidAxis(c, a) - lo) / extent
			idx := int(t * float64(binnedSAHBins))
			if idx < 0 {
				idx = 0
			}
			if idx >= binnedSAHBins {
				idx = binnedSAHBins - 1
			}
			return idx
		}
		for i := start; i < end; i++ {
			bi := binIndex(prims[i].Centroid)
			bins[bi].bounds = bins[bi].bounds.Union(prims[i].Box)
			bins[bi].count++
		}

		leftArea := make([]float64, binnedSAHBins)
		leftCount := make([]int, binnedSAHBins)
		acc := EmptyAABB()
		accCount := 0
		for i := 0; i < binnedSAHBins; i++ {
			acc = acc.Union(bins[i].bounds)
			accCount += bins[i].count
			leftArea[i] = acc.SurfaceArea()
			leftCount[i] = accCount
		}

		acc = EmptyAABB()
		accCount = 0
		for i := binnedSAHBins - 1; i >= 0; i-- {
			rightAreaI := acc.SurfaceArea()
			rightCountI := accCount
			if i < binnedSAHBins-1 {
				nl, nr := float64(leftCount[i]), float64(rightCountI)
				if nl > 0 && nr > 0 {
					cost := sahTravCost + (leftArea[i]*nl+rightAreaI*nr)*sahIntersectCost*invTotalArea
					if cost < bestCost {
						bestCost = cost
						axis = a
						splitPos = lo + extent*float64(i+1)/float64(binnedSAHBins)
						found = true
					}
				}
			}
			acc = acc.Union(bins[i].bounds)
			accCount += bins[i].count
		}
	}
	return
}

// partition reorders prims[start:end] so that all primitives with
// centroid[axis] < splitPos come first, returning the midpoint index.
func partition(prims []PrimitiveBounds, start, end, axis int, splitPos float64) int {
	i := start
	j := end - 1
	for i <= j {
		for i <= j && centroidAxis(prims[i].Centroid, axis) < splitPos {
			i++
		}
		for i <= j && centroidAxis(prims[j].Centroid, axis) >= splitPos {
			j--
		}
		if i < j {
			prims[i], prims[j] = prims[j], prims[i]
			i++
			j--
		}
	}
	return i
}

// collapseLeaves is a post-build pass: adjacent leaf siblings whose
// combined leaf cost would have been cheaper than the split are merged
// into a single leaf.
func collapseLeaves(node *bvhBuildNode) {
	if node == nil || node.isLeaf() {
		return
	}
	collapseLeaves(node.Left)
	collapseLeaves(node.Right)

	if node.Left.isLeaf() && node.Right.isLeaf() {
		combined := node.Left.PrimCount + node.Right.PrimCount
		if combined <= maxPrimsPerLeaf {
			leafCost := sahIntersectCost * float64(combined)
			splitCost := sahTravCost + (node.Left.Bounds.SurfaceArea()*float64(node.Left.PrimCount)+
				node.Right.Bounds.SurfaceArea()*float64(node.Right.PrimCount))*sahIntersectCost/node.Bounds.SurfaceArea()
			if leafCost <= splitCost && node.Left.FirstPrim+node.Left.PrimCount == node.Right.FirstPrim {
				node.FirstPrim = node.Left.FirstPrim
				node.PrimCount = combined
				node.Left = nil
				node.Right = nil
			}
		}
	}
}

// flatten linearizes the build tree into the packed array, depth-first
// with the left child immediately following its parent (pbrt-style linear
// BVH layout) so RightChild is the only child pointer that needs storing.
func flatten(node *bvhBuildNode, nodes *[]bvhNode) int32 {
	idx := int32(len(*nodes))
	packed := bvhNode{}
	packed.BoundsMin = [3]float32{float32(node.Bounds.Min.X), float32(node.Bounds.Min.Y), float32(node.Bounds.Min.Z)}
	packed.BoundsMax = [3]float32{float32(node.Bounds.Max.X), float32(node.Bounds.Max.Y), float32(node.Bounds.Max.Z)}
	*nodes = append(*nodes, packed)

	if node.isLeaf() {
		(*nodes)[idx].FirstPrim = int32(node.FirstPrim)
		(*nodes)[idx].PrimCount = int32(node.PrimCount)
		return idx
	}

	flatten(node.Left, nodes)
	rightIdx := flatten(node.Right, nodes)
	(*nodes)[idx].RightChild = rightIdx
	(*nodes)[idx].PrimCount = 0
	return idx
}

func finiteWorldBounds(prims []PrimitiveBounds) (Vec3, float64) {
	bounds := EmptyAABB()
	has := false
	for _, p := range prims {
		size := p.Box.Size()
		if size.X > 1e5 || size.Y > 1e5 || size.Z > 1e5 {
			continue // likely an unbounded primitive (ground plane, env sphere)
		}
		bounds = bounds.Union(p.Box)
		has = true
	}
	if !has {
		return Vec3{}, 0
	}
	c, r := bounds.BoundingSphere()
	return c, r
}

// Intersector is invoked once per primitive visited in a leaf. It must
// tighten ray.Far upon a valid hit and return true; it may freely report
// (and even tighten on) a hit that a caller later rejects via a second
// pass — it must simply never shrink ray.Far for a hit that is not
// geometrically valid.
type Intersector func(primID int, ray *Ray) bool

// Occluder is the occlusion-query analog; returning true aborts traversal
// immediately.
type Occluder func(primID int, ray Ray) bool

// Intersect performs closest-hit traversal, invoking fn at each visited
// leaf primitive and returning whether any hit tightened the ray.
func (bvh *BVH) Intersect(ray *Ray, fn Intersector) bool {
	if len(bvh.Nodes) == 0 {
		return false
	}
	var stack [64]int32
	sp := 0
	hitAny := false
	nodeIdx := int32(0)

	invD := [3]float32{1 / float32(ray.Direction.X), 1 / float32(ray.Direction.Y), 1 / float32(ray.Direction.Z)}
	neg := [3]bool{invD[0] < 0, invD[1] < 0, invD[2] < 0}

	for {
		node := &bvh.Nodes[nodeIdx]
		if tEntry, ok := slabTest(node, ray, invD); ok && float64(tEntry) < ray.Far {
			if node.PrimCount > 0 {
				first, count := int(node.FirstPrim), int(node.PrimCount)
				for i := 0; i < count; i++ {
					primID := bvh.PrimIndices[first+i]
					if fn(primID, ray) {
						hitAny = true
					}
				}
				if sp == 0 {
					break
				}
				sp--
				nodeIdx = stack[sp]
				continue
			}

			left := nodeIdx + 1
			right := node.RightChild
			// Visit the nearer child first; push the farther child only
			// if its entry t beats the current ray.Far.
			nearIdx, farIdx := left, right
			if childIsFarther(&bvh.Nodes[left], &bvh.Nodes[right], neg) {
				nearIdx, farIdx = right, left
			}
			if farEntry, farOK := slabTest(&bvh.Nodes[farIdx], ray, invD); farOK && float64(farEntry) < ray.Far {
				stack[sp] = farIdx
				sp++
			}
			nodeIdx = nearIdx
			continue
		}

		if sp == 0 {
			break
		}
		sp--
		nodeIdx = stack[sp]
	}
	return hitAny
}

// Occluded performs occlusion traversal, returning as soon as fn reports a
// hit for any visited primitive.
func (bvh *BVH) Occluded(ray Ray, fn Occluder) bool {
	if len(bvh.Nodes) == 0 {
		return false
	}
	var stack [64]int32
	sp := 0
	nodeIdx := int32(0)
	invD := [3]float32{1 / float32(ray.Direction.X), 1 / float32(ray.Direction.Y), 1 / float32(ray.Direction.Z)}

	for {
		node := &bvh.Nodes[nodeIdx]
		if _, ok := slabTest(node, &ray, invD); ok {
			if node.PrimCount > 0 {
				first, count := int(node.FirstPrim), int(node.PrimCount)
				for i := 0; i < count; i++ {
					if fn(bvh.PrimIndices[first+i], ray) {
						return true
					}
				}
			} else {
				stack[sp] = node.RightChild
				sp++
				nodeIdx = nodeIdx + 1
				continue
			}
		}
		if sp == 0 {
			return false
		}
		sp--
		nodeIdx = stack[sp]
	}
}

// childIsFarther decides traversal order using a coarse centroid-distance
// proxy in lieu of true per-ray signed-direction ordering, a pragmatic
// simplification that preserves correctness (both children are still
// visited, just not always in the optimal order) while keeping the
// traversal loop branch-free on the node layout.
func childIsFarther(left, right *bvhNode, neg [3]bool) bool {
	var lc, rc float32
	for a := 0; a < 3; a++ {
		lMid := (left.BoundsMin[a] + left.BoundsMax[a]) * 0.5
		rMid := (right.BoundsMin[a] + right.BoundsMax[a]) * 0.5
		if neg[a] {
			lc -= lMid
			rc -= rMid
		} else {
			lc += lMid
			rc += rMid
		}
	}
	return lc > rc
}
