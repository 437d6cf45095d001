package spatial

import (
	"cmp"
	"collide3d/internal/geom"
	"image/color"
	"math/rand/v2"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const noChild = -1

// bvhNode is either a leaf (leaf != nil) or an internal node with two
// children addressed by index into the arena.
type bvhNode struct {
	bounds      geom.AABB
	leaf        Testable
	left, right int32
}

func (n *bvhNode) isLeaf() bool {
	return n.leaf != nil
}

// BVH is a binary bounding volume hierarchy over a snapshot of testables.
// It is rebuilt from scratch by Build; it never owns its payloads.
type BVH struct {
	nodes []bvhNode
	root  int32
	rng   *rand.Rand
}

// NewBVH creates an empty hierarchy. The rng picks split axes; pass a seeded
// generator for reproducible trees, nil for a random seed.
func NewBVH(rng *rand.Rand) *BVH {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &BVH{root: noChild, rng: rng}
}

// Build replaces the tree with one built over source. The slice is
// reordered in place.
func (t *BVH) Build(source []Testable) {
	t.nodes = t.nodes[:0]
	t.root = noChild
	if len(source) == 0 {
		return
	}
	t.root = t.build(source, 0, len(source))
}

func (t *BVH) build(source []Testable, start, end int) int32 {
	count := end - start
	switch {
	case count <= 0:
		return noChild
	case count == 1:
		return t.leaf(source[start])
	}

	axis := t.rng.IntN(3)
	byAxis := func(a, b Testable) int {
		return cmp.Compare(axisValue(a.Bounds().Min, axis), axisValue(b.Bounds().Min, axis))
	}

	var left, right int32
	if count == 2 {
		a, b := source[start], source[start+1]
		if byAxis(a, b) > 0 {
			a, b = b, a
		}
		left, right = t.leaf(a), t.leaf(b)
	} else {
		slices.SortFunc(source[start:end], byAxis)
		mid := start + count/2
		left = t.build(source, start, mid)
		right = t.build(source, mid, end)
	}

	t.nodes = append(t.nodes, bvhNode{
		bounds: geom.Combine(t.nodes[left].bounds, t.nodes[right].bounds),
		left:   left,
		right:  right,
	})
	return int32(len(t.nodes) - 1)
}

func (t *BVH) leaf(obj Testable) int32 {
	t.nodes = append(t.nodes, bvhNode{
		bounds: obj.Bounds(),
		leaf:   obj,
		left:   noChild,
		right:  noChild,
	})
	return int32(len(t.nodes) - 1)
}

func axisValue(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Bounds of the whole tree; an empty tree reports an empty box.
func (t *BVH) Bounds() geom.AABB {
	if t.root == noChild {
		return geom.EmptyAABB()
	}
	return t.nodes[t.root].bounds
}

// Query adds every leaf whose payload reports an overlap with box.
func (t *BVH) Query(box geom.AABB, result *QueryResult) {
	if t.root == noChild {
		return
	}
	t.query(t.root, box, result)
}

func (t *BVH) query(idx int32, box geom.AABB, result *QueryResult) {
	n := &t.nodes[idx]
	if !n.bounds.Intersects(box) {
		return
	}
	if n.isLeaf() {
		n.leaf.Query(box, result)
		return
	}
	t.query(n.left, box, result)
	t.query(n.right, box, result)
}

// Cast returns the closest payload hit along start->end.
func (t *BVH) Cast(start, end rl.Vector3) Hit {
	if t.root == noChild {
		return Hit{}
	}
	return t.cast(t.root, start, end)
}

func (t *BVH) cast(idx int32, start, end rl.Vector3) Hit {
	n := &t.nodes[idx]
	if !geom.LineInBoundingBox(start, end, n.bounds).Hit {
		return Hit{}
	}
	if n.isLeaf() {
		return n.leaf.Cast(start, end)
	}
	return Closer(t.cast(n.left, start, end), t.cast(n.right, start, end))
}

func (t *BVH) Debug(d Drawer) {
	if t.root == noChild {
		return
	}
	t.debug(d, t.root, 0)
}

func (t *BVH) debug(d Drawer, idx int32, depth int) {
	n := &t.nodes[idx]
	if n.isLeaf() {
		n.leaf.Debug(d)
		return
	}
	d.DrawBox(n.bounds, depthColor(depth))
	t.debug(d, n.left, depth+1)
	t.debug(d, n.right, depth+1)
}

// depthColor fades from yellow at the root towards blue.
func depthColor(depth int) color.RGBA {
	shade := uint8(min(depth*32, 224))
	return color.RGBA{R: 255 - shade, G: 255 - shade, B: shade, A: 160}
}

// Len returns the number of leaves.
func (t *BVH) Len() int {
	n := 0
	for i := range t.nodes {
		if t.nodes[i].isLeaf() {
			n++
		}
	}
	return n
}

// Depth returns the number of levels, 0 for an empty tree.
func (t *BVH) Depth() int {
	if t.root == noChild {
		return 0
	}
	return t.depth(t.root)
}

func (t *BVH) depth(idx int32) int {
	n := &t.nodes[idx]
	if n.isLeaf() {
		return 1
	}
	return 1 + max(t.depth(n.left), t.depth(n.right))
}

// Destroy drops all nodes. Payloads are left untouched.
func (t *BVH) Destroy() {
	t.nodes = nil
	t.root = noChild
}
