package spatial

import (
	"collide3d/internal/geom"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	DefaultOctreeDepth    = 6
	DefaultOctreeCapacity = 8
)

type octant struct {
	bounds   geom.AABB
	objects  []Testable
	children [8]int32 // noChild until split
	depth    int
}

// Octree partitions a fixed region into nested octants. Each object lives in
// the deepest octant that fully contains it, so large objects stay near the
// root. Objects outside the root region are kept at the root.
type Octree struct {
	nodes    []octant
	maxDepth int
	capacity int
	count    int
}

func NewOctree(region geom.AABB, maxDepth, capacity int) *Octree {
	if maxDepth <= 0 {
		maxDepth = DefaultOctreeDepth
	}
	if capacity <= 0 {
		capacity = DefaultOctreeCapacity
	}
	o := &Octree{maxDepth: maxDepth, capacity: capacity}
	o.nodes = append(o.nodes, newOctant(region, 0))
	return o
}

func newOctant(bounds geom.AABB, depth int) octant {
	return octant{
		bounds:   bounds,
		children: [8]int32{noChild, noChild, noChild, noChild, noChild, noChild, noChild, noChild},
		depth:    depth,
	}
}

func (o *Octree) Insert(objects ...Testable) {
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		o.insert(0, obj)
		o.count++
	}
}

func (o *Octree) insert(idx int32, obj Testable) {
	b := obj.Bounds()
	for {
		n := &o.nodes[idx]
		if n.children[0] == noChild {
			n.objects = append(n.objects, obj)
			if len(n.objects) > o.capacity && n.depth < o.maxDepth {
				o.split(idx)
			}
			return
		}
		next := o.childContaining(idx, b)
		if next == noChild {
			n.objects = append(n.objects, obj)
			return
		}
		idx = next
	}
}

// split creates the eight children and pushes down whatever fits.
func (o *Octree) split(idx int32) {
	parent := o.nodes[idx]
	center := parent.bounds.Center()
	var children [8]int32
	for i := 0; i < 8; i++ {
		child := geom.AABB{Min: parent.bounds.Min, Max: center}
		if i&1 != 0 {
			child.Min.X, child.Max.X = center.X, parent.bounds.Max.X
		}
		if i&2 != 0 {
			child.Min.Y, child.Max.Y = center.Y, parent.bounds.Max.Y
		}
		if i&4 != 0 {
			child.Min.Z, child.Max.Z = center.Z, parent.bounds.Max.Z
		}
		o.nodes = append(o.nodes, newOctant(child, parent.depth+1))
		children[i] = int32(len(o.nodes) - 1)
	}
	o.nodes[idx].children = children

	kept := parent.objects[:0]
	for _, obj := range parent.objects {
		next := o.childContaining(idx, obj.Bounds())
		if next == noChild {
			kept = append(kept, obj)
			continue
		}
		o.insert(next, obj)
	}
	o.nodes[idx].objects = kept
}

func (o *Octree) childContaining(idx int32, b geom.AABB) int32 {
	for _, c := range o.nodes[idx].children {
		if c != noChild && o.nodes[c].bounds.Contains(b) {
			return c
		}
	}
	return noChild
}

func (o *Octree) Bounds() geom.AABB {
	return o.nodes[0].bounds
}

func (o *Octree) Query(box geom.AABB, result *QueryResult) {
	o.query(0, box, result, true)
}

func (o *Octree) query(idx int32, box geom.AABB, result *QueryResult, root bool) {
	n := &o.nodes[idx]
	// The root may hold objects outside its region, so it is always scanned.
	if !root && !n.bounds.Intersects(box) {
		return
	}
	for _, obj := range n.objects {
		obj.Query(box, result)
	}
	for _, c := range n.children {
		if c != noChild {
			o.query(c, box, result, false)
		}
	}
}

func (o *Octree) Cast(start, end rl.Vector3) Hit {
	return o.cast(0, start, end, true)
}

func (o *Octree) cast(idx int32, start, end rl.Vector3, root bool) Hit {
	n := &o.nodes[idx]
	if !root && !geom.LineInBoundingBox(start, end, n.bounds).Hit {
		return Hit{}
	}
	var best Hit
	for _, obj := range n.objects {
		best = Closer(best, obj.Cast(start, end))
	}
	for _, c := range n.children {
		if c != noChild {
			best = Closer(best, o.cast(c, start, end, false))
		}
	}
	return best
}

func (o *Octree) Debug(d Drawer) {
	for i := range o.nodes {
		n := &o.nodes[i]
		if len(n.objects) > 0 {
			d.DrawBox(n.bounds, depthColor(n.depth))
		}
	}
}

func (o *Octree) Len() int {
	return o.count
}

// Destroy drops everything below the root region.
func (o *Octree) Destroy() {
	region := o.nodes[0].bounds
	o.nodes = o.nodes[:0]
	o.nodes = append(o.nodes, newOctant(region, 0))
	o.count = 0
}
