// Package spatial holds the acceleration structures used to answer box
// overlap queries and ray casts without scanning every object.
package spatial

import (
	"collide3d/internal/geom"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Testable is implemented by anything that can be queried uniformly:
// bodies, plain boxes and the structures themselves.
type Testable interface {
	Bounds() geom.AABB
	Query(box geom.AABB, result *QueryResult)
	Cast(start, end rl.Vector3) Hit
	Debug(d Drawer)
}

// Drawer receives debug geometry. Implemented by the raylib debug renderer.
type Drawer interface {
	DrawBox(box geom.AABB, c color.RGBA)
	DrawLine(start, end rl.Vector3, c color.RGBA)
}

// Hit is a cast result plus the object that produced it.
type Hit struct {
	geom.LineHit
	Object Testable
}

// Closer returns whichever hit is nearer. Misses always lose.
func Closer(a, b Hit) Hit {
	if !b.Hit {
		return a
	}
	if !a.Hit || b.Distance < a.Distance {
		return b
	}
	return a
}

// QueryResult is an insertion-ordered set of Testables. Objects stored in
// several cells are reported once.
type QueryResult struct {
	items []Testable
	seen  map[Testable]struct{}
}

func NewQueryResult() *QueryResult {
	return &QueryResult{seen: make(map[Testable]struct{})}
}

func (r *QueryResult) Add(t Testable) {
	if r.seen == nil {
		r.seen = make(map[Testable]struct{})
	}
	if _, ok := r.seen[t]; ok {
		return
	}
	r.seen[t] = struct{}{}
	r.items = append(r.items, t)
}

func (r *QueryResult) Contains(t Testable) bool {
	_, ok := r.seen[t]
	return ok
}

func (r *QueryResult) Len() int {
	return len(r.items)
}

func (r *QueryResult) Items() []Testable {
	return r.items
}

func (r *QueryResult) Reset() {
	r.items = r.items[:0]
	clear(r.seen)
}

// Box is the simplest Testable: a fixed bounding box with an optional payload.
type Box struct {
	Box     geom.AABB
	Payload any
}

func NewBox(box geom.AABB, payload any) *Box {
	return &Box{Box: box, Payload: payload}
}

func (b *Box) Bounds() geom.AABB {
	return b.Box
}

func (b *Box) Query(box geom.AABB, result *QueryResult) {
	if b.Box.Intersects(box) {
		result.Add(b)
	}
}

func (b *Box) Cast(start, end rl.Vector3) Hit {
	hit := geom.LineInBoundingBox(start, end, b.Box)
	if !hit.Hit {
		return Hit{}
	}
	return Hit{LineHit: hit, Object: b}
}

func (b *Box) Debug(d Drawer) {
	d.DrawBox(b.Box, rl.Gray)
}
