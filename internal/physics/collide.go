package physics

import (
	"collide3d/internal/geom"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// collide is the narrow phase for an active body a and a blocking body b.
// Every "who pushes whom" rule lives here:
//   - a trigger records the other entity and pushes nothing
//   - a plane pushes the non-plane body
//   - a triangle mesh pushes the other body
//   - between two boxes, b takes the whole correction if it can move,
//     otherwise a does
func collide(a, b *Body) {
	switch {
	case a.Type == BodyTrigger:
		enterTrigger(a, b)
	case b.Type == BodyTrigger:
		enterTrigger(b, a)
	case a.Type == BodyPlane && b.Type == BodyPlane:
	case a.Type == BodyPlane:
		collidePlane(a, b)
	case b.Type == BodyPlane:
		collidePlane(b, a)
	case a.Type == BodyTriangleMesh && b.Type == BodyTriangleMesh:
	case a.Type == BodyTriangleMesh:
		collideMesh(a, b)
	case b.Type == BodyTriangleMesh:
		collideMesh(b, a)
	default:
		collideBoxes(a, b)
	}
}

func enterTrigger(trigger, other *Body) {
	if trigger.Trigger == nil || other.Type == BodyTrigger {
		return
	}
	trigger.Trigger.insert(other.Entity())
}

// collidePlane pushes other out along the plane normal, measuring from the
// corner of its box that reaches the plane first.
func collidePlane(plane, other *Body) {
	if plane.Plane == nil {
		return
	}
	p := plane.Plane.World()
	box := other.effectiveBounds()
	if plane.Plane.TwoSided && p.SignedDistance(box.Center()) < 0 {
		p.Normal = rl.Vector3Negate(p.Normal)
	}

	d := p.SignedDistance(p.SupportCorner(box))
	if d > 0 {
		return
	}
	if other.movable() {
		other.Depenetration = rl.Vector3Add(other.Depenetration, rl.Vector3Scale(p.Normal, d))
	}
	touch(other, plane, CollisionResponse{Normal: p.Normal, Distance: -d})
}

// collideMesh treats other as a sphere of half its smallest dimension and
// pushes it out of the mesh triangles.
func collideMesh(mesh, other *Body) {
	if mesh.Mesh == nil {
		return
	}
	box := other.effectiveBounds()
	size := box.Size()
	radius := min(size.X, size.Y, size.Z) * 0.5

	hit, push := mesh.Mesh.SphereIntersect(box.Center(), radius)
	if !hit {
		return
	}
	d := rl.Vector3Length(push)
	if d == 0 {
		return
	}
	if other.movable() {
		other.Depenetration = rl.Vector3Subtract(other.Depenetration, push)
	}
	touch(other, mesh, CollisionResponse{Normal: rl.Vector3Scale(push, 1/d), Distance: d})
}

func collideBoxes(a, b *Body) {
	ea, eb := a.effectiveBounds(), b.effectiveBounds()
	if !ea.Intersects(eb) {
		if a.Continuous && a.movable() {
			sweepBox(a, b, ea, eb)
		}
		return
	}

	if b.movable() {
		mtv := eb.Resolve(ea)
		d := rl.Vector3Length(mtv)
		if d == 0 {
			return
		}
		b.Depenetration = rl.Vector3Subtract(b.Depenetration, mtv)
		touch(b, a, CollisionResponse{Normal: rl.Vector3Scale(mtv, 1/d), Distance: d})
		return
	}

	mtv := ea.Resolve(eb)
	d := rl.Vector3Length(mtv)
	if d == 0 {
		return
	}
	if a.movable() {
		a.Depenetration = rl.Vector3Subtract(a.Depenetration, mtv)
	}
	touch(a, b, CollisionResponse{Normal: rl.Vector3Scale(mtv, 1/d), Distance: d})
}

// sweepBox catches a continuous body that moved through b during this
// tick. The path of its centre is cast against b grown by a's half size and
// the body is put back at the entry point.
func sweepBox(a, b *Body, ea, eb geom.AABB) {
	half := ea.HalfSize()
	grown := geom.NewAABB(rl.Vector3Subtract(eb.Min, half), rl.Vector3Add(eb.Max, half))
	from := a.localBounds().Transform(a.previous).Center()
	to := ea.Center()

	hit := geom.LineInBoundingBox(from, to, grown)
	if !hit.Hit || hit.Distance == 0 {
		return
	}
	back := rl.Vector3Subtract(to, hit.Position)
	d := rl.Vector3Length(back)
	if d == 0 {
		return
	}
	a.Depenetration = rl.Vector3Add(a.Depenetration, back)
	touch(a, b, CollisionResponse{Normal: hit.Normal, Distance: d})
}

// touch records the contact on both bodies. resp belongs to pushed; the
// other side gets the mirrored normal.
func touch(pushed, pusher *Body, resp CollisionResponse) {
	mirrored := CollisionResponse{Normal: rl.Vector3Negate(resp.Normal), Distance: resp.Distance}
	added := pushed.addContact(pusher, resp)
	pusher.addContact(pushed, mirrored)

	if s := pushed.scene; s != nil {
		s.recordCollision(pushed, pusher, added)
	}
}
