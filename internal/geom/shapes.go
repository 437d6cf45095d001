package geom

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Sphere struct {
	Center rl.Vector3
	Radius float32
}

func (s Sphere) Intersects(o Sphere) bool {
	r := s.Radius + o.Radius
	d := rl.Vector3Subtract(s.Center, o.Center)
	return rl.Vector3DotProduct(d, d) <= r*r
}

// Plane is a point on the plane plus its unit normal. The normal points to
// the free side.
type Plane struct {
	Origin rl.Vector3
	Normal rl.Vector3
}

func (p Plane) SignedDistance(point rl.Vector3) float32 {
	return rl.Vector3DotProduct(rl.Vector3Subtract(point, p.Origin), p.Normal)
}

// SupportCorner returns the corner of box that lies furthest against the
// normal, i.e. the corner that reaches the plane first.
func (p Plane) SupportCorner(box AABB) rl.Vector3 {
	c := box.Min
	if p.Normal.X < 0 {
		c.X = box.Max.X
	}
	if p.Normal.Y < 0 {
		c.Y = box.Max.Y
	}
	if p.Normal.Z < 0 {
		c.Z = box.Max.Z
	}
	return c
}

// Triangle represents a single triangle with precomputed normal
type Triangle struct {
	V0, V1, V2 rl.Vector3
	Normal     rl.Vector3
}

func NewTriangle(v0, v1, v2 rl.Vector3) Triangle {
	edge1 := rl.Vector3Subtract(v1, v0)
	edge2 := rl.Vector3Subtract(v2, v0)
	normal := rl.Vector3Normalize(rl.Vector3CrossProduct(edge1, edge2))
	return Triangle{V0: v0, V1: v1, V2: v2, Normal: normal}
}

// Transform moves the triangle into the space of t and recomputes the normal.
func (tri Triangle) Transform(t Transform) Triangle {
	m := t.Matrix()
	return NewTriangle(
		rl.Vector3Transform(tri.V0, m),
		rl.Vector3Transform(tri.V1, m),
		rl.Vector3Transform(tri.V2, m),
	)
}

func (tri Triangle) Bounds() AABB {
	return AABB{
		Min: rl.Vector3Min(rl.Vector3Min(tri.V0, tri.V1), tri.V2),
		Max: rl.Vector3Max(rl.Vector3Max(tri.V0, tri.V1), tri.V2),
	}
}

// SphereIntersect tests sphere vs triangle and returns the push that moves
// the sphere out.
func (tri Triangle) SphereIntersect(center rl.Vector3, radius float32) (bool, rl.Vector3) {
	closest := tri.ClosestPoint(center)

	diff := rl.Vector3Subtract(center, closest)
	distSq := rl.Vector3DotProduct(diff, diff)
	if distSq >= radius*radius {
		return false, rl.Vector3{}
	}

	dist := math32.Sqrt(distSq)
	if dist < 0.0001 {
		// Center is on triangle, push along normal
		return true, rl.Vector3Scale(tri.Normal, radius)
	}

	pushDir := rl.Vector3Scale(diff, 1.0/dist)
	return true, rl.Vector3Scale(pushDir, radius-dist)
}

// ClosestPoint finds the closest point on the triangle to p using the
// Voronoi region walk from Real-Time Collision Detection.
func (tri Triangle) ClosestPoint(p rl.Vector3) rl.Vector3 {
	a, b, c := tri.V0, tri.V1, tri.V2

	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ap := rl.Vector3Subtract(p, a)

	d1 := rl.Vector3DotProduct(ab, ap)
	d2 := rl.Vector3DotProduct(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := rl.Vector3Subtract(p, b)
	d3 := rl.Vector3DotProduct(ab, bp)
	d4 := rl.Vector3DotProduct(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return rl.Vector3Add(a, rl.Vector3Scale(ab, v))
	}

	cp := rl.Vector3Subtract(p, c)
	d5 := rl.Vector3DotProduct(ab, cp)
	d6 := rl.Vector3DotProduct(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return rl.Vector3Add(a, rl.Vector3Scale(ac, w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return rl.Vector3Add(b, rl.Vector3Scale(rl.Vector3Subtract(c, b), w))
	}

	// Inside face region
	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return rl.Vector3Add(a, rl.Vector3Add(rl.Vector3Scale(ab, v), rl.Vector3Scale(ac, w)))
}
