package geom

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// LineHit describes where a segment first enters a box.
// Distance is measured in world units from the segment start.
type LineHit struct {
	Hit      bool
	Distance float32
	Position rl.Vector3
	Normal   rl.Vector3
}

// LineInBoundingBox clips the segment start->end against the box slabs.
// A segment starting inside the box hits at distance 0.
func LineInBoundingBox(start, end rl.Vector3, box AABB) LineHit {
	if box.ContainsPoint(start) {
		return LineHit{Hit: true, Position: start}
	}

	dir := rl.Vector3Subtract(end, start)
	tmin := float32(0)
	tmax := float32(1)

	origin := [3]float32{start.X, start.Y, start.Z}
	d := [3]float32{dir.X, dir.Y, dir.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}
	entryAxis := -1

	for axis := 0; axis < 3; axis++ {
		if d[axis] == 0 {
			// Parallel to this slab: must already be between the planes
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return LineHit{}
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / d[axis]
		t2 := (hi[axis] - origin[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
			entryAxis = axis
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return LineHit{}
		}
	}

	if entryAxis < 0 {
		return LineHit{}
	}

	var normal rl.Vector3
	sign := float32(-1)
	if d[entryAxis] < 0 {
		sign = 1
	}
	switch entryAxis {
	case 0:
		normal.X = sign
	case 1:
		normal.Y = sign
	default:
		normal.Z = sign
	}

	return LineHit{
		Hit:      true,
		Distance: tmin * rl.Vector3Length(dir),
		Position: rl.Vector3Add(start, rl.Vector3Scale(dir, tmin)),
		Normal:   normal,
	}
}
