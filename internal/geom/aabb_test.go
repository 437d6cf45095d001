package geom

import (
	"math/rand/v2"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBox(rng *rand.Rand) AABB {
	center := rl.Vector3{
		X: rng.Float32()*20 - 10,
		Y: rng.Float32()*20 - 10,
		Z: rng.Float32()*20 - 10,
	}
	size := rl.Vector3{X: rng.Float32() * 4, Y: rng.Float32() * 4, Z: rng.Float32() * 4}
	return NewAABBFromCenter(center, size)
}

func TestIntersectsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		a, b := randomBox(rng), randomBox(rng)
		assert.Equal(t, a.Intersects(b), b.Intersects(a))
	}
}

func TestIntersectsReflexive(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 100; i++ {
		a := randomBox(rng)
		assert.True(t, a.Intersects(a))
	}
}

func TestIntersectsTouching(t *testing.T) {
	a := NewAABB(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	b := NewAABB(rl.Vector3{X: 1}, rl.Vector3{X: 2, Y: 1, Z: 1})
	assert.True(t, a.Intersects(b), "touching faces count as intersecting")

	c := NewAABB(rl.Vector3{X: 1.01}, rl.Vector3{X: 2, Y: 1, Z: 1})
	assert.False(t, a.Intersects(c))
}

func TestIntersectsDegenerate(t *testing.T) {
	point := NewAABB(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	box := NewAABB(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	assert.True(t, point.Intersects(box))
	assert.True(t, point.Intersects(point))

	outside := NewAABB(rl.Vector3{X: 2, Y: 2, Z: 2}, rl.Vector3{X: 2, Y: 2, Z: 2})
	assert.False(t, outside.Intersects(box))
}

func TestCombineContainsBoth(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 200; i++ {
		a, b := randomBox(rng), randomBox(rng)
		c := Combine(a, b)
		assert.True(t, c.Contains(a))
		assert.True(t, c.Contains(b))
	}
}

func TestCombineWithEmpty(t *testing.T) {
	a := NewAABB(rl.Vector3{X: -1}, rl.Vector3{X: 1, Y: 2, Z: 3})
	assert.True(t, EmptyAABB().IsEmpty())
	assert.Equal(t, a, Combine(EmptyAABB(), a))
}

func TestResolvePicksShallowestAxis(t *testing.T) {
	a := NewAABB(rl.Vector3{X: 0.5}, rl.Vector3{X: 1.5, Y: 1, Z: 1})
	b := NewAABB(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	assert.Equal(t, rl.Vector3{X: 0.5}, a.Resolve(b))

	far := NewAABB(rl.Vector3{X: 5}, rl.Vector3{X: 6, Y: 1, Z: 1})
	assert.Equal(t, rl.Vector3Zero(), far.Resolve(b))
}

func TestTransformTranslatesAndScales(t *testing.T) {
	local := NewAABB(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	world := local.Transform(Transform{
		Position: rl.Vector3{X: 2, Y: 3, Z: 4},
		Scale:    rl.Vector3{X: 2, Y: 1, Z: 1},
	})
	assert.InDelta(t, 2, world.Min.X, 1e-5)
	assert.InDelta(t, 4, world.Max.X, 1e-5)
	assert.InDelta(t, 3, world.Min.Y, 1e-5)
	assert.InDelta(t, 5, world.Max.Z, 1e-5)
}

func TestTransformRotationGrowsBounds(t *testing.T) {
	local := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 2, Y: 1, Z: 1})
	world := local.Transform(Transform{
		Rotation: rl.Vector3{Z: 90},
		Scale:    rl.Vector3One(),
	})
	size := world.Size()
	assert.InDelta(t, 1, size.X, 1e-4)
	assert.InDelta(t, 2, size.Y, 1e-4)
	assert.InDelta(t, 1, size.Z, 1e-4)
}

func TestLineInBoundingBoxEntry(t *testing.T) {
	box := NewAABB(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	hit := LineInBoundingBox(rl.Vector3{X: -1, Y: 0.5, Z: 0.5}, rl.Vector3{X: 2, Y: 0.5, Z: 0.5}, box)

	require.True(t, hit.Hit)
	assert.InDelta(t, 1.0, hit.Distance, 1e-5)
	assert.InDelta(t, 0, hit.Position.X, 1e-5)
	assert.InDelta(t, 0.5, hit.Position.Y, 1e-5)
	assert.InDelta(t, 0.5, hit.Position.Z, 1e-5)
	assert.Equal(t, rl.Vector3{X: -1}, hit.Normal)
}

func TestLineInBoundingBoxStartInside(t *testing.T) {
	box := NewAABB(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	start := rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}
	hit := LineInBoundingBox(start, rl.Vector3{X: 5, Y: 5, Z: 5}, box)

	require.True(t, hit.Hit)
	assert.Equal(t, float32(0), hit.Distance)
	assert.Equal(t, start, hit.Position)
}

func TestLineInBoundingBoxMisses(t *testing.T) {
	box := NewAABB(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	parallel := LineInBoundingBox(rl.Vector3{X: -1, Y: 2, Z: 0.5}, rl.Vector3{X: 2, Y: 2, Z: 0.5}, box)
	assert.False(t, parallel.Hit)

	short := LineInBoundingBox(rl.Vector3{X: -3, Y: 0.5, Z: 0.5}, rl.Vector3{X: -1, Y: 0.5, Z: 0.5}, box)
	assert.False(t, short.Hit, "segment ends before the box")

	away := LineInBoundingBox(rl.Vector3{X: -1, Y: 0.5, Z: 0.5}, rl.Vector3{X: -4, Y: 0.5, Z: 0.5}, box)
	assert.False(t, away.Hit)
}

func TestPlaneSupportCorner(t *testing.T) {
	box := NewAABB(rl.Vector3{X: -1, Y: 2, Z: -1}, rl.Vector3{X: 1, Y: 3, Z: 1})
	up := Plane{Normal: rl.Vector3{Y: 1}}
	assert.Equal(t, float32(2), up.SignedDistance(up.SupportCorner(box)))

	down := Plane{Normal: rl.Vector3{Y: -1}}
	assert.Equal(t, float32(-3), down.SignedDistance(down.SupportCorner(box)))
}

func TestTriangleClosestPointAndPush(t *testing.T) {
	tri := NewTriangle(rl.Vector3{}, rl.Vector3{X: 1}, rl.Vector3{Z: 1})
	p := tri.ClosestPoint(rl.Vector3{X: 0.2, Y: 1, Z: 0.2})
	assert.InDelta(t, 0.2, p.X, 1e-6)
	assert.InDelta(t, 0, p.Y, 1e-6)
	assert.InDelta(t, 0.2, p.Z, 1e-6)

	hit, push := tri.SphereIntersect(rl.Vector3{X: 0.2, Y: 0.5, Z: 0.2}, 1)
	require.True(t, hit)
	assert.InDelta(t, 0.5, push.Y, 1e-5)

	miss, _ := tri.SphereIntersect(rl.Vector3{X: 0.2, Y: 2, Z: 0.2}, 1)
	assert.False(t, miss)
}
