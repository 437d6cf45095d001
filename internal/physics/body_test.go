package physics

import (
	"collide3d/internal/config"
	"collide3d/internal/engine"
	"collide3d/internal/geom"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unit = rl.Vector3{X: 1, Y: 1, Z: 1}

func boxBody(name string, pos, size rl.Vector3) *Body {
	g := engine.NewMeshObject(name, geom.NewAABBFromCenter(rl.Vector3{}, size))
	g.Transform.Position = pos
	return NewBody(g)
}

func newTestScene() *Scene {
	return NewScene(config.Default(), nil)
}

func assertVec(t *testing.T, want, got rl.Vector3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, 1e-5, msgAndArgs...)
}

func TestIsKinetic(t *testing.T) {
	b := NewGhostBody(nil, geom.NewAABBFromCenter(rl.Vector3{}, unit))
	assert.True(t, b.IsKinetic())
	b.Stationary = true
	assert.False(t, b.IsKinetic())
	b.Stationary = false
	b.Static = true
	assert.False(t, b.IsKinetic())
}

func TestSetMass(t *testing.T) {
	b := NewGhostBody(nil, geom.AABB{})
	b.SetMass(4)
	assert.Equal(t, float32(4), b.Mass)
	assert.Equal(t, float32(0.25), b.InverseMass)

	b.SetMass(0)
	assert.Equal(t, float32(0), b.InverseMass, "zero mass means infinite mass")
	b.SetMass(-3)
	assert.Equal(t, float32(0), b.InverseMass)
}

func TestBodyWithoutEntityIsInert(t *testing.T) {
	b := NewGhostBody(nil, geom.NewAABBFromCenter(rl.Vector3{}, unit))
	assert.Nil(t, b.Entity())
	assert.Equal(t, geom.Identity(), b.Transform())

	moved := geom.Identity()
	moved.Position = rl.Vector3{X: 5}
	b.SetTransform(moved)
	assert.Equal(t, geom.Identity(), b.Transform())

	s := newTestScene()
	h := b.Construct(s)
	assert.False(t, h.IsZero())
	assert.NotPanics(t, func() { s.Tick(1.0 / 60) })
	assertVec(t, rl.Vector3{X: -0.5, Y: -0.5, Z: -0.5}, b.WorldBounds.Min)
}

func TestOwnerMeshBoundsDriveWorldBounds(t *testing.T) {
	b := boxBody("crate", rl.Vector3{X: 3, Y: 1}, rl.Vector3{X: 2, Y: 2, Z: 2})
	b.Owner.Transform.Scale = rl.Vector3{X: 2, Y: 1, Z: 1}
	b.CalculateBounds()

	assertVec(t, rl.Vector3{X: 1, Y: 0, Z: -1}, b.WorldBounds.Min)
	assertVec(t, rl.Vector3{X: 5, Y: 2, Z: 1}, b.WorldBounds.Max)
	assert.Equal(t, b.WorldBounds.Center(), b.Sphere.Center)
}

func TestSolvePositionZeroDistanceIsNoop(t *testing.T) {
	b := boxBody("b", rl.Vector3{X: 1, Y: 2, Z: 3}, unit)
	resp := CollisionResponse{Normal: rl.Vector3{Y: 1}, Distance: 0}

	SolvePosition(b, resp)
	SolvePosition(b, resp)

	assert.Equal(t, rl.Vector3{X: 1, Y: 2, Z: 3}, b.Transform().Position)
	assert.Equal(t, rl.Vector3{}, b.Normal)
}

func TestSolvePositionMovesAgainstNormal(t *testing.T) {
	b := boxBody("b", rl.Vector3{}, unit)
	Solve(SolverPosition, b, CollisionResponse{Normal: rl.Vector3{X: 1}, Distance: 0.25})

	assertVec(t, rl.Vector3{X: -0.25}, b.Transform().Position)
	assertVec(t, rl.Vector3{X: -0.25}, b.Normal)
}

func TestSolvePositionSkipsImmovable(t *testing.T) {
	resp := CollisionResponse{Normal: rl.Vector3{X: 1}, Distance: 1}

	static := boxBody("static", rl.Vector3{}, unit)
	static.Static = true
	SolvePosition(static, resp)
	assert.Equal(t, rl.Vector3{}, static.Transform().Position)

	stationary := boxBody("stationary", rl.Vector3{}, unit)
	stationary.Stationary = true
	SolvePosition(stationary, resp)
	assert.Equal(t, rl.Vector3{}, stationary.Transform().Position)

	heavy := boxBody("heavy", rl.Vector3{}, unit)
	heavy.SetMass(0)
	SolvePosition(heavy, resp)
	assert.Equal(t, rl.Vector3{}, heavy.Transform().Position)
}

func TestTickAppliesAndClearsDepenetration(t *testing.T) {
	b := boxBody("b", rl.Vector3{}, unit)
	b.Depenetration = rl.Vector3{Y: -0.5}
	b.Tick()

	assertVec(t, rl.Vector3{Y: 0.5}, b.Transform().Position)
	assert.Equal(t, rl.Vector3{}, b.Depenetration)
	assertVec(t, rl.Vector3{Y: 0.5}, b.WorldBounds.Center(), "bounds follow the correction")

	b.Tick()
	assertVec(t, rl.Vector3{Y: 0.5}, b.Transform().Position)
}

func TestTickReflectsVelocity(t *testing.T) {
	b := boxBody("b", rl.Vector3{}, unit)
	b.Restitution = 1
	b.Friction = 0
	b.LinearVelocity = rl.Vector3{Y: -4, X: 1}
	b.Depenetration = rl.Vector3{Y: -0.1} // pushed up

	b.Tick()
	assertVec(t, rl.Vector3{X: 1, Y: 4}, b.LinearVelocity)
}

func TestPlaneCollisionSign(t *testing.T) {
	plane := NewPlaneBody(engine.NewGameObject("ground"), rl.Vector3{Y: 1}, 50, 1)
	plane.CalculateBounds()

	above := boxBody("above", rl.Vector3{Y: 2}, unit)
	above.CalculateBounds()
	plane.Collision(above)
	assert.Equal(t, rl.Vector3{}, above.Depenetration)
	assert.False(t, above.InContact())

	sunk := boxBody("sunk", rl.Vector3{Y: 0.25}, unit)
	sunk.CalculateBounds()
	plane.Collision(sunk)
	// Nearest corner is 0.25 below the plane.
	assertVec(t, rl.Vector3{Y: -0.25}, sunk.Depenetration)
	require.Len(t, sunk.Contacts(), 1)
	assert.InDelta(t, 0.25, sunk.Contacts()[0].Response.Distance, 1e-5)
	assertVec(t, rl.Vector3{Y: 1}, sunk.Contacts()[0].Response.Normal)

	sunk.Tick()
	assertVec(t, rl.Vector3{Y: 0.5}, sunk.Transform().Position)
}

func TestPlanePushesOtherWhenOtherIsActive(t *testing.T) {
	plane := NewPlaneBody(engine.NewGameObject("ground"), rl.Vector3{Y: 1}, 50, 1)
	plane.CalculateBounds()
	box := boxBody("box", rl.Vector3{Y: 0.4}, unit)
	box.CalculateBounds()

	box.Collision(plane)
	assertVec(t, rl.Vector3{Y: -0.1}, box.Depenetration)
	assert.Equal(t, rl.Vector3{}, plane.Depenetration)
}

func TestTwoSidedPlanePushesFromBelow(t *testing.T) {
	plane := NewPlaneBody(engine.NewGameObject("glass"), rl.Vector3{Y: 1}, 50, 1)
	plane.Plane.TwoSided = true
	plane.CalculateBounds()

	below := boxBody("below", rl.Vector3{Y: -0.25}, unit)
	below.CalculateBounds()
	plane.Collision(below)
	below.Tick()
	assertVec(t, rl.Vector3{Y: -0.5}, below.Transform().Position)
}

func TestRotatedPlaneUsesWorldNormal(t *testing.T) {
	wall := NewPlaneBody(engine.NewGameObject("wall"), rl.Vector3{Y: 1}, 10, 1)
	// Rotating +Y by -90 degrees about Z gives +X.
	wall.Ghost.Transform.Rotation = rl.Vector3{Z: -90}
	wall.CalculateBounds()
	assertVec(t, rl.Vector3{X: 1}, wall.Plane.World().Normal)
}

func TestTriggerRecordsWithoutPushing(t *testing.T) {
	trigger := NewTriggerBody(engine.NewGameObject("zone"), geom.NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 4, Y: 4, Z: 4}), nil)
	player := boxBody("player", rl.Vector3{X: 0.5}, unit)
	trigger.CalculateBounds()
	player.CalculateBounds()

	trigger.Collision(player)
	assert.True(t, trigger.Trigger.Contains(player.Owner))
	assert.Equal(t, rl.Vector3{}, player.Depenetration)
	assert.False(t, player.InContact())
	assert.False(t, trigger.InContact())
}

func TestMeshBodyPushesSphereOut(t *testing.T) {
	mesh := groundMesh()
	mesh.CalculateBounds()
	require.Equal(t, 2, mesh.Mesh.TriangleCount())

	box := boxBody("box", rl.Vector3{Y: 0.3}, unit)
	box.CalculateBounds()
	box.Collision(mesh)
	box.Tick()

	assertVec(t, rl.Vector3{Y: 0.5}, box.Transform().Position)
	require.Len(t, box.Contacts(), 1)
	assertVec(t, rl.Vector3{Y: 1}, box.Contacts()[0].Response.Normal)
}

func TestMeshBodyCast(t *testing.T) {
	mesh := groundMesh()
	mesh.CalculateBounds()

	hit := mesh.Cast(rl.Vector3{X: 1, Y: 5, Z: -2}, rl.Vector3{X: 1, Y: -5, Z: -2})
	require.True(t, hit.Hit)
	assert.InDelta(t, 5, hit.Distance, 1e-4)
	assert.Same(t, mesh, hit.Object)

	assert.False(t, mesh.Cast(rl.Vector3{X: 20, Y: 5}, rl.Vector3{X: 20, Y: -5}).Hit)
}

func groundMesh() *Body {
	tris := []geom.Triangle{
		geom.NewTriangle(rl.Vector3{X: -5, Z: -5}, rl.Vector3{X: -5, Z: 5}, rl.Vector3{X: 5, Z: 5}),
		geom.NewTriangle(rl.Vector3{X: -5, Z: -5}, rl.Vector3{X: 5, Z: 5}, rl.Vector3{X: 5, Z: -5}),
	}
	return NewMeshBody(engine.NewGameObject("terrain"), tris)
}

func TestIntegrators(t *testing.T) {
	semi := boxBody("semi", rl.Vector3{}, unit)
	semi.Integrator = IntegratorSemiImplicitEuler
	semi.AffectedByGravity = true
	semi.Gravity = rl.Vector3{Y: -20}
	semi.Integrate(0.1)
	assertVec(t, rl.Vector3{Y: -2}, semi.LinearVelocity)
	assertVec(t, rl.Vector3{Y: -0.2}, semi.Transform().Position)

	euler := boxBody("euler", rl.Vector3{}, unit)
	euler.Integrator = IntegratorEuler
	euler.AffectedByGravity = true
	euler.Gravity = rl.Vector3{Y: -20}
	euler.Integrate(0.1)
	assertVec(t, rl.Vector3{Y: -2}, euler.LinearVelocity)
	assertVec(t, rl.Vector3{}, euler.Transform().Position)

	none := boxBody("none", rl.Vector3{}, unit)
	none.AffectedByGravity = true
	none.Gravity = rl.Vector3{Y: -20}
	none.Integrate(0.1)
	assert.Equal(t, rl.Vector3{}, none.LinearVelocity)
}

func TestAccelerationIsConsumed(t *testing.T) {
	b := boxBody("b", rl.Vector3{}, unit)
	b.Integrator = IntegratorSemiImplicitEuler
	b.CanSleep = false
	b.Acceleration = rl.Vector3{X: 10}
	b.Integrate(0.5)

	assertVec(t, rl.Vector3{X: 5}, b.LinearVelocity)
	assert.Equal(t, rl.Vector3{}, b.Acceleration)
}

func TestSleepAndWake(t *testing.T) {
	sleep := SleepSettings{Velocity: 0.3, Time: 0.3, Wake: 0.6}
	b := boxBody("b", rl.Vector3{}, unit)
	b.Integrator = IntegratorSemiImplicitEuler

	for i := 0; i < 4; i++ {
		b.Integrate(0.1)
		b.TrySleep(0.1, sleep)
	}
	assert.True(t, b.Sleeping)

	b.LinearVelocity = rl.Vector3{X: 3}
	b.Integrate(0.1)
	assertVec(t, rl.Vector3{}, b.Transform().Position, "sleeping bodies do not move")

	b.Wake()
	assert.False(t, b.Sleeping)
	b.Integrate(0.1)
	assert.Greater(t, b.Transform().Position.X, float32(0))
}

func TestIgnoreNeedsRegisteredBody(t *testing.T) {
	a := boxBody("a", rl.Vector3{}, unit)
	b := boxBody("b", rl.Vector3{}, unit)
	a.Ignore(b, false)
	assert.False(t, a.ShouldIgnoreBody(b))

	s := newTestScene()
	a.Construct(s)
	b.Construct(s)
	a.Ignore(b, false)
	a.Ignore(b, false)
	assert.True(t, a.ShouldIgnoreBody(b))
	assert.False(t, b.ShouldIgnoreBody(a))

	a.Ignore(b, true)
	assert.False(t, a.ShouldIgnoreBody(b))

	a.IgnoreEntity(b.Owner, false)
	assert.True(t, a.ShouldIgnoreBody(b))
	a.IgnoreEntity(b.Owner, true)
	assert.False(t, a.ShouldIgnoreBody(b))
}

func TestBodyCastAndQuery(t *testing.T) {
	b := boxBody("b", rl.Vector3{}, unit)
	b.CalculateBounds()

	hit := b.Cast(rl.Vector3{X: -2}, rl.Vector3{X: 2})
	require.True(t, hit.Hit)
	assert.InDelta(t, 1.5, hit.Distance, 1e-5)
	assert.Same(t, b, hit.Object)

	b.Block = false
	assert.False(t, b.Cast(rl.Vector3{X: -2}, rl.Vector3{X: 2}).Hit)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Plane", BodyPlane.String())
	assert.Equal(t, "Trigger", BodyTrigger.String())
	assert.Equal(t, "Position", SolverPosition.String())
	assert.Equal(t, "Unknown", BodyType(42).String())
}
