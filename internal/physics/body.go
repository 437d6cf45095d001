// Package physics runs the per-tick collision pass over registered bodies
// and answers ray casts and box queries against them.
package physics

import (
	"collide3d/internal/engine"
	"collide3d/internal/geom"
	"collide3d/internal/spatial"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BodyType selects the collision behaviour of a body.
type BodyType int

const (
	BodyAABB BodyType = iota
	BodyTriangleMesh
	BodyPlane
	BodyTrigger
)

func (t BodyType) String() string {
	switch t {
	case BodyAABB:
		return "AABB"
	case BodyTriangleMesh:
		return "TriangleMesh"
	case BodyPlane:
		return "Plane"
	case BodyTrigger:
		return "Trigger"
	}
	return "Unknown"
}

// Integrator selects how velocity is advanced before the collision pass.
type Integrator int

const (
	IntegratorNone Integrator = iota
	IntegratorEuler
	IntegratorSemiImplicitEuler
)

// PhysicalSurface names the material a body is made of. Registered bodies
// with a known surface take restitution and friction from the config.
type PhysicalSurface string

const (
	SurfaceNone     PhysicalSurface = ""
	SurfaceConcrete PhysicalSurface = "concrete"
	SurfaceMetal    PhysicalSurface = "metal"
	SurfaceWood     PhysicalSurface = "wood"
	SurfaceIce      PhysicalSurface = "ice"
	SurfaceRubber   PhysicalSurface = "rubber"
)

// CollisionResponse is a contact normal and a penetration depth. Normal
// points in the direction the body holding the response is pushed.
type CollisionResponse struct {
	Normal   rl.Vector3
	Distance float32
}

// ContactManifold is one body this body touched during the current tick.
type ContactManifold struct {
	Other    Handle
	Response CollisionResponse
}

// Body is the simulated state of one entity.
type Body struct {
	// Owner is a mesh-bearing entity; its MeshBounds are the local bounds.
	// Ghost is any other entity, paired with LocalBounds.
	Owner *engine.GameObject
	Ghost *engine.GameObject

	Type       BodyType
	Integrator Integrator
	Solver     SolverType
	Surface    PhysicalSurface

	LinearVelocity  rl.Vector3
	Acceleration    rl.Vector3
	Gravity         rl.Vector3
	Mass            float32
	InverseMass     float32
	Damping         float32 // velocity kept per 1/60s, 1 = no damping
	Restitution     float32
	Friction        float32
	DragCoefficient float32

	LocalBounds geom.AABB
	WorldBounds geom.AABB
	SweptBounds geom.AABB
	Sphere      geom.Sphere

	// Depenetration is subtracted from the position on Tick.
	Depenetration rl.Vector3
	// Normal sums the corrections applied this tick, for reporting only.
	Normal rl.Vector3

	Static            bool
	Stationary        bool
	Block             bool
	AffectedByGravity bool
	Continuous        bool
	Sleeping          bool
	CanSleep          bool

	Plane   *PlaneShape
	Mesh    *MeshShape
	Trigger *TriggerVolume

	previous   geom.Transform
	sleepTimer float32

	contacts        []ContactManifold
	ignored         []Handle
	ignoredEntities []uint64

	scene  *Scene
	handle Handle
}

func newBody(kind BodyType) *Body {
	b := &Body{
		Type:        kind,
		Block:       true,
		CanSleep:    true,
		Damping:     1,
		Restitution: 0.5,
		Friction:    0.1,
		Solver:      SolverPosition,
	}
	b.SetMass(1)
	return b
}

// NewBody creates an AABB body whose local bounds come from the owner's mesh.
func NewBody(owner *engine.GameObject) *Body {
	b := newBody(BodyAABB)
	b.Owner = owner
	b.previous = b.Transform()
	return b
}

// NewGhostBody creates an AABB body for an entity without a mesh.
func NewGhostBody(ghost *engine.GameObject, local geom.AABB) *Body {
	b := newBody(BodyAABB)
	b.Ghost = ghost
	b.LocalBounds = local
	b.previous = b.Transform()
	return b
}

// IsKinetic reports whether the body may be moved by the simulation.
func (b *Body) IsKinetic() bool {
	return !b.Static && !b.Stationary
}

// movable is IsKinetic plus finite mass.
func (b *Body) movable() bool {
	return b.IsKinetic() && b.InverseMass > 0
}

// SetMass sets the mass. A mass <= 0 means infinite mass.
func (b *Body) SetMass(mass float32) {
	if mass <= 0 {
		b.Mass = 0
		b.InverseMass = 0
		return
	}
	b.Mass = mass
	b.InverseMass = 1 / mass
}

// Entity returns the owner, or the ghost when there is no owner.
func (b *Body) Entity() *engine.GameObject {
	if b.Owner != nil {
		return b.Owner
	}
	return b.Ghost
}

// Transform returns the entity transform, or the identity when the body
// has neither owner nor ghost.
func (b *Body) Transform() geom.Transform {
	if e := b.Entity(); e != nil {
		return e.Transform
	}
	return geom.Identity()
}

// SetTransform writes back to the entity. No-op without one.
func (b *Body) SetTransform(t geom.Transform) {
	if e := b.Entity(); e != nil {
		e.Transform = t
	}
}

func (b *Body) localBounds() geom.AABB {
	if b.Owner != nil && b.Owner.MeshBounds != nil {
		return *b.Owner.MeshBounds
	}
	return b.LocalBounds
}

// CalculateBounds recomputes the world, swept and sphere bounds from the
// current transform.
func (b *Body) CalculateBounds() {
	local := b.localBounds()
	t := b.Transform()
	b.WorldBounds = local.Transform(t)
	b.SweptBounds = geom.Combine(local.Transform(b.previous), b.WorldBounds)
	b.Sphere = b.WorldBounds.Sphere()

	switch b.Type {
	case BodyPlane:
		if b.Plane != nil {
			b.Plane.update(t)
		}
	case BodyTriangleMesh:
		if b.Mesh != nil {
			b.Mesh.update(t, b.scene.bvhRand())
		}
	}
}

// effectiveBounds is the world box with the pending correction already
// applied, so a body pushed earlier in the tick is not pushed twice.
func (b *Body) effectiveBounds() geom.AABB {
	return b.WorldBounds.Translate(rl.Vector3Negate(b.Depenetration))
}

// broadBounds is the box used for the scene's overlap test.
func (b *Body) broadBounds() geom.AABB {
	if b.Continuous {
		return b.SweptBounds
	}
	return b.WorldBounds
}

// PreCollision refreshes per-tick geometry. Called once per tick before
// any Collision where this body is the active side.
func (b *Body) PreCollision() {
	b.CalculateBounds()
}

// Collision runs the narrow phase between b and other.
func (b *Body) Collision(other *Body) {
	collide(b, other)
}

// Tick applies the accumulated depenetration through the body's solver and
// clears it.
func (b *Body) Tick() {
	dep := b.Depenetration
	b.Depenetration = rl.Vector3{}
	if !b.IsKinetic() {
		return
	}

	if d := rl.Vector3Length(dep); d > 0 {
		resp := CollisionResponse{Normal: rl.Vector3Scale(dep, 1/d), Distance: d}
		Solve(b.Solver, b, resp)
		b.reflectVelocity(rl.Vector3Negate(resp.Normal))
	}
	b.CalculateBounds()
}

// reflectVelocity bounces the velocity off a surface with the given normal.
func (b *Body) reflectVelocity(normal rl.Vector3) {
	dot := rl.Vector3DotProduct(b.LinearVelocity, normal)
	if dot >= 0 {
		return
	}
	reflect := rl.Vector3Scale(normal, -2*dot*b.Restitution)
	b.LinearVelocity = rl.Vector3Add(b.LinearVelocity, reflect)
	b.LinearVelocity = rl.Vector3Scale(b.LinearVelocity, 1.0-b.Friction)
}

// Integrate advances velocity and position by dt. Only kinetic, awake
// bodies with an integrator and an entity move. Sleep is checked by the
// scene after collisions have been solved, not here.
func (b *Body) Integrate(dt float32) {
	b.previous = b.Transform()
	if !b.IsKinetic() || b.Sleeping || b.Integrator == IntegratorNone || b.Entity() == nil {
		return
	}

	acc := b.Acceleration
	if b.AffectedByGravity {
		acc = rl.Vector3Add(acc, b.Gravity)
	}

	t := b.Transform()
	switch b.Integrator {
	case IntegratorEuler:
		t.Position = rl.Vector3Add(t.Position, rl.Vector3Scale(b.LinearVelocity, dt))
		b.LinearVelocity = rl.Vector3Add(b.LinearVelocity, rl.Vector3Scale(acc, dt))
	case IntegratorSemiImplicitEuler:
		b.LinearVelocity = rl.Vector3Add(b.LinearVelocity, rl.Vector3Scale(acc, dt))
		t.Position = rl.Vector3Add(t.Position, rl.Vector3Scale(b.LinearVelocity, dt))
	}
	b.SetTransform(t)

	if b.DragCoefficient > 0 {
		b.LinearVelocity = rl.Vector3Scale(b.LinearVelocity, 1/(1+b.DragCoefficient*dt))
	}
	// Time-based so it's framerate independent
	damping := float32(1.0) - (1.0-b.Damping)*dt*60
	if damping < 0 {
		damping = 0
	}
	b.LinearVelocity = rl.Vector3Scale(b.LinearVelocity, damping)
	b.Acceleration = rl.Vector3{}
}

// SleepSettings are the thresholds used by TrySleep and wake-on-impact.
type SleepSettings struct {
	Velocity float32 // units/sec below which the body may sleep
	Time     float32 // seconds below Velocity before sleeping
	Wake     float32 // relative speed that wakes a sleeping body
}

// Wake forces the body out of sleep state
func (b *Body) Wake() {
	b.Sleeping = false
	b.sleepTimer = 0
}

// TrySleep puts the body to sleep once it has been slow for long enough.
func (b *Body) TrySleep(dt float32, s SleepSettings) {
	if !b.CanSleep || b.Sleeping {
		return
	}
	if rl.Vector3Length(b.LinearVelocity) < s.Velocity {
		b.sleepTimer += dt

		// Extra damping when nearly at rest to reduce jitter
		b.LinearVelocity = rl.Vector3Scale(b.LinearVelocity, 0.9)

		if b.sleepTimer >= s.Time {
			b.Sleeping = true
			b.LinearVelocity = rl.Vector3{}
		}
	} else {
		b.sleepTimer = 0
	}
}

// Ignore adds other to the ignore list, or removes it when clear is set.
// other must be registered; ignoring an unregistered body does nothing.
func (b *Body) Ignore(other *Body, clear bool) {
	if other == nil || other.handle.IsZero() {
		return
	}
	i := slices.Index(b.ignored, other.handle)
	switch {
	case clear && i >= 0:
		b.ignored = slices.Delete(b.ignored, i, i+1)
	case !clear && i < 0:
		b.ignored = append(b.ignored, other.handle)
	}
}

// IgnoreEntity ignores every body owned by g.
func (b *Body) IgnoreEntity(g *engine.GameObject, clear bool) {
	if g == nil {
		return
	}
	i := slices.Index(b.ignoredEntities, g.UID)
	switch {
	case clear && i >= 0:
		b.ignoredEntities = slices.Delete(b.ignoredEntities, i, i+1)
	case !clear && i < 0:
		b.ignoredEntities = append(b.ignoredEntities, g.UID)
	}
}

// ShouldIgnoreBody reports whether other is on this body's ignore list.
func (b *Body) ShouldIgnoreBody(other *Body) bool {
	if !other.handle.IsZero() && slices.Contains(b.ignored, other.handle) {
		return true
	}
	if e := other.Entity(); e != nil && slices.Contains(b.ignoredEntities, e.UID) {
		return true
	}
	return false
}

// Contacts returns the bodies touched during the last tick.
func (b *Body) Contacts() []ContactManifold {
	return b.contacts
}

func (b *Body) InContact() bool {
	return len(b.contacts) > 0
}

// Handle returns the registry handle, zero when unregistered.
func (b *Body) Handle() Handle {
	return b.handle
}

// Construct registers the body with scene and computes its bounds.
func (b *Body) Construct(scene *Scene) Handle {
	h := scene.Register(b)
	b.CalculateBounds()
	return h
}

// Destroy unregisters the body from its scene.
func (b *Body) Destroy() {
	if b.scene != nil {
		b.scene.Unregister(b.handle)
	}
}

// addContact records other, keeping one manifold per body.
func (b *Body) addContact(other *Body, resp CollisionResponse) bool {
	for i := range b.contacts {
		if b.contacts[i].Other == other.handle {
			if resp.Distance > b.contacts[i].Response.Distance {
				b.contacts[i].Response = resp
			}
			return false
		}
	}
	b.contacts = append(b.contacts, ContactManifold{Other: other.handle, Response: resp})
	return true
}

// Bounds implements spatial.Testable.
func (b *Body) Bounds() geom.AABB {
	return b.WorldBounds
}

func (b *Body) Query(box geom.AABB, result *spatial.QueryResult) {
	if b.WorldBounds.Intersects(box) {
		result.Add(b)
	}
}

// Cast hits the world bounds, or the triangles of a mesh body. Non-blocking
// bodies are transparent to rays.
func (b *Body) Cast(start, end rl.Vector3) spatial.Hit {
	if !b.Block {
		return spatial.Hit{}
	}
	if b.Type == BodyTriangleMesh && b.Mesh != nil {
		hit := b.Mesh.Cast(start, end)
		if hit.Hit {
			hit.Object = b
		}
		return hit
	}
	hit := geom.LineInBoundingBox(start, end, b.WorldBounds)
	if !hit.Hit {
		return spatial.Hit{}
	}
	return spatial.Hit{LineHit: hit, Object: b}
}

func (b *Body) Debug(d spatial.Drawer) {
	c := rl.Green
	switch {
	case b.Type == BodyTrigger:
		c = rl.Yellow
	case b.Static:
		c = rl.Gray
	case b.Sleeping:
		c = rl.Blue
	case b.InContact():
		c = rl.Red
	}
	d.DrawBox(b.WorldBounds, c)

	center := b.WorldBounds.Center()
	for _, contact := range b.contacts {
		tip := rl.Vector3Add(center, rl.Vector3Scale(contact.Response.Normal, contact.Response.Distance+0.25))
		d.DrawLine(center, tip, rl.Orange)
	}
}
