package physics

import (
	"cmp"
	"collide3d/internal/engine"
	"collide3d/internal/geom"
	"collide3d/internal/spatial"
	"math/rand/v2"
	"slices"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// PlaneShape is the kind data of a plane body. The world plane passes
// through the entity position with the rotated local normal.
type PlaneShape struct {
	LocalNormal rl.Vector3
	// TwoSided pushes bodies out of whichever face their centre is on.
	TwoSided bool

	world geom.Plane
}

func (p *PlaneShape) update(t geom.Transform) {
	p.world = geom.Plane{
		Origin: t.Position,
		Normal: rl.Vector3Normalize(t.Rotate(p.LocalNormal)),
	}
}

// World returns the plane as of the last bounds update.
func (p *PlaneShape) World() geom.Plane {
	return p.world
}

// NewPlaneBody creates a static plane. extent is the local half size used
// for the broad-phase box, which is flat along the normal's dominant axis
// and reaches thickness below the surface.
func NewPlaneBody(ghost *engine.GameObject, normal rl.Vector3, extent, thickness float32) *Body {
	b := newBody(BodyPlane)
	b.Ghost = ghost
	b.Static = true
	b.SetMass(0)
	b.Plane = &PlaneShape{LocalNormal: rl.Vector3Normalize(normal)}

	n := b.Plane.LocalNormal
	half := rl.Vector3{X: extent, Y: extent, Z: extent}
	lo := rl.Vector3Negate(half)
	hi := half
	switch {
	case math32.Abs(n.Y) >= math32.Abs(n.X) && math32.Abs(n.Y) >= math32.Abs(n.Z):
		lo.Y, hi.Y = -math32.Copysign(thickness, n.Y), 0
	case math32.Abs(n.X) >= math32.Abs(n.Z):
		lo.X, hi.X = -math32.Copysign(thickness, n.X), 0
	default:
		lo.Z, hi.Z = -math32.Copysign(thickness, n.Z), 0
	}
	b.LocalBounds = geom.NewAABB(rl.Vector3Min(lo, hi), rl.Vector3Max(lo, hi))
	b.previous = b.Transform()
	return b
}

// MeshShape is the kind data of a triangle mesh body: local triangles and a
// BVH over their world-space copies, rebuilt when the transform changes.
type MeshShape struct {
	Triangles []geom.Triangle

	world  []geom.Triangle
	leaves []spatial.Testable
	tree   *spatial.BVH
	built  geom.Transform
	valid  bool
}

func NewMeshShape(triangles []geom.Triangle) *MeshShape {
	return &MeshShape{Triangles: triangles}
}

// NewMeshBody creates a static triangle mesh body.
func NewMeshBody(ghost *engine.GameObject, triangles []geom.Triangle) *Body {
	b := newBody(BodyTriangleMesh)
	b.Ghost = ghost
	b.Static = true
	b.SetMass(0)
	b.Mesh = NewMeshShape(triangles)

	local := geom.EmptyAABB()
	for _, tri := range triangles {
		local = geom.Combine(local, tri.Bounds())
	}
	b.LocalBounds = local
	b.previous = b.Transform()
	return b
}

func (m *MeshShape) update(t geom.Transform, rng *rand.Rand) {
	if m.valid && m.built == t {
		return
	}
	m.world = m.world[:0]
	m.leaves = m.leaves[:0]
	for _, tri := range m.Triangles {
		m.world = append(m.world, tri.Transform(t))
	}
	for i := range m.world {
		m.leaves = append(m.leaves, &triangleLeaf{tri: &m.world[i]})
	}
	if m.tree == nil {
		m.tree = spatial.NewBVH(rng)
	}
	m.tree.Build(m.leaves)
	m.built = t
	m.valid = true
}

// SphereIntersect tests a sphere against the mesh and returns the push that
// moves the sphere out. Per axis the largest push wins.
func (m *MeshShape) SphereIntersect(center rl.Vector3, radius float32) (bool, rl.Vector3) {
	if !m.valid {
		return false, rl.Vector3{}
	}

	query := geom.NewAABBFromCenter(center, rl.Vector3{X: radius * 2, Y: radius * 2, Z: radius * 2})
	candidates := spatial.NewQueryResult()
	m.tree.Query(query, candidates)

	var totalPush rl.Vector3
	hit := false
	for _, c := range candidates.Items() {
		leaf := c.(*triangleLeaf)
		if collides, push := leaf.tri.SphereIntersect(center, radius); collides {
			if math32.Abs(push.X) > math32.Abs(totalPush.X) {
				totalPush.X = push.X
			}
			if math32.Abs(push.Y) > math32.Abs(totalPush.Y) {
				totalPush.Y = push.Y
			}
			if math32.Abs(push.Z) > math32.Abs(totalPush.Z) {
				totalPush.Z = push.Z
			}
			hit = true
		}
	}
	return hit, totalPush
}

func (m *MeshShape) Cast(start, end rl.Vector3) spatial.Hit {
	if !m.valid {
		return spatial.Hit{}
	}
	return m.tree.Cast(start, end)
}

// TriangleCount returns the number of world-space triangles in the BVH.
func (m *MeshShape) TriangleCount() int {
	return len(m.world)
}

type triangleLeaf struct {
	tri *geom.Triangle
}

func (l *triangleLeaf) Bounds() geom.AABB {
	return l.tri.Bounds()
}

func (l *triangleLeaf) Query(box geom.AABB, result *spatial.QueryResult) {
	if l.tri.Bounds().Intersects(box) {
		result.Add(l)
	}
}

func (l *triangleLeaf) Cast(start, end rl.Vector3) spatial.Hit {
	dir := rl.Vector3Subtract(end, start)
	length := rl.Vector3Length(dir)
	if length == 0 {
		return spatial.Hit{}
	}
	ray := rl.NewRay(start, rl.Vector3Scale(dir, 1/length))
	rc := rl.GetRayCollisionTriangle(ray, l.tri.V0, l.tri.V1, l.tri.V2)
	if !rc.Hit || rc.Distance > length {
		return spatial.Hit{}
	}
	return spatial.Hit{
		LineHit: geom.LineHit{Hit: true, Distance: rc.Distance, Position: rc.Point, Normal: rc.Normal},
		Object:  l,
	}
}

func (l *triangleLeaf) Debug(d spatial.Drawer) {
	d.DrawLine(l.tri.V0, l.tri.V1, rl.DarkGray)
	d.DrawLine(l.tri.V1, l.tri.V2, rl.DarkGray)
	d.DrawLine(l.tri.V2, l.tri.V0, rl.DarkGray)
}

// TriggerFilter decides whether an entity may enter a trigger.
type TriggerFilter func(g *engine.GameObject) bool

func AcceptAll(*engine.GameObject) bool { return true }

func AcceptTag(tag string) TriggerFilter {
	return func(g *engine.GameObject) bool {
		return g.HasTag(tag)
	}
}

// AcceptComponent admits entities carrying a component that satisfies T.
func AcceptComponent[T any]() TriggerFilter {
	return func(g *engine.GameObject) bool {
		return engine.HasComponent[T](g)
	}
}

// TriggerVolume is the kind data of a trigger body: the entities
// overlapping it this tick, filtered on insertion.
type TriggerVolume struct {
	Filter  TriggerFilter
	OnEnter engine.EventWithArg[*engine.GameObject]
	OnExit  engine.EventWithArg[*engine.GameObject]

	current  map[*engine.GameObject]struct{}
	previous map[*engine.GameObject]struct{}
}

func NewTriggerVolume(filter TriggerFilter) *TriggerVolume {
	if filter == nil {
		filter = AcceptAll
	}
	return &TriggerVolume{
		Filter:   filter,
		current:  make(map[*engine.GameObject]struct{}),
		previous: make(map[*engine.GameObject]struct{}),
	}
}

// NewTriggerBody creates a non-blocking body that reports overlapping
// entities. It is processed every tick but never moves.
func NewTriggerBody(ghost *engine.GameObject, local geom.AABB, filter TriggerFilter) *Body {
	b := newBody(BodyTrigger)
	b.Ghost = ghost
	b.LocalBounds = local
	b.Block = false
	b.Stationary = true
	b.CanSleep = false
	b.Trigger = NewTriggerVolume(filter)
	b.previous = b.Transform()
	return b
}

// insert adds g if the filter admits it.
func (t *TriggerVolume) insert(g *engine.GameObject) bool {
	if g == nil || !t.Filter(g) {
		return false
	}
	t.current[g] = struct{}{}
	return true
}

// begin starts a new tick, keeping the last set for enter/exit diffs.
func (t *TriggerVolume) begin() {
	t.previous, t.current = t.current, t.previous
	clear(t.current)
}

// dispatch fires OnEnter and OnExit in UID order.
func (t *TriggerVolume) dispatch() {
	for _, g := range sortedByUID(t.current) {
		if _, ok := t.previous[g]; !ok {
			t.OnEnter.Invoke(g)
		}
	}
	for _, g := range sortedByUID(t.previous) {
		if _, ok := t.current[g]; !ok {
			t.OnExit.Invoke(g)
		}
	}
}

func (t *TriggerVolume) Contains(g *engine.GameObject) bool {
	_, ok := t.current[g]
	return ok
}

func (t *TriggerVolume) Len() int {
	return len(t.current)
}

// Overlapping returns the entities inside the trigger, in UID order.
func (t *TriggerVolume) Overlapping() []*engine.GameObject {
	return sortedByUID(t.current)
}

func sortedByUID(set map[*engine.GameObject]struct{}) []*engine.GameObject {
	out := make([]*engine.GameObject, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b *engine.GameObject) int {
		return cmp.Compare(a.UID, b.UID)
	})
	return out
}
