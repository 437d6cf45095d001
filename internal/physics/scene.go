package physics

import (
	"collide3d/internal/config"
	"collide3d/internal/engine"
	"collide3d/internal/geom"
	"collide3d/internal/spatial"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Handle addresses a registered body. A handle whose body was unregistered
// no longer resolves, even if its slot is reused, and a handle only
// resolves in the scene that issued it.
type Handle struct {
	scene      uint32
	index      uint32
	generation uint32
}

var nextSceneID atomic.Uint32

func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("body#%d.%d", h.index, h.generation)
}

type slot struct {
	body       *Body
	generation uint32
}

// Stats describes the last tick.
type Stats struct {
	Bodies     int // active bodies processed
	PairTests  int // bounds tests performed
	Collisions int // narrow-phase calls
	Contacts   int // distinct contacting pairs
}

// CastResult is the nearest body hit by a segment.
type CastResult struct {
	geom.LineHit
	Body Handle
}

// collisionPair is keyed with the smaller UID first.
type collisionPair struct {
	a, b uint64
}

type pairEntities struct {
	a, b *engine.GameObject
}

// Scene owns the body registry and runs the collision pass. Bodies are
// borrowed: the scene never frees them.
//
// Register and Unregister may be called while a tick is running (from
// trigger or collision callbacks): slots are nulled in place and freed
// indices are only reused after the tick.
type Scene struct {
	id          uint32
	slots       []slot
	free        []uint32
	pendingFree []uint32
	ticking     bool

	gravity   rl.Vector3
	sleep     SleepSettings
	surfaces  map[string]config.Material
	rng       *rand.Rand
	tree      *spatial.BVH
	treeDirty bool

	activeCollisions  map[collisionPair]pairEntities
	currentCollisions map[collisionPair]pairEntities

	stats  Stats
	logger *slog.Logger
}

func NewScene(cfg config.Physics, logger *slog.Logger) *Scene {
	if logger == nil {
		logger = slog.Default()
	}
	var rng *rand.Rand
	if cfg.BVHSeed != 0 {
		rng = rand.New(rand.NewPCG(cfg.BVHSeed, cfg.BVHSeed^0x9e3779b97f4a7c15))
	}
	return &Scene{
		id:      nextSceneID.Add(1),
		gravity: rl.Vector3{X: cfg.Gravity[0], Y: cfg.Gravity[1], Z: cfg.Gravity[2]},
		sleep: SleepSettings{
			Velocity: cfg.SleepVelocityThreshold,
			Time:     cfg.SleepTimeThreshold,
			Wake:     cfg.WakeVelocityThreshold,
		},
		surfaces:          cfg.Surfaces,
		rng:               rng,
		tree:              spatial.NewBVH(rng),
		treeDirty:         true,
		activeCollisions:  make(map[collisionPair]pairEntities),
		currentCollisions: make(map[collisionPair]pairEntities),
		logger:            logger,
	}
}

func (s *Scene) bvhRand() *rand.Rand {
	if s == nil {
		return nil
	}
	return s.rng
}

// Register adds b to the registry. Registering a body twice returns its
// existing handle.
func (s *Scene) Register(b *Body) Handle {
	if b.scene == s {
		if _, ok := s.Body(b.handle); ok {
			return b.handle
		}
	}
	if b.scene != nil {
		b.scene.Unregister(b.handle)
	}

	var idx uint32
	if n := len(s.free); n > 0 && !s.ticking {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.slots = append(s.slots, slot{generation: 1})
		idx = uint32(len(s.slots) - 1)
	}
	s.slots[idx].body = b
	b.scene = s
	b.handle = Handle{scene: s.id, index: idx, generation: s.slots[idx].generation}

	if b.AffectedByGravity && b.Gravity == (rl.Vector3{}) {
		b.Gravity = s.gravity
	}
	if m, ok := s.surfaces[string(b.Surface)]; ok && b.Surface != SurfaceNone {
		b.Restitution = m.Restitution
		b.Friction = m.Friction
	}
	if b.Entity() == nil {
		s.logger.Debug("body has no owner or ghost", "body", b.handle, "type", b.Type)
	}
	s.treeDirty = true
	s.logger.Debug("registered body", "body", b.handle, "type", b.Type)
	return b.handle
}

// Unregister nulls the slot of h in place. Stale handles are ignored.
func (s *Scene) Unregister(h Handle) bool {
	b, ok := s.Body(h)
	if !ok {
		return false
	}
	sl := &s.slots[h.index]
	sl.body = nil
	sl.generation++
	if s.ticking {
		s.pendingFree = append(s.pendingFree, h.index)
	} else {
		s.free = append(s.free, h.index)
	}
	b.scene = nil
	b.handle = Handle{}
	s.treeDirty = true
	s.logger.Debug("unregistered body", "body", h)
	return true
}

// Body resolves a handle. Stale or zero handles return false.
func (s *Scene) Body(h Handle) (*Body, bool) {
	if h.IsZero() || h.scene != s.id || int(h.index) >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[h.index]
	if sl.body == nil || sl.generation != h.generation {
		return nil, false
	}
	return sl.body, true
}

// Len returns the number of live bodies.
func (s *Scene) Len() int {
	n := 0
	for _, sl := range s.slots {
		if sl.body != nil {
			n++
		}
	}
	return n
}

// Each calls fn for every live body in registry order.
func (s *Scene) Each(fn func(b *Body)) {
	for i := range s.slots {
		if b := s.slots[i].body; b != nil {
			fn(b)
		}
	}
}

// Clear unregisters every body. The bodies themselves are left alone.
func (s *Scene) Clear() {
	s.free = s.free[:0]
	s.pendingFree = s.pendingFree[:0]
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.body != nil {
			sl.body.scene = nil
			sl.body.handle = Handle{}
			sl.body = nil
			sl.generation++
		}
		s.free = append(s.free, uint32(i))
	}
	clear(s.activeCollisions)
	clear(s.currentCollisions)
	s.tree.Destroy()
	s.treeDirty = true
}

// SetGravity changes the scene gravity and hands it to every body that is
// affected by gravity, waking them.
func (s *Scene) SetGravity(g rl.Vector3) {
	s.gravity = g
	s.Each(func(b *Body) {
		if b.AffectedByGravity {
			b.Gravity = g
			b.Wake()
		}
	})
}

func (s *Scene) Gravity() rl.Vector3 {
	return s.gravity
}

// SetLogger replaces the logger used for registry events.
func (s *Scene) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.logger = l
}

func (s *Scene) Stats() Stats {
	return s.stats
}

// Tick runs one simulation step:
//  1. contacts and trigger sets are reset
//  2. kinetic bodies integrate and every body refreshes its bounds
//  3. each non-static body in registry order runs PreCollision, is tested
//     against every other blocking body, and applies its corrections
//  4. collision and trigger callbacks fire
//
// Bodies registered during the tick join the next one.
func (s *Scene) Tick(dt float32) {
	s.ticking = true
	s.stats = Stats{}
	clear(s.currentCollisions)
	n := len(s.slots)

	for i := 0; i < n; i++ {
		if b := s.slots[i].body; b != nil {
			b.contacts = b.contacts[:0]
			b.Normal = rl.Vector3{}
			if b.Trigger != nil {
				b.Trigger.begin()
			}
		}
	}

	for i := 0; i < n; i++ {
		if b := s.slots[i].body; b != nil {
			b.Integrate(dt)
			b.CalculateBounds()
		}
	}

	for i := 0; i < n; i++ {
		a := s.slots[i].body
		if a == nil || a.Static {
			continue
		}
		s.stats.Bodies++
		a.PreCollision()

		for j := 0; j < n; j++ {
			b := s.slots[j].body
			if b == nil || b == a || !b.Block || sameEntity(a, b) {
				continue
			}
			if a.ShouldIgnoreBody(b) || b.ShouldIgnoreBody(a) {
				continue
			}
			s.stats.PairTests++
			if !a.broadBounds().Intersects(b.WorldBounds) {
				continue
			}
			s.stats.Collisions++
			a.Collision(b)
		}

		// a may have been unregistered by now; its Tick still applies.
		a.Tick()

		// Checked after the contact response so gravity pulled into a
		// resting contact does not count as motion.
		if a.Integrator != IntegratorNone {
			a.TrySleep(dt, s.sleep)
		}
	}

	s.dispatchCollisionCallbacks()
	for i := 0; i < n; i++ {
		if b := s.slots[i].body; b != nil && b.Trigger != nil {
			b.Trigger.dispatch()
		}
	}

	s.ticking = false
	s.free = append(s.free, s.pendingFree...)
	s.pendingFree = s.pendingFree[:0]
	s.treeDirty = true
}

// sameEntity reports whether both bodies belong to one entity. Bodies
// without an entity are never considered the same.
func sameEntity(a, b *Body) bool {
	e := a.Entity()
	return e != nil && e == b.Entity()
}

// recordCollision marks an entity pair as touching this tick and wakes
// sleeping bodies hit hard enough.
func (s *Scene) recordCollision(pushed, pusher *Body, newContact bool) {
	if newContact {
		s.stats.Contacts++
	}

	relSpeed := rl.Vector3Length(rl.Vector3Subtract(pushed.LinearVelocity, pusher.LinearVelocity))
	if relSpeed > s.sleep.Wake {
		if pushed.Sleeping {
			pushed.Wake()
		}
		if pusher.Sleeping && pusher.IsKinetic() {
			pusher.Wake()
		}
	}

	ea, eb := pushed.Entity(), pusher.Entity()
	if ea == nil || eb == nil {
		return
	}
	if ea.UID > eb.UID {
		ea, eb = eb, ea
	}
	s.currentCollisions[collisionPair{ea.UID, eb.UID}] = pairEntities{ea, eb}
}

// dispatchCollisionCallbacks sends OnCollisionEnter/Exit to handlers
func (s *Scene) dispatchCollisionCallbacks() {
	for key, pair := range s.currentCollisions {
		if _, ok := s.activeCollisions[key]; !ok {
			notifyCollisionEnter(pair.a, pair.b)
			notifyCollisionEnter(pair.b, pair.a)
		}
	}
	for key, pair := range s.activeCollisions {
		if _, ok := s.currentCollisions[key]; !ok {
			notifyCollisionExit(pair.a, pair.b)
			notifyCollisionExit(pair.b, pair.a)
		}
	}

	// Swap buffers
	s.activeCollisions, s.currentCollisions = s.currentCollisions, s.activeCollisions
}

func notifyCollisionEnter(obj, other *engine.GameObject) {
	for _, comp := range obj.Components() {
		if handler, ok := comp.(engine.CollisionHandler); ok {
			handler.OnCollisionEnter(other)
		}
	}
}

func notifyCollisionExit(obj, other *engine.GameObject) {
	for _, comp := range obj.Components() {
		if handler, ok := comp.(engine.CollisionHandler); ok {
			handler.OnCollisionExit(other)
		}
	}
}

// Tree returns the BVH over live bodies, rebuilding it if the registry or
// any transform changed since the last build.
func (s *Scene) Tree() *spatial.BVH {
	if s.treeDirty {
		source := make([]spatial.Testable, 0, len(s.slots))
		s.Each(func(b *Body) {
			b.CalculateBounds()
			source = append(source, b)
		})
		s.tree.Build(source)
		s.treeDirty = false
	}
	return s.tree
}

// Invalidate marks the query tree stale after bodies were moved outside
// of Tick.
func (s *Scene) Invalidate() {
	s.treeDirty = true
}

// Cast returns the nearest blocking body along the segment.
func (s *Scene) Cast(start, end rl.Vector3) CastResult {
	hit := s.Tree().Cast(start, end)
	if !hit.Hit {
		return CastResult{}
	}
	b, ok := hit.Object.(*Body)
	if !ok {
		return CastResult{}
	}
	return CastResult{LineHit: hit.LineHit, Body: b.handle}
}

// Query returns every body whose world bounds intersect box, in the order
// the tree visits them.
func (s *Scene) Query(box geom.AABB) []*Body {
	result := spatial.NewQueryResult()
	s.Tree().Query(box, result)
	out := make([]*Body, 0, result.Len())
	for _, t := range result.Items() {
		if b, ok := t.(*Body); ok {
			out = append(out, b)
		}
	}
	return out
}

// Debug draws every live body.
func (s *Scene) Debug(d spatial.Drawer) {
	s.Each(func(b *Body) {
		b.Debug(d)
	})
}
