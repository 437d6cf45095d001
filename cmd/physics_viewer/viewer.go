package main

import (
	"collide3d/internal/camera"
	"collide3d/internal/config"
	"collide3d/internal/debugdraw"
	"collide3d/internal/engine"
	"collide3d/internal/geom"
	"collide3d/internal/physics"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fixedStep = float32(1.0 / 60.0)
	maxSteps  = 5 // per frame, drops time beyond that
	boxTag    = "box"
	killY     = -50
)

var (
	colorBg      = rl.NewColor(20, 20, 30, 255)
	colorPanel   = rl.NewColor(18, 18, 24, 245)
	colorAccent  = rl.NewColor(108, 99, 255, 255)
	colorText    = rl.NewColor(200, 200, 208, 255)
	colorMuted   = rl.NewColor(119, 119, 119, 255)
	colorGround  = rl.NewColor(40, 40, 55, 255)
	colorRamp    = rl.NewColor(70, 70, 90, 255)
	colorTrigger = rl.NewColor(250, 200, 60, 60)
)

// surfaceColors tints boxes by material. Unknown surfaces fall back to gray.
var surfaceColors = map[physics.PhysicalSurface]color.RGBA{
	physics.SurfaceConcrete: rl.NewColor(150, 150, 150, 255),
	physics.SurfaceMetal:    rl.NewColor(120, 160, 200, 255),
	physics.SurfaceWood:     rl.NewColor(170, 120, 70, 255),
	physics.SurfaceIce:      rl.NewColor(180, 230, 255, 255),
	physics.SurfaceRubber:   rl.NewColor(220, 80, 90, 255),
}

// impactCounter counts collision enters on its object. The physics scene
// finds it through engine.CollisionHandler.
type impactCounter struct {
	engine.BaseComponent
	total *int
}

func (c *impactCounter) OnCollisionEnter(*engine.GameObject) { *c.total++ }

func (c *impactCounter) OnCollisionExit(*engine.GameObject) {}

type viewer struct {
	world    *engine.Scene
	physics  *physics.Physics
	camera   *camera.OrbitCamera
	renderer *debugdraw.Renderer
	rng      *rand.Rand
	surfaces []physics.PhysicalSurface

	boxes   []*physics.Body
	trigger *physics.Body
	entered int
	impacts int

	paused     bool
	showBounds bool
	showTree   bool
	gravity    float32
	spawnCount float32
	accum      float32

	stats    physics.Stats
	tickTime time.Duration
	lastHit  physics.CastResult
}

func newViewer(cfg config.Physics, seed uint64) *viewer {
	v := &viewer{
		world:      engine.NewScene("viewer"),
		physics:    physics.New(cfg),
		camera:     camera.New(rl.Vector3{}, 40),
		renderer:   debugdraw.New(),
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		showBounds: true,
		gravity:    -cfg.Gravity[1],
		spawnCount: 10,
	}
	for name := range cfg.Surfaces {
		v.surfaces = append(v.surfaces, physics.PhysicalSurface(name))
	}
	slices.Sort(v.surfaces)

	v.physics.Construct()
	v.buildLevel()
	v.spawnBoxes(int(v.spawnCount))
	return v
}

func (v *viewer) Close() {
	v.physics.Destroy()
}

// buildLevel registers the static geometry: a ground plane, a triangle mesh
// ramp and a trigger zone that counts boxes entering it.
func (v *viewer) buildLevel() {
	ground := engine.NewGameObject("ground")
	v.world.AddGameObject(ground)
	v.physics.Register(physics.NewPlaneBody(ground, rl.Vector3{Y: 1}, 30, 1))

	ramp := engine.NewGameObject("ramp")
	ramp.Transform.Position = rl.Vector3{X: -8}
	v.world.AddGameObject(ramp)
	v.physics.Register(physics.NewMeshBody(ramp, rampTriangles(6, 4, 3)))

	zone := engine.NewGameObject("zone")
	zone.Transform.Position = rl.Vector3{X: 8, Y: 1}
	v.world.AddGameObject(zone)
	v.trigger = physics.NewTriggerBody(zone,
		geom.NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 6, Y: 2, Z: 6}),
		physics.AcceptTag(boxTag))
	v.trigger.Trigger.OnEnter.AddListener(func(g *engine.GameObject) {
		v.entered++
		slog.Info("entered zone", "object", g.Name)
	})
	v.trigger.Trigger.OnExit.AddListener(func(g *engine.GameObject) {
		slog.Info("left zone", "object", g.Name)
	})
	v.physics.Register(v.trigger)
}

// rampTriangles builds a slope rising along +X with its low edge at the
// origin, plus the back face.
func rampTriangles(length, width, height float32) []geom.Triangle {
	w := width / 2
	a := rl.Vector3{X: 0, Y: 0, Z: -w}
	b := rl.Vector3{X: 0, Y: 0, Z: w}
	c := rl.Vector3{X: length, Y: height, Z: w}
	d := rl.Vector3{X: length, Y: height, Z: -w}
	e := rl.Vector3{X: length, Y: 0, Z: w}
	f := rl.Vector3{X: length, Y: 0, Z: -w}
	return []geom.Triangle{
		geom.NewTriangle(a, b, c),
		geom.NewTriangle(a, c, d),
		geom.NewTriangle(e, f, d),
		geom.NewTriangle(e, d, c),
	}
}

func (v *viewer) spawnBoxes(n int) {
	for i := 0; i < n; i++ {
		size := 0.5 + v.rng.Float32()
		g := engine.NewMeshObject(fmt.Sprintf("box%d", len(v.boxes)),
			geom.NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: size, Y: size, Z: size}))
		g.Tags = []string{boxTag}
		g.AddComponent(&impactCounter{total: &v.impacts})
		g.Transform.Position = rl.Vector3{
			X: v.rng.Float32()*24 - 12,
			Y: 8 + v.rng.Float32()*12,
			Z: v.rng.Float32()*12 - 6,
		}

		b := physics.NewBody(g)
		b.AffectedByGravity = true
		b.Integrator = physics.IntegratorSemiImplicitEuler
		b.SetMass(size * size * size)
		b.Continuous = true
		if len(v.surfaces) > 0 {
			b.Surface = v.surfaces[v.rng.IntN(len(v.surfaces))]
		}
		v.world.AddGameObject(g)
		v.physics.Register(b)
		v.boxes = append(v.boxes, b)
	}
}

func (v *viewer) clearBoxes() {
	for _, b := range v.boxes {
		v.removeBox(b)
	}
	v.boxes = v.boxes[:0]
	v.entered = 0
	v.impacts = 0
}

// cull drops boxes that fell off the world.
func (v *viewer) cull() {
	v.boxes = slices.DeleteFunc(v.boxes, func(b *physics.Body) bool {
		if b.Transform().Position.Y > killY {
			return false
		}
		v.removeBox(b)
		return true
	})
}

func (v *viewer) removeBox(b *physics.Body) {
	v.physics.Unregister(b)
	v.world.RemoveGameObject(b.Owner)
}

func (v *viewer) Update(deltaTime float32) {
	v.camera.Update(deltaTime)
	v.world.Update(deltaTime)

	if rl.IsKeyPressed(rl.KeyP) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.spawnBoxes(int(v.spawnCount))
	}
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) && rl.GetMousePosition().X > panelWidth {
		v.poke()
	}

	if g := v.physics.Scene().Gravity(); g.Y != -v.gravity {
		v.physics.Scene().SetGravity(rl.Vector3{Y: -v.gravity})
	}

	if v.paused {
		v.accum = 0
		return
	}
	v.accum += deltaTime
	steps := 0
	start := time.Now()
	for v.accum >= fixedStep && steps < maxSteps {
		v.stats = v.physics.Tick(fixedStep)
		v.accum -= fixedStep
		steps++
	}
	if steps == maxSteps {
		v.accum = 0
	}
	if steps > 0 {
		v.tickTime = time.Since(start) / time.Duration(steps)
	}
	v.cull()
}

// poke casts a ray through the cursor and kicks the first body it hits.
func (v *viewer) poke() {
	ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), v.camera.GetRaylibCamera())
	end := rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, 500))
	v.lastHit = v.physics.Cast(ray.Position, end)
	if !v.lastHit.Hit {
		return
	}
	b, ok := v.physics.Scene().Body(v.lastHit.Body)
	if !ok || !b.IsKinetic() {
		return
	}
	kick := rl.Vector3Scale(ray.Direction, 12)
	kick.Y += 6
	b.LinearVelocity = rl.Vector3Add(b.LinearVelocity, kick)
	b.Wake()
	slog.Debug("poked", "body", v.lastHit.Body, "at", v.lastHit.Position)
}

func (v *viewer) Draw() {
	cam := v.camera.GetRaylibCamera()

	rl.BeginDrawing()
	rl.ClearBackground(colorBg)

	rl.BeginMode3D(cam)
	rl.DrawPlane(rl.Vector3{}, rl.Vector2{X: 60, Y: 60}, colorGround)
	rl.DrawGrid(60, 1)
	v.drawRamp()
	v.drawBoxes()

	tb := v.trigger.WorldBounds
	size := tb.Size()
	rl.DrawCubeV(tb.Center(), size, colorTrigger)

	v.renderer.Reset()
	if v.showBounds {
		v.physics.Scene().Debug(v.renderer)
	}
	if v.showTree {
		v.renderer.Draw(v.physics.Scene().Tree())
	}
	if v.lastHit.Hit {
		rl.DrawSphere(v.lastHit.Position, 0.15, colorAccent)
		tip := rl.Vector3Add(v.lastHit.Position, v.lastHit.Normal)
		rl.DrawLine3D(v.lastHit.Position, tip, colorAccent)
	}
	rl.EndMode3D()

	v.drawUI()
	rl.EndDrawing()
}

func (v *viewer) drawRamp() {
	v.physics.Scene().Each(func(b *physics.Body) {
		if b.Type != physics.BodyTriangleMesh || b.Mesh == nil {
			return
		}
		t := b.Transform()
		for _, tri := range b.Mesh.Triangles {
			w := tri.Transform(t)
			rl.DrawTriangle3D(w.V0, w.V1, w.V2, colorRamp)
			rl.DrawTriangle3D(w.V0, w.V2, w.V1, colorRamp)
		}
	})
}

func (v *viewer) drawBoxes() {
	for _, b := range v.boxes {
		c, ok := surfaceColors[b.Surface]
		if !ok {
			c = rl.Gray
		}
		if b.Sleeping {
			c = rl.ColorBrightness(c, -0.4)
		}
		rl.DrawCubeV(b.WorldBounds.Center(), b.WorldBounds.Size(), c)
	}
}

const panelWidth = 240

func (v *viewer) drawUI() {
	rl.DrawRectangle(0, 0, panelWidth, int32(rl.GetScreenHeight()), colorPanel)

	x := float32(12)
	y := float32(12)
	const rowH = 22
	const textSize = 15

	rl.DrawText("PHYSICS", int32(x), int32(y), textSize, colorAccent)
	y += rowH + 4

	v.paused = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "Paused (P)", v.paused)
	y += rowH
	v.showBounds = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "Bounds", v.showBounds)
	y += rowH
	v.showTree = gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 16, Height: 16}, "BVH", v.showTree)
	y += rowH + 6

	rl.DrawText("Gravity", int32(x), int32(y+4), textSize, colorMuted)
	v.gravity = gui.Slider(rl.Rectangle{X: x + 70, Y: y, Width: 110, Height: 18}, "",
		fmt.Sprintf("%.1f", v.gravity), v.gravity, 0, 50)
	y += rowH + 2

	rl.DrawText("Spawn", int32(x), int32(y+4), textSize, colorMuted)
	v.spawnCount = gui.Slider(rl.Rectangle{X: x + 70, Y: y, Width: 110, Height: 18}, "",
		fmt.Sprintf("%d", int(v.spawnCount)), v.spawnCount, 1, 100)
	y += rowH + 6

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 100, Height: 24}, "Spawn (Space)") {
		v.spawnBoxes(int(v.spawnCount))
	}
	if gui.Button(rl.Rectangle{X: x + 110, Y: y, Width: 100, Height: 24}, "Clear") {
		v.clearBoxes()
	}
	y += 36

	lines := []string{
		fmt.Sprintf("bodies      %d", v.physics.Scene().Len()),
		fmt.Sprintf("pair tests  %d", v.stats.PairTests),
		fmt.Sprintf("collisions  %d", v.stats.Collisions),
		fmt.Sprintf("contacts    %d", v.stats.Contacts),
		fmt.Sprintf("tick        %v", v.tickTime.Round(time.Microsecond)),
		fmt.Sprintf("in zone     %d (%d entered)", v.trigger.Trigger.Len(), v.entered),
		fmt.Sprintf("impacts     %d", v.impacts),
		fmt.Sprintf("entities    %d", v.world.Len()),
		fmt.Sprintf("bvh depth   %d", v.physics.Scene().Tree().Depth()),
		fmt.Sprintf("debug draw  %d boxes", v.renderer.Boxes),
	}
	for _, line := range lines {
		rl.DrawText(line, int32(x), int32(y), textSize, colorText)
		y += rowH - 4
	}

	if v.lastHit.Hit {
		y += 6
		rl.DrawText(fmt.Sprintf("hit %v at %.1f", v.lastHit.Body, v.lastHit.Distance), int32(x), int32(y), textSize, colorAccent)
	}

	rl.DrawText("RMB orbit, wheel zoom, WASD pan, LMB poke", panelWidth+10, int32(rl.GetScreenHeight())-24, textSize, colorMuted)
	rl.DrawFPS(int32(rl.GetScreenWidth())-90, 10)
}
