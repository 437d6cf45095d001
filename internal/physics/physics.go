package physics

import (
	"collide3d/internal/config"
	"collide3d/internal/geom"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Physics is the lifecycle wrapper the game loop talks to. Tick is
// synchronous; nothing here spawns goroutines.
type Physics struct {
	cfg    config.Physics
	scene  *Scene
	logger *slog.Logger
}

// New validates cfg and returns an unconstructed facade. Invalid values are
// replaced with defaults and logged.
func New(cfg config.Physics) *Physics {
	p := &Physics{
		cfg:    cfg,
		logger: slog.Default().With("component", "physics"),
	}
	for _, w := range p.cfg.Validate() {
		p.logger.Warn("config", "problem", w)
	}
	return p
}

func (p *Physics) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	p.logger = l.With("component", "physics")
	if p.scene != nil {
		p.scene.SetLogger(p.logger)
	}
}

func (p *Physics) Config() config.Physics {
	return p.cfg
}

// Construct allocates the scene. Calling it again keeps the existing one.
func (p *Physics) Construct() {
	if p.scene != nil {
		return
	}
	p.scene = NewScene(p.cfg, p.logger)
	p.logger.Info("constructed", "gravity", p.cfg.Gravity, "bvh_seed", p.cfg.BVHSeed)
}

// Tick runs one step and returns its stats. No-op before Construct.
func (p *Physics) Tick(dt float32) Stats {
	if p.scene == nil {
		return Stats{}
	}
	p.scene.Tick(dt)
	return p.scene.Stats()
}

// Destroy clears the registry. Bodies stay with their owners.
func (p *Physics) Destroy() {
	if p.scene == nil {
		return
	}
	n := p.scene.Len()
	p.scene.Clear()
	p.scene = nil
	p.logger.Info("destroyed", "bodies", n)
}

func (p *Physics) Register(b *Body) Handle {
	if p.scene == nil {
		p.logger.Warn("register before construct", "type", b.Type)
		return Handle{}
	}
	return b.Construct(p.scene)
}

func (p *Physics) Unregister(b *Body) {
	if p.scene == nil || b.scene != p.scene {
		return
	}
	p.scene.Unregister(b.handle)
}

func (p *Physics) Cast(start, end rl.Vector3) CastResult {
	if p.scene == nil {
		return CastResult{}
	}
	return p.scene.Cast(start, end)
}

func (p *Physics) Query(box geom.AABB) []*Body {
	if p.scene == nil {
		return nil
	}
	return p.scene.Query(box)
}

// Scene returns the live scene, nil before Construct or after Destroy.
func (p *Physics) Scene() *Scene {
	return p.scene
}
