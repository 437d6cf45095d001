package engine

import (
	"collide3d/internal/geom"
	"sync/atomic"
)

var nextUID atomic.Uint64

// GameObject is an entity. Physics reads its Transform and, for mesh-bearing
// objects, MeshBounds.
type GameObject struct {
	UID        uint64
	Name       string
	Tags       []string
	Transform  geom.Transform
	MeshBounds *geom.AABB // local-space bounds of the attached mesh, nil if none
	Active     bool
	Scene      *Scene
	components []Component
	started    bool
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		UID:        nextUID.Add(1),
		Name:       name,
		Active:     true,
		Transform:  geom.Identity(),
		components: make([]Component, 0),
	}
}

// NewMeshObject creates an object carrying local mesh bounds.
func NewMeshObject(name string, bounds geom.AABB) *GameObject {
	g := NewGameObject(name)
	g.MeshBounds = &bounds
	return g
}

func (g *GameObject) AddComponent(c Component) {
	c.SetGameObject(g)
	g.components = append(g.components, c)
}

// GetComponent returns the first component of type T
func GetComponent[T Component](g *GameObject) T {
	var zero T
	if g == nil {
		return zero
	}
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

// HasComponent reports whether any component of g satisfies T.
func HasComponent[T any](g *GameObject) bool {
	if g == nil {
		return false
	}
	for _, c := range g.components {
		if _, ok := c.(T); ok {
			return true
		}
	}
	return false
}

func (g *GameObject) Start() {
	if g.started {
		return
	}
	for _, c := range g.components {
		c.Start()
	}
	g.started = true
}

func (g *GameObject) Update(deltaTime float32) {
	if !g.Active {
		return
	}
	for _, c := range g.components {
		c.Update(deltaTime)
	}
}

func (g *GameObject) Components() []Component {
	return g.components
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
