package engine

import "slices"

// Scene owns the live entities. Physics bodies only borrow them.
type Scene struct {
	Name        string
	GameObjects []*GameObject
	byUID       map[uint64]*GameObject
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:  name,
		byUID: make(map[uint64]*GameObject),
	}
}

// AddGameObject adds g, moving it out of any other scene. Adding an object
// twice is a no-op.
func (s *Scene) AddGameObject(g *GameObject) {
	if g.Scene == s {
		return
	}
	if g.Scene != nil {
		g.Scene.RemoveGameObject(g)
	}
	if s.byUID == nil {
		s.byUID = make(map[uint64]*GameObject)
	}
	g.Scene = s
	s.GameObjects = append(s.GameObjects, g)
	s.byUID[g.UID] = g
}

// RemoveGameObject keeps the order of the remaining objects.
func (s *Scene) RemoveGameObject(g *GameObject) bool {
	i := slices.Index(s.GameObjects, g)
	if i < 0 {
		return false
	}
	s.GameObjects = slices.Delete(s.GameObjects, i, i+1)
	delete(s.byUID, g.UID)
	g.Scene = nil
	return true
}

func (s *Scene) Len() int {
	return len(s.GameObjects)
}

func (s *Scene) FindByUID(uid uint64) *GameObject {
	return s.byUID[uid]
}

func (s *Scene) FindByName(name string) *GameObject {
	i := slices.IndexFunc(s.GameObjects, func(g *GameObject) bool { return g.Name == name })
	if i < 0 {
		return nil
	}
	return s.GameObjects[i]
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

// Update starts objects added since the last frame, then updates every
// active object. Objects added during the pass wait for the next frame.
func (s *Scene) Update(deltaTime float32) {
	objects := slices.Clone(s.GameObjects)
	for _, g := range objects {
		g.Start()
	}
	for _, g := range objects {
		g.Update(deltaTime)
	}
}
