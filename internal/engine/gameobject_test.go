package engine

import (
	"collide3d/internal/geom"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameObject(t *testing.T) {
	obj := NewGameObject("TestObject")

	assert.Equal(t, "TestObject", obj.Name)
	assert.NotZero(t, obj.UID)
	assert.NotNil(t, obj.components)
	assert.Equal(t, rl.Vector3One(), obj.Transform.Scale)
	assert.Nil(t, obj.MeshBounds)
}

func TestGameObjectUniqueUIDs(t *testing.T) {
	obj1 := NewGameObject("First")
	obj2 := NewGameObject("Second")
	obj3 := NewGameObject("Third")

	assert.NotEqual(t, obj1.UID, obj2.UID)
	assert.NotEqual(t, obj2.UID, obj3.UID)
	assert.NotEqual(t, obj1.UID, obj3.UID)
}

func TestNewMeshObjectCopiesBounds(t *testing.T) {
	bounds := geom.NewAABB(rl.Vector3{}, rl.Vector3{X: 1, Y: 2, Z: 3})
	obj := NewMeshObject("Crate", bounds)

	require.NotNil(t, obj.MeshBounds)
	bounds.Max.X = 10
	assert.Equal(t, float32(1), obj.MeshBounds.Max.X, "mesh bounds are not aliased")
}

func TestGameObjectHasTag(t *testing.T) {
	obj := NewGameObject("Test")
	obj.Tags = []string{"enemy", "ai", "dangerous"}

	assert.True(t, obj.HasTag("enemy"))
	assert.True(t, obj.HasTag("ai"))
	assert.False(t, obj.HasTag("player"))
	assert.False(t, NewGameObject("Test2").HasTag("anything"))
}

type pickup struct {
	BaseComponent
	collected int
}

func (p *pickup) Collect() { p.collected++ }

type collector interface{ Collect() }

func TestGameObjectComponents(t *testing.T) {
	obj := NewGameObject("Test")
	comp := &pickup{}
	obj.AddComponent(comp)

	require.Len(t, obj.Components(), 1)
	assert.Same(t, obj, comp.GetGameObject())
	assert.Same(t, comp, GetComponent[*pickup](obj))
	assert.True(t, HasComponent[collector](obj))
	assert.False(t, HasComponent[CollisionHandler](obj))
	assert.Nil(t, GetComponent[*pickup](nil))
}

func TestGameObjectStartCalledOnce(t *testing.T) {
	obj := NewGameObject("Test")
	obj.Start()
	assert.True(t, obj.started)
	obj.Start()
}

func TestEventWithArg(t *testing.T) {
	var e EventWithArg[int]
	sum := 0
	e.AddListener(func(v int) { sum += v })
	e.AddListener(func(v int) { sum += v * 10 })
	e.AddListener(nil)

	assert.Equal(t, 2, e.GetListenerCount())
	e.Invoke(2)
	assert.Equal(t, 22, sum)

	e.RemoveAllListeners()
	e.Invoke(5)
	assert.Equal(t, 22, sum)
}
