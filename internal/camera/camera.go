// Package camera provides the orbit camera used by the physics viewer.
package camera

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OrbitCamera circles a target point. Yaw and Pitch are in degrees.
type OrbitCamera struct {
	Target    rl.Vector3
	Distance  float32
	Yaw       float32
	Pitch     float32
	LookSpeed float32
	ZoomSpeed float32
	PanSpeed  float32

	MinDistance float32
	MaxDistance float32
}

func New(target rl.Vector3, distance float32) *OrbitCamera {
	return &OrbitCamera{
		Target:      target,
		Distance:    distance,
		Yaw:         -135.0,
		Pitch:       30.0,
		LookSpeed:   0.3,
		ZoomSpeed:   1.5,
		PanSpeed:    8.0, // Units per second
		MinDistance: 2,
		MaxDistance: 200,
	}
}

// Update reads mouse and keyboard input. Right mouse drag orbits, the wheel
// zooms, WASD pans the target on the ground plane.
func (c *OrbitCamera) Update(deltaTime float32) {
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		c.Orbit(delta.X*c.LookSpeed, delta.Y*c.LookSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.Zoom(-wheel * c.ZoomSpeed)
	}

	var move rl.Vector2
	if rl.IsKeyDown(rl.KeyW) {
		move.Y++
	}
	if rl.IsKeyDown(rl.KeyS) {
		move.Y--
	}
	if rl.IsKeyDown(rl.KeyA) {
		move.X--
	}
	if rl.IsKeyDown(rl.KeyD) {
		move.X++
	}
	c.Pan(move, deltaTime)
}

// Orbit rotates around the target. Pitch is clamped short of the poles.
func (c *OrbitCamera) Orbit(yaw, pitch float32) {
	c.Yaw += yaw
	c.Pitch = min(max(c.Pitch+pitch, -89), 89)
}

func (c *OrbitCamera) Zoom(amount float32) {
	c.Distance = min(max(c.Distance+amount, c.MinDistance), c.MaxDistance)
}

// Pan moves the target along the horizontal forward/right axes.
// Diagonal input is normalized.
func (c *OrbitCamera) Pan(move rl.Vector2, deltaTime float32) {
	l := math32.Sqrt(move.X*move.X + move.Y*move.Y)
	if l == 0 {
		return
	}
	forward, right := c.directions()
	step := c.PanSpeed * deltaTime / l
	c.Target = rl.Vector3Add(c.Target, rl.Vector3Scale(forward, move.Y*step))
	c.Target = rl.Vector3Add(c.Target, rl.Vector3Scale(right, move.X*step))
}

// directions returns the horizontal unit vectors pointing away from the
// camera and to its right.
func (c *OrbitCamera) directions() (forward, right rl.Vector3) {
	yawRad := c.Yaw * math32.Pi / 180
	forward = rl.Vector3{X: -math32.Cos(yawRad), Z: -math32.Sin(yawRad)}
	right = rl.Vector3{X: math32.Sin(yawRad), Z: -math32.Cos(yawRad)}
	return
}

// Position is the eye point on the sphere around Target.
func (c *OrbitCamera) Position() rl.Vector3 {
	yawRad := c.Yaw * math32.Pi / 180
	pitchRad := c.Pitch * math32.Pi / 180
	return rl.Vector3{
		X: c.Target.X + c.Distance*math32.Cos(yawRad)*math32.Cos(pitchRad),
		Y: c.Target.Y + c.Distance*math32.Sin(pitchRad),
		Z: c.Target.Z + c.Distance*math32.Sin(yawRad)*math32.Cos(pitchRad),
	}
}

func (c *OrbitCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position(),
		Target:     c.Target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}
