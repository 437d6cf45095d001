package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// SolverType selects how a collision response becomes a transform change.
type SolverType int

const (
	SolverPosition SolverType = iota
)

func (s SolverType) String() string {
	switch s {
	case SolverPosition:
		return "Position"
	}
	return "Unknown"
}

// Solve dispatches resp to the solver of the given kind.
func Solve(kind SolverType, body *Body, resp CollisionResponse) {
	switch kind {
	case SolverPosition:
		SolvePosition(body, resp)
	}
}

// SolvePosition moves the body back by normal*distance. No-op for zero
// distance, immovable bodies and bodies of infinite mass.
func SolvePosition(body *Body, resp CollisionResponse) {
	if resp.Distance <= 0 || !body.movable() {
		return
	}
	penetration := rl.Vector3Scale(resp.Normal, resp.Distance)

	t := body.Transform()
	t.Position = rl.Vector3Subtract(t.Position, penetration)
	body.SetTransform(t)

	body.Normal = rl.Vector3Add(body.Normal, rl.Vector3Negate(penetration))
}
