package geom

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Transform struct {
	Position rl.Vector3
	Rotation rl.Vector3 // Euler angles in degrees
	Scale    rl.Vector3
}

func Identity() Transform {
	return Transform{Scale: rl.Vector3One()}
}

// RotationMatrix applies X, then Y, then Z, the same order the renderer uses.
func (t Transform) RotationMatrix() rl.Matrix {
	rotX := rl.MatrixRotateX(t.Rotation.X * rl.Deg2rad)
	rotY := rl.MatrixRotateY(t.Rotation.Y * rl.Deg2rad)
	rotZ := rl.MatrixRotateZ(t.Rotation.Z * rl.Deg2rad)
	return rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)
}

// Matrix builds scale * rotation * translation.
func (t Transform) Matrix() rl.Matrix {
	scale := t.Scale
	if scale == (rl.Vector3{}) {
		scale = rl.Vector3One()
	}
	scaleMatrix := rl.MatrixScale(scale.X, scale.Y, scale.Z)
	transMatrix := rl.MatrixTranslate(t.Position.X, t.Position.Y, t.Position.Z)
	return rl.MatrixMultiply(rl.MatrixMultiply(scaleMatrix, t.RotationMatrix()), transMatrix)
}

func (t Transform) Apply(p rl.Vector3) rl.Vector3 {
	return rl.Vector3Transform(p, t.Matrix())
}

// Rotate turns a direction by the transform's orientation only.
func (t Transform) Rotate(dir rl.Vector3) rl.Vector3 {
	if t.Rotation == (rl.Vector3{}) {
		return dir
	}
	return rl.Vector3Transform(dir, t.RotationMatrix())
}
