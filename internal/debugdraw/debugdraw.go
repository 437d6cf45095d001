// Package debugdraw renders spatial debug geometry with raylib. Calls must
// happen between rl.BeginMode3D and rl.EndMode3D.
package debugdraw

import (
	"collide3d/internal/geom"
	"collide3d/internal/spatial"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer implements spatial.Drawer on top of raylib's 3D primitives.
type Renderer struct {
	Boxes int
	Lines int

	// MaxBoxes caps boxes per frame. Zero means unlimited.
	MaxBoxes int
}

var _ spatial.Drawer = (*Renderer)(nil)

func New() *Renderer {
	return &Renderer{}
}

// Reset clears the per-frame counters.
func (r *Renderer) Reset() {
	r.Boxes = 0
	r.Lines = 0
}

func (r *Renderer) DrawBox(box geom.AABB, c color.RGBA) {
	if box.IsEmpty() || (r.MaxBoxes > 0 && r.Boxes >= r.MaxBoxes) {
		return
	}
	r.Boxes++
	rl.DrawBoundingBox(box.BoundingBox(), c)
}

func (r *Renderer) DrawLine(start, end rl.Vector3, c color.RGBA) {
	r.Lines++
	rl.DrawLine3D(start, end, c)
}

// Draw renders t and returns how many boxes it emitted.
func (r *Renderer) Draw(t spatial.Testable) int {
	before := r.Boxes
	t.Debug(r)
	return r.Boxes - before
}
