package spatial

import (
	"collide3d/internal/geom"
	"log/slog"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// DefaultSpacing is the cell edge length used when none is given.
const DefaultSpacing = 5.0

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y, Z int
}

// Coordinate maps a position to the nearest cell centre. Cells are centred
// on multiples of spacing, so rounding (not truncation) picks the cell.
func Coordinate(pos rl.Vector3, spacing float32) Cell {
	return Cell{
		X: int(math32.Round(pos.X / spacing)),
		Y: int(math32.Round(pos.Y / spacing)),
		Z: int(math32.Round(pos.Z / spacing)),
	}
}

// SpatialHash is a uniform grid keyed by cell. Objects spanning several
// cells are stored in each of them. The spacing is fixed for the lifetime
// of the grid.
type SpatialHash struct {
	spacing float32
	cells   map[Cell][]Testable
	bounds  geom.AABB
	count   int
	logger  *slog.Logger
}

func NewSpatialHash(spacing float32) *SpatialHash {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	return &SpatialHash{
		spacing: spacing,
		cells:   make(map[Cell][]Testable),
		bounds:  geom.EmptyAABB(),
		logger:  slog.Default(),
	}
}

// SetLogger sets where unsupported casts are reported. nil restores
// slog.Default().
func (h *SpatialHash) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	h.logger = l
}

func (h *SpatialHash) Spacing() float32 {
	return h.spacing
}

// CellBounds returns the world box covered by c.
func (h *SpatialHash) CellBounds(c Cell) geom.AABB {
	center := rl.Vector3{
		X: float32(c.X) * h.spacing,
		Y: float32(c.Y) * h.spacing,
		Z: float32(c.Z) * h.spacing,
	}
	return geom.NewAABBFromCenter(center, rl.Vector3{X: h.spacing, Y: h.spacing, Z: h.spacing})
}

// Insert adds every object to all cells its bounds touch.
func (h *SpatialHash) Insert(objects ...Testable) {
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		b := obj.Bounds()
		lo := Coordinate(b.Min, h.spacing)
		hi := Coordinate(b.Max, h.spacing)
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					key := Cell{x, y, z}
					h.cells[key] = append(h.cells[key], obj)
				}
			}
		}
		h.bounds = geom.Combine(h.bounds, b)
		h.count++
	}
}

// Query looks only at the cell holding the centre of box. A box that
// straddles a cell border does not see objects that live only in the
// neighbouring cell.
func (h *SpatialHash) Query(box geom.AABB, result *QueryResult) {
	cell := Coordinate(box.Center(), h.spacing)
	if !h.CellBounds(cell).Intersects(box) {
		return
	}
	for _, obj := range h.cells[cell] {
		obj.Query(box, result)
	}
}

// Cast only supports segments that start and end in the same cell. Longer
// segments report a miss; there is no cell walk.
func (h *SpatialHash) Cast(start, end rl.Vector3) Hit {
	cell := Coordinate(start, h.spacing)
	if last := Coordinate(end, h.spacing); cell != last {
		h.logger.Debug("spatial hash cast spans cells, reporting a miss", "from", cell, "to", last)
		return Hit{}
	}
	if !geom.LineInBoundingBox(start, end, h.CellBounds(cell)).Hit {
		return Hit{}
	}
	var best Hit
	for _, obj := range h.cells[cell] {
		best = Closer(best, obj.Cast(start, end))
	}
	return best
}

// Bounds is the union of everything inserted so far.
func (h *SpatialHash) Bounds() geom.AABB {
	return h.bounds
}

func (h *SpatialHash) Debug(d Drawer) {
	for c, objs := range h.cells {
		if len(objs) == 0 {
			continue
		}
		d.DrawBox(h.CellBounds(c), rl.DarkGreen)
	}
}

// Len returns the number of inserted objects, not cell entries.
func (h *SpatialHash) Len() int {
	return h.count
}

// Cells returns the number of occupied cells.
func (h *SpatialHash) Cells() int {
	return len(h.cells)
}

// Bucket returns the objects stored in c.
func (h *SpatialHash) Bucket(c Cell) []Testable {
	return h.cells[c]
}

// Destroy forgets all cells. Objects are not owned by the grid.
func (h *SpatialHash) Destroy() {
	clear(h.cells)
	h.bounds = geom.EmptyAABB()
	h.count = 0
}
