package utgard

import (
	"github.com/cockroachdb/errors"

	"github.com/utgardgfx/utgard/memutils"
)

// Scissor is a region in tile units, inclusive of Min and exclusive of Max.
type Scissor struct {
	MinX, MinY int
	MaxX, MaxY int
}

// DamageRegion is the set of tile-unit scissors describing what changed on a
// surface since the last presentation. An empty Rects slice means no partial
// damage is tracked, either because none was ever reported or because the
// last report covered the whole surface.
type DamageRegion struct {
	// Bound contains every scissor in Rects.
	Bound Scissor
	// Rects holds one scissor per reported rectangle, in report order.
	Rects []Scissor
	// Aligned is true when every reported rectangle sat exactly on tile
	// boundaries, enabling the fast redraw path.
	Aligned bool
}

func (d *DamageRegion) Empty() bool { return len(d.Rects) == 0 }

// Validate checks that the bound contains every per-rectangle scissor. A
// degenerate bound is legal; it means the reported damage fell entirely off
// the surface.
func (d *DamageRegion) Validate() error {
	if d.Bound.MaxX <= d.Bound.MinX || d.Bound.MaxY <= d.Bound.MinY {
		return nil
	}
	for i, s := range d.Rects {
		if s.MinX < d.Bound.MinX || s.MinY < d.Bound.MinY ||
			s.MaxX > d.Bound.MaxX || s.MaxY > d.Bound.MaxY {
			return errors.Newf("damage rect %d %+v escapes bound %+v", i, s, d.Bound)
		}
	}
	return nil
}

var _ memutils.Validatable = &DamageRegion{}

// scissorFromRect converts a pixel rectangle into tile units. Tile rows are
// counted from the top of the surface, so the Y axis flips, and the far edges
// round outward to whole tiles.
func scissorFromRect(r Rect, surfaceHeight int) Scissor {
	y := surfaceHeight - (r.Y + r.Height)
	return Scissor{
		MinX: r.X >> 4,
		MinY: y >> 4,
		MaxX: (r.X + r.Width + 0xf) >> 4,
		MaxY: (y + r.Height + 0xf) >> 4,
	}
}

func rectUnion(a, b Rect) Rect {
	x0 := a.X
	if b.X < x0 {
		x0 = b.X
	}
	y0 := a.Y
	if b.Y < y0 {
		y0 = b.Y
	}
	x1 := a.X + a.Width
	if b.X+b.Width > x1 {
		x1 = b.X + b.Width
	}
	y1 := a.Y + a.Height
	if b.Y+b.Height > y1 {
		y1 = b.Y + b.Height
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// rectClip intersects a rectangle with the surface extent, reporting false
// when nothing remains.
func rectClip(r Rect, width, height int) (Rect, bool) {
	x0 := r.X
	if x0 < 0 {
		x0 = 0
	}
	y0 := r.Y
	if y0 < 0 {
		y0 = 0
	}
	x1 := r.X + r.Width
	if x1 > width {
		x1 = width
	}
	y1 := r.Y + r.Height
	if y1 > height {
		y1 = height
	}
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// SetDamageRegion replaces the tracked damage with the given rectangles, in
// pixels. Any previous region is discarded first, including when the list is
// empty: reporting no rectangles leaves tracking cleared rather than
// preserving the prior frame's region, matching what display integration
// expects after a full present. A rectangle covering the whole surface also
// leaves tracking cleared, since restricting redraw buys nothing then.
func (r *Resource) SetDamageRegion(rects []Rect) {
	r.screen.logger.Debug("Resource::SetDamageRegion", "rects", len(rects))

	r.damage = DamageRegion{}

	if len(rects) == 0 {
		return
	}

	for _, rect := range rects {
		if rect.X <= 0 && rect.Y <= 0 &&
			rect.X+rect.Width >= r.tmpl.Width &&
			rect.Y+rect.Height >= r.tmpl.Height {
			return
		}
	}

	union := rects[0]
	for _, rect := range rects[1:] {
		union = rectUnion(union, rect)
	}

	var bound Scissor
	if clipped, ok := rectClip(union, r.tmpl.Width, r.tmpl.Height); ok {
		bound = scissorFromRect(clipped, r.tmpl.Height)
	}

	region := make([]Scissor, len(rects))
	aligned := true
	for i, rect := range rects {
		region[i] = scissorFromRect(rect, r.tmpl.Height)
		if rect.X&0xf != 0 || rect.Y&0xf != 0 ||
			rect.Width&0xf != 0 || rect.Height&0xf != 0 {
			aligned = false
		}
	}

	r.damage = DamageRegion{
		Bound:   bound,
		Rects:   region,
		Aligned: aligned,
	}
	memutils.DebugValidate(&r.damage)
}
