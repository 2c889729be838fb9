package utgard

import (
	"github.com/cockroachdb/errors"

	"github.com/utgardgfx/utgard/drm"
	"github.com/utgardgfx/utgard/format"
	"github.com/utgardgfx/utgard/memutils"
)

// levelBaseLimit is the last mip level with an independently programmable
// base address. Levels past it live at fixed 0x400-byte offsets from the
// level-10 base.
const (
	levelBaseLimit  = 10
	implicitMipSlot = 0x400
)

// ResourceTemplate describes the geometry and intended use of a resource.
type ResourceTemplate struct {
	Target    Target
	Format    format.Format
	Width     int
	Height    int
	Depth     int
	ArraySize int
	// Levels is the mip level count, including the base level.
	Levels int
	Bind   BindFlags
	Usage  UsageClass
}

func (t *ResourceTemplate) normalize() {
	if t.Depth < 1 {
		t.Depth = 1
	}
	if t.ArraySize < 1 {
		t.ArraySize = 1
	}
	if t.Levels < 1 {
		t.Levels = 1
	}
}

// Level is the placement of one mip level within a resource's allocation.
type Level struct {
	// Width is the level width after any rounding to the tiling granularity.
	Width int
	// Stride is the number of bytes per row of blocks.
	Stride int
	// Offset is the byte offset of the level within the allocation.
	Offset int
	// LayerStride is the byte distance between consecutive array layers or
	// depth slices.
	LayerStride int
}

// Resource is a texture or buffer backed by device-addressable memory. Its
// geometry is fixed at creation; only the damage region changes afterwards.
type Resource struct {
	screen      *Screen
	tmpl        ResourceTemplate
	levels      []Level
	bo          *drm.BO
	scanout     *Scanout
	damage      DamageRegion
	tiled       bool
	alignedDims bool
	refCount    int
}

func (r *Resource) Format() format.Format { return r.tmpl.Format }
func (r *Resource) Width() int            { return r.tmpl.Width }
func (r *Resource) Height() int           { return r.tmpl.Height }
func (r *Resource) Tiled() bool           { return r.tiled }
func (r *Resource) Size() int             { return r.bo.Size() }

// Level returns the placement of the given mip level.
func (r *Resource) Level(level int) Level { return r.levels[level] }

// Damage returns the currently tracked damage region. An empty region means
// no partial-redraw restriction is known.
func (r *Resource) Damage() *DamageRegion { return &r.damage }

// Ref takes an additional reference and returns the resource for chaining.
func (r *Resource) Ref() *Resource {
	r.refCount++
	return r
}

// Unref drops a reference. The backing buffer, any scanout allocation and the
// damage region are released when the last reference goes away.
func (r *Resource) Unref() {
	r.refCount--
	if r.refCount > 0 {
		return
	}
	if r.refCount < 0 {
		panic("resource reference count went negative")
	}

	if r.bo != nil {
		r.bo.Unref()
		r.bo = nil
	}
	if r.scanout != nil {
		r.screen.ro.DestroyScanout(r.scanout)
		r.scanout = nil
	}
	r.damage = DamageRegion{}
	r.screen.unregisterResource(r)
}

// setupMiptree computes the per-level layout and returns the total unaligned
// size. Levels 0-9 each get a 64-byte aligned base so the hardware can be
// pointed at them directly; levels from 10 on have implicit base addresses at
// 0x400-byte steps from level 10, so each contributes a fixed slot. The last
// level contributes its exact size since nothing follows it.
func (r *Resource) setupMiptree(width0, height0 int, alignDims bool) int {
	f := r.tmpl.Format
	width := width0
	height := height0
	depth := r.tmpl.Depth
	last := r.tmpl.Levels - 1
	size := 0

	for level := 0; level <= last; level++ {
		alignedWidth := width
		alignedHeight := height
		if alignDims {
			alignedWidth = memutils.AlignUp(width, memutils.TileSize)
			alignedHeight = memutils.AlignUp(height, memutils.TileSize)
		}

		stride := f.Stride(alignedWidth)
		levelSize := stride * f.BlockRows(alignedHeight) * r.tmpl.ArraySize * depth

		r.levels[level] = Level{
			Width:  alignedWidth,
			Stride: stride,
			Offset: size,
			LayerStride: f.Stride(memutils.AlignUp(width, memutils.TileSize)) *
				memutils.AlignUp(height, memutils.TileSize),
		}

		switch {
		case level < levelBaseLimit:
			size += memutils.AlignUp(levelSize, memutils.LevelAlignment)
		case level != last:
			size += implicitMipSlot
		default:
			size += levelSize
		}

		width = memutils.Minify(width, 1)
		height = memutils.Minify(height, 1)
		depth = memutils.Minify(depth, 1)
	}

	return size
}

// Validate checks the level layout invariants: 64-byte aligned and strictly
// increasing offsets, with no level's occupied bytes overlapping the next
// level's base.
func (r *Resource) Validate() error {
	f := r.tmpl.Format
	width := r.tmpl.Width
	height := r.tmpl.Height
	depth := r.tmpl.Depth

	for i := range r.levels {
		alignedWidth := width
		alignedHeight := height
		if r.alignedDims {
			alignedWidth = memutils.AlignUp(width, memutils.TileSize)
			alignedHeight = memutils.AlignUp(height, memutils.TileSize)
		}

		level := &r.levels[i]
		if i > 0 && level.Offset <= r.levels[i-1].Offset {
			return errors.Newf("level %d offset %d does not follow level %d offset %d",
				i, level.Offset, i-1, r.levels[i-1].Offset)
		}
		if i < levelBaseLimit && level.Offset%memutils.LevelAlignment != 0 {
			return errors.Newf("level %d offset %d is not %d-byte aligned",
				i, level.Offset, memutils.LevelAlignment)
		}

		occupied := f.Stride(alignedWidth) * f.BlockRows(alignedHeight) * r.tmpl.ArraySize * depth
		if i >= levelBaseLimit && i+1 < len(r.levels) {
			occupied = implicitMipSlot
		}
		if i+1 < len(r.levels) && level.Offset+occupied > r.levels[i+1].Offset {
			return errors.Newf("level %d occupies bytes up to %d, past level %d offset %d",
				i, level.Offset+occupied, i+1, r.levels[i+1].Offset)
		}

		width = memutils.Minify(width, 1)
		height = memutils.Minify(height, 1)
		depth = memutils.Minify(depth, 1)
	}
	return nil
}

var _ memutils.Validatable = &Resource{}
