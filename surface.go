package utgard

import (
	"github.com/cockroachdb/errors"

	"github.com/utgardgfx/utgard/memutils"
)

// Surface is a renderable view of one mip level of a resource. Creating a
// surface references the command streams for its tile grid; destroying it
// releases them.
type Surface struct {
	ctx *Context
	res *Resource

	level  int
	width  int
	height int

	// tiledW and tiledH are the level dimensions in whole tiles.
	tiledW int
	tiledH int

	// reload is set while the surface's current contents must be read back
	// into the tile buffer before drawing over them.
	reload bool
}

// CreateSurface makes a renderable view of the given mip level.
func (c *Context) CreateSurface(res *Resource, level int) (*Surface, error) {
	c.logger.Debug("Context::CreateSurface", "level", level)

	if level < 0 || level >= res.tmpl.Levels {
		return nil, errors.Newf("level %d is outside the resource's %d levels", level, res.tmpl.Levels)
	}

	width := memutils.Minify(res.tmpl.Width, level)
	height := memutils.Minify(res.tmpl.Height, level)

	surf := &Surface{
		ctx:    c,
		res:    res.Ref(),
		level:  level,
		width:  width,
		height: height,
		tiledW: memutils.AlignUp(width, memutils.TileSize) >> 4,
		tiledH: memutils.AlignUp(height, memutils.TileSize) >> 4,
		reload: true,
	}

	c.refPLBStreams(surf.tiledW, surf.tiledH)

	return surf, nil
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }
func (s *Surface) Level() int  { return s.level }

// Resource returns the surface's backing resource without transferring a
// reference.
func (s *Surface) Resource() *Resource { return s.res }

// Destroy releases the surface's command-stream references and its hold on
// the resource.
func (s *Surface) Destroy() {
	s.ctx.logger.Debug("Surface::Destroy")

	s.ctx.unrefPLBStreams(s.tiledW, s.tiledH)
	s.res.Unref()
	s.res = nil
}
