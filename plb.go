package utgard

import (
	"github.com/cockroachdb/errors"

	"github.com/utgardgfx/utgard/drm"
	"github.com/utgardgfx/utgard/memutils"
)

// plbStreamBytesPerTile is the size of one tile's descriptor in a
// command stream, plus one trailing terminator word per stream.
const (
	plbStreamBytesPerTile  = 16
	plbStreamTerminatorLen = 4
)

// plbStreamKey identifies a command stream by geometry partition slot and
// tile-grid dimensions. Surfaces with identical tiled geometry share streams.
type plbStreamKey struct {
	plbIndex int
	tiledW   int
	tiledH   int
}

// plbStream is a reference-counted command-stream cache entry. Its buffer is
// built lazily the first time a frame actually walks the stream.
type plbStream struct {
	key      plbStreamKey
	refCount int
	bo       *drm.BO
}

// refPLBStreams takes one reference per partition slot for the given tile
// grid, creating entries on first use.
func (c *Context) refPLBStreams(tiledW, tiledH int) {
	for i := 0; i < c.plbSlots; i++ {
		key := plbStreamKey{plbIndex: i, tiledW: tiledW, tiledH: tiledH}

		stream, ok := c.plbStreams.Get(key)
		if ok {
			stream.refCount++
			continue
		}
		c.plbStreams.Put(key, &plbStream{key: key, refCount: 1})
	}
}

// unrefPLBStreams drops one reference per partition slot, freeing the entry
// and any built buffer at the transition to zero.
func (c *Context) unrefPLBStreams(tiledW, tiledH int) {
	for i := 0; i < c.plbSlots; i++ {
		key := plbStreamKey{plbIndex: i, tiledW: tiledW, tiledH: tiledH}

		stream, ok := c.plbStreams.Get(key)
		if !ok {
			panic("released a command stream that was never referenced")
		}

		stream.refCount--
		if stream.refCount > 0 {
			continue
		}
		if stream.bo != nil {
			stream.bo.Unref()
			stream.bo = nil
		}
		c.plbStreams.Delete(key)
	}
}

// StreamBuffer returns the command-stream buffer for a partition slot and
// tile grid, allocating it on first use. At least one live surface must
// reference the grid.
func (c *Context) StreamBuffer(slot, tiledW, tiledH int) (*drm.BO, error) {
	key := plbStreamKey{plbIndex: slot, tiledW: tiledW, tiledH: tiledH}

	stream, ok := c.plbStreams.Get(key)
	if !ok {
		return nil, errors.Newf("no surface references a %dx%d tile grid on slot %d",
			tiledW, tiledH, slot)
	}

	if stream.bo == nil {
		size := tiledW*tiledH*plbStreamBytesPerTile + plbStreamTerminatorLen
		size = memutils.AlignUp(size, uint(c.screen.pageSize))

		bo, err := drm.NewBO(c.screen.dev, size)
		if err != nil {
			return nil, errors.Mark(err, ErrOutOfMemory)
		}
		stream.bo = bo
	}

	return stream.bo, nil
}
