package utgard

import (
	"github.com/cockroachdb/errors"

	"github.com/utgardgfx/utgard/drm"
)

// Transfer is one scoped CPU access to a resource, created by MapResource
// and retired by Unmap. Transfers are pooled; callers must not hold one past
// its Unmap.
type Transfer struct {
	ctx   *Context
	res   *Resource
	level int
	usage MapFlags
	box   Box

	// Stride and LayerStride describe the returned data: the staging layout
	// for tiled resources, the level layout otherwise.
	Stride      int
	LayerStride int

	staging []byte
}

// MapResource exposes a box of one mip level to the CPU and returns the
// transfer handle plus the data to read or write.
//
// Tiled resources are transcoded through a staging buffer: the returned
// slice covers exactly the requested box, is filled from the tiled contents
// when usage includes MapRead, and is written back on Unmap when usage
// includes MapWrite. Demanding MapDirectly on a tiled resource fails with
// ErrUnsupportedMapping.
//
// Linear resources return a window into the mapped backing buffer starting
// at the box origin.
//
// Unless the resource's usage class is UsageStream, mapping synchronizes
// with the GPU: pending work referencing the buffer is flushed and the call
// blocks, without timeout, until the buffer's fence signals for the
// requested access direction.
func (c *Context) MapResource(res *Resource, level int, usage MapFlags, box Box) (*Transfer, []byte, error) {
	c.logger.Debug("Context::MapResource",
		"level", level,
		"usage", usage.String(),
		"tiled", res.tiled)

	// Tiled data has no linear window to hand out.
	if res.tiled && usage&MapDirectly != 0 {
		return nil, nil, errors.WithStack(ErrUnsupportedMapping)
	}

	bo := res.bo

	// Stream buffers are written once to disjoint ranges; their producers
	// take care of ordering, so skip the fence round-trip.
	if res.tmpl.Usage != UsageStream && usage&(MapRead|MapWrite) != 0 {
		write := usage&MapWrite != 0
		if c.flush != nil && c.flush.NeedFlush(bo, write) {
			c.flush.Flush()
		}

		op := drm.WaitRead
		if write {
			op = drm.WaitWrite
		}
		err := bo.Wait(op)
		if err != nil {
			return nil, nil, err
		}
	}

	data, err := bo.Map()
	if err != nil {
		return nil, nil, err
	}

	trans := c.transferPool.Get().(*Transfer)
	*trans = Transfer{
		ctx:   c,
		res:   res.Ref(),
		level: level,
		usage: usage,
		box:   box,
	}
	c.stats.TransferCount++

	f := res.tmpl.Format
	lvl := &res.levels[level]

	if res.tiled {
		trans.Stride = f.Stride(box.Width)
		trans.LayerStride = trans.Stride * box.Height
		trans.staging = make([]byte, trans.LayerStride*box.Depth)
		c.stats.StagingBytes += len(trans.staging)

		if usage&MapRead != 0 {
			for i := 0; i < box.Depth; i++ {
				c.screen.layout.Load(
					trans.staging[i*trans.LayerStride:],
					data[lvl.Offset+(i+box.Z)*lvl.LayerStride:],
					box.X, box.Y, box.Width, box.Height,
					trans.Stride, lvl.Stride, f)
			}
		}
		return trans, trans.staging, nil
	}

	trans.Stride = lvl.Stride
	trans.LayerStride = lvl.LayerStride

	offset := lvl.Offset +
		box.Z*lvl.LayerStride +
		box.Y/f.BlockHeight()*lvl.Stride +
		box.X/f.BlockWidth()*f.BlockSize()
	return trans, data[offset:], nil
}

// Unmap retires a transfer, committing staged writes back into the tiled
// layout and returning the record to the pool.
func (c *Context) Unmap(trans *Transfer) {
	c.logger.Debug("Context::Unmap")

	if trans.res == nil {
		panic("attempted to unmap a transfer that is not mapped")
	}

	res := trans.res
	if trans.staging != nil {
		if trans.usage&MapWrite != 0 {
			f := res.tmpl.Format
			lvl := &res.levels[trans.level]
			data := res.bo.Mapped()

			for i := 0; i < trans.box.Depth; i++ {
				c.screen.layout.Store(
					data[lvl.Offset+(i+trans.box.Z)*lvl.LayerStride:],
					trans.staging[i*trans.LayerStride:],
					trans.box.X, trans.box.Y, trans.box.Width, trans.box.Height,
					lvl.Stride, trans.Stride, f)
			}
		}
		c.stats.StagingBytes -= len(trans.staging)
	}
	c.stats.TransferCount--

	res.Unref()
	*trans = Transfer{}
	c.transferPool.Put(trans)
}

// FlushTransferRegion notifies that a sub-range of a mapped transfer is
// ready. Staged transcoding at Unmap is the only synchronization boundary in
// this design, so this is a placeholder extension point.
func (c *Context) FlushTransferRegion(trans *Transfer, box Box) {
}

// FlushResource notifies that a resource's contents must become visible
// outside the context. Nothing is buffered per resource, so there is nothing
// to do.
func (c *Context) FlushResource(res *Resource) {
}
