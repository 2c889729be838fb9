package utgard

import (
	"github.com/utgardgfx/utgard/format"
	"github.com/utgardgfx/utgard/memutils"
)

// ChannelMask selects which channels a blit writes.
type ChannelMask uint32

const (
	MaskR ChannelMask = 1 << iota
	MaskG
	MaskB
	MaskA
	MaskZ
	MaskS

	MaskRGBA = MaskR | MaskG | MaskB | MaskA
	MaskZS   = MaskZ | MaskS
)

var channelMaskMapping = memutils.NewFlagStringMapping[ChannelMask]()

func init() {
	channelMaskMapping.Register(MaskR, "MaskR")
	channelMaskMapping.Register(MaskG, "MaskG")
	channelMaskMapping.Register(MaskB, "MaskB")
	channelMaskMapping.Register(MaskA, "MaskA")
	channelMaskMapping.Register(MaskZ, "MaskZ")
	channelMaskMapping.Register(MaskS, "MaskS")
}

func (m ChannelMask) String() string {
	return channelMaskMapping.FlagsToString(m)
}

// formatMask returns the full channel coverage of a format.
func formatMask(f format.Format) ChannelMask {
	if f.HasDepth() || f.HasStencil() {
		var mask ChannelMask
		if f.HasDepth() {
			mask |= MaskZ
		}
		if f.HasStencil() {
			mask |= MaskS
		}
		return mask
	}
	return MaskRGBA
}

// BlitTarget names one side of a blit.
type BlitTarget struct {
	Resource *Resource
	Level    int
	Box      Box
}

// BlitInfo describes a rectangle copy, possibly scaled or converting, from
// one resource to another.
type BlitInfo struct {
	Src  BlitTarget
	Dst  BlitTarget
	Mask ChannelMask
}

// Blitter is the 3D-pipeline collaborator used for blits a plain memory copy
// cannot express.
type Blitter interface {
	// IsSupported reports whether the pipeline can render the blit.
	IsSupported(info *BlitInfo) bool
	// Blit renders the blit through the 3D pipeline.
	Blit(info *BlitInfo) error
}

// Blit copies a rectangle between resources. Straight unscaled copies with
// full channel coverage go through the transfer path; everything else falls
// back to the 3D pipeline. Blits the pipeline cannot render degrade: an
// unsupported stencil channel is dropped from the mask, and a blit with no
// workable fallback is skipped. Degradation is logged, never fatal.
func (c *Context) Blit(info BlitInfo) {
	c.logger.Debug("Context::Blit", "mask", info.Mask.String())

	if c.tryCopyRegionBlit(&info) {
		return
	}

	if info.Mask&MaskS != 0 {
		c.logger.Warn("cannot blit stencil, dropping it from the mask")
		info.Mask &^= MaskS
		if info.Mask == 0 {
			return
		}
	}

	if c.blitter == nil || !c.blitter.IsSupported(&info) {
		c.logger.Warn("blit unsupported, skipping",
			"src", info.Src.Resource.tmpl.Format.String(),
			"dst", info.Dst.Resource.tmpl.Format.String())
		return
	}

	err := c.blitter.Blit(&info)
	if err != nil {
		c.logger.Warn("fallback blit failed", "error", err)
	}
}

// tryCopyRegionBlit serves a blit through a raw region copy when no format
// conversion, scaling or channel selection is involved.
func (c *Context) tryCopyRegionBlit(info *BlitInfo) bool {
	src := &info.Src
	dst := &info.Dst

	if src.Resource.tmpl.Format != dst.Resource.tmpl.Format {
		return false
	}
	if info.Mask != formatMask(dst.Resource.tmpl.Format) {
		return false
	}
	if src.Box.Width <= 0 || src.Box.Height <= 0 || src.Box.Depth <= 0 {
		return false
	}
	if src.Box.Width != dst.Box.Width ||
		src.Box.Height != dst.Box.Height ||
		src.Box.Depth != dst.Box.Depth {
		return false
	}

	// A raw copy reads and writes through live mappings of the same buffer,
	// so overlapping self-copies must take the pipeline instead.
	if src.Resource == dst.Resource && src.Level == dst.Level &&
		boxesIntersect(src.Box, dst.Box) {
		return false
	}

	err := c.CopyRegion(dst.Resource, dst.Level, dst.Box.X, dst.Box.Y, dst.Box.Z,
		src.Resource, src.Level, src.Box)
	return err == nil
}

func boxesIntersect(a, b Box) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height &&
		a.Z < b.Z+b.Depth && b.Z < a.Z+a.Depth
}

// CopyRegion copies a box of texels between two same-format resources
// through the transfer path, transcoding through staging on either side as
// needed.
func (c *Context) CopyRegion(dst *Resource, dstLevel, dstX, dstY, dstZ int,
	src *Resource, srcLevel int, srcBox Box) error {
	c.logger.Debug("Context::CopyRegion")

	srcTrans, srcData, err := c.MapResource(src, srcLevel, MapRead, srcBox)
	if err != nil {
		return err
	}
	defer c.Unmap(srcTrans)

	dstBox := Box{
		X: dstX, Y: dstY, Z: dstZ,
		Width: srcBox.Width, Height: srcBox.Height, Depth: srcBox.Depth,
	}
	dstTrans, dstData, err := c.MapResource(dst, dstLevel, MapWrite, dstBox)
	if err != nil {
		return err
	}
	defer c.Unmap(dstTrans)

	f := src.tmpl.Format
	rowBytes := f.Stride(srcBox.Width)
	rows := f.BlockRows(srcBox.Height)

	for z := 0; z < srcBox.Depth; z++ {
		for row := 0; row < rows; row++ {
			srcOff := z*srcTrans.LayerStride + row*srcTrans.Stride
			dstOff := z*dstTrans.LayerStride + row*dstTrans.Stride
			copy(dstData[dstOff:dstOff+rowBytes], srcData[srcOff:srcOff+rowBytes])
		}
	}
	return nil
}

// BufferSubdata writes bytes into a generic buffer at the given offset.
func (c *Context) BufferSubdata(res *Resource, offset int, data []byte) error {
	box := Box{X: offset, Width: len(data), Height: 1, Depth: 1}

	trans, dst, err := c.MapResource(res, 0, MapWrite, box)
	if err != nil {
		return err
	}
	defer c.Unmap(trans)

	copy(dst[:len(data)], data)
	return nil
}

// TextureSubdata writes a box of texels supplied in linear layout with the
// given strides.
func (c *Context) TextureSubdata(res *Resource, level int, box Box, data []byte, stride, layerStride int) error {
	trans, dst, err := c.MapResource(res, level, MapWrite, box)
	if err != nil {
		return err
	}
	defer c.Unmap(trans)

	f := res.tmpl.Format
	rowBytes := f.Stride(box.Width)
	rows := f.BlockRows(box.Height)

	for z := 0; z < box.Depth; z++ {
		for row := 0; row < rows; row++ {
			srcOff := z*layerStride + row*stride
			dstOff := z*trans.LayerStride + row*trans.Stride
			copy(dst[dstOff:dstOff+rowBytes], data[srcOff:srcOff+rowBytes])
		}
	}
	return nil
}
