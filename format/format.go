// Package format describes the pixel formats understood by the rasterizer and
// the block arithmetic needed to lay them out in memory.
package format

// Format identifies a pixel format. The zero value is invalid.
type Format uint32

const (
	Invalid Format = iota
	R8
	RG8
	RGB565
	RGBA4
	RGBA8
	BGRA8
	Z16
	Z24S8
	// ETC1 is block-compressed: 4x4 texel blocks packed into 8 bytes.
	ETC1
)

type formatInfo struct {
	name        string
	blockWidth  int
	blockHeight int
	blockSize   int
	depth       bool
	stencil     bool
}

var formatTable = map[Format]formatInfo{
	R8:     {name: "r8", blockWidth: 1, blockHeight: 1, blockSize: 1},
	RG8:    {name: "rg8", blockWidth: 1, blockHeight: 1, blockSize: 2},
	RGB565: {name: "rgb565", blockWidth: 1, blockHeight: 1, blockSize: 2},
	RGBA4:  {name: "rgba4", blockWidth: 1, blockHeight: 1, blockSize: 2},
	RGBA8:  {name: "rgba8", blockWidth: 1, blockHeight: 1, blockSize: 4},
	BGRA8:  {name: "bgra8", blockWidth: 1, blockHeight: 1, blockSize: 4},
	Z16:    {name: "z16", blockWidth: 1, blockHeight: 1, blockSize: 2, depth: true},
	Z24S8:  {name: "z24s8", blockWidth: 1, blockHeight: 1, blockSize: 4, depth: true, stencil: true},
	ETC1:   {name: "etc1", blockWidth: 4, blockHeight: 4, blockSize: 8},
}

func (f Format) String() string {
	info, ok := formatTable[f]
	if !ok {
		return "invalid"
	}
	return info.name
}

func (f Format) BlockWidth() int  { return formatTable[f].blockWidth }
func (f Format) BlockHeight() int { return formatTable[f].blockHeight }

// BlockSize returns the number of bytes one block occupies.
func (f Format) BlockSize() int { return formatTable[f].blockSize }

func (f Format) HasDepth() bool   { return formatTable[f].depth }
func (f Format) HasStencil() bool { return formatTable[f].stencil }

// BlocksWide returns the number of blocks needed to cover the given width in texels.
func (f Format) BlocksWide(width int) int {
	bw := formatTable[f].blockWidth
	return (width + bw - 1) / bw
}

// BlockRows returns the number of block rows needed to cover the given height in texels.
func (f Format) BlockRows(height int) int {
	bh := formatTable[f].blockHeight
	return (height + bh - 1) / bh
}

// Stride returns the number of bytes one row of blocks occupies at the given width in texels.
func (f Format) Stride(width int) int {
	return f.BlocksWide(width) * f.BlockSize()
}

// Size2D returns the number of bytes a two-dimensional slice occupies given a row
// stride in bytes and a height in texels.
func (f Format) Size2D(stride, height int) int {
	return stride * f.BlockRows(height)
}
