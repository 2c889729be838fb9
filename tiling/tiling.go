// Package tiling transcodes image data between linear (CPU-visible) and the
// hardware's tiled representation. The scheme is pluggable behind the Layout
// interface so that a different swizzle can be substituted without touching
// the transfer logic that drives it.
package tiling

import (
	"github.com/utgardgfx/utgard/format"
)

// Layout transcodes rectangular sub-regions between a tiled image and a
// linear staging buffer. Coordinates and extents are in texels and must be
// aligned to the format's block dimensions for block-compressed formats.
//
// The tiled side always covers the full aligned image and is addressed by its
// level stride; the linear side covers only the requested box.
type Layout interface {
	// Load copies the box at (x, y, w, h) out of the tiled image src into the
	// linear buffer dst (untile).
	Load(dst, src []byte, x, y, w, h int, dstStride, srcStride int, f format.Format)
	// Store copies the linear buffer src into the box at (x, y, w, h) of the
	// tiled image dst (tile).
	Store(dst, src []byte, x, y, w, h int, dstStride, srcStride int, f format.Format)
}

const (
	tileDim       = 16
	blocksPerTile = tileDim * tileDim
)

// spaceFiller spreads the low 4 bits of a coordinate into the even bit
// positions of the in-tile index.
var spaceFiller = [16]uint32{
	0x000, 0x001, 0x004, 0x005, 0x010, 0x011, 0x014, 0x015,
	0x040, 0x041, 0x044, 0x045, 0x050, 0x051, 0x054, 0x055,
}

// tiledIndex returns a block's position along the u-order curve inside its
// 16x16 tile. The index bit pattern, MSB first, is
// y3 (x3^y3) y2 (x2^y2) y1 (x1^y1) y0 (x0^y0): multiplying the spread y bits
// by 3 duplicates each into the adjacent even position, and the xor folds the
// x bits in.
func tiledIndex(x, y uint32) uint32 {
	return spaceFiller[y&0xf]*3 ^ spaceFiller[x&0xf]
}

// UInterleaved is the 16x16-block u-interleaved layout used by the hardware
// for textures and render targets. Tiles are stored row-major; blocks within
// a tile follow the u-order curve.
type UInterleaved struct{}

var _ Layout = UInterleaved{}

// tiledOffset returns the byte offset of block (bx, by) within a tiled image
// whose rows of blocks are stride bytes apart. stride covers the 16-aligned
// image width, so one row of tiles spans exactly tileDim*stride bytes.
func tiledOffset(bx, by, stride, blockSize int) int {
	return (by>>4)*(tileDim*stride) +
		(bx>>4)*(blocksPerTile*blockSize) +
		int(tiledIndex(uint32(bx), uint32(by)))*blockSize
}

func (UInterleaved) Load(dst, src []byte, x, y, w, h int, dstStride, srcStride int, f format.Format) {
	bs := f.BlockSize()
	bx0 := x / f.BlockWidth()
	by0 := y / f.BlockHeight()
	bw := f.BlocksWide(w)
	bh := f.BlockRows(h)

	for row := 0; row < bh; row++ {
		by := by0 + row
		lineBase := (by >> 4) * (tileDim * srcStride)
		inTileY := spaceFiller[by&0xf] * 3
		dstRow := dst[row*dstStride:]

		for col := 0; col < bw; col++ {
			bx := bx0 + col
			srcOff := lineBase + (bx>>4)*(blocksPerTile*bs) +
				int(inTileY^spaceFiller[bx&0xf])*bs
			copy(dstRow[col*bs:col*bs+bs], src[srcOff:srcOff+bs])
		}
	}
}

func (UInterleaved) Store(dst, src []byte, x, y, w, h int, dstStride, srcStride int, f format.Format) {
	bs := f.BlockSize()
	bx0 := x / f.BlockWidth()
	by0 := y / f.BlockHeight()
	bw := f.BlocksWide(w)
	bh := f.BlockRows(h)

	for row := 0; row < bh; row++ {
		by := by0 + row
		lineBase := (by >> 4) * (tileDim * dstStride)
		inTileY := spaceFiller[by&0xf] * 3
		srcRow := src[row*srcStride:]

		for col := 0; col < bw; col++ {
			bx := bx0 + col
			dstOff := lineBase + (bx>>4)*(blocksPerTile*bs) +
				int(inTileY^spaceFiller[bx&0xf])*bs
			copy(dst[dstOff:dstOff+bs], srcRow[col*bs:col*bs+bs])
		}
	}
}
