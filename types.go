package utgard

import (
	"github.com/utgardgfx/utgard/memutils"
)

// Target distinguishes generic buffers from the texture shapes.
type Target uint32

const (
	TargetBuffer Target = iota
	Target1D
	Target2D
	Target3D
	TargetCube
)

var targetNames = map[Target]string{
	TargetBuffer: "buffer",
	Target1D:     "1d",
	Target2D:     "2d",
	Target3D:     "3d",
	TargetCube:   "cube",
}

func (t Target) String() string {
	name, ok := targetNames[t]
	if !ok {
		return "unknown"
	}
	return name
}

// BindFlags describe how a resource will be used by the pipeline.
type BindFlags uint32

const (
	BindSampler BindFlags = 1 << iota
	BindRenderTarget
	BindDepthStencil
	BindScanout
	BindShared
	BindLinear
	BindVertexBuffer
	BindIndexBuffer
)

var bindFlagsMapping = memutils.NewFlagStringMapping[BindFlags]()

func init() {
	bindFlagsMapping.Register(BindSampler, "BindSampler")
	bindFlagsMapping.Register(BindRenderTarget, "BindRenderTarget")
	bindFlagsMapping.Register(BindDepthStencil, "BindDepthStencil")
	bindFlagsMapping.Register(BindScanout, "BindScanout")
	bindFlagsMapping.Register(BindShared, "BindShared")
	bindFlagsMapping.Register(BindLinear, "BindLinear")
	bindFlagsMapping.Register(BindVertexBuffer, "BindVertexBuffer")
	bindFlagsMapping.Register(BindIndexBuffer, "BindIndexBuffer")
}

func (f BindFlags) String() string {
	return bindFlagsMapping.FlagsToString(f)
}

// UsageClass hints at the CPU access pattern of a resource.
type UsageClass uint32

const (
	UsageDefault UsageClass = iota
	UsageImmutable
	UsageDynamic
	// UsageStream marks write-once data whose producers guarantee
	// non-overlapping accesses; transfers skip GPU synchronization for it.
	UsageStream
	UsageStaging
)

// MapFlags describe one CPU transfer.
type MapFlags uint32

const (
	MapRead MapFlags = 1 << iota
	MapWrite
	// MapDirectly demands a zero-copy mapping; unsupported on tiled resources.
	MapDirectly
)

var mapFlagsMapping = memutils.NewFlagStringMapping[MapFlags]()

func init() {
	mapFlagsMapping.Register(MapRead, "MapRead")
	mapFlagsMapping.Register(MapWrite, "MapWrite")
	mapFlagsMapping.Register(MapDirectly, "MapDirectly")
}

func (f MapFlags) String() string {
	return mapFlagsMapping.FlagsToString(f)
}

// Box is a three-dimensional sub-region of a mip level, in texels.
type Box struct {
	X, Y, Z              int
	Width, Height, Depth int
}

// Rect is a two-dimensional region in pixels, used for damage reporting.
type Rect struct {
	X, Y          int
	Width, Height int
}

// HandleType selects the descriptor flavor for export.
type HandleType uint32

const (
	// HandleTypeFD is a shareable descriptor from the kernel driver.
	HandleTypeFD HandleType = iota
	// HandleTypeKMS is a display-controller handle, served by the
	// display-integration provider when one exists.
	HandleTypeKMS
)

// Handle describes an externally shared buffer.
type Handle struct {
	Type     HandleType
	FD       int
	Stride   int
	Modifier Modifier
}
