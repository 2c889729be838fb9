package utgard

import "github.com/pkg/errors"

// ErrOutOfMemory is returned when the kernel allocator cannot provide backing
// memory for a resource. Callers may retry or fail the surrounding operation.
var ErrOutOfMemory error = errors.New("out of device memory")

// ErrImportMismatch is returned when an imported buffer's stride or size is
// inconsistent with the layout this hardware requires. The import is
// abandoned and any partial state destroyed.
var ErrImportMismatch error = errors.New("imported buffer does not match the computed layout")

// ErrUnsupportedModifier is returned when an import handle declares a layout
// modifier this tiling scheme does not recognize.
var ErrUnsupportedModifier error = errors.New("unsupported layout modifier")

// ErrUnsupportedMapping is returned when a direct (zero-copy) mapping is
// requested on a tiled resource. Callers must retry without MapDirectly to
// use the staged path.
var ErrUnsupportedMapping error = errors.New("tiled resources cannot be mapped directly")
