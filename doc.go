// Package utgard manages GPU-addressable memory resources for a tile-based
// rasterizer: it plans on-device mip layouts under the hardware's addressing
// rules, negotiates tiled versus linear storage through layout modifiers,
// transcodes between linear and tiled representations during CPU access,
// reduces per-frame damage to tile-aligned scissors, and shares
// reference-counted command-stream descriptors between surfaces with
// identical tiled geometry.
//
// The package prepares and exposes memory; it does not render. Command
// submission, fencing, the kernel allocator and the fallback blit pipeline
// are collaborator interfaces supplied by the consumer (see drm.Device,
// FlushTracker, ScanoutProvider and Blitter).
//
// A Screen and the Contexts created from it belong to a single goroutine.
// Sharing a Resource across contexts through export/import transfers access,
// not the right to concurrent use.
package utgard
