// Package drm wraps the kernel buffer-object interface behind a small Device
// abstraction and provides reference-counted buffer objects on top of it.
// Everything below Device (ioctls, GEM names, the submit path) belongs to the
// consumer of this module.
package drm

// Handle is a driver-local buffer object name.
type Handle uint32

// WaitOp selects which pending GPU accesses a Wait must drain.
type WaitOp uint32

const (
	WaitRead WaitOp = 1 << iota
	WaitWrite
)

// TimeoutInfinite makes Wait block until the GPU releases the buffer.
const TimeoutInfinite int64 = -1

// Device is the allocation and synchronization surface the kernel driver
// exposes. Implementations are injected at screen creation.
type Device interface {
	// Create allocates a buffer object of the given size in bytes.
	Create(size int) (Handle, error)
	// Import wraps an externally shared descriptor and reports the buffer size.
	Import(fd int) (Handle, int, error)
	// Export produces a shareable descriptor for the buffer object.
	Export(handle Handle) (int, error)
	// Map makes the buffer contents CPU-visible.
	Map(handle Handle, size int) ([]byte, error)
	// Unmap releases a mapping produced by Map.
	Unmap(handle Handle, data []byte)
	// Wait blocks until pending GPU accesses of the given kind complete, or
	// until timeoutNs elapses. TimeoutInfinite waits forever.
	Wait(handle Handle, op WaitOp, timeoutNs int64) error
	// Close releases the buffer object.
	Close(handle Handle)
}
