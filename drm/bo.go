package drm

import (
	"github.com/cockroachdb/errors"
)

// BO is a reference-counted buffer object. Reference counts are plain ints:
// buffer objects belong to a single owning goroutine and only change hands at
// resource create/destroy time.
type BO struct {
	dev      Device
	handle   Handle
	size     int
	data     []byte
	refCount int
}

// NewBO allocates a buffer object of the given size with a reference count of one.
func NewBO(dev Device, size int) (*BO, error) {
	handle, err := dev.Create(size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to allocate a %d-byte buffer object", size)
	}

	return &BO{
		dev:      dev,
		handle:   handle,
		size:     size,
		refCount: 1,
	}, nil
}

// ImportBO wraps an externally shared descriptor with a reference count of one.
func ImportBO(dev Device, fd int) (*BO, error) {
	handle, size, err := dev.Import(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to import buffer object from descriptor %d", fd)
	}

	return &BO{
		dev:      dev,
		handle:   handle,
		size:     size,
		refCount: 1,
	}, nil
}

func (b *BO) Handle() Handle { return b.handle }
func (b *BO) Size() int      { return b.size }

// Ref takes an additional reference and returns the buffer for chaining.
func (b *BO) Ref() *BO {
	b.refCount++
	return b
}

// Unref drops a reference. The mapping and the kernel object are released
// when the last reference goes away.
func (b *BO) Unref() {
	b.refCount--
	if b.refCount > 0 {
		return
	}
	if b.refCount < 0 {
		panic("buffer object reference count went negative")
	}

	if b.data != nil {
		b.dev.Unmap(b.handle, b.data)
		b.data = nil
	}
	b.dev.Close(b.handle)
}

// Map returns the CPU-visible contents of the buffer, mapping it on first use.
// The mapping stays alive until the last reference is dropped.
func (b *BO) Map() ([]byte, error) {
	if b.data != nil {
		return b.data, nil
	}

	data, err := b.dev.Map(b.handle, b.size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map buffer object %d", b.handle)
	}
	b.data = data
	return data, nil
}

// Mapped returns the current mapping, or nil if Map has not been called.
func (b *BO) Mapped() []byte { return b.data }

// Wait blocks with no timeout until pending GPU accesses of the given kind complete.
func (b *BO) Wait(op WaitOp) error {
	err := b.dev.Wait(b.handle, op, TimeoutInfinite)
	if err != nil {
		return errors.Wrapf(err, "failed to wait on buffer object %d", b.handle)
	}
	return nil
}

// Export produces a shareable descriptor for the buffer object.
func (b *BO) Export() (int, error) {
	fd, err := b.dev.Export(b.handle)
	if err != nil {
		return -1, errors.Wrapf(err, "failed to export buffer object %d", b.handle)
	}
	return fd, nil
}
