package utgard

import (
	"github.com/pkg/errors"

	"github.com/utgardgfx/utgard/drm"
	"github.com/utgardgfx/utgard/format"
)

// testDevice implements drm.Device in memory. Import descriptors are indexes
// into buffers prepared by the test through prepareImport.
type testDevice struct {
	nextHandle drm.Handle
	nextFD     int
	buffers    map[drm.Handle][]byte
	imports    map[int][]byte
	waits      []drm.WaitOp
	failCreate bool
}

func newTestDevice() *testDevice {
	return &testDevice{
		buffers: make(map[drm.Handle][]byte),
		imports: make(map[int][]byte),
	}
}

// prepareImport registers a buffer that a later Import call can wrap.
func (d *testDevice) prepareImport(data []byte) int {
	d.nextFD++
	d.imports[d.nextFD] = data
	return d.nextFD
}

// soleBuffer returns the backing bytes of the only live buffer object.
func (d *testDevice) soleBuffer() []byte {
	if len(d.buffers) != 1 {
		panic("device does not hold exactly one buffer")
	}
	for _, data := range d.buffers {
		return data
	}
	return nil
}

func (d *testDevice) Create(size int) (drm.Handle, error) {
	if d.failCreate {
		return 0, errors.New("out of memory")
	}
	d.nextHandle++
	d.buffers[d.nextHandle] = make([]byte, size)
	return d.nextHandle, nil
}

func (d *testDevice) Import(fd int) (drm.Handle, int, error) {
	data, ok := d.imports[fd]
	if !ok {
		return 0, 0, errors.Errorf("unknown import descriptor %d", fd)
	}
	d.nextHandle++
	d.buffers[d.nextHandle] = data
	return d.nextHandle, len(data), nil
}

func (d *testDevice) Export(handle drm.Handle) (int, error) {
	d.nextFD++
	d.imports[d.nextFD] = d.buffers[handle]
	return d.nextFD, nil
}

func (d *testDevice) Map(handle drm.Handle, size int) ([]byte, error) {
	return d.buffers[handle], nil
}

func (d *testDevice) Unmap(handle drm.Handle, data []byte) {}

func (d *testDevice) Wait(handle drm.Handle, op drm.WaitOp, timeoutNs int64) error {
	d.waits = append(d.waits, op)
	return nil
}

func (d *testDevice) Close(handle drm.Handle) {
	delete(d.buffers, handle)
}

type testScanoutProvider struct {
	dev       *testDevice
	created   int
	destroyed int
	stride    func(width int, f format.Format) int
}

func newTestScanoutProvider(dev *testDevice) *testScanoutProvider {
	return &testScanoutProvider{
		dev: dev,
		stride: func(width int, f format.Format) int {
			return f.Stride(width)
		},
	}
}

func (p *testScanoutProvider) ScanoutForResource(width, height int, f format.Format) (*Scanout, Handle, error) {
	stride := p.stride(width, f)
	fd := p.dev.prepareImport(make([]byte, f.Size2D(stride, height)))

	p.created++
	scanout := &Scanout{Handle: uint32(p.created), Stride: stride}
	handle := Handle{
		Type:     HandleTypeFD,
		FD:       fd,
		Stride:   stride,
		Modifier: ModifierLinear,
	}
	return scanout, handle, nil
}

func (p *testScanoutProvider) DestroyScanout(scanout *Scanout) {
	p.destroyed++
}

func (p *testScanoutProvider) ScanoutHandle(scanout *Scanout, out *Handle) bool {
	out.Type = HandleTypeKMS
	out.FD = int(scanout.Handle)
	return true
}

type testFlushTracker struct {
	pending map[drm.Handle]bool
	flushes int
}

func (f *testFlushTracker) NeedFlush(bo *drm.BO, write bool) bool {
	return f.pending[bo.Handle()]
}

func (f *testFlushTracker) Flush() {
	f.flushes++
	f.pending = nil
}

type testBlitter struct {
	supported bool
	blits     []BlitInfo
}

func (b *testBlitter) IsSupported(info *BlitInfo) bool {
	return b.supported
}

func (b *testBlitter) Blit(info *BlitInfo) error {
	b.blits = append(b.blits, *info)
	return nil
}

func newTestScreen(dev *testDevice, options ScreenOptions) (*Screen, error) {
	return NewScreen(dev, options)
}
