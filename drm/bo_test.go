package drm

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	nextHandle Handle
	buffers    map[Handle][]byte
	mapCount   int
	unmapCount int
	waits      []WaitOp
	failCreate bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{buffers: make(map[Handle][]byte)}
}

func (d *fakeDevice) Create(size int) (Handle, error) {
	if d.failCreate {
		return 0, errors.New("out of memory")
	}
	d.nextHandle++
	d.buffers[d.nextHandle] = make([]byte, size)
	return d.nextHandle, nil
}

func (d *fakeDevice) Import(fd int) (Handle, int, error) {
	d.nextHandle++
	data := make([]byte, fd)
	d.buffers[d.nextHandle] = data
	return d.nextHandle, len(data), nil
}

func (d *fakeDevice) Export(handle Handle) (int, error) {
	return len(d.buffers[handle]), nil
}

func (d *fakeDevice) Map(handle Handle, size int) ([]byte, error) {
	d.mapCount++
	return d.buffers[handle], nil
}

func (d *fakeDevice) Unmap(handle Handle, data []byte) {
	d.unmapCount++
}

func (d *fakeDevice) Wait(handle Handle, op WaitOp, timeoutNs int64) error {
	d.waits = append(d.waits, op)
	return nil
}

func (d *fakeDevice) Close(handle Handle) {
	delete(d.buffers, handle)
}

func TestBOLifecycle(t *testing.T) {
	dev := newFakeDevice()

	bo, err := NewBO(dev, 4096)
	require.NoError(t, err)
	require.Equal(t, 4096, bo.Size())
	require.Nil(t, bo.Mapped())

	data, err := bo.Map()
	require.NoError(t, err)
	require.Len(t, data, 4096)

	// second map reuses the cached mapping
	_, err = bo.Map()
	require.NoError(t, err)
	require.Equal(t, 1, dev.mapCount)

	bo.Ref()
	bo.Unref()
	require.Equal(t, 0, dev.unmapCount)
	require.Len(t, dev.buffers, 1)

	bo.Unref()
	require.Equal(t, 1, dev.unmapCount)
	require.Empty(t, dev.buffers)
}

func TestBOUnrefPastZeroPanics(t *testing.T) {
	dev := newFakeDevice()
	bo, err := NewBO(dev, 64)
	require.NoError(t, err)

	bo.Unref()
	require.Panics(t, func() { bo.Unref() })
}

func TestBOCreateFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.failCreate = true

	bo, err := NewBO(dev, 4096)
	require.Error(t, err)
	require.Nil(t, bo)
}

func TestBOImport(t *testing.T) {
	dev := newFakeDevice()

	bo, err := ImportBO(dev, 8192)
	require.NoError(t, err)
	require.Equal(t, 8192, bo.Size())

	require.NoError(t, bo.Wait(WaitWrite))
	require.Equal(t, []WaitOp{WaitWrite}, dev.waits)
}
