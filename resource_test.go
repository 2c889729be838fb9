package utgard

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/utgardgfx/utgard/format"
	"github.com/utgardgfx/utgard/memutils"
)

func TestCreateResourceBaseLevel(t *testing.T) {
	dev := newTestDevice()
	screen, err := newTestScreen(dev, ScreenOptions{})
	require.NoError(t, err)

	res, err := screen.CreateResource(ResourceTemplate{
		Target: Target2D,
		Format: format.RGBA8,
		Width:  256,
		Height: 256,
		Levels: 1,
		Bind:   BindSampler,
	})
	require.NoError(t, err)

	require.True(t, res.Tiled())
	require.Equal(t, 256, res.Level(0).Width)
	require.Equal(t, 1024, res.Level(0).Stride)
	require.Equal(t, 0, res.Level(0).Offset)
	require.Equal(t, 262144, res.Size())
	require.NoError(t, res.Validate())

	require.Error(t, screen.Destroy())
	res.Unref()
	require.NoError(t, screen.Destroy())
}

func TestCreateResourceRoundsTextureDimensions(t *testing.T) {
	dev := newTestDevice()
	screen, err := newTestScreen(dev, ScreenOptions{})
	require.NoError(t, err)

	res, err := screen.CreateResource(ResourceTemplate{
		Target: Target2D,
		Format: format.RGBA8,
		Width:  100,
		Height: 100,
		Levels: 1,
		Bind:   BindSampler,
	})
	require.NoError(t, err)
	defer res.Unref()

	require.Equal(t, 112, res.Level(0).Width)
	require.Equal(t, 448, res.Level(0).Stride)
	require.Equal(t, 100, res.Width())
}

func TestCreateResourceMiptree(t *testing.T) {
	dev := newTestDevice()
	screen, err := newTestScreen(dev, ScreenOptions{})
	require.NoError(t, err)

	res, err := screen.CreateResource(ResourceTemplate{
		Target: Target2D,
		Format: format.RGBA8,
		Width:  2048,
		Height: 2048,
		Levels: 12,
		Bind:   BindSampler,
	})
	require.NoError(t, err)
	defer res.Unref()

	require.NoError(t, res.Validate())

	for i := 1; i < 12; i++ {
		require.Greater(t, res.Level(i).Offset, res.Level(i-1).Offset, "level %d", i)
	}
	for i := 0; i < 10; i++ {
		require.Zero(t, res.Level(i).Offset%memutils.LevelAlignment, "level %d", i)
	}

	// Levels past 10 sit at fixed 0x400-byte steps from the level-10 base.
	require.Equal(t, 0x400, res.Level(11).Offset-res.Level(10).Offset)

	// Base level: 2048 texels at 4 bytes each.
	require.Equal(t, 8192, res.Level(0).Stride)
	require.Equal(t, 4096, res.Level(1).Stride)
}

func TestCreateResourceArrayLayers(t *testing.T) {
	dev := newTestDevice()
	screen, err := newTestScreen(dev, ScreenOptions{})
	require.NoError(t, err)

	res, err := screen.CreateResource(ResourceTemplate{
		Target:    Target2D,
		Format:    format.RGBA8,
		Width:     32,
		Height:    32,
		ArraySize: 3,
		Levels:    2,
		Bind:      BindSampler,
	})
	require.NoError(t, err)
	defer res.Unref()

	// Every layer of a level is laid out before the next level begins:
	// 128 bytes per row, 32 rows, 3 layers.
	require.Equal(t, 128*32*3, res.Level(1).Offset)
	require.Equal(t, 16384, res.Size())
	require.NoError(t, res.Validate())
}

func TestCreateResourceSizeIsPageAligned(t *testing.T) {
	dev := newTestDevice()
	screen, err := newTestScreen(dev, ScreenOptions{PageSize: 8192})
	require.NoError(t, err)

	res, err := screen.CreateResource(ResourceTemplate{
		Target: Target2D,
		Format: format.R8,
		Width:  20,
		Height: 20,
		Levels: 1,
		Bind:   BindSampler,
	})
	require.NoError(t, err)
	defer res.Unref()

	require.Equal(t, 8192, res.Size())
}

func TestCreateResourceOutOfMemory(t *testing.T) {
	dev := newTestDevice()
	dev.failCreate = true
	screen, err := newTestScreen(dev, ScreenOptions{})
	require.NoError(t, err)

	_, err = screen.CreateResource(ResourceTemplate{
		Target: Target2D,
		Format: format.RGBA8,
		Width:  64,
		Height: 64,
		Bind:   BindSampler,
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrOutOfMemory))
	require.NoError(t, screen.Destroy())
}

func TestNewScreenRejectsBadOptions(t *testing.T) {
	_, err := NewScreen(nil, ScreenOptions{})
	require.Error(t, err)

	_, err = newTestScreen(newTestDevice(), ScreenOptions{PageSize: 3000})
	require.Error(t, err)
}

func TestImportRenderTarget(t *testing.T) {
	dev := newTestDevice()
	screen, err := newTestScreen(dev, ScreenOptions{})
	require.NoError(t, err)

	tmpl := ResourceTemplate{
		Target: Target2D,
		Format: format.RGBA8,
		Width:  600,
		Height: 400,
		Bind:   BindRenderTarget,
	}
	// 600 rounds up to 608 texels per row.
	stride := 608 * 4
	size := stride * 400

	tests := map[string]struct {
		stride  int
		size    int
		wantErr error
	}{
		"matching layout": {
			stride: stride,
			size:   size,
		},
		"wrong stride": {
			stride:  600 * 4,
			size:    size,
			wantErr: ErrImportMismatch,
		},
		"short buffer": {
			stride:  stride,
			size:    size - 4096,
			wantErr: ErrImportMismatch,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			fd := dev.prepareImport(make([]byte, test.size))
			res, err := screen.ImportResource(tmpl, Handle{
				Type:     HandleTypeFD,
				FD:       fd,
				Stride:   test.stride,
				Modifier: ModifierTiled16x16,
			})

			if test.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, test.wantErr))
				return
			}
			require.NoError(t, err)
			require.True(t, res.Tiled())
			require.Equal(t, 608, res.Level(0).Width)
			res.Unref()
		})
	}

	require.NoError(t, screen.Destroy())
}

func TestImportModifierSelectsLayout(t *testing.T) {
	dev := newTestDevice()
	screen, err := newTestScreen(dev, ScreenOptions{})
	require.NoError(t, err)

	tmpl := ResourceTemplate{
		Target: Target2D,
		Format: format.BGRA8,
		Width:  64,
		Height: 64,
		Bind:   BindSampler,
	}

	tests := map[string]struct {
		modifier  Modifier
		wantTiled bool
		wantErr   error
	}{
		"linear":       {modifier: ModifierLinear},
		"tiled":        {modifier: ModifierTiled16x16, wantTiled: true},
		"unnegotiated": {modifier: ModifierInvalid},
		"unrecognized": {modifier: Modifier(0x123), wantErr: ErrUnsupportedModifier},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			fd := dev.prepareImport(make([]byte, 64*64*4))
			res, err := screen.ImportResource(tmpl, Handle{
				Type:     HandleTypeFD,
				FD:       fd,
				Stride:   64 * 4,
				Modifier: test.modifier,
			})

			if test.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, test.wantErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.wantTiled, res.Tiled())
			res.Unref()
		})
	}

	require.NoError(t, screen.Destroy())
}

func TestExportResource(t *testing.T) {
	dev := newTestDevice()
	screen, err := newTestScreen(dev, ScreenOptions{})
	require.NoError(t, err)

	res, err := screen.CreateResource(ResourceTemplate{
		Target: Target2D,
		Format: format.RGBA8,
		Width:  64,
		Height: 64,
		Bind:   BindSampler,
	})
	require.NoError(t, err)
	defer res.Unref()

	handle, err := screen.ExportResource(res, HandleTypeFD)
	require.NoError(t, err)
	require.Equal(t, ModifierTiled16x16, handle.Modifier)
	require.Equal(t, res.Level(0).Stride, handle.Stride)
	require.Greater(t, handle.FD, 0)
}

func TestScanoutResourceLifecycle(t *testing.T) {
	dev := newTestDevice()
	provider := newTestScanoutProvider(dev)
	screen, err := newTestScreen(dev, ScreenOptions{Scanout: provider})
	require.NoError(t, err)

	res, err := screen.CreateResource(ResourceTemplate{
		Target: Target2D,
		Format: format.BGRA8,
		Width:  200,
		Height: 100,
		Bind:   BindScanout | BindShared,
	})
	require.NoError(t, err)
	require.Equal(t, 1, provider.created)
	require.False(t, res.Tiled())

	handle, err := screen.ExportResource(res, HandleTypeKMS)
	require.NoError(t, err)
	require.Equal(t, HandleTypeKMS, handle.Type)
	require.Equal(t, 1, handle.FD)

	res.Unref()
	require.Equal(t, 1, provider.destroyed)
	require.NoError(t, screen.Destroy())
}

func TestCreateResourceWithModifiers(t *testing.T) {
	dev := newTestDevice()
	provider := newTestScanoutProvider(dev)
	screen, err := newTestScreen(dev, ScreenOptions{Scanout: provider})
	require.NoError(t, err)

	// A list permitting linear storage implies the buffer may be displayed,
	// so allocation goes through the display provider.
	res, err := screen.CreateResourceWithModifiers(ResourceTemplate{
		Target: Target2D,
		Format: format.BGRA8,
		Width:  640,
		Height: 480,
		Bind:   BindSampler,
	}, []Modifier{ModifierTiled16x16, ModifierLinear})
	require.NoError(t, err)
	require.False(t, res.Tiled())
	require.Equal(t, 1, provider.created)
	res.Unref()

	// A tiled-only list keeps the allocation on the kernel device.
	res, err = screen.CreateResourceWithModifiers(ResourceTemplate{
		Target: Target2D,
		Format: format.RGBA8,
		Width:  640,
		Height: 480,
		Bind:   BindSampler,
	}, []Modifier{ModifierTiled16x16})
	require.NoError(t, err)
	require.True(t, res.Tiled())
	require.Equal(t, 1, provider.created)
	res.Unref()

	require.NoError(t, screen.Destroy())
}
