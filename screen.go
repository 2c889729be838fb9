package utgard

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"

	"github.com/utgardgfx/utgard/drm"
	"github.com/utgardgfx/utgard/format"
	"github.com/utgardgfx/utgard/memutils"
	"github.com/utgardgfx/utgard/tiling"
)

const defaultPageSize = 4096

// Scanout is an allocation obtained from the display-integration provider
// and paired with a resource for the lifetime of that resource.
type Scanout struct {
	// Handle is the display controller's name for the buffer.
	Handle uint32
	Stride int
}

// ScanoutProvider is the display-integration collaborator used for resources
// that back a display output. It is optional; screens without one allocate
// every resource through the kernel driver.
type ScanoutProvider interface {
	// ScanoutForResource allocates a displayable buffer of the given
	// dimensions and returns it along with an importable handle.
	ScanoutForResource(width, height int, f format.Format) (*Scanout, Handle, error)
	// DestroyScanout releases a scanout allocation.
	DestroyScanout(scanout *Scanout)
	// ScanoutHandle fills out with the display controller handle, returning
	// false if the provider cannot serve it.
	ScanoutHandle(scanout *Scanout, out *Handle) bool
}

// ScreenOptions contains optional settings when creating a Screen.
type ScreenOptions struct {
	// Logger receives debug traces and degraded-operation warnings.
	// slog.Default() is used when nil.
	Logger *slog.Logger

	// DisableTiling forces linear storage for everything except render
	// targets and depth/stencil surfaces. It is a debug switch, threaded
	// through here rather than read from ambient state.
	DisableTiling bool

	// PageSize overrides the allocation granularity. Must be a power of two.
	PageSize int

	// Scanout supplies display-integration allocations for scanout
	// resources. Optional.
	Scanout ScanoutProvider

	// Layout overrides the tile transcode strategy. Defaults to the
	// hardware's 16x16 u-interleaved scheme.
	Layout tiling.Layout
}

// Screen owns resource creation for one device. It and every Context created
// from it belong to a single goroutine.
type Screen struct {
	logger        *slog.Logger
	dev           drm.Device
	ro            ScanoutProvider
	layout        tiling.Layout
	disableTiling bool
	pageSize      int
	resources     *swiss.Map[*Resource, struct{}]
}

// NewScreen creates a Screen on top of the given kernel device interface.
func NewScreen(dev drm.Device, options ScreenOptions) (*Screen, error) {
	if dev == nil {
		return nil, errors.New("attempted to create a screen without a device")
	}

	pageSize := options.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	err := memutils.CheckPow2(pageSize, "options.PageSize")
	if err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	layout := options.Layout
	if layout == nil {
		layout = tiling.UInterleaved{}
	}

	return &Screen{
		logger:        logger,
		dev:           dev,
		ro:            options.Scanout,
		layout:        layout,
		disableTiling: options.DisableTiling,
		pageSize:      pageSize,
		resources:     swiss.NewMap[*Resource, struct{}](42),
	}, nil
}

// Destroy tears down the screen. It returns an error when resources are
// still alive, since their backing memory would leak.
func (s *Screen) Destroy() error {
	s.logger.Debug("Screen::Destroy")

	if s.resources.Count() > 0 {
		return errors.Newf("attempted to destroy a screen with %d live resources", s.resources.Count())
	}
	return nil
}

func (s *Screen) unregisterResource(r *Resource) {
	s.resources.Delete(r)
}

// CreateResource allocates a resource with no layout preference.
func (s *Screen) CreateResource(tmpl ResourceTemplate) (*Resource, error) {
	return s.createWithModifiers(tmpl, []Modifier{ModifierInvalid})
}

// CreateResourceWithModifiers allocates a resource whose storage layout must
// come from the supplied ranked modifier list. Callers reaching this entry
// point have no way to express scanout intent, so a list that permits linear
// storage is assumed displayable.
func (s *Screen) CreateResourceWithModifiers(tmpl ResourceTemplate, modifiers []Modifier) (*Resource, error) {
	if findModifier(modifiers, ModifierLinear) {
		tmpl.Bind |= BindScanout
	}
	return s.createWithModifiers(tmpl, modifiers)
}

func (s *Screen) createWithModifiers(tmpl ResourceTemplate, modifiers []Modifier) (*Resource, error) {
	tmpl.normalize()

	tiled, alignDims := pickTiling(&tmpl, modifiers, s.disableTiling)

	width := tmpl.Width
	height := tmpl.Height
	if alignDims {
		width = memutils.AlignUp(width, memutils.TileSize)
		height = memutils.AlignUp(height, memutils.TileSize)
	}

	var res *Resource
	var err error
	if s.ro != nil && tmpl.Bind&BindScanout != 0 {
		res, err = s.createScanout(tmpl, width, height)
	} else {
		res, err = s.createBO(tmpl, width, height, alignDims)
	}
	if err != nil {
		return nil, err
	}

	res.tiled = tiled
	res.alignedDims = alignDims
	memutils.DebugValidate(res)

	s.logger.Debug("Screen::CreateResource",
		"format", tmpl.Format.String(),
		"width", tmpl.Width,
		"height", tmpl.Height,
		"depth", tmpl.Depth,
		"target", tmpl.Target.String(),
		"bind", tmpl.Bind.String(),
		"levels", tmpl.Levels,
		"tiled", tiled)

	return res, nil
}

func (s *Screen) createBO(tmpl ResourceTemplate, width, height int, alignDims bool) (*Resource, error) {
	res := &Resource{
		screen:   s,
		tmpl:     tmpl,
		levels:   make([]Level, tmpl.Levels),
		refCount: 1,
	}

	size := res.setupMiptree(width, height, alignDims)
	size = memutils.AlignUp(size, uint(s.pageSize))

	bo, err := drm.NewBO(s.dev, size)
	if err != nil {
		return nil, errors.Mark(err, ErrOutOfMemory)
	}
	res.bo = bo

	s.resources.Put(res, struct{}{})
	return res, nil
}

// createScanout obtains a displayable allocation from the provider and wraps
// it the same way an imported buffer would be.
func (s *Screen) createScanout(tmpl ResourceTemplate, width, height int) (*Resource, error) {
	scanout, handle, err := s.ro.ScanoutForResource(width, height, tmpl.Format)
	if err != nil {
		return nil, errors.Wrap(err, "display integration could not allocate a scanout buffer")
	}

	res, err := s.ImportResource(tmpl, handle)
	if err != nil {
		s.ro.DestroyScanout(scanout)
		return nil, err
	}

	res.scanout = scanout
	return res, nil
}

// ImportResource wraps an externally supplied buffer handle. Render-target
// imports are validated against the layout the hardware would compute; a
// stride mismatch or short buffer fails with ErrImportMismatch.
func (s *Screen) ImportResource(tmpl ResourceTemplate, handle Handle) (*Resource, error) {
	s.logger.Debug("Screen::ImportResource",
		"format", tmpl.Format.String(),
		"modifier", handle.Modifier.String(),
		"stride", handle.Stride)

	tmpl.normalize()

	res := &Resource{
		screen:   s,
		tmpl:     tmpl,
		levels:   make([]Level, tmpl.Levels),
		refCount: 1,
	}
	res.levels[0] = Level{Stride: handle.Stride}

	bo, err := drm.ImportBO(s.dev, handle.FD)
	if err != nil {
		return nil, err
	}
	res.bo = bo
	s.resources.Put(res, struct{}{})

	if tmpl.Bind&BindRenderTarget != 0 {
		width := memutils.AlignUp(tmpl.Width, memutils.TileSize)
		height := memutils.AlignUp(tmpl.Height, memutils.TileSize)
		stride := tmpl.Format.Stride(width)
		size := tmpl.Format.Size2D(stride, height)

		if res.levels[0].Stride != stride || bo.Size() < size {
			res.Unref()
			return nil, errors.Wrapf(ErrImportMismatch,
				"stride %d (computed %d), size %d (need at least %d)",
				handle.Stride, stride, bo.Size(), size)
		}
		res.levels[0].Width = width
		res.alignedDims = true
	} else {
		res.levels[0].Width = tmpl.Width
	}

	switch handle.Modifier {
	case ModifierLinear:
		res.tiled = false
	case ModifierTiled16x16:
		res.tiled = true
	case ModifierInvalid:
		// No modifier means a shared buffer created before negotiation;
		// those are always linear.
		res.tiled = false
	default:
		res.Unref()
		return nil, errors.Wrapf(ErrUnsupportedModifier, "0x%x", uint64(handle.Modifier))
	}

	return res, nil
}

// ExportResource produces a shareable handle reporting the resource's
// effective modifier and base-level stride. KMS handles are served by the
// display-integration provider when the resource has a scanout allocation.
func (s *Screen) ExportResource(res *Resource, handleType HandleType) (Handle, error) {
	s.logger.Debug("Screen::ExportResource", "type", int(handleType))

	handle := Handle{
		Type:     handleType,
		Stride:   res.levels[0].Stride,
		Modifier: ModifierLinear,
	}
	if res.tiled {
		handle.Modifier = ModifierTiled16x16
	}

	if handleType == HandleTypeKMS && s.ro != nil && res.scanout != nil &&
		s.ro.ScanoutHandle(res.scanout, &handle) {
		return handle, nil
	}

	fd, err := res.bo.Export()
	if err != nil {
		return Handle{}, err
	}
	handle.FD = fd
	return handle, nil
}
