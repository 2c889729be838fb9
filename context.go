package utgard

import (
	"sync"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"

	"github.com/utgardgfx/utgard/drm"
	"github.com/utgardgfx/utgard/memutils"
)

// defaultPLBSlots is the number of geometry partitions (polygon list block
// sets) a context rotates between, and therefore the number of
// command-stream cache entries one surface references.
const defaultPLBSlots = 2

// FlushTracker is the GPU submission collaborator. It knows which buffers
// the unsubmitted command stream touches so that a CPU mapping can force
// submission before waiting on the buffer's fence.
type FlushTracker interface {
	// NeedFlush reports whether pending GPU work references the buffer in a
	// way that conflicts with the given CPU access direction.
	NeedFlush(bo *drm.BO, write bool) bool
	// Flush submits the pending command stream.
	Flush()
}

// ContextOptions contains optional settings when creating a Context.
type ContextOptions struct {
	// Flush connects the context to the submission engine. Without it,
	// mappings still wait on buffer fences but never force a submit.
	Flush FlushTracker

	// Blitter is the 3D-pipeline fallback used by Blit when a direct copy
	// cannot serve. Optional; blits that need it are skipped with a warning.
	Blitter Blitter

	// PLBSlots overrides the number of geometry partition slots.
	PLBSlots int
}

// Context executes resource access for one client. Like its Screen, a
// Context belongs to a single goroutine.
type Context struct {
	screen  *Screen
	logger  *slog.Logger
	flush   FlushTracker
	blitter Blitter

	transferPool sync.Pool
	stats        memutils.TransferStatistics

	plbSlots   int
	plbStreams *swiss.Map[plbStreamKey, *plbStream]
}

// NewContext creates a context on the screen.
func (s *Screen) NewContext(options ContextOptions) *Context {
	plbSlots := options.PLBSlots
	if plbSlots <= 0 {
		plbSlots = defaultPLBSlots
	}

	return &Context{
		screen:  s,
		logger:  s.logger,
		flush:   options.Flush,
		blitter: options.Blitter,
		transferPool: sync.Pool{
			New: func() any {
				return &Transfer{}
			},
		},
		plbSlots:   plbSlots,
		plbStreams: swiss.NewMap[plbStreamKey, *plbStream](42),
	}
}

// Destroy releases the context's command-stream cache. Surfaces must be
// destroyed first; entries they still reference are reclaimed anyway, with a
// warning, so that their buffers do not leak.
func (c *Context) Destroy() {
	c.logger.Debug("Context::Destroy")

	leaked := 0
	c.plbStreams.Iter(func(key plbStreamKey, stream *plbStream) bool {
		leaked++
		if stream.bo != nil {
			stream.bo.Unref()
			stream.bo = nil
		}
		return false
	})
	if leaked > 0 {
		c.logger.Warn("destroying a context with live command-stream entries", "entries", leaked)
	}
	c.plbStreams = swiss.NewMap[plbStreamKey, *plbStream](1)
}
