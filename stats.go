package utgard

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/utgardgfx/utgard/memutils"
)

// CalculateStatistics aggregates size statistics over the screen's live
// resources.
func (s *Screen) CalculateStatistics(stats *memutils.DetailedStatistics) {
	stats.Clear()
	s.resources.Iter(func(res *Resource, _ struct{}) bool {
		stats.AddResource(res.bo.Size())
		return false
	})
}

// BuildStatsString renders the screen's live state as a JSON string. With
// detailedMap set, every resource's level table and damage state is
// included.
func (s *Screen) BuildStatsString(detailedMap bool) string {
	writer := jwriter.NewWriter()

	obj := writer.Object()

	general := obj.Name("General").Object()
	general.Name("PageSize").Int(s.pageSize)
	general.Name("TilingDisabled").Bool(s.disableTiling)
	general.End()

	var stats memutils.DetailedStatistics
	s.CalculateStatistics(&stats)

	totals := obj.Name("Total").Object()
	stats.PrintJson(&totals)
	totals.End()

	if detailedMap {
		resources := obj.Name("Resources").Array()
		s.resources.Iter(func(res *Resource, _ struct{}) bool {
			resObj := resources.Object()
			res.printParameters(&resObj)
			resObj.End()
			return false
		})
		resources.End()
	}

	obj.End()
	return string(writer.Bytes())
}

func (r *Resource) printParameters(json *jwriter.ObjectState) {
	json.Name("Format").String(r.tmpl.Format.String())
	json.Name("Target").String(r.tmpl.Target.String())
	json.Name("Width").Int(r.tmpl.Width)
	json.Name("Height").Int(r.tmpl.Height)
	json.Name("Depth").Int(r.tmpl.Depth)
	json.Name("ArraySize").Int(r.tmpl.ArraySize)
	json.Name("Bind").String(r.tmpl.Bind.String())
	json.Name("Tiled").Bool(r.tiled)
	json.Name("Size").Int(r.bo.Size())
	if r.scanout != nil {
		json.Name("Scanout").Bool(true)
	}

	levels := json.Name("Levels").Array()
	for i := range r.levels {
		level := levels.Object()
		level.Name("Offset").Int(r.levels[i].Offset)
		level.Name("Stride").Int(r.levels[i].Stride)
		level.Name("Width").Int(r.levels[i].Width)
		level.Name("LayerStride").Int(r.levels[i].LayerStride)
		level.End()
	}
	levels.End()

	if !r.damage.Empty() {
		damage := json.Name("Damage").Object()
		damage.Name("Rects").Int(len(r.damage.Rects))
		damage.Name("Aligned").Bool(r.damage.Aligned)
		bound := damage.Name("Bound").Object()
		bound.Name("MinX").Int(r.damage.Bound.MinX)
		bound.Name("MinY").Int(r.damage.Bound.MinY)
		bound.Name("MaxX").Int(r.damage.Bound.MaxX)
		bound.Name("MaxY").Int(r.damage.Bound.MaxY)
		bound.End()
		damage.End()
	}
}

// BuildStatsString renders the context's transfer counters and
// command-stream cache as a JSON string.
func (c *Context) BuildStatsString() string {
	writer := jwriter.NewWriter()

	obj := writer.Object()

	transfers := obj.Name("Transfers").Object()
	c.stats.PrintJson(&transfers)
	transfers.End()

	streams := obj.Name("CommandStreams").Array()
	c.plbStreams.Iter(func(key plbStreamKey, stream *plbStream) bool {
		entry := streams.Object()
		entry.Name("Slot").Int(key.plbIndex)
		entry.Name("TiledW").Int(key.tiledW)
		entry.Name("TiledH").Int(key.tiledH)
		entry.Name("RefCount").Int(stream.refCount)
		entry.Name("Built").Bool(stream.bo != nil)
		entry.End()
		return false
	})
	streams.End()

	obj.End()
	return string(writer.Bytes())
}
