package memutils

import (
	"math"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics tracks the live resource population of a screen.
type Statistics struct {
	ResourceCount int
	ResourceBytes int
}

func (s *Statistics) Clear() {
	s.ResourceCount = 0
	s.ResourceBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.ResourceCount += other.ResourceCount
	s.ResourceBytes += other.ResourceBytes
}

func (s *Statistics) PrintJson(json *jwriter.ObjectState) {
	json.Name("Resources").Int(s.ResourceCount)
	json.Name("ResourceBytes").Int(s.ResourceBytes)
}

// TransferStatistics tracks a context's outstanding CPU transfers and the
// staging memory they hold.
type TransferStatistics struct {
	TransferCount int
	StagingBytes  int
}

func (s *TransferStatistics) Clear() {
	s.TransferCount = 0
	s.StagingBytes = 0
}

func (s *TransferStatistics) PrintJson(json *jwriter.ObjectState) {
	json.Name("OutstandingTransfers").Int(s.TransferCount)
	json.Name("StagingBytes").Int(s.StagingBytes)
}

// DetailedStatistics additionally aggregates per-resource size extremes.
type DetailedStatistics struct {
	Statistics
	ResourceSizeMin int
	ResourceSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.ResourceSizeMin = math.MaxInt
	s.ResourceSizeMax = 0
}

func (s *DetailedStatistics) AddResource(size int) {
	s.ResourceCount++
	s.ResourceBytes += size

	if size < s.ResourceSizeMin {
		s.ResourceSizeMin = size
	}

	if size > s.ResourceSizeMax {
		s.ResourceSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)

	if other.ResourceSizeMin < s.ResourceSizeMin {
		s.ResourceSizeMin = other.ResourceSizeMin
	}

	if other.ResourceSizeMax > s.ResourceSizeMax {
		s.ResourceSizeMax = other.ResourceSizeMax
	}
}

func (s *DetailedStatistics) PrintJson(json *jwriter.ObjectState) {
	s.Statistics.PrintJson(json)

	if s.ResourceCount > 0 {
		json.Name("ResourceSizeMin").Int(s.ResourceSizeMin)
		json.Name("ResourceSizeMax").Int(s.ResourceSizeMax)
	}
}
