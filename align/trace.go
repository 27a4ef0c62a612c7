package align

import (
	"v.io/x/lib/vlog"
)

// Resolution tells how a tracker became resolved.
type Resolution uint8

const (
	// ResolvedUndersized means both mates were shorter than the minimum
	// read length.
	ResolvedUndersized Resolution = iota
	// ResolvedJoint means the paired search placed both mates.
	ResolvedJoint
	// ResolvedForcedSpacing means the paired search result was accepted
	// because spacing is forced, whether or not the mates were found.
	ResolvedForcedSpacing
	// ResolvedFallback means each mate was aligned by the single-end aligner.
	ResolvedFallback
)

var resolutionNames = [...]string{"undersized", "joint", "forced-spacing", "fallback"}

func (r Resolution) String() string { return resolutionNames[r] }

// Tracer observes the progress of Align. Implementations must be cheap; the
// methods are called from the alignment loop.
type Tracer interface {
	// Stage is called at the end of each stage that ran.
	Stage(s Stage, barcodeSize int, finished bool)
	// Resolved is called when tracker pairIdx becomes resolved.
	Resolved(pairIdx int, how Resolution, r *PairedResult)
	// Overflow is called when tracker pairIdx overflows a buffer of the
	// given capacity.
	Overflow(pairIdx int, kind Outcome, capacity int)
}

// NopTracer discards all events.
type NopTracer struct{}

// Stage implements Tracer.
func (NopTracer) Stage(Stage, int, bool) {}

// Resolved implements Tracer.
func (NopTracer) Resolved(int, Resolution, *PairedResult) {}

// Overflow implements Tracer.
func (NopTracer) Overflow(int, Outcome, int) {}

// VlogTracer logs events through vlog: stages at level 1, overflows at level
// 2 and resolutions at level 3.
type VlogTracer struct{}

// Stage implements Tracer.
func (VlogTracer) Stage(s Stage, barcodeSize int, finished bool) {
	vlog.VI(1).Infof("align: stage %d over %d pairs, finished=%v", s, barcodeSize, finished)
}

// Resolved implements Tracer.
func (VlogTracer) Resolved(pairIdx int, how Resolution, r *PairedResult) {
	if vlog.V(3) {
		vlog.Infof("align: pair %d %v: loc (%d, %d) score (%d, %d) mapq (%d, %d)", pairIdx, how,
			r.Location[0], r.Location[1], r.Score[0], r.Score[1], r.MAPQ[0], r.MAPQ[1])
	}
}

// Overflow implements Tracer.
func (VlogTracer) Overflow(pairIdx int, kind Outcome, capacity int) {
	vlog.VI(2).Infof("align: pair %d: %v (capacity %d)", pairIdx, kind, capacity)
}
