package align

import (
	"fmt"
)

// TrackerState is the progress of one read pair through a cluster.
type TrackerState uint8

const (
	// AwaitingJointSearch means the pair is still in the paired search.
	AwaitingJointSearch TrackerState = iota
	// AwaitingFallback means the paired search is over, and each mate must be
	// aligned by the single-end aligner.
	AwaitingFallback
	// Resolved means the pair's results are final.
	Resolved
)

func (s TrackerState) String() string {
	switch s {
	case AwaitingJointSearch:
		return "AwaitingJointSearch"
	case AwaitingFallback:
		return "AwaitingFallback"
	case Resolved:
		return "Resolved"
	}
	return fmt.Sprintf("TrackerState(%d)", int(s))
}

// ProgressTracker holds one read pair's progress, its phase engine, and its
// result buffers. Trackers are allocated once per run, sized for the largest
// cluster, and reused across clusters.
type ProgressTracker struct {
	pair   *ReadPair
	state  TrackerState
	engine PairPhaser

	// NextLocus is the engine's best-known locus after the seed phase.
	// PopularSeedsSkipped counts seeds skipped for having too many hits. Both
	// are recomputed by every Align call.
	NextLocus           GenomeLocation
	PopularSeedsSkipped int

	// Result is the primary result.
	Result PairedResult

	// Secondary holds secondary paired results. Its length is the buffer
	// capacity. NumSecondary is the number of valid entries, or
	// len(Secondary)+1 after an overflow.
	Secondary    []PairedResult
	NumSecondary int

	// SingleSecondary holds the fallback's secondary results: mate 0's
	// entries followed by mate 1's. NumSingleSecondary[0] is set to
	// len(SingleSecondary)+1 after an overflow.
	SingleSecondary    []SingleResult
	NumSingleSecondary [NumReadsPerPair]int
}

// NewProgressTracker creates a tracker that owns engine.
func NewProgressTracker(engine PairPhaser, secondaryCapacity, singleSecondaryCapacity int) *ProgressTracker {
	t := &ProgressTracker{
		engine:          engine,
		Secondary:       make([]PairedResult, secondaryCapacity),
		SingleSecondary: make([]SingleResult, singleSecondaryCapacity),
	}
	t.Reset()
	return t
}

// NewProgressTrackers allocates opts.MaxBarcodeSize trackers. newEngine is
// called once per tracker.
func NewProgressTrackers(opts Opts, newEngine func() PairPhaser) []*ProgressTracker {
	trackers := make([]*ProgressTracker, opts.MaxBarcodeSize)
	for i := range trackers {
		trackers[i] = NewProgressTracker(newEngine(), opts.InitialSecondaryCapacity, opts.InitialSingleSecondaryCapacity)
	}
	return trackers
}

// Reset prepares the tracker for a new cluster.
func (t *ProgressTracker) Reset() {
	t.pair = nil
	t.state = AwaitingJointSearch
	t.NextLocus = InvalidGenomeLocation
	t.PopularSeedsSkipped = 0
	t.Result = PairedResult{}
	t.Result.setNotFound(0)
	t.Result.setNotFound(1)
	t.NumSecondary = 0
	t.NumSingleSecondary = [NumReadsPerPair]int{}
}

// State returns the tracker's progress.
func (t *ProgressTracker) State() TrackerState { return t.state }

// Done returns true iff the tracker's results are final.
func (t *ProgressTracker) Done() bool { return t.state == Resolved }

// PairNotDone returns true while the paired search is in progress.
func (t *ProgressTracker) PairNotDone() bool { return t.state == AwaitingJointSearch }

// SingleNotDone returns true while the pair may still need single-end
// alignment, i.e., until the tracker is resolved.
func (t *ProgressTracker) SingleNotDone() bool { return t.state != Resolved }

// Pair returns the read pair last aligned by this tracker.
func (t *ProgressTracker) Pair() *ReadPair { return t.pair }

// SecondaryOverflowed returns true iff the last Align call ran out of
// paired secondary buffer space for this tracker.
func (t *ProgressTracker) SecondaryOverflowed() bool {
	return t.NumSecondary > len(t.Secondary)
}

// SingleSecondaryOverflowed returns true iff the last Align call ran out of
// single-end secondary buffer space for this tracker.
func (t *ProgressTracker) SingleSecondaryOverflowed() bool {
	return t.NumSingleSecondary[0] > len(t.SingleSecondary)
}

// Secondaries returns the valid paired secondary results.
func (t *ProgressTracker) Secondaries() []PairedResult {
	if t.SecondaryOverflowed() {
		return nil
	}
	return t.Secondary[:t.NumSecondary]
}

// SingleSecondaries returns the valid single-end secondary results of the
// given mate.
func (t *ProgressTracker) SingleSecondaries(mate int) []SingleResult {
	if t.SingleSecondaryOverflowed() {
		return nil
	}
	start := 0
	if mate == 1 {
		start = t.NumSingleSecondary[0]
	}
	return t.SingleSecondary[start : start+t.NumSingleSecondary[mate]]
}

// GrowSecondary resizes the paired secondary buffer to hold n results. The
// buffer contents are discarded.
func (t *ProgressTracker) GrowSecondary(n int) {
	t.Secondary = make([]PairedResult, n)
	t.NumSecondary = 0
}

// GrowSingleSecondary resizes the single-end secondary buffer to hold n
// results. The buffer contents are discarded.
func (t *ProgressTracker) GrowSingleSecondary(n int) {
	t.SingleSecondary = make([]SingleResult, n)
	t.NumSingleSecondary = [NumReadsPerPair]int{}
}

// GrowForOutcome doubles the buffer named by o for every tracker that is not
// done. It is a no-op for Complete.
func GrowForOutcome(trackers []*ProgressTracker, o Outcome) {
	for _, t := range trackers {
		if t.Done() {
			continue
		}
		switch o {
		case NeedsLargerSecondaryPairBuffer:
			t.GrowSecondary(grownCapacity(len(t.Secondary)))
		case NeedsLargerSingleSecondaryBuffer:
			t.GrowSingleSecondary(grownCapacity(len(t.SingleSecondary)))
		}
	}
}

func grownCapacity(n int) int {
	if n < 1 {
		return 1
	}
	return 2 * n
}
