package align

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/linkedread/platform"
)

// Stage names one of the three stages of Align.
type Stage uint8

const (
	// JointSeedStage is the seed search and directed extension.
	JointSeedStage Stage = iota + 1
	// JointFinalizeStage is secondary enumeration and paired finalization.
	JointFinalizeStage
	// FallbackStage is single-end alignment of candidate chimeric pairs.
	FallbackStage
)

// firstStage runs the seed search for every pair still in joint search, then
// extends each of them toward the cluster's target locus. It returns true iff
// every tracker is resolved afterwards.
func (ca *ClusterAligner) firstStage(n int) bool {
	minLen := ca.opts.MinReadLength
	for i := 0; i < n; i++ {
		t := ca.trackers[i]
		if t.state != AwaitingJointSearch {
			continue
		}
		t.Result.Status = [NumReadsPerPair]Status{NotFound, NotFound}
		r0, r1 := t.pair.Reads[0], t.pair.Reads[1]

		if r0.Len() < minLen && r1.Len() < minLen {
			t.Result = PairedResult{}
			t.Result.setUndersized(0)
			t.Result.setUndersized(1)
			t.state = Resolved
			ca.stats.Undersized++
			ca.tracer.Resolved(i, ResolvedUndersized, &t.Result)
			continue
		}

		t.PopularSeedsSkipped = 0
		t.NextLocus = InvalidGenomeLocation
		if t.engine.SeedAndExtend(r0, r1, &t.PopularSeedsSkipped) && t.engine.InitDirectedExtension() {
			t.NextLocus = t.engine.CurrentLocus()
			continue
		}
		// The paired search stopped early; the mates still get the single-end
		// fallback.
		t.state = AwaitingFallback
		ca.stats.EarlyStops++
	}

	ca.loci = ca.loci[:0]
	for i := 0; i < n; i++ {
		if t := ca.trackers[i]; t.state == AwaitingJointSearch {
			ca.loci = append(ca.loci, t.NextLocus)
		}
	}
	if len(ca.loci) > 0 {
		target := ca.policy.TargetLocus(ca.loci)
		for i := 0; i < n; i++ {
			t := ca.trackers[i]
			if t.state != AwaitingJointSearch {
				continue
			}
			loc := target
			if loc == InvalidGenomeLocation {
				loc = t.NextLocus
			}
			t.engine.DirectedExtensionStep(loc, ca.loci)
		}
	}

	finished := true
	for i := 0; i < n; i++ {
		if !ca.trackers[i].Done() {
			finished = false
			break
		}
	}
	ca.tracer.Stage(JointSeedStage, n, finished)
	return finished
}

// secondStage enumerates secondary pairs and finalizes the paired result of
// every pair still in joint search. It returns false iff some tracker
// overflowed its paired secondary buffer.
func (ca *ClusterAligner) secondStage(n int, p Params) bool {
	finished := true
	for i := 0; i < n; i++ {
		t := ca.trackers[i]
		if t.state != AwaitingJointSearch {
			continue
		}
		r0, r1 := t.pair.Reads[0], t.pair.Reads[1]
		t.NumSingleSecondary = [NumReadsPerPair]int{}

		start := platform.TimeInNanos()
		best := NewBestPair()
		nSecondary, overflowed := t.engine.EnumerateSecondary(p.MaxEditDistanceForSecondary, t.Secondary,
			p.MaxSecondaryToReturn, t.PopularSeedsSkipped, &best)
		if overflowed {
			t.NumSingleSecondary = [NumReadsPerPair]int{}
			t.NumSecondary = len(t.Secondary) + 1
			finished = false
			ca.stats.PairOverflows++
			ca.tracer.Overflow(i, NeedsLargerSecondaryPairBuffer, len(t.Secondary))
			continue
		}
		t.NumSecondary = nSecondary
		t.engine.Finalize(r0, r1, &t.Result, p.MaxEditDistanceForSecondary, t.Secondary, &t.NumSecondary,
			p.MaxSecondaryToReturn, t.PopularSeedsSkipped, &best)
		t.Result.NanosInJointSearch = platform.TimeInNanos() - start
		t.Result.FromJointSearch = true
		t.Result.AlignedAsPair = true

		if ca.opts.ForceSpacing {
			found0, found1 := t.Result.Status[0].Found(), t.Result.Status[1].Found()
			if found0 != found1 {
				log.Panicf("align: pair %d: forced spacing placed only one mate: %v", i, t.Result.Status)
			}
			if !found0 {
				t.Result.FromJointSearch = false
			}
			t.state = Resolved
			ca.stats.ForcedSpacing++
			ca.tracer.Resolved(i, ResolvedForcedSpacing, &t.Result)
			continue
		}
		if t.Result.Status[0].Found() && t.Result.Status[1].Found() {
			t.state = Resolved
			ca.stats.Joint++
			ca.tracer.Resolved(i, ResolvedJoint, &t.Result)
			continue
		}
		// Candidate chimeric pair: the paired search is over, and each mate
		// is aligned on its own in the third stage.
		t.state = AwaitingFallback
	}
	ca.tracer.Stage(JointFinalizeStage, n, finished)
	return finished
}

// thirdStage aligns each mate of every candidate chimeric pair with the
// single-end aligner. It returns false iff some tracker overflowed its
// single-end secondary buffer.
func (ca *ClusterAligner) thirdStage(n int, p Params) bool {
	finished := true
	for i := 0; i < n; i++ {
		t := ca.trackers[i]
		if t.state != AwaitingFallback {
			continue
		}
		t.NumSingleSecondary = [NumReadsPerPair]int{}
		fits := true
		for r := 0; r < NumReadsPerPair; r++ {
			read := t.pair.Reads[r]
			if read.Len() < ca.opts.MinReadLength {
				t.Result.setUndersized(r)
				continue
			}
			// Mate 1's secondaries follow mate 0's.
			offset := 0
			if r == 1 {
				offset = t.NumSingleSecondary[0]
			}
			var single SingleResult
			var nSecondary int
			nSecondary, fits = ca.single.AlignRead(read, &single, p.MaxEditDistanceForSecondary,
				t.SingleSecondary[offset:], p.MaxSecondaryToReturn)
			if !fits {
				t.NumSecondary = 0
				t.NumSingleSecondary = [NumReadsPerPair]int{len(t.SingleSecondary) + 1, 0}
				finished = false
				ca.stats.SingleOverflows++
				ca.tracer.Overflow(i, NeedsLargerSingleSecondaryBuffer, len(t.SingleSecondary))
				break
			}
			t.NumSingleSecondary[r] = nSecondary
			t.Result.Status[r] = single.Status
			t.Result.MAPQ[r] = single.MAPQ / ChimericMAPQDivisor
			t.Result.Direction[r] = single.Direction
			t.Result.Location[r] = single.Location
			t.Result.Score[r] = single.Score
			t.Result.ScorePriorToClipping[r] = single.ScorePriorToClipping
		}
		if !fits {
			continue
		}
		t.NumSecondary = 0
		t.Result.FromJointSearch = false
		t.Result.AlignedAsPair = false
		t.state = Resolved
		ca.stats.Fallback++
		ca.tracer.Resolved(i, ResolvedFallback, &t.Result)
	}
	ca.tracer.Stage(FallbackStage, n, finished)
	return finished
}
