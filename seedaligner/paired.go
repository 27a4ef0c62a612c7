package seedaligner

import (
	"github.com/biogo/store/llrb"
	"github.com/grailbio/linkedread/align"
)

var directions = [2]align.Direction{align.Forward, align.ReverseComplement}

// SeedAndExtend implements align.PairPhaser. It seeds both mates, then pairs
// every candidate of mate 0 with the candidates of mate 1 on the opposite
// strand that lie within the allowed spacing. A pair is kept when both mates
// score within MaxK. The search stops, and SeedAndExtend returns false, when
// no pair is found or more than MaxCandidates pairs are.
func (a *Aligner) SeedAndExtend(r0, r1 *align.Read, popularSeedsSkipped *int) bool {
	a.reset()
	a.setSeqs(0, r0)
	a.setSeqs(1, r1)
	for mate := 0; mate < align.NumReadsPerPair; mate++ {
		for _, dir := range directions {
			a.seed(mate, dir, popularSeedsSkipped)
		}
	}

	maxSpacing := align.GenomeLocation(a.opts.MaxSpacing)
	for _, dir0 := range directions {
		dir1 := dir0.Opposite()
		seq0, seq1 := a.seqs[0][dir0], a.seqs[1][dir1]
		a.cands[0][dir0].Do(func(c llrb.Comparable) bool {
			loc0 := align.GenomeLocation(c.(location))
			from := align.GenomeLocation(0)
			if loc0 > maxSpacing {
				from = loc0 - maxSpacing
			}
			score0, scored := 0, false
			a.cands[1][dir1].DoRange(func(c llrb.Comparable) bool {
				loc1 := align.GenomeLocation(c.(location))
				if loc0.Distance(loc1) < uint64(a.opts.MinSpacing) {
					return false
				}
				if !scored {
					score0, scored = a.score(seq0, loc0), true
				}
				if score0 < 0 {
					return true
				}
				score1 := a.score(seq1, loc1)
				if score1 < 0 {
					return false
				}
				if len(a.pairs) >= a.opts.MaxCandidates {
					a.stopped = true
					return true
				}
				a.pairs = append(a.pairs, candidatePair{
					loc:   [align.NumReadsPerPair]align.GenomeLocation{loc0, loc1},
					dir:   [align.NumReadsPerPair]align.Direction{dir0, dir1},
					score: [align.NumReadsPerPair]int{score0, score1},
				})
				return false
			}, location(from), location(loc0+maxSpacing+1))
			return a.stopped
		})
		if a.stopped {
			break
		}
	}
	return !a.stopped && len(a.pairs) > 0
}

// InitDirectedExtension implements align.PairPhaser.
func (a *Aligner) InitDirectedExtension() bool {
	if a.stopped || len(a.pairs) == 0 {
		return false
	}
	a.rank(align.InvalidGenomeLocation)
	a.locus = a.pairs[0].leftmost()
	return true
}

// CurrentLocus implements align.PairPhaser. It is the leftmost mate location
// of the best candidate pair.
func (a *Aligner) CurrentLocus() align.GenomeLocation { return a.locus }

// DirectedExtensionStep implements align.PairPhaser. Among equally scored
// candidate pairs, the ones closest to target are preferred.
func (a *Aligner) DirectedExtensionStep(target align.GenomeLocation, clusterLoci []align.GenomeLocation) {
	if len(a.pairs) == 0 {
		return
	}
	a.rank(target)
	a.locus = a.pairs[0].leftmost()
}

func pairResult(p *candidatePair) align.PairedResult {
	r := align.PairedResult{AlignedAsPair: true}
	for mate := 0; mate < align.NumReadsPerPair; mate++ {
		r.Location[mate] = p.loc[mate]
		r.Direction[mate] = p.dir[mate]
		r.Score[mate] = p.score[mate]
		r.ScorePriorToClipping[mate] = p.score[mate]
		r.Status[mate] = align.SingleHit
	}
	return r
}

// EnumerateSecondary implements align.PairPhaser.
func (a *Aligner) EnumerateSecondary(maxEditDistance int, secondary []align.PairedResult, maxToReturn int,
	popularSeedsSkipped int, best *align.BestPair) (int, bool) {
	if len(a.pairs) == 0 {
		return 0, false
	}
	b := &a.pairs[0]
	best.PairScore = b.total()
	best.Location = b.loc
	best.Direction = b.dir
	best.Score = b.score
	best.ProbabilityOfBestPair = probability(b.total())
	best.ProbabilityOfAllPairs = 0
	for i := range a.pairs {
		best.ProbabilityOfAllPairs += probability(a.pairs[i].total())
	}

	n := 0
	for i := 1; i < len(a.pairs) && n < maxToReturn; i++ {
		p := &a.pairs[i]
		if p.total() > best.PairScore+maxEditDistance {
			break
		}
		if n == len(secondary) {
			return 0, true
		}
		secondary[n] = pairResult(p)
		n++
	}
	return n, false
}

// Finalize implements align.PairPhaser.
func (a *Aligner) Finalize(r0, r1 *align.Read, result *align.PairedResult, maxEditDistance int,
	secondary []align.PairedResult, nSecondary *int, maxToReturn int,
	popularSeedsSkipped int, best *align.BestPair) {
	result.NumEditDistanceCalls = a.editCalls
	result.NumSmallHits = a.nHits
	if best.PairScore == align.UnknownScore {
		setNotFound(result, 0)
		setNotFound(result, 1)
		return
	}
	status := align.SingleHit
	if len(a.pairs) > 1 && a.pairs[1].total() == best.PairScore {
		status = align.MultipleHits
	}
	q := mapq(best.ProbabilityOfBestPair, best.ProbabilityOfAllPairs, popularSeedsSkipped)
	for mate := 0; mate < align.NumReadsPerPair; mate++ {
		result.Location[mate] = best.Location[mate]
		result.Direction[mate] = best.Direction[mate]
		result.Score[mate] = best.Score[mate]
		result.ScorePriorToClipping[mate] = best.Score[mate]
		result.MAPQ[mate] = q
		result.Status[mate] = status
	}

	// Drop secondaries that duplicate the primary.
	n := 0
	for i := 0; i < *nSecondary; i++ {
		if secondary[i].Location == result.Location && secondary[i].Direction == result.Direction {
			continue
		}
		secondary[n] = secondary[i]
		n++
	}
	*nSecondary = n
}
