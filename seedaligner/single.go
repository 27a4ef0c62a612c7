package seedaligner

import (
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/linkedread/align"
)

// AlignRead implements align.SingleAligner. It discards the state of the
// paired search.
func (a *Aligner) AlignRead(r *align.Read, result *align.SingleResult, maxEditDistance int,
	secondary []align.SingleResult, maxToReturn int) (int, bool) {
	a.reset()
	*result = align.SingleResult{Location: align.InvalidGenomeLocation, Status: align.NotFound}
	a.setSeqs(0, r)
	popularSeedsSkipped := 0
	for _, dir := range directions {
		a.seed(0, dir, &popularSeedsSkipped)
	}
	for _, dir := range directions {
		seq := a.seqs[0][dir]
		a.cands[0][dir].Do(func(c llrb.Comparable) bool {
			loc := align.GenomeLocation(c.(location))
			if s := a.score(seq, loc); s >= 0 {
				a.singles = append(a.singles, candidate{loc: loc, dir: dir, score: s})
			}
			return false
		})
	}
	if len(a.singles) == 0 {
		return 0, true
	}
	sort.SliceStable(a.singles, func(i, j int) bool {
		if a.singles[i].score != a.singles[j].score {
			return a.singles[i].score < a.singles[j].score
		}
		return a.singles[i].loc < a.singles[j].loc
	})

	b := a.singles[0]
	pAll := 0.0
	for _, c := range a.singles {
		pAll += probability(c.score)
	}
	result.Location = b.loc
	result.Direction = b.dir
	result.Score = b.score
	result.ScorePriorToClipping = b.score
	result.MAPQ = mapq(probability(b.score), pAll, popularSeedsSkipped)
	result.Status = align.SingleHit
	if len(a.singles) > 1 && a.singles[1].score == b.score {
		result.Status = align.MultipleHits
	}

	n := 0
	for i := 1; i < len(a.singles) && n < maxToReturn; i++ {
		c := a.singles[i]
		if c.score > b.score+maxEditDistance {
			break
		}
		if n == len(secondary) {
			return 0, false
		}
		secondary[n] = align.SingleResult{
			Location:             c.loc,
			Direction:            c.dir,
			Score:                c.score,
			ScorePriorToClipping: c.score,
			Status:               align.SingleHit,
		}
		n++
	}
	return n, true
}
