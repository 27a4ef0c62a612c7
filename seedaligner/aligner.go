package seedaligner

import (
	"math"
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/linkedread/align"
	"github.com/grailbio/linkedread/editdist"
	"github.com/grailbio/linkedread/genome"
)

// location is a candidate start location, ordered for llrb.
type location align.GenomeLocation

// Compare implements llrb.Comparable.
func (l location) Compare(c llrb.Comparable) int {
	l2 := c.(location)
	switch {
	case l < l2:
		return -1
	case l > l2:
		return 1
	}
	return 0
}

type candidatePair struct {
	loc   [align.NumReadsPerPair]align.GenomeLocation
	dir   [align.NumReadsPerPair]align.Direction
	score [align.NumReadsPerPair]int
}

func (p *candidatePair) total() int { return p.score[0] + p.score[1] }

// leftmost returns the smaller location of the two mates.
func (p *candidatePair) leftmost() align.GenomeLocation {
	if p.loc[1] < p.loc[0] {
		return p.loc[1]
	}
	return p.loc[0]
}

type candidate struct {
	loc   align.GenomeLocation
	dir   align.Direction
	score int
}

// Aligner aligns reads against an index. It is not thread safe. An Aligner
// holds the state of one read pair between the phases of the paired search,
// so each pair in flight needs its own Aligner. AlignRead discards that
// state.
type Aligner struct {
	opts     Opts
	idx      *genome.Index
	g        *genome.Genome
	scorer   *editdist.Cache
	kmerizer *genome.Kmerizer

	// seqs[mate][dir] is the mate's sequence in the given direction.
	seqs  [align.NumReadsPerPair][2][]byte
	cands [align.NumReadsPerPair][2]llrb.Tree
	pairs []candidatePair
	// singles holds the scored candidates of AlignRead.
	singles []candidate

	stopped   bool
	locus     align.GenomeLocation
	nHits     int
	editCalls int
}

// New creates an Aligner over idx. Until SetScorer is called, edit distances
// are computed without a cache.
func New(idx *genome.Index, opts Opts) *Aligner {
	return &Aligner{
		opts:     opts,
		idx:      idx,
		g:        idx.Genome(),
		kmerizer: genome.NewKmerizer(idx.KmerLength(), idx.KmerLength()),
		locus:    align.InvalidGenomeLocation,
	}
}

// SetScorer implements align.PairPhaser.
func (a *Aligner) SetScorer(c *editdist.Cache) { a.scorer = c }

// score returns the edit distance of seq aligned at loc, or -1 if it exceeds
// MaxK.
func (a *Aligner) score(seq []byte, loc align.GenomeLocation) int {
	a.editCalls++
	text := a.g.Substring(loc, len(seq)+a.opts.MaxK)
	if a.scorer != nil {
		return a.scorer.Distance(text, seq, a.opts.MaxK)
	}
	return editdist.Distance(text, seq, a.opts.MaxK)
}

// setSeqs fills a.seqs[mate] from r.
func (a *Aligner) setSeqs(mate int, r *align.Read) {
	a.seqs[mate][align.Forward] = nil
	a.seqs[mate][align.ReverseComplement] = a.seqs[mate][align.ReverseComplement][:0]
	if r == nil {
		return
	}
	a.seqs[mate][align.Forward] = r.Seq
	genome.ReverseComplement(&a.seqs[mate][align.ReverseComplement], r.Seq)
}

// seed adds the candidate start locations of a.seqs[mate][dir] to
// a.cands[mate][dir].
func (a *Aligner) seed(mate int, dir align.Direction, popularSeedsSkipped *int) {
	tree := &a.cands[mate][dir]
	a.kmerizer.Reset(a.seqs[mate][dir])
	for a.kmerizer.Scan() {
		km := a.kmerizer.Get()
		locs, popular := a.idx.Lookup(km.Kmer)
		if popular {
			*popularSeedsSkipped++
			continue
		}
		for _, loc := range locs {
			if loc < align.GenomeLocation(km.Pos) {
				continue
			}
			a.nHits++
			tree.Insert(location(loc - align.GenomeLocation(km.Pos)))
		}
	}
}

func (a *Aligner) reset() {
	for mate := range a.cands {
		for dir := range a.cands[mate] {
			a.cands[mate][dir] = llrb.Tree{}
		}
	}
	a.pairs = a.pairs[:0]
	a.singles = a.singles[:0]
	a.stopped = false
	a.locus = align.InvalidGenomeLocation
	a.nHits = 0
	a.editCalls = 0
}

// probability converts an edit distance to a relative likelihood.
func probability(score int) float64 {
	return math.Pow(10, -float64(score))
}

// mapq estimates the mapping quality from the likelihood of the best
// alignment relative to all alignments found. Each skipped popular seed costs
// one point.
func mapq(pBest, pAll float64, popularSeedsSkipped int) int {
	if pAll <= 0 {
		return 0
	}
	q := MaxMAPQ
	if ratio := pBest / pAll; ratio < 1 {
		q = int(-10 * math.Log10(1-ratio))
		if q > MaxMAPQ {
			q = MaxMAPQ
		}
	}
	q -= popularSeedsSkipped
	if q < 0 {
		q = 0
	}
	return q
}

func setNotFound(r *align.PairedResult, mate int) {
	r.Status[mate] = align.NotFound
	r.Location[mate] = align.InvalidGenomeLocation
	r.Direction[mate] = align.Forward
	r.Score[mate] = 0
	r.ScorePriorToClipping[mate] = 0
	r.MAPQ[mate] = 0
}

// rank orders a.pairs by total score, then by distance to target when it is
// valid, then by location.
func (a *Aligner) rank(target align.GenomeLocation) {
	sort.SliceStable(a.pairs, func(i, j int) bool {
		pi, pj := &a.pairs[i], &a.pairs[j]
		if ti, tj := pi.total(), pj.total(); ti != tj {
			return ti < tj
		}
		if target != align.InvalidGenomeLocation {
			if di, dj := pi.leftmost().Distance(target), pj.leftmost().Distance(target); di != dj {
				return di < dj
			}
		}
		return pi.leftmost() < pj.leftmost()
	})
}
