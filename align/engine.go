package align

import (
	"github.com/grailbio/linkedread/editdist"
)

// UnknownScore is the initial best pair score before enumeration.
const UnknownScore = 65536

// BestPair carries what secondary enumeration learned about the best pair to
// the finalize step.
type BestPair struct {
	PairScore             int
	Location              [NumReadsPerPair]GenomeLocation
	Direction             [NumReadsPerPair]Direction
	Score                 [NumReadsPerPair]int
	ProbabilityOfAllPairs float64
	ProbabilityOfBestPair float64
}

// NewBestPair returns a BestPair with no pair recorded.
func NewBestPair() BestPair {
	return BestPair{
		PairScore: UnknownScore,
		Location:  [NumReadsPerPair]GenomeLocation{InvalidGenomeLocation, InvalidGenomeLocation},
	}
}

// PairPhaser is one pair's instance of the phased paired-end aligner. The
// cluster aligner advances it through its phases in order: SeedAndExtend,
// InitDirectedExtension, DirectedExtensionStep, EnumerateSecondary, Finalize.
// A PairPhaser may be reused for many pairs; SeedAndExtend starts over.
type PairPhaser interface {
	// SetScorer binds the engine to the edit-distance cache shared by all
	// engines of one cluster aligner.
	SetScorer(c *editdist.Cache)

	// SeedAndExtend looks up seeds of both mates and extends them. It adds
	// the number of seeds skipped for being too popular to
	// *popularSeedsSkipped. It returns false if the search has already
	// stopped.
	SeedAndExtend(r0, r1 *Read, popularSeedsSkipped *int) (moreWork bool)

	// InitDirectedExtension prepares the location-directed extension. It
	// returns false if there is nothing to extend.
	InitDirectedExtension() (moreWork bool)

	// CurrentLocus returns the engine's best-known locus, or
	// InvalidGenomeLocation.
	CurrentLocus() GenomeLocation

	// DirectedExtensionStep advances the search toward target. clusterLoci
	// are the current loci of all pairs of the cluster still in joint search.
	DirectedExtensionStep(target GenomeLocation, clusterLoci []GenomeLocation)

	// EnumerateSecondary scores the candidates, fills best, and writes up to
	// len(secondary) secondary pair alignments within maxEditDistance of the
	// best. It returns overflowed=true, and n is meaningless, when more than
	// len(secondary) results would be written.
	EnumerateSecondary(maxEditDistance int, secondary []PairedResult, maxToReturn int,
		popularSeedsSkipped int, best *BestPair) (n int, overflowed bool)

	// Finalize commits the primary result. It may drop entries from
	// secondary[:*nSecondary] and update *nSecondary accordingly.
	Finalize(r0, r1 *Read, result *PairedResult, maxEditDistance int,
		secondary []PairedResult, nSecondary *int, maxToReturn int,
		popularSeedsSkipped int, best *BestPair)
}

// SingleAligner aligns one read on its own.
type SingleAligner interface {
	// AlignRead fills result and writes secondary alignments into secondary.
	// It returns fits=false when len(secondary) is too small, in which case
	// result and n are meaningless.
	AlignRead(r *Read, result *SingleResult, maxEditDistance int,
		secondary []SingleResult, maxToReturn int) (n int, fits bool)
}

// scorerSetter is implemented by single aligners that can share the cluster
// aligner's edit-distance cache.
type scorerSetter interface {
	SetScorer(c *editdist.Cache)
}
