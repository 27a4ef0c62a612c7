package align

import (
	"fmt"
	"math"
)

// NumReadsPerPair is the number of mates in a read pair.
const NumReadsPerPair = 2

// GenomeLocation is an offset into the flat coordinate space of a reference
// genome, in which all contigs are laid end to end.
type GenomeLocation uint64

// InvalidGenomeLocation marks an unknown or absent location.
const InvalidGenomeLocation = GenomeLocation(math.MaxUint64)

// Distance returns |l - l1|.
func (l GenomeLocation) Distance(l1 GenomeLocation) uint64 {
	if l > l1 {
		return uint64(l - l1)
	}
	return uint64(l1 - l)
}

// Direction is the strand a read aligned to.
type Direction uint8

const (
	// Forward means the read matches the reference as sequenced.
	Forward Direction = iota
	// ReverseComplement means the reverse complement of the read matches.
	ReverseComplement
)

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return ReverseComplement
	}
	return Forward
}

func (d Direction) String() string {
	if d == Forward {
		return "+"
	}
	return "-"
}

// Status is the outcome of aligning one read.
type Status uint8

const (
	// NotFound means no alignment within the edit distance limit exists.
	NotFound Status = iota
	// SingleHit means the read has one best alignment.
	SingleHit
	// MultipleHits means the read has several equally good alignments.
	MultipleHits
)

func (s Status) String() string {
	switch s {
	case NotFound:
		return "NotFound"
	case SingleHit:
		return "SingleHit"
	case MultipleHits:
		return "MultipleHits"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Found returns true iff s is SingleHit or MultipleHits.
func (s Status) Found() bool { return s != NotFound }

// Read is one sequenced read.
type Read struct {
	Name string
	Seq  []byte
	Qual []byte
}

// Len returns the number of bases in the read. A nil read has length zero.
func (r *Read) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Seq)
}

// ReadPair is two mates sharing a barcode. It is immutable while it is being
// aligned.
type ReadPair struct {
	Barcode string
	Reads   [NumReadsPerPair]*Read
}

// PairedResult is the primary (or a secondary) result for one read pair.
type PairedResult struct {
	Location             [NumReadsPerPair]GenomeLocation
	Direction            [NumReadsPerPair]Direction
	Score                [NumReadsPerPair]int
	ScorePriorToClipping [NumReadsPerPair]int
	MAPQ                 [NumReadsPerPair]int
	Status               [NumReadsPerPair]Status

	// AlignedAsPair is true iff the mates were placed by the paired search.
	AlignedAsPair bool
	// FromJointSearch is true iff this result is the joint answer. It is false
	// when the mates were placed independently by the single-end fallback.
	FromJointSearch bool

	// NanosInJointSearch is the wall time spent in secondary enumeration and
	// finalization of the paired search.
	NanosInJointSearch int64
	// NumEditDistanceCalls and NumSmallHits are reported by the phase engine.
	NumEditDistanceCalls int
	NumSmallHits         int
}

// setNotFound records that the mate was not aligned.
func (r *PairedResult) setNotFound(mate int) {
	r.Status[mate] = NotFound
	r.Location[mate] = InvalidGenomeLocation
	r.Direction[mate] = Forward
	r.Score[mate] = 0
	r.ScorePriorToClipping[mate] = 0
	r.MAPQ[mate] = 0
}

// setUndersized records that the mate was too short to align. Unlike
// setNotFound, the location is 0.
func (r *PairedResult) setUndersized(mate int) {
	r.setNotFound(mate)
	r.Location[mate] = 0
}

// SingleResult is the result of aligning one read by itself.
type SingleResult struct {
	Location             GenomeLocation
	Direction            Direction
	Score                int
	ScorePriorToClipping int
	MAPQ                 int
	Status               Status
}
