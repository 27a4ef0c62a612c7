package genome

import (
	"github.com/grailbio/base/simd"
)

const invalidKmerBits = uint8(255)

var (
	asciiToKmerMap [256]uint8
	complementMap  [256]byte
)

func init() {
	for i := range asciiToKmerMap {
		asciiToKmerMap[i] = invalidKmerBits
		complementMap[i] = 'N'
	}
	for i, ch := range []byte("ACGT") {
		asciiToKmerMap[ch] = uint8(i)
		asciiToKmerMap[ch+'a'-'A'] = uint8(i)
	}
	for _, p := range []string{"AT", "CG", "GC", "TA"} {
		complementMap[p[0]] = p[1]
		complementMap[p[0]+'a'-'A'] = p[1]
	}
}

// Kmer is a 2-bit-per-base encoding of up to 32 bases of ACGT.
type Kmer uint64

// InvalidKmer is returned for sequences that contain bases other than ACGT.
const InvalidKmer = Kmer(0xffffffffffffffff)

// MaxKmerLength is the longest sequence a Kmer can encode.
const MaxKmerLength = 32

// NewKmer encodes seq. It returns InvalidKmer if seq contains an ambiguous
// base.
//
// REQUIRES: len(seq) <= MaxKmerLength.
func NewKmer(seq []byte) Kmer {
	var k Kmer
	for _, ch := range seq {
		b := asciiToKmerMap[ch]
		if b == invalidKmerBits {
			return InvalidKmer
		}
		k = (k << 2) | Kmer(b)
	}
	return k
}

// ReverseComplement writes the reverse complement of src to dst, resizing
// dst as needed. Bases other than ACGT become 'N'.
func ReverseComplement(dst *[]byte, src []byte) {
	simd.ResizeUnsafe(dst, len(src))
	d := *dst
	n := len(src)
	for i, ch := range src {
		d[n-1-i] = complementMap[ch]
	}
}

// KmerAtPos is a k-mer and its offset in the scanned sequence.
type KmerAtPos struct {
	Pos  int
	Kmer Kmer
}

// Kmerizer enumerates the unambiguous k-mers of a sequence at a fixed
// stride. Stride 1 yields every k-mer. A window that contains an ambiguous
// base is skipped, and scanning restarts right after that base.
type Kmerizer struct {
	kmerLength int
	stride     int
	mask       Kmer // ^(~0 << (2*kmerLength))

	seq []byte
	si  int
	cur KmerAtPos
}

// NewKmerizer creates a Kmerizer.
//
// REQUIRES: 0 < kmerLength <= MaxKmerLength, stride > 0.
func NewKmerizer(kmerLength, stride int) *Kmerizer {
	mask := ^Kmer(0)
	if kmerLength < MaxKmerLength {
		mask = ^(^Kmer(0) << Kmer(kmerLength*2 /*2==#bits per base*/))
	}
	return &Kmerizer{kmerLength: kmerLength, stride: stride, mask: mask}
}

// Reset starts scanning seq.
func (k *Kmerizer) Reset(seq []byte) {
	k.seq = seq
	k.si = 0
	k.cur = KmerAtPos{Pos: -1}
}

func nextAmbiguousPosition(seq []byte, si int) int {
	for i := si; i < len(seq); i++ {
		if asciiToKmerMap[seq[i]] == invalidKmerBits {
			return i
		}
	}
	return len(seq)
}

// Scan advances to the next k-mer. It returns false at the end of the
// sequence.
func (k *Kmerizer) Scan() bool {
	if k.stride == 1 && k.cur.Pos >= 0 && k.cur.Pos+1 == k.si && k.si+k.kmerLength <= len(k.seq) {
		if bits := asciiToKmerMap[k.seq[k.si+k.kmerLength-1]]; bits != invalidKmerBits {
			// Fast path: shift the next base into the previous k-mer.
			k.cur = KmerAtPos{Pos: k.si, Kmer: ((k.cur.Kmer << 2) | Kmer(bits)) & k.mask}
			k.si++
			return true
		}
	}
	for k.si+k.kmerLength <= len(k.seq) {
		window := k.seq[k.si : k.si+k.kmerLength]
		km := NewKmer(window)
		if km == InvalidKmer {
			k.si = nextAmbiguousPosition(k.seq, k.si) + 1
			continue
		}
		k.cur = KmerAtPos{Pos: k.si, Kmer: km}
		k.si += k.stride
		return true
	}
	return false
}

// Get returns the current k-mer. It is valid after Scan returns true.
func (k *Kmerizer) Get() KmerAtPos { return k.cur }
