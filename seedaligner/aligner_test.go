package seedaligner_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/linkedread/align"
	"github.com/grailbio/linkedread/editdist"
	"github.com/grailbio/linkedread/genome"
	"github.com/grailbio/linkedread/seedaligner"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const contigStart = genome.ContigPadding

func randSeq(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = "ACGT"[r.Intn(4)]
	}
	return string(b)
}

func newIndex(t *testing.T, seq string, maxHits int) *genome.Index {
	g, err := genome.FromFASTA(strings.NewReader(">chr1\n" + seq + "\n"))
	assert.NoError(t, err)
	return genome.NewIndex(g, genome.IndexOpts{KmerLength: 12, MaxHits: maxHits})
}

// uniqueSeq is a random 5000-base contig.
func uniqueSeq() string {
	return randSeq(rand.New(rand.NewSource(1)), 5000)
}

// repeatSeq is a random contig containing two copies of a 300-base segment,
// at offsets 2000 and 4300.
func repeatSeq() (seq, repeat string) {
	r := rand.New(rand.NewSource(2))
	repeat = randSeq(r, 300)
	return randSeq(r, 2000) + repeat + randSeq(r, 2000) + repeat + randSeq(r, 500), repeat
}

func revComp(s string) []byte {
	var rc []byte
	genome.ReverseComplement(&rc, []byte(s))
	return rc
}

// newPair returns a pair whose mate 0 is seq[start0:start0+100] and whose mate
// 1 is the reverse complement of seq[start1:start1+100].
func newPair(seq string, start0, start1 int) (*align.Read, *align.Read) {
	return &align.Read{Name: "r/1", Seq: []byte(seq[start0 : start0+100])},
		&align.Read{Name: "r/2", Seq: revComp(seq[start1 : start1+100])}
}

func TestUniquePair(t *testing.T) {
	seq := uniqueSeq()
	a := seedaligner.New(newIndex(t, seq, 10), seedaligner.DefaultOpts)
	cache := editdist.NewCache(1024)
	a.SetScorer(cache)
	r0, r1 := newPair(seq, 1000, 1300)
	if r0.Seq[50] == 'A' {
		r0.Seq[50] = 'C'
	} else {
		r0.Seq[50] = 'A'
	}

	popular := 0
	assert.True(t, a.SeedAndExtend(r0, r1, &popular))
	expect.EQ(t, popular, 0)
	assert.True(t, a.InitDirectedExtension())
	expect.EQ(t, a.CurrentLocus(), align.GenomeLocation(contigStart+1000))
	a.DirectedExtensionStep(align.InvalidGenomeLocation, nil)

	best := align.NewBestPair()
	secondary := make([]align.PairedResult, 4)
	n, overflowed := a.EnumerateSecondary(2, secondary, 8, popular, &best)
	expect.False(t, overflowed)
	expect.EQ(t, n, 0)
	expect.EQ(t, best.PairScore, 1)

	var result align.PairedResult
	a.Finalize(r0, r1, &result, 2, secondary, &n, 8, popular, &best)
	expect.EQ(t, result.Location, [align.NumReadsPerPair]align.GenomeLocation{contigStart + 1000, contigStart + 1300})
	expect.EQ(t, result.Direction, [align.NumReadsPerPair]align.Direction{align.Forward, align.ReverseComplement})
	expect.EQ(t, result.Score, [align.NumReadsPerPair]int{1, 0})
	expect.EQ(t, result.Status, [align.NumReadsPerPair]align.Status{align.SingleHit, align.SingleHit})
	expect.EQ(t, result.MAPQ, [align.NumReadsPerPair]int{seedaligner.MaxMAPQ, seedaligner.MaxMAPQ})
	expect.True(t, result.NumSmallHits > 0)
	expect.True(t, result.NumEditDistanceCalls > 0)
	expect.True(t, cache.Calls() > 0)
}

func TestNoPair(t *testing.T) {
	seq := uniqueSeq()
	a := seedaligner.New(newIndex(t, seq, 10), seedaligner.DefaultOpts)
	popular := 0
	r0, r1 := newPair(seq, 1000, 4000)
	expect.False(t, a.SeedAndExtend(r0, r1, &popular))
	expect.False(t, a.InitDirectedExtension())
	expect.EQ(t, a.CurrentLocus(), align.InvalidGenomeLocation)

	expect.False(t, a.SeedAndExtend(r0, nil, &popular))

	best := align.NewBestPair()
	n, overflowed := a.EnumerateSecondary(2, nil, 8, popular, &best)
	expect.False(t, overflowed)
	var result align.PairedResult
	a.Finalize(r0, nil, &result, 2, nil, &n, 8, popular, &best)
	expect.EQ(t, result.Status, [align.NumReadsPerPair]align.Status{align.NotFound, align.NotFound})
	expect.EQ(t, result.Location[0], align.InvalidGenomeLocation)
}

func TestRepeatPair(t *testing.T) {
	seq, _ := repeatSeq()
	idx := newIndex(t, seq, 10)
	a := seedaligner.New(idx, seedaligner.DefaultOpts)
	r0, r1 := newPair(seq, 2000, 2200)

	popular := 0
	assert.True(t, a.SeedAndExtend(r0, r1, &popular))
	assert.True(t, a.InitDirectedExtension())
	expect.EQ(t, a.CurrentLocus(), align.GenomeLocation(contigStart+2000))
	a.DirectedExtensionStep(contigStart+4400, nil)
	expect.EQ(t, a.CurrentLocus(), align.GenomeLocation(contigStart+4300))

	best := align.NewBestPair()
	_, overflowed := a.EnumerateSecondary(2, nil, 8, popular, &best)
	expect.True(t, overflowed)

	best = align.NewBestPair()
	secondary := make([]align.PairedResult, 4)
	n, overflowed := a.EnumerateSecondary(2, secondary, 8, popular, &best)
	expect.False(t, overflowed)
	expect.EQ(t, n, 1)
	expect.EQ(t, secondary[0].Location[0], align.GenomeLocation(contigStart+2000))

	var result align.PairedResult
	a.Finalize(r0, r1, &result, 2, secondary, &n, 8, popular, &best)
	expect.EQ(t, n, 1)
	expect.EQ(t, result.Location[0], align.GenomeLocation(contigStart+4300))
	expect.EQ(t, result.Status[0], align.MultipleHits)
	expect.True(t, result.MAPQ[0] < 10)

	// With maxToReturn 0, there is nothing to overflow.
	best = align.NewBestPair()
	n, overflowed = a.EnumerateSecondary(2, nil, 0, popular, &best)
	expect.False(t, overflowed)
	expect.EQ(t, n, 0)
}

func TestPopularAndCandidateLimit(t *testing.T) {
	seq, _ := repeatSeq()
	r0, r1 := newPair(seq, 2000, 2200)

	a := seedaligner.New(newIndex(t, seq, 1), seedaligner.DefaultOpts)
	popular := 0
	expect.False(t, a.SeedAndExtend(r0, r1, &popular))
	expect.True(t, popular > 0)

	opts := seedaligner.DefaultOpts
	opts.MaxCandidates = 1
	a = seedaligner.New(newIndex(t, seq, 10), opts)
	popular = 0
	expect.False(t, a.SeedAndExtend(r0, r1, &popular))
	expect.False(t, a.InitDirectedExtension())
}

func TestAlignRead(t *testing.T) {
	seq := uniqueSeq()
	a := seedaligner.New(newIndex(t, seq, 10), seedaligner.DefaultOpts)

	var result align.SingleResult
	n, fits := a.AlignRead(&align.Read{Seq: revComp(seq[3000:3100])}, &result, 2, nil, 8)
	expect.True(t, fits)
	expect.EQ(t, n, 0)
	expect.EQ(t, result.Location, align.GenomeLocation(contigStart+3000))
	expect.EQ(t, result.Direction, align.ReverseComplement)
	expect.EQ(t, result.Status, align.SingleHit)
	expect.EQ(t, result.MAPQ, seedaligner.MaxMAPQ)

	n, fits = a.AlignRead(&align.Read{Seq: []byte(randSeq(rand.New(rand.NewSource(3)), 100))}, &result, 2, nil, 8)
	expect.True(t, fits)
	expect.EQ(t, result.Status, align.NotFound)
	expect.EQ(t, result.Location, align.InvalidGenomeLocation)

	rseq, repeat := repeatSeq()
	a = seedaligner.New(newIndex(t, rseq, 10), seedaligner.DefaultOpts)
	read := &align.Read{Seq: []byte(repeat[100:200])}
	_, fits = a.AlignRead(read, &result, 2, nil, 8)
	expect.False(t, fits)
	secondary := make([]align.SingleResult, 2)
	n, fits = a.AlignRead(read, &result, 2, secondary, 8)
	expect.True(t, fits)
	expect.EQ(t, n, 1)
	expect.EQ(t, result.Status, align.MultipleHits)
	expect.EQ(t, result.Location, align.GenomeLocation(contigStart+2100))
	expect.EQ(t, secondary[0].Location, align.GenomeLocation(contigStart+4400))
}

func TestClusterAlignment(t *testing.T) {
	seq := uniqueSeq()
	idx := newIndex(t, seq, 10)
	opts := align.DefaultOpts
	opts.MaxBarcodeSize = 8
	trackers := align.NewProgressTrackers(opts, func() align.PairPhaser {
		return seedaligner.New(idx, seedaligner.DefaultOpts)
	})
	ca := align.NewClusterAligner(opts, trackers, seedaligner.New(idx, seedaligner.DefaultOpts), nil)
	ca.SetLocusPolicy(&align.MedianLocus{})

	var pairs []align.ReadPair
	for _, starts := range [][2]int{{1000, 1300}, {1100, 1400}, {1000, 4000}} {
		r0, r1 := newPair(seq, starts[0], starts[1])
		pairs = append(pairs, align.ReadPair{Barcode: "ACGTACGTACGTACGT", Reads: [align.NumReadsPerPair]*align.Read{r0, r1}})
	}
	pairs = append(pairs, align.ReadPair{Reads: [align.NumReadsPerPair]*align.Read{{Name: "short/1"}, {Name: "short/2"}}})

	calls, err := ca.AlignUntilComplete(pairs, align.Params{MaxEditDistanceForSecondary: 2, MaxSecondaryToReturn: 8}, 4)
	assert.NoError(t, err)
	expect.EQ(t, calls, 1)

	for i, want := range [][2]int{{1000, 1300}, {1100, 1400}} {
		r := trackers[i].Result
		expect.True(t, r.FromJointSearch, "pair %d", i)
		expect.EQ(t, r.Location, [align.NumReadsPerPair]align.GenomeLocation{
			align.GenomeLocation(contigStart + want[0]), align.GenomeLocation(contigStart + want[1])})
		expect.EQ(t, r.MAPQ[0], seedaligner.MaxMAPQ)
	}

	chimeric := trackers[2].Result
	expect.False(t, chimeric.FromJointSearch)
	expect.False(t, chimeric.AlignedAsPair)
	expect.EQ(t, chimeric.Location, [align.NumReadsPerPair]align.GenomeLocation{contigStart + 1000, contigStart + 4000})
	expect.EQ(t, chimeric.Direction, [align.NumReadsPerPair]align.Direction{align.Forward, align.ReverseComplement})
	expect.EQ(t, chimeric.MAPQ, [align.NumReadsPerPair]int{seedaligner.MaxMAPQ / 3, seedaligner.MaxMAPQ / 3})

	expect.EQ(t, trackers[3].Result.Status, [align.NumReadsPerPair]align.Status{align.NotFound, align.NotFound})

	stats := ca.Stats()
	expect.EQ(t, stats.Joint, 2)
	expect.EQ(t, stats.Fallback, 1)
	expect.EQ(t, stats.Undersized, 1)
	expect.EQ(t, stats.EarlyStops, 1)
	expect.True(t, ca.Cache().Calls() > 0)
}
