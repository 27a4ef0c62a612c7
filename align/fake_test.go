package align

import (
	"github.com/grailbio/linkedread/editdist"
)

// fakeEngine is a scripted PairPhaser.
type fakeEngine struct {
	scorer *editdist.Cache

	moreWork    bool
	locus       GenomeLocation
	popular     int
	nSecondary  int
	finalStatus [NumReadsPerPair]Status
	finalLoc    [NumReadsPerPair]GenomeLocation
	finalMAPQ   [NumReadsPerPair]int

	seedCalls     int
	finalizeCalls int
	targets       []GenomeLocation
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		moreWork:    true,
		locus:       InvalidGenomeLocation,
		finalStatus: [NumReadsPerPair]Status{SingleHit, SingleHit},
		finalMAPQ:   [NumReadsPerPair]int{60, 60},
	}
}

func (e *fakeEngine) SetScorer(c *editdist.Cache) { e.scorer = c }

func (e *fakeEngine) SeedAndExtend(r0, r1 *Read, popularSeedsSkipped *int) bool {
	e.seedCalls++
	*popularSeedsSkipped += e.popular
	return e.moreWork
}

func (e *fakeEngine) InitDirectedExtension() bool { return true }

func (e *fakeEngine) CurrentLocus() GenomeLocation { return e.locus }

func (e *fakeEngine) DirectedExtensionStep(target GenomeLocation, clusterLoci []GenomeLocation) {
	e.targets = append(e.targets, target)
}

func (e *fakeEngine) EnumerateSecondary(maxEditDistance int, secondary []PairedResult, maxToReturn int,
	popularSeedsSkipped int, best *BestPair) (int, bool) {
	if e.nSecondary > len(secondary) {
		return 0, true
	}
	for i := 0; i < e.nSecondary; i++ {
		secondary[i] = PairedResult{Status: [NumReadsPerPair]Status{SingleHit, SingleHit}}
		secondary[i].Location[0] = GenomeLocation(1000 + i)
	}
	best.PairScore = 0
	return e.nSecondary, false
}

func (e *fakeEngine) Finalize(r0, r1 *Read, result *PairedResult, maxEditDistance int,
	secondary []PairedResult, nSecondary *int, maxToReturn int, popularSeedsSkipped int, best *BestPair) {
	e.finalizeCalls++
	for r := 0; r < NumReadsPerPair; r++ {
		result.Status[r] = e.finalStatus[r]
		result.MAPQ[r] = e.finalMAPQ[r]
		if e.finalStatus[r].Found() {
			result.Location[r] = e.finalLoc[r]
		} else {
			result.setNotFound(r)
		}
	}
}

// fakeSingle is a scripted SingleAligner keyed by read name.
type fakeSingle struct {
	scorer     *editdist.Cache
	results    map[string]SingleResult
	// nSecondary is the number of secondary results per read name.
	nSecondary map[string]int
	calls      []string
}

func newFakeSingle() *fakeSingle {
	return &fakeSingle{results: map[string]SingleResult{}, nSecondary: map[string]int{}}
}

func (s *fakeSingle) SetScorer(c *editdist.Cache) { s.scorer = c }

func (s *fakeSingle) AlignRead(r *Read, result *SingleResult, maxEditDistance int,
	secondary []SingleResult, maxToReturn int) (int, bool) {
	s.calls = append(s.calls, r.Name)
	n := s.nSecondary[r.Name]
	if n > len(secondary) {
		return 0, false
	}
	for i := 0; i < n; i++ {
		secondary[i] = SingleResult{Location: GenomeLocation(i), Status: SingleHit}
	}
	res, ok := s.results[r.Name]
	if !ok {
		res = SingleResult{Location: InvalidGenomeLocation, Status: NotFound}
	}
	*result = res
	return n, true
}

type resolution struct {
	pair int
	how  Resolution
}

type recordingTracer struct {
	resolved  []resolution
	overflows []Outcome
	stages    []Stage
}

func (r *recordingTracer) Stage(s Stage, barcodeSize int, finished bool) {
	r.stages = append(r.stages, s)
}

func (r *recordingTracer) Resolved(pairIdx int, how Resolution, _ *PairedResult) {
	r.resolved = append(r.resolved, resolution{pairIdx, how})
}

func (r *recordingTracer) Overflow(pairIdx int, kind Outcome, capacity int) {
	r.overflows = append(r.overflows, kind)
}

// testHarness wires fake engines and a fake single aligner into a
// ClusterAligner.
type testHarness struct {
	ca      *ClusterAligner
	engines []*fakeEngine
	single  *fakeSingle
	tracer  *recordingTracer
}

func newTestHarness(opts Opts) *testHarness {
	h := &testHarness{single: newFakeSingle(), tracer: &recordingTracer{}}
	trackers := NewProgressTrackers(opts, func() PairPhaser {
		e := newFakeEngine()
		h.engines = append(h.engines, e)
		return e
	})
	h.ca = NewClusterAligner(opts, trackers, h.single, nil)
	h.ca.SetTracer(h.tracer)
	return h
}

func (h *testHarness) reset() {
	for _, t := range h.ca.Trackers() {
		t.Reset()
	}
}

func testOpts() Opts {
	opts := DefaultOpts
	opts.MinReadLength = 20
	opts.MaxBarcodeSize = 4
	opts.InitialSecondaryCapacity = 2
	opts.InitialSingleSecondaryCapacity = 2
	opts.CacheEntries = 64
	return opts
}

func newRead(name string, n int) *Read {
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = "ACGT"[i%4]
	}
	return &Read{Name: name, Seq: seq}
}

func newPair(name string, len0, len1 int) ReadPair {
	return ReadPair{
		Barcode: "AAAACCCCGGGGTTTT",
		Reads:   [NumReadsPerPair]*Read{newRead(name+"/1", len0), newRead(name+"/2", len1)},
	}
}

var testParams = Params{MaxEditDistanceForSecondary: 2, MaxSecondaryToReturn: 8}
