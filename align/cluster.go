package align

import (
	"fmt"
	"unsafe"

	"github.com/grailbio/base/log"
	"github.com/grailbio/linkedread/editdist"
)

// Outcome is the result of one Align call.
type Outcome uint8

const (
	// Complete means every tracker of the cluster is resolved.
	Complete Outcome = iota
	// NeedsLargerSecondaryPairBuffer means at least one tracker overflowed
	// its paired secondary buffer. Its NumSecondary is len(Secondary)+1.
	NeedsLargerSecondaryPairBuffer
	// NeedsLargerSingleSecondaryBuffer means at least one tracker overflowed
	// its single-end secondary buffer. Its NumSingleSecondary[0] is
	// len(SingleSecondary)+1.
	NeedsLargerSingleSecondaryBuffer
)

func (o Outcome) String() string {
	switch o {
	case Complete:
		return "Complete"
	case NeedsLargerSecondaryPairBuffer:
		return "NeedsLargerSecondaryPairBuffer"
	case NeedsLargerSingleSecondaryBuffer:
		return "NeedsLargerSingleSecondaryBuffer"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ClusterAligner aligns barcode clusters of read pairs. It is constructed once
// per alignment run and is not thread safe; concurrent workers each own a
// ClusterAligner, its trackers, and its edit-distance cache.
type ClusterAligner struct {
	opts     Opts
	trackers []*ProgressTracker
	single   SingleAligner
	cache    *editdist.Cache
	policy   LocusPolicy
	tracer   Tracer
	stats    Stats

	// Scratch space for the cluster's in-progress loci.
	loci []GenomeLocation
}

// NewClusterAligner creates an aligner over trackers. The aligner owns single,
// the fallback single-end aligner. Every tracker's phase engine, and single
// if it supports it, is bound to cache.
//
// REQUIRES: len(trackers) >= opts.MaxBarcodeSize.
func NewClusterAligner(opts Opts, trackers []*ProgressTracker, single SingleAligner, cache *editdist.Cache) *ClusterAligner {
	if len(trackers) < opts.MaxBarcodeSize {
		log.Panicf("align: %d trackers for max barcode size %d", len(trackers), opts.MaxBarcodeSize)
	}
	if cache == nil {
		cache = editdist.NewCache(opts.CacheEntries)
	}
	for _, t := range trackers {
		t.engine.SetScorer(cache)
	}
	if s, ok := single.(scorerSetter); ok {
		s.SetScorer(cache)
	}
	log.Debug.Printf("align: cluster aligner for %d pairs, reservation %d bytes",
		len(trackers), Reservation(opts))
	return &ClusterAligner{
		opts:     opts,
		trackers: trackers,
		single:   single,
		cache:    cache,
		policy:   NoBias{},
		tracer:   NopTracer{},
		loci:     make([]GenomeLocation, 0, len(trackers)),
	}
}

// SetLocusPolicy sets the policy that picks the cluster-wide target locus.
// The default is NoBias.
func (ca *ClusterAligner) SetLocusPolicy(p LocusPolicy) { ca.policy = p }

// SetTracer installs a tracer. The default discards all events.
func (ca *ClusterAligner) SetTracer(t Tracer) { ca.tracer = t }

// Trackers returns the aligner's tracker array.
func (ca *ClusterAligner) Trackers() []*ProgressTracker { return ca.trackers }

// Cache returns the shared edit-distance cache.
func (ca *ClusterAligner) Cache() *editdist.Cache { return ca.cache }

// Stats returns the counters accumulated since construction.
func (ca *ClusterAligner) Stats() Stats { return ca.stats }

// Reservation returns the number of bytes the aligner's owned state needs
// for the given options: the aligner, the tracker array with its initial
// buffers, and the edit-distance cache. Phase engines are not included.
func Reservation(opts Opts) int64 {
	const cacheEntryBytes = 48 // key, value and map overhead
	perTracker := int64(unsafe.Sizeof(ProgressTracker{})) +
		int64(opts.InitialSecondaryCapacity)*int64(unsafe.Sizeof(PairedResult{})) +
		int64(opts.InitialSingleSecondaryCapacity)*int64(unsafe.Sizeof(SingleResult{})) +
		int64(unsafe.Sizeof(GenomeLocation(0)))
	cacheEntries := opts.CacheEntries
	if cacheEntries <= 0 {
		cacheEntries = editdist.DefaultCacheEntries
	}
	return int64(unsafe.Sizeof(ClusterAligner{})) +
		int64(opts.MaxBarcodeSize)*perTracker +
		int64(cacheEntries)*cacheEntryBytes
}

// Align aligns one barcode cluster. Tracker i aligns pairs[i]. Trackers must
// have been Reset at the start of the cluster; Align may then be called
// repeatedly on the same cluster, growing buffers in between, until it
// returns Complete. Trackers that are already resolved are never touched.
//
// REQUIRES: len(pairs) <= len(ca.Trackers()).
func (ca *ClusterAligner) Align(pairs []ReadPair, p Params) Outcome {
	n := len(pairs)
	if n > len(ca.trackers) {
		log.Panicf("align: cluster of %d pairs exceeds %d trackers", n, len(ca.trackers))
	}
	pending := false
	for i := range pairs {
		ca.trackers[i].pair = &pairs[i]
		if !ca.trackers[i].Done() {
			pending = true
		}
	}
	ca.stats.AlignCalls++

	o := ca.align(n, p)
	// A cluster that was already complete is not counted again.
	if o == Complete && pending {
		ca.stats.Clusters++
		ca.stats.Pairs += n
	}
	return o
}

func (ca *ClusterAligner) align(n int, p Params) Outcome {
	if ca.firstStage(n) {
		return Complete
	}
	if !ca.secondStage(n, p) {
		return NeedsLargerSecondaryPairBuffer
	}
	if ca.thirdStage(n, p) {
		return Complete
	}
	return NeedsLargerSingleSecondaryBuffer
}
